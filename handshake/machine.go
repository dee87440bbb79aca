// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package handshake - version and verack exchange for one connection
//
// The machine performs no I/O: it is fed received messages and
// returns the messages to send in reply.  The connection owner is
// responsible for writing them and for closing the connection once
// the machine reports an error.
package handshake

import (
	"time"

	"github.com/bitmark-inc/peerwire/fault"
	"github.com/bitmark-inc/peerwire/message"
)

// Config - fixed settings for a handshake
type Config struct {
	MinimumProtocolVersion uint32
	Timeout                time.Duration

	// build this node's version message; called at most once
	LocalVersion func() *message.Version

	// optional: report whether a version nonce is one this node sent
	IsSelf func(nonce uint64) bool
}

// Machine - handshake state for one connection
type Machine struct {
	config   Config
	state    State
	deadline time.Time
	local    *message.Version
	remote   *RemoteVersion
	err      error
}

// New - a machine in Init, that must be Ready by now+timeout
func New(config Config, now time.Time) *Machine {
	return &Machine{
		config:   config,
		state:    StateInit,
		deadline: now.Add(config.Timeout),
	}
}

// State - current state
func (m *Machine) State() State {
	return m.state
}

// IsReady - handshake completed
func (m *Machine) IsReady() bool {
	return StateReady == m.state
}

// Err - the reason the machine failed, nil otherwise
func (m *Machine) Err() error {
	return m.err
}

// Deadline - time by which Ready must be reached
func (m *Machine) Deadline() time.Time {
	return m.deadline
}

// Remote - peer version, nil until it arrives
func (m *Machine) Remote() *RemoteVersion {
	return m.remote
}

// Local - our version, nil until it was sent
func (m *Machine) Local() *message.Version {
	return m.local
}

// NegotiatedVersion - lower of the two protocol versions, zero until
// both are known
func (m *Machine) NegotiatedVersion() uint32 {
	if nil == m.local || nil == m.remote {
		return 0
	}
	if m.remote.ProtocolVersion < m.local.ProtocolVersion {
		return m.remote.ProtocolVersion
	}
	return m.local.ProtocolVersion
}

// Connect - outbound connection opened, send our version first
func (m *Machine) Connect() ([]message.Message, error) {
	if StateInit != m.state {
		return nil, fault.ErrHandshakeStarted
	}
	m.local = m.config.LocalVersion()
	m.state = StateVersionSent
	return []message.Message{m.local}, nil
}

// Receive - feed one received message
//
// returns the replies to send; an error means the machine is now
// Failed and the connection must be closed.  Messages other than
// version and verack are accepted without action once Ready.
func (m *Machine) Receive(msg message.Message) ([]message.Message, error) {
	if StateFailed == m.state {
		return nil, fault.ErrHandshakeFailed
	}

	switch msg := msg.(type) {
	case *message.Version:
		return m.version(msg)
	case *message.VerAck:
		return m.verAck()
	default:
		if StateReady != m.state {
			return nil, m.fail(fault.ErrMessageBeforeHandshake)
		}
		return nil, nil
	}
}

// Expire - check the deadline
func (m *Machine) Expire(now time.Time) error {
	switch m.state {
	case StateReady:
		return nil
	case StateFailed:
		return m.err
	}
	if now.Before(m.deadline) {
		return nil
	}
	return m.fail(fault.ErrHandshakeTimeout)
}

func (m *Machine) version(v *message.Version) ([]message.Message, error) {

	// a verack may have completed the exchange before the version
	// arrived, in that case the version is still accepted once
	if nil != m.remote {
		return nil, m.fail(fault.ErrDuplicateVersion)
	}
	if v.ProtocolVersion < m.config.MinimumProtocolVersion {
		return nil, m.fail(fault.ErrProtocolVersionTooLow)
	}
	if nil != m.config.IsSelf && m.config.IsSelf(v.Nonce) {
		return nil, m.fail(fault.ErrSelfConnection)
	}

	m.remote = remoteFrom(v)

	switch m.state {
	case StateInit:
		m.local = m.config.LocalVersion()
		m.state = StateVersionReceived
		return []message.Message{m.local, &message.VerAck{}}, nil

	case StateVersionSent:
		m.state = StateVersionReceived
		return []message.Message{&message.VerAck{}}, nil

	default: // Ready
		return []message.Message{&message.VerAck{}}, nil
	}
}

func (m *Machine) verAck() ([]message.Message, error) {
	switch m.state {
	case StateInit:
		return nil, m.fail(fault.ErrUnexpectedVerAck)
	case StateVersionSent, StateVersionReceived:
		m.state = StateReady
	}
	return nil, nil
}

func (m *Machine) fail(err error) error {
	m.state = StateFailed
	m.err = err
	return err
}
