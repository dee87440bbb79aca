// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import (
	"github.com/pkg/errors"

	"github.com/bitmark-inc/peerwire/fault"
)

// EventKind - lifecycle step of a session
type EventKind int

// kinds of event
const (
	EventConnected EventKind = iota
	EventReady
	EventDisconnected
)

func (kind EventKind) String() string {
	switch kind {
	case EventConnected:
		return "connected"
	case EventReady:
		return "ready"
	case EventDisconnected:
		return "disconnected"
	default:
		return "*unknown*"
	}
}

// MarshalText - events are published with readable kinds
func (kind EventKind) MarshalText() ([]byte, error) {
	return []byte(kind.String()), nil
}

// Reason - why a session was removed
type Reason int

// disconnect reasons
const (
	ReasonNone Reason = iota
	ReasonClosed
	ReasonFraming
	ReasonProtocol
	ReasonHandshakeTimeout
	ReasonKeepaliveTimeout
	ReasonSendTimeout
	ReasonShutdown
	ReasonOther
)

func (reason Reason) String() string {
	switch reason {
	case ReasonNone:
		return "none"
	case ReasonClosed:
		return "closed"
	case ReasonFraming:
		return "framing"
	case ReasonProtocol:
		return "protocol"
	case ReasonHandshakeTimeout:
		return "handshake-timeout"
	case ReasonKeepaliveTimeout:
		return "keepalive-timeout"
	case ReasonSendTimeout:
		return "send-timeout"
	case ReasonShutdown:
		return "shutdown"
	default:
		return "other"
	}
}

// MarshalText - readable reason codes
func (reason Reason) MarshalText() ([]byte, error) {
	return []byte(reason.String()), nil
}

// ReasonFor - classify the error that ended a session
func ReasonFor(err error) Reason {
	if nil == err {
		return ReasonClosed
	}
	err = errors.Cause(err)
	switch err {
	case fault.ErrHandshakeTimeout:
		return ReasonHandshakeTimeout
	case fault.ErrKeepaliveTimeout:
		return ReasonKeepaliveTimeout
	case fault.ErrSendQueueTimeout:
		return ReasonSendTimeout
	case fault.ErrStopped:
		return ReasonShutdown
	}
	switch {
	case fault.IsErrFraming(err):
		return ReasonFraming
	case fault.IsErrProtocol(err):
		return ReasonProtocol
	default:
		return ReasonOther
	}
}

// Event - published on the message bus for each lifecycle step
type Event struct {
	Kind    EventKind `json:"kind"`
	Session uint64    `json:"session"`
	Address string    `json:"address"`
	Inbound bool      `json:"inbound"`
	Reason  Reason    `json:"reason,omitempty"`
	Error   string    `json:"error,omitempty"`
}
