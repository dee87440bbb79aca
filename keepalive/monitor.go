// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package keepalive - ping/pong liveness and round trip measurement
//
// A Monitor belongs to the goroutine that owns a connection and is
// not safe for concurrent use.
package keepalive

import (
	"time"

	"github.com/btcsuite/btcd/wire"

	"github.com/bitmark-inc/peerwire/fault"
	"github.com/bitmark-inc/peerwire/message"
)

// Config - keepalive timing
type Config struct {
	Interval      time.Duration // how often Tick is called
	IdleThreshold time.Duration // quiet time before a ping is sent
	Timeout       time.Duration // wait for a pong before giving up
}

// NonceSource - generator for ping nonces
type NonceSource func() (uint64, error)

// RandomNonce - default nonce source
func RandomNonce() (uint64, error) {
	return wire.RandomUint64()
}

// Monitor - keepalive state for one connection
type Monitor struct {
	config  Config
	nonces  NonceSource
	pending bool
	nonce   uint64
	sentAt  time.Time
	last    time.Duration
	minimum time.Duration
}

// New - create a monitor, a nil source selects RandomNonce
func New(config Config, nonces NonceSource) *Monitor {
	if nil == nonces {
		nonces = RandomNonce
	}
	return &Monitor{
		config: config,
		nonces: nonces,
	}
}

// Interval - how often the owner should call Tick
func (m *Monitor) Interval() time.Duration {
	return m.config.Interval
}

// Tick - called on each interval once the connection is ready
//
// returns a ping to send when the connection has been idle long
// enough and no ping is outstanding, or ErrKeepaliveTimeout once an
// outstanding ping has waited longer than the timeout
func (m *Monitor) Tick(now time.Time, lastReceive time.Time) (*message.Ping, error) {
	if m.pending {
		if now.Sub(m.sentAt) >= m.config.Timeout {
			return nil, fault.ErrKeepaliveTimeout
		}
		return nil, nil
	}

	if now.Sub(lastReceive) < m.config.IdleThreshold {
		return nil, nil
	}

	nonce, err := m.nonces()
	if nil != err {
		return nil, err
	}

	m.pending = true
	m.nonce = nonce
	m.sentAt = now
	return &message.Ping{Nonce: nonce}, nil
}

// Pong - match a pong against the outstanding ping
//
// a pong that is unsolicited or carries another nonce is ignored
// and leaves every statistic untouched
func (m *Monitor) Pong(pong *message.Pong, now time.Time) (time.Duration, bool) {
	if !m.pending || pong.Nonce != m.nonce {
		return 0, false
	}

	rtt := now.Sub(m.sentAt)
	m.pending = false
	m.last = rtt
	if 0 == m.minimum || rtt < m.minimum {
		m.minimum = rtt
	}
	return rtt, true
}

// Outstanding - nonce and send time of the unanswered ping
func (m *Monitor) Outstanding() (uint64, time.Time, bool) {
	return m.nonce, m.sentAt, m.pending
}

// LastRoundTrip - most recent measurement, zero if none
func (m *Monitor) LastRoundTrip() time.Duration {
	return m.last
}

// MinimumRoundTrip - smallest measurement, zero if none
func (m *Monitor) MinimumRoundTrip() time.Duration {
	return m.minimum
}
