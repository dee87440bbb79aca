// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import (
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/bitmark-inc/peerwire/counter"
	"github.com/bitmark-inc/peerwire/fault"
	"github.com/bitmark-inc/peerwire/handshake"
	"github.com/bitmark-inc/peerwire/limitedset"
	"github.com/bitmark-inc/peerwire/message"
)

// local address when the socket cannot report one
const unknownAddress = "unknown"

// Session - state of one connection
type Session struct {
	sync.RWMutex

	id         uint64
	conn       net.Conn
	inbound    bool
	remoteHost string
	remotePort uint16
	local      string

	connectedAt time.Time
	lastSend    time.Time
	lastReceive time.Time

	bytesSent       counter.Counter
	bytesReceived   counter.Counter
	unknownCommands counter.Counter

	state   handshake.State
	version *handshake.RemoteVersion

	pingPending bool
	pingNonce   uint64
	pingSentAt  time.Time
	lastPing    time.Duration
	minimumPing time.Duration

	bestHash   chainhash.Hash
	bestHeight int32

	known *limitedset.LimitedSet
	queue chan message.Message

	// non-zero while a broadcast waits for queue space
	deferred int32

	done      chan struct{}
	closeOnce sync.Once
}

func newSession(id uint64, conn net.Conn, inbound bool, config *Config, now time.Time) *Session {
	host, port := splitAddress(conn.RemoteAddr())

	local := unknownAddress
	if a := conn.LocalAddr(); nil != a && "" != a.String() {
		local = a.String()
	}

	return &Session{
		id:          id,
		conn:        conn,
		inbound:     inbound,
		remoteHost:  host,
		remotePort:  port,
		local:       local,
		connectedAt: now,
		state:       handshake.StateInit,
		known:       limitedset.New(config.KnownInventory),
		queue:       make(chan message.Message, config.QueueSize),
		done:        make(chan struct{}),
	}
}

// structured host and port, never string spliced
func splitAddress(addr net.Addr) (string, uint16) {
	if nil == addr {
		return unknownAddress, 0
	}
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return tcp.IP.String(), uint16(tcp.Port)
	}
	host, port, err := net.SplitHostPort(addr.String())
	if nil != err {
		return addr.String(), 0
	}
	n, err := strconv.ParseUint(port, 10, 16)
	if nil != err {
		return host, 0
	}
	return host, uint16(n)
}

// ID - pool identifier
func (s *Session) ID() uint64 {
	return s.id
}

// Conn - the underlying connection
func (s *Session) Conn() net.Conn {
	return s.conn
}

// Inbound - accepted rather than dialled
func (s *Session) Inbound() bool {
	return s.inbound
}

// Address - remote host:port
func (s *Session) Address() string {
	return net.JoinHostPort(s.remoteHost, strconv.Itoa(int(s.remotePort)))
}

// Queue - outbound messages waiting to be written
func (s *Session) Queue() <-chan message.Message {
	return s.queue
}

// Done - closed when the session is removed from the pool
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// IsReady - handshake completed
func (s *Session) IsReady() bool {
	s.RLock()
	defer s.RUnlock()
	return handshake.StateReady == s.state
}

// Knows - peer is known to have this object
func (s *Session) Knows(v message.InventoryVector) bool {
	return s.known.Exists(v.String())
}

// MarkKnown - remember that the peer has this object
func (s *Session) MarkKnown(v message.InventoryVector) {
	s.known.Add(v.String())
}

// queue a message, waiting at most wait for space
func (s *Session) send(m message.Message, wait time.Duration) error {
	select {
	case <-s.done:
		return fault.ErrPeerNotFound
	default:
	}

	select {
	case s.queue <- m:
		return nil
	default:
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-s.done:
		return fault.ErrPeerNotFound
	case s.queue <- m:
		return nil
	case <-timer.C:
		return fault.ErrSendQueueTimeout
	}
}

// claim the single background send slot
func (s *Session) deferSend() bool {
	return atomic.CompareAndSwapInt32(&s.deferred, 0, 1)
}

func (s *Session) releaseSend() {
	atomic.StoreInt32(&s.deferred, 0)
}

// stop the session: wake anything waiting on it, close the
// connection and discard queued sends
func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
	drain:
		for {
			select {
			case <-s.queue:
			default:
				break drain
			}
		}
	})
}

// consistent copy of the session
func (s *Session) view() View {
	s.RLock()
	defer s.RUnlock()

	v := View{
		ID:              s.id,
		RemoteHost:      s.remoteHost,
		RemotePort:      s.remotePort,
		LocalAddress:    s.local,
		Inbound:         s.inbound,
		State:           s.state,
		ConnectedAt:     s.connectedAt,
		LastSend:        s.lastSend,
		LastReceive:     s.lastReceive,
		BytesSent:       s.bytesSent.Uint64(),
		BytesReceived:   s.bytesReceived.Uint64(),
		UnknownCommands: s.unknownCommands.Uint64(),
		PingPending:     s.pingPending,
		PingNonce:       s.pingNonce,
		PingSentAt:      s.pingSentAt,
		LastPing:        s.lastPing,
		MinimumPing:     s.minimumPing,
		BestHash:        s.bestHash,
		BestHeight:      s.bestHeight,
		QueueLength:     len(s.queue),
	}
	if nil != s.version {
		version := *s.version
		v.Version = &version
	}
	return v
}

// View - read only copy of a session for introspection
type View struct {
	ID              uint64
	RemoteHost      string
	RemotePort      uint16
	LocalAddress    string
	Inbound         bool
	State           handshake.State
	ConnectedAt     time.Time
	LastSend        time.Time
	LastReceive     time.Time
	BytesSent       uint64
	BytesReceived   uint64
	UnknownCommands uint64
	PingPending     bool
	PingNonce       uint64
	PingSentAt      time.Time
	LastPing        time.Duration
	MinimumPing     time.Duration
	BestHash        chainhash.Hash
	BestHeight      int32
	Version         *handshake.RemoteVersion
	QueueLength     int
}

// Address - remote host:port
func (v *View) Address() string {
	return net.JoinHostPort(v.RemoteHost, strconv.Itoa(int(v.RemotePort)))
}
