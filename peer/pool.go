// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import (
	"net"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/bitmark-inc/peerwire/counter"
	"github.com/bitmark-inc/peerwire/fault"
	"github.com/bitmark-inc/peerwire/handshake"
	"github.com/bitmark-inc/peerwire/message"
	"github.com/bitmark-inc/peerwire/messagebus"
)

// defaults for zero configuration values
const (
	defaultMaximumPeers   = 125
	defaultQueueSize      = 100
	defaultSendWait       = 5 * time.Second
	defaultKnownInventory = 5000
)

// name used on the message bus
const busName = "pool"

// Config - pool limits
type Config struct {
	MaximumPeers   int           // capacity of the pool
	QueueSize      int           // outbound queue length per session
	SendWait       time.Duration // longest wait for queue space
	KnownInventory int           // objects remembered per session
}

// RemoveHandler - called once after a session leaves the pool
type RemoveHandler func(id uint64, reason error)

// Pool - all active sessions
type Pool struct {
	sync.RWMutex

	log    *logger.L
	config Config
	bus    *messagebus.Bus
	nextID counter.Counter

	sessions map[uint64]*Session
	order    []uint64 // insertion order for enumeration
	removed  []RemoveHandler

	now func() time.Time
}

// NewPool - create an empty pool, bus may be nil
func NewPool(config Config, bus *messagebus.Bus, log *logger.L) *Pool {
	if config.MaximumPeers <= 0 {
		config.MaximumPeers = defaultMaximumPeers
	}
	if config.QueueSize <= 0 {
		config.QueueSize = defaultQueueSize
	}
	if config.SendWait <= 0 {
		config.SendWait = defaultSendWait
	}
	if config.KnownInventory <= 0 {
		config.KnownInventory = defaultKnownInventory
	}
	return &Pool{
		log:      log,
		config:   config,
		bus:      bus,
		sessions: make(map[uint64]*Session),
		now:      time.Now,
	}
}

// SetClock - replace the time source
func (p *Pool) SetClock(now func() time.Time) {
	p.Lock()
	defer p.Unlock()
	p.now = now
}

// OnRemove - register a handler for session removal
func (p *Pool) OnRemove(handler RemoveHandler) {
	p.Lock()
	defer p.Unlock()
	p.removed = append(p.removed, handler)
}

// AddPeer - create a session in Init for a new connection
func (p *Pool) AddPeer(conn net.Conn, inbound bool) (uint64, error) {
	p.Lock()
	if len(p.sessions) >= p.config.MaximumPeers {
		p.Unlock()
		return 0, fault.ErrPoolFull
	}

	id := p.nextID.Increment()
	s := newSession(id, conn, inbound, &p.config, p.now())
	p.sessions[id] = s
	p.order = append(p.order, id)
	count := len(p.sessions)
	p.Unlock()

	p.log.Infof("add peer: %d  address: %s  inbound: %t  count: %d", id, s.Address(), inbound, count)
	p.publish(Event{
		Kind:    EventConnected,
		Session: id,
		Address: s.Address(),
		Inbound: inbound,
	})
	return id, nil
}

// RemovePeer - release a session, idempotent
func (p *Pool) RemovePeer(id uint64) bool {
	return p.Disconnect(id, nil)
}

// Disconnect - remove a session recording why
//
// the connection is closed, queued sends are dropped and anything
// waiting on the session is woken; false if it was already gone
func (p *Pool) Disconnect(id uint64, reason error) bool {
	p.Lock()
	s, ok := p.sessions[id]
	if !ok {
		p.Unlock()
		return false
	}
	delete(p.sessions, id)
	for i, n := range p.order {
		if n == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	handlers := p.removed
	p.Unlock()

	s.close()

	r := ReasonFor(reason)
	if nil == reason {
		p.log.Infof("remove peer: %d  address: %s", id, s.Address())
	} else {
		p.log.Warnf("disconnect peer: %d  address: %s  reason: %s  error: %s", id, s.Address(), r, reason)
	}

	for _, h := range handlers {
		h(id, reason)
	}

	e := Event{
		Kind:    EventDisconnected,
		Session: id,
		Address: s.Address(),
		Inbound: s.inbound,
		Reason:  r,
	}
	if nil != reason {
		e.Error = reason.Error()
	}
	p.publish(e)
	return true
}

// DisconnectAll - remove every session
func (p *Pool) DisconnectAll(reason error) int {
	p.RLock()
	ids := append([]uint64{}, p.order...)
	p.RUnlock()

	n := 0
	for _, id := range ids {
		if p.Disconnect(id, reason) {
			n += 1
		}
	}
	return n
}

// Session - look up a live session
func (p *Pool) Session(id uint64) (*Session, error) {
	p.RLock()
	defer p.RUnlock()
	s, ok := p.sessions[id]
	if !ok {
		return nil, fault.ErrPeerNotFound
	}
	return s, nil
}

// Len - number of sessions
func (p *Pool) Len() int {
	p.RLock()
	defer p.RUnlock()
	return len(p.sessions)
}

// RecordBytesSent - count written bytes
func (p *Pool) RecordBytesSent(id uint64, n int) error {
	s, err := p.Session(id)
	if nil != err {
		return err
	}
	s.bytesSent.Add(uint64(n))
	now := p.clock()
	s.Lock()
	s.lastSend = now
	s.Unlock()
	return nil
}

// RecordBytesReceived - count read bytes
func (p *Pool) RecordBytesReceived(id uint64, n int) error {
	s, err := p.Session(id)
	if nil != err {
		return err
	}
	s.bytesReceived.Add(uint64(n))
	now := p.clock()
	s.Lock()
	s.lastReceive = now
	s.Unlock()
	return nil
}

// RecordUnknownCommand - count a skipped message
func (p *Pool) RecordUnknownCommand(id uint64) error {
	s, err := p.Session(id)
	if nil != err {
		return err
	}
	s.unknownCommands.Increment()
	return nil
}

// RecordPingSent - keepalive probe now outstanding
func (p *Pool) RecordPingSent(id uint64, nonce uint64, at time.Time) error {
	s, err := p.Session(id)
	if nil != err {
		return err
	}
	s.Lock()
	defer s.Unlock()
	s.pingPending = true
	s.pingNonce = nonce
	s.pingSentAt = at
	return nil
}

// UpdatePing - store a measured round trip, keeping the minimum
func (p *Pool) UpdatePing(id uint64, rtt time.Duration) error {
	s, err := p.Session(id)
	if nil != err {
		return err
	}
	s.Lock()
	defer s.Unlock()
	s.pingPending = false
	s.lastPing = rtt
	if 0 == s.minimumPing || rtt < s.minimumPing {
		s.minimumPing = rtt
	}
	return nil
}

// SetBestTip - chain head the peer claims to have
func (p *Pool) SetBestTip(id uint64, hash chainhash.Hash, height int32) error {
	s, err := p.Session(id)
	if nil != err {
		return err
	}
	s.Lock()
	defer s.Unlock()
	s.bestHash = hash
	s.bestHeight = height
	return nil
}

// SetVersion - record the peer version once
func (p *Pool) SetVersion(id uint64, version *handshake.RemoteVersion) error {
	s, err := p.Session(id)
	if nil != err {
		return err
	}
	s.Lock()
	defer s.Unlock()
	if nil != s.version {
		return fault.ErrDuplicateVersion
	}
	s.version = version
	if version.StartHeight > s.bestHeight {
		s.bestHeight = version.StartHeight
	}
	return nil
}

// SetState - move a session through the handshake
func (p *Pool) SetState(id uint64, state handshake.State) error {
	s, err := p.Session(id)
	if nil != err {
		return err
	}
	s.Lock()
	previous := s.state
	s.state = state
	s.Unlock()

	if handshake.StateReady == state && handshake.StateReady != previous {
		p.publish(Event{
			Kind:    EventReady,
			Session: id,
			Address: s.Address(),
			Inbound: s.inbound,
		})
	}
	return nil
}

// Snapshot - consistent copies of all sessions in insertion order
//
// the pool lock is held only while the session list is copied
func (p *Pool) Snapshot() []View {
	p.RLock()
	sessions := make([]*Session, 0, len(p.order))
	for _, id := range p.order {
		sessions = append(sessions, p.sessions[id])
	}
	p.RUnlock()

	views := make([]View, len(sessions))
	for i, s := range sessions {
		views[i] = s.view()
	}
	return views
}

// Send - queue a message for one session, waiting a bounded time
// for queue space
func (p *Pool) Send(id uint64, m message.Message) error {
	s, err := p.Session(id)
	if nil != err {
		return err
	}
	return s.send(m, p.config.SendWait)
}

// Broadcast - queue a message for every ready session except the
// excluded one (zero excludes none), returns the number queued
func (p *Pool) Broadcast(m message.Message, exclude uint64) int {
	return p.broadcast(m, func(s *Session) bool {
		return exclude != s.id
	})
}

// BroadcastInventory - as Broadcast, skipping sessions that already
// know the object and marking it known on the rest
func (p *Pool) BroadcastInventory(v message.InventoryVector, m message.Message, exclude uint64) int {
	return p.broadcast(m, func(s *Session) bool {
		if exclude == s.id || s.Knows(v) {
			return false
		}
		s.MarkKnown(v)
		return true
	})
}

// queueing never blocks the caller: a full queue is retried in the
// background for up to SendWait, after which the session is dropped
//
// a session has at most one background send, overflowing again while
// it waits drops the session at once
func (p *Pool) broadcast(m message.Message, include func(*Session) bool) int {
	p.RLock()
	targets := make([]*Session, 0, len(p.sessions))
	for _, id := range p.order {
		s := p.sessions[id]
		if s.IsReady() && include(s) {
			targets = append(targets, s)
		}
	}
	p.RUnlock()

	queued := 0
	for _, s := range targets {
		select {
		case s.queue <- m:
			queued += 1
			continue
		default:
		}

		if !s.deferSend() {
			p.log.Warnf("peer: %d still backed up, dropping", s.id)
			p.Disconnect(s.id, fault.ErrSendQueueTimeout)
			continue
		}
		queued += 1

		go func(s *Session) {
			err := s.send(m, p.config.SendWait)
			s.releaseSend()
			if fault.ErrSendQueueTimeout == err {
				p.Disconnect(s.id, err)
			}
		}(s)
	}
	return queued
}

func (p *Pool) clock() time.Time {
	p.RLock()
	defer p.RUnlock()
	return p.now()
}

func (p *Pool) publish(e Event) {
	if nil == p.bus {
		return
	}
	p.bus.Send(busName, e)
}
