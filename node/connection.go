// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/peerwire/fault"
	"github.com/bitmark-inc/peerwire/handshake"
	"github.com/bitmark-inc/peerwire/keepalive"
	"github.com/bitmark-inc/peerwire/message"
	"github.com/bitmark-inc/peerwire/peer"
)

// result of one read from the socket
type received struct {
	message message.Message
	err     error
}

// per connection state, only touched by the goroutine in run
type connection struct {
	node    *Node
	id      uint64
	session *peer.Session
	conn    net.Conn
	inbound bool
	log     *logger.L

	machine *handshake.Machine
	monitor *keepalive.Monitor
	notices *rate.Limiter

	state         handshake.State
	versionStored bool
	bestHeight    int32
	lastReceive   time.Time

	incoming chan received
	failed   chan error
	finished sync.WaitGroup
}

func newConnection(n *Node, id uint64, inbound bool) (*connection, error) {
	s, err := n.pool.Session(id)
	if nil != err {
		return nil, err
	}

	now := n.clock()
	return &connection{
		node:        n,
		id:          id,
		session:     s,
		conn:        s.Conn(),
		inbound:     inbound,
		log:         logger.New(fmt.Sprintf("peer@%d", id)),
		machine:     handshake.New(n.handshakeConfig(s.Conn()), now),
		monitor:     keepalive.New(n.config.Keepalive, n.nonce),
		notices:     rate.NewLimiter(n.config.noticeLimit(), n.config.NoticeBurst),
		state:       handshake.StateInit,
		lastReceive: now,
		incoming:    make(chan received),
		failed:      make(chan error, 1),
	}, nil
}

// main loop: returns when the connection must be closed
func (c *connection) run() error {
	c.log.Infof("connected: %s  inbound: %t", c.session.Address(), c.inbound)

	c.finished.Add(2)
	go c.reader()
	go c.writer()

	if !c.inbound {
		replies, err := c.machine.Connect()
		if nil != err {
			return err
		}
		if err := c.sendAll(replies); nil != err {
			return err
		}
		c.syncState()
	}

	deadline := time.NewTimer(c.machine.Deadline().Sub(c.node.clock()))
	defer deadline.Stop()

	ticker := time.NewTicker(c.monitor.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-c.session.Done():
			return nil

		case r := <-c.incoming:
			if nil != r.err {
				if io.EOF == errors.Cause(r.err) {
					return nil
				}
				return r.err
			}
			if err := c.receive(r.message); nil != err {
				return err
			}

		case err := <-c.failed:
			return err

		case <-deadline.C:
			// the timer firing is the deadline, whatever the clock says
			if err := c.machine.Expire(c.machine.Deadline()); nil != err {
				return err
			}

		case <-ticker.C:
			if err := c.tick(); nil != err {
				return err
			}
		}
	}
}

// wait for the reader and writer to finish, the session must
// already be removed from the pool
func (c *connection) wait() {
	c.finished.Wait()
	c.log.Info("finished")
}

func (c *connection) reader() {
	defer c.finished.Done()

	for {
		h, m, n, err := c.node.codec.ReadMessage(c.conn)
		if n > 0 {
			c.node.pool.RecordBytesReceived(c.id, n)
		}
		if nil != err {
			if nil != h {
				c.log.Debugf("command: %q  length: %d  error: %s", h.Command, h.Length, err)
			}
			c.deliver(received{err: errors.Wrap(err, "read")})
			return
		}
		if !c.deliver(received{message: m}) {
			return
		}
	}
}

func (c *connection) deliver(r received) bool {
	select {
	case c.incoming <- r:
		return true
	case <-c.session.Done():
		return false
	}
}

func (c *connection) writer() {
	defer c.finished.Done()

	for {
		select {
		case <-c.session.Done():
			return

		case m := <-c.session.Queue():
			b, err := c.node.codec.Encode(m)
			if nil != err {
				// only locally built messages are queued
				fault.Criticalf("session: %d cannot encode: %s  error: %s", c.session.ID(), m.Command(), err)
				continue
			}

			c.conn.SetWriteDeadline(time.Now().Add(c.node.config.WriteTimeout))
			n, err := c.conn.Write(b)
			if n > 0 {
				c.node.pool.RecordBytesSent(c.id, n)
			}
			if nil != err {
				select {
				case c.failed <- errors.Wrapf(err, "write: %s", m.Command()):
				default:
				}
				return
			}
			c.log.Tracef("sent: %s  bytes: %d", m.Command(), n)
		}
	}
}

func (c *connection) send(m message.Message) error {
	return c.node.pool.Send(c.id, m)
}

func (c *connection) sendAll(messages []message.Message) error {
	for _, m := range messages {
		if err := c.send(m); nil != err {
			return err
		}
	}
	return nil
}

// one decoded message from the peer
func (c *connection) receive(m message.Message) error {
	now := c.node.clock()
	c.lastReceive = now

	if u, ok := m.(*message.Unknown); ok {
		c.node.pool.RecordUnknownCommand(c.id)
		if c.notices.Allow() {
			c.log.Warnf("unknown command: %q  length: %d", u.Name, u.Length)
		}
		return nil
	}

	c.log.Tracef("received: %s", m.Command())

	if message.IsHandshake(m) || !c.machine.IsReady() {
		replies, err := c.machine.Receive(m)
		if nil != err {
			return err
		}
		if err := c.sendAll(replies); nil != err {
			return err
		}
		c.syncState()
		return nil
	}

	return c.dispatch(m, now)
}

// copy handshake progress into the pool
func (c *connection) syncState() {
	if remote := c.machine.Remote(); nil != remote && !c.versionStored {
		c.versionStored = true
		if remote.StartHeight > c.bestHeight {
			c.bestHeight = remote.StartHeight
		}
		if err := c.node.pool.SetVersion(c.id, remote); nil != err {
			c.log.Errorf("set version error: %s", err)
		}
		c.log.Infof("version: %d  agent: %q  height: %d  services: %x", remote.ProtocolVersion, remote.UserAgent, remote.StartHeight, remote.Services)
	}

	state := c.machine.State()
	if state == c.state {
		return
	}
	c.state = state
	c.node.pool.SetState(c.id, state)
	c.log.Debugf("state: %s", state)

	if handshake.StateReady == state {
		c.log.Infof("ready: negotiated version: %d", c.machine.NegotiatedVersion())
	}
}

// messages allowed once the handshake is complete
func (c *connection) dispatch(m message.Message, now time.Time) error {
	switch m := m.(type) {

	case *message.Ping:
		return c.send(&message.Pong{Nonce: m.Nonce})

	case *message.Pong:
		if rtt, ok := c.monitor.Pong(m, now); ok {
			c.node.pool.UpdatePing(c.id, rtt)
			c.log.Debugf("round trip: %s", rtt)
		} else {
			c.log.Debugf("ignored pong: %d", m.Nonce)
		}

	case *message.Inv:
		return c.inventory(m.Vectors, now)

	case *message.GetData:
		return c.getData(m.Vectors)

	case *message.NotFound:
		released := c.node.tracker.NotFound(c.id, m.Vectors)
		c.log.Debugf("not found: %d  released: %d", len(m.Vectors), released)

	case *message.Tx:
		v := m.Vector()
		c.node.tracker.Received(v)
		c.session.MarkKnown(v)
		if nil != c.node.consumer {
			c.node.consumer.ReceivedTransaction(c.id, m)
		}

	case *message.Block:
		v := m.Vector()
		c.node.tracker.Received(v)
		c.session.MarkKnown(v)
		c.announcedBlock(v.Hash)
		if nil != c.node.consumer {
			c.node.consumer.ReceivedBlock(c.id, m)
		}

	case *message.Addr:
		if nil != c.node.consumer {
			c.node.consumer.ReceivedAddresses(c.id, m.Addresses)
		}

	case *message.GetAddr:
		return c.send(&message.Addr{Addresses: c.node.knownAddresses(c.id)})

	case *message.Reject:
		c.log.Warnf("reject: %s  code: %s  reason: %q", m.Message, m.Code, m.Reason)

	case *message.SendHeaders:
		c.log.Debug("peer prefers header announcements")

	default:
		c.log.Debugf("ignored: %s", m.Command())
	}
	return nil
}

func (c *connection) inventory(vectors []message.InventoryVector, now time.Time) error {
	for _, v := range vectors {
		c.session.MarkKnown(v)
		if v.Kind.IsBlock() {
			c.announcedBlock(v.Hash)
		}
	}

	for _, getData := range c.node.tracker.Announced(c.id, vectors, now) {
		if err := c.send(getData); nil != err {
			return err
		}
	}
	return nil
}

// a block the chain source can place moves the peer's best tip forward
func (c *connection) announcedBlock(hash chainhash.Hash) {
	height, ok := c.node.chain.HeightOf(hash)
	if !ok || height < c.bestHeight {
		return
	}
	c.bestHeight = height
	c.node.pool.SetBestTip(c.id, hash, height)
}

// serve relayed transactions, everything else is not found
func (c *connection) getData(vectors []message.InventoryVector) error {
	missing := make([]message.InventoryVector, 0, len(vectors))
	for _, v := range vectors {
		if tx, ok := c.node.relayed(v); ok {
			if err := c.send(tx); nil != err {
				return err
			}
			continue
		}
		missing = append(missing, v)
	}
	if 0 == len(missing) {
		return nil
	}
	return c.send(&message.NotFound{Vectors: missing})
}

func (c *connection) tick() error {
	if !c.machine.IsReady() {
		return nil
	}

	now := c.node.clock()
	ping, err := c.monitor.Tick(now, c.lastReceive)
	if nil != err {
		return err
	}
	if nil == ping {
		return nil
	}

	c.node.pool.RecordPingSent(c.id, ping.Nonce, now)
	c.log.Debugf("ping: %d", ping.Nonce)
	return c.send(ping)
}
