// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer_test

import (
	"io"
	"net"
	"runtime"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/peerwire/fault"
	"github.com/bitmark-inc/peerwire/fixtures"
	"github.com/bitmark-inc/peerwire/handshake"
	"github.com/bitmark-inc/peerwire/message"
	"github.com/bitmark-inc/peerwire/messagebus"
	"github.com/bitmark-inc/peerwire/peer"
)

func newPool(capacity int, bus *messagebus.Bus) *peer.Pool {
	config := peer.Config{
		MaximumPeers:   capacity,
		QueueSize:      4,
		SendWait:       20 * time.Millisecond,
		KnownInventory: 10,
	}
	return peer.NewPool(config, bus, logger.New(fixtures.LogCategory))
}

// returns the pool side and the remote side of a connection
func pipe(t *testing.T) (net.Conn, net.Conn) {
	local, remote := net.Pipe()
	t.Cleanup(func() {
		local.Close()
		remote.Close()
	})
	return local, remote
}

func addPeers(t *testing.T, p *peer.Pool, n int) ([]uint64, []net.Conn) {
	ids := make([]uint64, n)
	remotes := make([]net.Conn, n)
	for i := range ids {
		local, remote := pipe(t)
		id, err := p.AddPeer(local, 0 == i%2)
		assert.Nil(t, err, "add peer %d", i)
		ids[i] = id
		remotes[i] = remote
	}
	return ids, remotes
}

func TestBroadcastOnlyToReady(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	p := newPool(10, nil)
	ids, _ := addPeers(t, p, 7)
	for _, id := range ids[:5] {
		assert.Nil(t, p.SetState(id, handshake.StateReady), "ready")
	}
	assert.Nil(t, p.SetState(ids[5], handshake.StateVersionSent), "version sent")

	n := p.Broadcast(&message.Ping{Nonce: 1}, 0)
	assert.Equal(t, 5, n, "targeted")

	for _, v := range p.Snapshot() {
		if handshake.StateReady == v.State {
			assert.Equal(t, 1, v.QueueLength, "peer %d: queued", v.ID)
		} else {
			assert.Equal(t, 0, v.QueueLength, "peer %d: not queued", v.ID)
		}
	}
}

func TestBroadcastExclude(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	p := newPool(10, nil)
	ids, _ := addPeers(t, p, 3)
	for _, id := range ids {
		_ = p.SetState(id, handshake.StateReady)
	}

	assert.Equal(t, 2, p.Broadcast(&message.Ping{}, ids[1]), "excluding one")
	s, _ := p.Session(ids[1])
	assert.Equal(t, 0, len(s.Queue()), "excluded session")
}

func TestBroadcastInventorySkipsKnown(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	p := newPool(10, nil)
	ids, _ := addPeers(t, p, 3)
	for _, id := range ids {
		_ = p.SetState(id, handshake.StateReady)
	}

	v := message.InventoryVector{Kind: message.InventoryTx, Hash: chainhash.Hash{1}}
	s, _ := p.Session(ids[0])
	s.MarkKnown(v)

	m := &message.Inv{Vectors: []message.InventoryVector{v}}
	assert.Equal(t, 2, p.BroadcastInventory(v, m, 0), "first relay")
	assert.Equal(t, 0, p.BroadcastInventory(v, m, 0), "everyone knows it now")
}

func TestPoolFull(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	p := newPool(2, nil)
	ids, _ := addPeers(t, p, 2)

	local, _ := pipe(t)
	_, err := p.AddPeer(local, true)
	assert.Equal(t, fault.ErrPoolFull, err, "third peer")

	p.RemovePeer(ids[0])
	_, err = p.AddPeer(local, true)
	assert.Nil(t, err, "space after removal")
}

func TestRemoveIsIdempotent(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	p := newPool(10, nil)
	removals := 0
	p.OnRemove(func(id uint64, reason error) {
		removals += 1
	})

	ids, remotes := addPeers(t, p, 1)
	s, _ := p.Session(ids[0])

	assert.True(t, p.RemovePeer(ids[0]), "first removal")
	assert.False(t, p.RemovePeer(ids[0]), "second removal")
	assert.Equal(t, 1, removals, "handler called once")
	assert.Equal(t, 0, p.Len(), "empty")

	select {
	case <-s.Done():
	default:
		t.Error("session not marked done")
	}

	// the connection was closed
	_, err := remotes[0].Read(make([]byte, 1))
	assert.Equal(t, io.EOF, err, "remote sees close")

	_, err = p.Session(ids[0])
	assert.Equal(t, fault.ErrPeerNotFound, err, "gone")
	assert.Equal(t, fault.ErrPeerNotFound, p.RecordBytesSent(ids[0], 1), "mutator on removed session")
}

func TestRemovalDrainsQueue(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	p := newPool(10, nil)
	ids, _ := addPeers(t, p, 1)
	_ = p.SetState(ids[0], handshake.StateReady)
	s, _ := p.Session(ids[0])

	p.Broadcast(&message.Ping{}, 0)
	p.Broadcast(&message.Ping{}, 0)
	assert.Equal(t, 2, len(s.Queue()), "queued")

	p.Disconnect(ids[0], fault.ErrKeepaliveTimeout)
	assert.Equal(t, 0, len(s.Queue()), "drained")
}

func TestSnapshotOrderAndCounters(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	now := time.Unix(1600000000, 0)
	p := newPool(10, nil)
	p.SetClock(func() time.Time { return now })

	ids, _ := addPeers(t, p, 3)
	p.RemovePeer(ids[1])

	assert.Nil(t, p.RecordBytesSent(ids[0], 24), "sent")
	assert.Nil(t, p.RecordBytesSent(ids[0], 32), "sent")
	assert.Nil(t, p.RecordBytesReceived(ids[2], 100), "received")
	assert.Nil(t, p.RecordUnknownCommand(ids[2]), "unknown")
	assert.Nil(t, p.UpdatePing(ids[0], 150*time.Millisecond), "ping")
	assert.Nil(t, p.UpdatePing(ids[0], 200*time.Millisecond), "ping")
	assert.Nil(t, p.SetBestTip(ids[2], chainhash.Hash{7}, 700), "tip")

	views := p.Snapshot()
	assert.Equal(t, 2, len(views), "count")
	assert.Equal(t, ids[0], views[0].ID, "first in insertion order")
	assert.Equal(t, ids[2], views[1].ID, "second in insertion order")

	assert.Equal(t, uint64(56), views[0].BytesSent, "bytes sent")
	assert.Equal(t, now, views[0].LastSend, "last send")
	assert.Equal(t, 200*time.Millisecond, views[0].LastPing, "last ping")
	assert.Equal(t, 150*time.Millisecond, views[0].MinimumPing, "minimum ping")
	assert.True(t, views[0].Inbound, "inbound")

	assert.Equal(t, uint64(100), views[1].BytesReceived, "bytes received")
	assert.Equal(t, uint64(1), views[1].UnknownCommands, "unknown commands")
	assert.Equal(t, chainhash.Hash{7}, views[1].BestHash, "best hash")
	assert.Equal(t, int32(700), views[1].BestHeight, "best height")
	assert.Equal(t, handshake.StateInit, views[1].State, "initial state")
	assert.Equal(t, now, views[1].ConnectedAt, "connected at")
	assert.Equal(t, "pipe", views[1].LocalAddress, "local address from socket")
}

func TestSetVersionOnce(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	p := newPool(10, nil)
	ids, _ := addPeers(t, p, 1)

	v := &handshake.RemoteVersion{ProtocolVersion: 70015, UserAgent: "/x/", StartHeight: 321}
	assert.Nil(t, p.SetVersion(ids[0], v), "first")
	assert.Equal(t, fault.ErrDuplicateVersion, p.SetVersion(ids[0], v), "second")

	views := p.Snapshot()
	assert.Equal(t, int32(321), views[0].BestHeight, "start height seeds best height")
	assert.Equal(t, "/x/", views[0].Version.UserAgent, "user agent")

	// the view holds a copy
	views[0].Version.UserAgent = "changed"
	assert.Equal(t, "/x/", p.Snapshot()[0].Version.UserAgent, "copy")
}

func TestSendQueueTimeout(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	p := newPool(10, nil)
	ids, _ := addPeers(t, p, 1)

	for i := 0; i < 4; i += 1 {
		assert.Nil(t, p.Send(ids[0], &message.Ping{}), "fill %d", i)
	}
	assert.Equal(t, fault.ErrSendQueueTimeout, p.Send(ids[0], &message.Ping{}), "full")
}

func TestBroadcastBackpressureDisconnects(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	bus := messagebus.New()
	events := bus.Subscribe(20)

	p := newPool(10, bus)
	ids, _ := addPeers(t, p, 1)
	_ = p.SetState(ids[0], handshake.StateReady)

	for i := 0; i < 5; i += 1 {
		assert.Equal(t, 1, p.Broadcast(&message.Ping{}, 0), "targeted %d", i)
	}

	// the fifth waits, then the session is dropped
	deadline := time.After(time.Second)
loop:
	for {
		select {
		case m := <-events:
			e := m.Item.(peer.Event)
			if peer.EventDisconnected == e.Kind {
				assert.Equal(t, peer.ReasonSendTimeout, e.Reason, "reason")
				break loop
			}
		case <-deadline:
			t.Fatal("no disconnect event")
		}
	}
	assert.Equal(t, 0, p.Len(), "removed")
}

func TestBroadcastOverflowKeepsOneWaiter(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	bus := messagebus.New()
	events := bus.Subscribe(20)

	config := peer.Config{
		MaximumPeers:   10,
		QueueSize:      4,
		SendWait:       2 * time.Second,
		KnownInventory: 10,
	}
	p := peer.NewPool(config, bus, logger.New(fixtures.LogCategory))
	ids, _ := addPeers(t, p, 1)
	_ = p.SetState(ids[0], handshake.StateReady)

	before := runtime.NumGoroutine()

	for i := 0; i < 5; i += 1 {
		assert.Equal(t, 1, p.Broadcast(&message.Ping{}, 0), "queued or waiting %d", i)
	}
	assert.Equal(t, 0, p.Broadcast(&message.Ping{}, 0), "second overflow drops the session")
	for i := 0; i < 10000; i += 1 {
		p.Broadcast(&message.Ping{}, 0)
	}

	assert.True(t, runtime.NumGoroutine() <= before+1, "goroutines: %d  before: %d", runtime.NumGoroutine(), before)
	assert.Equal(t, 0, p.Len(), "removed")

	deadline := time.After(time.Second)
loop:
	for {
		select {
		case m := <-events:
			e := m.Item.(peer.Event)
			if peer.EventDisconnected == e.Kind {
				assert.Equal(t, peer.ReasonSendTimeout, e.Reason, "reason")
				break loop
			}
		case <-deadline:
			t.Fatal("no disconnect event")
		}
	}
}

func TestEvents(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	bus := messagebus.New()
	events := bus.Subscribe(10)

	p := newPool(10, bus)
	ids, _ := addPeers(t, p, 1)
	_ = p.SetState(ids[0], handshake.StateReady)
	_ = p.SetState(ids[0], handshake.StateReady)
	p.Disconnect(ids[0], fault.ErrBadMagic)

	kinds := []peer.EventKind{peer.EventConnected, peer.EventReady, peer.EventDisconnected}
	for _, k := range kinds {
		m := <-events
		e := m.Item.(peer.Event)
		assert.Equal(t, k, e.Kind, "kind")
		assert.Equal(t, ids[0], e.Session, "session")
	}
	assert.Equal(t, 0, len(events), "ready published once")
}

func TestReasonFor(t *testing.T) {
	assert.Equal(t, peer.ReasonClosed, peer.ReasonFor(nil), "nil")
	assert.Equal(t, peer.ReasonFraming, peer.ReasonFor(fault.ErrChecksumMismatch), "framing")
	assert.Equal(t, peer.ReasonProtocol, peer.ReasonFor(fault.ErrMessageBeforeHandshake), "protocol")
	assert.Equal(t, peer.ReasonHandshakeTimeout, peer.ReasonFor(fault.ErrHandshakeTimeout), "handshake")
	assert.Equal(t, peer.ReasonKeepaliveTimeout, peer.ReasonFor(fault.ErrKeepaliveTimeout), "keepalive")
	assert.Equal(t, peer.ReasonOther, peer.ReasonFor(io.EOF), "io")
}
