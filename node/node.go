// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"net"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/bluele/gcache"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"

	"github.com/bitmark-inc/peerwire/chain"
	"github.com/bitmark-inc/peerwire/fault"
	"github.com/bitmark-inc/peerwire/handshake"
	"github.com/bitmark-inc/peerwire/inventory"
	"github.com/bitmark-inc/peerwire/keepalive"
	"github.com/bitmark-inc/peerwire/message"
	"github.com/bitmark-inc/peerwire/messagebus"
	"github.com/bitmark-inc/peerwire/peer"
)

// how often the status line is logged
const statusInterval = time.Minute

// Node - shared state for all connections
type Node struct {
	sync.RWMutex

	log      *logger.L
	params   *chain.Params
	config   Config
	codec    *message.Codec
	pool     *peer.Pool
	tracker  *inventory.Tracker
	relay    *cache.Cache
	nonces   gcache.Cache
	chain    ChainSource
	consumer Consumer

	now         func() time.Time
	nonceSource keepalive.NonceSource

	serving sync.WaitGroup
	stopped bool
}

// New - create a node for one network
//
// consumer may be nil when received objects are not wanted
func New(params *chain.Params, config Config, source ChainSource, consumer Consumer, bus *messagebus.Bus) (*Node, error) {
	if nil == params || nil == source {
		return nil, fault.ErrMissingParameters
	}
	config.setDefaults()

	n := &Node{
		log:         logger.New("node"),
		params:      params,
		config:      config,
		codec:       message.NewCodec(params),
		pool:        peer.NewPool(config.Pool, bus, logger.New("pool")),
		tracker:     inventory.New(config.Inventory, logger.New("inventory")),
		relay:       cache.New(config.RelayExpiry, 2*config.RelayExpiry),
		nonces:      gcache.New(config.NonceCacheSize).LRU().Build(),
		chain:       source,
		consumer:    consumer,
		now:         time.Now,
		nonceSource: keepalive.RandomNonce,
	}

	// requests held by a departed peer may go to any other peer
	n.pool.OnRemove(func(id uint64, reason error) {
		if released := n.tracker.PeerRemoved(id); released > 0 {
			n.log.Debugf("peer: %d  released requests: %d", id, released)
		}
	})

	return n, nil
}

// SetClock - replace the time source, also used by the pool
func (n *Node) SetClock(now func() time.Time) {
	n.Lock()
	n.now = now
	n.Unlock()
	n.pool.SetClock(now)
}

// SetNonceSource - replace the generator of version and ping nonces
func (n *Node) SetNonceSource(nonces keepalive.NonceSource) {
	n.Lock()
	defer n.Unlock()
	n.nonceSource = nonces
}

// Params - network parameters
func (n *Node) Params() *chain.Params {
	return n.params
}

// Pool - the active sessions
func (n *Node) Pool() *peer.Pool {
	return n.pool
}

// Tracker - the inventory dedup set
func (n *Node) Tracker() *inventory.Tracker {
	return n.tracker
}

// Serve - run one connection until it closes
//
// blocks until the session has been removed from the pool and both
// connection goroutines have finished; the returned error is the
// reason the connection ended, nil for an orderly close
func (n *Node) Serve(conn net.Conn, inbound bool) error {
	n.Lock()
	if n.stopped {
		n.Unlock()
		n.log.Debugf("stopped, refuse connection from: %s", conn.RemoteAddr())
		conn.Close()
		return fault.ErrStopped
	}
	n.serving.Add(1)
	n.Unlock()
	defer n.serving.Done()

	id, err := n.pool.AddPeer(conn, inbound)
	if nil != err {
		n.log.Warnf("reject connection from: %s  error: %s", conn.RemoteAddr(), err)
		conn.Close()
		return err
	}

	// Stop may have emptied the pool while the peer was being added
	if n.isStopped() {
		n.pool.Disconnect(id, fault.ErrStopped)
		return fault.ErrStopped
	}

	c, err := newConnection(n, id, inbound)
	if nil != err {
		n.pool.Disconnect(id, err)
		return err
	}

	err = c.run()
	n.pool.Disconnect(id, err)
	c.wait()
	return err
}

// Run - background process: periodic status and shutdown of every
// connection
func (n *Node) Run(args interface{}, shutdown <-chan struct{}) {
	n.log.Infof("starting: network: %s  magic: %s", n.params.Name, n.params.Magic)

	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-ticker.C:
			n.log.Infof("peers: %d  outstanding requests: %d", n.pool.Len(), n.tracker.Outstanding())
		}
	}

	n.log.Info("shutting down…")
	n.Stop()
	n.log.Info("stopped")
}

// Stop - disconnect every peer and wait for their goroutines, later
// connections are refused
func (n *Node) Stop() {
	n.Lock()
	n.stopped = true
	n.Unlock()

	count := n.pool.DisconnectAll(fault.ErrStopped)
	n.log.Infof("disconnected: %d", count)
	n.serving.Wait()
}

func (n *Node) isStopped() bool {
	n.RLock()
	defer n.RUnlock()
	return n.stopped
}

// BroadcastTransaction - announce a transaction to every ready peer
// that does not already know it
//
// the transaction is held for RelayExpiry so the getdata requests
// that follow the announcement can be answered; nothing is validated
func (n *Node) BroadcastTransaction(raw []byte) (chainhash.Hash, error) {
	tx, err := message.NewTx(raw)
	if nil != err {
		return chainhash.Hash{}, errors.Wrap(err, "broadcast transaction")
	}

	v := tx.Vector()
	n.relay.Set(relayKey(v.Hash), tx, cache.DefaultExpiration)

	// do not fetch it back from a peer
	n.tracker.Received(v)

	count := n.pool.BroadcastInventory(v, &message.Inv{Vectors: []message.InventoryVector{v}}, 0)
	n.log.Infof("broadcast tx: %s  peers: %d", v.Hash, count)

	return tx.Hash(), nil
}

// relay store lookup for a getdata request
func (n *Node) relayed(v message.InventoryVector) (*message.Tx, bool) {
	switch v.Kind {
	case message.InventoryTx, message.InventoryWitnessTx:
	default:
		return nil, false
	}
	item, ok := n.relay.Get(relayKey(v.Hash))
	if !ok {
		return nil, false
	}
	return item.(*message.Tx), true
}

func relayKey(hash chainhash.Hash) string {
	return hash.String()
}

// build this node's version for one connection
func (n *Node) localVersion(conn net.Conn) *message.Version {
	now := n.clock()
	if mtp := n.chain.MedianTimePast(); mtp.After(now) {
		now = mtp
	}
	_, height := n.chain.ChainTip()

	nonce, err := n.nonce()
	if nil != err {
		n.log.Errorf("version nonce error: %s", err)
	}
	n.nonces.Set(nonce, struct{}{})

	return &message.Version{
		ProtocolVersion: n.params.ProtocolVersion,
		Services:        n.params.Services,
		Timestamp:       now,
		Receiver:        message.NewNetAddress(conn.RemoteAddr(), 0),
		Sender:          message.NewNetAddress(conn.LocalAddr(), n.params.Services),
		Nonce:           nonce,
		UserAgent:       n.params.UserAgent,
		StartHeight:     height,
		Relay:           true,
	}
}

// a version carrying a nonce this node sent means a connection to itself
func (n *Node) isSelf(nonce uint64) bool {
	_, err := n.nonces.Get(nonce)
	return nil == err
}

func (n *Node) handshakeConfig(conn net.Conn) handshake.Config {
	return handshake.Config{
		MinimumProtocolVersion: n.params.MinimumProtocolVersion,
		Timeout:                n.config.HandshakeTimeout,
		LocalVersion: func() *message.Version {
			return n.localVersion(conn)
		},
		IsSelf: n.isSelf,
	}
}

func (n *Node) clock() time.Time {
	n.RLock()
	defer n.RUnlock()
	return n.now()
}

func (n *Node) nonce() (uint64, error) {
	n.RLock()
	source := n.nonceSource
	n.RUnlock()
	return source()
}
