// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package inventory - node wide deduplication of announced objects
//
// An object announced by several peers is requested from only one
// of them at a time.  The request is released when the object
// arrives, when the peer answers notfound, when the peer
// disconnects, or when it times out, and only then may another peer
// be asked.
package inventory

import (
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/patrickmn/go-cache"

	"github.com/bitmark-inc/peerwire/message"
)

// State - request state of one inventory vector
type State int

// possible states
const (
	StateUnknown State = iota
	StateRequested
	StateReceived
)

func (state State) String() string {
	switch state {
	case StateUnknown:
		return "Unknown"
	case StateRequested:
		return "Requested"
	case StateReceived:
		return "Received"
	default:
		return "*Unknown*"
	}
}

// Config - tracker limits
type Config struct {
	RequestTimeout time.Duration // before another peer may be asked
	MaximumBatch   int           // vectors per getdata message
	ReceivedExpiry time.Duration // how long received objects are remembered
}

// a single outstanding request
type request struct {
	peer uint64
	at   time.Time
}

// Tracker - shared dedup set
type Tracker struct {
	sync.Mutex
	log      *logger.L
	config   Config
	requests map[message.InventoryVector]request
	received *cache.Cache
}

// New - create an empty tracker
func New(config Config, log *logger.L) *Tracker {
	if config.MaximumBatch <= 0 || config.MaximumBatch > message.MaximumInventoryVectors {
		config.MaximumBatch = message.MaximumInventoryVectors
	}
	return &Tracker{
		log:      log,
		config:   config,
		requests: make(map[message.InventoryVector]request),
		received: cache.New(config.ReceivedExpiry, 2*config.ReceivedExpiry),
	}
}

// Announced - a peer announced vectors
//
// vectors that are neither received nor currently requested are
// marked as requested by this peer and returned as getdata batches,
// order preserved
func (t *Tracker) Announced(peer uint64, vectors []message.InventoryVector, now time.Time) []*message.GetData {
	t.Lock()
	defer t.Unlock()

	wanted := make([]message.InventoryVector, 0, len(vectors))
	for _, v := range vectors {
		if _, found := t.received.Get(v.String()); found {
			continue
		}
		if r, ok := t.requests[v]; ok {
			if now.Sub(r.at) < t.config.RequestTimeout {
				continue
			}
			t.log.Debugf("request: %s from peer: %d timed out, asking peer: %d", v, r.peer, peer)
		}
		t.requests[v] = request{
			peer: peer,
			at:   now,
		}
		wanted = append(wanted, v)
	}

	batches := make([]*message.GetData, 0, (len(wanted)+t.config.MaximumBatch-1)/t.config.MaximumBatch)
	for len(wanted) > 0 {
		n := len(wanted)
		if n > t.config.MaximumBatch {
			n = t.config.MaximumBatch
		}
		batches = append(batches, &message.GetData{Vectors: wanted[:n:n]})
		wanted = wanted[n:]
	}
	return batches
}

// Received - an object arrived, returns whether it had been requested
//
// the object is settled under every kind that names it, so a request
// made as witness-tx is satisfied by the tx that answers it
func (t *Tracker) Received(v message.InventoryVector) bool {
	t.Lock()
	defer t.Unlock()

	requested := false
	for _, f := range v.Family() {
		if _, ok := t.requests[f]; ok {
			delete(t.requests, f)
			requested = true
		}
		t.received.SetDefault(f.String(), struct{}{})
	}
	return requested
}

// NotFound - the peer cannot supply these vectors, make them
// available to be requested from another peer
func (t *Tracker) NotFound(peer uint64, vectors []message.InventoryVector) int {
	t.Lock()
	defer t.Unlock()

	n := 0
	for _, v := range vectors {
		if r, ok := t.requests[v]; ok && peer == r.peer {
			delete(t.requests, v)
			n += 1
		}
	}
	return n
}

// PeerRemoved - release all requests outstanding to a peer
func (t *Tracker) PeerRemoved(peer uint64) int {
	t.Lock()
	defer t.Unlock()

	n := 0
	for v, r := range t.requests {
		if peer == r.peer {
			delete(t.requests, v)
			n += 1
		}
	}
	return n
}

// State - current state of a vector
func (t *Tracker) State(v message.InventoryVector) State {
	t.Lock()
	defer t.Unlock()

	if _, found := t.received.Get(v.String()); found {
		return StateReceived
	}
	if _, ok := t.requests[v]; ok {
		return StateRequested
	}
	return StateUnknown
}

// RequestedFrom - peer holding the request for a vector
func (t *Tracker) RequestedFrom(v message.InventoryVector) (uint64, bool) {
	t.Lock()
	defer t.Unlock()

	r, ok := t.requests[v]
	return r.peer, ok
}

// Outstanding - number of vectors currently requested
func (t *Tracker) Outstanding() int {
	t.Lock()
	defer t.Unlock()
	return len(t.requests)
}
