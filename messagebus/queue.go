// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package messagebus

import (
	"sync"

	"github.com/bitmark-inc/peerwire/counter"
)

// default queue length for a subscriber
const (
	DefaultQueueSize = 1000
)

// Message - an item and the component that sent it
type Message struct {
	From string
	Item interface{}
}

// Bus - one sender side, many subscriber queues
type Bus struct {
	sync.RWMutex
	queues  []chan Message
	closed  bool
	dropped counter.Counter
}

// New - create an empty bus
func New() *Bus {
	return &Bus{}
}

// Subscribe - create a queue that receives every later message
func (bus *Bus) Subscribe(size int) <-chan Message {
	if size <= 0 {
		size = DefaultQueueSize
	}
	q := make(chan Message, size)

	bus.Lock()
	defer bus.Unlock()
	if bus.closed {
		close(q)
		return q
	}
	bus.queues = append(bus.queues, q)
	return q
}

// Send - queue an item for all subscribers
//
// never blocks: a subscriber whose queue is full misses the item
// and the drop is counted
func (bus *Bus) Send(from string, item interface{}) {
	m := Message{
		From: from,
		Item: item,
	}

	bus.RLock()
	defer bus.RUnlock()
	if bus.closed {
		return
	}
	for _, q := range bus.queues {
		select {
		case q <- m:
		default:
			bus.dropped.Increment()
		}
	}
}

// Dropped - number of items discarded because of full queues
func (bus *Bus) Dropped() uint64 {
	return bus.dropped.Uint64()
}

// Close - close all subscriber queues, later sends are ignored
func (bus *Bus) Close() {
	bus.Lock()
	defer bus.Unlock()
	if bus.closed {
		return
	}
	bus.closed = true
	for _, q := range bus.queues {
		close(q)
	}
	bus.queues = nil
}
