// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package limitedset - a set of strings that forgets its oldest
// entries once a fixed size is reached
package limitedset

import (
	"container/ring"
	"sync"
)

// LimitedSet - bounded set, most recently added items survive
type LimitedSet struct {
	sync.Mutex
	size int
	ring *ring.Ring
	hash map[string]*ring.Ring
}

// New - create a new limited set that holds up to 'n' items
func New(n int) *LimitedSet {
	return &LimitedSet{
		size: n,
		ring: ring.New(n),
		hash: make(map[string]*ring.Ring, n),
	}
}

// Add - add an item to the set, re-adding refreshes its position
func (ls *LimitedSet) Add(item string) {
	ls.Lock()
	defer ls.Unlock()
	if r, ok := ls.hash[item]; ok {
		switch r {
		case ls.ring.Prev():
			return
		case ls.ring:
			// oldest becomes newest
			ls.ring = ls.ring.Next()
			return
		}
		r = r.Prev().Unlink(1)
		ls.ring.Prev().Link(r)
		return
	}
	if oldItem, ok := ls.ring.Value.(string); ok {
		delete(ls.hash, oldItem)
	}
	ls.ring.Value = item
	ls.hash[item] = ls.ring
	ls.ring = ls.ring.Next()
}

// Exists - check to see if item is in the set
func (ls *LimitedSet) Exists(item string) bool {
	ls.Lock()
	defer ls.Unlock()
	_, ok := ls.hash[item]
	return ok
}

// Len - number of items currently held
func (ls *LimitedSet) Len() int {
	ls.Lock()
	defer ls.Unlock()
	return len(ls.hash)
}
