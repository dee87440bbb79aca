// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package counter_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/peerwire/counter"
)

func TestIncrementDecrement(t *testing.T) {
	var c counter.Counter

	assert.True(t, c.IsZero(), "counter is not zero at start")

	for i := 0; i < 5; i += 1 {
		c.Increment()
	}
	assert.Equal(t, uint64(5), c.Uint64(), "after increment")

	for i := 0; i < 5; i += 1 {
		c.Decrement()
	}
	assert.True(t, c.IsZero(), "did not return to zero")

	// underflow wraps as twos complement -1
	c.Decrement()
	assert.Equal(t, ^uint64(0), c.Uint64(), "did not underflow")
}

func TestConcurrentAdd(t *testing.T) {
	var c counter.Counter
	var wg sync.WaitGroup

	for i := 0; i < 10; i += 1 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j += 1 {
				c.Add(24)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(10*100*24), c.Uint64(), "byte total")
}
