// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package messagebus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/peerwire/messagebus"
)

func TestBroadcastToSubscribers(t *testing.T) {
	bus := messagebus.New()
	q1 := bus.Subscribe(10)
	q2 := bus.Subscribe(10)

	items := []string{"connected", "ready", "disconnected"}
	for _, item := range items {
		bus.Send("test", item)
	}

	for _, q := range []<-chan messagebus.Message{q1, q2} {
		for _, item := range items {
			received := <-q
			assert.Equal(t, "test", received.From, "from")
			assert.Equal(t, item, received.Item, "item")
		}
	}
	assert.Zero(t, bus.Dropped(), "dropped")
}

func TestFullQueueDrops(t *testing.T) {
	bus := messagebus.New()
	q := bus.Subscribe(2)

	bus.Send("test", 1)
	bus.Send("test", 2)
	bus.Send("test", 3)

	assert.Equal(t, uint64(1), bus.Dropped(), "dropped")
	assert.Equal(t, 1, (<-q).Item, "first")
	assert.Equal(t, 2, (<-q).Item, "second")
}

func TestClose(t *testing.T) {
	bus := messagebus.New()
	q := bus.Subscribe(2)
	bus.Close()
	bus.Send("test", 1)

	_, ok := <-q
	assert.False(t, ok, "queue should be closed")

	late := bus.Subscribe(1)
	_, ok = <-late
	assert.False(t, ok, "late subscription should be closed")
}
