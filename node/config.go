// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/bitmark-inc/peerwire/inventory"
	"github.com/bitmark-inc/peerwire/keepalive"
	"github.com/bitmark-inc/peerwire/peer"
)

// defaults for zero configuration values
const (
	defaultHandshakeTimeout = 30 * time.Second
	defaultWriteTimeout     = 30 * time.Second
	defaultPingInterval     = 30 * time.Second
	defaultIdleThreshold    = 2 * time.Minute
	defaultPingTimeout      = 2 * time.Minute
	defaultRequestTimeout   = time.Minute
	defaultMaximumBatch     = 1000
	defaultReceivedExpiry   = time.Hour
	defaultRelayExpiry      = 15 * time.Minute
	defaultNonceCacheSize   = 1000
	defaultNoticeInterval   = 10 * time.Second
	defaultNoticeBurst      = 5
)

// Config - node settings
type Config struct {
	Pool             peer.Config
	Keepalive        keepalive.Config
	Inventory        inventory.Config
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration // a single socket write
	RelayExpiry      time.Duration // how long broadcast transactions can be fetched
	NonceCacheSize   int           // sent version nonces remembered

	// unknown command notices per connection
	NoticeInterval time.Duration
	NoticeBurst    int
}

func (c *Config) setDefaults() {
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = defaultHandshakeTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = defaultWriteTimeout
	}
	if c.Keepalive.Interval <= 0 {
		c.Keepalive.Interval = defaultPingInterval
	}
	if c.Keepalive.IdleThreshold <= 0 {
		c.Keepalive.IdleThreshold = defaultIdleThreshold
	}
	if c.Keepalive.Timeout <= 0 {
		c.Keepalive.Timeout = defaultPingTimeout
	}
	if c.Inventory.RequestTimeout <= 0 {
		c.Inventory.RequestTimeout = defaultRequestTimeout
	}
	if c.Inventory.MaximumBatch <= 0 {
		c.Inventory.MaximumBatch = defaultMaximumBatch
	}
	if c.Inventory.ReceivedExpiry <= 0 {
		c.Inventory.ReceivedExpiry = defaultReceivedExpiry
	}
	if c.RelayExpiry <= 0 {
		c.RelayExpiry = defaultRelayExpiry
	}
	if c.NonceCacheSize <= 0 {
		c.NonceCacheSize = defaultNonceCacheSize
	}
	if c.NoticeInterval <= 0 {
		c.NoticeInterval = defaultNoticeInterval
	}
	if c.NoticeBurst <= 0 {
		c.NoticeBurst = defaultNoticeBurst
	}
}

func (c *Config) noticeLimit() rate.Limit {
	return rate.Every(c.NoticeInterval)
}
