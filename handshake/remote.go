// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package handshake

import (
	"time"

	"github.com/bitmark-inc/peerwire/message"
)

// RemoteVersion - what the peer declared in its version message
//
// recorded once when the version arrives and never changed
type RemoteVersion struct {
	ProtocolVersion uint32
	Services        uint64
	UserAgent       string
	StartHeight     int32
	Relay           bool
	Timestamp       time.Time
	Nonce           uint64
	LocalAddress    message.NetAddress // this node as seen by the peer
	RemoteAddress   message.NetAddress // the peer's own claim
}

func remoteFrom(v *message.Version) *RemoteVersion {
	return &RemoteVersion{
		ProtocolVersion: v.ProtocolVersion,
		Services:        v.Services,
		UserAgent:       v.UserAgent,
		StartHeight:     v.StartHeight,
		Relay:           v.Relay,
		Timestamp:       v.Timestamp,
		Nonce:           v.Nonce,
		LocalAddress:    v.Receiver,
		RemoteAddress:   v.Sender,
	}
}
