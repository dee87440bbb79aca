// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"fmt"
	"net"
	"time"

	"github.com/bitmark-inc/peerwire/handshake"
	"github.com/bitmark-inc/peerwire/message"
)

// PeerInfo - one peer as reported to an RPC layer
//
// times are unix seconds, durations are seconds
type PeerInfo struct {
	ID                 uint64  `json:"id"`
	Address            string  `json:"addr"`
	LocalAddress       string  `json:"addrlocal"`
	Services           string  `json:"services"`
	RelayTransactions  bool    `json:"relaytxes"`
	LastSend           int64   `json:"lastsend"`
	LastReceive        int64   `json:"lastrecv"`
	BytesSent          uint64  `json:"bytessent"`
	BytesReceived      uint64  `json:"bytesrecv"`
	ConnectedTime      int64   `json:"conntime"`
	ConnectionDuration float64 `json:"connduration"`
	PingTime           float64 `json:"pingtime"`
	MinimumPing        float64 `json:"minping"`
	PingWait           float64 `json:"pingwait,omitempty"`
	Version            uint32  `json:"version"`
	SubVersion         string  `json:"subver"`
	Inbound            bool    `json:"inbound"`
	StartingHeight     int32   `json:"startingheight"`
	BestHash           string  `json:"besthash"`
	BestHeight         int32   `json:"bestheight"`
	State              string  `json:"state"`
	UnknownCommands    uint64  `json:"unknowncommands"`
}

// PeerInfoSnapshot - every connected peer in connection order
func (n *Node) PeerInfoSnapshot() []PeerInfo {
	now := n.clock()
	views := n.pool.Snapshot()

	info := make([]PeerInfo, len(views))
	for i, v := range views {
		p := PeerInfo{
			ID:                 v.ID,
			Address:            v.Address(),
			LocalAddress:       v.LocalAddress,
			Services:           fmt.Sprintf("%016x", 0),
			LastSend:           unixOrZero(v.LastSend),
			LastReceive:        unixOrZero(v.LastReceive),
			BytesSent:          v.BytesSent,
			BytesReceived:      v.BytesReceived,
			ConnectedTime:      unixOrZero(v.ConnectedAt),
			ConnectionDuration: now.Sub(v.ConnectedAt).Seconds(),
			PingTime:           v.LastPing.Seconds(),
			MinimumPing:        v.MinimumPing.Seconds(),
			Inbound:            v.Inbound,
			BestHash:           v.BestHash.String(),
			BestHeight:         v.BestHeight,
			State:              v.State.String(),
			UnknownCommands:    v.UnknownCommands,
		}
		if v.PingPending {
			p.PingWait = now.Sub(v.PingSentAt).Seconds()
		}
		if nil != v.Version {
			p.Services = fmt.Sprintf("%016x", v.Version.Services)
			p.RelayTransactions = v.Version.Relay
			p.Version = n.negotiated(v.Version.ProtocolVersion)
			p.SubVersion = v.Version.UserAgent
			p.StartingHeight = v.Version.StartHeight
		}
		info[i] = p
	}
	return info
}

func (n *Node) negotiated(remote uint32) uint32 {
	if remote < n.params.ProtocolVersion {
		return remote
	}
	return n.params.ProtocolVersion
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

// addresses of ready outbound peers, for answering getaddr
func (n *Node) knownAddresses(exclude uint64) []message.TimestampedAddress {
	addresses := make([]message.TimestampedAddress, 0)
	for _, v := range n.pool.Snapshot() {
		if v.ID == exclude || v.Inbound || handshake.StateReady != v.State || nil == v.Version {
			continue
		}
		ip := net.ParseIP(v.RemoteHost)
		if nil == ip {
			continue
		}
		addresses = append(addresses, message.TimestampedAddress{
			Timestamp: v.LastReceive,
			NetAddress: message.NetAddress{
				Services: v.Version.Services,
				IP:       ip.To16(),
				Port:     v.RemotePort,
			},
		})
		if len(addresses) >= message.MaximumAddresses {
			break
		}
	}
	return addresses
}
