// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"encoding/binary"
	"encoding/hex"
	"strconv"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"

	"github.com/bitmark-inc/peerwire/fault"
)

// protocol constants shared by all chains
const (
	ProtocolVersion        = 70015
	MinimumProtocolVersion = 70001 // first version carrying the relay flag
	MaximumPayload         = wire.MaxMessagePayload
	UserAgent              = "/peerwire:0.1.0/"
	ServiceNodeNetwork     = uint64(wire.SFNodeNetwork)
)

// Magic - the four bytes that start every message on a network
type Magic [4]byte

// String - hex form in wire order
func (m Magic) String() string {
	return hex.EncodeToString(m[:])
}

// Params - network configuration
//
// built once at start up and shared read-only by the codec,
// handshake and keepalive; nothing modifies it after New returns
type Params struct {
	Name                   string
	Magic                  Magic
	DefaultPort            uint16
	MaximumPayload         uint32
	ProtocolVersion        uint32
	MinimumProtocolVersion uint32
	Services               uint64
	UserAgent              string
}

// New - parameters for a named chain
//
// a zero maximumPayload selects the protocol maximum
func New(name string, maximumPayload uint32) (*Params, error) {
	net, err := NetParams(name)
	if nil != err {
		return nil, err
	}

	port, err := strconv.ParseUint(net.DefaultPort, 10, 16)
	if nil != err {
		return nil, err
	}

	if 0 == maximumPayload || maximumPayload > MaximumPayload {
		maximumPayload = MaximumPayload
	}

	return &Params{
		Name:                   name,
		Magic:                  MagicOf(net.Net),
		DefaultPort:            uint16(port),
		MaximumPayload:         maximumPayload,
		ProtocolVersion:        ProtocolVersion,
		MinimumProtocolVersion: MinimumProtocolVersion,
		Services:               ServiceNodeNetwork,
		UserAgent:              UserAgent,
	}, nil
}

// NetParams - the btcd parameters behind a chain name, gives access
// to the genesis block
func NetParams(name string) (*chaincfg.Params, error) {
	switch name {
	case Bitcoin:
		return &chaincfg.MainNetParams, nil
	case Testnet:
		return &chaincfg.TestNet3Params, nil
	case Regtest:
		return &chaincfg.RegressionNetParams, nil
	default:
		return nil, fault.ErrInvalidChain
	}
}

// MagicOf - wire order bytes of a btcd network identifier
func MagicOf(net wire.BitcoinNet) Magic {
	m := Magic{}
	binary.LittleEndian.PutUint32(m[:], uint32(net))
	return m
}
