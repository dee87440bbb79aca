// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package message

import (
	"bytes"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/bitmark-inc/peerwire/fault"
)

// limits
const (
	MaximumInventoryVectors = 50000
	inventoryVectorSize     = 4 + chainhash.HashSize
)

// InventoryKind - type of object an inventory vector refers to
type InventoryKind uint32

// known kinds
const (
	InventoryError         InventoryKind = 0
	InventoryTx            InventoryKind = 1
	InventoryBlock         InventoryKind = 2
	InventoryFilteredBlock InventoryKind = 3
	InventoryCompactBlock  InventoryKind = 4
	InventoryWitnessTx     InventoryKind = 0x40000001
	InventoryWitnessBlock  InventoryKind = 0x40000002
)

// String - kind name
func (k InventoryKind) String() string {
	switch k {
	case InventoryError:
		return "error"
	case InventoryTx:
		return "tx"
	case InventoryBlock:
		return "block"
	case InventoryFilteredBlock:
		return "filtered-block"
	case InventoryCompactBlock:
		return "compact-block"
	case InventoryWitnessTx:
		return "witness-tx"
	case InventoryWitnessBlock:
		return "witness-block"
	default:
		return fmt.Sprintf("kind-%08x", uint32(k))
	}
}

// IsBlock - any of the block kinds
func (k InventoryKind) IsBlock() bool {
	switch k {
	case InventoryBlock, InventoryFilteredBlock, InventoryCompactBlock, InventoryWitnessBlock:
		return true
	default:
		return false
	}
}

// IsTx - either transaction kind
func (k InventoryKind) IsTx() bool {
	switch k {
	case InventoryTx, InventoryWitnessTx:
		return true
	default:
		return false
	}
}

// kinds naming the same object by the same hash
var (
	txKinds    = []InventoryKind{InventoryTx, InventoryWitnessTx}
	blockKinds = []InventoryKind{InventoryBlock, InventoryWitnessBlock, InventoryFilteredBlock, InventoryCompactBlock}
)

// InventoryVector - identity of an announced object
//
// comparable, so it can be used directly as a map key
type InventoryVector struct {
	Kind InventoryKind
	Hash chainhash.Hash
}

// String - kind:hash
func (iv InventoryVector) String() string {
	return iv.Kind.String() + ":" + iv.Hash.String()
}

// Family - the vector under every kind its object can be requested
// as, starting with the vector itself
func (iv InventoryVector) Family() []InventoryVector {
	var kinds []InventoryKind
	switch {
	case iv.Kind.IsTx():
		kinds = txKinds
	case iv.Kind.IsBlock():
		kinds = blockKinds
	default:
		return []InventoryVector{iv}
	}

	family := make([]InventoryVector, 1, len(kinds))
	family[0] = iv
	for _, k := range kinds {
		if k != iv.Kind {
			family = append(family, InventoryVector{Kind: k, Hash: iv.Hash})
		}
	}
	return family
}

// Inv - announce objects
type Inv struct {
	Vectors []InventoryVector
}

// GetData - request objects
type GetData struct {
	Vectors []InventoryVector
}

// NotFound - objects that were requested but cannot be supplied
type NotFound struct {
	Vectors []InventoryVector
}

func (m *Inv) Command() string      { return CmdInv }
func (m *GetData) Command() string  { return CmdGetData }
func (m *NotFound) Command() string { return CmdNotFound }

func (m *Inv) Pack() ([]byte, error)      { return packVectors(m.Vectors) }
func (m *GetData) Pack() ([]byte, error)  { return packVectors(m.Vectors) }
func (m *NotFound) Pack() ([]byte, error) { return packVectors(m.Vectors) }

func (m *Inv) Unpack(payload []byte) (err error) {
	m.Vectors, err = unpackVectors(payload)
	return err
}

func (m *GetData) Unpack(payload []byte) (err error) {
	m.Vectors, err = unpackVectors(payload)
	return err
}

func (m *NotFound) Unpack(payload []byte) (err error) {
	m.Vectors, err = unpackVectors(payload)
	return err
}

func packVectors(vectors []InventoryVector) ([]byte, error) {
	if len(vectors) > MaximumInventoryVectors {
		return nil, fault.ErrTooManyInventoryVectors
	}

	buffer := &bytes.Buffer{}
	buffer.Grow(wire.VarIntSerializeSize(uint64(len(vectors))) + len(vectors)*inventoryVectorSize)

	if err := wire.WriteVarInt(buffer, primitiveVersion, uint64(len(vectors))); nil != err {
		return nil, err
	}
	for _, v := range vectors {
		writeUint32(buffer, uint32(v.Kind))
		buffer.Write(v.Hash[:])
	}
	return buffer.Bytes(), nil
}

// order of vectors is kept exactly as received
func unpackVectors(payload []byte) ([]InventoryVector, error) {
	r := bytes.NewReader(payload)

	count, err := readCount(r, MaximumInventoryVectors, inventoryVectorSize, fault.ErrTooManyInventoryVectors)
	if nil != err {
		return nil, finish(r, err)
	}

	var vectors []InventoryVector
	if count > 0 {
		vectors = make([]InventoryVector, count)
	}
	for i := range vectors {
		kind, err := readUint32(r)
		if nil != err {
			return nil, finish(r, err)
		}
		vectors[i].Kind = InventoryKind(kind)
		if _, err := io.ReadFull(r, vectors[i].Hash[:]); nil != err {
			return nil, finish(r, err)
		}
	}
	return vectors, finish(r, nil)
}
