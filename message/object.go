// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package message

import (
	"bytes"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/bitmark-inc/peerwire/fault"
)

// Tx - a raw transaction
//
// the structure is parsed only to find its extent and hash, no
// validation of scripts or amounts is done here
type Tx struct {
	Raw  []byte
	hash chainhash.Hash
}

// Block - a raw block, only the header is parsed to get the hash
type Block struct {
	Raw  []byte
	hash chainhash.Hash
}

// NewTx - wrap serialised transaction bytes
func NewTx(raw []byte) (*Tx, error) {
	tx := &Tx{}
	if err := tx.Unpack(raw); nil != err {
		return nil, err
	}
	return tx, nil
}

// NewBlock - wrap serialised block bytes
func NewBlock(raw []byte) (*Block, error) {
	block := &Block{}
	if err := block.Unpack(raw); nil != err {
		return nil, err
	}
	return block, nil
}

func (m *Tx) Command() string    { return CmdTx }
func (m *Block) Command() string { return CmdBlock }

func (m *Tx) Pack() ([]byte, error)    { return m.Raw, nil }
func (m *Block) Pack() ([]byte, error) { return m.Raw, nil }

// Hash - transaction id
func (m *Tx) Hash() chainhash.Hash { return m.hash }

// Hash - block id
func (m *Block) Hash() chainhash.Hash { return m.hash }

// Vector - inventory vector that announces this transaction
func (m *Tx) Vector() InventoryVector {
	return InventoryVector{Kind: InventoryTx, Hash: m.hash}
}

// Vector - inventory vector that announces this block
func (m *Block) Vector() InventoryVector {
	return InventoryVector{Kind: InventoryBlock, Hash: m.hash}
}

func (m *Tx) Unpack(payload []byte) error {
	r := bytes.NewReader(payload)

	tx := wire.MsgTx{}
	if err := tx.Deserialize(r); nil != err {
		if err = finish(r, err); fault.ErrUnexpectedPayloadLength != err {
			return fault.ErrMalformedPayload
		}
		return err
	}
	if err := finish(r, nil); nil != err {
		return err
	}

	m.Raw = append([]byte{}, payload...)
	m.hash = tx.TxHash()
	return nil
}

func (m *Block) Unpack(payload []byte) error {
	r := bytes.NewReader(payload)

	header := wire.BlockHeader{}
	if err := header.Deserialize(r); nil != err {
		return fault.ErrUnexpectedPayloadLength
	}

	m.Raw = append([]byte{}, payload...)
	m.hash = header.BlockHash()
	return nil
}
