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

// RejectCode - reason class carried in a reject message
type RejectCode uint8

// codes as used on the network
const (
	RejectMalformed       RejectCode = 0x01
	RejectInvalid         RejectCode = 0x10
	RejectObsolete        RejectCode = 0x11
	RejectDuplicate       RejectCode = 0x12
	RejectNonstandard     RejectCode = 0x40
	RejectDust            RejectCode = 0x41
	RejectInsufficientFee RejectCode = 0x42
	RejectCheckpoint      RejectCode = 0x43
)

// String - code name
func (c RejectCode) String() string {
	switch c {
	case RejectMalformed:
		return "malformed"
	case RejectInvalid:
		return "invalid"
	case RejectObsolete:
		return "obsolete"
	case RejectDuplicate:
		return "duplicate"
	case RejectNonstandard:
		return "nonstandard"
	case RejectDust:
		return "dust"
	case RejectInsufficientFee:
		return "insufficient-fee"
	case RejectCheckpoint:
		return "checkpoint"
	default:
		return fmt.Sprintf("code-%02x", uint8(c))
	}
}

// Reject - error report from a peer about one of our messages
type Reject struct {
	Message string // command being rejected
	Code    RejectCode
	Reason  string
	Hash    *chainhash.Hash // only for tx and block
}

func (m *Reject) Command() string { return CmdReject }

func (m *Reject) Pack() ([]byte, error) {
	buffer := &bytes.Buffer{}
	if err := wire.WriteVarString(buffer, primitiveVersion, m.Message); nil != err {
		return nil, err
	}
	buffer.WriteByte(byte(m.Code))
	if err := wire.WriteVarString(buffer, primitiveVersion, m.Reason); nil != err {
		return nil, err
	}
	if nil != m.Hash {
		buffer.Write(m.Hash[:])
	}
	return buffer.Bytes(), nil
}

func (m *Reject) Unpack(payload []byte) error {
	r := bytes.NewReader(payload)

	var err error
	if m.Message, err = readString(r, len(payload), fault.ErrMalformedPayload); nil != err {
		return finish(r, err)
	}
	code, err := r.ReadByte()
	if nil != err {
		return finish(r, err)
	}
	m.Code = RejectCode(code)
	if m.Reason, err = readString(r, len(payload), fault.ErrMalformedPayload); nil != err {
		return finish(r, err)
	}

	m.Hash = nil
	if r.Len() > 0 {
		h := chainhash.Hash{}
		if _, err := io.ReadFull(r, h[:]); nil != err {
			return finish(r, err)
		}
		m.Hash = &h
	}
	return finish(r, nil)
}
