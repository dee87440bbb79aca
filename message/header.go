// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package message

import (
	"bytes"
	"encoding/binary"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/bitmark-inc/peerwire/chain"
	"github.com/bitmark-inc/peerwire/fault"
)

// sizes of the fixed header fields
const (
	HeaderSize   = 24
	CommandSize  = 12
	checksumSize = 4
)

// Header - the fixed part of every message
type Header struct {
	Magic    chain.Magic
	Command  string
	Length   uint32
	Checksum [checksumSize]byte
}

// Checksum - first four bytes of the double SHA-256 of a payload
func Checksum(payload []byte) [checksumSize]byte {
	c := [checksumSize]byte{}
	copy(c[:], chainhash.DoubleHashB(payload)[:checksumSize])
	return c
}

// Pack - the 24 byte wire form
func (h *Header) Pack() ([]byte, error) {
	if len(h.Command) > CommandSize || 0 == len(h.Command) {
		return nil, fault.ErrMalformedCommand
	}

	buffer := make([]byte, HeaderSize)
	copy(buffer[0:4], h.Magic[:])
	copy(buffer[4:4+CommandSize], h.Command)
	binary.LittleEndian.PutUint32(buffer[16:20], h.Length)
	copy(buffer[20:24], h.Checksum[:])
	return buffer, nil
}

// UnpackHeader - split the 24 header bytes into fields
//
// only the command layout is checked here, magic and length depend
// on the network and are checked by the codec
func UnpackHeader(b []byte) (*Header, error) {
	if len(b) < HeaderSize {
		return nil, fault.ErrShortHeader
	}

	command, err := unpackCommand(b[4 : 4+CommandSize])
	if nil != err {
		return nil, err
	}

	h := &Header{
		Command: command,
		Length:  binary.LittleEndian.Uint32(b[16:20]),
	}
	copy(h.Magic[:], b[0:4])
	copy(h.Checksum[:], b[20:24])
	return h, nil
}

// printable ASCII up to the first zero byte, zeros after it
func unpackCommand(b []byte) (string, error) {
	n := bytes.IndexByte(b, 0)
	if n < 0 {
		n = len(b)
	}
	if 0 == n {
		return "", fault.ErrMalformedCommand
	}
	for _, c := range b[:n] {
		if c < ' ' || c > '~' {
			return "", fault.ErrMalformedCommand
		}
	}
	for _, c := range b[n:] {
		if 0 != c {
			return "", fault.ErrMalformedCommand
		}
	}
	return string(b[:n]), nil
}
