// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package message

import (
	"bytes"

	"github.com/bitmark-inc/peerwire/fault"
)

const nonceSize = 8

// VerAck - acknowledge a version
type VerAck struct{}

// GetAddr - ask for known addresses
type GetAddr struct{}

// SendHeaders - peer prefers header announcements to inv
type SendHeaders struct{}

// Ping - liveness probe
type Ping struct {
	Nonce uint64
}

// Pong - reply to a ping, echoing its nonce
type Pong struct {
	Nonce uint64
}

func (m *VerAck) Command() string      { return CmdVerAck }
func (m *GetAddr) Command() string     { return CmdGetAddr }
func (m *SendHeaders) Command() string { return CmdSendHeaders }
func (m *Ping) Command() string        { return CmdPing }
func (m *Pong) Command() string        { return CmdPong }

func (m *VerAck) Pack() ([]byte, error)      { return []byte{}, nil }
func (m *GetAddr) Pack() ([]byte, error)     { return []byte{}, nil }
func (m *SendHeaders) Pack() ([]byte, error) { return []byte{}, nil }
func (m *Ping) Pack() ([]byte, error)        { return packNonce(m.Nonce), nil }
func (m *Pong) Pack() ([]byte, error)        { return packNonce(m.Nonce), nil }

func (m *VerAck) Unpack(payload []byte) error      { return unpackEmpty(payload) }
func (m *GetAddr) Unpack(payload []byte) error     { return unpackEmpty(payload) }
func (m *SendHeaders) Unpack(payload []byte) error { return unpackEmpty(payload) }

func (m *Ping) Unpack(payload []byte) (err error) {
	m.Nonce, err = unpackNonce(payload)
	return err
}

func (m *Pong) Unpack(payload []byte) (err error) {
	m.Nonce, err = unpackNonce(payload)
	return err
}

func unpackEmpty(payload []byte) error {
	if 0 != len(payload) {
		return fault.ErrUnexpectedPayloadLength
	}
	return nil
}

func packNonce(nonce uint64) []byte {
	buffer := &bytes.Buffer{}
	writeUint64(buffer, nonce)
	return buffer.Bytes()
}

func unpackNonce(payload []byte) (uint64, error) {
	if nonceSize != len(payload) {
		return 0, fault.ErrUnexpectedPayloadLength
	}
	return readUint64(bytes.NewReader(payload))
}
