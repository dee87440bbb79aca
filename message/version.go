// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package message

import (
	"bytes"
	"time"

	"github.com/btcsuite/btcd/wire"

	"github.com/bitmark-inc/peerwire/fault"
)

// limits
const (
	MaximumUserAgentLength = 256
)

// Version - first message on a connection from each side
type Version struct {
	ProtocolVersion uint32
	Services        uint64
	Timestamp       time.Time
	Receiver        NetAddress // the remote end as seen by the sender
	Sender          NetAddress
	Nonce           uint64
	UserAgent       string
	StartHeight     int32
	Relay           bool
}

func (m *Version) Command() string { return CmdVersion }

func (m *Version) Pack() ([]byte, error) {
	if len(m.UserAgent) > MaximumUserAgentLength {
		return nil, fault.ErrUserAgentTooLong
	}

	buffer := &bytes.Buffer{}
	writeUint32(buffer, m.ProtocolVersion)
	writeUint64(buffer, m.Services)
	writeUint64(buffer, uint64(m.Timestamp.Unix()))
	m.Receiver.pack(buffer)
	m.Sender.pack(buffer)
	writeUint64(buffer, m.Nonce)
	if err := wire.WriteVarString(buffer, primitiveVersion, m.UserAgent); nil != err {
		return nil, err
	}
	writeUint32(buffer, uint32(m.StartHeight))

	// always present so that false survives a round trip
	if m.Relay {
		buffer.WriteByte(1)
	} else {
		buffer.WriteByte(0)
	}
	return buffer.Bytes(), nil
}

func (m *Version) Unpack(payload []byte) error {
	r := bytes.NewReader(payload)

	version, err := readUint32(r)
	if nil != err {
		return finish(r, err)
	}
	m.ProtocolVersion = version

	if m.Services, err = readUint64(r); nil != err {
		return finish(r, err)
	}

	timestamp, err := readUint64(r)
	if nil != err {
		return finish(r, err)
	}
	m.Timestamp = time.Unix(int64(timestamp), 0)

	if err := m.Receiver.unpack(r); nil != err {
		return finish(r, err)
	}
	if err := m.Sender.unpack(r); nil != err {
		return finish(r, err)
	}
	if m.Nonce, err = readUint64(r); nil != err {
		return finish(r, err)
	}

	if m.UserAgent, err = readString(r, MaximumUserAgentLength, fault.ErrUserAgentTooLong); nil != err {
		return finish(r, err)
	}

	height, err := readUint32(r)
	if nil != err {
		return finish(r, err)
	}
	m.StartHeight = int32(height)

	// absent relay flag means relay
	m.Relay = true
	if r.Len() > 0 {
		flag, err := r.ReadByte()
		if nil != err {
			return finish(r, err)
		}
		m.Relay = 0 != flag
	}
	return finish(r, nil)
}
