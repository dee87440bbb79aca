// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package message

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/btcsuite/btcd/wire"

	"github.com/bitmark-inc/peerwire/fault"
)

// Message - one payload variant of the wire protocol
type Message interface {
	Command() string
	Pack() ([]byte, error)
	Unpack(payload []byte) error
}

// version passed to btcd primitive readers, which only use it
// for messages that this package does not delegate
const primitiveVersion = 0

// convert reader errors into payload errors
//
// running out of bytes and having bytes left over are both a length
// mismatch; a primitive rejected by btcd (non canonical varint,
// oversize string) is a malformed payload
func finish(r *bytes.Reader, err error) error {
	if nil != err {
		switch err.(type) {
		case *wire.MessageError:
			return fault.ErrMalformedPayload
		}
		if io.EOF == err || io.ErrUnexpectedEOF == err {
			return fault.ErrUnexpectedPayloadLength
		}
		return err
	}
	if 0 != r.Len() {
		return fault.ErrUnexpectedPayloadLength
	}
	return nil
}

func readUint32(r io.Reader) (uint32, error) {
	b := [4]byte{}
	if _, err := io.ReadFull(r, b[:]); nil != err {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func readUint64(r io.Reader) (uint64, error) {
	b := [8]byte{}
	if _, err := io.ReadFull(r, b[:]); nil != err {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func writeUint32(buffer *bytes.Buffer, n uint32) {
	b := [4]byte{}
	binary.LittleEndian.PutUint32(b[:], n)
	buffer.Write(b[:])
}

func writeUint64(buffer *bytes.Buffer, n uint64) {
	b := [8]byte{}
	binary.LittleEndian.PutUint64(b[:], n)
	buffer.Write(b[:])
}

// read a count and check that count items of itemSize bytes can
// still be present in the payload before anything is allocated
func readCount(r *bytes.Reader, maximum uint64, itemSize int, tooMany error) (int, error) {
	count, err := wire.ReadVarInt(r, primitiveVersion)
	if nil != err {
		return 0, err
	}
	if count > maximum {
		return 0, tooMany
	}
	if count*uint64(itemSize) > uint64(r.Len()) {
		return 0, fault.ErrUnexpectedPayloadLength
	}
	return int(count), nil
}

// read a length prefixed string, the length is checked against the
// limit and the rest of the payload before anything is allocated
func readString(r *bytes.Reader, maximum int, tooLong error) (string, error) {
	length, err := wire.ReadVarInt(r, primitiveVersion)
	if nil != err {
		return "", err
	}
	if length > uint64(maximum) {
		return "", tooLong
	}
	if length > uint64(r.Len()) {
		return "", fault.ErrUnexpectedPayloadLength
	}
	b := make([]byte, length)
	if _, err := io.ReadFull(r, b); nil != err {
		return "", err
	}
	return string(b), nil
}
