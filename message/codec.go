// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package message

import (
	"io"

	"github.com/bitmark-inc/peerwire/chain"
	"github.com/bitmark-inc/peerwire/fault"
)

// Codec - encode and decode complete messages for one network
type Codec struct {
	params *chain.Params
}

// NewCodec - codec bound to a network's magic and payload limit
func NewCodec(params *chain.Params) *Codec {
	return &Codec{
		params: params,
	}
}

// Params - the network this codec was created for
func (c *Codec) Params() *chain.Params {
	return c.params
}

// Encode - header followed by payload
func (c *Codec) Encode(m Message) ([]byte, error) {
	payload, err := m.Pack()
	if nil != err {
		return nil, err
	}
	if uint64(len(payload)) > uint64(c.params.MaximumPayload) {
		return nil, fault.ErrPayloadTooLarge
	}

	h := Header{
		Magic:    c.params.Magic,
		Command:  m.Command(),
		Length:   uint32(len(payload)),
		Checksum: Checksum(payload),
	}
	header, err := h.Pack()
	if nil != err {
		return nil, err
	}

	return append(header, payload...), nil
}

// Decode - exactly one message from a buffer
//
// the header is returned whenever it could be split into fields so
// that a failure can be reported with its command
func (c *Codec) Decode(b []byte) (*Header, Message, error) {
	h, err := c.header(b)
	if nil != err {
		return h, nil, err
	}

	end := HeaderSize + uint64(h.Length)
	switch {
	case uint64(len(b)) < end:
		return h, nil, fault.ErrTruncatedMessage
	case uint64(len(b)) > end:
		return h, nil, fault.ErrTrailingData
	}

	m, err := c.payload(h, b[HeaderSize:])
	return h, m, err
}

// ReadMessage - read one message from a stream
//
// the count of bytes consumed is returned even on error so that
// traffic statistics stay correct
func (c *Codec) ReadMessage(r io.Reader) (*Header, Message, int, error) {
	buffer := make([]byte, HeaderSize)
	n, err := io.ReadFull(r, buffer)
	if nil != err {
		return nil, nil, n, err
	}

	h, err := c.header(buffer)
	if nil != err {
		return h, nil, n, err
	}

	payload := make([]byte, h.Length)
	p, err := io.ReadFull(r, payload)
	n += p
	if nil != err {
		return h, nil, n, err
	}

	m, err := c.payload(h, payload)
	return h, m, n, err
}

// WriteMessage - encode and write one message, returns bytes written
func (c *Codec) WriteMessage(w io.Writer, m Message) (int, error) {
	b, err := c.Encode(m)
	if nil != err {
		return 0, err
	}
	return w.Write(b)
}

// split and check a header against this network
func (c *Codec) header(b []byte) (*Header, error) {
	h, err := UnpackHeader(b)
	if nil != err {
		return nil, err
	}
	if h.Magic != c.params.Magic {
		return h, fault.ErrBadMagic
	}
	if h.Length > c.params.MaximumPayload {
		return h, fault.ErrPayloadTooLarge
	}
	return h, nil
}

// verify checksum before any parser sees the payload
func (c *Codec) payload(h *Header, payload []byte) (Message, error) {
	if Checksum(payload) != h.Checksum {
		return nil, fault.ErrChecksumMismatch
	}
	return Parse(h.Command, payload)
}
