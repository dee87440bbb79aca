// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/peerwire/chain"
	"github.com/bitmark-inc/peerwire/message"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	out := &bytes.Buffer{}
	app := newApp(strings.NewReader(stdin), out, &bytes.Buffer{})
	err := app.Run(append([]string{"peerwire-dump"}, args...))
	return out.String(), err
}

func frame(t *testing.T, name string, m message.Message) []byte {
	params, err := chain.New(name, 0)
	if nil != err {
		t.Fatalf("chain error: %s", err)
	}
	b, err := message.NewCodec(params).Encode(m)
	if nil != err {
		t.Fatalf("encode error: %s", err)
	}
	return b
}

func TestEncode(t *testing.T) {
	out, err := run(t, "", "--chain=regtest", "encode", "verack")
	assert.Nil(t, err, "verack")
	assert.Equal(t, "fabfb5da76657261636b000000000000000000005df6e0e2\n", out, "verack frame")

	expected := hex.EncodeToString(frame(t, chain.Bitcoin, &message.Ping{Nonce: 1}))
	out, err = run(t, "", "encode", "ping", "0100000000000000")
	assert.Nil(t, err, "ping")
	assert.Equal(t, expected+"\n", out, "ping frame")
}

func TestEncodeErrors(t *testing.T) {
	_, err := run(t, "", "encode")
	assert.NotNil(t, err, "no command")

	_, err = run(t, "", "encode", "nonesuch")
	assert.NotNil(t, err, "unknown command")

	_, err = run(t, "", "encode", "ping", "zz")
	assert.NotNil(t, err, "bad hex")

	_, err = run(t, "", "encode", "ping", "0100")
	assert.NotNil(t, err, "short nonce")

	_, err = run(t, "", "--chain=bitmark", "commands")
	assert.NotNil(t, err, "bad chain")
}

func TestDecodeArguments(t *testing.T) {
	b := frame(t, chain.Testnet, &message.Pong{Nonce: 99})
	b = append(b, frame(t, chain.Testnet, &message.VerAck{})...)

	out, err := run(t, "", "-n", "testnet", "decode", hex.EncodeToString(b))
	assert.Nil(t, err, "decode")
	assert.Contains(t, out, "pong: ", "pong")
	assert.Contains(t, out, "Nonce: (uint64) 99", "nonce")
	assert.Contains(t, out, "verack: ", "verack")
	assert.Contains(t, out, "messages: 2", "count")
}

func TestDecodeStdinWithUnknown(t *testing.T) {
	payload := []byte{1, 2, 3}
	h := message.Header{
		Magic:    chain.Magic{0xf9, 0xbe, 0xb4, 0xd9},
		Command:  "feefilter",
		Length:   uint32(len(payload)),
		Checksum: message.Checksum(payload),
	}
	b, err := h.Pack()
	assert.Nil(t, err, "header")
	b = append(b, payload...)
	b = append(b, frame(t, chain.Bitcoin, &message.GetAddr{})...)

	// whitespace in the input is ignored
	text := hex.EncodeToString(b[:10]) + "\n" + hex.EncodeToString(b[10:]) + "\n"
	out, err := run(t, text, "--verbose", "decode")
	assert.Nil(t, err, "decode")
	assert.Contains(t, out, "feefilter: unknown command, payload skipped: 3 bytes", "unknown")
	assert.Contains(t, out, "getaddr: ", "getaddr")
	assert.Contains(t, out, "--- offset: 0  bytes: 27", "verbose header")
	assert.Contains(t, out, "messages: 2", "count")
}

func TestDecodeErrors(t *testing.T) {
	b := frame(t, chain.Bitcoin, &message.VerAck{})

	_, err := run(t, "", "-n", "regtest", "decode", hex.EncodeToString(b))
	assert.NotNil(t, err, "wrong network")

	_, err = run(t, "", "decode", hex.EncodeToString(b[:20]))
	assert.NotNil(t, err, "truncated")

	_, err = run(t, "", "decode", "not hex")
	assert.NotNil(t, err, "bad hex")

	_, err = run(t, "", "decode", "--file", "/nonexistent/dump.bin")
	assert.NotNil(t, err, "missing file")
}

func TestCommands(t *testing.T) {
	out, err := run(t, "", "commands")
	assert.Nil(t, err, "commands")
	assert.Contains(t, out, "version (handshake)\n", "version")
	assert.Contains(t, out, "verack (handshake)\n", "verack")
	assert.Contains(t, out, "\ninv\n", "inv")
}
