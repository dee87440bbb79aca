// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/bitmark-inc/peerwire/fault"
	"github.com/bitmark-inc/peerwire/message"
)

// payloads are summarised rather than dumped byte by byte
var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
	MaxDepth:                6,
}

func runDecode(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	var input io.Reader
	switch {
	case "" != c.String("file"):
		f, err := os.Open(c.String("file"))
		if nil != err {
			return err
		}
		defer f.Close()
		input = bufio.NewReader(f)

	case c.NArg() > 0:
		b, err := hex.DecodeString(strings.Join(c.Args(), ""))
		if nil != err {
			return fault.ErrInvalidHexString
		}
		input = bytes.NewReader(b)

	default:
		text, err := ioutil.ReadAll(m.r)
		if nil != err {
			return err
		}
		b, err := hex.DecodeString(strings.Join(strings.Fields(string(text)), ""))
		if nil != err {
			return fault.ErrInvalidHexString
		}
		input = bytes.NewReader(b)
	}

	return decodeAll(m, input)
}

// dump every message in a stream until it is exhausted
func decodeAll(m *metadata, r io.Reader) error {
	offset := 0
	for count := 0; ; count += 1 {
		h, msg, n, err := m.codec.ReadMessage(r)
		if io.EOF == err && 0 == n {
			fmt.Fprintf(m.w, "messages: %d  bytes: %d\n", count, offset)
			return nil
		}
		if nil != err {
			if nil != h {
				return errors.Wrapf(err, "message: %d at offset: %d command: %q", count, offset, h.Command)
			}
			return errors.Wrapf(err, "message: %d at offset: %d", count, offset)
		}

		if m.verbose {
			fmt.Fprintf(m.w, "--- offset: %d  bytes: %d\n", offset, n)
			dumper.Fdump(m.w, h)
		}

		if u, ok := msg.(*message.Unknown); ok {
			fmt.Fprintf(m.w, "%s: unknown command, payload skipped: %d bytes\n", u.Name, u.Length)
		} else {
			fmt.Fprintf(m.w, "%s: ", msg.Command())
			dumper.Fdump(m.w, msg)
		}
		offset += n
	}
}

func runEncode(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	if c.NArg() < 1 || c.NArg() > 2 {
		return fault.ErrMissingParameters
	}
	command := c.Args().Get(0)
	if !message.IsKnown(command) {
		return fault.ErrUnknownCommand
	}

	payload := []byte{}
	if 2 == c.NArg() {
		var err error
		payload, err = hex.DecodeString(c.Args().Get(1))
		if nil != err {
			return fault.ErrInvalidHexString
		}
	}

	// parse first so only valid payloads are framed
	msg, err := message.Parse(command, payload)
	if nil != err {
		return errors.Wrapf(err, "command: %q", command)
	}
	b, err := m.codec.Encode(msg)
	if nil != err {
		return err
	}
	fmt.Fprintf(m.w, "%x\n", b)
	return nil
}

func runCommands(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)
	for _, command := range message.Commands() {
		msg, _ := message.Make(command)
		if message.IsHandshake(msg) {
			fmt.Fprintf(m.w, "%s (handshake)\n", command)
		} else {
			fmt.Fprintf(m.w, "%s\n", command)
		}
	}
	return nil
}

func runVersion(c *cli.Context) error {
	fmt.Fprintf(c.App.Writer, "%s\n", version)
	return nil
}
