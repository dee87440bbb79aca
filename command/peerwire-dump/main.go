// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/peerwire/chain"
	"github.com/bitmark-inc/peerwire/message"
)

type metadata struct {
	codec   *message.Codec
	verbose bool
	r       io.Reader
	w       io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {
	app := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := app.Run(os.Args); nil != err {
		fmt.Fprintf(os.Stderr, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}

func newApp(r io.Reader, w io.Writer, e io.Writer) *cli.App {

	app := cli.NewApp()
	app.Name = "peerwire-dump"
	app.Usage = "decode and encode Bitcoin peer messages"
	app.Version = version
	app.HideVersion = true

	app.Writer = w
	app.ErrWriter = e

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " show headers and raw payload sizes",
		},
		cli.StringFlag{
			Name:  "chain, n",
			Value: chain.Bitcoin,
			Usage: " network magic to expect `CHAIN` [bitcoin|testnet|regtest]",
		},
		cli.UintFlag{
			Name:  "maximum-payload, m",
			Value: 0,
			Usage: " reject payloads larger than `BYTES` [0 = protocol limit]",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "decode",
			Usage:     "decode framed messages from hex arguments or from stdin",
			ArgsUsage: "[HEX...]",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "file, f",
					Value: "",
					Usage: " read binary messages from `FILE`",
				},
			},
			Action: runDecode,
		},
		{
			Name:      "encode",
			Usage:     "frame a payload for a command and print it as hex",
			ArgsUsage: "COMMAND [HEX-PAYLOAD]",
			Action:    runEncode,
		},
		{
			Name:   "commands",
			Usage:  "list the commands that have a payload parser",
			Action: runCommands,
		},
		{
			Name:   "version",
			Usage:  "display program version",
			Action: runVersion,
		},
	}

	app.Before = func(c *cli.Context) error {

		params, err := chain.New(c.GlobalString("chain"), uint32(c.GlobalUint("maximum-payload")))
		if nil != err {
			return err
		}

		c.App.Metadata["config"] = &metadata{
			codec:   message.NewCodec(params),
			verbose: c.GlobalBool("verbose"),
			r:       r,
			w:       c.App.Writer,
		}

		return nil
	}

	return app
}
