// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package message

import (
	"sort"
)

// all known commands
const (
	CmdAddr        = "addr"
	CmdBlock       = "block"
	CmdGetAddr     = "getaddr"
	CmdGetData     = "getdata"
	CmdInv         = "inv"
	CmdNotFound    = "notfound"
	CmdPing        = "ping"
	CmdPong        = "pong"
	CmdReject      = "reject"
	CmdSendHeaders = "sendheaders"
	CmdTx          = "tx"
	CmdVerAck      = "verack"
	CmdVersion     = "version"
)

// command to empty payload constructor, fixed at compile time
var registry = map[string]func() Message{
	CmdAddr:        func() Message { return &Addr{} },
	CmdBlock:       func() Message { return &Block{} },
	CmdGetAddr:     func() Message { return &GetAddr{} },
	CmdGetData:     func() Message { return &GetData{} },
	CmdInv:         func() Message { return &Inv{} },
	CmdNotFound:    func() Message { return &NotFound{} },
	CmdPing:        func() Message { return &Ping{} },
	CmdPong:        func() Message { return &Pong{} },
	CmdReject:      func() Message { return &Reject{} },
	CmdSendHeaders: func() Message { return &SendHeaders{} },
	CmdTx:          func() Message { return &Tx{} },
	CmdVerAck:      func() Message { return &VerAck{} },
	CmdVersion:     func() Message { return &Version{} },
}

// Make - empty message for a command, false if the command is unknown
func Make(command string) (Message, bool) {
	f, ok := registry[command]
	if !ok {
		return &Unknown{Name: command}, false
	}
	return f(), true
}

// IsKnown - check if a command has a parser
func IsKnown(command string) bool {
	_, ok := registry[command]
	return ok
}

// Commands - sorted list of known commands
func Commands() []string {
	commands := make([]string, 0, len(registry))
	for c := range registry {
		commands = append(commands, c)
	}
	sort.Strings(commands)
	return commands
}

// Parse - decode a payload for a command
//
// an unknown command is not an error: the result is an Unknown
// that records only the command and payload length
func Parse(command string, payload []byte) (Message, error) {
	m, _ := Make(command)
	if err := m.Unpack(payload); nil != err {
		return nil, err
	}
	return m, nil
}

// IsHandshake - version and verack are the only messages allowed
// before a connection is ready
func IsHandshake(m Message) bool {
	switch m.(type) {
	case *Version, *VerAck:
		return true
	default:
		return false
	}
}
