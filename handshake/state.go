// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package handshake

// State - position in the version exchange
type State int

// states of the handshake
const (
	// connection accepted or established, nothing exchanged
	StateInit State = iota

	// our version sent, waiting for theirs
	StateVersionSent

	// their version received and acknowledged, waiting for verack
	StateVersionReceived

	// both sides acknowledged, any message may be exchanged
	StateReady

	// terminal: violation or timeout, the connection must close
	StateFailed
)

func (state State) String() string {
	switch state {
	case StateInit:
		return "Init"
	case StateVersionSent:
		return "VersionSent"
	case StateVersionReceived:
		return "VersionReceived"
	case StateReady:
		return "Ready"
	case StateFailed:
		return "Failed"
	default:
		return "*Unknown*"
	}
}
