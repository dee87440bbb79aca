// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package node - drives peer connections
//
// Each connection gets a session in the pool and is served by its
// own goroutine, which owns the read side of the socket.  A second
// goroutine drains the session's outbound queue onto the socket.
// Received messages are passed through the handshake machine until
// it is ready, then dispatched to keepalive, the inventory tracker
// and the external collaborators.
//
// The connector wraps the btcd connection manager to dial the
// configured endpoints and accept inbound connections.
package node
