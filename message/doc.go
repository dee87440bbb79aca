// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package message - the peer to peer wire format
//
// Every message is a 24 byte header followed by a payload:
//
//   magic     4 bytes  network identifier
//   command  12 bytes  ASCII, zero padded
//   length    4 bytes  little endian payload length
//   checksum  4 bytes  first 4 bytes of double SHA-256 of payload
//
// The header is validated completely (magic, length, checksum)
// before the payload is given to a parser, and each parser must
// consume exactly the declared length.
package message
