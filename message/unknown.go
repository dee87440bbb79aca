// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package message

// Unknown - a well framed message with a command that has no parser
//
// the payload was read and its checksum verified so that framing
// stays intact, then discarded without interpretation
type Unknown struct {
	Name   string
	Length uint32
}

func (m *Unknown) Command() string { return m.Name }

// Pack - nothing is kept to send
func (m *Unknown) Pack() ([]byte, error) { return []byte{}, nil }

func (m *Unknown) Unpack(payload []byte) error {
	m.Length = uint32(len(payload))
	return nil
}
