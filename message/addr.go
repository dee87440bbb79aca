// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package message

import (
	"bytes"

	"github.com/btcsuite/btcd/wire"

	"github.com/bitmark-inc/peerwire/fault"
)

// MaximumAddresses - most addresses in one addr message
const MaximumAddresses = 1000

// Addr - relay of known peer addresses
type Addr struct {
	Addresses []TimestampedAddress
}

func (m *Addr) Command() string { return CmdAddr }

func (m *Addr) Pack() ([]byte, error) {
	if len(m.Addresses) > MaximumAddresses {
		return nil, fault.ErrTooManyAddresses
	}

	buffer := &bytes.Buffer{}
	if err := wire.WriteVarInt(buffer, primitiveVersion, uint64(len(m.Addresses))); nil != err {
		return nil, err
	}
	for i := range m.Addresses {
		m.Addresses[i].pack(buffer)
	}
	return buffer.Bytes(), nil
}

func (m *Addr) Unpack(payload []byte) error {
	r := bytes.NewReader(payload)

	count, err := readCount(r, MaximumAddresses, timestampedAddressSize, fault.ErrTooManyAddresses)
	if nil != err {
		return finish(r, err)
	}

	m.Addresses = nil
	if count > 0 {
		m.Addresses = make([]TimestampedAddress, count)
	}
	for i := range m.Addresses {
		if err := m.Addresses[i].unpack(r); nil != err {
			return finish(r, err)
		}
	}
	return finish(r, nil)
}
