// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package message

import (
	"bytes"
	"encoding/binary"
	"io"
	"net"
	"strconv"
	"time"
)

// packed sizes
const (
	netAddressSize         = 26
	timestampedAddressSize = 30
)

// NetAddress - services, IPv6 (or IPv4 mapped) address and port
type NetAddress struct {
	Services uint64
	IP       net.IP
	Port     uint16
}

// TimestampedAddress - an address as relayed in addr messages
type TimestampedAddress struct {
	Timestamp time.Time
	NetAddress
}

// NewNetAddress - from a TCP address as seen on a socket
func NewNetAddress(addr net.Addr, services uint64) NetAddress {
	na := NetAddress{
		Services: services,
		IP:       net.IPv6zero,
	}
	if tcp, ok := addr.(*net.TCPAddr); ok {
		if ip := tcp.IP.To16(); nil != ip {
			na.IP = ip
		}
		na.Port = uint16(tcp.Port)
	}
	return na
}

// String - host:port form
func (na NetAddress) String() string {
	ip := na.IP
	if nil == ip {
		ip = net.IPv6zero
	}
	return net.JoinHostPort(ip.String(), strconv.Itoa(int(na.Port)))
}

func (na *NetAddress) pack(buffer *bytes.Buffer) {
	writeUint64(buffer, na.Services)

	ip := [16]byte{}
	if nil != na.IP {
		copy(ip[:], na.IP.To16())
	}
	buffer.Write(ip[:])

	// port is big endian
	port := [2]byte{}
	binary.BigEndian.PutUint16(port[:], na.Port)
	buffer.Write(port[:])
}

func (na *NetAddress) unpack(r io.Reader) error {
	services, err := readUint64(r)
	if nil != err {
		return err
	}

	b := [18]byte{}
	if _, err := io.ReadFull(r, b[:]); nil != err {
		return err
	}

	na.Services = services
	na.IP = make(net.IP, net.IPv6len)
	copy(na.IP, b[:16])
	na.Port = binary.BigEndian.Uint16(b[16:])
	return nil
}

func (ta *TimestampedAddress) pack(buffer *bytes.Buffer) {
	writeUint32(buffer, uint32(ta.Timestamp.Unix()))
	ta.NetAddress.pack(buffer)
}

func (ta *TimestampedAddress) unpack(r io.Reader) error {
	ts, err := readUint32(r)
	if nil != err {
		return err
	}
	ta.Timestamp = time.Unix(int64(ts), 0)
	return ta.NetAddress.unpack(r)
}
