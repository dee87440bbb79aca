// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"net"
	"strconv"
	"strings"

	ma "github.com/multiformats/go-multiaddr"

	"github.com/bitmark-inc/peerwire/fault"
)

// Endpoint - a candidate peer, satisfies net.Addr so that it can be
// handed directly to a dialler
type Endpoint struct {
	Host string
	Port uint16
}

// Network - always tcp
func (e *Endpoint) Network() string {
	return "tcp"
}

// String - host:port with IPv6 bracketed
func (e *Endpoint) String() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(int(e.Port)))
}

// ParseEndpoint - accept "host", "host:port", "[v6]:port" or a
// multiaddr such as /ip4/127.0.0.1/tcp/8333
//
// a missing port is replaced by defaultPort
func ParseEndpoint(s string, defaultPort uint16) (*Endpoint, error) {
	s = strings.TrimSpace(s)
	if "" == s {
		return nil, fault.ErrInvalidEndpoint
	}

	if strings.HasPrefix(s, "/") {
		return fromMultiaddr(s)
	}

	host, port, err := net.SplitHostPort(s)
	if nil != err {
		// bare host or bare IPv6 address
		host = strings.Trim(s, "[]")
		if "" == host {
			return nil, fault.ErrInvalidEndpoint
		}
		return &Endpoint{Host: host, Port: defaultPort}, nil
	}
	if "" == host {
		return nil, fault.ErrInvalidEndpoint
	}
	n, err := parsePort(port)
	if nil != err {
		return nil, err
	}
	return &Endpoint{Host: host, Port: n}, nil
}

// ParseEndpoints - parse a list, stopping at the first error
func ParseEndpoints(list []string, defaultPort uint16) ([]*Endpoint, error) {
	endpoints := make([]*Endpoint, 0, len(list))
	for _, s := range list {
		e, err := ParseEndpoint(s, defaultPort)
		if nil != err {
			return nil, err
		}
		endpoints = append(endpoints, e)
	}
	return endpoints, nil
}

func fromMultiaddr(s string) (*Endpoint, error) {
	addr, err := ma.NewMultiaddr(s)
	if nil != err {
		return nil, fault.ErrInvalidEndpoint
	}

	host := ""
	for _, p := range addr.Protocols() {
		switch p.Name {
		case "ip4", "ip6", "dns4", "dns6":
			host, _ = addr.ValueForProtocol(p.Code)
		}
		if "" != host {
			break
		}
	}
	if "" == host {
		return nil, fault.ErrInvalidEndpoint
	}

	port, err := addr.ValueForProtocol(ma.P_TCP)
	if nil != err {
		return nil, fault.ErrInvalidEndpoint
	}
	n, err := parsePort(port)
	if nil != err {
		return nil, err
	}
	return &Endpoint{Host: host, Port: n}, nil
}
