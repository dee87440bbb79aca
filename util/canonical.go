// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"net"
	"strconv"
	"strings"

	"github.com/bitmark-inc/peerwire/fault"
)

// CanonicalIPandPort - make the IP:Port canonical
//
// examples:
//   IPv4:  127.0.0.1:1234
//   IPv6:  [::1]:1234
func CanonicalIPandPort(hostPort string) (string, error) {

	host, port, err := net.SplitHostPort(hostPort)
	if nil != err {
		return "", fault.ErrInvalidEndpoint
	}

	IP := net.ParseIP(strings.Trim(host, " "))
	if nil == IP {
		return "", fault.ErrInvalidIPAddress
	}

	numericPort, err := parsePort(port)
	if nil != err {
		return "", err
	}

	return net.JoinHostPort(IP.String(), strconv.Itoa(int(numericPort))), nil
}

func parsePort(port string) (uint16, error) {
	n, err := strconv.Atoi(strings.Trim(port, " "))
	if nil != err || n < 1 || n > 65535 {
		return 0, fault.ErrInvalidPortNumber
	}
	return uint16(n), nil
}

// DualStack - expand "*:port" into the IPv4 and IPv6 wildcard
// addresses, duplicates are removed and order is kept
func DualStack(hostPorts []string) []string {
	seen := make(map[string]struct{})
	result := make([]string, 0, len(hostPorts))
	add := func(s string) {
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		result = append(result, s)
	}
	for _, hostPort := range hostPorts {
		if strings.HasPrefix(hostPort, "*:") {
			port := strings.TrimPrefix(hostPort, "*:")
			add("0.0.0.0:" + port)
			add("[::]:" + port)
			continue
		}
		add(hostPort)
	}
	return result
}
