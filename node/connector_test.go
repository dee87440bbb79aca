// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node_test

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/peerwire/background"
	"github.com/bitmark-inc/peerwire/fault"
	"github.com/bitmark-inc/peerwire/fixtures"
	"github.com/bitmark-inc/peerwire/handshake"
	"github.com/bitmark-inc/peerwire/node"
)

func readyPeers(n *node.Node) int {
	count := 0
	for _, v := range n.Pool().Snapshot() {
		if handshake.StateReady == v.State {
			count += 1
		}
	}
	return count
}

func TestConnectorLinksTwoNodes(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	ctl := gomock.NewController(t)
	defer ctl.Finish()

	a := newNode(t, node.Config{}, chainSource(ctl), nil, nil)
	b := newNode(t, node.Config{}, chainSource(ctl), nil, nil)

	ca, err := node.NewConnector(a, node.ConnectorConfig{
		Listen: []string{"127.0.0.1:0"},
	})
	assert.Nil(t, err, "listener")
	address := ca.Addresses()[0].String()

	cb, err := node.NewConnector(b, node.ConnectorConfig{
		Connect:       []string{address},
		RetryInterval: time.Second,
	})
	assert.Nil(t, err, "dialler")

	processes := background.Start(background.Processes{a, ca, b, cb}, nil)

	waitFor(t, "both ready", func() bool {
		return 1 == readyPeers(a) && 1 == readyPeers(b)
	})

	assert.True(t, a.PeerInfoSnapshot()[0].Inbound, "accepted side")
	assert.False(t, b.PeerInfoSnapshot()[0].Inbound, "dialled side")
	assert.Equal(t, address, b.PeerInfoSnapshot()[0].Address, "dialled address")

	processes.Stop()
	assert.Equal(t, 0, a.Pool().Len(), "a empty")
	assert.Equal(t, 0, b.Pool().Len(), "b empty")
}

func TestConnectorAcceptRateLimit(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	ctl := gomock.NewController(t)
	defer ctl.Finish()

	n := newNode(t, node.Config{}, chainSource(ctl), nil, nil)
	c, err := node.NewConnector(n, node.ConnectorConfig{
		Listen:      []string{"127.0.0.1:0"},
		AcceptRate:  0.001,
		AcceptBurst: 1,
	})
	assert.Nil(t, err, "listener")
	address := c.Addresses()[0].String()

	processes := background.Start(background.Processes{n, c}, nil)
	defer processes.Stop()

	first, err := net.Dial("tcp", address)
	assert.Nil(t, err, "first dial")
	defer first.Close()

	waitFor(t, "first accepted", func() bool {
		return 1 == n.Pool().Len()
	})

	second, err := net.Dial("tcp", address)
	assert.Nil(t, err, "second dial")
	defer second.Close()

	second.SetReadDeadline(time.Now().Add(ioTimeout))
	_, err = second.Read(make([]byte, 1))
	assert.Equal(t, io.EOF, err, "refused connection is closed")
	assert.Equal(t, 1, n.Pool().Len(), "only the first is served")
}

func TestConnectorBadConfiguration(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	ctl := gomock.NewController(t)
	defer ctl.Finish()

	n := newNode(t, node.Config{}, chainSource(ctl), nil, nil)

	_, err := node.NewConnector(n, node.ConnectorConfig{Connect: []string{"/ip4/1.2.3.4"}})
	assert.Equal(t, fault.ErrInvalidEndpoint, err, "bad endpoint")

	_, err = node.NewConnector(n, node.ConnectorConfig{Listen: []string{"127.0.0.1:99999"}})
	assert.NotNil(t, err, "bad listen address")

	_, err = node.NewConnector(nil, node.ConnectorConfig{})
	assert.Equal(t, fault.ErrMissingParameters, err, "no node")
}
