// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node_test

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/peerwire/chain"
	"github.com/bitmark-inc/peerwire/handshake"
	"github.com/bitmark-inc/peerwire/message"
	"github.com/bitmark-inc/peerwire/messagebus"
	"github.com/bitmark-inc/peerwire/node"
	"github.com/bitmark-inc/peerwire/node/mocks"
)

const ioTimeout = 2 * time.Second

var tipHash = chainhash.Hash{0xaa, 0xbb}

func regtest(t *testing.T) *chain.Params {
	params, err := chain.New(chain.Regtest, 0)
	if nil != err {
		t.Fatalf("params error: %s", err)
	}
	return params
}

func chainSource(ctl *gomock.Controller) *mocks.MockChainSource {
	source := mocks.NewMockChainSource(ctl)
	source.EXPECT().ChainTip().Return(tipHash, int32(100)).AnyTimes()
	source.EXPECT().MedianTimePast().Return(time.Unix(1500000000, 0)).AnyTimes()
	return source
}

func newNode(t *testing.T, config node.Config, source node.ChainSource, consumer node.Consumer, bus *messagebus.Bus) *node.Node {
	n, err := node.New(regtest(t), config, source, consumer, bus)
	if nil != err {
		t.Fatalf("node error: %s", err)
	}
	return n
}

// the remote end of a served connection, driven by the test
type harness struct {
	t      *testing.T
	node   *node.Node
	remote net.Conn
	codec  *message.Codec
	done   chan error
}

func serve(t *testing.T, n *node.Node, inbound bool) *harness {
	local, remote := net.Pipe()
	h := &harness{
		t:      t,
		node:   n,
		remote: remote,
		codec:  message.NewCodec(n.Params()),
		done:   make(chan error, 1),
	}
	go func() {
		h.done <- n.Serve(local, inbound)
	}()
	return h
}

func (h *harness) write(m message.Message) {
	h.remote.SetWriteDeadline(time.Now().Add(ioTimeout))
	_, err := h.codec.WriteMessage(h.remote, m)
	if nil != err {
		h.t.Fatalf("write: %s  error: %s", m.Command(), err)
	}
}

func (h *harness) writeRaw(b []byte) {
	h.remote.SetWriteDeadline(time.Now().Add(ioTimeout))
	_, err := h.remote.Write(b)
	if nil != err {
		h.t.Fatalf("write raw error: %s", err)
	}
}

func (h *harness) read() message.Message {
	h.remote.SetReadDeadline(time.Now().Add(ioTimeout))
	_, m, _, err := h.codec.ReadMessage(h.remote)
	if nil != err {
		h.t.Fatalf("read error: %s", err)
	}
	return m
}

// result of Serve once the connection has ended
func (h *harness) result() error {
	select {
	case err := <-h.done:
		return err
	case <-time.After(ioTimeout):
		h.t.Fatal("serve did not return")
	}
	return nil
}

func (h *harness) close() error {
	h.remote.Close()
	return h.result()
}

func remoteVersion(nonce uint64) *message.Version {
	return &message.Version{
		ProtocolVersion: 70012,
		Services:        chain.ServiceNodeNetwork,
		Timestamp:       time.Unix(1600000000, 0),
		Receiver:        message.NetAddress{IP: net.IPv6zero, Port: 18444},
		Sender:          message.NetAddress{IP: net.ParseIP("10.0.0.1"), Port: 18444},
		Nonce:           nonce,
		UserAgent:       "/remote:1.0/",
		StartHeight:     50,
		Relay:           true,
	}
}

// complete an inbound handshake from the remote side
func (h *harness) handshake() {
	h.write(remoteVersion(7))

	v, ok := h.read().(*message.Version)
	if !ok {
		h.t.Fatal("expected version")
	}
	assert.Equal(h.t, int32(100), v.StartHeight, "our start height")
	if _, ok := h.read().(*message.VerAck); !ok {
		h.t.Fatal("expected verack")
	}

	h.write(&message.VerAck{})
	h.waitForState(handshake.StateReady)
}

func (h *harness) waitForState(state handshake.State) {
	waitFor(h.t, state.String(), func() bool {
		views := h.node.Pool().Snapshot()
		return 1 == len(views) && state == views[0].State
	})
}

func waitFor(t *testing.T, what string, f func() bool) {
	deadline := time.Now().Add(ioTimeout)
	for !f() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for: %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// a minimal valid transaction
func rawTransaction(t *testing.T, value int64) []byte {
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(wire.NewTxIn(&wire.OutPoint{Index: 1}, []byte{0x51}, nil))
	tx.AddTxOut(wire.NewTxOut(value, []byte{0x51}))
	buffer := &bytes.Buffer{}
	if err := tx.Serialize(buffer); nil != err {
		t.Fatalf("serialise error: %s", err)
	}
	return buffer.Bytes()
}
