// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/peerwire/chain"
)

func writeConfiguration(t *testing.T, text string) (string, string) {
	dir, err := ioutil.TempDir("", "peerwired")
	if nil != err {
		t.Fatalf("temp dir error: %s", err)
	}
	t.Cleanup(func() {
		os.RemoveAll(dir)
	})
	name := filepath.Join(dir, "peerwired.conf")
	if err := ioutil.WriteFile(name, []byte(text), 0600); nil != err {
		t.Fatalf("write error: %s", err)
	}
	return dir, name
}

func TestSampleConfiguration(t *testing.T) {
	text, err := ioutil.ReadFile("peerwired.conf.sample")
	if nil != err {
		t.Fatalf("read sample error: %s", err)
	}
	dir, name := writeConfiguration(t, string(text))

	c, err := getConfiguration(name)
	assert.Nil(t, err, "parse")
	assert.Equal(t, chain.Regtest, c.Chain, "chain")
	assert.Equal(t, []string{"*:18444"}, c.Peering.Listen, "listen")
	assert.Equal(t, filepath.Join(dir, "log"), c.Logging.Directory, "log directory")
	assert.Equal(t, "", c.Publishing.PrivateKey, "no key files")

	info, err := os.Stat(c.Logging.Directory)
	assert.Nil(t, err, "log directory created")
	assert.True(t, info.IsDir(), "is directory")

	nc, cc, err := c.nodeConfiguration()
	assert.Nil(t, err, "node configuration")
	assert.Equal(t, 30*time.Second, nc.HandshakeTimeout, "handshake")
	assert.Equal(t, 2*time.Minute, nc.Keepalive.IdleThreshold, "idle")
	assert.Equal(t, time.Hour, nc.Inventory.ReceivedExpiry, "received")
	assert.Equal(t, 125, nc.Pool.MaximumPeers, "peers")
	assert.Equal(t, 5*time.Second, nc.Pool.SendWait, "send wait")
	assert.Equal(t, 10*time.Second, cc.DialTimeout, "dial")
	assert.Equal(t, float64(10), cc.AcceptRate, "accept rate")
}

func TestConfigurationDefaults(t *testing.T) {
	_, name := writeConfiguration(t, `return { data_directory = "." }`)

	c, err := getConfiguration(name)
	assert.Nil(t, err, "parse")
	assert.Equal(t, chain.Bitcoin, c.Chain, "chain")
	assert.Equal(t, defaultMaximumPeers, c.Peering.MaximumPeers, "peers")

	nc, _, err := c.nodeConfiguration()
	assert.Nil(t, err, "node configuration")
	assert.Equal(t, time.Duration(0), nc.HandshakeTimeout, "left for node default")
}

func TestConfigurationErrors(t *testing.T) {
	items := []string{
		`return { chain = "regtest" }`,
		`return { data_directory = ".", chain = "bitmark" }`,
		`return { data_directory = "/nonexistent/peerwired" }`,
		`return { data_directory = ".", peering = { timeouts = { ping = "soon" } } }`,
		`return { data_directory = ".", logging = { file = "sub/peerwired.log" } }`,
	}
	for i, text := range items {
		_, name := writeConfiguration(t, text)
		c, err := getConfiguration(name)
		assert.NotNil(t, err, "%d: expected error", i)
		assert.Nil(t, c, "%d: configuration", i)
	}
}

func TestGenesisSource(t *testing.T) {
	source, err := newGenesisSource(chain.Regtest)
	assert.Nil(t, err, "source")

	tip, height := source.ChainTip()
	assert.Equal(t, int32(0), height, "height")

	h, ok := source.HeightOf(tip)
	assert.True(t, ok, "genesis known")
	assert.Equal(t, int32(0), h, "genesis height")

	_, ok = source.HeightOf([32]byte{1})
	assert.False(t, ok, "other block")
	assert.False(t, source.MedianTimePast().IsZero(), "timestamp")

	_, err = newGenesisSource("bitmark")
	assert.NotNil(t, err, "unknown chain")
}
