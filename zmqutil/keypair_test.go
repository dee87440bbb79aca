// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package zmqutil_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/peerwire/fault"
	"github.com/bitmark-inc/peerwire/zmqutil"
)

const (
	publicHex  = "0102030405060708091011121314151617181920212223242526272829303132"
	privateHex = "a1a2a3a4a5a6a7a8a9b0b1b2b3b4b5b6b7b8b9c0c1c2c3c4c5c6c7c8c9d0d1d2"
)

func TestParseKey(t *testing.T) {
	data, private, err := zmqutil.ParseKey("  PUBLIC:" + publicHex + "\n")
	assert.Nil(t, err, "public")
	assert.False(t, private, "public flag")
	assert.Equal(t, 32, len(data), "public length")

	data, private, err = zmqutil.ParseKey("PRIVATE:" + privateHex)
	assert.Nil(t, err, "private")
	assert.True(t, private, "private flag")
	assert.Equal(t, byte(0xa1), data[0], "first byte")
}

func TestParseKeyErrors(t *testing.T) {
	testData := []struct {
		key string
		err error
	}{
		{"", fault.ErrInvalidPublicKeyFile},
		{publicHex, fault.ErrInvalidPublicKeyFile},
		{"PUBLIC:0102", fault.ErrInvalidPublicKeyFile},
		{"PRIVATE:0102", fault.ErrInvalidPrivateKeyFile},
		{"PUBLIC:xyz", fault.ErrInvalidHexString},
		{"PRIVATE:" + strings.Repeat("g", 64), fault.ErrInvalidHexString},
	}
	for i, d := range testData {
		_, _, err := zmqutil.ParseKey(d.key)
		assert.Equal(t, d.err, err, "key[%d]", i)
	}
}

func TestReadKeysChecksKind(t *testing.T) {
	_, err := zmqutil.ReadPublicKey("PRIVATE:" + privateHex)
	assert.Equal(t, fault.ErrInvalidPublicKeyFile, err, "private as public")

	_, err = zmqutil.ReadPrivateKey("PUBLIC:" + publicHex)
	assert.Equal(t, fault.ErrInvalidPrivateKeyFile, err, "public as private")
}

func TestMakeKeyPair(t *testing.T) {
	dir, err := ioutil.TempDir("", "zmqutil")
	assert.Nil(t, err, "temp dir")
	defer os.RemoveAll(dir)

	public := filepath.Join(dir, "publish.public")
	private := filepath.Join(dir, "publish.private")

	err = zmqutil.MakeKeyPair(public, private)
	assert.Nil(t, err, "make")

	publicKey, err := zmqutil.ReadPublicKeyFile(public)
	assert.Nil(t, err, "read public")
	assert.Equal(t, 32, len(publicKey), "public length")

	privateKey, err := zmqutil.ReadPrivateKeyFile(private)
	assert.Nil(t, err, "read private")
	assert.Equal(t, 32, len(privateKey), "private length")

	err = zmqutil.MakeKeyPair(public, private)
	assert.Equal(t, fault.ErrKeyFileAlreadyExists, err, "no overwrite")
}
