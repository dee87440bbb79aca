// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package zmqutil

import (
	"encoding/hex"
	"io/ioutil"
	"os"
	"strings"

	zmq "github.com/pebbe/zmq4"

	"github.com/bitmark-inc/peerwire/fault"
	"github.com/bitmark-inc/peerwire/util"
)

const (
	taggedPublic  = "PUBLIC:"
	taggedPrivate = "PRIVATE:"
	publicLength  = 32
	privateLength = 32
)

// MakeKeyPair - create a new public/private keypair and write them
// to separate files
func MakeKeyPair(publicKeyFileName string, privateKeyFileName string) error {
	if util.EnsureFileExists(publicKeyFileName) {
		return fault.ErrKeyFileAlreadyExists
	}

	if util.EnsureFileExists(privateKeyFileName) {
		return fault.ErrKeyFileAlreadyExists
	}

	// keys are encoded in Z85 (ZeroMQ Base-85 Encoding) see: http://rfc.zeromq.org/spec:32
	publicKey, privateKey, err := zmq.NewCurveKeypair()
	if nil != err {
		return err
	}

	publicKey = taggedPublic + hex.EncodeToString([]byte(zmq.Z85decode(publicKey))) + "\n"
	privateKey = taggedPrivate + hex.EncodeToString([]byte(zmq.Z85decode(privateKey))) + "\n"

	if err = ioutil.WriteFile(publicKeyFileName, []byte(publicKey), 0666); nil != err {
		return err
	}

	if err = ioutil.WriteFile(privateKeyFileName, []byte(privateKey), 0600); nil != err {
		os.Remove(publicKeyFileName)
		return err
	}

	return nil
}

// ReadPublicKeyFile - read a public key file
func ReadPublicKeyFile(fileName string) ([]byte, error) {
	data, err := ioutil.ReadFile(fileName)
	if nil != err {
		return nil, err
	}
	return ReadPublicKey(string(data))
}

// ReadPrivateKeyFile - read a private key file
func ReadPrivateKeyFile(fileName string) ([]byte, error) {
	data, err := ioutil.ReadFile(fileName)
	if nil != err {
		return nil, err
	}
	return ReadPrivateKey(string(data))
}

// ReadPublicKey - read a public key from a string returning it as a 32 byte string
func ReadPublicKey(key string) ([]byte, error) {
	data, private, err := ParseKey(key)
	if nil != err {
		return []byte{}, err
	}
	if private {
		return []byte{}, fault.ErrInvalidPublicKeyFile
	}
	return data, nil
}

// ReadPrivateKey - read a private key from a string returning it as a 32 byte string
func ReadPrivateKey(key string) ([]byte, error) {
	data, private, err := ParseKey(key)
	if nil != err {
		return []byte{}, err
	}
	if !private {
		return []byte{}, fault.ErrInvalidPrivateKeyFile
	}
	return data, nil
}

// ParseKey - decode a tagged key, the flag is true for a private key
func ParseKey(data string) ([]byte, bool, error) {
	s := strings.TrimSpace(data)
	switch {
	case strings.HasPrefix(s, taggedPrivate):
		h, err := hex.DecodeString(s[len(taggedPrivate):])
		if nil != err {
			return []byte{}, false, fault.ErrInvalidHexString
		}
		if len(h) != privateLength {
			return []byte{}, false, fault.ErrInvalidPrivateKeyFile
		}
		return h, true, nil

	case strings.HasPrefix(s, taggedPublic):
		h, err := hex.DecodeString(s[len(taggedPublic):])
		if nil != err {
			return []byte{}, false, fault.ErrInvalidHexString
		}
		if len(h) != publicLength {
			return []byte{}, false, fault.ErrInvalidPublicKeyFile
		}
		return h, false, nil
	}

	return []byte{}, false, fault.ErrInvalidPublicKeyFile
}
