// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package publish - ZeroMQ feed of peer lifecycle events
package publish

import (
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/peerwire/background"
	"github.com/bitmark-inc/peerwire/fault"
	"github.com/bitmark-inc/peerwire/messagebus"
	"github.com/bitmark-inc/peerwire/zmqutil"
)

// Configuration - a block of configuration data
// this is read from the Lua configuration file
type Configuration struct {
	Broadcast  []string `gluamapper:"broadcast" json:"broadcast"`
	PrivateKey string   `gluamapper:"private_key" json:"private_key"`
	PublicKey  string   `gluamapper:"public_key" json:"public_key"`
}

// globals for background process
type publishData struct {
	sync.RWMutex // to allow locking

	log *logger.L // logger

	brdc broadcaster // for sending events

	// for background
	background *background.T

	// set once during initialise
	initialised bool
}

// global data
var globalData publishData

// Initialise - bind the sockets and start publishing events from the bus
//
// keys are optional, without them the feed is not encrypted
func Initialise(configuration *Configuration, bus *messagebus.Bus) error {

	globalData.Lock()
	defer globalData.Unlock()

	// no need to start if already started
	if globalData.initialised {
		return fault.ErrAlreadyInitialised
	}

	if nil == configuration || nil == bus || 0 == len(configuration.Broadcast) {
		return fault.ErrMissingParameters
	}

	globalData.log = logger.New("publish")
	globalData.log.Info("starting…")

	privateKey := []byte{}
	publicKey := []byte{}
	if "" != configuration.PrivateKey {
		var err error
		privateKey, err = zmqutil.ReadPrivateKeyFile(configuration.PrivateKey)
		if nil != err {
			globalData.log.Errorf("read private key file: %q  error: %s", configuration.PrivateKey, err)
			return err
		}
		publicKey, err = zmqutil.ReadPublicKeyFile(configuration.PublicKey)
		if nil != err {
			globalData.log.Errorf("read public key file: %q  error: %s", configuration.PublicKey, err)
			return err
		}
		globalData.log.Tracef("public key: %x", publicKey)
	}

	if err := globalData.brdc.initialise(privateKey, publicKey, configuration.Broadcast, bus); nil != err {
		return err
	}

	// all data initialised
	globalData.initialised = true

	globalData.log.Info("start background…")

	processes := background.Processes{
		&globalData.brdc,
	}

	globalData.background = background.Start(processes, nil)

	return nil
}

// Finalise - stop all background tasks
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.log.Flush()

	globalData.background.Stop()

	globalData.initialised = false

	globalData.log.Infof("finished  events sent: %d", globalData.brdc.sent.Uint64())
	globalData.log.Flush()

	return nil
}
