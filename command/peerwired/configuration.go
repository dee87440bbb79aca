// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/peerwire/chain"
	"github.com/bitmark-inc/peerwire/configuration"
	"github.com/bitmark-inc/peerwire/node"
	"github.com/bitmark-inc/peerwire/peer"
	"github.com/bitmark-inc/peerwire/publish"
	"github.com/bitmark-inc/peerwire/util"
)

// basic defaults (directories and files are relative to the "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultPublishPublicKeyFile  = "publish.public"
	defaultPublishPrivateKeyFile = "publish.private"

	defaultLogDirectory = "log"
	defaultLogFile      = "peerwired.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size

	defaultMaximumPeers   = 125
	defaultQueueSize      = 100
	defaultKnownInventory = 5000
)

// LoglevelMap - to hold log levels
type LoglevelMap map[string]string

// path expanded or calculated defaults
var (
	defaultLogLevels = LoglevelMap{
		logger.DefaultTag: "critical",
	}
)

// TimeoutType - durations as Go duration strings e.g. "30s", blank for the default
type TimeoutType struct {
	Handshake    string `gluamapper:"handshake" json:"handshake"`
	Write        string `gluamapper:"write" json:"write"`
	SendWait     string `gluamapper:"send_wait" json:"send_wait"`
	PingInterval string `gluamapper:"ping_interval" json:"ping_interval"`
	Idle         string `gluamapper:"idle" json:"idle"`
	Ping         string `gluamapper:"ping" json:"ping"`
	Request      string `gluamapper:"request" json:"request"`
	Received     string `gluamapper:"received" json:"received"`
	Relay        string `gluamapper:"relay" json:"relay"`
	Retry        string `gluamapper:"retry" json:"retry"`
	Dial         string `gluamapper:"dial" json:"dial"`
}

// PeeringType - connection settings
type PeeringType struct {
	Listen         []string    `gluamapper:"listen" json:"listen"`
	Connect        []string    `gluamapper:"connect" json:"connect"`
	MaximumPeers   int         `gluamapper:"maximum_peers" json:"maximum_peers"`
	QueueSize      int         `gluamapper:"queue_size" json:"queue_size"`
	KnownInventory int         `gluamapper:"known_inventory" json:"known_inventory"`
	MaximumBatch   int         `gluamapper:"maximum_batch" json:"maximum_batch"`
	MaximumPayload int         `gluamapper:"maximum_payload" json:"maximum_payload"`
	AcceptRate     float64     `gluamapper:"accept_rate" json:"accept_rate"`
	AcceptBurst    int         `gluamapper:"accept_burst" json:"accept_burst"`
	Timeouts       TimeoutType `gluamapper:"timeouts" json:"timeouts"`
}

// Configuration - the whole configuration file
type Configuration struct {
	DataDirectory string                `gluamapper:"data_directory" json:"data_directory"`
	PidFile       string                `gluamapper:"pidfile" json:"pidfile"`
	Chain         string                `gluamapper:"chain" json:"chain"`
	Peering       PeeringType           `gluamapper:"peering" json:"peering"`
	Publishing    publish.Configuration `gluamapper:"publishing" json:"publishing"`
	Logging       logger.Configuration  `gluamapper:"logging" json:"logging"`
}

// will read decode and verify the configuration
func getConfiguration(configurationFileName string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{

		DataDirectory: defaultDataDirectory,
		PidFile:       "", // no PidFile by default
		Chain:         chain.Bitcoin,

		Peering: PeeringType{
			MaximumPeers:   defaultMaximumPeers,
			QueueSize:      defaultQueueSize,
			KnownInventory: defaultKnownInventory,
		},

		Publishing: publish.Configuration{
			PublicKey:  defaultPublishPublicKeyFile,
			PrivateKey: defaultPublishPrivateKeyFile,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	if err := configuration.ParseConfigurationFile(configurationFileName, options); nil != err {
		return nil, err
	}

	// abort if the chain name is not recognised
	options.Chain = strings.ToLower(options.Chain)
	if !chain.Valid(options.Chain) {
		return nil, fmt.Errorf("chain: %q is not supported", options.Chain)
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fmt.Errorf("path: %q is not a valid directory", options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	} else {
		options.DataDirectory = filepath.Clean(options.DataDirectory)
	}

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fmt.Errorf("path: %q is not a directory", options.DataDirectory)
	}

	// publishing keys are only needed if the files exist
	for _, f := range []*string{
		&options.Publishing.PublicKey,
		&options.Publishing.PrivateKey,
	} {
		*f = util.EnsureAbsolute(options.DataDirectory, *f)
	}
	if !util.EnsureFileExists(options.Publishing.PrivateKey) {
		options.Publishing.PrivateKey = ""
		options.Publishing.PublicKey = ""
	}

	// optional absolute paths i.e. blank or an absolute path
	if "" != options.PidFile {
		options.PidFile = util.EnsureAbsolute(options.DataDirectory, options.PidFile)
	}

	switch filepath.Dir(options.Logging.File) {
	case "", ".":
	default:
		return nil, fmt.Errorf("files: %q is not plain name", options.Logging.File)
	}

	// make absolute and create directories if they do not already exist
	options.Logging.Directory = util.EnsureAbsolute(options.DataDirectory, options.Logging.Directory)
	if err := os.MkdirAll(options.Logging.Directory, 0700); nil != err {
		return nil, err
	}

	// reject bad durations now rather than at startup
	if _, _, err := options.nodeConfiguration(); nil != err {
		return nil, err
	}

	// done
	return options, nil
}

// convert the file settings into node and connector settings
//
// zero values are filled in by the node package
func (c *Configuration) nodeConfiguration() (node.Config, node.ConnectorConfig, error) {

	t := c.Peering.Timeouts
	durations := []struct {
		name  string
		text  string
		value time.Duration
	}{
		{name: "handshake", text: t.Handshake},
		{name: "write", text: t.Write},
		{name: "send_wait", text: t.SendWait},
		{name: "ping_interval", text: t.PingInterval},
		{name: "idle", text: t.Idle},
		{name: "ping", text: t.Ping},
		{name: "request", text: t.Request},
		{name: "received", text: t.Received},
		{name: "relay", text: t.Relay},
		{name: "retry", text: t.Retry},
		{name: "dial", text: t.Dial},
	}
	for i := range durations {
		if "" == durations[i].text {
			continue
		}
		d, err := time.ParseDuration(durations[i].text)
		if nil != err {
			return node.Config{}, node.ConnectorConfig{}, fmt.Errorf("timeouts.%s: %s", durations[i].name, err)
		}
		durations[i].value = d
	}

	nc := node.Config{
		Pool: peer.Config{
			MaximumPeers:   c.Peering.MaximumPeers,
			QueueSize:      c.Peering.QueueSize,
			SendWait:       durations[2].value,
			KnownInventory: c.Peering.KnownInventory,
		},
		HandshakeTimeout: durations[0].value,
		WriteTimeout:     durations[1].value,
		RelayExpiry:      durations[8].value,
	}
	nc.Keepalive.Interval = durations[3].value
	nc.Keepalive.IdleThreshold = durations[4].value
	nc.Keepalive.Timeout = durations[5].value
	nc.Inventory.RequestTimeout = durations[6].value
	nc.Inventory.ReceivedExpiry = durations[7].value
	nc.Inventory.MaximumBatch = c.Peering.MaximumBatch

	cc := node.ConnectorConfig{
		Listen:        c.Peering.Listen,
		Connect:       c.Peering.Connect,
		RetryInterval: durations[9].value,
		DialTimeout:   durations[10].value,
		AcceptRate:    c.Peering.AcceptRate,
		AcceptBurst:   c.Peering.AcceptBurst,
	}

	return nc, cc, nil
}
