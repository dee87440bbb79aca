// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/peerwire/background"
	"github.com/bitmark-inc/peerwire/chain"
	"github.com/bitmark-inc/peerwire/fault"
	"github.com/bitmark-inc/peerwire/messagebus"
	"github.com/bitmark-inc/peerwire/node"
	"github.com/bitmark-inc/peerwire/publish"
	"github.com/bitmark-inc/peerwire/zmqutil"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

// main program
func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "verbose", HasArg: getoptions.NO_ARGUMENT, Short: 'v'},
		{Long: "quiet", HasArg: getoptions.NO_ARGUMENT, Short: 'q'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
		{Long: "memory-stats", HasArg: getoptions.NO_ARGUMENT, Short: 'm'},
	}

	program, options, arguments, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		processSetupCommand(program, []string{"version"})
		return
	}

	if len(options["help"]) > 0 {
		processSetupCommand(program, []string{"help"})
		return
	}

	// these commands do not require the configuration
	if len(arguments) > 0 && processSetupCommand(program, arguments) {
		return
	}

	if 1 != len(options["config-file"]) {
		exitwithstatus.Message("%s: only one config-file option is required, %d were detected", program, len(options["config-file"]))
	}

	// read options and parse the configuration file
	configurationFile := options["config-file"][0]
	theConfiguration, err := getConfiguration(configurationFile)
	if nil != err {
		exitwithstatus.Message("%s: failed to read configuration from: %q  error: %s", program, configurationFile, err)
	}

	if len(arguments) > 0 && processConfigCommand(arguments, theConfiguration) {
		return
	}

	// start logging
	if err = logger.Initialise(theConfiguration.Logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	// last resort logging for unexpected failures
	if err = fault.Initialise(); nil != err {
		exitwithstatus.Message("%s: fault setup failed with error: %s", program, err)
	}
	defer fault.Finalise()

	// create a logger channel for the main program
	log := logger.New("main")
	defer log.Info("finished")
	log.Info("starting…")
	log.Infof("version: %s", version)
	log.Debugf("theConfiguration: %v", theConfiguration)

	// optional PID file
	// use if not running under a supervisor program like daemon(8)
	if "" != theConfiguration.PidFile {
		lockFile, err := os.OpenFile(theConfiguration.PidFile, os.O_WRONLY|os.O_EXCL|os.O_CREATE, os.ModeExclusive|0600)
		if err != nil {
			if os.IsExist(err) {
				exitwithstatus.Message("%s: another instance is already running", program)
			}
			exitwithstatus.Message("%s: PID file: %q creation failed, error: %s", program, theConfiguration.PidFile, err)
		}
		fmt.Fprintf(lockFile, "%d\n", os.Getpid())
		lockFile.Close()
		defer os.Remove(theConfiguration.PidFile)
	}

	params, err := chain.New(theConfiguration.Chain, uint32(theConfiguration.Peering.MaximumPayload))
	if nil != err {
		log.Criticalf("chain: %q error: %s", theConfiguration.Chain, err)
		exitwithstatus.Message("chain: %q error: %s", theConfiguration.Chain, err)
	}
	params.UserAgent = fmt.Sprintf("/peerwired:%s/", version)
	log.Infof("chain: %s  magic: %s  port: %d", params.Name, params.Magic, params.DefaultPort)

	nodeConfiguration, connectorConfiguration, err := theConfiguration.nodeConfiguration()
	if nil != err {
		log.Criticalf("peering configuration error: %s", err)
		exitwithstatus.Message("peering configuration error: %s", err)
	}
	log.Debugf("%s = %#v", "Peering", theConfiguration.Peering)
	log.Debugf("%s = %#v", "Publishing", theConfiguration.Publishing)

	source, err := newGenesisSource(params.Name)
	if nil != err {
		log.Criticalf("chain source error: %s", err)
		exitwithstatus.Message("chain source error: %s", err)
	}
	consumer := newLogConsumer()

	bus := messagebus.New()
	defer bus.Close()

	// start up the publishing background processes
	if len(theConfiguration.Publishing.Broadcast) > 0 {
		if "" != theConfiguration.Publishing.PrivateKey {
			err = zmqutil.StartAuthentication()
			if nil != err {
				log.Criticalf("zmq.AuthStart: error: %s", err)
				exitwithstatus.Message("zmq.AuthStart: error: %s", err)
			}
		}

		err = publish.Initialise(&theConfiguration.Publishing, bus)
		if nil != err {
			log.Criticalf("publish initialise error: %s", err)
			exitwithstatus.Message("publish initialise error: %s", err)
		}
		defer publish.Finalise()
	}

	n, err := node.New(params, nodeConfiguration, source, consumer, bus)
	if nil != err {
		log.Criticalf("node initialise error: %s", err)
		exitwithstatus.Message("node initialise error: %s", err)
	}

	connector, err := node.NewConnector(n, connectorConfiguration)
	if nil != err {
		log.Criticalf("connector initialise error: %s", err)
		exitwithstatus.Message("connector initialise error: %s", err)
	}
	for _, a := range connector.Addresses() {
		log.Infof("listening on: %s", a)
	}

	// the connector stops first so no new sessions arrive while the
	// node disconnects the existing ones
	processes := background.Processes{
		n,
		consumer,
	}
	nodeProcesses := background.Start(processes, nil)
	connectorProcess := background.Start(background.Processes{connector}, nil)

	// if memory logging enabled
	if len(options["memory-stats"]) > 0 {
		go memstats()
	}

	// wait for CTRL-C before shutting down to allow manual testing
	if 0 == len(options["quiet"]) {
		fmt.Printf("\n\nWaiting for CTRL-C (SIGINT) or 'kill <pid>' (SIGTERM)…")
	}

	// turn Signals into channel messages
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1)
	for {
		sig := <-ch
		if syscall.SIGUSR1 == sig {
			peerStats(log, n)
			continue
		}
		log.Infof("received signal: %v", sig)
		if 0 == len(options["quiet"]) {
			fmt.Printf("\nreceived signal: %v\n", sig)
			fmt.Printf("\nshutting down…\n")
		}
		break
	}

	log.Info("shutting down…")
	connectorProcess.Stop()
	nodeProcesses.Stop()
}
