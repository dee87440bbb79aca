// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package publish

import (
	"encoding/json"

	"github.com/bitmark-inc/logger"
	zmq "github.com/pebbe/zmq4"

	"github.com/bitmark-inc/peerwire/counter"
	"github.com/bitmark-inc/peerwire/fault"
	"github.com/bitmark-inc/peerwire/messagebus"
	"github.com/bitmark-inc/peerwire/peer"
	"github.com/bitmark-inc/peerwire/zmqutil"
)

const (
	broadcasterZapDomain = "publish"

	// Topic - first frame of every published message, for subscribers
	// to filter on
	Topic = "peer"

	queueSize = 1000
)

type broadcaster struct {
	log     *logger.L
	socket4 *zmq.Socket
	socket6 *zmq.Socket
	queue   <-chan messagebus.Message
	sent    counter.Counter
}

// initialise the broadcaster
func (brdc *broadcaster) initialise(privateKey []byte, publicKey []byte, broadcast []string, bus *messagebus.Bus) error {

	log := logger.New("broadcaster")
	if nil == log {
		return fault.ErrInvalidLoggerChannel
	}
	brdc.log = log

	log.Info("initialising…")

	var err error
	brdc.socket4, brdc.socket6, err = zmqutil.NewBind(log, zmq.PUB, broadcasterZapDomain, privateKey, publicKey, broadcast)
	if nil != err {
		log.Errorf("bind error: %s", err)
		return err
	}

	brdc.queue = bus.Subscribe(queueSize)

	return nil
}

// forward peer events from the bus until shutdown
func (brdc *broadcaster) Run(args interface{}, shutdown <-chan struct{}) {

	log := brdc.log

	log.Info("starting…")

	queue := brdc.queue

loop:
	for {
		select {
		case <-shutdown:
			break loop

		case item, ok := <-queue:
			if !ok {
				// bus closed, nothing more will arrive
				queue = nil
				continue loop
			}
			frames, err := Pack(item)
			if nil != err {
				log.Errorf("pack from: %s  error: %s", item.From, err)
				continue loop
			}
			if nil == frames {
				continue loop
			}
			log.Debugf("sending: %s  data: %s", frames[1], frames[2])
			brdc.process(brdc.socket4, frames)
			brdc.process(brdc.socket6, frames)
			brdc.sent.Increment()
		}
	}

	if nil != brdc.socket4 {
		brdc.socket4.Close()
	}
	if nil != brdc.socket6 {
		brdc.socket6.Close()
	}
	log.Info("stopped")
}

// send one multipart message, a slow subscriber never blocks the feed
func (brdc *broadcaster) process(socket *zmq.Socket, frames [][]byte) {
	if nil == socket {
		return
	}

	last := len(frames) - 1
	for i, f := range frames {
		flags := zmq.SNDMORE | zmq.DONTWAIT
		if i == last {
			flags = zmq.DONTWAIT
		}
		if _, err := socket.SendBytes(f, flags); nil != err {
			brdc.log.Warnf("send error: %s", err)
			return
		}
	}
}

// Pack - frames for one bus item: topic, event kind, JSON event
//
// items that are not peer events give no frames
func Pack(item messagebus.Message) ([][]byte, error) {
	e, ok := item.Item.(peer.Event)
	if !ok {
		return nil, nil
	}

	body, err := json.Marshal(e)
	if nil != err {
		return nil, err
	}

	return [][]byte{
		[]byte(Topic),
		[]byte(e.Kind.String()),
		body,
	}, nil
}
