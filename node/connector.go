// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"net"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/btcsuite/btcd/connmgr"
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/peerwire/counter"
	"github.com/bitmark-inc/peerwire/fault"
	"github.com/bitmark-inc/peerwire/util"
)

// defaults for zero connector values
const (
	defaultRetryInterval = 5 * time.Second
	defaultDialTimeout   = 10 * time.Second
	defaultAcceptRate    = 10
	defaultAcceptBurst   = 20
)

// ConnectorConfig - where to listen and whom to dial
type ConnectorConfig struct {
	Listen        []string // host:port, "*:port" for every interface
	Connect       []string // endpoints, see util.ParseEndpoint
	RetryInterval time.Duration
	DialTimeout   time.Duration
	AcceptRate    float64 // inbound connections per second
	AcceptBurst   int
}

// Connector - opens connections and hands them to the node
type Connector struct {
	log       *logger.L
	node      *Node
	endpoints []*util.Endpoint
	listeners []net.Listener
	manager   *connmgr.ConnManager
	limiter   *rate.Limiter

	accepted counter.Counter
	refused  counter.Counter
}

// NewConnector - bind the listeners and prepare the connection manager
func NewConnector(n *Node, config ConnectorConfig) (*Connector, error) {
	if nil == n {
		return nil, fault.ErrMissingParameters
	}
	if config.RetryInterval <= 0 {
		config.RetryInterval = defaultRetryInterval
	}
	if config.DialTimeout <= 0 {
		config.DialTimeout = defaultDialTimeout
	}
	if config.AcceptRate <= 0 {
		config.AcceptRate = defaultAcceptRate
	}
	if config.AcceptBurst <= 0 {
		config.AcceptBurst = defaultAcceptBurst
	}

	log := logger.New("connector")

	endpoints, err := util.ParseEndpoints(config.Connect, n.params.DefaultPort)
	if nil != err {
		return nil, err
	}

	c := &Connector{
		log:       log,
		node:      n,
		endpoints: endpoints,
		limiter:   rate.NewLimiter(rate.Limit(config.AcceptRate), config.AcceptBurst),
	}

	for _, address := range util.DualStack(config.Listen) {
		listener, err := net.Listen("tcp", address)
		if nil != err {
			log.Errorf("listen on: %s  error: %s", address, err)
			c.closeListeners()
			return nil, err
		}
		log.Infof("listening on: %s", listener.Addr())
		c.listeners = append(c.listeners, listener)
	}

	dialTimeout := config.DialTimeout
	manager, err := connmgr.New(&connmgr.Config{
		Listeners:       c.listeners,
		OnAccept:        c.onAccept,
		TargetOutbound:  uint32(len(endpoints)),
		RetryDuration:   config.RetryInterval,
		OnConnection:    c.onConnection,
		OnDisconnection: c.onDisconnection,
		Dial: func(addr net.Addr) (net.Conn, error) {
			return net.DialTimeout(addr.Network(), addr.String(), dialTimeout)
		},
	})
	if nil != err {
		c.closeListeners()
		return nil, err
	}
	c.manager = manager

	return c, nil
}

// Addresses - bound listener addresses
func (c *Connector) Addresses() []net.Addr {
	addresses := make([]net.Addr, len(c.listeners))
	for i, l := range c.listeners {
		addresses[i] = l.Addr()
	}
	return addresses
}

// Run - background process: keep the endpoints connected until shutdown
func (c *Connector) Run(args interface{}, shutdown <-chan struct{}) {
	c.log.Info("starting…")
	c.manager.Start()

	for _, e := range c.endpoints {
		c.log.Infof("connect to: %s", e)
		go c.manager.Connect(&connmgr.ConnReq{
			Addr:      e,
			Permanent: true,
		})
	}

	<-shutdown

	c.log.Info("shutting down…")
	c.manager.Stop()
	c.manager.Wait()
	c.log.Infof("stopped  accepted: %d  refused: %d", c.accepted.Uint64(), c.refused.Uint64())
}

func (c *Connector) onAccept(conn net.Conn) {
	if !c.limiter.Allow() {
		c.refused.Increment()
		c.log.Warnf("refuse: %s  error: %s", conn.RemoteAddr(), fault.ErrRateLimited)
		conn.Close()
		return
	}
	c.accepted.Increment()

	err := c.node.Serve(conn, true)
	c.log.Debugf("inbound: %s  closed: %v", conn.RemoteAddr(), err)
}

// the manager retries permanent requests once told of the disconnect
func (c *Connector) onConnection(request *connmgr.ConnReq, conn net.Conn) {
	err := c.node.Serve(conn, false)
	c.log.Debugf("outbound: %s  closed: %v", request.Addr, err)
	c.manager.Disconnect(request.ID())
}

func (c *Connector) onDisconnection(request *connmgr.ConnReq) {
	c.log.Infof("disconnected: %s", request.Addr)
}

func (c *Connector) closeListeners() {
	for _, l := range c.listeners {
		l.Close()
	}
}
