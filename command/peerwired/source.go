// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/bitmark-inc/peerwire/chain"
	"github.com/bitmark-inc/peerwire/counter"
	"github.com/bitmark-inc/peerwire/message"
)

// the daemon keeps no block chain, so it always reports the genesis
// block as its tip
type genesisSource struct {
	hash      chainhash.Hash
	timestamp time.Time
}

func newGenesisSource(chainName string) (*genesisSource, error) {
	net, err := chain.NetParams(chainName)
	if nil != err {
		return nil, err
	}
	return &genesisSource{
		hash:      *net.GenesisHash,
		timestamp: net.GenesisBlock.Header.Timestamp,
	}, nil
}

func (g *genesisSource) ChainTip() (chainhash.Hash, int32) {
	return g.hash, 0
}

func (g *genesisSource) MedianTimePast() time.Time {
	return g.timestamp
}

func (g *genesisSource) HeightOf(hash chainhash.Hash) (int32, bool) {
	if hash == g.hash {
		return 0, true
	}
	return 0, false
}

// logs and counts everything delivered by peers
type logConsumer struct {
	log          *logger.L
	transactions counter.Counter
	blocks       counter.Counter
	addresses    counter.Counter
}

func newLogConsumer() *logConsumer {
	return &logConsumer{
		log: logger.New("consumer"),
	}
}

func (c *logConsumer) ReceivedTransaction(peer uint64, tx *message.Tx) {
	c.transactions.Increment()
	c.log.Debugf("peer: %d  transaction: %s  bytes: %d", peer, tx.Hash(), len(tx.Raw))
}

func (c *logConsumer) ReceivedBlock(peer uint64, block *message.Block) {
	c.blocks.Increment()
	c.log.Infof("peer: %d  block: %s  bytes: %d", peer, block.Hash(), len(block.Raw))
}

func (c *logConsumer) ReceivedAddresses(peer uint64, addresses []message.TimestampedAddress) {
	c.addresses.Add(uint64(len(addresses)))
	c.log.Debugf("peer: %d  addresses: %d", peer, len(addresses))
}

// Run - periodic totals, a background process
func (c *logConsumer) Run(args interface{}, shutdown <-chan struct{}) {
	ticker := time.NewTicker(statsDelay)
	defer ticker.Stop()
loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-ticker.C:
			c.log.Infof("received  transactions: %d  blocks: %d  addresses: %d",
				c.transactions.Uint64(), c.blocks.Uint64(), c.addresses.Uint64())
		}
	}
	c.log.Info("stopped")
}
