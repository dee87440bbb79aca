// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/bitmark-inc/peerwire/message"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/interfaces.go -package=mocks

// ChainSource - chain state computed outside this module
type ChainSource interface {
	ChainTip() (chainhash.Hash, int32)
	MedianTimePast() time.Time
	HeightOf(hash chainhash.Hash) (int32, bool)
}

// Consumer - receives objects delivered by peers, nothing here is
// validated
type Consumer interface {
	ReceivedTransaction(peer uint64, tx *message.Tx)
	ReceivedBlock(peer uint64, block *message.Block)
	ReceivedAddresses(peer uint64, addresses []message.TimestampedAddress)
}
