// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"runtime"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/peerwire/node"
)

const (
	statsDelay = 60 * time.Second
	mega       = 1048576
)

func memstats() {

	log := logger.New("memory")

	for {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		a := m.Alloc / mega
		t := m.TotalAlloc / mega
		s := m.Sys / mega
		log.Warnf("allocated: %d M  cumulative: %d M  OS virtual: %d M  goroutines: %d", a, t, s, runtime.NumGoroutine())

		time.Sleep(statsDelay)
	}
}

// write the per peer view to the log, triggered by SIGUSR1
func peerStats(log *logger.L, n *node.Node) {
	peers := n.PeerInfoSnapshot()
	log.Infof("peers: %d", len(peers))
	for _, p := range peers {
		text, err := json.Marshal(p)
		if nil != err {
			log.Errorf("marshal error: %s", err)
			continue
		}
		log.Infof("peer: %s", text)
	}
}
