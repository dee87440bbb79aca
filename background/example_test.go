// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package background_test

import (
	"fmt"

	"github.com/bitmark-inc/peerwire/background"
)

type listener struct {
	name string
}

func Example() {

	processes := background.Processes{
		&listener{name: "inbound"},
	}

	p := background.Start(processes, nil)
	p.Stop()

	// Output:
	// inbound: waiting
	// inbound: finished
}

func (state *listener) Run(args interface{}, shutdown <-chan struct{}) {
	fmt.Printf("%s: waiting\n", state.name)
	<-shutdown
	fmt.Printf("%s: finished\n", state.name)
}
