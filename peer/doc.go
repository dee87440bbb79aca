// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package peer - per connection session state and the pool that
// owns every session
//
// Sessions are created when a connection is accepted or established
// and removed when it closes; other components refer to a session by
// its identifier and read or update it through the pool.  All pool
// operations are individually synchronised.
package peer
