// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package messagebus - fan out of peer lifecycle events to any
// number of subscribers, each with its own bounded queue
package messagebus
