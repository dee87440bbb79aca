// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/peerwire/util"
)

func TestEnsureAbsolute(t *testing.T) {
	assert.Equal(t, "/data/peerwire.log", util.EnsureAbsolute("/data", "peerwire.log"), "relative")
	assert.Equal(t, "/var/log/x.log", util.EnsureAbsolute("/data", "/var/log/x.log"), "absolute")
	assert.Equal(t, "/data/log", util.EnsureAbsolute("/data", "./log/../log/"), "cleaned")
}
