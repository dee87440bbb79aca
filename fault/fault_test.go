// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/peerwire/fault"
	"github.com/bitmark-inc/peerwire/fixtures"
)

var (
	ErrExistsOne   = fault.ExistsError("exists one")
	ErrFramingOne  = fault.FramingError("framing one")
	ErrInvalidOne  = fault.InvalidError("invalid one")
	ErrLimitOne    = fault.LimitError("limit one")
	ErrNotFoundOne = fault.NotFoundError("not found one")
	ErrProcessOne  = fault.ProcessError("process one")
	ErrProtocolOne = fault.ProtocolError("protocol one")
	ErrTimeoutOne  = fault.TimeoutError("timeout one")
)

// test that the various errors can be subclassed
func TestClasses(t *testing.T) {
	errorList := []struct {
		err      error
		exists   bool
		framing  bool
		invalid  bool
		limit    bool
		notFound bool
		process  bool
		protocol bool
		timeout  bool
	}{
		{ErrExistsOne, true, false, false, false, false, false, false, false},
		{ErrFramingOne, false, true, false, false, false, false, false, false},
		{ErrInvalidOne, false, false, true, false, false, false, false, false},
		{ErrLimitOne, false, false, false, true, false, false, false, false},
		{ErrNotFoundOne, false, false, false, false, true, false, false, false},
		{ErrProcessOne, false, false, false, false, false, true, false, false},
		{ErrProtocolOne, false, false, false, false, false, false, true, false},
		{ErrTimeoutOne, false, false, false, false, false, false, false, true},
	}

	for i, e := range errorList {
		err := e.err
		assert.Equal(t, e.exists, fault.IsErrExists(err), "%d: exists: %v", i, err)
		assert.Equal(t, e.framing, fault.IsErrFraming(err), "%d: framing: %v", i, err)
		assert.Equal(t, e.invalid, fault.IsErrInvalid(err), "%d: invalid: %v", i, err)
		assert.Equal(t, e.limit, fault.IsErrLimit(err), "%d: limit: %v", i, err)
		assert.Equal(t, e.notFound, fault.IsErrNotFound(err), "%d: not found: %v", i, err)
		assert.Equal(t, e.process, fault.IsErrProcess(err), "%d: process: %v", i, err)
		assert.Equal(t, e.protocol, fault.IsErrProtocol(err), "%d: protocol: %v", i, err)
		assert.Equal(t, e.timeout, fault.IsErrTimeout(err), "%d: timeout: %v", i, err)
	}
}

func TestFatalToConnection(t *testing.T) {
	assert.True(t, fault.IsFatalToConnection(fault.ErrBadMagic), "bad magic")
	assert.True(t, fault.IsFatalToConnection(fault.ErrChecksumMismatch), "checksum")
	assert.True(t, fault.IsFatalToConnection(fault.ErrMessageBeforeHandshake), "before handshake")
	assert.True(t, fault.IsFatalToConnection(fault.ErrHandshakeTimeout), "handshake timeout")
	assert.True(t, fault.IsFatalToConnection(fault.ErrKeepaliveTimeout), "keepalive timeout")
	assert.False(t, fault.IsFatalToConnection(fault.ErrUnknownCommand), "unknown command")
	assert.False(t, fault.IsFatalToConnection(fault.ErrPoolFull), "pool full")
}

func TestWrappedErrorClass(t *testing.T) {
	err := errors.Wrap(fault.ErrBadMagic, "read header")
	assert.False(t, fault.IsErrFraming(err), "wrapped error is not a class")
	assert.True(t, fault.IsErrFraming(errors.Cause(err)), "cause keeps its class")
}

func TestLogChannel(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	assert.Nil(t, fault.Initialise(), "first")
	assert.Equal(t, fault.ErrAlreadyInitialised, fault.Initialise(), "second")
	fault.Criticalf("logged: %d", 1)
	fault.Finalise()

	// after finalise output falls back to stdout
	fault.Criticalf("printed: %d", 2)
}
