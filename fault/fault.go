// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type FramingError GenericError
type InvalidError GenericError
type LimitError GenericError
type NotFoundError GenericError
type ProcessError GenericError
type ProtocolError GenericError
type TimeoutError GenericError

// common errors - keep in alphabetic order
var (
	ErrAlreadyInitialised        = ExistsError("already initialised")
	ErrBadMagic                  = FramingError("bad magic")
	ErrChecksumMismatch          = FramingError("checksum mismatch")
	ErrDuplicateVersion          = ProtocolError("duplicate version message")
	ErrHandshakeFailed           = ProtocolError("handshake failed")
	ErrHandshakeStarted          = ProcessError("handshake already started")
	ErrHandshakeTimeout          = TimeoutError("handshake timeout")
	ErrInvalidChain              = InvalidError("invalid chain")
	ErrInvalidEndpoint           = InvalidError("invalid endpoint")
	ErrInvalidHexString          = InvalidError("invalid hex string")
	ErrInvalidIPAddress          = InvalidError("invalid IP address")
	ErrInvalidLoggerChannel      = InvalidError("invalid logger channel")
	ErrInvalidPortNumber         = InvalidError("invalid port number")
	ErrInvalidPrivateKeyFile     = InvalidError("invalid private key file")
	ErrInvalidPublicKeyFile      = InvalidError("invalid public key file")
	ErrKeepaliveTimeout          = TimeoutError("keepalive timeout")
	ErrKeyFileAlreadyExists      = ExistsError("key file already exists")
	ErrMalformedCommand          = FramingError("malformed command")
	ErrMalformedPayload          = ProtocolError("malformed payload")
	ErrMessageBeforeHandshake    = ProtocolError("message before handshake completed")
	ErrMissingParameters         = InvalidError("missing parameters")
	ErrNotInitialised            = NotFoundError("not initialised")
	ErrPayloadTooLarge           = FramingError("payload too large")
	ErrPeerNotFound              = NotFoundError("peer not found")
	ErrPoolFull                  = LimitError("peer pool is full")
	ErrProtocolVersionTooLow     = ProtocolError("protocol version too low")
	ErrRateLimited               = LimitError("rate limited")
	ErrSelfConnection            = ProtocolError("connected to self")
	ErrSendQueueTimeout          = TimeoutError("send queue timeout")
	ErrShortHeader               = FramingError("short header")
	ErrStopped                   = ProcessError("stopped")
	ErrTooManyAddresses          = ProtocolError("too many addresses")
	ErrTooManyInventoryVectors   = ProtocolError("too many inventory vectors")
	ErrTrailingData              = FramingError("trailing data after message")
	ErrTruncatedMessage          = FramingError("truncated message")
	ErrUnexpectedPayloadLength   = ProtocolError("unexpected payload length")
	ErrUnexpectedVerAck          = ProtocolError("verack before version")
	ErrUnknownCommand            = NotFoundError("unknown command")
	ErrUserAgentTooLong          = ProtocolError("user agent too long")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string   { return string(e) }
func (e FramingError) Error() string  { return string(e) }
func (e InvalidError) Error() string  { return string(e) }
func (e LimitError) Error() string    { return string(e) }
func (e NotFoundError) Error() string { return string(e) }
func (e ProcessError) Error() string  { return string(e) }
func (e ProtocolError) Error() string { return string(e) }
func (e TimeoutError) Error() string  { return string(e) }

// determine the class of an error
func IsErrExists(e error) bool   { _, ok := e.(ExistsError); return ok }
func IsErrFraming(e error) bool  { _, ok := e.(FramingError); return ok }
func IsErrInvalid(e error) bool  { _, ok := e.(InvalidError); return ok }
func IsErrLimit(e error) bool    { _, ok := e.(LimitError); return ok }
func IsErrNotFound(e error) bool { _, ok := e.(NotFoundError); return ok }
func IsErrProcess(e error) bool  { _, ok := e.(ProcessError); return ok }
func IsErrProtocol(e error) bool { _, ok := e.(ProtocolError); return ok }
func IsErrTimeout(e error) bool  { _, ok := e.(TimeoutError); return ok }

// IsFatalToConnection - framing, protocol and timeout errors end the
// connection they occurred on
func IsFatalToConnection(e error) bool {
	return IsErrFraming(e) || IsErrProtocol(e) || IsErrTimeout(e)
}
