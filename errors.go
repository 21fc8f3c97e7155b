// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
// Source code and contact info at http://github.com/streadway/amqp

package amqp

import (
	"fmt"

	"github.com/pkg/errors"
)

// Reply codes taken from the AMQP 0-9-1 spec section 2.2.6.1. These are the
// same numbers the server sends in connection.close/channel.close and the
// ones we send back when we detect a protocol violation locally.
const (
	replySuccess        = 200
	contentTooLarge     = 311
	noRoute             = 312
	noConsumers         = 313
	connectionForced    = 320
	invalidPath         = 402
	accessRefused       = 403
	notFound            = 404
	resourceLocked      = 405
	preconditionFailed  = 406
	frameError          = 501
	syntaxError         = 502
	commandInvalid      = 503
	channelError        = 504
	unexpectedFrame     = 505
	resourceError       = 506
	notAllowed          = 530
	notImplemented      = 540
	internalError       = 541
)

// Local-only codes, outside the AMQP reply-code range, for failures that
// never reach the wire (dial failures, local misuse).
const (
	localAddressResolve = 1000 + iota
	localConnect
	localChannelPaused
	localNoFreeChannels
	localInvalidParameters
)

// Error wraps the sticky error state described in the component design: a
// connection or channel failure that every subsequent public call on that
// object returns immediately. Code is either a real AMQP reply code (when
// Server is true, or when we are the one closing the socket for a protocol
// violation) or one of the local-only codes above.
type Error struct {
	Code    int
	Reason  string
	Server  bool   // true when the peer sent this via a close method
	Class   uint16 // method class that triggered a server close, if any
	Method  uint16 // method id that triggered a server close, if any
	Cause   error
}

func (e *Error) Error() string {
	class := ""
	if isClassMethodTuple(e) {
		class = fmt.Sprintf(" (class %d, method %d)", e.Class, e.Method)
	}
	if e.Cause != nil {
		return fmt.Sprintf("Exception (%d) Reason: %q%s: %v", e.Code, e.Reason, class, e.Cause)
	}
	return fmt.Sprintf("Exception (%d) Reason: %q%s", e.Code, e.Reason, class)
}

// Unwrap lets errors.Is/errors.As see through to the underlying I/O or codec
// failure that was wrapped with github.com/pkg/errors.
func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(code uint16, text string) *Error {
	return &Error{
		Code:   int(code),
		Reason: text,
	}
}

func newServerClosedError(code uint16, text string, class, method uint16) *Error {
	return &Error{
		Code:   int(code),
		Reason: text,
		Server: true,
		Class:  class,
		Method: method,
	}
}

func wrapIOError(code int, cause error) *Error {
	return &Error{
		Code:   code,
		Reason: cause.Error(),
		Cause:  errors.WithStack(cause),
	}
}

// Sentinel errors for local failures that never produce a server reply.
var (
	ErrAddressResolve = &Error{Code: localAddressResolve, Reason: "could not resolve address"}
	ErrConnect        = &Error{Code: localConnect, Reason: "could not connect"}

	ErrClosed           = &Error{Code: channelError, Reason: "channel/connection is not open"}
	ErrChannelPaused    = &Error{Code: localChannelPaused, Reason: "channel paused by flow control"}
	ErrNoFreeChannels   = &Error{Code: localNoFreeChannels, Reason: "no free channel ids"}
	ErrInvalidParams    = &Error{Code: localInvalidParameters, Reason: "invalid parameters"}
	ErrCommandInvalid   = &Error{Code: commandInvalid, Reason: "command invalid"}
	ErrUnexpectedFrame  = &Error{Code: unexpectedFrame, Reason: "unexpected frame"}
	ErrSASL             = &Error{Code: accessRefused, Reason: "SASL could not negotiate a shared mechanism"}
	ErrCredentials      = &Error{Code: accessRefused, Reason: "username or password not accepted"}
	ErrVhost            = &Error{Code: invalidPath, Reason: "vhost not accepted"}
	ErrFrameTooLarge    = &Error{Code: syntaxError, Reason: "frame size exceeds negotiated max-frame"}
)

func isClassMethodTuple(e *Error) bool {
	return e.Class != 0 || e.Method != 0
}
