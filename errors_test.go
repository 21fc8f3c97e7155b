// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
// Source code and contact info at http://github.com/streadway/amqp

package amqp

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessageIncludesClassMethodWhenPresent(t *testing.T) {
	e := newServerClosedError(notFound, "NOT_FOUND - no queue", classQueue, 10)
	assert.Contains(t, e.Error(), "class 50, method 10")
}

func TestErrorMessageOmitsClassMethodWhenAbsent(t *testing.T) {
	e := newError(syntaxError, "bad field table")
	assert.NotContains(t, e.Error(), "class")
}

func TestWrapIOErrorUnwraps(t *testing.T) {
	e := wrapIOError(localConnect, io.ErrClosedPipe)
	assert.True(t, errors.Is(e, io.ErrClosedPipe))
}
