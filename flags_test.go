// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
// Source code and contact info at http://github.com/streadway/amqp

package amqp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueueFlagsChain(t *testing.T) {
	f := NewQueueFlags().Durable().AutoDelete()
	assert.True(t, f.isDurable())
	assert.True(t, f.isAutoDelete())
	assert.False(t, f.isPassive())
	assert.False(t, f.isExclusive())
	assert.False(t, f.isNoWait())
}

func TestPublishFlagsChain(t *testing.T) {
	f := NewPublishFlags().Mandatory()
	assert.True(t, f.isMandatory())
	assert.False(t, f.isImmediate())
}

func TestConsumeFlagsChain(t *testing.T) {
	f := NewConsumeFlags().NoAck().Exclusive()
	assert.True(t, f.isNoAck())
	assert.True(t, f.isExclusive())
	assert.False(t, f.isNoLocal())
	assert.False(t, f.isNoWait())
}

func TestNackFlagsFrom(t *testing.T) {
	f := nackFlagsFrom(0)
	assert.False(t, f.isMultiple())
	assert.False(t, f.isRequeue())

	f2 := NewNackFlags().Multiple().Requeue()
	assert.True(t, f2.isMultiple())
	assert.True(t, f2.isRequeue())
}
