// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
// Source code and contact info at http://github.com/streadway/amqp

package amqp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelAllocatorStartsAtOne(t *testing.T) {
	a := newChannelAllocator(0)
	id, err := a.allocate()
	require.NoError(t, err)
	assert.Equal(t, uint16(1), id)
}

func TestChannelAllocatorReusesReleasedIds(t *testing.T) {
	a := newChannelAllocator(0)

	first, err := a.allocate()
	require.NoError(t, err)
	second, err := a.allocate()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	a.release(first)

	reused, err := a.allocate()
	require.NoError(t, err)
	assert.Equal(t, first, reused, "released id should be handed out again before the cursor advances")
}

func TestChannelAllocatorExhaustion(t *testing.T) {
	a := newChannelAllocator(2)

	_, err := a.allocate()
	require.NoError(t, err)
	_, err = a.allocate()
	require.NoError(t, err)

	_, err = a.allocate()
	assert.ErrorIs(t, err, ErrNoFreeChannels)
}

func TestChannelAllocatorReleaseOfUnknownIdIsNoop(t *testing.T) {
	a := newChannelAllocator(0)
	a.release(99)
	id, err := a.allocate()
	require.NoError(t, err)
	assert.Equal(t, uint16(1), id, "releasing an id never handed out must not seed the free list")
}
