// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
// Source code and contact info at http://github.com/streadway/amqp

package amqp

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferPoolMissThenHit(t *testing.T) {
	p := newBufferPool()

	buf := p.acquire()
	assert.Equal(t, 0, len(buf))

	p.release(buf)

	stats := p.Stats()
	assert.Equal(t, uint64(0), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, 1, stats.Held)
	assert.Equal(t, 1, stats.Peak)

	p.acquire()

	stats = p.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, 0, stats.Held)
}

func TestBufferPoolPeakTracksHighWaterMark(t *testing.T) {
	p := newBufferPool()

	a, b, c := p.acquire(), p.acquire(), p.acquire()
	p.release(a)
	p.release(b)
	p.release(c)
	assert.Equal(t, 3, p.Stats().Peak)

	buf := p.acquire()
	p.release(buf)
	assert.Equal(t, 3, p.Stats().Peak, "peak must not drop back down after later hold/release cycles")
}

func TestBufferPoolConcurrentAcquireRelease(t *testing.T) {
	p := newBufferPool()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf := p.acquire()
			buf = append(buf, 1, 2, 3)
			p.release(buf)
		}()
	}
	wg.Wait()

	stats := p.Stats()
	assert.Equal(t, uint64(50), stats.Hits+stats.Misses)
}
