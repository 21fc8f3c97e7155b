// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
// Source code and contact info at http://github.com/streadway/amqp

package amqp

import "sync"

// bufferPool is a small free-list of byte buffers shared within one
// connection. It is purely an allocation optimisation -- nothing about
// codec correctness depends on it -- so it is guarded by a mutex only
// because Channel.Publish calls acquire/release from whatever goroutine is
// publishing, and several goroutines may publish at once.
type bufferPool struct {
	mu   sync.Mutex
	free [][]byte

	hits   uint64
	misses uint64
	held   int
	peak   int
}

func newBufferPool() *bufferPool {
	return &bufferPool{}
}

// acquire returns a buffer with zero length and some amount of spare
// capacity reused from a previously released buffer, or a fresh allocation
// when the free list is empty.
func (p *bufferPool) acquire() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.free)
	if n == 0 {
		p.misses++
		return make([]byte, 0, frameMinSize)
	}

	buf := p.free[n-1]
	p.free = p.free[:n-1]
	p.hits++
	p.held--
	return buf[:0]
}

// release truncates buf to zero length and returns it to the free list.
func (p *bufferPool) release(buf []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.free = append(p.free, buf[:0])
	p.held++
	if p.held > p.peak {
		p.peak = p.held
	}
}

// BufferPoolStats reports hit/miss/peak counters, per section 4.A.
type BufferPoolStats struct {
	Hits   uint64
	Misses uint64
	Held   int
	Peak   int
}

func (p *bufferPool) Stats() BufferPoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return BufferPoolStats{
		Hits:   p.hits,
		Misses: p.misses,
		Held:   p.held,
		Peak:   p.peak,
	}
}
