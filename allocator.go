// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
// Source code and contact info at http://github.com/streadway/amqp

package amqp

// channelAllocator hands out channel numbers bounded by the negotiated
// max-channels, reclaiming them on release. The teacher's original
// allocator (an ever-incrementing atomic cursor, matched in
// _examples/other_examples' independent fork of the same code) never
// reclaims ids; this one keeps a free set so long-lived connections that
// open and close many channels don't exhaust the 16-bit id space.
type channelAllocator struct {
	max  uint16 // 0 means unlimited (treated as math.MaxUint16)
	next uint16 // next id never yet handed out, starting at 1
	free []uint16
	used map[uint16]bool
}

func newChannelAllocator(max int) *channelAllocator {
	a := &channelAllocator{
		used: make(map[uint16]bool),
		next: 1, // channel 0 is reserved for the connection itself
	}
	if max > 0 && max < 0x10000 {
		a.max = uint16(max)
	}
	return a
}

func (a *channelAllocator) allocate() (uint16, error) {
	if n := len(a.free); n > 0 {
		id := a.free[n-1]
		a.free = a.free[:n-1]
		a.used[id] = true
		return id, nil
	}

	if a.max != 0 && a.next > a.max {
		return 0, ErrNoFreeChannels
	}
	if a.next == 0 { // wrapped past 65535 with max == 0
		return 0, ErrNoFreeChannels
	}

	id := a.next
	a.next++
	a.used[id] = true
	return id, nil
}

func (a *channelAllocator) release(id uint16) {
	if a.used[id] {
		delete(a.used, id)
		a.free = append(a.free, id)
	}
}
