// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
// Source code and contact info at http://github.com/streadway/amqp

package amqp

// writeRequest is one contiguous block of frames that must reach the
// socket back-to-back -- a single method, or a publish's
// method+header+body group (section 4.C's "single non-suspending call").
// result is buffered so the writer goroutine never blocks handing back the
// outcome to a caller that stopped waiting.
type writeRequest struct {
	frames []frame
	result chan error
}

// writerQueue is the single ordered FIFO described in section 4.C: one
// channel shared by every goroutine that wants to write, drained by
// exactly one writer goroutine. Closing ch is the shutdown sentinel that
// replaces the source's Option<Frame>::None.
type writerQueue struct {
	ch chan *writeRequest
}

func newWriterQueue() *writerQueue {
	return &writerQueue{ch: make(chan *writeRequest, 64)}
}

// enqueue blocks until the writer goroutine has serialised every frame in
// the group (or the queue has been shut down) and returns the first error
// encountered, if any.
func (q *writerQueue) enqueue(frames ...frame) (err error) {
	req := &writeRequest{frames: frames, result: make(chan error, 1)}

	defer func() {
		// A send on a closed channel panics; shutdown closes ch exactly
		// once the connection is already dead, in which case callers get
		// the sticky error some other way, so recovering here just turns
		// the panic into the same "queue is shut down" outcome.
		if r := recover(); r != nil {
			err = ErrClosed
		}
	}()

	q.ch <- req
	return <-req.result
}

func (q *writerQueue) shutdown() {
	close(q.ch)
}

// run is the writer task: pop the next group, serialise it with the frame
// codec, perform the write. On I/O error it hands the error to that group's
// caller (whose enqueue returns it) and stops draining the queue.
func (q *writerQueue) run(w *writer) {
	for req := range q.ch {
		var err error
		for _, f := range req.frames {
			if err = w.WriteFrame(f); err != nil {
				break
			}
		}
		req.result <- err
		if err != nil {
			return
		}
	}
}
