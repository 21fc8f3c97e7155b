// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
// Source code and contact info at http://github.com/streadway/amqp

package amqp

import (
	"bufio"
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestChannel wires a Channel to a real writer/writerQueue backed by an
// in-memory buffer instead of a socket, so outbound frames can be read back
// and asserted on without a live broker.
func newTestChannel(t *testing.T) (*Channel, *syncBuffer) {
	t.Helper()

	buf := &syncBuffer{}
	conn := &Connection{
		writer:     &writer{w: bufio.NewWriter(buf)},
		queue:      newWriterQueue(),
		writerDone: make(chan struct{}),
		channels:   make(map[uint16]*Channel),
		allocator:  newChannelAllocator(0),
		pool:       newBufferPool(),
		errors:     make(chan *Error, 1),
		Params:     ConnectionParams{FrameSize: 4096},
	}
	go func() {
		conn.queue.run(conn.writer)
		close(conn.writerDone)
	}()

	ch := newChannel(conn, 1)
	conn.channels[1] = ch

	t.Cleanup(func() { conn.queue.shutdown() })

	return ch, buf
}

// syncBuffer is a bytes.Buffer safe for the writer goroutine to write to
// while the test goroutine reads back what it wrote.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) readFrame(t *testing.T) frame {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		n := s.buf.Len()
		s.mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	s.mu.Lock()
	r := &reader{r: &s.buf}
	f, err := r.ReadFrame()
	s.mu.Unlock()

	require.NoError(t, err)
	return f
}

// deliverReplyAsync waits for the given call to have written its request
// frame, then feeds back a reply as if a server had sent it. Relies on the
// channel's awaiting flag already being set by the time any bytes land in
// buf, since call() sets it before enqueue() can return.
func deliverReplyAsync(t *testing.T, ch *Channel, buf *syncBuffer, reply message) {
	t.Helper()
	buf.readFrame(t) // drain the request so later assertions see a clean buffer
	ch.recv(&methodFrame{ChannelId: ch.id, Method: reply})
}

func TestChannelOpenWaitsForOpenOk(t *testing.T) {
	ch, buf := newTestChannel(t)

	errCh := make(chan error, 1)
	go func() { errCh <- ch.open() }()

	deliverReplyAsync(t, ch, buf, &channelOpenOk{})
	require.NoError(t, <-errCh)
}

func TestChannelCloseIsSticky(t *testing.T) {
	ch, buf := newTestChannel(t)

	errCh := make(chan error, 1)
	go func() { errCh <- ch.Close() }()
	deliverReplyAsync(t, ch, buf, &channelCloseOk{})
	require.NoError(t, <-errCh)

	err := ch.Ack(1, false)
	assert.ErrorIs(t, err, ErrClosed, "a clean Close must still fail fast on later synchronous calls")

	err = ch.Qos(0, 1, false)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestChannelServerInitiatedCloseIsSticky(t *testing.T) {
	ch, buf := newTestChannel(t)

	ch.recv(&methodFrame{ChannelId: ch.id, Method: &channelClose{
		ReplyCode: 404,
		ReplyText: "NOT_FOUND - no exchange",
		ClassId:   classBasic,
		MethodId:  40,
	}})

	closeOk := buf.readFrame(t)
	mf, ok := closeOk.(*methodFrame)
	require.True(t, ok)
	assert.IsType(t, &channelCloseOk{}, mf.Method)

	err := ch.Qos(0, 1, false)
	require.Error(t, err)
	amqpErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, 404, amqpErr.Code)
	assert.True(t, amqpErr.Server)
}

// TestServerInitiatedCloseLeavesConnectionUsable asserts a channel.close on
// one channel only tears down that channel; a sibling channel on the same
// connection keeps working.
func TestServerInitiatedCloseLeavesConnectionUsable(t *testing.T) {
	ch1, buf := newTestChannel(t)

	ch2 := newChannel(ch1.connection, 2)
	ch1.connection.channels[2] = ch2

	ch1.recv(&methodFrame{ChannelId: ch1.id, Method: &channelClose{
		ReplyCode: 404,
		ReplyText: "NOT_FOUND - no exchange",
		ClassId:   classBasic,
		MethodId:  40,
	}})
	buf.readFrame(t) // drain ch1's channel.close-ok

	require.Error(t, ch1.Qos(0, 1, false))

	errCh := make(chan error, 1)
	go func() { errCh <- ch2.open() }()
	deliverReplyAsync(t, ch2, buf, &channelOpenOk{})
	require.NoError(t, <-errCh, "sibling channel on the same connection must remain usable")
}

func TestChannelUnmatchedReplyIsProtocolError(t *testing.T) {
	ch, _ := newTestChannel(t)

	// No call() is in flight, so an arriving channel.open-ok is unexpected.
	ch.recv(&methodFrame{ChannelId: ch.id, Method: &channelOpenOk{}})

	err := ch.Qos(0, 1, false)
	assert.Error(t, err)
}

func TestPublishSplitsBodyAtFrameMax(t *testing.T) {
	ch, buf := newTestChannel(t)
	ch.connection.Params.FrameSize = 4096

	body := bytes.Repeat([]byte{'x'}, 10000)
	require.NoError(t, ch.Publish("", "test-queue", NewPublishFlags(), BasicProperties{}, body))

	mf := buf.readFrame(t).(*methodFrame)
	assert.IsType(t, &basicPublish{}, mf.Method)

	hf := buf.readFrame(t).(*headerFrame)
	assert.Equal(t, uint64(len(body)), hf.Size)

	var reassembled []byte
	var sizes []int
	for len(reassembled) < len(body) {
		bf := buf.readFrame(t).(*bodyFrame)
		sizes = append(sizes, len(bf.Body))
		reassembled = append(reassembled, bf.Body...)
	}

	assert.Equal(t, body, reassembled)
	for _, n := range sizes {
		assert.LessOrEqual(t, n, 4096-frameHeaderSize)
	}
	assert.Equal(t, 3, len(sizes), "10000 bytes at frame_max=4096 must split into exactly 3 body frames")
}

func TestPublishRejectedWhenPaused(t *testing.T) {
	ch, _ := newTestChannel(t)
	ch.setActive(false)

	err := ch.Publish("", "q", NewPublishFlags(), BasicProperties{}, []byte("x"))
	assert.ErrorIs(t, err, ErrChannelPaused)
}

func TestDeliveryReassemblyInvokesConsumer(t *testing.T) {
	ch, _ := newTestChannel(t)

	received := make(chan Delivery, 1)
	ch.consumersMu.Lock()
	ch.consumers["ctag-1"] = func(d Delivery) { received <- d }
	ch.consumersMu.Unlock()

	ch.recv(&methodFrame{ChannelId: ch.id, Method: &basicDeliver{
		ConsumerTag: "ctag-1",
		DeliveryTag: 7,
		Exchange:    "",
		RoutingKey:  "test-queue-2",
	}})
	ch.recv(&headerFrame{ChannelId: ch.id, ClassId: classBasic, Size: 12, Properties: BasicProperties{ContentType: "text/plain"}})
	ch.recv(&bodyFrame{ChannelId: ch.id, Body: []byte("test-conte")})
	ch.recv(&bodyFrame{ChannelId: ch.id, Body: []byte("nt")})

	select {
	case d := <-received:
		assert.Equal(t, uint64(7), d.DeliveryTag)
		assert.Equal(t, "test-conte"+"nt", string(d.Message.Body))
		assert.Equal(t, "text/plain", d.Message.Properties.ContentType)
	case <-time.After(time.Second):
		t.Fatal("consumer callback was not invoked")
	}
}

func TestDeliveryToUnknownConsumerTagIsDropped(t *testing.T) {
	ch, _ := newTestChannel(t)

	ch.recv(&methodFrame{ChannelId: ch.id, Method: &basicDeliver{ConsumerTag: "nobody", DeliveryTag: 1}})
	ch.recv(&headerFrame{ChannelId: ch.id, ClassId: classBasic, Size: 0})

	// Builder should be idle again and the channel still usable.
	assert.Equal(t, builderIdle, ch.builder.state)
}

func TestStrayBodyFrameIsProtocolError(t *testing.T) {
	ch, buf := newTestChannel(t)

	ch.recv(&bodyFrame{ChannelId: ch.id, Body: []byte("stray")})

	_ = buf // writer may or may not have flushed a channel.close by the time we check
	err := ch.Qos(0, 1, false)
	assert.Error(t, err, "a body frame with no preceding deliver/return/get-ok must fail the channel")
}

func TestReturnCallbackInvoked(t *testing.T) {
	ch, _ := newTestChannel(t)

	var got struct {
		code            uint16
		text            string
		exchange, route string
		msg             Message
	}
	done := make(chan struct{})
	ch.NotifyReturn(func(code uint16, text, exchange, routingKey string, msg Message) {
		got.code, got.text, got.exchange, got.route, got.msg = code, text, exchange, routingKey, msg
		close(done)
	})

	ch.recv(&methodFrame{ChannelId: ch.id, Method: &basicReturn{
		ReplyCode: 312, ReplyText: "NO_ROUTE", Exchange: "", RoutingKey: "test-queue-nonexisting",
	}})
	ch.recv(&headerFrame{ChannelId: ch.id, ClassId: classBasic, Size: 4})
	ch.recv(&bodyFrame{ChannelId: ch.id, Body: []byte("body")})

	select {
	case <-done:
		assert.Equal(t, uint16(312), got.code)
		assert.Equal(t, "test-queue-nonexisting", got.route)
		assert.Equal(t, "body", string(got.msg.Body))
	case <-time.After(time.Second):
		t.Fatal("on_return was not invoked")
	}
}

func TestGetOkAndGetEmpty(t *testing.T) {
	ch, buf := newTestChannel(t)

	resultCh := make(chan struct {
		msg *Message
		err error
	}, 1)
	go func() {
		msg, _, err := ch.Get("test-queue-3", true)
		resultCh <- struct {
			msg *Message
			err error
		}{msg, err}
	}()

	buf.readFrame(t) // basic.get request
	ch.recv(&methodFrame{ChannelId: ch.id, Method: &basicGetOk{Exchange: "", RoutingKey: "test-queue-3"}})
	ch.recv(&headerFrame{ChannelId: ch.id, ClassId: classBasic, Size: 12})
	ch.recv(&bodyFrame{ChannelId: ch.id, Body: []byte("test-content")})

	res := <-resultCh
	require.NoError(t, res.err)
	require.NotNil(t, res.msg)
	assert.Equal(t, "test-content", string(res.msg.Body))

	go func() {
		msg, _, err := ch.Get("test-queue-3", true)
		resultCh <- struct {
			msg *Message
			err error
		}{msg, err}
	}()
	buf.readFrame(t)
	ch.recv(&methodFrame{ChannelId: ch.id, Method: &basicGetEmpty{}})

	res = <-resultCh
	require.NoError(t, res.err)
	assert.Nil(t, res.msg)
}

func TestConsumeRegistersConsumerAfterOk(t *testing.T) {
	ch, buf := newTestChannel(t)

	resultCh := make(chan struct {
		tag string
		err error
	}, 1)
	deliveries := make(chan Delivery, 1)
	go func() {
		tag, err := ch.Consume("test-queue", "", NewConsumeFlags(), nil, func(d Delivery) { deliveries <- d })
		resultCh <- struct {
			tag string
			err error
		}{tag, err}
	}()

	mf := buf.readFrame(t).(*methodFrame)
	consume, ok := mf.Method.(*basicConsume)
	require.True(t, ok)
	assert.Equal(t, "test-queue", consume.Queue)

	ch.recv(&methodFrame{ChannelId: ch.id, Method: &basicConsumeOk{ConsumerTag: "ctag-server-assigned"}})

	res := <-resultCh
	require.NoError(t, res.err)
	assert.Equal(t, "ctag-server-assigned", res.tag)

	ch.recv(&methodFrame{ChannelId: ch.id, Method: &basicDeliver{ConsumerTag: "ctag-server-assigned", DeliveryTag: 1}})
	ch.recv(&headerFrame{ChannelId: ch.id, ClassId: classBasic, Size: 0})

	select {
	case d := <-deliveries:
		assert.Equal(t, uint64(1), d.DeliveryTag)
	case <-time.After(time.Second):
		t.Fatal("delivery was not routed to the consumer registered from consume-ok")
	}
}

func TestCancelRemovesConsumerAfterOk(t *testing.T) {
	ch, buf := newTestChannel(t)

	ch.consumersMu.Lock()
	ch.consumers["ctag-1"] = func(d Delivery) {}
	ch.consumersMu.Unlock()

	errCh := make(chan error, 1)
	go func() { errCh <- ch.Cancel("ctag-1", false) }()

	mf := buf.readFrame(t).(*methodFrame)
	cancel, ok := mf.Method.(*basicCancel)
	require.True(t, ok)
	assert.Equal(t, "ctag-1", cancel.ConsumerTag)

	ch.recv(&methodFrame{ChannelId: ch.id, Method: &basicCancelOk{ConsumerTag: "ctag-1"}})
	require.NoError(t, <-errCh)

	ch.consumersMu.Lock()
	_, stillRegistered := ch.consumers["ctag-1"]
	ch.consumersMu.Unlock()
	assert.False(t, stillRegistered)
}

func TestConsumeNoWaitRegistersImmediately(t *testing.T) {
	ch, buf := newTestChannel(t)

	tag, err := ch.Consume("test-queue", "ctag-explicit", NewConsumeFlags().NoWait(), nil, func(d Delivery) {})
	require.NoError(t, err)
	assert.Equal(t, "ctag-explicit", tag)

	mf := buf.readFrame(t).(*methodFrame)
	consume, ok := mf.Method.(*basicConsume)
	require.True(t, ok)
	assert.True(t, consume.Flags.isNoWait())

	ch.consumersMu.Lock()
	_, registered := ch.consumers["ctag-explicit"]
	ch.consumersMu.Unlock()
	assert.True(t, registered)
}

func TestConfirmAckNackDispatch(t *testing.T) {
	ch, _ := newTestChannel(t)

	var acked []uint64
	var nacked []uint64
	ch.NotifyConfirm(
		func(tag uint64, multiple bool) { acked = append(acked, tag) },
		func(tag uint64, multiple, requeue bool) { nacked = append(nacked, tag) },
	)

	ch.recv(&methodFrame{ChannelId: ch.id, Method: &basicAck{DeliveryTag: 1}})
	ch.recv(&methodFrame{ChannelId: ch.id, Method: &basicNack{DeliveryTag: 2}})

	assert.Equal(t, []uint64{1}, acked)
	assert.Equal(t, []uint64{2}, nacked)
}
