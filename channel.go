// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
// Source code and contact info at http://github.com/streadway/amqp

package amqp

import (
	"math"
	"reflect"
	"sync"
	"sync/atomic"
)

const frameHeaderSize = 8 // type(1) + channel(2) + size(4) + end(1)

// builderState drives the delivery reassembly state machine in section
// 3/4.F: Idle -> ExpectingHeader(mode) -> Accumulating -> Ready(dispatch) ->
// Idle.
type builderState int

const (
	builderIdle builderState = iota
	builderExpectingHeader
	builderAccumulating
)

type deliveryMode int

const (
	modeNone deliveryMode = iota
	modeDeliver
	modeReturn
	modeGet
)

type messageBuilder struct {
	state      builderState
	mode       deliveryMode
	deliver    *basicDeliver
	ret        *basicReturn
	get        *basicGetOk
	properties BasicProperties
	expected   uint64
	body       []byte
}

func (b *messageBuilder) beginDeliver(m *basicDeliver) {
	*b = messageBuilder{state: builderExpectingHeader, mode: modeDeliver, deliver: m}
}

func (b *messageBuilder) beginReturn(m *basicReturn) {
	*b = messageBuilder{state: builderExpectingHeader, mode: modeReturn, ret: m}
}

func (b *messageBuilder) beginGet(m *basicGetOk) {
	*b = messageBuilder{state: builderExpectingHeader, mode: modeGet, get: m}
}

// GetInfo carries the envelope fields of a basic.get-ok alongside the
// reassembled Message returned from Channel.Get.
type GetInfo struct {
	DeliveryTag  uint64
	Redelivered  bool
	Exchange     string
	RoutingKey   string
	MessageCount uint32
}

type getResult struct {
	ok      bool
	message Message
	info    GetInfo
}

// Channel is one logical, bidirectional stream multiplexed over a
// Connection -- section 3's ChannelInternal. Every exported method is a
// direct rendering of an entry in section 4.F's operation catalogue.
type Channel struct {
	connection *Connection
	id         uint16

	callMu sync.Mutex // serialises synchronous calls; enforces "at most one
	// outstanding reply" (section 3/8) by construction rather than via a
	// per-reply-class flag set -- see DESIGN.md.
	awaiting int32 // 1 while callMu holder is waiting on rpc/errors
	rpc      chan message
	errors   chan *Error

	pendingGet chan getResult

	consumersMu     sync.Mutex
	consumers       map[string]ConsumerFunc
	pendingConsumer ConsumerFunc

	onReturn ReturnFunc
	onAck    AckFunc
	onNack   NackFunc
	notifyMu sync.Mutex

	builder messageBuilder

	active int32 // 1 = publishes allowed, 0 = paused by channel.flow(false)

	destructor sync.Once
	closeMu    sync.Mutex
	closed     bool
	lastErr    *Error
}

func newChannel(c *Connection, id uint16) *Channel {
	return &Channel{
		connection: c,
		id:         id,
		rpc:        make(chan message, 1),
		errors:     make(chan *Error, 1),
		consumers:  make(map[string]ConsumerFunc),
		active:     1,
	}
}

func (ch *Channel) isActive() bool { return atomic.LoadInt32(&ch.active) == 1 }

func (ch *Channel) setActive(v bool) {
	if v {
		atomic.StoreInt32(&ch.active, 1)
	} else {
		atomic.StoreInt32(&ch.active, 0)
	}
}

func (ch *Channel) checkClosed() error {
	ch.closeMu.Lock()
	defer ch.closeMu.Unlock()
	if ch.closed {
		return ch.lastErr
	}
	return nil
}

// enqueue pushes one contiguous frame group onto the connection's writer
// queue.
func (ch *Channel) enqueue(frames ...frame) error {
	return ch.connection.queue.enqueue(frames...)
}

// call enqueues req and blocks for a reply matching one of res's concrete
// types, the channel's sticky error, or the connection's. callMu ensures
// only one such wait is outstanding on this channel at a time.
func (ch *Channel) call(req message, res ...message) error {
	ch.callMu.Lock()
	defer ch.callMu.Unlock()

	atomic.StoreInt32(&ch.awaiting, 1)
	defer atomic.StoreInt32(&ch.awaiting, 0)

	if err := ch.enqueue(&methodFrame{ChannelId: ch.id, Method: req}); err != nil {
		return err
	}

	select {
	case err := <-ch.errors:
		return err
	case msg := <-ch.rpc:
		for _, try := range res {
			if reflect.TypeOf(msg) == reflect.TypeOf(try) {
				reflect.ValueOf(try).Elem().Set(reflect.ValueOf(msg).Elem())
				return nil
			}
		}
		return ErrCommandInvalid
	}
}

func (ch *Channel) open() error {
	return ch.call(&channelOpen{}, &channelOpenOk{})
}

// Close performs the client-initiated half of section 4.F's channel
// lifecycle: send channel.close, await channel.close-ok, release the
// channel id back to the connection's allocator.
func (ch *Channel) Close() error {
	defer func() {
		ch.connection.releaseChannel(ch.id)
		ch.shutdown(nil)
	}()
	return ch.call(
		&channelClose{ReplyCode: replySuccess, ReplyText: "goamqp: channel closed"},
		&channelCloseOk{},
	)
}

// shutdown marks the channel permanently failed: every later public call
// observes lastErr, pending calls unblock with it, consumers are dropped
// without invoking their callback, and an in-flight partial message is
// discarded (and logged).
func (ch *Channel) shutdown(err *Error) {
	ch.destructor.Do(func() {
		if err == nil {
			err = ErrClosed
		}
		ch.closeMu.Lock()
		ch.closed = true
		ch.lastErr = err
		ch.closeMu.Unlock()

		select {
		case ch.errors <- err:
		default:
		}

		ch.consumersMu.Lock()
		ch.consumers = map[string]ConsumerFunc{}
		ch.pendingConsumer = nil
		ch.consumersMu.Unlock()

		if ch.builder.state != builderIdle {
			logDiscardedMessage(ch.id, uint64(len(ch.builder.body)), ch.builder.expected)
			ch.builder = messageBuilder{}
		}

		if ch.pendingGet != nil {
			ch.pendingGet <- getResult{ok: false}
			ch.pendingGet = nil
		}
	})
}

func (ch *Channel) fatal(err *Error) {
	ch.connection.releaseChannel(ch.id)
	ch.shutdown(err)
}

// recv is called from the connection's reader goroutine for every frame
// addressed to this channel.
func (ch *Channel) recv(f frame) {
	switch v := f.(type) {
	case *methodFrame:
		ch.handleMethod(v)
	case *headerFrame:
		ch.handleHeader(v)
	case *bodyFrame:
		ch.handleBody(v)
	default:
		ch.fatal(ErrUnexpectedFrame)
	}
}

func (ch *Channel) handleMethod(mf *methodFrame) {
	switch m := mf.Method.(type) {
	case *channelClose:
		err := newServerClosedError(m.ReplyCode, m.ReplyText, m.ClassId, m.MethodId)
		ch.enqueue(&methodFrame{ChannelId: ch.id, Method: &channelCloseOk{}})
		ch.fatal(err)

	case *channelFlow:
		ch.setActive(m.Active)
		ch.enqueue(&methodFrame{ChannelId: ch.id, Method: &channelFlowOk{Active: m.Active}})

	case *basicDeliver:
		ch.builder.beginDeliver(m)

	case *basicReturn:
		ch.builder.beginReturn(m)

	case *basicGetOk:
		ch.builder.beginGet(m)

	case *basicGetEmpty:
		ch.completeGetEmpty()

	case *basicAck:
		ch.handleAck(m)

	case *basicNack:
		ch.handleNack(m)

	case *basicCancel:
		ch.consumersMu.Lock()
		delete(ch.consumers, m.ConsumerTag)
		ch.consumersMu.Unlock()
		if !m.NoWait {
			ch.enqueue(&methodFrame{ChannelId: ch.id, Method: &basicCancelOk{ConsumerTag: m.ConsumerTag}})
		}

	case *basicConsumeOk:
		// Installed here, in the reader goroutine, rather than after call()
		// returns in the caller: a basic.deliver for this tag can arrive on
		// the very next frame, and completeMessage would find no registered
		// consumer if the move happened later in the caller's goroutine.
		ch.consumersMu.Lock()
		if ch.pendingConsumer != nil {
			ch.consumers[m.ConsumerTag] = ch.pendingConsumer
			ch.pendingConsumer = nil
		}
		ch.consumersMu.Unlock()
		ch.deliverReply(m)

	default:
		ch.deliverReply(m)
	}
}

// deliverReply is the generic synchronous-reply path: a reply frame
// arriving while no call() is waiting is a protocol violation (section 5's
// cancellation/ordering guarantee).
func (ch *Channel) deliverReply(m message) {
	if atomic.LoadInt32(&ch.awaiting) == 0 {
		ch.fatal(ErrUnexpectedFrame)
		return
	}
	ch.rpc <- m
}

func (ch *Channel) handleHeader(hf *headerFrame) {
	if ch.builder.state != builderExpectingHeader {
		ch.fatal(newError(unexpectedFrame, "content header without a preceding deliver/return/get-ok"))
		return
	}
	ch.builder.properties = hf.Properties
	ch.builder.expected = hf.Size
	ch.builder.body = make([]byte, 0, hf.Size)
	ch.builder.state = builderAccumulating

	if hf.Size == 0 {
		ch.completeMessage()
	}
}

func (ch *Channel) handleBody(bf *bodyFrame) {
	if ch.builder.state != builderAccumulating {
		ch.fatal(newError(unexpectedFrame, "stray body frame with no in-flight message"))
		return
	}
	ch.builder.body = append(ch.builder.body, bf.Body...)

	switch {
	case uint64(len(ch.builder.body)) > ch.builder.expected:
		ch.fatal(newError(unexpectedFrame, "body frame exceeded declared content length"))
	case uint64(len(ch.builder.body)) == ch.builder.expected:
		ch.completeMessage()
	}
}

func (ch *Channel) completeMessage() {
	msg := Message{Properties: ch.builder.properties, Body: ch.builder.body}
	mode := ch.builder.mode
	deliver := ch.builder.deliver
	ret := ch.builder.ret
	get := ch.builder.get
	ch.builder = messageBuilder{}

	switch mode {
	case modeDeliver:
		ch.consumersMu.Lock()
		fn, ok := ch.consumers[deliver.ConsumerTag]
		ch.consumersMu.Unlock()
		if !ok {
			logDroppedDelivery(ch.id, deliver.ConsumerTag, deliver.DeliveryTag)
			return
		}
		fn(Delivery{
			ConsumerTag: deliver.ConsumerTag,
			DeliveryTag: deliver.DeliveryTag,
			Redelivered: deliver.Redelivered,
			Exchange:    deliver.Exchange,
			RoutingKey:  deliver.RoutingKey,
			Message:     msg,
		})

	case modeReturn:
		ch.notifyMu.Lock()
		fn := ch.onReturn
		ch.notifyMu.Unlock()
		if fn != nil {
			fn(ret.ReplyCode, ret.ReplyText, ret.Exchange, ret.RoutingKey, msg)
		}

	case modeGet:
		if ch.pendingGet != nil {
			ch.pendingGet <- getResult{
				ok:      true,
				message: msg,
				info: GetInfo{
					DeliveryTag:  get.DeliveryTag,
					Redelivered:  get.Redelivered,
					Exchange:     get.Exchange,
					RoutingKey:   get.RoutingKey,
					MessageCount: get.MessageCount,
				},
			}
			ch.pendingGet = nil
		}
	}
}

func (ch *Channel) completeGetEmpty() {
	if ch.pendingGet != nil {
		ch.pendingGet <- getResult{ok: false}
		ch.pendingGet = nil
	}
}

func (ch *Channel) handleAck(m *basicAck) {
	ch.notifyMu.Lock()
	fn := ch.onAck
	ch.notifyMu.Unlock()
	if fn == nil {
		logUnconfirmedCallback(ch.id, m.DeliveryTag, false)
		return
	}
	fn(m.DeliveryTag, m.Multiple)
}

func (ch *Channel) handleNack(m *basicNack) {
	ch.notifyMu.Lock()
	fn := ch.onNack
	ch.notifyMu.Unlock()
	if fn == nil {
		logUnconfirmedCallback(ch.id, m.DeliveryTag, true)
		return
	}
	fn(m.DeliveryTag, m.Flags.isMultiple(), m.Flags.isRequeue())
}

// NotifyReturn registers the callback for unroutable mandatory/immediate
// publishes (section 6).
func (ch *Channel) NotifyReturn(fn ReturnFunc) {
	ch.notifyMu.Lock()
	ch.onReturn = fn
	ch.notifyMu.Unlock()
}

// NotifyConfirm registers the publisher-confirm callbacks. They are invoked
// for every basic.ack / basic.nack arriving on the channel; the channel does
// not itself check whether ConfirmSelect was called.
func (ch *Channel) NotifyConfirm(ack AckFunc, nack NackFunc) {
	ch.notifyMu.Lock()
	ch.onAck = ack
	ch.onNack = nack
	ch.notifyMu.Unlock()
}

// Flow implements the client's half of channel.flow: pausing or resuming
// our own publishes is driven by the server via handleMethod above; this
// method is for a client that wants to pause/resume the server's publishes
// to us.
func (ch *Channel) Flow(active bool) error {
	if err := ch.checkClosed(); err != nil {
		return err
	}
	return ch.call(&channelFlow{Active: active}, &channelFlowOk{})
}

func (ch *Channel) ExchangeDeclare(name, kind string, flags ExchangeFlags, args Table) error {
	if err := ch.checkClosed(); err != nil {
		return err
	}
	req := &exchangeDeclare{Exchange: name, Type: kind, Flags: flags, Arguments: args}
	if flags.isNoWait() {
		return ch.enqueue(&methodFrame{ChannelId: ch.id, Method: req})
	}
	return ch.call(req, &exchangeDeclareOk{})
}

func (ch *Channel) ExchangeDelete(name string, flags DeleteExchangeFlags) error {
	if err := ch.checkClosed(); err != nil {
		return err
	}
	req := &exchangeDelete{Exchange: name, Flags: flags}
	if flags.isNoWait() {
		return ch.enqueue(&methodFrame{ChannelId: ch.id, Method: req})
	}
	return ch.call(req, &exchangeDeleteOk{})
}

func (ch *Channel) QueueDeclare(name string, flags QueueFlags, args Table) (string, uint32, uint32, error) {
	if err := ch.checkClosed(); err != nil {
		return "", 0, 0, err
	}
	req := &queueDeclare{Queue: name, Flags: flags, Arguments: args}
	if flags.isNoWait() {
		return name, 0, 0, ch.enqueue(&methodFrame{ChannelId: ch.id, Method: req})
	}
	reply := &queueDeclareOk{}
	if err := ch.call(req, reply); err != nil {
		return "", 0, 0, err
	}
	return reply.Queue, reply.MessageCount, reply.ConsumerCount, nil
}

func (ch *Channel) QueueBind(queue, exchange, routingKey string, noWait bool, args Table) error {
	if err := ch.checkClosed(); err != nil {
		return err
	}
	req := &queueBind{Queue: queue, Exchange: exchange, RoutingKey: routingKey, NoWait: noWait, Arguments: args}
	if noWait {
		return ch.enqueue(&methodFrame{ChannelId: ch.id, Method: req})
	}
	return ch.call(req, &queueBindOk{})
}

func (ch *Channel) QueueUnbind(queue, exchange, routingKey string, args Table) error {
	if err := ch.checkClosed(); err != nil {
		return err
	}
	return ch.call(&queueUnbind{Queue: queue, Exchange: exchange, RoutingKey: routingKey, Arguments: args}, &queueUnbindOk{})
}

func (ch *Channel) QueuePurge(queue string, noWait bool) (uint32, error) {
	if err := ch.checkClosed(); err != nil {
		return 0, err
	}
	req := &queuePurge{Queue: queue, NoWait: noWait}
	if noWait {
		return 0, ch.enqueue(&methodFrame{ChannelId: ch.id, Method: req})
	}
	reply := &queuePurgeOk{}
	if err := ch.call(req, reply); err != nil {
		return 0, err
	}
	return reply.MessageCount, nil
}

func (ch *Channel) QueueDelete(queue string, flags DeleteQueueFlags) (uint32, error) {
	if err := ch.checkClosed(); err != nil {
		return 0, err
	}
	req := &queueDelete{Queue: queue, Flags: flags}
	if flags.isNoWait() {
		return 0, ch.enqueue(&methodFrame{ChannelId: ch.id, Method: req})
	}
	reply := &queueDeleteOk{}
	if err := ch.call(req, reply); err != nil {
		return 0, err
	}
	return reply.MessageCount, nil
}

func (ch *Channel) Qos(prefetchSize uint32, prefetchCount uint16, global bool) error {
	if err := ch.checkClosed(); err != nil {
		return err
	}
	return ch.call(&basicQos{PrefetchSize: prefetchSize, PrefetchCount: prefetchCount, Global: global}, &basicQosOk{})
}

func (ch *Channel) Recover(requeue bool) error {
	if err := ch.checkClosed(); err != nil {
		return err
	}
	return ch.call(&basicRecover{Requeue: requeue}, &basicRecoverOk{})
}

func (ch *Channel) ConfirmSelect(noWait bool) error {
	if err := ch.checkClosed(); err != nil {
		return err
	}
	if noWait {
		return ch.enqueue(&methodFrame{ChannelId: ch.id, Method: &confirmSelect{NoWait: true}})
	}
	return ch.call(&confirmSelect{}, &confirmSelectOk{})
}

// Consume implements the registration race in section 4.F: with no-wait,
// the callback is installed under the caller's own tag before the frame is
// even enqueued; otherwise it sits in pendingConsumer until handleMethod's
// basic.consume-ok case moves it into consumers from the reader goroutine,
// ahead of any basic.deliver the server sends for the new tag.
func (ch *Channel) Consume(queue, tag string, flags ConsumeFlags, args Table, fn ConsumerFunc) (string, error) {
	if err := ch.checkClosed(); err != nil {
		return "", err
	}

	req := &basicConsume{Queue: queue, ConsumerTag: tag, Flags: flags, Arguments: args}

	if flags.isNoWait() {
		if tag == "" {
			return "", ErrInvalidParams
		}
		ch.consumersMu.Lock()
		ch.consumers[tag] = fn
		ch.consumersMu.Unlock()

		if err := ch.enqueue(&methodFrame{ChannelId: ch.id, Method: req}); err != nil {
			ch.consumersMu.Lock()
			delete(ch.consumers, tag)
			ch.consumersMu.Unlock()
			return "", err
		}
		return tag, nil
	}

	ch.consumersMu.Lock()
	ch.pendingConsumer = fn
	ch.consumersMu.Unlock()

	reply := &basicConsumeOk{}
	if err := ch.call(req, reply); err != nil {
		ch.consumersMu.Lock()
		ch.pendingConsumer = nil
		ch.consumersMu.Unlock()
		return "", err
	}

	return reply.ConsumerTag, nil
}

func (ch *Channel) Cancel(tag string, noWait bool) error {
	if err := ch.checkClosed(); err != nil {
		return err
	}

	if noWait {
		ch.consumersMu.Lock()
		delete(ch.consumers, tag)
		ch.consumersMu.Unlock()
		return ch.enqueue(&methodFrame{ChannelId: ch.id, Method: &basicCancel{ConsumerTag: tag, NoWait: true}})
	}

	reply := &basicCancelOk{}
	if err := ch.call(&basicCancel{ConsumerTag: tag}, reply); err != nil {
		return err
	}
	ch.consumersMu.Lock()
	delete(ch.consumers, tag)
	ch.consumersMu.Unlock()
	return nil
}

// Get implements the synchronous basic.get path: a reply of
// basic.get-empty resolves immediately with a nil *Message; a basic.get-ok
// starts the same reassembly state machine deliveries and returns use, and
// the result is delivered here once the body completes.
func (ch *Channel) Get(queue string, noAck bool) (*Message, GetInfo, error) {
	if err := ch.checkClosed(); err != nil {
		return nil, GetInfo{}, err
	}

	ch.callMu.Lock()
	defer ch.callMu.Unlock()

	resultCh := make(chan getResult, 1)
	ch.pendingGet = resultCh

	if err := ch.enqueue(&methodFrame{ChannelId: ch.id, Method: &basicGet{Queue: queue, NoAck: noAck}}); err != nil {
		ch.pendingGet = nil
		return nil, GetInfo{}, err
	}

	select {
	case res := <-resultCh:
		if !res.ok {
			return nil, GetInfo{}, nil
		}
		msg := res.message
		return &msg, res.info, nil
	case err := <-ch.errors:
		return nil, GetInfo{}, err
	}
}

// Publish implements section 4.F's publish path: the method, header and
// however many body chunks the content requires are pushed as one
// contiguous block so the server never observes another caller's frames
// interleaved with this publish.
func (ch *Channel) Publish(exchange, routingKey string, flags PublishFlags, props BasicProperties, body []byte) error {
	if err := ch.checkClosed(); err != nil {
		return err
	}
	if !ch.isActive() {
		return ErrChannelPaused
	}

	max := ch.connection.maxBodyFrameSize()

	frames := make([]frame, 0, 2+len(body)/max+1)
	frames = append(frames, &methodFrame{
		ChannelId: ch.id,
		Method:    &basicPublish{Exchange: exchange, RoutingKey: routingKey, Flags: flags},
	})
	frames = append(frames, &headerFrame{
		ChannelId:  ch.id,
		ClassId:    classBasic,
		Size:       uint64(len(body)),
		Properties: props,
	})

	for offset := 0; offset < len(body); offset += max {
		end := offset + max
		if end > len(body) {
			end = len(body)
		}
		chunk := append(ch.connection.pool.acquire(), body[offset:end]...)
		frames = append(frames, &bodyFrame{ChannelId: ch.id, Body: chunk})
	}

	// enqueue blocks until the writer goroutine has copied every frame onto
	// the socket, so the body chunks can go back to the pool as soon as it
	// returns.
	err := ch.enqueue(frames...)
	for _, f := range frames {
		if bf, ok := f.(*bodyFrame); ok {
			ch.connection.pool.release(bf.Body)
		}
	}
	return err
}

func (ch *Channel) Ack(deliveryTag uint64, multiple bool) error {
	if err := ch.checkClosed(); err != nil {
		return err
	}
	return ch.enqueue(&methodFrame{ChannelId: ch.id, Method: &basicAck{DeliveryTag: deliveryTag, Multiple: multiple}})
}

func (ch *Channel) Reject(deliveryTag uint64, requeue bool) error {
	if err := ch.checkClosed(); err != nil {
		return err
	}
	return ch.enqueue(&methodFrame{ChannelId: ch.id, Method: &basicReject{DeliveryTag: deliveryTag, Requeue: requeue}})
}

func (ch *Channel) Nack(deliveryTag uint64, flags NackFlags) error {
	if err := ch.checkClosed(); err != nil {
		return err
	}
	return ch.enqueue(&methodFrame{ChannelId: ch.id, Method: &basicNack{DeliveryTag: deliveryTag, Flags: flags}})
}

// maxBodyFrameSize is the largest payload a body frame may carry given the
// negotiated frame-max, section 4.B/4.F. 0 (unlimited) is treated as "cap
// only by what fits in an int".
func (c *Connection) maxBodyFrameSize() int {
	if c.Params.FrameSize <= frameHeaderSize {
		return math.MaxInt32 - frameHeaderSize
	}
	return c.Params.FrameSize - frameHeaderSize
}
