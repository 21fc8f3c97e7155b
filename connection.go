// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
// Source code and contact info at http://github.com/streadway/amqp

package amqp

import (
	"bufio"
	"io"
	"net"
	"reflect"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

const (
	defaultHeartbeat         = 10 * time.Second
	defaultConnectionTimeout = 30 * time.Second
	defaultChannelMax        = (2 << 10) - 1
	defaultLocale            = "en_US"
)

// ConnectionParams are the tuning parameters for a Dial/Open call, section
// 6's "Configuration object". Dial fills in SASL and Vhost from the URI;
// everything else defaults to Dial's zero-means-unbounded convention.
type ConnectionParams struct {
	SASL []Authentication

	Vhost string

	ChannelMax int           // 0 means unlimited
	FrameSize  int           // 0 means unlimited
	Heartbeat  time.Duration // less than 1s means accept the server's interval

	ConnectionTimeout time.Duration

	// OnError is invoked exactly once, from whichever goroutine detects the
	// failure (the reader, the heartbeat task, or a caller whose send
	// failed), the moment the connection enters its failed state.
	OnError func(*Error)
}

// Connection owns the single socket, the reader/writer/heartbeat tasks
// bound to it, and the channel registry multiplexed over it -- section 3's
// Connection entity.
type Connection struct {
	destructor sync.Once
	m          sync.Mutex // guards closes/noNotify below

	conn   io.ReadWriteCloser
	writer *writer
	queue  *writerQueue

	writerDone chan struct{}

	rpc      chan message
	errors   chan *Error
	awaiting int32 // 1 while call() is blocked waiting on rpc/errors

	channelsMu sync.Mutex
	channels   map[uint16]*Channel
	allocator  *channelAllocator

	lastSent atomic.Value // time.Time
	lastRecv atomic.Value // time.Time

	closes   []chan *Error
	noNotify bool

	pool *bufferPool

	Params     ConnectionParams
	Major      int
	Minor      int
	Properties Table
}

// Dial parses an AMQP URI, connects over TCP, and completes the full
// connection handshake (section 4.E).
func Dial(uri string) (*Connection, error) {
	return DialConfig(uri, ConnectionParams{
		Heartbeat:         defaultHeartbeat,
		ConnectionTimeout: defaultConnectionTimeout,
	})
}

// DialConfig is Dial with explicit tuning parameters.
func DialConfig(uri string, params ConnectionParams) (*Connection, error) {
	u, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	if params.SASL == nil {
		params.SASL = []Authentication{u.PlainAuth()}
	}
	if params.Vhost == "" {
		params.Vhost = u.Vhost
	}
	if params.ConnectionTimeout <= 0 {
		params.ConnectionTimeout = defaultConnectionTimeout
	}

	addr := net.JoinHostPort(u.Host, strconv.Itoa(u.Port))

	conn, err := net.DialTimeout("tcp", addr, params.ConnectionTimeout)
	if err != nil {
		return nil, wrapIOError(localConnect, err)
	}

	return Open(conn, params)
}

// Open completes the handshake over an already-established transport. Use
// this when you've dialed the socket yourself.
func Open(conn io.ReadWriteCloser, params ConnectionParams) (*Connection, error) {
	me := &Connection{
		conn:       conn,
		writer:     &writer{w: bufio.NewWriter(conn)},
		queue:      newWriterQueue(),
		writerDone: make(chan struct{}),
		channels:   make(map[uint16]*Channel),
		rpc:        make(chan message),
		errors:     make(chan *Error, 1),
		pool:       newBufferPool(),
		Params:     params,
	}
	me.lastSent.Store(time.Now())
	me.lastRecv.Store(time.Now())

	go func() {
		me.queue.run(me.writer)
		close(me.writerDone)
	}()

	go me.reader(conn)

	if err := me.open(params); err != nil {
		return nil, err
	}
	return me, nil
}

// NotifyClose registers a listener for connection termination, whether
// graceful or error-driven. On a graceful close the channel is closed, not
// sent to; on error it receives the sticky *Error and is then closed.
func (me *Connection) NotifyClose(c chan *Error) chan *Error {
	me.m.Lock()
	defer me.m.Unlock()

	if me.noNotify {
		close(c)
	} else {
		me.closes = append(me.closes, c)
	}
	return c
}

// Close performs the graceful shutdown in section 4.E: send
// connection.close, wait for close-ok, shut down the writer queue, close
// the socket.
func (me *Connection) Close() error {
	defer me.shutdown(nil)
	return me.call(
		&connectionClose{ReplyCode: replySuccess, ReplyText: "goamqp: normal shutdown"},
		&connectionCloseOk{},
	)
}

func (me *Connection) closeWith(err *Error) error {
	defer me.shutdown(err)
	return me.call(
		&connectionClose{ReplyCode: uint16(err.Code), ReplyText: err.Reason},
		&connectionCloseOk{},
	)
}

// send enqueues a single channel-0 frame and records the send for the
// heartbeat generator.
func (me *Connection) send(f frame) error {
	if err := me.queue.enqueue(f); err != nil {
		me.shutdown(wrapIOError(frameError, err))
		return err
	}
	me.lastSent.Store(time.Now())
	return nil
}

// shutdown is the terminal, once-only teardown: mark every channel and
// every outstanding connection-level call with the sticky error, fire
// OnError, tear down the socket and writer queue.
func (me *Connection) shutdown(err *Error) {
	me.destructor.Do(func() {
		me.m.Lock()
		if err != nil {
			for _, c := range me.closes {
				c <- err
			}
		}
		me.m.Unlock()

		me.channelsMu.Lock()
		chans := me.channels
		me.channels = make(map[uint16]*Channel)
		me.channelsMu.Unlock()

		for _, ch := range chans {
			ch.shutdown(err)
		}

		if err != nil {
			select {
			case me.errors <- err:
			default:
			}
			if me.Params.OnError != nil {
				me.Params.OnError(err)
			}
		}

		me.queue.shutdown()
		<-me.writerDone
		me.conn.Close()

		me.m.Lock()
		for _, c := range me.closes {
			close(c)
		}
		me.noNotify = true
		me.m.Unlock()
	})
}

func (me *Connection) demux(f frame) {
	if f.channel() == 0 {
		me.dispatch0(f)
	} else {
		me.dispatchN(f)
	}
}

func (me *Connection) dispatch0(f frame) {
	switch mf := f.(type) {
	case *methodFrame:
		switch m := mf.Method.(type) {
		case *connectionClose:
			me.send(&methodFrame{ChannelId: 0, Method: &connectionCloseOk{}})
			me.shutdown(newServerClosedError(m.ReplyCode, m.ReplyText, m.ClassId, m.MethodId))
		default:
			if atomic.LoadInt32(&me.awaiting) == 0 {
				me.shutdown(ErrUnexpectedFrame)
				return
			}
			me.rpc <- m
		}
	case *heartbeatFrame:
		// last-recv timestamp already updated by reader for every frame.
	default:
		me.shutdown(ErrUnexpectedFrame)
	}
}

func (me *Connection) dispatchN(f frame) {
	me.channelsMu.Lock()
	ch := me.channels[f.channel()]
	me.channelsMu.Unlock()

	if ch != nil {
		ch.recv(f)
	} else {
		me.dispatchClosed(f)
	}
}

// dispatchClosed handles frames that arrive for a channel id we've already
// removed from the registry -- a close/close-ok race, per AMQP 2.3.7.
func (me *Connection) dispatchClosed(f frame) {
	if mf, ok := f.(*methodFrame); ok {
		switch mf.Method.(type) {
		case *channelClose:
			me.send(&methodFrame{ChannelId: f.channel(), Method: &channelCloseOk{}})
		case *channelCloseOk:
			// already gone, nothing to do
		default:
			me.shutdown(ErrClosed)
		}
	}
}

// reader is the single reader task (section 4.D): parse one frame at a
// time, refresh the heartbeat receive timer on every frame, route to
// channel 0 or the channel map.
func (me *Connection) reader(r io.Reader) {
	frames := &reader{r: bufio.NewReader(r)}

	for {
		f, err := frames.ReadFrame()
		if err != nil {
			me.shutdown(wrapIOError(frameError, err))
			return
		}

		me.lastRecv.Store(time.Now())
		me.demux(f)
	}
}

// heartbeater emits a heartbeat frame whenever no channel-0 frame has been
// sent through send() for the negotiated interval, and declares the
// connection dead if nothing at all has been received for 2x the interval
// -- section 4.E / section 8's heartbeat property. Frames written by
// channels do not update lastSent, so they do not delay a heartbeat. The source this was distilled from only
// ever did the first half; see DESIGN.md.
func (me *Connection) heartbeater(interval time.Duration, done chan *Error) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case now := <-ticker.C:
			if last, _ := me.lastRecv.Load().(time.Time); now.Sub(last) > 2*interval {
				me.shutdown(newError(connectionForced, "missed heartbeat, peer appears dead"))
				return
			}
			if last, _ := me.lastSent.Load().(time.Time); now.Sub(last) >= interval {
				if err := me.send(&heartbeatFrame{}); err != nil {
					return
				}
			}
		}
	}
}

// isCapable inspects Properties["capabilities"] for a server-advertised
// feature flag such as "basic.ack" or "confirm.select".
func (me *Connection) isCapable(featureName string) bool {
	capabilities, _ := me.Properties["capabilities"].(Table)
	hasFeature, _ := capabilities[featureName].(bool)
	return hasFeature
}

// Channel allocates a new channel id and opens it on the server.
func (me *Connection) Channel() (*Channel, error) {
	me.channelsMu.Lock()
	id, err := me.allocator.allocate()
	if err != nil {
		me.channelsMu.Unlock()
		return nil, err
	}
	ch := newChannel(me, id)
	me.channels[id] = ch
	me.channelsMu.Unlock()

	if err := ch.open(); err != nil {
		me.releaseChannel(id)
		return nil, err
	}
	return ch, nil
}

func (me *Connection) releaseChannel(id uint16) {
	me.channelsMu.Lock()
	delete(me.channels, id)
	me.allocator.release(id)
	me.channelsMu.Unlock()
}

// call sends req on channel 0 (or nothing, for the bare protocol header)
// and blocks until a reply whose concrete type matches one of res arrives,
// the sticky error fires, or the demux routes something unrecognised.
func (me *Connection) call(req message, res ...message) error {
	atomic.StoreInt32(&me.awaiting, 1)
	defer atomic.StoreInt32(&me.awaiting, 0)

	if req != nil {
		if err := me.send(&methodFrame{ChannelId: 0, Method: req}); err != nil {
			return err
		}
	}

	select {
	case err := <-me.errors:
		return err

	case msg := <-me.rpc:
		for _, try := range res {
			if reflect.TypeOf(msg) == reflect.TypeOf(try) {
				reflect.ValueOf(try).Elem().Set(reflect.ValueOf(msg).Elem())
				return nil
			}
		}
		return ErrCommandInvalid
	}
}

// open drives the handshake state machine: Greeting -> AwaitingStart ->
// AwaitingTune -> AwaitingOpenOk -> Open.
func (me *Connection) open(params ConnectionParams) error {
	if err := me.queue.enqueue(&protocolHeader{}); err != nil {
		return err
	}
	me.lastSent.Store(time.Now())
	return me.openStart(params)
}

func (me *Connection) openStart(params ConnectionParams) error {
	start := &connectionStart{}
	if err := me.call(nil, start); err != nil {
		return err
	}

	me.Major = int(start.VersionMajor)
	me.Minor = int(start.VersionMinor)
	me.Properties = start.ServerProperties

	auth, ok := pickSASLMechanism(params.SASL, splitMechanisms(start.Mechanisms))
	if !ok {
		return ErrSASL
	}
	me.Params.SASL = []Authentication{auth}

	return me.openTune(params, auth)
}

func (me *Connection) openTune(params ConnectionParams, auth Authentication) error {
	ok := &connectionStartOk{
		Mechanism: auth.Mechanism(),
		Response:  auth.Response(),
		Locale:    defaultLocale,
		ClientProperties: Table{
			"product":  "goamqp",
			"platform": "Go",
			"capabilities": Table{
				"connection.blocked": false,
			},
		},
	}
	tune := &connectionTune{}

	if err := me.call(ok, tune); err != nil {
		return ErrCredentials
	}

	me.Params.ChannelMax = pick(params.ChannelMax, int(tune.ChannelMax))
	me.Params.FrameSize = pick(params.FrameSize, int(tune.FrameMax))
	me.Params.Heartbeat = time.Second * time.Duration(pick(
		int(params.Heartbeat/time.Second),
		int(tune.Heartbeat)))

	me.allocator = newChannelAllocator(me.Params.ChannelMax)

	if err := me.send(&methodFrame{
		ChannelId: 0,
		Method: &connectionTuneOk{
			ChannelMax: uint16(me.Params.ChannelMax),
			FrameMax:   uint32(me.Params.FrameSize),
			Heartbeat:  uint16(me.Params.Heartbeat / time.Second),
		},
	}); err != nil {
		return err
	}

	go me.heartbeater(me.Params.Heartbeat, me.NotifyClose(make(chan *Error, 1)))

	return me.openVhost(params)
}

func (me *Connection) openVhost(params ConnectionParams) error {
	req := &connectionOpen{VirtualHost: params.Vhost}
	res := &connectionOpenOk{}

	if err := me.call(req, res); err != nil {
		return ErrVhost
	}

	me.Params.Vhost = params.Vhost
	return nil
}

// pick implements section 4.E's negotiation rule: zero on either side
// means "take the other side's value, i.e. unlimited"; otherwise the
// smaller of the two wins.
func pick(client, server int) int {
	if client == 0 || server == 0 {
		if client > server {
			return client
		}
		return server
	}
	if client > server {
		return server
	}
	return client
}
