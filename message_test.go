// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
// Source code and contact info at http://github.com/streadway/amqp

package amqp

import (
	"bufio"
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roundTrip serialises m as a method frame on channel 1 through the real
// writer, then reads it back through the real reader, returning the
// decoded message for field-by-field comparison.
func roundTrip(t *testing.T, m message) message {
	t.Helper()

	var buf bytes.Buffer
	w := &writer{w: bufio.NewWriter(&buf)}
	require.NoError(t, w.WriteFrame(&methodFrame{ChannelId: 1, Method: m}))

	r := &reader{r: bufio.NewReader(&buf)}
	f, err := r.ReadFrame()
	require.NoError(t, err)

	mf, ok := f.(*methodFrame)
	require.True(t, ok)
	assert.Equal(t, uint16(1), mf.ChannelId)
	assert.IsType(t, m, mf.Method)
	return mf.Method
}

func TestMethodRoundTrip(t *testing.T) {
	cases := []message{
		&connectionStartOk{
			ClientProperties: Table{"product": "goamqp"},
			Mechanism:        "PLAIN",
			Response:         "\x00guest\x00guest",
			Locale:           "en_US",
		},
		&connectionTune{ChannelMax: 2047, FrameMax: 131072, Heartbeat: 60},
		&connectionOpen{VirtualHost: "/test"},
		&channelOpen{},
		&channelClose{ReplyCode: 320, ReplyText: "forced", ClassId: 10, MethodId: 50},
		&exchangeDeclare{Exchange: "orders", Type: "topic", Flags: NewExchangeFlags().Durable(), Arguments: Table{"x-ha": true}},
		&queueDeclare{Queue: "q1", Flags: NewQueueFlags().Durable().Exclusive()},
		&queueDeclareOk{Queue: "q1", MessageCount: 4, ConsumerCount: 1},
		&queueBind{Queue: "q1", Exchange: "orders", RoutingKey: "order.*"},
		&basicQos{PrefetchSize: 0, PrefetchCount: 10, Global: false},
		&basicConsume{Queue: "q1", ConsumerTag: "ctag-1", Flags: NewConsumeFlags().NoAck()},
		&basicConsumeOk{ConsumerTag: "ctag-1"},
		&basicPublish{Exchange: "orders", RoutingKey: "order.created", Flags: NewPublishFlags().Mandatory()},
		&basicDeliver{ConsumerTag: "ctag-1", DeliveryTag: 42, Redelivered: true, Exchange: "orders", RoutingKey: "order.created"},
		&basicGet{Queue: "q1", NoAck: false},
		&basicGetOk{DeliveryTag: 7, Exchange: "orders", RoutingKey: "order.created", MessageCount: 2},
		&basicGetEmpty{},
		&basicAck{DeliveryTag: 42, Multiple: true},
		&basicReject{DeliveryTag: 42, Requeue: true},
		&basicNack{DeliveryTag: 42, Flags: NewNackFlags().Multiple().Requeue()},
		&confirmSelect{},
	}

	for _, m := range cases {
		t.Run(fmt.Sprintf("%T", m), func(t *testing.T) {
			got := roundTrip(t, m)
			assert.Equal(t, m, got)
		})
	}
}

func TestNewMethodUnknownReturnsError(t *testing.T) {
	_, err := newMethod(9999, 9999)
	assert.Error(t, err)
}

func TestHeaderAndBodyFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := &writer{w: bufio.NewWriter(&buf)}

	props := BasicProperties{ContentType: "text/plain", DeliveryMode: 2}
	require.NoError(t, w.WriteFrame(&headerFrame{ChannelId: 1, ClassId: classBasic, Size: 11, Properties: props}))
	require.NoError(t, w.WriteFrame(&bodyFrame{ChannelId: 1, Body: []byte("hello world")}))

	r := &reader{r: bufio.NewReader(&buf)}

	f1, err := r.ReadFrame()
	require.NoError(t, err)
	hf, ok := f1.(*headerFrame)
	require.True(t, ok)
	assert.Equal(t, uint64(11), hf.Size)
	assert.Equal(t, props, hf.Properties)

	f2, err := r.ReadFrame()
	require.NoError(t, err)
	bf, ok := f2.(*bodyFrame)
	require.True(t, ok)
	assert.Equal(t, []byte("hello world"), bf.Body)
}

func TestHeartbeatFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := &writer{w: bufio.NewWriter(&buf)}
	require.NoError(t, w.WriteFrame(&heartbeatFrame{}))

	r := &reader{r: bufio.NewReader(&buf)}
	f, err := r.ReadFrame()
	require.NoError(t, err)
	_, ok := f.(*heartbeatFrame)
	assert.True(t, ok)
}

func TestFrameEndOctetValidated(t *testing.T) {
	var buf bytes.Buffer
	w := &writer{w: bufio.NewWriter(&buf)}
	require.NoError(t, w.WriteFrame(&heartbeatFrame{}))

	corrupt := buf.Bytes()
	corrupt[len(corrupt)-1] = 0x00

	r := &reader{r: bufio.NewReader(bytes.NewReader(corrupt))}
	_, err := r.ReadFrame()
	assert.Error(t, err)
}
