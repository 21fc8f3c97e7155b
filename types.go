// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
// Source code and contact info at http://github.com/streadway/amqp

package amqp

import "time"

// Table is a field-table: an unordered set of (name, value) pairs carried in
// method arguments and BasicProperties.Headers. Values are one of the types
// accepted by validateFieldValue.
type Table map[string]interface{}

// Decimal matches the AMQP decimal-value field type: Value scaled by
// 10^-Scale. Value holds the four wire bytes as a signed int32, so a wire
// value above math.MaxInt32 reads back as a negative number.
type Decimal struct {
	Scale uint8
	Value int32
}

func validateFieldValue(v interface{}) error {
	switch v.(type) {
	case nil, bool,
		int8, uint8, int16, uint16, int32, uint32, int64, uint64,
		float32, float64,
		string, []byte,
		Decimal, time.Time,
		Table, []interface{}:
		return nil
	default:
		return newError(syntaxError, "unsupported field-table value type")
	}
}

// BasicProperties carries the fourteen optional content-header fields from
// the basic class, bit-packed into a presence mask on the wire (bit 15 down
// to bit 2; see properties.go). When writing, presence is derived from the
// Go value by presenceMask: a field holding its zero value (empty string,
// nil Headers, zero Timestamp, DeliveryMode or Priority 0) is not sent.
type BasicProperties struct {
	ContentType     string    // MIME content type
	ContentEncoding string    // MIME content encoding
	Headers         Table     // application headers
	DeliveryMode    uint8     // queue implementation use - non-persistent (1) or persistent (2)
	Priority        uint8     // queue implementation use - 0 to 9
	CorrelationId   string    // application use - correlation identifier
	ReplyTo         string    // application use - address to reply to
	Expiration      string    // implementation use - message expiration spec
	MessageId       string    // application use - message identifier
	Timestamp       time.Time // application use - message timestamp
	Type            string    // application use - message type name
	UserId          string    // application use - creating user id
	AppId           string    // application use - creating application id
	ClusterId       string    // deprecated - was cluster-id, reserved for future use
}

// Message is the fully reassembled payload the channel layer produces from
// a method + header + body-frame sequence: deliveries, gets and returns all
// resolve to one of these.
type Message struct {
	Properties BasicProperties
	Body       []byte
}

// Delivery is what a consumer callback receives for each basic.deliver.
type Delivery struct {
	ConsumerTag string
	DeliveryTag uint64
	Redelivered bool
	Exchange    string
	RoutingKey  string
	Message     Message
}

// ConsumerFunc is the user-supplied callback invoked from the reader task
// for every delivery dispatched to a consumer tag. It must not block: long
// work should be handed off to a separately spawned goroutine, or inbound
// frame processing for the whole connection stalls.
type ConsumerFunc func(Delivery)

// ReturnFunc handles a basic.return: the server telling us a mandatory (or
// immediate) publish could not be routed.
type ReturnFunc func(replyCode uint16, replyText, exchange, routingKey string, message Message)

// AckFunc and NackFunc dispatch publisher confirms when confirm.select is
// in force on a channel.
type AckFunc func(deliveryTag uint64, multiple bool)
type NackFunc func(deliveryTag uint64, multiple bool, requeue bool)
