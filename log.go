// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
// Source code and contact info at http://github.com/streadway/amqp

package amqp

import "github.com/sirupsen/logrus"

// logger is package-level so the handful of "log and drop" paths called
// out in the component design (unknown consumer tag on delivery, a confirm
// arriving with no callback registered, a discarded partial message) don't
// each need their own logger plumbed through. Replace via SetLogger for
// tests or to route into an application's existing logrus instance.
var logger = logrus.StandardLogger()

// SetLogger overrides the logger used for dropped-frame diagnostics.
func SetLogger(l *logrus.Logger) {
	logger = l
}

func logDroppedDelivery(channel uint16, consumerTag string, deliveryTag uint64) {
	logger.WithFields(logrus.Fields{
		"channel":      channel,
		"consumer_tag": consumerTag,
		"delivery_tag": deliveryTag,
	}).Warn("delivery for unknown consumer tag, dropping")
}

func logUnconfirmedCallback(channel uint16, deliveryTag uint64, nacked bool) {
	logger.WithFields(logrus.Fields{
		"channel":      channel,
		"delivery_tag": deliveryTag,
		"nack":         nacked,
	}).Warn("confirm received with no ack/nack callback registered")
}

func logDiscardedMessage(channel uint16, accumulated, expected uint64) {
	logger.WithFields(logrus.Fields{
		"channel":     channel,
		"accumulated": accumulated,
		"expected":    expected,
	}).Warn("discarding incomplete in-flight message")
}
