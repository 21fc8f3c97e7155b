// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
// Source code and contact info at http://github.com/streadway/amqp

package amqp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertiesRoundTrip(t *testing.T) {
	cases := map[string]BasicProperties{
		"empty": {},
		"full": {
			ContentType:     "application/json",
			ContentEncoding: "utf-8",
			Headers:         Table{"x-retry": int32(3)},
			DeliveryMode:    2,
			Priority:        7,
			CorrelationId:   "corr-1",
			ReplyTo:         "replies",
			Expiration:      "60000",
			MessageId:       "msg-1",
			Timestamp:       time.Unix(1700000000, 0),
			Type:            "order.created",
			UserId:          "guest",
			AppId:           "goamqp-test",
			ClusterId:       "cluster-a",
		},
		"priority only": {Priority: 9},
	}

	for name, props := range cases {
		t.Run(name, func(t *testing.T) {
			w := newByteWriter()
			require.NoError(t, writeProperties(w, props))

			r := newByteReader(w.Bytes())
			got, err := readProperties(r)
			require.NoError(t, err)
			assert.Equal(t, props, got)
			assert.Equal(t, 0, r.remaining())
		})
	}
}

func TestPresenceMaskZeroValueIsAbsent(t *testing.T) {
	mask := presenceMask(BasicProperties{})
	assert.Equal(t, uint16(0), mask)
}

func TestPresenceMaskEachField(t *testing.T) {
	assert.NotZero(t, presenceMask(BasicProperties{ContentType: "x"})&flagContentType)
	assert.NotZero(t, presenceMask(BasicProperties{Headers: Table{}})&flagHeaders)
	assert.NotZero(t, presenceMask(BasicProperties{DeliveryMode: 1})&flagDeliveryMode)
	assert.NotZero(t, presenceMask(BasicProperties{Timestamp: time.Unix(1, 0)})&flagTimestamp)
}
