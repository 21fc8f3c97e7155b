// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
// Source code and contact info at http://github.com/streadway/amqp

package amqp

// Fluent flag builders for the method bitmasks named in section 6 of the
// design: each named bit gets a chainable setter so call sites read like
// amqp.NewQueueFlags().Durable().AutoDelete() instead of a bare octal
// literal.

// ExchangeFlags is the exchange.declare bitmask: bit 0 passive, bit 1
// durable, bit 4 no-wait.
type ExchangeFlags uint8

func NewExchangeFlags() ExchangeFlags { return 0 }

func (f ExchangeFlags) Passive() ExchangeFlags { return f | 1<<0 }
func (f ExchangeFlags) Durable() ExchangeFlags { return f | 1<<1 }
func (f ExchangeFlags) NoWait() ExchangeFlags  { return f | 1<<4 }

func (f ExchangeFlags) isPassive() bool { return f&(1<<0) != 0 }
func (f ExchangeFlags) isDurable() bool { return f&(1<<1) != 0 }
func (f ExchangeFlags) isNoWait() bool  { return f&(1<<4) != 0 }

// DeleteExchangeFlags: bit 0 if-unused, bit 1 no-wait.
type DeleteExchangeFlags uint8

func NewDeleteExchangeFlags() DeleteExchangeFlags { return 0 }

func (f DeleteExchangeFlags) IfUnused() DeleteExchangeFlags { return f | 1<<0 }
func (f DeleteExchangeFlags) NoWait() DeleteExchangeFlags   { return f | 1<<1 }

func (f DeleteExchangeFlags) isIfUnused() bool { return f&(1<<0) != 0 }
func (f DeleteExchangeFlags) isNoWait() bool   { return f&(1<<1) != 0 }

// QueueFlags: bit 0 passive, bit 1 durable, bit 2 exclusive, bit 3
// auto-delete, bit 4 no-wait.
type QueueFlags uint8

func NewQueueFlags() QueueFlags { return 0 }

func (f QueueFlags) Passive() QueueFlags    { return f | 1<<0 }
func (f QueueFlags) Durable() QueueFlags    { return f | 1<<1 }
func (f QueueFlags) Exclusive() QueueFlags  { return f | 1<<2 }
func (f QueueFlags) AutoDelete() QueueFlags { return f | 1<<3 }
func (f QueueFlags) NoWait() QueueFlags     { return f | 1<<4 }

func (f QueueFlags) isPassive() bool    { return f&(1<<0) != 0 }
func (f QueueFlags) isDurable() bool    { return f&(1<<1) != 0 }
func (f QueueFlags) isExclusive() bool  { return f&(1<<2) != 0 }
func (f QueueFlags) isAutoDelete() bool { return f&(1<<3) != 0 }
func (f QueueFlags) isNoWait() bool     { return f&(1<<4) != 0 }

// DeleteQueueFlags: bit 0 if-unused, bit 1 if-empty, bit 2 no-wait.
type DeleteQueueFlags uint8

func NewDeleteQueueFlags() DeleteQueueFlags { return 0 }

func (f DeleteQueueFlags) IfUnused() DeleteQueueFlags { return f | 1<<0 }
func (f DeleteQueueFlags) IfEmpty() DeleteQueueFlags  { return f | 1<<1 }
func (f DeleteQueueFlags) NoWait() DeleteQueueFlags   { return f | 1<<2 }

func (f DeleteQueueFlags) isIfUnused() bool { return f&(1<<0) != 0 }
func (f DeleteQueueFlags) isIfEmpty() bool  { return f&(1<<1) != 0 }
func (f DeleteQueueFlags) isNoWait() bool   { return f&(1<<2) != 0 }

// ConsumeFlags: bit 0 no-local, bit 1 no-ack, bit 2 exclusive, bit 3 no-wait.
type ConsumeFlags uint8

func NewConsumeFlags() ConsumeFlags { return 0 }

func (f ConsumeFlags) NoLocal() ConsumeFlags  { return f | 1<<0 }
func (f ConsumeFlags) NoAck() ConsumeFlags    { return f | 1<<1 }
func (f ConsumeFlags) Exclusive() ConsumeFlags { return f | 1<<2 }
func (f ConsumeFlags) NoWait() ConsumeFlags   { return f | 1<<3 }

func (f ConsumeFlags) isNoLocal() bool  { return f&(1<<0) != 0 }
func (f ConsumeFlags) isNoAck() bool    { return f&(1<<1) != 0 }
func (f ConsumeFlags) isExclusive() bool { return f&(1<<2) != 0 }
func (f ConsumeFlags) isNoWait() bool   { return f&(1<<3) != 0 }

// PublishFlags: bit 0 mandatory, bit 1 immediate.
type PublishFlags uint8

func NewPublishFlags() PublishFlags { return 0 }

func (f PublishFlags) Mandatory() PublishFlags { return f | 1<<0 }
func (f PublishFlags) Immediate() PublishFlags { return f | 1<<1 }

func (f PublishFlags) isMandatory() bool { return f&(1<<0) != 0 }
func (f PublishFlags) isImmediate() bool { return f&(1<<1) != 0 }

// NackFlags: bit 0 multiple, bit 1 requeue.
type NackFlags uint8

func NewNackFlags() NackFlags { return 0 }

func (f NackFlags) Multiple() NackFlags { return f | 1<<0 }
func (f NackFlags) Requeue() NackFlags  { return f | 1<<1 }

func (f NackFlags) isMultiple() bool { return f&(1<<0) != 0 }
func (f NackFlags) isRequeue() bool  { return f&(1<<1) != 0 }

func nackFlagsFrom(b uint8) NackFlags { return NackFlags(b) }
