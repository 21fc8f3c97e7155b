// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
// Source code and contact info at http://github.com/streadway/amqp

package amqp

import (
	"encoding/binary"
	"io"
	"math"
	"time"
)

// Frame type bytes. Unlike the real AMQP wire constants (1/2/3/8) this
// module standardises on the numbering used by the source this client was
// distilled from: method=1, header=2, body=3, heartbeat=4.
const (
	frameTypeMethod    = 1
	frameTypeHeader    = 2
	frameTypeBody      = 3
	frameTypeHeartbeat = 4

	frameEndOctet = 0xCE
	frameMinSize  = 4096
)

// Class ids, section 6.
const (
	classConnection = 10
	classChannel    = 20
	classExchange   = 40
	classQueue      = 50
	classBasic      = 60
	classConfirm    = 85
)

// field-table/array type codes, section 3.
const (
	typeBoolean      = 't'
	typeShortShort   = 'b' // int8
	typeShortShortU  = 'B' // uint8
	typeShortU       = 'u' // uint16
	typeShort        = 'U' // int16 (matches fbs-amqp's reversed u/U pairing)
	typeLong         = 'I' // int32
	typeLongU        = 'i' // uint32
	typeLongLong     = 'L' // int64
	typeLongLongU    = 'l' // uint64
	typeFloat        = 'f'
	typeDouble       = 'd'
	typeDecimal      = 'D'
	typeShortString  = 's'
	typeLongString   = 'S'
	typeFieldArray   = 'A'
	typeTimestamp    = 'T'
	typeFieldTable   = 'F'
	typeVoid         = 'V'
)

// reader decodes frames from a buffered byte stream. Everything here is the
// inverse of the corresponding write in write.go.
type reader struct {
	r io.Reader
}

// frame is the envelope (type, channel, payload) every wire frame decodes
// into before being routed by the connection/channel layer.
type frame interface {
	channel() uint16
}

type methodFrame struct {
	ChannelId uint16
	Method    message
}

func (f *methodFrame) channel() uint16 { return f.ChannelId }

type headerFrame struct {
	ChannelId  uint16
	ClassId    uint16
	Weight     uint16
	Size       uint64
	Properties BasicProperties
}

func (f *headerFrame) channel() uint16 { return f.ChannelId }

type bodyFrame struct {
	ChannelId uint16
	Body      []byte
}

func (f *bodyFrame) channel() uint16 { return f.ChannelId }

type heartbeatFrame struct {
	ChannelId uint16
}

func (f *heartbeatFrame) channel() uint16 { return f.ChannelId }

// ReadFrame reads a single frame off the wire: type, channel, size, payload,
// trailing 0xCE. Any framing violation is a terminal protocol error.
func (r *reader) ReadFrame() (frame, error) {
	var scratch [7]byte

	if _, err := io.ReadFull(r.r, scratch[:7]); err != nil {
		return nil, err
	}

	typ := scratch[0]
	channel := binary.BigEndian.Uint16(scratch[1:3])
	size := binary.BigEndian.Uint32(scratch[3:7])

	switch typ {
	case frameTypeMethod:
		payload := make([]byte, size)
		if _, err := io.ReadFull(r.r, payload); err != nil {
			return nil, err
		}
		if err := readFrameEnd(r.r); err != nil {
			return nil, err
		}
		return r.parseMethodFrame(channel, payload)

	case frameTypeHeader:
		payload := make([]byte, size)
		if _, err := io.ReadFull(r.r, payload); err != nil {
			return nil, err
		}
		if err := readFrameEnd(r.r); err != nil {
			return nil, err
		}
		return parseHeaderFrame(channel, payload)

	case frameTypeBody:
		payload := make([]byte, size)
		if _, err := io.ReadFull(r.r, payload); err != nil {
			return nil, err
		}
		if err := readFrameEnd(r.r); err != nil {
			return nil, err
		}
		return &bodyFrame{ChannelId: channel, Body: payload}, nil

	case frameTypeHeartbeat:
		if size != 0 {
			if _, err := io.CopyN(io.Discard, r.r, int64(size)); err != nil {
				return nil, err
			}
		}
		if err := readFrameEnd(r.r); err != nil {
			return nil, err
		}
		return &heartbeatFrame{ChannelId: channel}, nil

	default:
		return nil, newError(frameError, "invalid frame type")
	}
}

func readFrameEnd(r io.Reader) error {
	var end [1]byte
	if _, err := io.ReadFull(r, end[:]); err != nil {
		return err
	}
	if end[0] != frameEndOctet {
		return newError(frameError, "final octet was not 0xCE")
	}
	return nil
}

func (r *reader) parseMethodFrame(channel uint16, payload []byte) (frame, error) {
	br := newByteReader(payload)

	classId, err := br.readUint16()
	if err != nil {
		return nil, err
	}
	methodId, err := br.readUint16()
	if err != nil {
		return nil, err
	}

	m, err := newMethod(classId, methodId)
	if err != nil {
		return nil, err
	}

	if err := m.read(br); err != nil {
		return nil, err
	}

	return &methodFrame{ChannelId: channel, Method: m}, nil
}

func parseHeaderFrame(channel uint16, payload []byte) (frame, error) {
	br := newByteReader(payload)

	classId, err := br.readUint16()
	if err != nil {
		return nil, err
	}
	weight, err := br.readUint16()
	if err != nil {
		return nil, err
	}
	size, err := br.readUint64()
	if err != nil {
		return nil, err
	}

	props, err := readProperties(br)
	if err != nil {
		return nil, err
	}

	return &headerFrame{
		ChannelId:  channel,
		ClassId:    classId,
		Weight:     weight,
		Size:       size,
		Properties: props,
	}, nil
}

// byteReader is a small cursor over an in-memory method/header payload; all
// AMQP scalar and composite decoders are built on top of it.
type byteReader struct {
	buf []byte
	pos int
}

func newByteReader(buf []byte) *byteReader {
	return &byteReader{buf: buf}
}

func (b *byteReader) remaining() int { return len(b.buf) - b.pos }

func (b *byteReader) take(n int) ([]byte, error) {
	if b.remaining() < n {
		return nil, newError(syntaxError, "buffer too short")
	}
	out := b.buf[b.pos : b.pos+n]
	b.pos += n
	return out, nil
}

func (b *byteReader) readUint8() (uint8, error) {
	v, err := b.take(1)
	if err != nil {
		return 0, err
	}
	return v[0], nil
}

func (b *byteReader) readInt8() (int8, error) {
	v, err := b.readUint8()
	return int8(v), err
}

func (b *byteReader) readBool() (bool, error) {
	v, err := b.readUint8()
	return v != 0, err
}

func (b *byteReader) readUint16() (uint16, error) {
	v, err := b.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(v), nil
}

func (b *byteReader) readInt16() (int16, error) {
	v, err := b.readUint16()
	return int16(v), err
}

func (b *byteReader) readUint32() (uint32, error) {
	v, err := b.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(v), nil
}

func (b *byteReader) readInt32() (int32, error) {
	v, err := b.readUint32()
	return int32(v), err
}

func (b *byteReader) readUint64() (uint64, error) {
	v, err := b.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(v), nil
}

func (b *byteReader) readInt64() (int64, error) {
	v, err := b.readUint64()
	return int64(v), err
}

func (b *byteReader) readFloat32() (float32, error) {
	v, err := b.readUint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (b *byteReader) readFloat64() (float64, error) {
	v, err := b.readUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

func (b *byteReader) readShortstr() (string, error) {
	n, err := b.readUint8()
	if err != nil {
		return "", err
	}
	v, err := b.take(int(n))
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func (b *byteReader) readLongstr() (string, error) {
	n, err := b.readUint32()
	if err != nil {
		return "", err
	}
	v, err := b.take(int(n))
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func (b *byteReader) readLongbytes() ([]byte, error) {
	n, err := b.readUint32()
	if err != nil {
		return nil, err
	}
	v, err := b.take(int(n))
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (b *byteReader) readTimestamp() (time.Time, error) {
	secs, err := b.readUint64()
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(int64(secs), 0), nil
}

// readTable decodes a field-table: a u32 byte-length prefix followed by
// key/value pairs, consumed until exactly that many bytes have been read.
// This is the authoritative decode path (the source's other, unfinished
// table reader is not ported -- see DESIGN.md). An empty table decodes as
// nil, the same way readArray returns nil for an empty field-array.
func (b *byteReader) readTable() (Table, error) {
	length, err := b.readUint32()
	if err != nil {
		return nil, err
	}

	start := b.pos
	var table Table

	for b.pos-start < int(length) {
		key, err := b.readShortstr()
		if err != nil {
			return nil, err
		}
		value, err := b.readFieldValue()
		if err != nil {
			return nil, err
		}
		if table == nil {
			table = Table{}
		}
		table[key] = value
	}

	if b.pos-start != int(length) {
		return nil, newError(syntaxError, "field-table length mismatch")
	}

	return table, nil
}

// readArray decodes a field-array: same length-prefixed-and-consumed shape
// as readTable, but with no keys.
func (b *byteReader) readArray() ([]interface{}, error) {
	length, err := b.readUint32()
	if err != nil {
		return nil, err
	}

	start := b.pos
	var values []interface{}

	for b.pos-start < int(length) {
		value, err := b.readFieldValue()
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}

	if b.pos-start != int(length) {
		return nil, newError(syntaxError, "field-array length mismatch")
	}

	return values, nil
}

func (b *byteReader) readFieldValue() (interface{}, error) {
	code, err := b.readUint8()
	if err != nil {
		return nil, err
	}

	switch code {
	case typeBoolean:
		return b.readBool()
	case typeShortShort:
		return b.readInt8()
	case typeShortShortU:
		return b.readUint8()
	case typeShort:
		return b.readInt16()
	case typeShortU:
		return b.readUint16()
	case typeLong:
		return b.readInt32()
	case typeLongU:
		return b.readUint32()
	case typeLongLong:
		return b.readInt64()
	case typeLongLongU:
		return b.readUint64()
	case typeFloat:
		return b.readFloat32()
	case typeDouble:
		return b.readFloat64()
	case typeDecimal:
		scale, err := b.readUint8()
		if err != nil {
			return nil, err
		}
		value, err := b.readInt32()
		if err != nil {
			return nil, err
		}
		return Decimal{Scale: scale, Value: value}, nil
	case typeShortString:
		return b.readShortstr()
	case typeLongString:
		return b.readLongstr()
	case typeFieldArray:
		return b.readArray()
	case typeTimestamp:
		return b.readTimestamp()
	case typeFieldTable:
		return b.readTable()
	case typeVoid:
		return nil, nil
	default:
		return nil, newError(syntaxError, "invalid field-table value type")
	}
}
