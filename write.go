// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
// Source code and contact info at http://github.com/streadway/amqp

package amqp

import (
	"bufio"
	"encoding/binary"
	"math"
	"time"
)

// writer serialises frames onto the wire. Every outbound frame goes through
// here: the payload is built in memory first, then type/channel/size/
// payload/0xCE are emitted with the size already known.
type writer struct {
	w *bufio.Writer
}

func (w *writer) WriteFrame(f frame) error {
	switch v := f.(type) {
	case *methodFrame:
		bw := newByteWriter()
		bw.writeUint16(v.Method.classID())
		bw.writeUint16(v.Method.methodID())
		if err := v.Method.write(bw); err != nil {
			return err
		}
		return w.writeRaw(frameTypeMethod, v.ChannelId, bw.Bytes())

	case *headerFrame:
		bw := newByteWriter()
		bw.writeUint16(v.ClassId)
		bw.writeUint16(0) // weight, deprecated
		bw.writeUint64(v.Size)
		if err := writeProperties(bw, v.Properties); err != nil {
			return err
		}
		return w.writeRaw(frameTypeHeader, v.ChannelId, bw.Bytes())

	case *bodyFrame:
		return w.writeRaw(frameTypeBody, v.ChannelId, v.Body)

	case *heartbeatFrame:
		return w.writeRaw(frameTypeHeartbeat, v.ChannelId, nil)

	case *protocolHeader:
		if _, err := w.w.Write([]byte("AMQP\x00\x00\x09\x01")); err != nil {
			return err
		}
		return w.w.Flush()

	default:
		return newError(internalError, "unknown frame type")
	}
}

func (w *writer) writeRaw(typ uint8, channel uint16, payload []byte) error {
	var head [7]byte
	head[0] = typ
	binary.BigEndian.PutUint16(head[1:3], channel)
	binary.BigEndian.PutUint32(head[3:7], uint32(len(payload)))

	if _, err := w.w.Write(head[:]); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := w.w.Write(payload); err != nil {
			return err
		}
	}
	if err := w.w.WriteByte(frameEndOctet); err != nil {
		return err
	}
	return w.w.Flush()
}

// protocolHeader is the one frame-shaped thing that isn't a real AMQP frame:
// the initial 8 literal bytes that kick off the handshake.
type protocolHeader struct{}

func (protocolHeader) channel() uint16 { return 0 }

// byteWriter accumulates an in-memory method/header payload; mirrors
// byteReader so every scalar and composite codec has a read/write pair.
type byteWriter struct {
	buf []byte
}

func newByteWriter() *byteWriter {
	return &byteWriter{buf: make([]byte, 0, 64)}
}

func (b *byteWriter) Bytes() []byte { return b.buf }

func (b *byteWriter) writeUint8(v uint8)   { b.buf = append(b.buf, v) }
func (b *byteWriter) writeInt8(v int8)     { b.writeUint8(uint8(v)) }
func (b *byteWriter) writeBool(v bool) {
	if v {
		b.writeUint8(1)
	} else {
		b.writeUint8(0)
	}
}

func (b *byteWriter) writeUint16(v uint16) {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}

func (b *byteWriter) writeInt16(v int16) { b.writeUint16(uint16(v)) }

func (b *byteWriter) writeUint32(v uint32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}

func (b *byteWriter) writeInt32(v int32) { b.writeUint32(uint32(v)) }

func (b *byteWriter) writeUint64(v uint64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}

func (b *byteWriter) writeInt64(v int64) { b.writeUint64(uint64(v)) }

func (b *byteWriter) writeFloat32(v float32) { b.writeUint32(math.Float32bits(v)) }
func (b *byteWriter) writeFloat64(v float64) { b.writeUint64(math.Float64bits(v)) }

func (b *byteWriter) writeShortstr(s string) error {
	if len(s) > math.MaxUint8 {
		return newError(syntaxError, "short string too long")
	}
	b.writeUint8(uint8(len(s)))
	b.buf = append(b.buf, s...)
	return nil
}

func (b *byteWriter) writeLongstr(s string) {
	b.writeUint32(uint32(len(s)))
	b.buf = append(b.buf, s...)
}

func (b *byteWriter) writeLongbytes(v []byte) {
	b.writeUint32(uint32(len(v)))
	b.buf = append(b.buf, v...)
}

func (b *byteWriter) writeTimestamp(t time.Time) {
	b.writeUint64(uint64(t.Unix()))
}

// writeTable/writeArray reserve a u32 length placeholder, write the body,
// then backpatch the real length.
func (b *byteWriter) writeTable(t Table) error {
	lenPos := len(b.buf)
	b.writeUint32(0)
	start := len(b.buf)

	for k, v := range t {
		if err := b.writeShortstr(k); err != nil {
			return err
		}
		if err := b.writeFieldValue(v); err != nil {
			return err
		}
	}

	binary.BigEndian.PutUint32(b.buf[lenPos:lenPos+4], uint32(len(b.buf)-start))
	return nil
}

func (b *byteWriter) writeArray(values []interface{}) error {
	lenPos := len(b.buf)
	b.writeUint32(0)
	start := len(b.buf)

	for _, v := range values {
		if err := b.writeFieldValue(v); err != nil {
			return err
		}
	}

	binary.BigEndian.PutUint32(b.buf[lenPos:lenPos+4], uint32(len(b.buf)-start))
	return nil
}

func (b *byteWriter) writeFieldValue(v interface{}) error {
	if err := validateFieldValue(v); err != nil {
		return err
	}

	switch val := v.(type) {
	case nil:
		b.writeUint8(typeVoid)
	case bool:
		b.writeUint8(typeBoolean)
		b.writeBool(val)
	case int8:
		b.writeUint8(typeShortShort)
		b.writeInt8(val)
	case uint8:
		b.writeUint8(typeShortShortU)
		b.writeUint8(val)
	case int16:
		b.writeUint8(typeShort)
		b.writeInt16(val)
	case uint16:
		b.writeUint8(typeShortU)
		b.writeUint16(val)
	case int32:
		b.writeUint8(typeLong)
		b.writeInt32(val)
	case uint32:
		b.writeUint8(typeLongU)
		b.writeUint32(val)
	case int64:
		b.writeUint8(typeLongLong)
		b.writeInt64(val)
	case uint64:
		b.writeUint8(typeLongLongU)
		b.writeUint64(val)
	case float32:
		b.writeUint8(typeFloat)
		b.writeFloat32(val)
	case float64:
		b.writeUint8(typeDouble)
		b.writeFloat64(val)
	case Decimal:
		b.writeUint8(typeDecimal)
		b.writeUint8(val.Scale)
		b.writeInt32(val.Value)
	case string:
		b.writeUint8(typeLongString)
		b.writeLongstr(val)
	case []byte:
		b.writeUint8(typeLongString)
		b.writeLongbytes(val)
	case time.Time:
		b.writeUint8(typeTimestamp)
		b.writeTimestamp(val)
	case []interface{}:
		b.writeUint8(typeFieldArray)
		return b.writeArray(val)
	case Table:
		b.writeUint8(typeFieldTable)
		return b.writeTable(val)
	default:
		return newError(syntaxError, "unsupported field-table value type")
	}
	return nil
}
