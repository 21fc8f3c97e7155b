// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
// Source code and contact info at http://github.com/streadway/amqp

package amqp

// message is one AMQP method argument set. Every method in the catalogue
// below (section 3) implements this: classID/methodID identify it on the
// wire, read/write (de)serialise its arguments (the class/method ids
// themselves are already consumed by the caller before read is invoked).
type message interface {
	classID() uint16
	methodID() uint16
	read(r *byteReader) error
	write(w *byteWriter) error
}

// Method ids, section 3/6. These are the standard AMQP 0-9-1 assignments.
const (
	methodConnectionStart   = 10
	methodConnectionStartOk = 11
	methodConnectionTune    = 30
	methodConnectionTuneOk  = 31
	methodConnectionOpen    = 40
	methodConnectionOpenOk  = 41
	methodConnectionClose   = 50
	methodConnectionCloseOk = 51

	methodChannelOpen    = 10
	methodChannelOpenOk  = 11
	methodChannelFlow    = 20
	methodChannelFlowOk  = 21
	methodChannelClose   = 40
	methodChannelCloseOk = 41

	methodExchangeDeclare   = 10
	methodExchangeDeclareOk = 11
	methodExchangeDelete    = 20
	methodExchangeDeleteOk  = 21

	methodQueueDeclare   = 10
	methodQueueDeclareOk = 11
	methodQueueBind      = 20
	methodQueueBindOk    = 21
	methodQueuePurge     = 30
	methodQueuePurgeOk   = 31
	methodQueueDelete    = 40
	methodQueueDeleteOk  = 41
	methodQueueUnbind    = 50
	methodQueueUnbindOk  = 51

	methodBasicQos        = 10
	methodBasicQosOk      = 11
	methodBasicConsume    = 20
	methodBasicConsumeOk  = 21
	methodBasicCancel     = 30
	methodBasicCancelOk   = 31
	methodBasicPublish    = 40
	methodBasicReturn     = 50
	methodBasicDeliver    = 60
	methodBasicGet        = 70
	methodBasicGetOk      = 71
	methodBasicGetEmpty   = 72
	methodBasicAck        = 80
	methodBasicReject     = 90
	methodBasicRecover    = 110
	methodBasicRecoverOk  = 111
	methodBasicNack       = 120

	methodConfirmSelect   = 10
	methodConfirmSelectOk = 11
)

// newMethod looks up the zero-value struct for a (class, method) pair so
// its read method can be invoked; an unrecognised pair is a fatal protocol
// error per section 4.B.
func newMethod(classId, methodId uint16) (message, error) {
	switch classId {
	case classConnection:
		switch methodId {
		case methodConnectionStart:
			return &connectionStart{}, nil
		case methodConnectionStartOk:
			return &connectionStartOk{}, nil
		case methodConnectionTune:
			return &connectionTune{}, nil
		case methodConnectionTuneOk:
			return &connectionTuneOk{}, nil
		case methodConnectionOpen:
			return &connectionOpen{}, nil
		case methodConnectionOpenOk:
			return &connectionOpenOk{}, nil
		case methodConnectionClose:
			return &connectionClose{}, nil
		case methodConnectionCloseOk:
			return &connectionCloseOk{}, nil
		}
	case classChannel:
		switch methodId {
		case methodChannelOpen:
			return &channelOpen{}, nil
		case methodChannelOpenOk:
			return &channelOpenOk{}, nil
		case methodChannelFlow:
			return &channelFlow{}, nil
		case methodChannelFlowOk:
			return &channelFlowOk{}, nil
		case methodChannelClose:
			return &channelClose{}, nil
		case methodChannelCloseOk:
			return &channelCloseOk{}, nil
		}
	case classExchange:
		switch methodId {
		case methodExchangeDeclare:
			return &exchangeDeclare{}, nil
		case methodExchangeDeclareOk:
			return &exchangeDeclareOk{}, nil
		case methodExchangeDelete:
			return &exchangeDelete{}, nil
		case methodExchangeDeleteOk:
			return &exchangeDeleteOk{}, nil
		}
	case classQueue:
		switch methodId {
		case methodQueueDeclare:
			return &queueDeclare{}, nil
		case methodQueueDeclareOk:
			return &queueDeclareOk{}, nil
		case methodQueueBind:
			return &queueBind{}, nil
		case methodQueueBindOk:
			return &queueBindOk{}, nil
		case methodQueueUnbind:
			return &queueUnbind{}, nil
		case methodQueueUnbindOk:
			return &queueUnbindOk{}, nil
		case methodQueuePurge:
			return &queuePurge{}, nil
		case methodQueuePurgeOk:
			return &queuePurgeOk{}, nil
		case methodQueueDelete:
			return &queueDelete{}, nil
		case methodQueueDeleteOk:
			return &queueDeleteOk{}, nil
		}
	case classBasic:
		switch methodId {
		case methodBasicQos:
			return &basicQos{}, nil
		case methodBasicQosOk:
			return &basicQosOk{}, nil
		case methodBasicConsume:
			return &basicConsume{}, nil
		case methodBasicConsumeOk:
			return &basicConsumeOk{}, nil
		case methodBasicCancel:
			return &basicCancel{}, nil
		case methodBasicCancelOk:
			return &basicCancelOk{}, nil
		case methodBasicPublish:
			return &basicPublish{}, nil
		case methodBasicReturn:
			return &basicReturn{}, nil
		case methodBasicDeliver:
			return &basicDeliver{}, nil
		case methodBasicGet:
			return &basicGet{}, nil
		case methodBasicGetOk:
			return &basicGetOk{}, nil
		case methodBasicGetEmpty:
			return &basicGetEmpty{}, nil
		case methodBasicAck:
			return &basicAck{}, nil
		case methodBasicReject:
			return &basicReject{}, nil
		case methodBasicRecover:
			return &basicRecover{}, nil
		case methodBasicRecoverOk:
			return &basicRecoverOk{}, nil
		case methodBasicNack:
			return &basicNack{}, nil
		}
	case classConfirm:
		switch methodId {
		case methodConfirmSelect:
			return &confirmSelect{}, nil
		case methodConfirmSelectOk:
			return &confirmSelectOk{}, nil
		}
	}
	return nil, newError(commandInvalid, "invalid class/method")
}

// -- connection --------------------------------------------------------

type connectionStart struct {
	VersionMajor     uint8
	VersionMinor     uint8
	ServerProperties Table
	Mechanisms       string
	Locales          string
}

func (connectionStart) classID() uint16  { return classConnection }
func (connectionStart) methodID() uint16 { return methodConnectionStart }

func (m *connectionStart) write(w *byteWriter) error {
	w.writeUint8(m.VersionMajor)
	w.writeUint8(m.VersionMinor)
	if err := w.writeTable(m.ServerProperties); err != nil {
		return err
	}
	w.writeLongstr(m.Mechanisms)
	w.writeLongstr(m.Locales)
	return nil
}

func (m *connectionStart) read(r *byteReader) (err error) {
	if m.VersionMajor, err = r.readUint8(); err != nil {
		return
	}
	if m.VersionMinor, err = r.readUint8(); err != nil {
		return
	}
	if m.ServerProperties, err = r.readTable(); err != nil {
		return
	}
	if m.Mechanisms, err = r.readLongstr(); err != nil {
		return
	}
	m.Locales, err = r.readLongstr()
	return
}

type connectionStartOk struct {
	ClientProperties Table
	Mechanism        string
	Response         string
	Locale           string
}

func (connectionStartOk) classID() uint16  { return classConnection }
func (connectionStartOk) methodID() uint16 { return methodConnectionStartOk }

func (m *connectionStartOk) write(w *byteWriter) error {
	if err := w.writeTable(m.ClientProperties); err != nil {
		return err
	}
	if err := w.writeShortstr(m.Mechanism); err != nil {
		return err
	}
	w.writeLongstr(m.Response)
	return w.writeShortstr(m.Locale)
}

func (m *connectionStartOk) read(r *byteReader) (err error) {
	if m.ClientProperties, err = r.readTable(); err != nil {
		return
	}
	if m.Mechanism, err = r.readShortstr(); err != nil {
		return
	}
	if m.Response, err = r.readLongstr(); err != nil {
		return
	}
	m.Locale, err = r.readShortstr()
	return
}

type connectionTune struct {
	ChannelMax uint16
	FrameMax   uint32
	Heartbeat  uint16
}

func (connectionTune) classID() uint16  { return classConnection }
func (connectionTune) methodID() uint16 { return methodConnectionTune }

func (m *connectionTune) write(w *byteWriter) error {
	w.writeUint16(m.ChannelMax)
	w.writeUint32(m.FrameMax)
	w.writeUint16(m.Heartbeat)
	return nil
}

func (m *connectionTune) read(r *byteReader) (err error) {
	if m.ChannelMax, err = r.readUint16(); err != nil {
		return
	}
	if m.FrameMax, err = r.readUint32(); err != nil {
		return
	}
	m.Heartbeat, err = r.readUint16()
	return
}

type connectionTuneOk struct {
	ChannelMax uint16
	FrameMax   uint32
	Heartbeat  uint16
}

func (connectionTuneOk) classID() uint16  { return classConnection }
func (connectionTuneOk) methodID() uint16 { return methodConnectionTuneOk }

func (m *connectionTuneOk) write(w *byteWriter) error {
	w.writeUint16(m.ChannelMax)
	w.writeUint32(m.FrameMax)
	w.writeUint16(m.Heartbeat)
	return nil
}

func (m *connectionTuneOk) read(r *byteReader) (err error) {
	if m.ChannelMax, err = r.readUint16(); err != nil {
		return
	}
	if m.FrameMax, err = r.readUint32(); err != nil {
		return
	}
	m.Heartbeat, err = r.readUint16()
	return
}

type connectionOpen struct {
	VirtualHost string
}

func (connectionOpen) classID() uint16  { return classConnection }
func (connectionOpen) methodID() uint16 { return methodConnectionOpen }

func (m *connectionOpen) write(w *byteWriter) error {
	if err := w.writeShortstr(m.VirtualHost); err != nil {
		return err
	}
	if err := w.writeShortstr(""); err != nil { // deprecated capabilities
		return err
	}
	w.writeBool(false) // deprecated insist
	return nil
}

func (m *connectionOpen) read(r *byteReader) (err error) {
	if m.VirtualHost, err = r.readShortstr(); err != nil {
		return
	}
	if _, err = r.readShortstr(); err != nil { // deprecated capabilities
		return
	}
	_, err = r.readBool() // deprecated insist
	return
}

type connectionOpenOk struct{}

func (connectionOpenOk) classID() uint16  { return classConnection }
func (connectionOpenOk) methodID() uint16 { return methodConnectionOpenOk }

func (m *connectionOpenOk) write(w *byteWriter) error {
	return w.writeShortstr("") // deprecated known-hosts
}

func (m *connectionOpenOk) read(r *byteReader) (err error) {
	_, err = r.readShortstr()
	return
}

type connectionClose struct {
	ReplyCode uint16
	ReplyText string
	ClassId   uint16
	MethodId  uint16
}

func (connectionClose) classID() uint16  { return classConnection }
func (connectionClose) methodID() uint16 { return methodConnectionClose }

func (m *connectionClose) write(w *byteWriter) error {
	w.writeUint16(m.ReplyCode)
	if err := w.writeShortstr(m.ReplyText); err != nil {
		return err
	}
	w.writeUint16(m.ClassId)
	w.writeUint16(m.MethodId)
	return nil
}

func (m *connectionClose) read(r *byteReader) (err error) {
	if m.ReplyCode, err = r.readUint16(); err != nil {
		return
	}
	if m.ReplyText, err = r.readShortstr(); err != nil {
		return
	}
	if m.ClassId, err = r.readUint16(); err != nil {
		return
	}
	m.MethodId, err = r.readUint16()
	return
}

type connectionCloseOk struct{}

func (connectionCloseOk) classID() uint16         { return classConnection }
func (connectionCloseOk) methodID() uint16        { return methodConnectionCloseOk }
func (*connectionCloseOk) write(*byteWriter) error { return nil }
func (*connectionCloseOk) read(*byteReader) error  { return nil }

// -- channel -------------------------------------------------------------

type channelOpen struct{}

func (channelOpen) classID() uint16  { return classChannel }
func (channelOpen) methodID() uint16 { return methodChannelOpen }

func (m *channelOpen) write(w *byteWriter) error { return w.writeShortstr("") }
func (m *channelOpen) read(r *byteReader) error  { _, err := r.readShortstr(); return err }

type channelOpenOk struct{}

func (channelOpenOk) classID() uint16  { return classChannel }
func (channelOpenOk) methodID() uint16 { return methodChannelOpenOk }

func (m *channelOpenOk) write(w *byteWriter) error { w.writeLongstr(""); return nil }
func (m *channelOpenOk) read(r *byteReader) error  { _, err := r.readLongstr(); return err }

type channelFlow struct {
	Active bool
}

func (channelFlow) classID() uint16  { return classChannel }
func (channelFlow) methodID() uint16 { return methodChannelFlow }

func (m *channelFlow) write(w *byteWriter) error { w.writeBool(m.Active); return nil }
func (m *channelFlow) read(r *byteReader) (err error) {
	m.Active, err = r.readBool()
	return
}

type channelFlowOk struct {
	Active bool
}

func (channelFlowOk) classID() uint16  { return classChannel }
func (channelFlowOk) methodID() uint16 { return methodChannelFlowOk }

func (m *channelFlowOk) write(w *byteWriter) error { w.writeBool(m.Active); return nil }
func (m *channelFlowOk) read(r *byteReader) (err error) {
	m.Active, err = r.readBool()
	return
}

type channelClose struct {
	ReplyCode uint16
	ReplyText string
	ClassId   uint16
	MethodId  uint16
}

func (channelClose) classID() uint16  { return classChannel }
func (channelClose) methodID() uint16 { return methodChannelClose }

func (m *channelClose) write(w *byteWriter) error {
	w.writeUint16(m.ReplyCode)
	if err := w.writeShortstr(m.ReplyText); err != nil {
		return err
	}
	w.writeUint16(m.ClassId)
	w.writeUint16(m.MethodId)
	return nil
}

func (m *channelClose) read(r *byteReader) (err error) {
	if m.ReplyCode, err = r.readUint16(); err != nil {
		return
	}
	if m.ReplyText, err = r.readShortstr(); err != nil {
		return
	}
	if m.ClassId, err = r.readUint16(); err != nil {
		return
	}
	m.MethodId, err = r.readUint16()
	return
}

type channelCloseOk struct{}

func (channelCloseOk) classID() uint16         { return classChannel }
func (channelCloseOk) methodID() uint16        { return methodChannelCloseOk }
func (*channelCloseOk) write(*byteWriter) error { return nil }
func (*channelCloseOk) read(*byteReader) error  { return nil }

// -- exchange --------------------------------------------------------------

type exchangeDeclare struct {
	Exchange   string
	Type       string
	Flags      ExchangeFlags
	Arguments  Table
}

func (exchangeDeclare) classID() uint16  { return classExchange }
func (exchangeDeclare) methodID() uint16 { return methodExchangeDeclare }

func (m *exchangeDeclare) write(w *byteWriter) error {
	w.writeUint16(0) // deprecated ticket
	if err := w.writeShortstr(m.Exchange); err != nil {
		return err
	}
	if err := w.writeShortstr(m.Type); err != nil {
		return err
	}
	w.writeUint8(uint8(m.Flags))
	return w.writeTable(m.Arguments)
}

func (m *exchangeDeclare) read(r *byteReader) (err error) {
	if _, err = r.readUint16(); err != nil {
		return
	}
	if m.Exchange, err = r.readShortstr(); err != nil {
		return
	}
	if m.Type, err = r.readShortstr(); err != nil {
		return
	}
	flags, err := r.readUint8()
	if err != nil {
		return err
	}
	m.Flags = ExchangeFlags(flags)
	m.Arguments, err = r.readTable()
	return
}

type exchangeDeclareOk struct{}

func (exchangeDeclareOk) classID() uint16         { return classExchange }
func (exchangeDeclareOk) methodID() uint16        { return methodExchangeDeclareOk }
func (*exchangeDeclareOk) write(*byteWriter) error { return nil }
func (*exchangeDeclareOk) read(*byteReader) error  { return nil }

type exchangeDelete struct {
	Exchange string
	Flags    DeleteExchangeFlags
}

func (exchangeDelete) classID() uint16  { return classExchange }
func (exchangeDelete) methodID() uint16 { return methodExchangeDelete }

func (m *exchangeDelete) write(w *byteWriter) error {
	w.writeUint16(0)
	if err := w.writeShortstr(m.Exchange); err != nil {
		return err
	}
	w.writeUint8(uint8(m.Flags))
	return nil
}

func (m *exchangeDelete) read(r *byteReader) (err error) {
	if _, err = r.readUint16(); err != nil {
		return
	}
	if m.Exchange, err = r.readShortstr(); err != nil {
		return
	}
	flags, err := r.readUint8()
	m.Flags = DeleteExchangeFlags(flags)
	return err
}

type exchangeDeleteOk struct{}

func (exchangeDeleteOk) classID() uint16         { return classExchange }
func (exchangeDeleteOk) methodID() uint16        { return methodExchangeDeleteOk }
func (*exchangeDeleteOk) write(*byteWriter) error { return nil }
func (*exchangeDeleteOk) read(*byteReader) error  { return nil }

// -- queue -------------------------------------------------------------

type queueDeclare struct {
	Queue     string
	Flags     QueueFlags
	Arguments Table
}

func (queueDeclare) classID() uint16  { return classQueue }
func (queueDeclare) methodID() uint16 { return methodQueueDeclare }

func (m *queueDeclare) write(w *byteWriter) error {
	w.writeUint16(0)
	if err := w.writeShortstr(m.Queue); err != nil {
		return err
	}
	w.writeUint8(uint8(m.Flags))
	return w.writeTable(m.Arguments)
}

func (m *queueDeclare) read(r *byteReader) (err error) {
	if _, err = r.readUint16(); err != nil {
		return
	}
	if m.Queue, err = r.readShortstr(); err != nil {
		return
	}
	flags, err := r.readUint8()
	if err != nil {
		return err
	}
	m.Flags = QueueFlags(flags)
	m.Arguments, err = r.readTable()
	return
}

type queueDeclareOk struct {
	Queue         string
	MessageCount  uint32
	ConsumerCount uint32
}

func (queueDeclareOk) classID() uint16  { return classQueue }
func (queueDeclareOk) methodID() uint16 { return methodQueueDeclareOk }

func (m *queueDeclareOk) write(w *byteWriter) error {
	if err := w.writeShortstr(m.Queue); err != nil {
		return err
	}
	w.writeUint32(m.MessageCount)
	w.writeUint32(m.ConsumerCount)
	return nil
}

func (m *queueDeclareOk) read(r *byteReader) (err error) {
	if m.Queue, err = r.readShortstr(); err != nil {
		return
	}
	if m.MessageCount, err = r.readUint32(); err != nil {
		return
	}
	m.ConsumerCount, err = r.readUint32()
	return
}

type queueBind struct {
	Queue      string
	Exchange   string
	RoutingKey string
	NoWait     bool
	Arguments  Table
}

func (queueBind) classID() uint16  { return classQueue }
func (queueBind) methodID() uint16 { return methodQueueBind }

func (m *queueBind) write(w *byteWriter) error {
	w.writeUint16(0)
	if err := w.writeShortstr(m.Queue); err != nil {
		return err
	}
	if err := w.writeShortstr(m.Exchange); err != nil {
		return err
	}
	if err := w.writeShortstr(m.RoutingKey); err != nil {
		return err
	}
	w.writeBool(m.NoWait)
	return w.writeTable(m.Arguments)
}

func (m *queueBind) read(r *byteReader) (err error) {
	if _, err = r.readUint16(); err != nil {
		return
	}
	if m.Queue, err = r.readShortstr(); err != nil {
		return
	}
	if m.Exchange, err = r.readShortstr(); err != nil {
		return
	}
	if m.RoutingKey, err = r.readShortstr(); err != nil {
		return
	}
	if m.NoWait, err = r.readBool(); err != nil {
		return
	}
	m.Arguments, err = r.readTable()
	return
}

type queueBindOk struct{}

func (queueBindOk) classID() uint16         { return classQueue }
func (queueBindOk) methodID() uint16        { return methodQueueBindOk }
func (*queueBindOk) write(*byteWriter) error { return nil }
func (*queueBindOk) read(*byteReader) error  { return nil }

type queueUnbind struct {
	Queue      string
	Exchange   string
	RoutingKey string
	Arguments  Table
}

func (queueUnbind) classID() uint16  { return classQueue }
func (queueUnbind) methodID() uint16 { return methodQueueUnbind }

func (m *queueUnbind) write(w *byteWriter) error {
	w.writeUint16(0)
	if err := w.writeShortstr(m.Queue); err != nil {
		return err
	}
	if err := w.writeShortstr(m.Exchange); err != nil {
		return err
	}
	if err := w.writeShortstr(m.RoutingKey); err != nil {
		return err
	}
	return w.writeTable(m.Arguments)
}

func (m *queueUnbind) read(r *byteReader) (err error) {
	if _, err = r.readUint16(); err != nil {
		return
	}
	if m.Queue, err = r.readShortstr(); err != nil {
		return
	}
	if m.Exchange, err = r.readShortstr(); err != nil {
		return
	}
	if m.RoutingKey, err = r.readShortstr(); err != nil {
		return
	}
	m.Arguments, err = r.readTable()
	return
}

type queueUnbindOk struct{}

func (queueUnbindOk) classID() uint16         { return classQueue }
func (queueUnbindOk) methodID() uint16        { return methodQueueUnbindOk }
func (*queueUnbindOk) write(*byteWriter) error { return nil }
func (*queueUnbindOk) read(*byteReader) error  { return nil }

type queuePurge struct {
	Queue  string
	NoWait bool
}

func (queuePurge) classID() uint16  { return classQueue }
func (queuePurge) methodID() uint16 { return methodQueuePurge }

func (m *queuePurge) write(w *byteWriter) error {
	w.writeUint16(0)
	if err := w.writeShortstr(m.Queue); err != nil {
		return err
	}
	w.writeBool(m.NoWait)
	return nil
}

func (m *queuePurge) read(r *byteReader) (err error) {
	if _, err = r.readUint16(); err != nil {
		return
	}
	if m.Queue, err = r.readShortstr(); err != nil {
		return
	}
	m.NoWait, err = r.readBool()
	return
}

type queuePurgeOk struct {
	MessageCount uint32
}

func (queuePurgeOk) classID() uint16  { return classQueue }
func (queuePurgeOk) methodID() uint16 { return methodQueuePurgeOk }

func (m *queuePurgeOk) write(w *byteWriter) error { w.writeUint32(m.MessageCount); return nil }
func (m *queuePurgeOk) read(r *byteReader) (err error) {
	m.MessageCount, err = r.readUint32()
	return
}

type queueDelete struct {
	Queue string
	Flags DeleteQueueFlags
}

func (queueDelete) classID() uint16  { return classQueue }
func (queueDelete) methodID() uint16 { return methodQueueDelete }

func (m *queueDelete) write(w *byteWriter) error {
	w.writeUint16(0)
	if err := w.writeShortstr(m.Queue); err != nil {
		return err
	}
	w.writeUint8(uint8(m.Flags))
	return nil
}

func (m *queueDelete) read(r *byteReader) (err error) {
	if _, err = r.readUint16(); err != nil {
		return
	}
	if m.Queue, err = r.readShortstr(); err != nil {
		return
	}
	flags, err := r.readUint8()
	m.Flags = DeleteQueueFlags(flags)
	return err
}

type queueDeleteOk struct {
	MessageCount uint32
}

func (queueDeleteOk) classID() uint16  { return classQueue }
func (queueDeleteOk) methodID() uint16 { return methodQueueDeleteOk }

func (m *queueDeleteOk) write(w *byteWriter) error { w.writeUint32(m.MessageCount); return nil }
func (m *queueDeleteOk) read(r *byteReader) (err error) {
	m.MessageCount, err = r.readUint32()
	return
}

// -- basic ---------------------------------------------------------------

type basicQos struct {
	PrefetchSize  uint32
	PrefetchCount uint16
	Global        bool
}

func (basicQos) classID() uint16  { return classBasic }
func (basicQos) methodID() uint16 { return methodBasicQos }

func (m *basicQos) write(w *byteWriter) error {
	w.writeUint32(m.PrefetchSize)
	w.writeUint16(m.PrefetchCount)
	w.writeBool(m.Global)
	return nil
}

func (m *basicQos) read(r *byteReader) (err error) {
	if m.PrefetchSize, err = r.readUint32(); err != nil {
		return
	}
	if m.PrefetchCount, err = r.readUint16(); err != nil {
		return
	}
	m.Global, err = r.readBool()
	return
}

type basicQosOk struct{}

func (basicQosOk) classID() uint16         { return classBasic }
func (basicQosOk) methodID() uint16        { return methodBasicQosOk }
func (*basicQosOk) write(*byteWriter) error { return nil }
func (*basicQosOk) read(*byteReader) error  { return nil }

type basicConsume struct {
	Queue       string
	ConsumerTag string
	Flags       ConsumeFlags
	Arguments   Table
}

func (basicConsume) classID() uint16  { return classBasic }
func (basicConsume) methodID() uint16 { return methodBasicConsume }

func (m *basicConsume) write(w *byteWriter) error {
	w.writeUint16(0)
	if err := w.writeShortstr(m.Queue); err != nil {
		return err
	}
	if err := w.writeShortstr(m.ConsumerTag); err != nil {
		return err
	}
	w.writeUint8(uint8(m.Flags))
	return w.writeTable(m.Arguments)
}

func (m *basicConsume) read(r *byteReader) (err error) {
	if _, err = r.readUint16(); err != nil {
		return
	}
	if m.Queue, err = r.readShortstr(); err != nil {
		return
	}
	if m.ConsumerTag, err = r.readShortstr(); err != nil {
		return
	}
	flags, err := r.readUint8()
	if err != nil {
		return err
	}
	m.Flags = ConsumeFlags(flags)
	m.Arguments, err = r.readTable()
	return
}

type basicConsumeOk struct {
	ConsumerTag string
}

func (basicConsumeOk) classID() uint16  { return classBasic }
func (basicConsumeOk) methodID() uint16 { return methodBasicConsumeOk }

func (m *basicConsumeOk) write(w *byteWriter) error { return w.writeShortstr(m.ConsumerTag) }
func (m *basicConsumeOk) read(r *byteReader) (err error) {
	m.ConsumerTag, err = r.readShortstr()
	return
}

type basicCancel struct {
	ConsumerTag string
	NoWait      bool
}

func (basicCancel) classID() uint16  { return classBasic }
func (basicCancel) methodID() uint16 { return methodBasicCancel }

func (m *basicCancel) write(w *byteWriter) error {
	if err := w.writeShortstr(m.ConsumerTag); err != nil {
		return err
	}
	w.writeBool(m.NoWait)
	return nil
}

func (m *basicCancel) read(r *byteReader) (err error) {
	if m.ConsumerTag, err = r.readShortstr(); err != nil {
		return
	}
	m.NoWait, err = r.readBool()
	return
}

type basicCancelOk struct {
	ConsumerTag string
}

func (basicCancelOk) classID() uint16  { return classBasic }
func (basicCancelOk) methodID() uint16 { return methodBasicCancelOk }

func (m *basicCancelOk) write(w *byteWriter) error { return w.writeShortstr(m.ConsumerTag) }
func (m *basicCancelOk) read(r *byteReader) (err error) {
	m.ConsumerTag, err = r.readShortstr()
	return
}

type basicPublish struct {
	Exchange   string
	RoutingKey string
	Flags      PublishFlags
}

func (basicPublish) classID() uint16  { return classBasic }
func (basicPublish) methodID() uint16 { return methodBasicPublish }

func (m *basicPublish) write(w *byteWriter) error {
	w.writeUint16(0)
	if err := w.writeShortstr(m.Exchange); err != nil {
		return err
	}
	if err := w.writeShortstr(m.RoutingKey); err != nil {
		return err
	}
	w.writeUint8(uint8(m.Flags))
	return nil
}

func (m *basicPublish) read(r *byteReader) (err error) {
	if _, err = r.readUint16(); err != nil {
		return
	}
	if m.Exchange, err = r.readShortstr(); err != nil {
		return
	}
	if m.RoutingKey, err = r.readShortstr(); err != nil {
		return
	}
	flags, err := r.readUint8()
	m.Flags = PublishFlags(flags)
	return err
}

type basicReturn struct {
	ReplyCode  uint16
	ReplyText  string
	Exchange   string
	RoutingKey string
}

func (basicReturn) classID() uint16  { return classBasic }
func (basicReturn) methodID() uint16 { return methodBasicReturn }

func (m *basicReturn) write(w *byteWriter) error {
	w.writeUint16(m.ReplyCode)
	if err := w.writeShortstr(m.ReplyText); err != nil {
		return err
	}
	if err := w.writeShortstr(m.Exchange); err != nil {
		return err
	}
	return w.writeShortstr(m.RoutingKey)
}

func (m *basicReturn) read(r *byteReader) (err error) {
	if m.ReplyCode, err = r.readUint16(); err != nil {
		return
	}
	if m.ReplyText, err = r.readShortstr(); err != nil {
		return
	}
	if m.Exchange, err = r.readShortstr(); err != nil {
		return
	}
	m.RoutingKey, err = r.readShortstr()
	return
}

type basicDeliver struct {
	ConsumerTag string
	DeliveryTag uint64
	Redelivered bool
	Exchange    string
	RoutingKey  string
}

func (basicDeliver) classID() uint16  { return classBasic }
func (basicDeliver) methodID() uint16 { return methodBasicDeliver }

func (m *basicDeliver) write(w *byteWriter) error {
	if err := w.writeShortstr(m.ConsumerTag); err != nil {
		return err
	}
	w.writeUint64(m.DeliveryTag)
	w.writeBool(m.Redelivered)
	if err := w.writeShortstr(m.Exchange); err != nil {
		return err
	}
	return w.writeShortstr(m.RoutingKey)
}

func (m *basicDeliver) read(r *byteReader) (err error) {
	if m.ConsumerTag, err = r.readShortstr(); err != nil {
		return
	}
	if m.DeliveryTag, err = r.readUint64(); err != nil {
		return
	}
	if m.Redelivered, err = r.readBool(); err != nil {
		return
	}
	if m.Exchange, err = r.readShortstr(); err != nil {
		return
	}
	m.RoutingKey, err = r.readShortstr()
	return
}

type basicGet struct {
	Queue string
	NoAck bool
}

func (basicGet) classID() uint16  { return classBasic }
func (basicGet) methodID() uint16 { return methodBasicGet }

func (m *basicGet) write(w *byteWriter) error {
	w.writeUint16(0)
	if err := w.writeShortstr(m.Queue); err != nil {
		return err
	}
	w.writeBool(m.NoAck)
	return nil
}

func (m *basicGet) read(r *byteReader) (err error) {
	if _, err = r.readUint16(); err != nil {
		return
	}
	if m.Queue, err = r.readShortstr(); err != nil {
		return
	}
	m.NoAck, err = r.readBool()
	return
}

type basicGetOk struct {
	DeliveryTag  uint64
	Redelivered  bool
	Exchange     string
	RoutingKey   string
	MessageCount uint32
}

func (basicGetOk) classID() uint16  { return classBasic }
func (basicGetOk) methodID() uint16 { return methodBasicGetOk }

func (m *basicGetOk) write(w *byteWriter) error {
	w.writeUint64(m.DeliveryTag)
	w.writeBool(m.Redelivered)
	if err := w.writeShortstr(m.Exchange); err != nil {
		return err
	}
	if err := w.writeShortstr(m.RoutingKey); err != nil {
		return err
	}
	w.writeUint32(m.MessageCount)
	return nil
}

func (m *basicGetOk) read(r *byteReader) (err error) {
	if m.DeliveryTag, err = r.readUint64(); err != nil {
		return
	}
	if m.Redelivered, err = r.readBool(); err != nil {
		return
	}
	if m.Exchange, err = r.readShortstr(); err != nil {
		return
	}
	if m.RoutingKey, err = r.readShortstr(); err != nil {
		return
	}
	m.MessageCount, err = r.readUint32()
	return
}

type basicGetEmpty struct{}

func (basicGetEmpty) classID() uint16         { return classBasic }
func (basicGetEmpty) methodID() uint16        { return methodBasicGetEmpty }
func (m *basicGetEmpty) write(w *byteWriter) error { return w.writeShortstr("") }
func (m *basicGetEmpty) read(r *byteReader) error  { _, err := r.readShortstr(); return err }

type basicAck struct {
	DeliveryTag uint64
	Multiple    bool
}

func (basicAck) classID() uint16  { return classBasic }
func (basicAck) methodID() uint16 { return methodBasicAck }

func (m *basicAck) write(w *byteWriter) error {
	w.writeUint64(m.DeliveryTag)
	w.writeBool(m.Multiple)
	return nil
}

func (m *basicAck) read(r *byteReader) (err error) {
	if m.DeliveryTag, err = r.readUint64(); err != nil {
		return
	}
	m.Multiple, err = r.readBool()
	return
}

type basicReject struct {
	DeliveryTag uint64
	Requeue     bool
}

func (basicReject) classID() uint16  { return classBasic }
func (basicReject) methodID() uint16 { return methodBasicReject }

func (m *basicReject) write(w *byteWriter) error {
	w.writeUint64(m.DeliveryTag)
	w.writeBool(m.Requeue)
	return nil
}

func (m *basicReject) read(r *byteReader) (err error) {
	if m.DeliveryTag, err = r.readUint64(); err != nil {
		return
	}
	m.Requeue, err = r.readBool()
	return
}

type basicRecover struct {
	Requeue bool
}

func (basicRecover) classID() uint16  { return classBasic }
func (basicRecover) methodID() uint16 { return methodBasicRecover }

func (m *basicRecover) write(w *byteWriter) error { w.writeBool(m.Requeue); return nil }
func (m *basicRecover) read(r *byteReader) (err error) {
	m.Requeue, err = r.readBool()
	return
}

type basicRecoverOk struct{}

func (basicRecoverOk) classID() uint16         { return classBasic }
func (basicRecoverOk) methodID() uint16        { return methodBasicRecoverOk }
func (*basicRecoverOk) write(*byteWriter) error { return nil }
func (*basicRecoverOk) read(*byteReader) error  { return nil }

type basicNack struct {
	DeliveryTag uint64
	Flags       NackFlags
}

func (basicNack) classID() uint16  { return classBasic }
func (basicNack) methodID() uint16 { return methodBasicNack }

func (m *basicNack) write(w *byteWriter) error {
	w.writeUint64(m.DeliveryTag)
	w.writeUint8(uint8(m.Flags))
	return nil
}

func (m *basicNack) read(r *byteReader) (err error) {
	if m.DeliveryTag, err = r.readUint64(); err != nil {
		return
	}
	flags, err := r.readUint8()
	m.Flags = NackFlags(flags)
	return err
}

// -- confirm ---------------------------------------------------------------

type confirmSelect struct {
	NoWait bool
}

func (confirmSelect) classID() uint16  { return classConfirm }
func (confirmSelect) methodID() uint16 { return methodConfirmSelect }

func (m *confirmSelect) write(w *byteWriter) error { w.writeBool(m.NoWait); return nil }
func (m *confirmSelect) read(r *byteReader) (err error) {
	m.NoWait, err = r.readBool()
	return
}

type confirmSelectOk struct{}

func (confirmSelectOk) classID() uint16         { return classConfirm }
func (confirmSelectOk) methodID() uint16        { return methodConfirmSelectOk }
func (*confirmSelectOk) write(*byteWriter) error { return nil }
func (*confirmSelectOk) read(*byteReader) error  { return nil }
