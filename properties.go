// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
// Source code and contact info at http://github.com/streadway/amqp

package amqp

// Content-header property presence bits, high to low: bit 15 is
// content-type, bit 2 is cluster-id. Bits 0 and 1 are reserved for a
// continuation flag this protocol revision never sets. This is not a
// length-prefixed record -- a cleared bit means the field is entirely
// absent from the wire, a set bit with an empty string still means present.
const (
	flagContentType     = 1 << 15
	flagContentEncoding = 1 << 14
	flagHeaders         = 1 << 13
	flagDeliveryMode    = 1 << 12
	flagPriority        = 1 << 11
	flagCorrelationId   = 1 << 10
	flagReplyTo         = 1 << 9
	flagExpiration      = 1 << 8
	flagMessageId       = 1 << 7
	flagTimestamp       = 1 << 6
	flagType            = 1 << 5
	flagUserId          = 1 << 4
	flagAppId           = 1 << 3
	flagClusterId       = 1 << 2
)

// readProperties decodes the property mask and then exactly the fields
// whose bit is set, in the same bit-15-down-to-bit-2 order they were
// written.
func readProperties(r *byteReader) (BasicProperties, error) {
	var p BasicProperties

	mask, err := r.readUint16()
	if err != nil {
		return p, err
	}

	var rerr error
	read := func(fn func() error) {
		if rerr == nil {
			rerr = fn()
		}
	}

	if mask&flagContentType != 0 {
		read(func() (err error) { p.ContentType, err = r.readShortstr(); return })
	}
	if mask&flagContentEncoding != 0 {
		read(func() (err error) { p.ContentEncoding, err = r.readShortstr(); return })
	}
	if mask&flagHeaders != 0 {
		read(func() (err error) { p.Headers, err = r.readTable(); return })
	}
	if mask&flagDeliveryMode != 0 {
		read(func() (err error) { p.DeliveryMode, err = r.readUint8(); return })
	}
	if mask&flagPriority != 0 {
		read(func() (err error) { p.Priority, err = r.readUint8(); return })
	}
	if mask&flagCorrelationId != 0 {
		read(func() (err error) { p.CorrelationId, err = r.readShortstr(); return })
	}
	if mask&flagReplyTo != 0 {
		read(func() (err error) { p.ReplyTo, err = r.readShortstr(); return })
	}
	if mask&flagExpiration != 0 {
		read(func() (err error) { p.Expiration, err = r.readShortstr(); return })
	}
	if mask&flagMessageId != 0 {
		read(func() (err error) { p.MessageId, err = r.readShortstr(); return })
	}
	if mask&flagTimestamp != 0 {
		read(func() (err error) { p.Timestamp, err = r.readTimestamp(); return })
	}
	if mask&flagType != 0 {
		read(func() (err error) { p.Type, err = r.readShortstr(); return })
	}
	if mask&flagUserId != 0 {
		read(func() (err error) { p.UserId, err = r.readShortstr(); return })
	}
	if mask&flagAppId != 0 {
		read(func() (err error) { p.AppId, err = r.readShortstr(); return })
	}
	if mask&flagClusterId != 0 {
		read(func() (err error) { p.ClusterId, err = r.readShortstr(); return })
	}

	return p, rerr
}

// writeProperties encodes the presence mask followed by each present
// field, high bit to low. A field is "present" precisely when its
// corresponding flag below is part of presenceMask(p); see presenceMask.
func writeProperties(w *byteWriter, p BasicProperties) error {
	mask := presenceMask(p)
	w.writeUint16(mask)

	var werr error
	write := func(fn func() error) {
		if werr == nil {
			werr = fn()
		}
	}

	if mask&flagContentType != 0 {
		write(func() error { return w.writeShortstr(p.ContentType) })
	}
	if mask&flagContentEncoding != 0 {
		write(func() error { return w.writeShortstr(p.ContentEncoding) })
	}
	if mask&flagHeaders != 0 {
		write(func() error { return w.writeTable(p.Headers) })
	}
	if mask&flagDeliveryMode != 0 {
		write(func() error { w.writeUint8(p.DeliveryMode); return nil })
	}
	if mask&flagPriority != 0 {
		write(func() error { w.writeUint8(p.Priority); return nil })
	}
	if mask&flagCorrelationId != 0 {
		write(func() error { return w.writeShortstr(p.CorrelationId) })
	}
	if mask&flagReplyTo != 0 {
		write(func() error { return w.writeShortstr(p.ReplyTo) })
	}
	if mask&flagExpiration != 0 {
		write(func() error { return w.writeShortstr(p.Expiration) })
	}
	if mask&flagMessageId != 0 {
		write(func() error { return w.writeShortstr(p.MessageId) })
	}
	if mask&flagTimestamp != 0 {
		write(func() error { w.writeTimestamp(p.Timestamp); return nil })
	}
	if mask&flagType != 0 {
		write(func() error { return w.writeShortstr(p.Type) })
	}
	if mask&flagUserId != 0 {
		write(func() error { return w.writeShortstr(p.UserId) })
	}
	if mask&flagAppId != 0 {
		write(func() error { return w.writeShortstr(p.AppId) })
	}
	if mask&flagClusterId != 0 {
		write(func() error { return w.writeShortstr(p.ClusterId) })
	}

	return werr
}

// presenceMask derives which bits to set from which fields were actually
// populated. Go gives us no "was this struct field assigned" bit for free,
// so presence is approximated the same way streadway/amqp's publishing
// path does: non-zero-value fields are considered present. Headers and
// Timestamp use their natural zero values (nil map, zero time) as "absent".
func presenceMask(p BasicProperties) (mask uint16) {
	if p.ContentType != "" {
		mask |= flagContentType
	}
	if p.ContentEncoding != "" {
		mask |= flagContentEncoding
	}
	if p.Headers != nil {
		mask |= flagHeaders
	}
	if p.DeliveryMode != 0 {
		mask |= flagDeliveryMode
	}
	if p.Priority != 0 {
		mask |= flagPriority
	}
	if p.CorrelationId != "" {
		mask |= flagCorrelationId
	}
	if p.ReplyTo != "" {
		mask |= flagReplyTo
	}
	if p.Expiration != "" {
		mask |= flagExpiration
	}
	if p.MessageId != "" {
		mask |= flagMessageId
	}
	if !p.Timestamp.IsZero() {
		mask |= flagTimestamp
	}
	if p.Type != "" {
		mask |= flagType
	}
	if p.UserId != "" {
		mask |= flagUserId
	}
	if p.AppId != "" {
		mask |= flagAppId
	}
	if p.ClusterId != "" {
		mask |= flagClusterId
	}
	return mask
}
