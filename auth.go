// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
// Source code and contact info at http://github.com/streadway/amqp

package amqp

import "strings"

// Authentication is a SASL mechanism offered in connection.start-ok. Per
// the non-goals (auth mechanisms other than PLAIN are out of scope), the
// only implementation is PlainAuth.
type Authentication interface {
	Mechanism() string
	Response() string
}

// PlainAuth is the SASL PLAIN mechanism: a single "\0user\0password"
// response.
type PlainAuth struct {
	Username string
	Password string
}

func (auth *PlainAuth) Mechanism() string {
	return "PLAIN"
}

func (auth *PlainAuth) Response() string {
	return "\x00" + auth.Username + "\x00" + auth.Password
}

// pickSASLMechanism selects the first of our offered mechanisms the server
// also advertised in connection.start.
func pickSASLMechanism(client []Authentication, serverMechanisms []string) (auth Authentication, ok bool) {
	for _, auth := range client {
		for _, mech := range serverMechanisms {
			if auth.Mechanism() == mech {
				return auth, true
			}
		}
	}
	return nil, false
}

func splitMechanisms(s string) []string {
	return strings.Split(s, " ")
}
