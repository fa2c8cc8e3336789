/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package pgconn bridges pgx's inherently blocking connection API onto the
// non-blocking readiness model the eventloop package expects, playing the
// role libpq's connect_start/connect_poll/consume_input trio plays in the
// C original: one background goroutine per Connection does the actual
// blocking pgx call, and signals completion to the owning EventLoop through
// an eventfd watch so every callback still runs on the loop's own
// goroutine.
package pgconn

import (
	liberr "github.com/sabouaram/apostol/errors"
)

// State is the connection's position in the {Disconnected, Connecting,
// Ready, Busy, Listening, Error} state machine of the PgConnection type.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateReady
	StateBusy
	StateListening
	StateError
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateBusy:
		return "busy"
	case StateListening:
		return "listening"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

const (
	ErrConnect = liberr.MinPkgPgConn + iota
	ErrExec
	ErrNotReady
	ErrClosed
	ErrEventfd
)

// QueryResult reports one statement's outcome within a query batch; a
// batch of ;-separated statements can report more than one.
type QueryResult struct {
	CommandTag string
	Err        liberr.Error
}

// Ok reports whether every result in a batch succeeded.
func Ok(results []QueryResult) bool {
	for _, r := range results {
		if r.Err != nil {
			return false
		}
	}
	return true
}

// QueryCallback receives the ordered results of one Execute call.
type QueryCallback func(results []QueryResult)

// NotificationCallback receives one LISTEN/NOTIFY delivery on the
// dedicated listener Connection.
type NotificationCallback func(channel, payload string, pid uint32)
