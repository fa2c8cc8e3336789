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

package pgpool

import (
	"strings"
	"time"

	liberr "github.com/sabouaram/apostol/errors"
	"github.com/sabouaram/apostol/eventloop"
	"github.com/sabouaram/apostol/pgconn"
)

type queuedQuery struct {
	sql string
	cb  pgconn.QueryCallback
}

// slot owns one pgconn.Connection across its whole reconnect lifetime: the
// Connection value itself is replaced on every reconnect attempt, but the
// slot (and its backoff state) is not.
type slot struct {
	isListener bool
	conn       pgconn.Connection
	backoff    time.Duration
	pending    []queuedQuery // listener-only: serializes LISTEN/UNLISTEN so a second command never races a first still Busy
}

// DialFunc opens one async connection; Pool calls it through a field rather
// than pgconn.Connect directly so tests can substitute a fake
// pgconn.Connection without a reachable Postgres server.
type DialFunc func(loop eventloop.Loop, opts pgconn.Options) (pgconn.Connection, liberr.Error)

// Pool is a set of async PostgreSQL connections sharing one FIFO query
// queue, plus a dedicated listener connection for LISTEN/NOTIFY.
type Pool struct {
	loop       eventloop.Loop
	connString string
	min, max   int
	dial       DialFunc

	conns    []*slot
	listener *slot

	queue []queuedQuery

	subscriptions map[string]pgconn.NotificationCallback

	nats *natsBridge

	closed bool
}

// New opens min connections immediately plus one dedicated listener
// connection, and returns the Pool without waiting for any of them to
// become Ready (readiness is asynchronous, delivered through the same
// loop that drives sql queries).
func New(loop eventloop.Loop, connString string, min, max int) (*Pool, liberr.Error) {
	return NewWithDialer(loop, connString, min, max, pgconn.Connect)
}

// NewWithDialer is New with the dial function injected, letting callers (in
// practice, this package's own tests) run the reconnect and dispatch logic
// against a fake pgconn.Connection instead of a real Postgres server.
func NewWithDialer(loop eventloop.Loop, connString string, min, max int, dial DialFunc) (*Pool, liberr.Error) {
	p := &Pool{
		loop:          loop,
		connString:    connString,
		min:           min,
		max:           max,
		dial:          dial,
		subscriptions: make(map[string]pgconn.NotificationCallback),
	}

	for i := 0; i < min; i++ {
		p.addConnection()
	}

	p.listener = &slot{isListener: true, backoff: initialBackoff}
	p.connectSlot(p.listener)

	return p, nil
}

func (p *Pool) addConnection() *slot {
	s := &slot{backoff: initialBackoff}
	p.conns = append(p.conns, s)
	p.connectSlot(s)
	return s
}

func (p *Pool) connectSlot(s *slot) {
	conn, err := p.dial(p.loop, pgconn.Options{
		ConnString: p.connString,
		IsListener: s.isListener,
		OnReady: func(c pgconn.Connection) {
			p.onReady(s)
		},
		OnError: func(c pgconn.Connection, cerr liberr.Error) {
			p.onError(s)
		},
		OnNotify: p.onNotify,
	})
	if err != nil {
		p.scheduleReconnect(s)
		return
	}
	s.conn = conn
}

func (p *Pool) onReady(s *slot) {
	s.backoff = initialBackoff

	if s.isListener {
		queued := make(map[string]bool, len(s.pending))
		for _, q := range s.pending {
			queued[q.sql] = true
		}
		for channel := range p.subscriptions {
			sql := "LISTEN " + quoteIdentifier(channel)
			if !queued[sql] {
				s.pending = append(s.pending, queuedQuery{sql: sql})
			}
		}
		p.drainListener()
		return
	}

	p.dispatch(s)
}

func (p *Pool) onError(s *slot) {
	s.conn = nil
	s.pending = nil
	if !p.closed {
		p.scheduleReconnect(s)
	}
}

func (p *Pool) onNotify(channel, payload string, pid uint32) {
	if cb, ok := p.subscriptions[channel]; ok {
		cb(channel, payload, pid)
	}
	if p.nats != nil {
		p.nats.publish(channel, payload)
	}
}

func (p *Pool) scheduleReconnect(s *slot) {
	delay := s.backoff
	if delay > maxBackoff {
		delay = maxBackoff
	}

	s.backoff *= 2
	if s.backoff > maxBackoff {
		s.backoff = maxBackoff
	}

	p.loop.AddTimer(delay, 0, func(now time.Time) {
		if p.closed {
			return
		}
		p.connectSlot(s)
	})
}

// Execute sends sql on the first Ready non-listener connection, or queues
// it FIFO if none is free; a free connection is opened on demand up to
// max if the queue is growing and none is idle.
func (p *Pool) Execute(sql string, cb pgconn.QueryCallback) {
	for _, s := range p.conns {
		if s.conn != nil && s.conn.State() == pgconn.StateReady {
			p.send(s, sql, cb)
			return
		}
	}

	p.queue = append(p.queue, queuedQuery{sql: sql, cb: cb})

	if len(p.conns) < p.max {
		p.addConnection()
	}
}

func (p *Pool) send(s *slot, sql string, cb pgconn.QueryCallback) {
	_ = s.conn.Execute(sql, func(results []pgconn.QueryResult) {
		cb(results)
		p.dispatch(s)
	})
}

func (p *Pool) dispatch(s *slot) {
	if len(p.queue) == 0 {
		return
	}
	q := p.queue[0]
	p.queue = p.queue[1:]
	p.send(s, q.sql, q.cb)
}

func (p *Pool) drainListener() {
	s := p.listener
	if s.conn == nil || s.conn.State() != pgconn.StateListening || len(s.pending) == 0 {
		return
	}

	q := s.pending[0]
	s.pending = s.pending[1:]

	_ = s.conn.Execute(q.sql, func(results []pgconn.QueryResult) {
		p.drainListener()
	})
}

// Listen records channel -> cb and, if the listener connection is ready,
// sends LISTEN immediately. On reconnect, every current subscription is
// re-issued automatically from onReady.
func (p *Pool) Listen(channel string, cb pgconn.NotificationCallback) {
	p.subscriptions[channel] = cb
	p.listener.pending = append(p.listener.pending, queuedQuery{sql: "LISTEN " + quoteIdentifier(channel)})
	p.drainListener()
}

// Unlisten sends UNLISTEN and drops the channel mapping.
func (p *Pool) Unlisten(channel string) {
	delete(p.subscriptions, channel)
	p.listener.pending = append(p.listener.pending, queuedQuery{sql: "UNLISTEN " + quoteIdentifier(channel)})
	p.drainListener()
}

// QueueSize reports the number of queries waiting for a free connection.
func (p *Pool) QueueSize() int { return len(p.queue) }

// ConnectionCount reports the number of non-listener connection slots
// (Ready, Busy, still Connecting, or waiting to reconnect), not counting
// the listener.
func (p *Pool) ConnectionCount() int { return len(p.conns) }

// EnableNatsBridge mirrors every delivered NOTIFY out to a NATS subject
// (subjectPrefix + channel name) for multi-process fan-out beyond this
// one pool. Connection happens in the background; publishes made before
// it completes are silently dropped, matching the best-effort nature of
// a fan-out mirror.
func (p *Pool) EnableNatsBridge(url, subjectPrefix string) {
	p.nats = newNatsBridge(url, subjectPrefix)
}

// Close closes every connection (query connections and the listener) and
// the optional NATS bridge. Must be called before the owning eventloop.Loop
// is closed.
func (p *Pool) Close() liberr.Error {
	p.closed = true

	for _, s := range p.conns {
		if s.conn != nil {
			_ = s.conn.Close()
		}
	}
	if p.listener.conn != nil {
		_ = p.listener.conn.Close()
	}
	if p.nats != nil {
		p.nats.close()
	}

	return nil
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
