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

package pgconn

import (
	"context"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sys/unix"

	liberr "github.com/sabouaram/apostol/errors"
	"github.com/sabouaram/apostol/eventloop"
)

type resultKind int

const (
	kindConnect resultKind = iota
	kindQuery
	kindNotify
	kindNotifyDone
)

type asyncResult struct {
	kind    resultKind
	conn    *pgx.Conn
	results []QueryResult
	channel string
	payload string
	pid     uint32
	err     liberr.Error
}

// Options configures a Connect call. OnReady fires once the connection
// reaches Ready (or Listening, for the dedicated listener connection).
// OnError fires when the connect attempt fails, when a query fails, or when
// the listener's notification pump stops; the caller (normally PgPool) owns
// reconnect/back-off policy.
type Options struct {
	ConnString string
	IsListener bool
	OnReady    func(c Connection)
	OnError    func(c Connection, err liberr.Error)
	OnNotify   NotificationCallback
}

// Connection is one async, event-loop-driven PostgreSQL connection. The
// concrete implementation returned by Connect wraps *pgx.Conn; PgPool
// depends on this interface, not the concrete type, so its reconnect and
// dispatch logic can be tested against a fake.
type Connection interface {
	State() State
	Execute(sql string, cb QueryCallback) liberr.Error
	Close() liberr.Error
}

type connection struct {
	loop eventloop.Loop
	opts Options

	state      State
	readyState State // StateReady or StateListening, the state Execute restores to

	conn     *pgx.Conn
	wakeFd   int
	resultCh chan asyncResult

	queryCB QueryCallback
}

// Connect begins an asynchronous connection attempt; the Connection is
// returned immediately in StateConnecting, and opts.OnReady/OnError fire
// later from inside the loop once the background attempt resolves.
func Connect(loop eventloop.Loop, opts Options) (Connection, liberr.Error) {
	wakeFd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		return nil, liberr.New(ErrEventfd, "eventfd", err)
	}

	readyState := StateReady
	if opts.IsListener {
		readyState = StateListening
	}

	c := &connection{
		loop:       loop,
		opts:       opts,
		state:      StateConnecting,
		readyState: readyState,
		wakeFd:     wakeFd,
		resultCh:   make(chan asyncResult, 8),
	}

	if lerr := loop.AddIO(wakeFd, eventloop.EventReadable, c.onWake); lerr != nil {
		_ = unix.Close(wakeFd)
		return nil, liberr.New(ErrEventfd, "register pgconn eventfd", lerr)
	}

	go c.connectAsync()

	return c, nil
}

// State reports the connection's current position in the state machine.
func (c *connection) State() State { return c.state }

func (c *connection) connectAsync() {
	conn, err := pgx.Connect(context.Background(), c.opts.ConnString)
	if err != nil {
		c.push(asyncResult{kind: kindConnect, err: liberr.New(ErrConnect, "connect", err)})
		return
	}
	c.push(asyncResult{kind: kindConnect, conn: conn})
}

// Execute sends sql and moves the connection to StateBusy until results
// arrive; cb receives the ordered per-statement results. Valid from
// StateReady or StateListening (the listener connection also runs
// LISTEN/UNLISTEN through Execute).
func (c *connection) Execute(sql string, cb QueryCallback) liberr.Error {
	if c.state != StateReady && c.state != StateListening {
		return liberr.New(ErrNotReady, "execute called while connection is "+c.state.String(), nil)
	}

	c.state = StateBusy
	c.queryCB = cb

	conn := c.conn
	go func() {
		reader := conn.PgConn().Exec(context.Background(), sql)
		batch, err := reader.ReadAll()
		if err != nil {
			c.push(asyncResult{kind: kindQuery, err: liberr.New(ErrExec, "exec", err)})
			return
		}

		results := make([]QueryResult, 0, len(batch))
		for _, r := range batch {
			qr := QueryResult{CommandTag: r.CommandTag.String()}
			if r.Err != nil {
				qr.Err = liberr.New(ErrExec, "statement failed", r.Err)
			}
			results = append(results, qr)
		}
		c.push(asyncResult{kind: kindQuery, results: results})
	}()

	return nil
}

// runNotifyPump is started once for the dedicated listener connection after
// it reaches StateListening; it blocks in pgx's WaitForNotification and
// forwards each delivery back onto the loop's goroutine.
func (c *connection) runNotifyPump() {
	for {
		n, err := c.conn.WaitForNotification(context.Background())
		if err != nil {
			c.push(asyncResult{kind: kindNotifyDone, err: liberr.New(ErrConnect, "notification pump", err)})
			return
		}
		c.push(asyncResult{kind: kindNotify, channel: n.Channel, payload: n.Payload, pid: n.PID})
	}
}

func (c *connection) push(r asyncResult) {
	c.resultCh <- r
	var b [8]byte
	b[0] = 1
	_, _ = unix.Write(c.wakeFd, b[:])
}

func (c *connection) onWake(_ int, _ eventloop.IOEvent) {
	var b [8]byte
	_, _ = unix.Read(c.wakeFd, b[:])

	for {
		select {
		case r := <-c.resultCh:
			c.handle(r)
		default:
			return
		}
	}
}

func (c *connection) handle(r asyncResult) {
	switch r.kind {
	case kindConnect:
		if r.err != nil {
			c.state = StateError
			if c.opts.OnError != nil {
				c.opts.OnError(c, r.err)
			}
			return
		}
		c.conn = r.conn
		c.state = c.readyState
		if c.opts.IsListener {
			go c.runNotifyPump()
		}
		if c.opts.OnReady != nil {
			c.opts.OnReady(c)
		}

	case kindQuery:
		if r.err != nil {
			c.state = StateError
			cb := c.queryCB
			c.queryCB = nil
			if cb != nil {
				cb([]QueryResult{{Err: r.err}})
			}
			if c.opts.OnError != nil {
				c.opts.OnError(c, r.err)
			}
			return
		}
		c.state = c.readyState
		cb := c.queryCB
		c.queryCB = nil
		if cb != nil {
			cb(r.results)
		}

	case kindNotify:
		if c.opts.OnNotify != nil {
			c.opts.OnNotify(r.channel, r.payload, r.pid)
		}

	case kindNotifyDone:
		c.state = StateError
		if c.opts.OnError != nil {
			c.opts.OnError(c, r.err)
		}
	}
}

// Close releases the connection's eventfd watch and the underlying pgx
// connection. Safe to call from any state.
func (c *connection) Close() liberr.Error {
	_ = c.loop.RemoveIO(c.wakeFd)
	_ = unix.Close(c.wakeFd)
	c.state = StateDisconnected

	if c.conn != nil {
		if err := c.conn.Close(context.Background()); err != nil {
			return liberr.New(ErrClosed, "close", err)
		}
	}
	return nil
}
