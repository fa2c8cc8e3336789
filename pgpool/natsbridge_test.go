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

package pgpool_test

import (
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats-server/v2/server"
	natsserver "github.com/nats-io/nats-server/v2/test"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	liberr "github.com/sabouaram/apostol/errors"
	"github.com/sabouaram/apostol/eventloop"
	"github.com/sabouaram/apostol/pgconn"
	. "github.com/sabouaram/apostol/pgpool"
)

// startEmbeddedNats runs a throwaway in-process NATS server (teacher dep
// github.com/nats-io/nats-server/v2, exercised here instead of left unwired)
// so EnableNatsBridge's fan-out can be proven against a real subscriber
// without any external NATS deployment.
func startEmbeddedNats() (*server.Server, string) {
	opts := natsserver.DefaultTestOptions
	opts.Port = -1
	s := natsserver.RunServer(&opts)
	return s, s.ClientURL()
}

// notifyCapturingDial hands out one fakeConnection per call and, for the
// listener connection, stashes opts.OnNotify so the test can fire a
// synthetic NOTIFY delivery directly instead of speaking the wire protocol.
type notifyCapturingDial struct {
	onNotify pgconn.NotificationCallback
}

func (d *notifyCapturingDial) dial(loop eventloop.Loop, opts pgconn.Options) (pgconn.Connection, liberr.Error) {
	conn := &notifyFakeConn{}
	readyState := pgconn.StateReady
	if opts.IsListener {
		readyState = pgconn.StateListening
		d.onNotify = opts.OnNotify
	}
	conn.state = readyState
	loop.AddTimer(time.Millisecond, 0, func(time.Time) {
		if opts.OnReady != nil {
			opts.OnReady(conn)
		}
	})
	return conn, nil
}

type notifyFakeConn struct {
	state pgconn.State
}

func (f *notifyFakeConn) State() pgconn.State { return f.state }
func (f *notifyFakeConn) Execute(sql string, cb pgconn.QueryCallback) liberr.Error {
	cb([]pgconn.QueryResult{{CommandTag: "OK"}})
	return nil
}
func (f *notifyFakeConn) Close() liberr.Error { return nil }

var _ = Describe("NATS bridge", func() {
	It("mirrors a NOTIFY delivery out to the configured subject prefix", func() {
		srv, url := startEmbeddedNats()
		defer srv.Shutdown()

		sub, err := nats.Connect(url)
		Expect(err).To(BeNil())
		defer sub.Close()

		received := make(chan *nats.Msg, 1)
		_, err = sub.Subscribe("bridge.orders", func(msg *nats.Msg) {
			received <- msg
		})
		Expect(err).To(BeNil())
		Expect(sub.Flush()).To(BeNil())

		loop, lerr := eventloop.New()
		Expect(lerr).To(BeNil())
		defer loop.Close()

		d := &notifyCapturingDial{}
		p, perr := NewWithDialer(loop, "", 0, 1, d.dial)
		Expect(perr).To(BeNil())
		defer p.Close()

		p.EnableNatsBridge(url, "bridge.")
		p.Listen("orders", func(channel, payload string, pid uint32) {})
		Expect(d.onNotify).ToNot(BeNil())

		done := make(chan struct{})
		var msg *nats.Msg
		go func() {
			select {
			case msg = <-received:
				close(done)
			case <-time.After(2 * time.Second):
				close(done)
			}
		}()

		// The listener's OnReady fires from a 1ms timer scheduled inside
		// NewWithDialer; deliver the synthetic NOTIFY shortly after, all on
		// the loop's own goroutine once Run starts, matching dialController's
		// forceError convention in pool_fakes_test.go.
		loop.AddTimer(200*time.Millisecond, 0, func(time.Time) {
			d.onNotify("orders", "created", 1)
		})

		runLoop(loop, done, 3*time.Second)

		Expect(msg).ToNot(BeNil())
		Expect(string(msg.Data)).To(Equal("created"))
	})
})
