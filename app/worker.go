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

package app

import (
	"time"

	"golang.org/x/sys/unix"

	liberr "github.com/sabouaram/apostol/errors"
	"github.com/sabouaram/apostol/eventloop"
	"github.com/sabouaram/apostol/logger"
	"github.com/sabouaram/apostol/module"
	"github.com/sabouaram/apostol/monitor"
	"github.com/sabouaram/apostol/nethttp"
	"github.com/sabouaram/apostol/nettcp"
)

// HeartbeatInterval is how often Worker ticks every enabled module's
// Heartbeat hook (§4.7: "worker emits a ~1 Hz tick").
const HeartbeatInterval = time.Second

// Worker runs one EventLoop per process (§5), binds whatever listeners it
// inherited from the master, accepts connections, and dispatches through
// its module.Manager. A helper is the same runtime with zero listeners —
// it only gets the heartbeat tick for background jobs.
type Worker struct {
	lg       logger.Logger
	loop     eventloop.Loop
	modules  *module.Manager
	listen   []nettcp.Listener
	draining bool
	mon      *monitor.Collector
}

// NewWorker builds a Worker around an already-created event loop and
// module manager; modules must already be registered.
func NewWorker(lg logger.Logger, loop eventloop.Loop, modules *module.Manager) *Worker {
	return &Worker{lg: lg, loop: loop, modules: modules}
}

// SetMonitor attaches a Collector that samples this Worker's event loop and
// module manager on every heartbeat tick; a nil Collector (the default)
// disables sampling.
func (w *Worker) SetMonitor(mon *monitor.Collector) {
	w.mon = mon
}

// Run adopts the inherited listeners (InheritedListeners), accepts
// connections into them via the event loop, starts the module manager,
// subscribes to the worker's signal set (§6 signal table), and blocks in
// the loop until a stop signal drains it to completion.
func (w *Worker) Run() liberr.Error {
	listeners, err := InheritedListeners()
	if err != nil {
		return err
	}
	w.listen = listeners

	if err = w.modules.Start(); err != nil {
		return err
	}
	defer w.modules.Stop()

	for _, l := range w.listen {
		ln := l
		if e := w.loop.AddIO(ln.Fd(), eventloop.EventReadable, func(fd int, events eventloop.IOEvent) {
			w.accept(ln)
		}); e != nil {
			return liberr.New(ErrFork, "watch listener fd", e)
		}
	}

	w.loop.AddTimer(HeartbeatInterval, HeartbeatInterval, func(now time.Time) {
		start := time.Now()
		w.modules.Heartbeat(now)
		if w.mon != nil {
			w.mon.ObserveLoop(w.loop)
			w.mon.ObserveModules(w.modules)
			w.mon.ObserveHeartbeat(time.Since(start))
		}
	})

	if e := w.loop.AddSignal(int(unix.SIGTERM), func(int) { w.stopAccepting() }); e != nil {
		return liberr.New(ErrFork, "subscribe worker SIGTERM", e)
	}
	if e := w.loop.AddSignal(int(unix.SIGQUIT), func(int) { w.drain() }); e != nil {
		return liberr.New(ErrFork, "subscribe worker SIGQUIT", e)
	}
	if e := w.loop.AddSignal(int(unix.SIGUSR1), func(int) { w.reopenLogs() }); e != nil {
		return liberr.New(ErrFork, "subscribe worker SIGUSR1", e)
	}

	if e := w.loop.Run(); e != nil {
		return liberr.New(ErrFork, "worker event loop", e)
	}
	return nil
}

func (w *Worker) accept(l nettcp.Listener) {
	for {
		conn, ok, err := l.Accept()
		if err != nil {
			if w.lg != nil {
				w.lg.Error("accept: " + err.Error())
			}
			return
		}
		if !ok {
			return
		}
		w.serve(conn)
	}
}

// serve hands a freshly accepted connection to an HTTP/1.1 state machine
// (§4.3) dispatching into the module.Manager, and registers it with the
// event loop for subsequent readable/writable events.
func (w *Worker) serve(conn nettcp.Connection) {
	hc := nethttp.NewConnection(conn, func(req *nethttp.Request, resp *nethttp.Response) {
		if !w.modules.Execute(req, resp) {
			resp.WriteStatus(404)
		}
	})

	fd := conn.Fd()
	if err := w.loop.AddIO(fd, eventloop.EventReadable, func(fd int, events eventloop.IOEvent) {
		w.onConnEvent(fd, conn, hc, events)
	}); err != nil {
		if w.lg != nil {
			w.lg.Error("watch connection fd: " + err.Error())
		}
		_ = conn.Close()
	}
}

// onConnEvent drives one accepted connection's state machine off whatever
// the event loop reports; any false/error return from the HTTP layer closes
// and unregisters the connection.
func (w *Worker) onConnEvent(fd int, conn nettcp.Connection, hc *nethttp.Connection, events eventloop.IOEvent) {
	if events.Has(eventloop.EventWritable) {
		drained, err := hc.OnWritable()
		if err != nil || !drained {
			w.closeConn(fd, conn)
			return
		}
		_ = w.loop.ModifyIO(fd, eventloop.EventReadable)
	}

	if events.Has(eventloop.EventReadable) {
		keepOpen, err := hc.OnReadable()
		if err != nil || !keepOpen {
			w.closeConn(fd, conn)
			return
		}
	}

	if events.Has(eventloop.EventHangup) || events.Has(eventloop.EventError) {
		w.closeConn(fd, conn)
	}
}

func (w *Worker) closeConn(fd int, conn nettcp.Connection) {
	_ = w.loop.RemoveIO(fd)
	_ = conn.Close()
}

// stopAccepting implements TERM for a worker (§6 signal table): it removes
// the listener watches and stops the event loop, so Run returns. Connections
// still open at that moment are not served further; in-flight requests are
// not waited for. draining suppresses a second call.
func (w *Worker) stopAccepting() {
	if w.draining {
		return
	}
	w.draining = true
	for _, l := range w.listen {
		_ = w.loop.RemoveIO(l.Fd())
	}
	w.loop.Stop()
}

// drain implements QUIT for a worker (§6 signal table) with exactly the
// same steps as TERM (stopAccepting). Idle and active connections are not
// told apart: neither is closed individually nor waited for.
func (w *Worker) drain() {
	w.stopAccepting()
}

func (w *Worker) reopenLogs() {
	if w.lg == nil {
		return
	}
	if err := w.lg.Reopen(); err != nil {
		w.lg.Error("reopen log files: " + err.Error())
	}
}
