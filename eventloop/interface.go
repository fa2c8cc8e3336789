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

// Package eventloop implements the single-threaded, epoll-backed reactor
// that every process role (master, worker, helper) runs exactly one of.
//
// It multiplexes three kinds of event sources onto one Linux epoll
// instance: timers (a min-heap fired via a computed wait deadline),
// arbitrary file descriptors (registered by TcpListener/TcpConnection,
// PgConnection's readiness pipe, etc.), and POSIX signals (delivered
// through a signalfd so they share the same epoll_wait call as I/O).
//
// Nothing in this package is safe for concurrent use from more than one
// goroutine: the loop, and every callback it invokes, runs on the single
// goroutine that called Run.
package eventloop

import "time"

// IOEvent is the bitmask of readiness conditions delivered to an IOCallback.
type IOEvent uint32

const (
	// EventReadable signals the fd has data ready to read (or, for a
	// listening socket, a connection ready to accept).
	EventReadable IOEvent = 1 << iota
	// EventWritable signals the fd accepts a write without blocking.
	EventWritable
	// EventHangup signals the peer closed its write side (EPOLLRDHUP) or
	// the fd reached EPOLLHUP/EPOLLERR; delivered like any other event,
	// the callback decides whether to remove the watch.
	EventHangup
	// EventError signals EPOLLERR was reported for the fd.
	EventError
)

// Has reports whether the mask contains every bit of want.
func (m IOEvent) Has(want IOEvent) bool { return m&want == want }

// TimerID identifies a scheduled timer. The zero value never matches a
// real timer; CancelTimer on it, or on an id already fired and not
// repeating, is a documented no-op.
type TimerID uint64

// TimerCallback is invoked when a timer fires. now is the loop's view of
// the current time at the moment the timer was examined, not necessarily
// wall-clock-exact.
type TimerCallback func(now time.Time)

// IOCallback is invoked when a registered fd becomes ready per its
// interest mask, or reports an error/hangup condition.
type IOCallback func(fd int, events IOEvent)

// SignalCallback is invoked when a subscribed signal is delivered.
type SignalCallback func(signum int)

// Loop is the reactor contract. All methods are callable only from the
// goroutine currently inside Run (or before Run is first called); calling
// them from another goroutine is a race, matching the single-threaded
// cooperative model of §5.
type Loop interface {
	// AddTimer schedules cb to fire after delay. If repeat > 0, the timer
	// re-arms itself every repeat interval until cancelled; repeat == 0
	// means one-shot.
	AddTimer(delay time.Duration, repeat time.Duration, cb TimerCallback) TimerID

	// CancelTimer removes a pending timer. A zero id, an unknown id, or an
	// id whose timer has already fired (and was one-shot) is a no-op. A
	// timer may cancel itself from inside its own callback safely.
	CancelTimer(id TimerID)

	// AddIO registers fd with the given interest mask. cb fires once per
	// epoll_wait batch that reports readiness for fd.
	AddIO(fd int, mask IOEvent, cb IOCallback) error

	// ModifyIO changes the interest mask for an already-registered fd.
	ModifyIO(fd int, mask IOEvent) error

	// RemoveIO unregisters fd. Idempotent: removing an fd not registered,
	// or removing it twice, is not an error. Safe to call from inside the
	// fd's own callback. A subsequent AddIO for the same fd starts with a
	// fresh mask (no bleed-through from the removed watch).
	RemoveIO(fd int) error

	// AddSignal subscribes to signum, blocking it on the loop's thread and
	// multiplexing delivery through the shared epoll wait via a signalfd.
	AddSignal(signum int, cb SignalCallback) error

	// Run blocks, dispatching timers/IO/signals until Stop is called or a
	// fatal epoll error occurs (in which case Run returns that error).
	Run() error

	// Stop requests the loop to return from Run at the next opportunity;
	// safe to call from within a callback (the common case) or, thanks to
	// the internal wake eventfd, from another goroutine/signal handler.
	Stop()

	// Close releases the loop's own fds (epoll, signalfd, wake eventfd).
	// Run must have returned before Close is called.
	Close() error

	// WatchedFDs reports how many file descriptors currently carry an IO
	// watch. Read-only introspection for the monitor package's gauges,
	// following the same convention as pgpool.Pool's QueueSize/
	// ConnectionCount: meant to be called from the loop's own goroutine
	// (e.g. a heartbeat timer callback), not concurrently from another one.
	WatchedFDs() int
}
