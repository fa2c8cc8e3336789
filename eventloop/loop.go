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

package eventloop

import (
	"time"

	"golang.org/x/sys/unix"

	liberr "github.com/sabouaram/apostol/errors"
)

const maxEpollEvents = 256

type loop struct {
	epfd     int
	wakeFd   int // eventfd used by Stop() to unblock EpollWait
	sigFd    int // signalfd, 0 until AddSignal is first called
	sigMask  unix.Sigset_t
	watches  map[int]*ioWatch
	sigCb    map[int]SignalCallback
	timers   *timerWheel
	stopping bool
	closed   bool
}

// New builds an EventLoop bound to a fresh epoll instance. One loop per
// process role (master, each worker, each helper) per §5.
func New() (Loop, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, liberr.New(ErrEpollCreate, "epoll_create1", err)
	}

	wakeFd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		_ = unix.Close(epfd)
		return nil, liberr.New(ErrEventfd, "eventfd", err)
	}

	l := &loop{
		epfd:    epfd,
		wakeFd:  wakeFd,
		watches: make(map[int]*ioWatch),
		sigCb:   make(map[int]SignalCallback),
		timers:  newTimerWheel(),
	}

	if err = l.epollAdd(wakeFd, unix.EPOLLIN); err != nil {
		_ = unix.Close(epfd)
		_ = unix.Close(wakeFd)
		return nil, err
	}

	return l, nil
}

func (l *loop) epollAdd(fd int, events uint32) error {
	ev := unix.EpollEvent{Events: events, Fd: int32(fd)}
	if err := unix.EpollCtl(l.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return liberr.New(ErrEpollCtl, "epoll_ctl add", err)
	}
	return nil
}

func (l *loop) epollMod(fd int, events uint32) error {
	ev := unix.EpollEvent{Events: events, Fd: int32(fd)}
	if err := unix.EpollCtl(l.epfd, unix.EPOLL_CTL_MOD, fd, &ev); err != nil {
		return liberr.New(ErrEpollCtl, "epoll_ctl mod", err)
	}
	return nil
}

func (l *loop) epollDel(fd int) error {
	if err := unix.EpollCtl(l.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil && err != unix.ENOENT {
		return liberr.New(ErrEpollCtl, "epoll_ctl del", err)
	}
	return nil
}

func toNative(mask IOEvent) uint32 {
	var e uint32
	if mask.Has(EventReadable) {
		e |= unix.EPOLLIN
	}
	if mask.Has(EventWritable) {
		e |= unix.EPOLLOUT
	}
	if mask.Has(EventHangup) {
		e |= unix.EPOLLRDHUP
	}
	return e
}

func fromNative(e uint32) IOEvent {
	var m IOEvent
	if e&unix.EPOLLIN != 0 {
		m |= EventReadable
	}
	if e&unix.EPOLLOUT != 0 {
		m |= EventWritable
	}
	if e&(unix.EPOLLRDHUP|unix.EPOLLHUP) != 0 {
		m |= EventHangup
	}
	if e&unix.EPOLLERR != 0 {
		m |= EventError
	}
	return m
}

func (l *loop) AddTimer(delay, repeat time.Duration, cb TimerCallback) TimerID {
	return l.timers.add(delay, repeat, cb)
}

func (l *loop) CancelTimer(id TimerID) {
	l.timers.cancel(id)
}

func (l *loop) AddIO(fd int, mask IOEvent, cb IOCallback) error {
	w := &ioWatch{fd: fd, mask: mask, cb: cb}
	if old, ok := l.watches[fd]; ok {
		w.generation = old.generation + 1
	}
	l.watches[fd] = w
	return l.epollAdd(fd, toNative(mask))
}

func (l *loop) ModifyIO(fd int, mask IOEvent) error {
	w, ok := l.watches[fd]
	if !ok {
		return liberr.New(ErrEpollCtl, "modify_io: fd not registered")
	}
	w.mask = mask
	return l.epollMod(fd, toNative(mask))
}

func (l *loop) RemoveIO(fd int) error {
	if _, ok := l.watches[fd]; !ok {
		return nil
	}
	delete(l.watches, fd)
	return l.epollDel(fd)
}

func (l *loop) AddSignal(signum int, cb SignalCallback) error {
	// Block the signal on this thread *before* the signalfd exists, per
	// §4.1: otherwise the default disposition (or a competing handler) can
	// steal delivery between blocking and subscribing.
	sigsetAdd(&l.sigMask, signum)
	if err := unix.PthreadSigmask(unix.SIG_BLOCK, &l.sigMask, nil); err != nil {
		return liberr.New(ErrSigMask, "pthread_sigmask", err)
	}

	prior := l.sigFd
	target := -1
	if prior != 0 {
		target = prior
	}
	fd, err := unix.Signalfd(target, &l.sigMask, unix.SFD_NONBLOCK|unix.SFD_CLOEXEC)
	if err != nil {
		return liberr.New(ErrSignalfd, "signalfd", err)
	}

	if prior == 0 {
		if err = l.epollAdd(fd, unix.EPOLLIN); err != nil {
			_ = unix.Close(fd)
			return err
		}
	}
	// signalfd(2) called with a valid existing fd updates its mask in
	// place and returns that same fd, so no epoll re-registration is
	// needed when prior != 0.

	l.sigFd = fd
	l.sigCb[signum] = cb
	return nil
}

func (l *loop) Stop() {
	l.stopping = true
	var b [8]byte
	b[0] = 1
	_, _ = unix.Write(l.wakeFd, b[:])
}

func (l *loop) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	if l.sigFd != 0 {
		_ = unix.Close(l.sigFd)
	}
	_ = unix.Close(l.wakeFd)
	return unix.Close(l.epfd)
}

// WatchedFDs reports the number of fds currently registered via AddIO,
// matching pgpool's QueueSize/ConnectionCount convention of a plain read
// meant to be called from the loop's own goroutine (e.g. a heartbeat tick),
// not concurrently from another one.
func (l *loop) WatchedFDs() int { return len(l.watches) }

func (l *loop) Run() error {
	l.stopping = false
	events := make([]unix.EpollEvent, maxEpollEvents)

	for !l.stopping {
		timeout := -1
		if d, ok := l.timers.nextDeadline(); ok {
			wait := time.Until(d)
			if wait < 0 {
				wait = 0
			}
			ms := wait.Milliseconds()
			if ms > int64(int(^uint(0)>>1)) {
				ms = int64(int(^uint(0) >> 1))
			}
			timeout = int(ms)
		}

		n, err := unix.EpollWait(l.epfd, events, timeout)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return liberr.New(ErrEpollWait, "epoll_wait", err)
		}

		for i := 0; i < n; i++ {
			fd := int(events[i].Fd)
			native := events[i].Events

			switch {
			case fd == l.wakeFd:
				var b [8]byte
				_, _ = unix.Read(l.wakeFd, b[:])
			case fd == l.sigFd:
				l.drainSignals()
			default:
				l.dispatchIO(fd, native)
			}
		}

		l.timers.fireDue(time.Now())
	}

	return nil
}

func (l *loop) dispatchIO(fd int, native uint32) {
	w, ok := l.watches[fd]
	if !ok {
		return
	}
	w.cb(fd, fromNative(native))
}

func (l *loop) drainSignals() {
	for {
		signum, ok := readSiginfo(l.sigFd)
		if !ok {
			return
		}
		if cb, ok := l.sigCb[signum]; ok {
			cb(signum)
		}
	}
}
