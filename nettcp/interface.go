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

// Package nettcp provides a non-blocking, fd-addressable TCP listener and
// connection pair meant to be driven from an external event loop rather than
// net.Listener's blocking Accept/Read/Write. Raw golang.org/x/sys/unix socket
// calls are used throughout so the listening fd survives a binary upgrade
// exec and can be registered directly against an epoll instance; net.Listen
// hides the underlying fd and gives no such guarantee.
package nettcp

import (
	liberr "github.com/sabouaram/apostol/errors"
)

// Listener owns one bound, listening, non-blocking socket.
type Listener interface {
	// Fd returns the underlying file descriptor, for registration with an
	// event loop's AddIO.
	Fd() int

	// Accept pulls one pending connection off the backlog. Returns
	// (nil, false, nil) when none is pending (EAGAIN) rather than blocking.
	Accept() (Connection, bool, liberr.Error)

	// Close closes the listening socket.
	Close() liberr.Error
}

// Connection owns one non-blocking connected socket.
type Connection interface {
	// Fd returns the underlying file descriptor.
	Fd() int

	// PeerAddr is the remote address captured at accept/connect time.
	PeerAddr() string

	// Read is a thin non-blocking wrapper over recv(2). A zero-length read
	// with a nil error means no data is currently available (EAGAIN); the
	// peer closing its side is reported as an error.
	Read(buf []byte) (int, liberr.Error)

	// Write attempts an immediate send. On a short write or EAGAIN the
	// unwritten tail is buffered for a later Flush once the loop reports
	// writability; subsequent Write calls append to that buffer.
	Write(data []byte) (int, liberr.Error)

	// Flush drains any buffered tail. Returns true once nothing remains
	// buffered.
	Flush() (drained bool, err liberr.Error)

	// Pending reports whether a buffered tail remains to be flushed.
	Pending() bool

	// CloseWrite shuts the write half down after the last buffered byte is
	// acknowledged, distinct from a peer-initiated hang-up.
	CloseWrite() liberr.Error

	// Close closes both halves of the connection.
	Close() liberr.Error
}
