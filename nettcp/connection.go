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

package nettcp

import (
	"net"

	"golang.org/x/sys/unix"

	liberr "github.com/sabouaram/apostol/errors"
)

type connection struct {
	fd      int
	peer    string
	pending []byte
	wClosed bool
}

func newConnection(fd int, peer string) Connection {
	return &connection{fd: fd, peer: peer}
}

// Connect opens a non-blocking outbound connection. The returned Connection
// may not be writable yet; the caller registers it for EventWritable and
// treats the first writable callback as "connect completed" per usual
// non-blocking connect(2) semantics.
func Connect(address string) (Connection, liberr.Error) {
	host, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return nil, liberr.New(ErrConnect, "split host port", err)
	}

	ip := net.ParseIP(host)
	if ip == nil {
		addrs, e := net.LookupHost(host)
		if e != nil || len(addrs) == 0 {
			return nil, liberr.New(ErrConnect, "resolve host", e)
		}
		ip = net.ParseIP(addrs[0])
	}

	port, err := net.LookupPort("tcp", portStr)
	if err != nil {
		return nil, liberr.New(ErrConnect, "invalid port", err)
	}

	var fd int
	var sa unix.Sockaddr

	if v4 := ip.To4(); v4 != nil {
		fd, err = unix.Socket(unix.AF_INET, unix.SOCK_STREAM, unix.IPPROTO_TCP)
		var addr [4]byte
		copy(addr[:], v4)
		sa = &unix.SockaddrInet4{Port: port, Addr: addr}
	} else {
		fd, err = unix.Socket(unix.AF_INET6, unix.SOCK_STREAM, unix.IPPROTO_TCP)
		var addr [16]byte
		copy(addr[:], ip.To16())
		sa = &unix.SockaddrInet6{Port: port, Addr: addr}
	}
	if err != nil {
		return nil, liberr.New(ErrSocket, "socket", err)
	}

	if err = unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return nil, liberr.New(ErrSetOpt, "set non-blocking", err)
	}
	if err = unix.SetCloseOnExec(fd); err != nil {
		_ = unix.Close(fd)
		return nil, liberr.New(ErrSetOpt, "set close-on-exec", err)
	}

	err = unix.Connect(fd, sa)
	if err != nil && err != unix.EINPROGRESS {
		_ = unix.Close(fd)
		return nil, liberr.New(ErrConnect, "connect", err)
	}

	return newConnection(fd, address), nil
}

func (c *connection) Fd() int {
	return c.fd
}

func (c *connection) PeerAddr() string {
	return c.peer
}

func (c *connection) Read(buf []byte) (int, liberr.Error) {
	n, err := unix.Read(c.fd, buf)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return 0, nil
		}
		return 0, liberr.New(ErrReadWrite, "read", err)
	}
	if n == 0 && len(buf) > 0 {
		return 0, liberr.New(ErrClosed, "peer closed the connection", nil)
	}
	return n, nil
}

func (c *connection) Write(data []byte) (int, liberr.Error) {
	if len(c.pending) > 0 {
		c.pending = append(c.pending, data...)
		return len(data), nil
	}

	n, err := unix.Write(c.fd, data)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			n = 0
		} else {
			return 0, liberr.New(ErrReadWrite, "write", err)
		}
	}

	if n < len(data) {
		c.pending = append(c.pending, data[n:]...)
	}

	return len(data), nil
}

func (c *connection) Flush() (bool, liberr.Error) {
	for len(c.pending) > 0 {
		n, err := unix.Write(c.fd, c.pending)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return false, nil
			}
			return false, liberr.New(ErrReadWrite, "flush write", err)
		}
		if n == 0 {
			return false, nil
		}
		c.pending = c.pending[n:]
	}

	c.pending = nil

	if c.wClosed {
		if err := unix.Shutdown(c.fd, unix.SHUT_WR); err != nil {
			return true, liberr.New(ErrReadWrite, "shutdown(SHUT_WR)", err)
		}
	}

	return true, nil
}

func (c *connection) Pending() bool {
	return len(c.pending) > 0
}

func (c *connection) CloseWrite() liberr.Error {
	c.wClosed = true
	if len(c.pending) == 0 {
		if err := unix.Shutdown(c.fd, unix.SHUT_WR); err != nil {
			return liberr.New(ErrReadWrite, "shutdown(SHUT_WR)", err)
		}
	}
	return nil
}

func (c *connection) Close() liberr.Error {
	if err := unix.Close(c.fd); err != nil {
		return liberr.New(ErrClosed, "close connection", err)
	}
	return nil
}
