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
	"fmt"
	"net"
	"strconv"

	"golang.org/x/sys/unix"

	liberr "github.com/sabouaram/apostol/errors"
)

type listener struct {
	fd int
}

// ListenOption configures Listen.
type ListenOption struct {
	Backlog int
}

// Listen binds a listening socket on host:port. It first attempts a
// dual-stack IPv6 bind with IPV6_V6ONLY disabled so IPv4 clients are accepted
// on the same socket; if the kernel or host refuses (no IPv6 support), it
// falls back to a plain IPv4 bind.
func Listen(address string, opt ListenOption) (Listener, liberr.Error) {
	host, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return nil, liberr.New(ErrBind, "split host port", err)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, liberr.New(ErrBind, "invalid port", err)
	}

	if opt.Backlog <= 0 {
		opt.Backlog = defaultBacklog
	}

	if l, e := listenTCP6(host, port, opt.Backlog); e == nil {
		return l, nil
	}

	return listenTCP4(host, port, opt.Backlog)
}

func listenTCP6(host string, port int, backlog int) (Listener, liberr.Error) {
	fd, err := unix.Socket(unix.AF_INET6, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return nil, liberr.New(ErrSocket, "socket(AF_INET6)", err)
	}

	if e := prepareListenFd(fd); e != nil {
		_ = unix.Close(fd)
		return nil, e
	}

	if err = unix.SetsockoptInt(fd, unix.IPPROTO_IPV6, unix.IPV6_V6ONLY, 0); err != nil {
		_ = unix.Close(fd)
		return nil, liberr.New(ErrSetOpt, "setsockopt IPV6_V6ONLY", err)
	}

	var ip [16]byte
	if host != "" && host != "::" && host != "0.0.0.0" {
		addr := net.ParseIP(host)
		if addr == nil {
			_ = unix.Close(fd)
			return nil, liberr.New(ErrBind, fmt.Sprintf("invalid address %q", host), nil)
		}
		addr16 := addr.To16()
		if addr16 == nil {
			_ = unix.Close(fd)
			return nil, liberr.New(ErrBind, fmt.Sprintf("address %q is not representable as IPv6", host), nil)
		}
		copy(ip[:], addr16)
	}

	sa := &unix.SockaddrInet6{Port: port, Addr: ip}
	if err = unix.Bind(fd, sa); err != nil {
		_ = unix.Close(fd)
		return nil, liberr.New(ErrBind, "bind(AF_INET6)", err)
	}

	if err = unix.Listen(fd, backlog); err != nil {
		_ = unix.Close(fd)
		return nil, liberr.New(ErrListen, "listen(AF_INET6)", err)
	}

	return &listener{fd: fd}, nil
}

func listenTCP4(host string, port int, backlog int) (Listener, liberr.Error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return nil, liberr.New(ErrSocket, "socket(AF_INET)", err)
	}

	if e := prepareListenFd(fd); e != nil {
		_ = unix.Close(fd)
		return nil, e
	}

	var ip [4]byte
	if host != "" && host != "0.0.0.0" {
		addr := net.ParseIP(host)
		if addr == nil {
			_ = unix.Close(fd)
			return nil, liberr.New(ErrBind, fmt.Sprintf("invalid address %q", host), nil)
		}
		addr4 := addr.To4()
		if addr4 == nil {
			_ = unix.Close(fd)
			return nil, liberr.New(ErrBind, fmt.Sprintf("address %q is not an IPv4 address", host), nil)
		}
		copy(ip[:], addr4)
	}

	sa := &unix.SockaddrInet4{Port: port, Addr: ip}
	if err = unix.Bind(fd, sa); err != nil {
		_ = unix.Close(fd)
		return nil, liberr.New(ErrBind, "bind(AF_INET)", err)
	}

	if err = unix.Listen(fd, backlog); err != nil {
		_ = unix.Close(fd)
		return nil, liberr.New(ErrListen, "listen(AF_INET)", err)
	}

	return &listener{fd: fd}, nil
}

// FromFd adopts an already-bound, already-listening fd inherited across
// exec (binary upgrade, §4.9) instead of binding a fresh socket. The caller
// is responsible for having parsed fd out of APP_ENV.
func FromFd(fd int) (Listener, liberr.Error) {
	if err := unix.SetNonblock(fd, true); err != nil {
		return nil, liberr.New(ErrSetOpt, "set non-blocking on inherited fd", err)
	}
	return &listener{fd: fd}, nil
}

// ClearCloseOnExec drops FD_CLOEXEC on fd so it survives the exec(2) call
// that performs a binary upgrade; prepareListenFd always sets it for
// ordinary listeners, so the supervisor must explicitly undo it on the
// handful of fds it intends to pass to the new binary.
func ClearCloseOnExec(fd int) liberr.Error {
	flags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0)
	if err != nil {
		return liberr.New(ErrSetOpt, "fcntl F_GETFD", err)
	}
	if _, err = unix.FcntlInt(uintptr(fd), unix.F_SETFD, flags&^unix.FD_CLOEXEC); err != nil {
		return liberr.New(ErrSetOpt, "fcntl F_SETFD clear FD_CLOEXEC", err)
	}
	return nil
}

func prepareListenFd(fd int) liberr.Error {
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return liberr.New(ErrSetOpt, "setsockopt SO_REUSEADDR", err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		return liberr.New(ErrSetOpt, "set non-blocking", err)
	}
	if err := unix.SetCloseOnExec(fd); err != nil {
		return liberr.New(ErrSetOpt, "set close-on-exec", err)
	}
	return nil
}

func (l *listener) Fd() int {
	return l.fd
}

func (l *listener) Accept() (Connection, bool, liberr.Error) {
	nfd, sa, err := unix.Accept4(l.fd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return nil, false, nil
		}
		return nil, false, liberr.New(ErrAccept, "accept4", err)
	}

	return newConnection(nfd, peerAddrOf(sa)), true, nil
}

func (l *listener) Close() liberr.Error {
	if err := unix.Close(l.fd); err != nil {
		return liberr.New(ErrClosed, "close listener", err)
	}
	return nil
}

func peerAddrOf(sa unix.Sockaddr) string {
	switch v := sa.(type) {
	case *unix.SockaddrInet4:
		ip := net.IP(v.Addr[:])
		return fmt.Sprintf("%s:%d", ip.String(), v.Port)
	case *unix.SockaddrInet6:
		ip := net.IP(v.Addr[:])
		return fmt.Sprintf("[%s]:%d", ip.String(), v.Port)
	default:
		return ""
	}
}
