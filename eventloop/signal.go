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
	"unsafe"

	"golang.org/x/sys/unix"
)

// sigsetAdd sets the bit for signum (1-based, per POSIX) in a Sigset_t. The
// kernel's sigset_t is a bitmap of 64-bit words; we manipulate it directly
// rather than depend on a libc helper, since Go's signalfd(2) wrapper only
// exposes the raw struct.
func sigsetAdd(set *unix.Sigset_t, signum int) {
	if signum <= 0 {
		return
	}
	bit := uint(signum - 1)
	set.Val[bit/64] |= 1 << (bit % 64)
}

// readSiginfo blocks-free reads one signalfd_siginfo record, returning the
// delivered signal number, or ok == false if nothing (more) is available.
func readSiginfo(fd int) (signum int, ok bool) {
	var info unix.SignalfdSiginfo
	buf := (*[unsafe.Sizeof(unix.SignalfdSiginfo{})]byte)(unsafe.Pointer(&info))[:]

	n, err := unix.Read(fd, buf)
	if err != nil || n != len(buf) {
		return 0, false
	}
	return int(info.Signo), true
}
