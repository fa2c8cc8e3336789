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
	liberr "github.com/sabouaram/apostol/errors"
)

const (
	ErrEpollCreate = liberr.MinPkgEventLoop + iota
	ErrEpollCtl
	ErrEpollWait
	ErrSignalfd
	ErrEventfd
	ErrSigMask
	ErrClosed
)

// ioWatch is the loop's bookkeeping for one registered fd. generation is
// bumped when AddIO replaces a watch still registered for the same fd;
// RemoveIO discards the watch, so a later AddIO starts again at 0. The
// generation is not carried in the epoll event and dispatchIO does not
// check it: an event queued by the kernel before a remove+add within the
// same wait batch is delivered to the new callback.
type ioWatch struct {
	fd         int
	mask       IOEvent
	cb         IOCallback
	generation uint64
}
