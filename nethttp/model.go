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

// Package nethttp implements an incremental, byte-at-a-time-safe HTTP/1.1
// request parser and a per-connection state machine driven by an external
// event loop. It does not use net/http on the server side: net/http owns its
// own blocking accept/read loop and gives no hook for an in-place upgrade to
// WebSocket on the same fd, which the framework requires.
package nethttp

import (
	liberr "github.com/sabouaram/apostol/errors"
)

const (
	ErrMalformedStartLine = liberr.MinPkgNetHTTP + iota
	ErrMalformedHeader
	ErrBodyTooLarge
	ErrWrite
)

// MaxHeaderBytes bounds the buffered bytes of one unterminated request line
// or header line. Complete header lines are not counted against it, so the
// total size and number of headers in a request are not limited.
const MaxHeaderBytes = 64 * 1024
