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

// Package wsrpc implements a small JSON-RPC-like envelope carried over
// websocket text frames: open/close/call/call-result/call-error messages
// correlated by a caller-supplied unique id, on top of which a Dispatcher
// matches results and errors back to the Call that started them.
package wsrpc

import (
	liberr "github.com/sabouaram/apostol/errors"
)

// Type identifies a Message's role, matching the single-letter "t" field
// of the wire encoding.
type Type int

const (
	TypeOpen Type = iota
	TypeClose
	TypeCall
	TypeCallResult
	TypeCallError
)

const (
	ErrMalformedEnvelope = liberr.MinPkgWsRPC + iota
	ErrUnknownType
	ErrUnknownID
)
