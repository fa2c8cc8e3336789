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

// Package websocket implements RFC 6455 framing and the HTTP upgrade
// handshake on top of nethttp and nettcp, driven incrementally from an
// external event loop rather than a blocking read/write pair.
package websocket

import (
	liberr "github.com/sabouaram/apostol/errors"
)

// Opcode identifies a WebSocket frame's payload interpretation.
type Opcode byte

const (
	OpContinuation Opcode = 0x0
	OpText         Opcode = 0x1
	OpBinary       Opcode = 0x2
	OpClose        Opcode = 0x8
	OpPing         Opcode = 0x9
	OpPong         Opcode = 0xA
)

func (o Opcode) isControl() bool {
	return o == OpClose || o == OpPing || o == OpPong
}

const acceptGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

const (
	ErrMalformedFrame = liberr.MinPkgWebSocket + iota
	ErrFrameTooLarge
	ErrNotUpgradeRequest
	ErrBadAcceptKey
	ErrWrite
)

// MaxMessageBytes bounds the reassembled payload of one logical message
// (after defragmentation) to guard against unbounded memory growth.
const MaxMessageBytes = 16 * 1024 * 1024
