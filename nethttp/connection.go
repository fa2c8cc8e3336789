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

package nethttp

import (
	liberr "github.com/sabouaram/apostol/errors"
	"github.com/sabouaram/apostol/nettcp"
)

// Handler processes one request, filling in the response. Returning with
// resp.Deferred true tells the connection to park: nothing is serialised
// until the same handler (or whoever holds the Response) arranges for
// Complete to be called.
type Handler func(req *Request, resp *Response)

// Connection processes one request at a time over an underlying TCP
// connection, serialising pipelined requests in order and pausing when a
// response is deferred.
type Connection struct {
	tcp     nettcp.Connection
	parser  *Parser
	handler Handler

	pendingReqs []*Request
	parked      bool
	closeAfter  bool
}

// NewConnection wraps a non-blocking TCP connection with an HTTP/1.1 parser
// and dispatch loop.
func NewConnection(tcp nettcp.Connection, handler Handler) *Connection {
	return &Connection{
		tcp:     tcp,
		parser:  NewParser(),
		handler: handler,
	}
}

// OnReadable is invoked by the owning event loop when the socket is
// readable. It returns keepOpen=false when the connection should be closed
// (parse failure, non-keep-alive request served, or peer hang-up).
func (c *Connection) OnReadable() (keepOpen bool, err liberr.Error) {
	buf := make([]byte, 16*1024)

	for {
		n, rerr := c.tcp.Read(buf)
		if rerr != nil {
			return false, rerr
		}
		if n == 0 {
			break
		}

		reqs, perr := c.parser.Feed(buf[:n])
		if perr != nil {
			return false, perr
		}

		c.pendingReqs = append(c.pendingReqs, reqs...)

		if n < len(buf) {
			break
		}
	}

	return c.drainPending()
}

func (c *Connection) drainPending() (bool, liberr.Error) {
	for !c.parked && len(c.pendingReqs) > 0 {
		req := c.pendingReqs[0]
		c.pendingReqs = c.pendingReqs[1:]

		resp := NewResponse()
		c.handler(req, resp)

		if !req.KeepAlive() {
			c.closeAfter = true
		}

		if resp.Deferred {
			c.parked = true
			return true, nil
		}

		if err := c.writeResponse(resp); err != nil {
			return false, err
		}

		if c.closeAfter {
			return false, nil
		}
	}

	return true, nil
}

// Complete is called by the module layer once a deferred response is ready.
// It unparks the connection, writes the response, and resumes processing
// any requests that pipelined in while parked.
func (c *Connection) Complete(resp *Response) (keepOpen bool, err liberr.Error) {
	c.parked = false

	if werr := c.writeResponse(resp); werr != nil {
		return false, werr
	}

	if c.closeAfter {
		return false, nil
	}

	return c.drainPending()
}

func (c *Connection) writeResponse(resp *Response) liberr.Error {
	_, err := c.tcp.Write(resp.Serialize())
	return err
}

// OnWritable drains any buffered response tail.
func (c *Connection) OnWritable() (drained bool, err liberr.Error) {
	return c.tcp.Flush()
}

// TCP exposes the underlying connection, e.g. for a WebSocket upgrade that
// moves it out into a WsConnection.
func (c *Connection) TCP() nettcp.Connection {
	return c.tcp
}
