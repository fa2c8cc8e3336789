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

package websocket

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	liberr "github.com/sabouaram/apostol/errors"
	"github.com/sabouaram/apostol/nethttp"
	"github.com/sabouaram/apostol/nettcp"
)

// Handler processes one reassembled message. PING/PONG are handled by the
// Connection itself and never reach Handler; CLOSE terminates the
// connection before Handler would see it.
type Handler func(msg Message)

// Connection is a WebSocket connection obtained either by upgrading an
// nethttp.Connection (server side, unmasked outbound frames) or by dialing
// out (client side, masked outbound frames with a random per-frame key).
type Connection struct {
	tcp      nettcp.Connection
	parser   *Parser
	isClient bool
	handler  Handler
	closed   bool
}

func newConnection(tcp nettcp.Connection, isClient bool) *Connection {
	return &Connection{tcp: tcp, parser: NewParser(), isClient: isClient}
}

// NewConnection wraps an already-upgraded TCP connection as a server-side
// WebSocket connection (unmasked outbound frames). Most callers get a
// Connection from Upgrade instead; this is for tests and for reconstructing
// a Connection from a connection handed off across a binary upgrade.
func NewConnection(tcp nettcp.Connection) *Connection {
	return newConnection(tcp, false)
}

// SetHandler registers the callback for non-control messages.
func (c *Connection) SetHandler(h Handler) {
	c.handler = h
}

// OnReadable reads from the socket, feeds the parser, answers PING with PONG
// automatically, and reports whether the connection should stay open.
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

		msgs, perr := c.parser.Feed(buf[:n])
		if perr != nil {
			return false, perr
		}

		for _, m := range msgs {
			switch m.Opcode {
			case OpPing:
				if err := c.sendControl(OpPong, m.Payload); err != nil {
					return false, err
				}
			case OpPong:
				// no action required
			case OpClose:
				c.closed = true
				return false, nil
			default:
				if c.handler != nil {
					c.handler(m)
				}
			}
		}

		if n < len(buf) {
			break
		}
	}

	return !c.closed, nil
}

// OnWritable drains any buffered outbound tail.
func (c *Connection) OnWritable() (drained bool, err liberr.Error) {
	return c.tcp.Flush()
}

// SendText sends an unmasked (server) or masked (client) TEXT frame.
func (c *Connection) SendText(payload []byte) liberr.Error {
	return c.send(OpText, payload)
}

// SendBinary sends an unmasked (server) or masked (client) BINARY frame.
func (c *Connection) SendBinary(payload []byte) liberr.Error {
	return c.send(OpBinary, payload)
}

// SendClose sends a CLOSE frame and marks the connection as closed.
func (c *Connection) SendClose(payload []byte) liberr.Error {
	c.closed = true
	return c.sendControl(OpClose, payload)
}

func (c *Connection) send(opcode Opcode, payload []byte) liberr.Error {
	frame := encodeFrame(true, opcode, payload, c.isClient)
	_, err := c.tcp.Write(frame)
	return err
}

func (c *Connection) sendControl(opcode Opcode, payload []byte) liberr.Error {
	return c.send(opcode, payload)
}

// Close closes the underlying TCP connection.
func (c *Connection) Close() liberr.Error {
	return c.tcp.Close()
}

// Dial performs a client-side WebSocket handshake over an already-connected
// TCP connection: it writes the GET/Upgrade request and returns the client
// Connection together with the generated key. The 101 response arrives later
// over the same non-blocking, event-loop-driven connection; ValidateAccept
// checks it against that key.
func Dial(tcp nettcp.Connection, host, path string) (*Connection, string, liberr.Error) {
	keyBytes := make([]byte, 16)
	if _, err := rand.Read(keyBytes); err != nil {
		return nil, "", liberr.New(ErrBadAcceptKey, "generate Sec-WebSocket-Key", err)
	}
	key := base64.StdEncoding.EncodeToString(keyBytes)

	req := fmt.Sprintf(
		"GET %s HTTP/1.1\r\nHost: %s\r\nUpgrade: websocket\r\nConnection: Upgrade\r\nSec-WebSocket-Key: %s\r\nSec-WebSocket-Version: 13\r\n\r\n",
		path, host, key,
	)

	if _, err := tcp.Write([]byte(req)); err != nil {
		return nil, "", err
	}

	return newConnection(tcp, true), key, nil
}

// ValidateAccept checks a received 101 response against the key sent with
// Dial, per RFC 6455 section 4.1.
func ValidateAccept(resp *nethttp.Response, sentKey string) liberr.Error {
	if resp.StatusCode != http.StatusSwitchingProtocols {
		return liberr.New(ErrBadAcceptKey, "response is not 101 Switching Protocols", nil)
	}

	var got string
	for _, h := range resp.Headers {
		if strings.EqualFold(h.Name, "Sec-WebSocket-Accept") {
			got = h.Value
			break
		}
	}

	if got != AcceptKey(sentKey) {
		return liberr.New(ErrBadAcceptKey, "Sec-WebSocket-Accept mismatch", nil)
	}

	return nil
}
