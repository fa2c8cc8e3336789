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
	"crypto/sha1"
	"encoding/base64"
	"net/http"
	"strings"

	liberr "github.com/sabouaram/apostol/errors"
	"github.com/sabouaram/apostol/nethttp"
)

// IsUpgradeRequest reports whether req is a well-formed WebSocket upgrade
// request per RFC 6455 section 4.2.1.
func IsUpgradeRequest(req *nethttp.Request) bool {
	if req.Method != http.MethodGet {
		return false
	}

	upgrade, ok := req.Header("Upgrade")
	if !ok || !strings.Contains(strings.ToLower(upgrade), "websocket") {
		return false
	}

	conn, ok := req.Header("Connection")
	if !ok || !strings.Contains(strings.ToLower(conn), "upgrade") {
		return false
	}

	_, ok = req.Header("Sec-WebSocket-Key")
	return ok
}

// AcceptKey computes Sec-WebSocket-Accept from a client's Sec-WebSocket-Key.
func AcceptKey(key string) string {
	sum := sha1.Sum([]byte(key + acceptGUID))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// Upgrade completes the HTTP -> WebSocket handshake: it writes the 101
// response directly on the underlying TCP connection and wraps that
// connection as a server-side Connection. httpConn itself is not changed:
// it keeps its reference to the same TCP connection and its HTTP parser.
func Upgrade(httpConn *nethttp.Connection, req *nethttp.Request) (*Connection, liberr.Error) {
	if !IsUpgradeRequest(req) {
		return nil, liberr.New(ErrNotUpgradeRequest, "not a websocket upgrade request", nil)
	}

	key, _ := req.Header("Sec-WebSocket-Key")

	resp := nethttp.NewResponse()
	resp.WriteStatus(http.StatusSwitchingProtocols)
	resp.SetHeader("Upgrade", "websocket")
	resp.SetHeader("Connection", "Upgrade")
	resp.SetHeader("Sec-WebSocket-Accept", AcceptKey(key))

	tcp := httpConn.TCP()
	if _, err := tcp.Write(resp.Serialize()); err != nil {
		return nil, err
	}

	return newConnection(tcp, false), nil
}
