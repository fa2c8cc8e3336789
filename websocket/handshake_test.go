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

package websocket_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sabouaram/apostol/nethttp"
	. "github.com/sabouaram/apostol/websocket"
)

func parseRequest(raw string) *nethttp.Request {
	p := nethttp.NewParser()
	reqs, err := p.Feed([]byte(raw))
	Expect(err).To(BeNil())
	Expect(reqs).To(HaveLen(1))
	return reqs[0]
}

var _ = Describe("AcceptKey", func() {
	It("matches the RFC 6455 worked example", func() {
		Expect(AcceptKey("dGhlIHNhbXBsZSBub25jZQ==")).To(Equal("s3pPLMBiTxaQ9kYGzzhZRbK+xOo="))
	})
})

var _ = Describe("IsUpgradeRequest", func() {
	It("recognizes a well-formed upgrade request", func() {
		req := parseRequest("GET /ws HTTP/1.1\r\nHost: h\r\nUpgrade: websocket\r\nConnection: Upgrade\r\nSec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n\r\n")
		Expect(IsUpgradeRequest(req)).To(BeTrue())
	})

	It("rejects a request missing the Sec-WebSocket-Key header", func() {
		req := parseRequest("GET /ws HTTP/1.1\r\nHost: h\r\nUpgrade: websocket\r\nConnection: Upgrade\r\n\r\n")
		Expect(IsUpgradeRequest(req)).To(BeFalse())
	})

	It("rejects a non-GET method", func() {
		req := parseRequest("POST /ws HTTP/1.1\r\nHost: h\r\nUpgrade: websocket\r\nConnection: Upgrade\r\nSec-WebSocket-Key: k\r\n\r\n")
		Expect(IsUpgradeRequest(req)).To(BeFalse())
	})

	It("is case-insensitive about Upgrade and Connection values", func() {
		req := parseRequest("GET /ws HTTP/1.1\r\nHost: h\r\nUpgrade: WebSocket\r\nConnection: keep-alive, Upgrade\r\nSec-WebSocket-Key: k\r\n\r\n")
		Expect(IsUpgradeRequest(req)).To(BeTrue())
	})
})
