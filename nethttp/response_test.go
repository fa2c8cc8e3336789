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

package nethttp_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/sabouaram/apostol/nethttp"
)

var _ = Describe("Response", func() {
	It("serialises status line, headers and body with an inferred Content-Length", func() {
		r := NewResponse()
		r.WriteStatus(201)
		r.SetHeader("X-Test", "1")
		r.WriteBody([]byte("hi"))

		out := string(r.Serialize())
		Expect(out).To(HavePrefix("HTTP/1.1 201 Created\r\n"))
		Expect(out).To(ContainSubstring("X-Test: 1\r\n"))
		Expect(out).To(ContainSubstring("Content-Length: 2\r\n"))
		Expect(out).To(HaveSuffix("\r\n\r\nhi"))
	})

	It("does not override an explicitly set Content-Length", func() {
		r := NewResponse()
		r.SetHeader("Content-Length", "0")
		r.WriteBody([]byte("ignored-by-header-count"))

		out := string(r.Serialize())
		Expect(strings.Count(out, "Content-Length:")).To(Equal(1))
		Expect(out).To(ContainSubstring("Content-Length: 0\r\n"))
	})
})
