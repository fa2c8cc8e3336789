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
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// Response is built by the upstream handler and serialised onto the wire
// once complete. Deferred marks a response whose body will be supplied
// later (typically after a PgPool query completes), pausing pipelining on
// the owning Connection until Complete is called.
type Response struct {
	StatusCode int
	Headers    []Header
	Body       []byte
	Deferred   bool
}

// NewResponse builds an empty 200 OK response with no headers.
func NewResponse() *Response {
	return &Response{StatusCode: http.StatusOK}
}

// SetHeader appends a response header, replacing any with the same
// case-insensitive name already set.
func (r *Response) SetHeader(name, value string) {
	lower := strings.ToLower(name)
	for i := range r.Headers {
		if strings.ToLower(r.Headers[i].Name) == lower {
			r.Headers[i].Value = value
			return
		}
	}
	r.Headers = append(r.Headers, Header{Name: name, Value: value})
}

// WriteStatus sets the status code.
func (r *Response) WriteStatus(code int) {
	r.StatusCode = code
}

// WriteBody sets the response body.
func (r *Response) WriteBody(body []byte) {
	r.Body = body
}

// Serialize renders the full HTTP/1.1 response, setting Content-Length
// unless the caller already provided one.
func (r *Response) Serialize() []byte {
	hasContentLength := false
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, "Content-Length") {
			hasContentLength = true
			break
		}
	}

	var b strings.Builder
	text := http.StatusText(r.StatusCode)
	if text == "" {
		text = "Unknown"
	}

	fmt.Fprintf(&b, "HTTP/1.1 %d %s\r\n", r.StatusCode, text)
	for _, h := range r.Headers {
		fmt.Fprintf(&b, "%s: %s\r\n", h.Name, h.Value)
	}
	if !hasContentLength {
		fmt.Fprintf(&b, "Content-Length: %s\r\n", strconv.Itoa(len(r.Body)))
	}
	b.WriteString("\r\n")

	out := make([]byte, 0, b.Len()+len(r.Body))
	out = append(out, b.String()...)
	out = append(out, r.Body...)
	return out
}
