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
	"net/url"
	"strings"
)

// Header is one request header in wire order.
type Header struct {
	Name  string
	Value string
}

// Request is a fully parsed HTTP/1.1 request line + headers + body.
type Request struct {
	Method     string
	Path       string
	RawQuery   string
	VersionMaj int
	VersionMin int
	Headers    []Header
	Body       []byte

	lookup map[string]string
}

func newRequest() *Request {
	return &Request{lookup: make(map[string]string)}
}

func (r *Request) addHeader(name, value string) {
	r.Headers = append(r.Headers, Header{Name: name, Value: value})
	r.lookup[strings.ToLower(name)] = value
}

// Header performs a case-insensitive header lookup.
func (r *Request) Header(name string) (string, bool) {
	v, ok := r.lookup[strings.ToLower(name)]
	return v, ok
}

// Host returns the Host header value.
func (r *Request) Host() string {
	v, _ := r.Header("Host")
	return v
}

// Origin returns the Origin header value.
func (r *Request) Origin() string {
	v, _ := r.Header("Origin")
	return v
}

// RealIP returns the X-Real-IP header value.
func (r *Request) RealIP() string {
	v, _ := r.Header("X-Real-IP")
	return v
}

// ForwardedProto returns X-Forwarded-Proto, defaulting to "http".
func (r *Request) ForwardedProto() string {
	if v, ok := r.Header("X-Forwarded-Proto"); ok && v != "" {
		return v
	}
	return "http"
}

// UserAgent returns the User-Agent header value.
func (r *Request) UserAgent() string {
	v, _ := r.Header("User-Agent")
	return v
}

// KeepAlive reports whether the connection should stay open after this
// request, per HTTP/1.0 and HTTP/1.1 defaults combined with an explicit
// Connection header.
func (r *Request) KeepAlive() bool {
	conn, has := r.Header("Connection")
	conn = strings.ToLower(strings.TrimSpace(conn))

	if r.VersionMaj == 1 && r.VersionMin >= 1 {
		return !(has && conn == "close")
	}
	return has && conn == "keep-alive"
}

// Cookie performs a lookup by name in the Cookie header.
func (r *Request) Cookie(name string) (string, bool) {
	raw, ok := r.Header("Cookie")
	if !ok {
		return "", false
	}

	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		k, v, found := strings.Cut(part, "=")
		if found && k == name {
			return v, true
		}
	}
	return "", false
}

// Query performs a URL-decoded lookup in the request's raw query string.
func (r *Request) Query(name string) (string, bool) {
	values, err := url.ParseQuery(r.RawQuery)
	if err != nil {
		return "", false
	}
	if !values.Has(name) {
		return "", false
	}
	return values.Get(name), true
}
