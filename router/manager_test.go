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

package router_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sabouaram/apostol/nethttp"
	. "github.com/sabouaram/apostol/router"
)

func req(method, path string) *nethttp.Request {
	return &nethttp.Request{Method: method, Path: path}
}

var _ = Describe("Manager", func() {
	It("matches a literal pattern exactly", func() {
		m := NewManager("")
		var got PathParams
		_, err := m.Add("GET", "/status", func(req *nethttp.Request, resp *nethttp.Response, params PathParams) {
			got = params
			resp.WriteStatus(200)
		})
		Expect(err).To(BeNil())

		resp := nethttp.NewResponse()
		Expect(m.Dispatch(req("GET", "/status"), resp)).To(BeTrue())
		Expect(resp.StatusCode).To(Equal(200))
		Expect(got).To(BeNil())
	})

	It("captures a parametric segment", func() {
		m := NewManager("")
		var got PathParams
		_, err := m.Add("GET", "/users/{id}", func(req *nethttp.Request, resp *nethttp.Response, params PathParams) {
			got = params
		})
		Expect(err).To(BeNil())

		resp := nethttp.NewResponse()
		Expect(m.Dispatch(req("GET", "/users/42"), resp)).To(BeTrue())
		Expect(got).To(Equal(PathParams{"id": "42"}))
	})

	It("prefers an exact match over a parametric one for the same path", func() {
		m := NewManager("")
		var which string
		_, err := m.Add("GET", "/users/me", func(req *nethttp.Request, resp *nethttp.Response, params PathParams) {
			which = "exact"
		})
		Expect(err).To(BeNil())
		_, err = m.Add("GET", "/users/{id}", func(req *nethttp.Request, resp *nethttp.Response, params PathParams) {
			which = "param"
		})
		Expect(err).To(BeNil())

		resp := nethttp.NewResponse()
		Expect(m.Dispatch(req("GET", "/users/me"), resp)).To(BeTrue())
		Expect(which).To(Equal("exact"))
	})

	It("matches a trailing wildcard against one or more remaining segments", func() {
		m := NewManager("")
		var got PathParams
		_, err := m.Add("GET", "/files/*", func(req *nethttp.Request, resp *nethttp.Response, params PathParams) {
			got = params
		})
		Expect(err).To(BeNil())

		resp := nethttp.NewResponse()
		Expect(m.Dispatch(req("GET", "/files/a/b/c"), resp)).To(BeTrue())
		Expect(got).To(Equal(PathParams{"*": "a/b/c"}))

		resp2 := nethttp.NewResponse()
		Expect(m.Dispatch(req("GET", "/files"), resp2)).To(BeFalse())
	})

	It("returns false for a path matching no pattern", func() {
		m := NewManager("")
		_, err := m.Add("GET", "/status", func(req *nethttp.Request, resp *nethttp.Response, params PathParams) {})
		Expect(err).To(BeNil())

		resp := nethttp.NewResponse()
		Expect(m.Dispatch(req("GET", "/nope"), resp)).To(BeFalse())
	})

	It("replies 405 with Allow when the path matches but the method doesn't", func() {
		m := NewManager("")
		_, err := m.Add("GET", "/status", func(req *nethttp.Request, resp *nethttp.Response, params PathParams) {})
		Expect(err).To(BeNil())
		_, err = m.Add("POST", "/status", func(req *nethttp.Request, resp *nethttp.Response, params PathParams) {})
		Expect(err).To(BeNil())

		resp := nethttp.NewResponse()
		Expect(m.Dispatch(req("DELETE", "/status"), resp)).To(BeTrue())
		Expect(resp.StatusCode).To(Equal(405))
		allow, ok := header(resp, "Allow")
		Expect(ok).To(BeTrue())
		Expect(allow).To(Equal("GET, POST"))
	})

	It("replies 204 with Allow for OPTIONS against a matching pattern", func() {
		m := NewManager("")
		_, err := m.Add("GET", "/status", func(req *nethttp.Request, resp *nethttp.Response, params PathParams) {})
		Expect(err).To(BeNil())

		resp := nethttp.NewResponse()
		Expect(m.Dispatch(req("OPTIONS", "/status"), resp)).To(BeTrue())
		Expect(resp.StatusCode).To(Equal(204))
		allow, ok := header(resp, "Allow")
		Expect(ok).To(BeTrue())
		Expect(allow).To(Equal("GET"))
	})

	It("strips a configured base path before matching", func() {
		m := NewManager("/api/v1")
		var hit bool
		_, err := m.Add("GET", "/status", func(req *nethttp.Request, resp *nethttp.Response, params PathParams) {
			hit = true
		})
		Expect(err).To(BeNil())

		resp := nethttp.NewResponse()
		Expect(m.Dispatch(req("GET", "/api/v1/status"), resp)).To(BeTrue())
		Expect(hit).To(BeTrue())

		resp2 := nethttp.NewResponse()
		Expect(m.Dispatch(req("GET", "/status"), resp2)).To(BeFalse())
	})

	It("rejects a duplicate (method, pattern) registration", func() {
		m := NewManager("")
		_, err := m.Add("GET", "/status", func(req *nethttp.Request, resp *nethttp.Response, params PathParams) {})
		Expect(err).To(BeNil())
		_, err = m.Add("GET", "/status", func(req *nethttp.Request, resp *nethttp.Response, params PathParams) {})
		Expect(err).ToNot(BeNil())
	})
})

func header(resp *nethttp.Response, name string) (string, bool) {
	for _, h := range resp.Headers {
		if h.Name == name {
			return h.Value, true
		}
	}
	return "", false
}
