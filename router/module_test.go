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

var _ = Describe("Module", func() {
	It("dispatches through the wrapped Manager while enabled", func() {
		m := NewManager("")
		_, err := m.Add("GET", "/ping", func(req *nethttp.Request, resp *nethttp.Response, params PathParams) {
			resp.WriteStatus(200)
		})
		Expect(err).To(BeNil())

		mod := NewModule("http", m)
		Expect(mod.Name()).To(Equal("http"))
		Expect(mod.Enabled()).To(BeTrue())

		resp := nethttp.NewResponse()
		Expect(mod.Execute(req("GET", "/ping"), resp)).To(BeTrue())
		Expect(resp.StatusCode).To(Equal(200))
	})

	It("declines to dispatch once disabled", func() {
		m := NewManager("")
		_, err := m.Add("GET", "/ping", func(req *nethttp.Request, resp *nethttp.Response, params PathParams) {
			resp.WriteStatus(200)
		})
		Expect(err).To(BeNil())

		mod := NewModule("http", m)
		mod.SetEnabled(false)
		Expect(mod.Enabled()).To(BeFalse())

		resp := nethttp.NewResponse()
		Expect(mod.Execute(req("GET", "/ping"), resp)).To(BeFalse())
	})
})
