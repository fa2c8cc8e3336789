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

package app_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/sabouaram/apostol/app"
)

var _ = Describe("SelectRole", func() {
	It("picks signaller whenever -s is given, regardless of other flags", func() {
		Expect(SelectRole(Options{Signal: "stop", Master: true})).To(Equal(RoleSignaller))
		Expect(SelectRole(Options{Signal: "reopen"})).To(Equal(RoleSignaller))
	})

	It("picks single when master=false and helper=false", func() {
		Expect(SelectRole(Options{})).To(Equal(RoleSingle))
	})

	It("picks a standalone helper when master=false and helper=true", func() {
		Expect(SelectRole(Options{Helper: true})).To(Equal(RoleHelper))
	})

	It("picks master when master=true, regardless of helper", func() {
		Expect(SelectRole(Options{Master: true})).To(Equal(RoleMaster))
		Expect(SelectRole(Options{Master: true, Helper: true})).To(Equal(RoleMaster))
	})
})
