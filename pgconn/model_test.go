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

package pgconn_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	liberr "github.com/sabouaram/apostol/errors"
	. "github.com/sabouaram/apostol/pgconn"
)

var _ = Describe("State", func() {
	It("names every state for diagnostics", func() {
		Expect(StateDisconnected.String()).To(Equal("disconnected"))
		Expect(StateConnecting.String()).To(Equal("connecting"))
		Expect(StateReady.String()).To(Equal("ready"))
		Expect(StateBusy.String()).To(Equal("busy"))
		Expect(StateListening.String()).To(Equal("listening"))
		Expect(StateError.String()).To(Equal("error"))
	})
})

var _ = Describe("Ok", func() {
	It("is true when every result in a batch succeeded", func() {
		Expect(Ok([]QueryResult{{CommandTag: "INSERT 0 1"}, {CommandTag: "SELECT 1"}})).To(BeTrue())
	})

	It("is false when any result in a batch failed", func() {
		Expect(Ok([]QueryResult{{CommandTag: "INSERT 0 1"}, {Err: liberr.New(1, "boom", nil)}})).To(BeFalse())
	})

	It("is true for an empty batch", func() {
		Expect(Ok(nil)).To(BeTrue())
	})
})
