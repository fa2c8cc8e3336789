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

package monitor_test

import (
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sabouaram/apostol/nethttp"
	. "github.com/sabouaram/apostol/monitor"
)

type fakePool struct{ queue, conns int }

func (f fakePool) QueueSize() int       { return f.queue }
func (f fakePool) ConnectionCount() int { return f.conns }

type fakeLoop struct{ watched int }

func (f fakeLoop) WatchedFDs() int { return f.watched }

type fakeModules struct{ n int }

func (f fakeModules) Len() int { return f.n }

var _ = Describe("Collector", func() {
	It("renders sampled values in Prometheus text exposition format", func() {
		c := NewCollector("apostol")
		c.ObservePool(fakePool{queue: 3, conns: 2})
		c.ObserveLoop(fakeLoop{watched: 5})
		c.ObserveModules(fakeModules{n: 1})
		c.ObserveHeartbeat(10 * time.Millisecond)

		resp := nethttp.NewResponse()
		c.Handler()(nil, resp)

		Expect(resp.StatusCode).To(Equal(200))
		body := string(resp.Serialize())
		Expect(body).To(ContainSubstring("apostol_pool_queue_depth 3"))
		Expect(body).To(ContainSubstring("apostol_pool_connections 2"))
		Expect(body).To(ContainSubstring("apostol_eventloop_watched_fds 5"))
		Expect(body).To(ContainSubstring("apostol_module_registered 1"))
		Expect(body).To(ContainSubstring("apostol_worker_heartbeat_seconds"))
	})

	It("tolerates nil sources instead of panicking", func() {
		c := NewCollector("apostol")
		c.ObservePool(nil)
		c.ObserveLoop(nil)
		c.ObserveModules(nil)

		resp := nethttp.NewResponse()
		c.Handler()(nil, resp)
		Expect(resp.StatusCode).To(Equal(200))
		Expect(strings.Contains(string(resp.Serialize()), "apostol_pool_queue_depth 0")).To(BeTrue())
	})
})
