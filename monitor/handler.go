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

package monitor

import (
	"bytes"

	"github.com/prometheus/common/expfmt"

	"github.com/sabouaram/apostol/nethttp"
)

// Handler renders c's Registry in Prometheus text exposition format.
// promhttp.Handler is built around net/http.Handler; the core router speaks
// nethttp.Request/Response instead, so this gathers and encodes directly
// with expfmt the same way promhttp does internally, rather than adapting
// one handler interface to the other.
func (c *Collector) Handler() func(req *nethttp.Request, resp *nethttp.Response) {
	return func(req *nethttp.Request, resp *nethttp.Response) {
		families, err := c.registry.Gather()
		if err != nil {
			resp.WriteStatus(500)
			resp.WriteBody([]byte(err.Error()))
			return
		}

		var buf bytes.Buffer
		enc := expfmt.NewEncoder(&buf, expfmt.FmtText)
		for _, mf := range families {
			if err = enc.Encode(mf); err != nil {
				resp.WriteStatus(500)
				resp.WriteBody([]byte(err.Error()))
				return
			}
		}

		resp.SetHeader("Content-Type", string(expfmt.FmtText))
		resp.WriteStatus(200)
		resp.WriteBody(buf.Bytes())
	}
}
