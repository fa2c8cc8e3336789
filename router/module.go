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

package router

import (
	"github.com/sabouaram/apostol/nethttp"
)

// Module adapts a Manager to module.Module (without importing that package,
// to avoid a cycle — module.Module is a structural interface, and Module's
// method set satisfies it). worker.modules.Register(router.NewModule(...))
// mounts the whole route table as a single dispatch-fabric entry.
type Module struct {
	name    string
	enabled bool
	mgr     *Manager
}

// NewModule wraps mgr as a named, always-enabled module.Module.
func NewModule(name string, mgr *Manager) *Module {
	return &Module{name: name, enabled: true, mgr: mgr}
}

func (m *Module) Name() string { return m.name }

func (m *Module) Enabled() bool { return m.enabled }

// SetEnabled toggles whether Execute ever dispatches, letting a reload
// pull the whole route table in or out without unregistering it.
func (m *Module) SetEnabled(enabled bool) { m.enabled = enabled }

func (m *Module) Execute(req *nethttp.Request, resp *nethttp.Response) bool {
	if !m.enabled {
		return false
	}
	return m.mgr.Dispatch(req, resp)
}
