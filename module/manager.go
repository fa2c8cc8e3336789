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

package module

import (
	"time"

	liberr "github.com/sabouaram/apostol/errors"
	"github.com/sabouaram/apostol/nethttp"
)

// Manager holds Modules in registration order and dispatches requests
// through them in that order, stopping at the first one that handles the
// request. A Manager is not safe for concurrent Register calls, matching
// the cooperative single-goroutine-per-worker model every other component
// in this tree follows; Execute/Heartbeat are read-only over the slice and
// safe to call repeatedly from that same goroutine.
type Manager struct {
	modules []Module
	names   map[string]bool
}

// NewManager returns an empty Manager ready for Register calls.
func NewManager() *Manager {
	return &Manager{names: make(map[string]bool)}
}

// Register appends m to the dispatch order. Registering two Modules under
// the same Name is an error; the second registration is rejected and the
// Manager is left unchanged.
func (m *Manager) Register(mod Module) liberr.Error {
	name := mod.Name()
	if m.names[name] {
		return liberr.New(ErrDuplicateName, "duplicate module name: "+name)
	}
	m.names[name] = true
	m.modules = append(m.modules, mod)
	return nil
}

// Start calls OnStart on every Module implementing Starter, in registration
// order. It stops and returns the first error encountered; Modules already
// started are not rolled back (the caller, normally the worker's own
// startup path, is expected to call Stop on any partial failure).
func (m *Manager) Start() liberr.Error {
	for _, mod := range m.modules {
		s, ok := mod.(Starter)
		if !ok {
			continue
		}
		if err := s.OnStart(); err != nil {
			return liberr.New(ErrStart, "module start failed: "+mod.Name(), err)
		}
	}
	return nil
}

// Stop calls OnStop on every Module implementing Stopper, in reverse
// registration order, unconditionally visiting every Module (OnStop itself
// reports no error, matching the best-effort shutdown contract the rest of
// this tree uses).
func (m *Manager) Stop() {
	for i := len(m.modules) - 1; i >= 0; i-- {
		if s, ok := m.modules[i].(Stopper); ok {
			s.OnStop()
		}
	}
}

// Heartbeat calls Heartbeat(now) on every enabled Module implementing it.
// The worker calls this once per tick.
func (m *Manager) Heartbeat(now time.Time) {
	for _, mod := range m.modules {
		if !mod.Enabled() {
			continue
		}
		if h, ok := mod.(Heartbeat); ok {
			h.Heartbeat(now)
		}
	}
}

// Execute dispatches req/resp to each enabled Module in registration order
// and returns true as soon as one reports it handled the request. It
// returns false if every enabled Module declines (the HTTP layer then
// replies 404).
func (m *Manager) Execute(req *nethttp.Request, resp *nethttp.Response) bool {
	for _, mod := range m.modules {
		if !mod.Enabled() {
			continue
		}
		if mod.Execute(req, resp) {
			return true
		}
	}
	return false
}

// Len reports the number of registered modules.
func (m *Manager) Len() int { return len(m.modules) }
