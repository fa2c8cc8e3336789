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

package config

import (
	liberr "github.com/sabouaram/apostol/errors"
)

// Manager holds the registered components for one process and runs them
// through their lifecycle in dependency order.
type Manager struct {
	components map[string]Component
	order      []string // registration order, used to break ties deterministically
}

// NewManager returns an empty component registry.
func NewManager() *Manager {
	return &Manager{components: make(map[string]Component)}
}

// Register adds c under its Name(). Registering the same name twice is an
// error.
func (m *Manager) Register(c Component) liberr.Error {
	name := c.Name()
	if _, exists := m.components[name]; exists {
		return liberr.New(ErrDuplicateComponent, "duplicate component name: "+name)
	}
	m.components[name] = c
	m.order = append(m.order, name)
	return nil
}

// startOrder computes a dependency-respecting order over the registered
// components via Kahn's algorithm, breaking ties by registration order so
// the result is deterministic across runs.
func (m *Manager) startOrder() ([]string, liberr.Error) {
	indegree := make(map[string]int, len(m.order))
	dependents := make(map[string][]string, len(m.order))

	for _, name := range m.order {
		indegree[name] = 0
	}
	for _, name := range m.order {
		for _, dep := range m.components[name].Dependencies() {
			if _, ok := m.components[dep]; !ok {
				return nil, liberr.New(ErrUnknownDependency, name+" depends on unregistered component "+dep)
			}
			indegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	var ready []string
	for _, name := range m.order {
		if indegree[name] == 0 {
			ready = append(ready, name)
		}
	}

	var out []string
	for len(ready) > 0 {
		next := ready[0]
		ready = ready[1:]
		out = append(out, next)

		for _, dep := range dependents[next] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	if len(out) != len(m.order) {
		return nil, liberr.New(ErrCycle, "dependency cycle among components")
	}
	return out, nil
}

// Start runs every component's Start in dependency order, stopping at the
// first error without rolling back components already started (the caller
// decides whether a partial start is fatal).
func (m *Manager) Start() liberr.Error {
	order, err := m.startOrder()
	if err != nil {
		return err
	}
	for _, name := range order {
		if e := m.components[name].Start(); e != nil {
			return liberr.New(ErrStartComponent, "start "+name, e)
		}
	}
	return nil
}

// Reload re-applies configuration to every component in dependency order.
func (m *Manager) Reload() liberr.Error {
	order, err := m.startOrder()
	if err != nil {
		return err
	}
	for _, name := range order {
		if e := m.components[name].Reload(); e != nil {
			return liberr.New(ErrStartComponent, "reload "+name, e)
		}
	}
	return nil
}

// Stop stops every component in reverse dependency order, unconditionally
// (Component.Stop never returns an error).
func (m *Manager) Stop() {
	order, err := m.startOrder()
	if err != nil {
		order = m.order
	}
	for i := len(order) - 1; i >= 0; i-- {
		m.components[order[i]].Stop()
	}
}

// Get returns the component registered under name, or nil.
func (m *Manager) Get(name string) Component {
	return m.components[name]
}

// Len returns the number of registered components.
func (m *Manager) Len() int {
	return len(m.order)
}
