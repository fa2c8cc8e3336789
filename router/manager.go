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
	"strings"

	liberr "github.com/sabouaram/apostol/errors"
	"github.com/sabouaram/apostol/nethttp"
)

// AuthHook is consulted before any route registered with RequireAuth runs.
// Check returns true if it already wrote a response (401/403) and the
// caller must not invoke the matched handler. authcontract.Authorization
// implements this.
type AuthHook interface {
	Check(req *nethttp.Request, resp *nethttp.Response) bool
}

// Manager holds routes and dispatches requests against them. It is meant to
// sit behind one module.Module's Execute, so its Dispatch signature mirrors
// the handled-or-not contract module.Manager.Execute uses.
type Manager struct {
	basePath string
	routes   []*Route
	auth     AuthHook
}

// SetAuth installs the hook consulted for routes registered with
// RequireAuth. A nil hook (the default) means such routes run unguarded.
func (m *Manager) SetAuth(hook AuthHook) {
	m.auth = hook
}

// NewManager returns an empty Manager. basePath, if non-empty, is stripped
// from every incoming request path before matching and prepended to every
// pattern when emitting OpenAPI.
func NewManager(basePath string) *Manager {
	return &Manager{basePath: strings.TrimSuffix(basePath, "/")}
}

// Add registers (method, pattern, handler) and returns the Route for
// fluent OpenAPI metadata. Registering the same (method, pattern) pair
// twice is an error.
func (m *Manager) Add(method, pattern string, handler Handler) (*Route, liberr.Error) {
	method = strings.ToUpper(method)
	for _, r := range m.routes {
		if r.method == method && r.pattern == pattern {
			return nil, liberr.New(ErrDuplicateRoute, "duplicate route: "+method+" "+pattern)
		}
	}

	r := &Route{method: method, pattern: pattern, segments: compilePattern(pattern), handler: handler}
	m.routes = append(m.routes, r)
	return r, nil
}

// Dispatch matches req against the registered routes and reports whether it
// was handled. A path that matches no pattern returns false so a caller can
// fall through to its own 404. A path that matches a pattern under a
// different method replies 405 with Allow; OPTIONS against a matching
// pattern replies 204 with Allow. Both of those count as handled.
func (m *Manager) Dispatch(req *nethttp.Request, resp *nethttp.Response) bool {
	path, ok := m.normalize(req.Path)
	if !ok {
		return false
	}
	pathSegs := splitSegments(path)

	bestScore := -1
	var best []*Route
	for _, r := range m.routes {
		if _, ok := matchSegments(r.segments, pathSegs); !ok {
			continue
		}
		score := specificity(r.segments)
		// A trailing wildcard scores as wildcard over the rest of the path,
		// so every candidate is compared over the same number of positions.
		for i := len(r.segments); i < len(pathSegs); i++ {
			score *= 3
		}
		switch {
		case score > bestScore:
			bestScore = score
			best = []*Route{r}
		case score == bestScore:
			best = append(best, r)
		}
	}
	if len(best) == 0 {
		return false
	}

	pattern := best[0].pattern
	var group []*Route
	for _, r := range best {
		if r.pattern == pattern {
			group = append(group, r)
		}
	}

	methods := make([]string, 0, len(group))
	for _, r := range group {
		methods = append(methods, r.method)
	}
	allow := strings.Join(methods, ", ")

	if req.Method == "OPTIONS" {
		resp.WriteStatus(204)
		resp.SetHeader("Allow", allow)
		return true
	}

	for _, r := range group {
		if r.method == req.Method {
			if r.authReq && m.auth != nil && m.auth.Check(req, resp) {
				return true
			}
			params, _ := matchSegments(r.segments, pathSegs)
			r.handler(req, resp, params)
			return true
		}
	}

	resp.WriteStatus(405)
	resp.SetHeader("Allow", allow)
	return true
}

// normalize strips one trailing slash (except for the root) and the
// configured base path; ok is false if the request path doesn't carry the
// base path prefix at all.
func (m *Manager) normalize(path string) (string, bool) {
	if path != "/" && strings.HasSuffix(path, "/") {
		path = strings.TrimSuffix(path, "/")
	}
	if path == "" {
		path = "/"
	}

	if m.basePath == "" {
		return path, true
	}
	if path == m.basePath {
		return "/", true
	}
	if strings.HasPrefix(path, m.basePath+"/") {
		return path[len(m.basePath):], true
	}
	return "", false
}

func splitSegments(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
