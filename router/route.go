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

	"github.com/sabouaram/apostol/nethttp"
)

// PathParams holds the segments a pattern's "{name}" and trailing "*"
// captured from one matched path.
type PathParams map[string]string

// Handler serves one matched request; params is nil if the pattern had no
// captures.
type Handler func(req *nethttp.Request, resp *nethttp.Response, params PathParams)

// ParamDoc documents one request parameter for OpenAPI emission; it has no
// effect on matching or dispatch.
type ParamDoc struct {
	Name        string
	In          string // "path", "query", or "header"
	Description string
	Required    bool
}

// ResponseDoc documents one possible response status for OpenAPI emission.
type ResponseDoc struct {
	Code        int
	Description string
}

type patSegment struct {
	kind    segmentKind
	literal string
	name    string
}

// Route is one (method, pattern, handler) registration plus the fluent
// metadata used only when emitting OpenAPI.
type Route struct {
	method   string
	pattern  string
	segments []patSegment
	handler  Handler

	summary    string
	tag        string
	deprecated bool
	params     []ParamDoc
	responses  []ResponseDoc
	authReq    bool
}

// RequireAuth marks the route as needing the Manager's AuthHook to pass
// before the handler runs, and returns r for chaining.
func (r *Route) RequireAuth() *Route {
	r.authReq = true
	return r
}

// Summary sets the OpenAPI operation summary and returns r for chaining.
func (r *Route) Summary(s string) *Route {
	r.summary = s
	return r
}

// Tag sets the OpenAPI operation's tag and returns r for chaining.
func (r *Route) Tag(t string) *Route {
	r.tag = t
	return r
}

// Deprecated marks the route deprecated in OpenAPI emission and returns r
// for chaining.
func (r *Route) Deprecated() *Route {
	r.deprecated = true
	return r
}

// Param documents one request parameter and returns r for chaining.
func (r *Route) Param(p ParamDoc) *Route {
	r.params = append(r.params, p)
	return r
}

// Response documents one possible response status and returns r for
// chaining.
func (r *Route) Response(code int, description string) *Route {
	r.responses = append(r.responses, ResponseDoc{Code: code, Description: description})
	return r
}

func compilePattern(pattern string) []patSegment {
	trimmed := strings.Trim(pattern, "/")
	if trimmed == "" {
		return nil
	}

	parts := strings.Split(trimmed, "/")
	segs := make([]patSegment, 0, len(parts))
	for _, part := range parts {
		switch {
		case part == "*":
			segs = append(segs, patSegment{kind: segWildcard, name: "*"})
		case strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") && len(part) > 2:
			segs = append(segs, patSegment{kind: segParam, name: part[1 : len(part)-1]})
		default:
			segs = append(segs, patSegment{kind: segLiteral, literal: part})
		}
	}
	return segs
}

// specificity ranks a compiled pattern for tie-breaking between competing
// matches: literal segments outrank parametric, which outrank wildcard, and
// earlier segments carry more weight than later ones. Dispatch extends a
// trailing wildcard's score to the length of the request path, so among the
// patterns matching one path a longer literal prefix always wins over a
// shorter one.
func specificity(segs []patSegment) int {
	score := 0
	for _, s := range segs {
		score = score*3 + s.kind.rank()
	}
	return score
}

// matchSegments reports whether segs matches pathSegs and, if so, the
// captured path parameters.
func matchSegments(segs []patSegment, pathSegs []string) (PathParams, bool) {
	var params PathParams

	for i, seg := range segs {
		if seg.kind == segWildcard {
			if i >= len(pathSegs) {
				return nil, false
			}
			if params == nil {
				params = PathParams{}
			}
			params[seg.name] = strings.Join(pathSegs[i:], "/")
			return params, true
		}

		if i >= len(pathSegs) {
			return nil, false
		}

		switch seg.kind {
		case segLiteral:
			if pathSegs[i] != seg.literal {
				return nil, false
			}
		case segParam:
			if params == nil {
				params = PathParams{}
			}
			params[seg.name] = pathSegs[i]
		}
	}

	if len(segs) != len(pathSegs) {
		return nil, false
	}
	return params, true
}
