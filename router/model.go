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

// Package router matches an HTTP method and path against a set of
// registered patterns (literal segments, "{name}" captures, and a
// trailing "*" remainder) and emits an OpenAPI 3.0.0 description of the
// same route table, as JSON or YAML.
package router

import (
	liberr "github.com/sabouaram/apostol/errors"
)

const (
	ErrDuplicateRoute = liberr.MinPkgRouter + iota
)

// segmentKind classifies one path segment of a compiled pattern.
type segmentKind int

const (
	segLiteral segmentKind = iota
	segParam
	segWildcard
)

// rank orders match specificity for tie-breaking between patterns that
// both match a given path: exact beats parametric beats wildcard.
func (k segmentKind) rank() int {
	switch k {
	case segLiteral:
		return 2
	case segParam:
		return 1
	default:
		return 0
	}
}
