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

package nethttp

import (
	"bytes"
	"strconv"
	"strings"

	liberr "github.com/sabouaram/apostol/errors"
)

type parserState int

const (
	stateRequestLine parserState = iota
	stateHeaders
	stateBody
)

// Parser is an incremental HTTP/1.1 request parser. Feed may be called with
// arbitrarily small slices, including one byte at a time, and must produce
// the same sequence of completed requests as a single call with all the
// bytes concatenated: no parsing decision depends on where a Feed call
// happened to end.
type Parser struct {
	buf   []byte
	state parserState
	cur   *Request
	need  int // remaining body bytes wanted in stateBody
}

// NewParser builds an empty incremental parser.
func NewParser() *Parser {
	return &Parser{state: stateRequestLine}
}

// Feed appends data and returns every request that became complete as a
// result, in arrival order. Partial trailing bytes are retained internally
// for the next Feed call (supporting pipelining within one call and across
// calls uniformly).
func (p *Parser) Feed(data []byte) ([]*Request, liberr.Error) {
	p.buf = append(p.buf, data...)

	var out []*Request

	for {
		switch p.state {
		case stateRequestLine:
			line, rest, ok := cutCRLF(p.buf)
			if !ok {
				if len(p.buf) > MaxHeaderBytes {
					return out, liberr.New(ErrMalformedStartLine, "request line too long", nil)
				}
				return out, nil
			}

			req, err := parseRequestLine(string(line))
			if err != nil {
				return out, err
			}

			p.cur = req
			p.buf = rest
			p.state = stateHeaders

		case stateHeaders:
			for {
				line, rest, ok := cutCRLF(p.buf)
				if !ok {
					if len(p.buf) > MaxHeaderBytes {
						return out, liberr.New(ErrMalformedHeader, "headers too long", nil)
					}
					return out, nil
				}

				if len(line) == 0 {
					p.buf = rest
					p.need = contentLength(p.cur)
					if p.need > 0 {
						p.state = stateBody
					} else {
						out = append(out, p.cur)
						p.cur = nil
						p.state = stateRequestLine
					}
					break
				}

				name, value, err := parseHeaderLine(string(line))
				if err != nil {
					return out, err
				}
				p.cur.addHeader(name, value)
				p.buf = rest
			}

		case stateBody:
			if len(p.buf) < p.need {
				return out, nil
			}
			p.cur.Body = p.buf[:p.need]
			p.buf = p.buf[p.need:]
			out = append(out, p.cur)
			p.cur = nil
			p.need = 0
			p.state = stateRequestLine
		}
	}
}

func cutCRLF(buf []byte) (line []byte, rest []byte, ok bool) {
	idx := bytes.Index(buf, []byte("\r\n"))
	if idx < 0 {
		return nil, nil, false
	}
	return buf[:idx], buf[idx+2:], true
}

func parseRequestLine(line string) (*Request, liberr.Error) {
	parts := strings.Split(line, " ")
	if len(parts) != 3 {
		return nil, liberr.New(ErrMalformedStartLine, "malformed request line: "+line, nil)
	}

	method, target, version := parts[0], parts[1], parts[2]
	if method == "" || target == "" {
		return nil, liberr.New(ErrMalformedStartLine, "malformed request line: "+line, nil)
	}

	maj, min, err := parseVersion(version)
	if err != nil {
		return nil, err
	}

	req := newRequest()
	req.Method = method
	req.VersionMaj = maj
	req.VersionMin = min

	if path, query, found := strings.Cut(target, "?"); found {
		req.Path = path
		req.RawQuery = query
	} else {
		req.Path = target
	}

	return req, nil
}

func parseVersion(v string) (maj int, min int, err liberr.Error) {
	const prefix = "HTTP/"
	if !strings.HasPrefix(v, prefix) {
		return 0, 0, liberr.New(ErrMalformedStartLine, "malformed HTTP version: "+v, nil)
	}

	numeric := strings.TrimPrefix(v, prefix)
	majStr, minStr, found := strings.Cut(numeric, ".")
	if !found {
		return 0, 0, liberr.New(ErrMalformedStartLine, "malformed HTTP version: "+v, nil)
	}

	majVal, e1 := strconv.Atoi(majStr)
	minVal, e2 := strconv.Atoi(minStr)
	if e1 != nil || e2 != nil {
		return 0, 0, liberr.New(ErrMalformedStartLine, "malformed HTTP version: "+v, nil)
	}

	return majVal, minVal, nil
}

func parseHeaderLine(line string) (name string, value string, err liberr.Error) {
	name, value, found := strings.Cut(line, ":")
	if !found {
		return "", "", liberr.New(ErrMalformedHeader, "malformed header line: "+line, nil)
	}
	return strings.TrimSpace(name), strings.TrimSpace(value), nil
}

func contentLength(r *Request) int {
	v, ok := r.Header("Content-Length")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
