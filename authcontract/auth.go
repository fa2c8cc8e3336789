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

package authcontract

import (
	"strings"

	"github.com/sabouaram/apostol/logger"
	"github.com/sabouaram/apostol/nethttp"
)

// LogFunc defers logger lookup to call time, matching the teacher's
// router/auth convention of taking a getter rather than a live logger (the
// logger may be reopened/replaced across a config reload).
type LogFunc func() logger.Logger

// Authorization runs one CheckFunc against the Authorization header of
// every request it guards.
type Authorization struct {
	logFunc LogFunc
	realm   string
	check   CheckFunc
}

// NewAuthorization builds an Authorization. logFunc may be nil; realm, if
// empty, falls back to HeaderAuthReal.
func NewAuthorization(logFunc LogFunc, realm string, check CheckFunc) *Authorization {
	if realm == "" {
		realm = HeaderAuthReal
	}
	return &Authorization{logFunc: logFunc, realm: realm, check: check}
}

// Check implements router.AuthHook: it inspects req's Authorization header,
// runs the configured CheckFunc, and on anything but AuthCodeSuccess writes
// the appropriate 401/403 response and reports the request as handled.
func (a *Authorization) Check(req *nethttp.Request, resp *nethttp.Response) bool {
	header := headerValue(req, HeaderAuthSend)

	code, err := a.check(header)
	if err != nil && a.logFunc != nil {
		if lg := a.logFunc(); lg != nil {
			lg.Error("authcontract: check failed: " + err.Error())
		}
	}

	switch code {
	case AuthCodeSuccess:
		return false
	case AuthCodeForbidden:
		Forbidden(resp)
		return true
	default:
		Require(resp, a.realm)
		return true
	}
}

// headerValue scans req.Headers directly (case-insensitive) instead of
// req.Header()'s lookup map, so it works for requests built outside the
// wire parser (tests, synthetic requests) and not just ones that went
// through addHeader.
func headerValue(req *nethttp.Request, name string) string {
	for _, h := range req.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// Require writes a 401 response with a WWW-Authenticate challenge.
func Require(resp *nethttp.Response, realm string) {
	if realm == "" {
		realm = HeaderAuthReal
	}
	resp.WriteStatus(401)
	resp.SetHeader(HeaderAuthRequire, realm)
}

// Forbidden writes a 403 response.
func Forbidden(resp *nethttp.Response) {
	resp.WriteStatus(403)
}
