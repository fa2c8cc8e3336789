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

// Package authcontract states the interface the core expects of an
// authentication/authorization provider without implementing one: it is
// consumed by router.Manager as an optional per-route hook, and satisfied
// by application code (JWT, OAuth, LDAP bind — all out of scope per §1).
package authcontract

import (
	liberr "github.com/sabouaram/apostol/errors"
)

const (
	ErrCheck = liberr.MinPkgAuth + iota
)

// AuthCode reports the outcome of one CheckFunc call.
type AuthCode uint8

const (
	AuthCodeSuccess AuthCode = iota
	AuthCodeRequire
	AuthCodeForbidden
)

const (
	// HeaderAuthRequire is set on a 401 response so the client knows how
	// to retry with credentials.
	HeaderAuthRequire = "WWW-Authenticate"
	// HeaderAuthSend is the request header carrying client credentials.
	HeaderAuthSend = "Authorization"
	// HeaderAuthReal is the default WWW-Authenticate challenge value.
	HeaderAuthReal = "Bearer realm=Apostol"
)

// CheckFunc validates one Authorization header value and reports whether
// the request may proceed.
type CheckFunc func(authHeader string) (AuthCode, liberr.Error)
