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

// Package module defines the pluggable request handler every worker
// dispatches through, plus an insertion-ordered Manager that runs them in
// registration order and stops at the first one that handles a request.
package module

import (
	"time"

	"github.com/sabouaram/apostol/nethttp"
)

// Module is a named, independently enable-able request handler. Execute
// reports whether it handled the request; a Manager stops at the first
// Module that returns true and never calls a later one for that request.
type Module interface {
	Name() string
	Enabled() bool
	Execute(req *nethttp.Request, resp *nethttp.Response) bool
}

// Starter is an optional hook: a Module implementing it has OnStart called
// once, in registration order, when the owning worker comes up.
type Starter interface {
	OnStart() error
}

// Stopper is an optional hook: a Module implementing it has OnStop called
// once, in reverse registration order, as the owning worker shuts down.
type Stopper interface {
	OnStop()
}

// Heartbeat is an optional hook: a Module implementing it has Heartbeat
// called on every tick (the worker emits one at roughly 1Hz) for as long
// as the Module stays Enabled.
type Heartbeat interface {
	Heartbeat(now time.Time)
}
