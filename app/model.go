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

// Package app implements the process supervisor (§4.9): role selection
// (single/master/worker/helper/custom/signaller), daemonization, the
// master's signal-driven lifecycle (reap/respawn, fast/graceful stop,
// reload, log reopen, binary upgrade), and the PID file discipline of §6.
package app

import (
	liberr "github.com/sabouaram/apostol/errors"
)

const (
	ErrPIDFile = liberr.MinPkgApp + iota
	ErrFork
	ErrExec
	ErrSignal
	ErrUnknownSignalName
	ErrUpgrade
)

// EnvListenFDs is the environment variable a new binary inherits its
// listener fds through during a binary upgrade (§4.9, §6): a
// semicolon-separated list of fd numbers, e.g. "3;4;".
const EnvListenFDs = "APP_ENV"

// EnvDaemonized marks a re-exec'd child as already past the
// fork-setsid-fork step, so it does not daemonize itself again.
const EnvDaemonized = "APOSTOL_DAEMONIZED"

// EnvRole tells a spawned child process which role to assume instead of
// re-running role selection from scratch (worker/helper children are
// always spawned explicitly by the master, never inferred from flags).
const EnvRole = "APOSTOL_ROLE"
