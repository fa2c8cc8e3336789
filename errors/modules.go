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

package errors

// Package-reserved error code ranges, one block per core component (§2 of
// the design). Each component offsets its own CodeError constants from its
// Min value so two packages never collide when their errors are combined
// (e.g. a module handler wrapping a pgpool error).
const (
	MinPkgEventLoop  = 100
	MinPkgNetTCP     = 200
	MinPkgNetHTTP    = 300
	MinPkgWebSocket  = 400
	MinPkgWsRPC      = 450
	MinPkgPgConn     = 500
	MinPkgPgPool     = 600
	MinPkgModule     = 700
	MinPkgRouter     = 800
	MinPkgApp     = 900
	MinPkgConfig  = 1000
	MinPkgLogger  = 1100
	MinPkgMonitor = 1200
	MinPkgAuth    = 1300

	MinAvailable = 3000
)
