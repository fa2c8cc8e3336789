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

// Package logger provides level-gated structured logging with pluggable
// sinks (stdout, file, syslog), built on logrus. The file sink supports
// Reopen() so the master process can rotate logs in response to SIGUSR1
// without restarting workers.
package logger

import (
	liberr "github.com/sabouaram/apostol/errors"
)

const (
	ErrOpenFile = liberr.MinPkgLogger + iota
	ErrSyslogDial
)

// Level mirrors logrus' severity levels under names that read naturally
// against the signal table in §6 (emergency/fatal map to process exit).
type Level uint32

const (
	LevelEmergency Level = iota
	LevelError
	LevelWarning
	LevelInfo
	LevelDebug
)

// Fields attaches structured key/value context to one log line.
type Fields map[string]interface{}
