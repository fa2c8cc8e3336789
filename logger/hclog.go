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

package logger

import (
	"fmt"
	"io"
	"log"
	"os"

	hclog "github.com/hashicorp/go-hclog"
)

// HCLogShim adapts a Logger to hclog.Logger so a dependency that takes an
// hclog sink writes through the same sinks as the rest of the process.
type HCLogShim struct {
	lg   Logger
	name string
}

// NewHCLogShim wraps lg as an hclog.Logger named name.
func NewHCLogShim(lg Logger, name string) hclog.Logger {
	return &HCLogShim{lg: lg, name: name}
}

func (h *HCLogShim) format(msg string, args ...interface{}) string {
	if len(args) == 0 {
		return msg
	}
	pairs := ""
	for i := 0; i+1 < len(args); i += 2 {
		pairs += fmt.Sprintf(" %v=%v", args[i], args[i+1])
	}
	return msg + pairs
}

func (h *HCLogShim) Trace(msg string, args ...interface{}) { h.lg.Debug(h.format(msg, args...)) }
func (h *HCLogShim) Debug(msg string, args ...interface{}) { h.lg.Debug(h.format(msg, args...)) }
func (h *HCLogShim) Info(msg string, args ...interface{})  { h.lg.Info(h.format(msg, args...)) }
func (h *HCLogShim) Warn(msg string, args ...interface{})  { h.lg.Warning(h.format(msg, args...)) }
func (h *HCLogShim) Error(msg string, args ...interface{}) { h.lg.Error(h.format(msg, args...)) }

func (h *HCLogShim) IsTrace() bool { return true }
func (h *HCLogShim) IsDebug() bool { return true }
func (h *HCLogShim) IsInfo() bool  { return true }
func (h *HCLogShim) IsWarn() bool  { return true }
func (h *HCLogShim) IsError() bool { return true }

func (h *HCLogShim) ImpliedArgs() []interface{} { return nil }

func (h *HCLogShim) With(args ...interface{}) hclog.Logger {
	f := Fields{}
	for i := 0; i+1 < len(args); i += 2 {
		f[fmt.Sprint(args[i])] = args[i+1]
	}
	return &HCLogShim{lg: h.lg.WithFields(f), name: h.name}
}

func (h *HCLogShim) Name() string { return h.name }

func (h *HCLogShim) Named(name string) hclog.Logger {
	return &HCLogShim{lg: h.lg, name: h.name + "." + name}
}

func (h *HCLogShim) ResetNamed(name string) hclog.Logger {
	return &HCLogShim{lg: h.lg, name: name}
}

func (h *HCLogShim) SetLevel(level hclog.Level) {}

func (h *HCLogShim) GetLevel() hclog.Level { return hclog.Info }

func (h *HCLogShim) Log(level hclog.Level, msg string, args ...interface{}) {
	switch {
	case level >= hclog.Error:
		h.Error(msg, args...)
	case level >= hclog.Warn:
		h.Warn(msg, args...)
	case level >= hclog.Info:
		h.Info(msg, args...)
	default:
		h.Debug(msg, args...)
	}
}

func (h *HCLogShim) StandardLogger(opts *hclog.StandardLoggerOptions) *log.Logger {
	return log.New(h.StandardWriter(opts), "", 0)
}

func (h *HCLogShim) StandardWriter(opts *hclog.StandardLoggerOptions) io.Writer { return os.Stderr }
