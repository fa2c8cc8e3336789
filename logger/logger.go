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
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the interface the rest of the tree logs through. Every method
// returning an error is safe to ignore. Emergency is the one method that
// does not return: it writes the line at logrus' panic level and then
// panics.
type Logger interface {
	WithFields(f Fields) Logger
	Emergency(msg string)
	Error(msg string)
	Warning(msg string)
	Info(msg string)
	Debug(msg string)
	SetLevel(lvl Level)
	Level() Level
	// Reopen closes and reopens every file-backed sink, used for SIGUSR1.
	Reopen() error
	// Close releases any file descriptors held by sinks.
	Close() error
	// AddFile attaches a rotating file sink at path in addition to stdout.
	AddFile(path string) error
	// AddWriter attaches an additional, non-reopenable io.Writer sink.
	AddWriter(w io.Writer)
	// AddSyslog attaches a syslog(3) sink; see hooksyslog.go.
	AddSyslog(network, raddr, tag string) error
}

type logger struct {
	entry *logrus.Entry
	level Level
	file  *fileHook
}

// New builds a Logger writing to stdout at the given level. Call AddFile to
// also fan out to a rotating file sink, and AddSyslog for a syslog sink.
func New(lvl Level) Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(toLogrusLevel(lvl))

	return &logger{entry: logrus.NewEntry(l), level: lvl}
}

// AddFile attaches a rotating file sink at path in addition to stdout.
func (lg *logger) AddFile(path string) error {
	h, err := newFileHook(path)
	if err != nil {
		return err
	}
	lg.file = h
	lg.entry.Logger.AddHook(h)
	return nil
}

func toLogrusLevel(lvl Level) logrus.Level {
	switch lvl {
	case LevelEmergency:
		return logrus.PanicLevel
	case LevelError:
		return logrus.ErrorLevel
	case LevelWarning:
		return logrus.WarnLevel
	case LevelInfo:
		return logrus.InfoLevel
	default:
		return logrus.DebugLevel
	}
}

func (lg *logger) WithFields(f Fields) Logger {
	return &logger{entry: lg.entry.WithFields(logrus.Fields(f)), level: lg.level, file: lg.file}
}

func (lg *logger) Emergency(msg string) { lg.entry.Panic(msg) }
func (lg *logger) Error(msg string)     { lg.entry.Error(msg) }
func (lg *logger) Warning(msg string)   { lg.entry.Warning(msg) }
func (lg *logger) Info(msg string)      { lg.entry.Info(msg) }
func (lg *logger) Debug(msg string)     { lg.entry.Debug(msg) }

func (lg *logger) SetLevel(lvl Level) {
	lg.level = lvl
	lg.entry.Logger.SetLevel(toLogrusLevel(lvl))
}

func (lg *logger) Level() Level { return lg.level }

func (lg *logger) Reopen() error {
	if lg.file == nil {
		return nil
	}
	return lg.file.reopen()
}

func (lg *logger) Close() error {
	if lg.file == nil {
		return nil
	}
	return lg.file.close()
}

// AddWriter attaches an additional, non-reopenable io.Writer sink (used by
// tests to capture output).
func (lg *logger) AddWriter(w io.Writer) {
	lg.entry.Logger.AddHook(&writerHook{w: w})
}

type writerHook struct{ w io.Writer }

func (h *writerHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *writerHook) Fire(e *logrus.Entry) error {
	line, err := e.Logger.Formatter.Format(e)
	if err != nil {
		return err
	}
	_, err = h.w.Write(line)
	return err
}
