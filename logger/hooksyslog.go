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
	"log/syslog"

	"github.com/sirupsen/logrus"

	liberr "github.com/sabouaram/apostol/errors"
)

type syslogHook struct {
	writer *syslog.Writer
}

// AddSyslog attaches a syslog(3) sink at the given network/raddr (raddr ""
// targets the local syslog daemon), tagged with the given process name.
func (lg *logger) AddSyslog(network, raddr, tag string) error {
	w, err := syslog.Dial(network, raddr, syslog.LOG_INFO|syslog.LOG_DAEMON, tag)
	if err != nil {
		return liberr.New(ErrSyslogDial, "dial syslog", err)
	}
	lg.entry.Logger.AddHook(&syslogHook{writer: w})
	return nil
}

func (h *syslogHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *syslogHook) Fire(e *logrus.Entry) error {
	line := e.Message
	switch e.Level {
	case logrus.PanicLevel, logrus.FatalLevel:
		return h.writer.Emerg(line)
	case logrus.ErrorLevel:
		return h.writer.Err(line)
	case logrus.WarnLevel:
		return h.writer.Warning(line)
	case logrus.InfoLevel:
		return h.writer.Info(line)
	default:
		return h.writer.Debug(line)
	}
}
