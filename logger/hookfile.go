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
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	liberr "github.com/sabouaram/apostol/errors"
)

// fileHook is a logrus hook that appends formatted lines to a path. reopen
// closes the current descriptor and reopens path, picking up a rename done
// by an external log rotator (Logger.Reopen calls it on SIGUSR1). Fire and
// reopen hold the same mutex, so a line being written completes on the old
// descriptor before it is swapped.
type fileHook struct {
	mu   sync.Mutex
	path string
	fh   *os.File
}

func newFileHook(path string) (*fileHook, liberr.Error) {
	h := &fileHook{path: path}
	if err := h.open(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *fileHook) open() liberr.Error {
	fh, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return liberr.New(ErrOpenFile, "open log file "+h.path, err)
	}
	h.fh = fh
	return nil
}

func (h *fileHook) reopen() liberr.Error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.fh != nil {
		_ = h.fh.Close()
	}
	return h.open()
}

func (h *fileHook) close() liberr.Error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.fh == nil {
		return nil
	}
	err := h.fh.Close()
	h.fh = nil
	if err != nil {
		return liberr.New(ErrOpenFile, "close log file "+h.path, err)
	}
	return nil
}

func (h *fileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *fileHook) Fire(e *logrus.Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.fh == nil {
		return nil
	}
	line, err := e.Logger.Formatter.Format(e)
	if err != nil {
		return err
	}
	_, err = h.fh.Write(line)
	return err
}
