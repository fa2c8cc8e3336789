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

package app

import (
	"os"
	"strconv"
	"strings"

	liberr "github.com/sabouaram/apostol/errors"
)

// PIDFile owns the master/single process's PID file (§6): written on
// startup, removed on clean exit, renamed to "<name>.oldbin" during a
// binary upgrade and restored if the upgrade fails — grounded on the
// original's Application::CreatePidFile/DeletePidFile/RenamePidFile.
type PIDFile struct {
	path string
}

// NewPIDFile returns a PIDFile bound to path; no I/O happens until a method
// is called.
func NewPIDFile(path string) *PIDFile {
	return &PIDFile{path: path}
}

// Path returns the configured path.
func (p *PIDFile) Path() string {
	return p.path
}

// Write creates (or overwrites) the PID file with pid.
func (p *PIDFile) Write(pid int) liberr.Error {
	if p.path == "" {
		return nil
	}
	if err := os.WriteFile(p.path, []byte(strconv.Itoa(pid)+"\n"), 0644); err != nil {
		return liberr.New(ErrPIDFile, "write pid file "+p.path, err)
	}
	return nil
}

// Read parses the PID written by Write.
func (p *PIDFile) Read() (int, liberr.Error) {
	raw, err := os.ReadFile(p.path)
	if err != nil {
		return 0, liberr.New(ErrPIDFile, "read pid file "+p.path, err)
	}
	pid, convErr := strconv.Atoi(strings.TrimSpace(string(raw)))
	if convErr != nil {
		return 0, liberr.New(ErrPIDFile, "malformed pid file "+p.path, convErr)
	}
	return pid, nil
}

// Remove deletes the PID file; a missing file is not an error.
func (p *PIDFile) Remove() liberr.Error {
	if p.path == "" {
		return nil
	}
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return liberr.New(ErrPIDFile, "remove pid file "+p.path, err)
	}
	return nil
}

// RenameOldbin renames the PID file to "<name>.oldbin" ahead of a binary
// upgrade exec and returns the new path, so the caller can restore it if
// the upgrade fails.
func (p *PIDFile) RenameOldbin() (string, liberr.Error) {
	if p.path == "" {
		return "", nil
	}
	oldbin := p.path + ".oldbin"
	if err := os.Rename(p.path, oldbin); err != nil {
		return "", liberr.New(ErrPIDFile, "rename pid file to oldbin", err)
	}
	return oldbin, nil
}

// RestoreFromOldbin renames "<name>.oldbin" back to the configured path,
// undoing RenameOldbin after a failed upgrade.
func (p *PIDFile) RestoreFromOldbin() liberr.Error {
	if p.path == "" {
		return nil
	}
	if err := os.Rename(p.path+".oldbin", p.path); err != nil {
		return liberr.New(ErrPIDFile, "restore pid file from oldbin", err)
	}
	return nil
}
