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
	"syscall"

	liberr "github.com/sabouaram/apostol/errors"
	"github.com/sabouaram/apostol/nettcp"
)

// EncodeListenFDs renders fds as the semicolon-separated APP_ENV value
// (§4.9, §6): "fd1;fd2;".
func EncodeListenFDs(fds []int) string {
	var b strings.Builder
	for _, fd := range fds {
		b.WriteString(strconv.Itoa(fd))
		b.WriteByte(';')
	}
	return b.String()
}

// DecodeListenFDs parses an APP_ENV value back into fd numbers; a malformed
// entry is skipped rather than failing the whole list, since one garbage
// entry must not take down every inherited listener.
func DecodeListenFDs(value string) []int {
	var fds []int
	for _, tok := range strings.Split(value, ";") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if fd, err := strconv.Atoi(tok); err == nil {
			fds = append(fds, fd)
		}
	}
	return fds
}

// InheritedListeners adopts every fd named by the process's EnvListenFDs
// variable as a listener instead of binding fresh, per §4.9's "new
// processes re-adopt the same port."
func InheritedListeners() ([]nettcp.Listener, liberr.Error) {
	value := os.Getenv(EnvListenFDs)
	if value == "" {
		return nil, nil
	}

	var out []nettcp.Listener
	for _, fd := range DecodeListenFDs(value) {
		l, err := nettcp.FromFd(fd)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// Upgrade execs the binary at path in place (replacing the current master
// process image, same PID) with env carrying the APP_ENV fd list built
// from listeners, after clearing FD_CLOEXEC on each so it survives the
// execve(2) call. The caller is responsible for having already renamed the
// PID file to ".oldbin" (PIDFile.RenameOldbin) — Upgrade never returns on
// success; on failure it returns the error so the caller can restore the
// PID file and keep running the old binary.
func Upgrade(path string, args []string, listeners []nettcp.Listener) liberr.Error {
	fds := make([]int, 0, len(listeners))
	for _, l := range listeners {
		if err := nettcp.ClearCloseOnExec(l.Fd()); err != nil {
			return err
		}
		fds = append(fds, l.Fd())
	}

	env := append(os.Environ(), EnvListenFDs+"="+EncodeListenFDs(fds))
	if err := syscall.Exec(path, append([]string{path}, args...), env); err != nil {
		return liberr.New(ErrUpgrade, "exec new binary", err)
	}
	return nil // unreachable on success; syscall.Exec does not return
}
