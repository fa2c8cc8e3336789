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
	"os/exec"
	"syscall"

	liberr "github.com/sabouaram/apostol/errors"
)

// Daemonize implements §4.9's "fork-setsid-fork, chdir /, close stdio"
// for a Go process; it does not write the PID file (Supervisor.Run does
// that once the master is running). A real double-fork is unavailable once
// the Go runtime has started extra threads/goroutines, so the equivalent
// here is to re-exec the same binary with EnvDaemonized set and
// SysProcAttr.Setsid true: the child gets a new session (no controlling
// terminal, same effect as setsid after the first fork) and inherits
// /dev/null on all three standard streams and "/" as its working
// directory. The caller must exit immediately after a true return.
//
// isChild is true when the current process already carries EnvDaemonized
// — i.e. it IS the detached child and should proceed straight into its
// role instead of re-exec'ing again.
func Daemonize() (isChild bool, err liberr.Error) {
	if os.Getenv(EnvDaemonized) == "1" {
		return true, nil
	}

	devNull, e := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if e != nil {
		return false, liberr.New(ErrFork, "open /dev/null", e)
	}
	defer devNull.Close()

	cmd := exec.Command(os.Args[0], os.Args[1:]...)
	cmd.Env = append(os.Environ(), EnvDaemonized+"=1")
	cmd.Stdin = devNull
	cmd.Stdout = devNull
	cmd.Stderr = devNull
	cmd.Dir = "/"
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if e = cmd.Start(); e != nil {
		return false, liberr.New(ErrFork, "start daemonized child", e)
	}
	return false, nil
}
