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
	"golang.org/x/sys/unix"

	liberr "github.com/sabouaram/apostol/errors"
)

// signalNames maps "-s <signal>" (§6) to the signal the master's loop
// listens for (§6 signal table).
var signalNames = map[string]unix.Signal{
	"stop":    unix.SIGTERM,
	"quit":    unix.SIGQUIT,
	"reopen":  unix.SIGUSR1,
	"reload":  unix.SIGHUP,
	"upgrade": unix.SIGUSR2,
}

// Kill abstracts sending a signal to a pid, so Signal can be unit tested
// against a fake instead of the real kernel.
type Kill func(pid int, sig unix.Signal) error

// Signal implements the "-s <signal>" signaller role: read the PID file
// and send the named signal, bypassing every other startup step.
func Signal(pidFile *PIDFile, name string, kill Kill) liberr.Error {
	sig, ok := signalNames[name]
	if !ok {
		return liberr.New(ErrUnknownSignalName, "unknown signal name: "+name)
	}

	pid, err := pidFile.Read()
	if err != nil {
		return err
	}

	if kill == nil {
		kill = func(pid int, sig unix.Signal) error { return unix.Kill(pid, sig) }
	}
	if e := kill(pid, sig); e != nil {
		return liberr.New(ErrSignal, "kill", e)
	}
	return nil
}
