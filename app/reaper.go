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
	"sync"

	"golang.org/x/sys/unix"
)

// Reaper tracks live children across a stop sequence and decides when a
// kill-timer should fire (§8 properties 7/8: a fast stop arms a one-shot
// kill-timer that SIGCHLD cancels once the last child exits; if it fires
// first, survivors are SIGKILLed). Kept free of the eventloop/exec
// machinery so it can be driven from a test with fake pids and a captured
// kill function instead of real children.
type Reaper struct {
	mu    sync.Mutex
	alive map[int]struct{}
	kill  Kill
}

// NewReaper builds an empty Reaper. kill defaults to unix.Kill if nil.
func NewReaper(kill Kill) *Reaper {
	if kill == nil {
		kill = func(pid int, sig unix.Signal) error { return unix.Kill(pid, sig) }
	}
	return &Reaper{alive: make(map[int]struct{}), kill: kill}
}

// Track registers pid as a live child.
func (r *Reaper) Track(pid int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alive[pid] = struct{}{}
}

// Exited removes pid from the live set (a no-op if it was never tracked,
// or already removed) and returns the number of children still alive.
func (r *Reaper) Exited(pid int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.alive, pid)
	return len(r.alive)
}

// Remaining reports how many tracked children are still alive.
func (r *Reaper) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.alive)
}

// SignalAll sends sig to every currently-tracked child (e.g. SIGTERM on
// fast stop, SIGQUIT on graceful stop) and returns one error per failed
// send, if any.
func (r *Reaper) SignalAll(sig unix.Signal) []error {
	r.mu.Lock()
	pids := make([]int, 0, len(r.alive))
	for pid := range r.alive {
		pids = append(pids, pid)
	}
	r.mu.Unlock()

	var errs []error
	for _, pid := range pids {
		if err := r.kill(pid, sig); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// KillSurvivors SIGKILLs whichever tracked children are still alive — the
// kill-timer firing before the last SIGCHLD arrived (property 8).
func (r *Reaper) KillSurvivors() []error {
	return r.SignalAll(unix.SIGKILL)
}
