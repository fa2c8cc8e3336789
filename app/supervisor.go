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
	"time"

	"golang.org/x/sys/unix"

	liberr "github.com/sabouaram/apostol/errors"
	"github.com/sabouaram/apostol/eventloop"
	"github.com/sabouaram/apostol/logger"
	"github.com/sabouaram/apostol/nettcp"
)

// DefaultKillTimeout bounds how long a fast stop waits for children to
// exit on their own before SIGKILLing survivors (§8 property 8).
const DefaultKillTimeout = 5 * time.Second

// Supervisor is the master role (§4.9): it owns no client sockets, binds
// the configured listeners once, and forks (via re-exec, §DESIGN) worker
// and helper children that inherit them. It never runs client request
// code itself — only reap, respawn, signal.
type Supervisor struct {
	lg          logger.Logger
	pidFile     *PIDFile
	reaper      *Reaper
	loop        eventloop.Loop
	listeners   []nettcp.Listener
	binary      string
	args        []string
	workerCount int
	withHelper  bool
	killTimeout time.Duration

	killTimerID eventloop.TimerID
	stopping    bool
	draining    bool
	children    map[int]Role
}

// SupervisorOption configures NewSupervisor.
type SupervisorOption struct {
	PIDFile     string
	Workers     int
	WithHelper  bool
	KillTimeout time.Duration
}

// NewSupervisor builds a Supervisor bound to binary/args (normally
// os.Args[0]/os.Args[1:]) and lg.
func NewSupervisor(lg logger.Logger, binary string, args []string, opt SupervisorOption) *Supervisor {
	if opt.Workers <= 0 {
		opt.Workers = 1
	}
	if opt.KillTimeout <= 0 {
		opt.KillTimeout = DefaultKillTimeout
	}
	return &Supervisor{
		lg:          lg,
		pidFile:     NewPIDFile(opt.PIDFile),
		reaper:      NewReaper(nil),
		binary:      binary,
		args:        args,
		workerCount: opt.Workers,
		withHelper:  opt.WithHelper,
		killTimeout: opt.KillTimeout,
		children:    make(map[int]Role),
	}
}

// Run binds the configured listeners, writes the PID file, forks the
// initial worker (and helper) generation, and blocks in the master's
// signal-driven loop (§4.9, §6 signal table) until a stop signal is
// handled to completion.
func (s *Supervisor) Run(listenAddrs []string) liberr.Error {
	for _, addr := range listenAddrs {
		l, err := nettcp.Listen(addr, nettcp.ListenOption{})
		if err != nil {
			return err
		}
		s.listeners = append(s.listeners, l)
	}

	if err := s.pidFile.Write(os.Getpid()); err != nil {
		return err
	}
	defer s.pidFile.Remove()

	loop, e := eventloop.New()
	if e != nil {
		return liberr.New(ErrFork, "create master event loop", e)
	}
	s.loop = loop
	defer s.loop.Close()

	for i := 0; i < s.workerCount; i++ {
		if _, err := s.spawn(RoleWorker); err != nil {
			return err
		}
	}
	if s.withHelper {
		if _, err := s.spawn(RoleHelper); err != nil {
			return err
		}
	}

	signals := map[int]eventloop.SignalCallback{
		int(unix.SIGCHLD): func(int) { s.onSIGCHLD() },
		int(unix.SIGTERM): func(int) { s.fastStop() },
		int(unix.SIGINT):  func(int) { s.fastStop() },
		int(unix.SIGQUIT): func(int) { s.gracefulStop() },
		int(unix.SIGHUP):  func(int) { s.reload() },
		int(unix.SIGUSR1): func(int) { s.reopenLogs() },
		int(unix.SIGUSR2): func(int) { s.upgrade() },
	}
	for sig, cb := range signals {
		if err := s.loop.AddSignal(sig, cb); err != nil {
			return liberr.New(ErrFork, "subscribe master signal", err)
		}
	}

	if err := s.loop.Run(); err != nil {
		return liberr.New(ErrFork, "master event loop", err)
	}
	return nil
}

// spawn execs one worker/helper child that inherits s.listeners at fd
// 3, 3+1, ... via cmd.ExtraFiles — the idiomatic Go substitute for fork()
// sharing the listening socket by copy-on-write memory, since the Go
// runtime cannot safely fork a process with live goroutines.
func (s *Supervisor) spawn(role Role) (*exec.Cmd, liberr.Error) {
	cmd := exec.Command(s.binary, s.args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	fds := make([]int, 0, len(s.listeners))
	for i, l := range s.listeners {
		f := os.NewFile(uintptr(l.Fd()), "listener")
		cmd.ExtraFiles = append(cmd.ExtraFiles, f)
		// os/exec places ExtraFiles at fd 3, 3+1, ... in the child in order.
		fds = append(fds, 3+i)
	}

	cmd.Env = append(os.Environ(),
		EnvRole+"="+role.String(),
		EnvDaemonized+"=1",
		EnvListenFDs+"="+EncodeListenFDs(fds),
	)

	if err := cmd.Start(); err != nil {
		return nil, liberr.New(ErrFork, "spawn "+role.String(), err)
	}

	pid := cmd.Process.Pid
	s.reaper.Track(pid)
	s.children[pid] = role
	return cmd, nil
}

// onSIGCHLD reaps every exited child with WNOHANG (§4.9) and respawns a
// worker that exited abnormally while the master is not itself stopping.
func (s *Supervisor) onSIGCHLD() {
	for {
		var status unix.WaitStatus
		pid, err := unix.Wait4(-1, &status, unix.WNOHANG, nil)
		if err != nil || pid <= 0 {
			return
		}

		role := s.children[pid]
		delete(s.children, pid)
		remaining := s.reaper.Exited(pid)

		if s.stopping || s.draining {
			if remaining == 0 {
				s.loop.CancelTimer(s.killTimerID)
				s.loop.Stop()
			}
			continue
		}

		abnormal := status.Signaled() || (status.Exited() && status.ExitStatus() != 0)
		if abnormal && role == RoleWorker {
			_, _ = s.spawn(RoleWorker)
		}
	}
}

// fastStop implements TERM/INT (§6 signal table): SIGTERM every child and
// arm a one-shot kill-timer; onSIGCHLD cancels it once the last child
// exits (property 7), otherwise it fires and SIGKILLs survivors
// (property 8).
func (s *Supervisor) fastStop() {
	if s.stopping {
		return
	}
	s.stopping = true
	s.reaper.SignalAll(unix.SIGTERM)

	if s.reaper.Remaining() == 0 {
		s.loop.Stop()
		return
	}
	s.killTimerID = s.loop.AddTimer(s.killTimeout, 0, func(time.Time) {
		s.reaper.KillSurvivors()
		s.loop.Stop()
	})
}

// gracefulStop implements QUIT (§6 signal table): ask children to drain
// and wait for them to exit on their own, with no kill-timer.
func (s *Supervisor) gracefulStop() {
	if s.draining {
		return
	}
	s.draining = true
	s.reaper.SignalAll(unix.SIGQUIT)

	if s.reaper.Remaining() == 0 {
		s.loop.Stop()
	}
}

// reload implements HUP (§6 signal table): spawn a fresh worker generation
// and ask the previous one to drain via SIGQUIT, leaving the new
// generation to keep serving.
func (s *Supervisor) reload() {
	previous := make([]int, 0, len(s.children))
	for pid, role := range s.children {
		if role == RoleWorker {
			previous = append(previous, pid)
		}
	}

	for i := 0; i < s.workerCount; i++ {
		if _, err := s.spawn(RoleWorker); err != nil {
			if s.lg != nil {
				s.lg.Error("reload: failed to spawn replacement worker: " + err.Error())
			}
			return
		}
	}

	for _, pid := range previous {
		_ = unix.Kill(pid, unix.SIGQUIT)
	}
}

// reopenLogs implements USR1 (§6 signal table) for the master itself;
// worker/helper children handle their own USR1 independently.
func (s *Supervisor) reopenLogs() {
	if s.lg == nil {
		return
	}
	if err := s.lg.Reopen(); err != nil {
		s.lg.Error("reopen log files: " + err.Error())
	}
}

// upgrade implements USR2 (§4.9, §6): rename the PID file to ".oldbin",
// exec the new binary inheriting the listeners, and restore the PID file
// if the exec itself fails to launch. On success this process's image is
// replaced and never returns; the new master sheds the OLD generation of
// workers (tracked under the old binary's children map, now gone with the
// exec) by relying on those children still answering to SIGQUIT from
// whichever process signals them next — operationally, the operator or a
// subsequent reload drains them.
func (s *Supervisor) upgrade() {
	if _, err := s.pidFile.RenameOldbin(); err != nil {
		if s.lg != nil {
			s.lg.Error("upgrade: rename pid file: " + err.Error())
		}
		return
	}

	if err := Upgrade(s.binary, s.args, s.listeners); err != nil {
		if s.lg != nil {
			s.lg.Error("upgrade: exec failed, restoring pid file: " + err.Error())
		}
		_ = s.pidFile.RestoreFromOldbin()
	}
}
