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

// Role identifies what a process does once past flag parsing (§4.9).
type Role int

const (
	RoleSingle Role = iota
	RoleMaster
	RoleWorker
	RoleHelper
	RoleCustom
	RoleSignaller
)

func (r Role) String() string {
	switch r {
	case RoleSingle:
		return "single"
	case RoleMaster:
		return "master"
	case RoleWorker:
		return "worker"
	case RoleHelper:
		return "helper"
	case RoleCustom:
		return "custom"
	case RoleSignaller:
		return "signaller"
	default:
		return "unknown"
	}
}

// Options carries every CLI-derived input (§6) that feeds role selection
// and the behavior that follows from it.
type Options struct {
	Master    bool
	Helper    bool
	Daemon    bool
	Workers   int
	Signal    string // non-empty iff "-s <signal>" was given
	ConfigPath string
	Prefix    string
	Locale    string
	Directive string
	TestOnly  bool
}

// SelectRole implements §4.9's selection rule exactly:
//
//	-s <signal>            -> signaller, bypassing everything else
//	master=false, helper   -> standalone helper
//	master=false, !helper  -> single
//	master=true            -> master (forks workers, and a helper if asked)
func SelectRole(o Options) Role {
	if o.Signal != "" {
		return RoleSignaller
	}
	if !o.Master {
		if o.Helper {
			return RoleHelper
		}
		return RoleSingle
	}
	return RoleMaster
}
