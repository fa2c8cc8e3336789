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

package config

import (
	"github.com/spf13/viper"

	"github.com/sabouaram/apostol/logger"
)

// Component is one pluggable subsystem wired into a worker or helper process
// (a database side-channel, a future cache client, ...). Manager starts
// components in dependency order and stops them in reverse, mirroring the
// contract the teacher's config/types.Component interface documents for
// Start/Reload/Stop.
type Component interface {
	// Name identifies the component for logging and dependency references.
	Name() string

	// Init hands the component its slice of the loaded configuration and a
	// logger scoped to its name. Called once, before Start.
	Init(v *viper.Viper, lg logger.Logger)

	// Dependencies lists component names that must Start before this one and
	// Stop after it.
	Dependencies() []string

	// Start brings the component up. An error here aborts Manager.Start.
	Start() error

	// Reload re-reads configuration and applies it without a full restart
	// where possible.
	Reload() error

	// Stop releases the component's resources. Must not block indefinitely
	// and must not return an error; Manager stops every component
	// best-effort regardless of earlier failures.
	Stop()
}
