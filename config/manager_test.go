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

package config_test

import (
	"github.com/spf13/viper"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/sabouaram/apostol/config"
	"github.com/sabouaram/apostol/logger"
)

type fakeComponent struct {
	name    string
	deps    []string
	started *[]string
	stopped *[]string
	failOn  bool
}

func (f *fakeComponent) Name() string                              { return f.name }
func (f *fakeComponent) Init(v *viper.Viper, lg logger.Logger)      {}
func (f *fakeComponent) Dependencies() []string                    { return f.deps }
func (f *fakeComponent) Reload() error                              { return nil }
func (f *fakeComponent) Stop()                                      { *f.stopped = append(*f.stopped, f.name) }
func (f *fakeComponent) Start() error {
	if f.failOn {
		return errBoom
	}
	*f.started = append(*f.started, f.name)
	return nil
}

var errBoom = &boomError{}

type boomError struct{}

func (b *boomError) Error() string { return "boom" }

var _ = Describe("Manager", func() {
	It("starts components in dependency order and stops them in reverse", func() {
		var started, stopped []string
		m := NewManager()

		Expect(m.Register(&fakeComponent{name: "cache", started: &started, stopped: &stopped})).To(BeNil())
		Expect(m.Register(&fakeComponent{name: "database", started: &started, stopped: &stopped})).To(BeNil())
		Expect(m.Register(&fakeComponent{name: "api", deps: []string{"database", "cache"}, started: &started, stopped: &stopped})).To(BeNil())

		Expect(m.Start()).To(BeNil())
		Expect(started).To(Equal([]string{"cache", "database", "api"}))

		m.Stop()
		Expect(stopped).To(Equal([]string{"api", "database", "cache"}))
	})

	It("rejects a duplicate component name", func() {
		m := NewManager()
		var started, stopped []string
		Expect(m.Register(&fakeComponent{name: "x", started: &started, stopped: &stopped})).To(BeNil())
		Expect(m.Register(&fakeComponent{name: "x", started: &started, stopped: &stopped})).ToNot(BeNil())
	})

	It("reports a dependency cycle instead of hanging", func() {
		m := NewManager()
		var started, stopped []string
		Expect(m.Register(&fakeComponent{name: "a", deps: []string{"b"}, started: &started, stopped: &stopped})).To(BeNil())
		Expect(m.Register(&fakeComponent{name: "b", deps: []string{"a"}, started: &started, stopped: &stopped})).To(BeNil())

		Expect(m.Start()).ToNot(BeNil())
	})

	It("stops at the first Start error without starting later components", func() {
		m := NewManager()
		var started, stopped []string
		Expect(m.Register(&fakeComponent{name: "ok", started: &started, stopped: &stopped})).To(BeNil())
		Expect(m.Register(&fakeComponent{name: "bad", deps: []string{"ok"}, started: &started, stopped: &stopped, failOn: true})).To(BeNil())
		Expect(m.Register(&fakeComponent{name: "never", deps: []string{"bad"}, started: &started, stopped: &stopped})).To(BeNil())

		Expect(m.Start()).ToNot(BeNil())
		Expect(started).To(Equal([]string{"ok"}))
	})
})
