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
	"strings"

	"github.com/spf13/viper"

	liberr "github.com/sabouaram/apostol/errors"
)

// Load reads the JSON configuration at path into a fresh Viper instance,
// also merging APOSTOL_-prefixed environment variables over it (so
// "-c"-supplied secrets can be overridden without touching the file).
func Load(path string) (*viper.Viper, liberr.Error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix("apostol")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, liberr.New(ErrReadConfig, "read config "+path, err)
	}
	return v, nil
}

// Validate implements "-t": it loads path and reports whether it parses,
// without starting anything.
func Validate(path string) liberr.Error {
	_, err := Load(path)
	return err
}

// Directive applies one "-g key=value" inline override (§6) on top of an
// already-loaded configuration.
func Directive(v *viper.Viper, directive string) liberr.Error {
	parts := strings.SplitN(directive, "=", 2)
	if len(parts) != 2 {
		return liberr.New(ErrParseConfig, "malformed directive, want key=value: "+directive)
	}
	v.Set(parts[0], parts[1])
	return nil
}
