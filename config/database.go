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
	"sync"

	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	liberr "github.com/sabouaram/apostol/errors"
	"github.com/sabouaram/apostol/logger"
)

// DatabaseComponent offers a synchronous, side-channel GORM connection
// alongside the async pgpool — useful for one-shot work the pool's
// callback-driven Execute is awkward for, e.g. running migrations at
// startup. It is independent of pgpool: neither shares a connection with
// the other.
type DatabaseComponent struct {
	mu  sync.Mutex
	dsn string
	db  *gorm.DB
	lg  logger.Logger
}

// NewDatabaseComponent builds an unconnected component; Init supplies the
// DSN from configuration.
func NewDatabaseComponent() *DatabaseComponent {
	return &DatabaseComponent{}
}

func (d *DatabaseComponent) Name() string { return "database" }

func (d *DatabaseComponent) Init(v *viper.Viper, lg logger.Logger) {
	d.dsn = v.GetString("database.dsn")
	d.lg = lg
}

func (d *DatabaseComponent) Dependencies() []string { return nil }

func (d *DatabaseComponent) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.dsn == "" {
		return nil // database side-channel is optional
	}

	db, err := gorm.Open(postgres.Open(d.dsn), &gorm.Config{})
	if err != nil {
		return liberr.New(ErrStartComponent, "open gorm connection", err)
	}
	d.db = db
	if d.lg != nil {
		d.lg.Info("database component connected")
	}
	return nil
}

func (d *DatabaseComponent) Reload() error {
	d.Stop()
	return d.Start()
}

func (d *DatabaseComponent) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		return
	}
	if sqlDB, err := d.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	d.db = nil
}

// DB returns the underlying *gorm.DB, or nil if the component was started
// without a DSN configured.
func (d *DatabaseComponent) DB() *gorm.DB {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.db
}
