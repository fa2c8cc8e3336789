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

// Command apostol is the process entry point: it parses the CLI (§6),
// selects a role, and runs either the master supervisor, a standalone/forked
// worker, or a one-shot signaller against an already-running instance.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sabouaram/apostol/app"
	"github.com/sabouaram/apostol/config"
	liberr "github.com/sabouaram/apostol/errors"
	"github.com/sabouaram/apostol/eventloop"
	"github.com/sabouaram/apostol/logger"
	"github.com/sabouaram/apostol/module"
	"github.com/sabouaram/apostol/monitor"
	"github.com/sabouaram/apostol/nethttp"
	"github.com/sabouaram/apostol/router"
)

// errColor renders fatal CLI errors in red over a Windows-safe ANSI writer,
// the same combination the teacher's console/color.go wraps fatih/color in.
var errColor = color.New(color.FgRed)
var errOut = colorable.NewColorableStderr()

// buildVersion/buildCommit/buildDate are overridden at link time via
// -ldflags "-X main.buildVersion=... -X main.buildCommit=... -X main.buildDate=...".
var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var opt app.Options

func main() {
	root := &cobra.Command{
		Use:          "apostol",
		Short:        "apostol application server",
		SilenceUsage: true,
		RunE:         run,
	}

	flags := root.Flags()
	version := flags.BoolP("version", "v", false, "print version and exit")
	buildInfo := flags.BoolP("build-info", "V", false, "print build/configure summary and exit")
	flags.BoolVarP(&opt.TestOnly, "test", "t", false, "validate the config given by -c and exit")
	flags.StringVarP(&opt.ConfigPath, "config", "c", "", "path to the JSON configuration")
	flags.StringVarP(&opt.Prefix, "prefix", "p", "/var/run/apostol", "installation prefix, also used to derive the PID file path")
	flags.IntVarP(&opt.Workers, "workers", "w", 1, "worker process count (master role only)")
	flags.BoolVarP(&opt.Daemon, "foreground", "d", false, "run in the foreground, skip daemonising")
	flags.StringVarP(&opt.Locale, "locale", "l", "", "set locale")
	flags.StringVarP(&opt.Directive, "directive", "g", "", "inline config directive, key=value")
	flags.StringVarP(&opt.Signal, "signal", "s", "", "signaller mode: stop|quit|reopen|reload|upgrade")
	flags.BoolVar(&opt.Master, "master", false, "run as the master/supervisor role")
	flags.BoolVar(&opt.Helper, "helper", false, "run as a standalone helper (background-job) role")

	root.PreRunE = func(cmd *cobra.Command, args []string) error {
		if *version {
			fmt.Println(buildVersion)
			os.Exit(0)
		}
		if *buildInfo {
			fmt.Printf("apostol %s\ncommit: %s\nbuilt: %s\n", buildVersion, buildCommit, buildDate)
			os.Exit(0)
		}
		return nil
	}

	if err := root.Execute(); err != nil {
		_, _ = errColor.Fprintln(errOut, err)
		os.Exit(1)
	}
}

func pidFilePath() string {
	return filepath.Join(opt.Prefix, "apostol.pid")
}

func run(cmd *cobra.Command, args []string) error {
	if opt.TestOnly {
		if opt.ConfigPath == "" {
			return fmt.Errorf("-t requires -c <path>")
		}
		if err := config.Validate(opt.ConfigPath); err != nil {
			_, _ = errColor.Fprintln(errOut, err.Error())
			os.Exit(1)
		}
		fmt.Println("config ok")
		return nil
	}

	role := app.SelectRole(opt)
	switch os.Getenv(app.EnvRole) {
	case app.RoleWorker.String():
		role = app.RoleWorker
	case app.RoleHelper.String():
		role = app.RoleHelper
	}

	if role == app.RoleSignaller {
		pf := app.NewPIDFile(pidFilePath())
		if err := app.Signal(pf, opt.Signal, nil); err != nil {
			return fmt.Errorf("%s", err.Error())
		}
		return nil
	}

	if role == app.RoleMaster && !opt.Daemon {
		isChild, err := app.Daemonize()
		if err != nil {
			return fmt.Errorf("daemonize: %s", err.Error())
		}
		if !isChild {
			return nil
		}
	}

	v, lg, err := loadConfigAndLogger()
	if err != nil {
		return fmt.Errorf("%s", err.Error())
	}

	switch role {
	case app.RoleMaster:
		return runMaster(lg, v)
	default:
		return runWorker(lg, v)
	}
}

func loadConfigAndLogger() (*viper.Viper, logger.Logger, liberr.Error) {
	var v *viper.Viper
	var err liberr.Error

	if opt.ConfigPath != "" {
		v, err = config.Load(opt.ConfigPath)
		if err != nil {
			return nil, nil, err
		}
	} else {
		v = viper.New()
	}

	if opt.Directive != "" {
		if err = config.Directive(v, opt.Directive); err != nil {
			return nil, nil, err
		}
	}

	lg := logger.New(logger.LevelInfo)
	if path := v.GetString("log.file"); path != "" {
		_ = lg.AddFile(path)
	}

	return v, lg, nil
}

// runMaster wires the supervisor role (§4.9): bind the configured
// listeners once, then fork/reap/signal worker generations.
func runMaster(lg logger.Logger, v *viper.Viper) error {
	sup := app.NewSupervisor(lg, os.Args[0], os.Args[1:], app.SupervisorOption{
		PIDFile: pidFilePath(),
		Workers: opt.Workers,
	})

	listenAddrs := v.GetStringSlice("listen")
	if len(listenAddrs) == 0 {
		listenAddrs = []string{":8080"}
	}

	if err := sup.Run(listenAddrs); err != nil {
		return fmt.Errorf("%s", err.Error())
	}
	return nil
}

// runWorker wires the single/worker/helper roles: one event loop, the
// configured component lifecycle, and the module dispatch fabric mounted
// behind the route table.
func runWorker(lg logger.Logger, v *viper.Viper) error {
	components := config.NewManager()
	db := config.NewDatabaseComponent()
	db.Init(v, lg)
	if err := components.Register(db); err != nil {
		return fmt.Errorf("%s", err.Error())
	}
	if err := components.Start(); err != nil {
		return fmt.Errorf("%s", err.Error())
	}
	defer components.Stop()

	modules := module.NewManager()
	routes := router.NewManager(v.GetString("router.base_path"))
	if _, err := routes.Add("GET", "/healthz", func(req *nethttp.Request, resp *nethttp.Response, params router.PathParams) {
		resp.WriteStatus(200)
		resp.WriteBody([]byte("ok"))
	}); err != nil {
		return fmt.Errorf("%s", err.Error())
	}

	mon := monitor.NewCollector("apostol")
	if _, err := routes.Add("GET", "/metrics", func(req *nethttp.Request, resp *nethttp.Response, params router.PathParams) {
		mon.Handler()(req, resp)
	}); err != nil {
		return fmt.Errorf("%s", err.Error())
	}

	if err := modules.Register(router.NewModule("http", routes)); err != nil {
		return fmt.Errorf("%s", err.Error())
	}

	loop, lerr := eventloop.New()
	if lerr != nil {
		return fmt.Errorf("%s", lerr.Error())
	}
	defer loop.Close()

	worker := app.NewWorker(lg, loop, modules)
	worker.SetMonitor(mon)
	if err := worker.Run(); err != nil {
		return fmt.Errorf("%s", err.Error())
	}
	return nil
}
