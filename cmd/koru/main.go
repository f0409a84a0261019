// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/devblok/koruboot/app"
	"github.com/devblok/koruboot/core"
	"github.com/devblok/koruboot/window"
	log "github.com/sirupsen/logrus"
)

func init() {
	runtime.LockOSThread()
}

var (
	envFile = flag.String("env", "", "Load configuration overrides from this env file")
	stage   = flag.String("stage", "", "Bootstrap stage to run: instance or device")
	debug   = flag.Bool("vkdbg", false, "Force loading of Vulkan validation layers")
)

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	if *envFile != "" {
		if err := core.LoadEnvironment(*envFile); err != nil {
			log.Error(err)
			return 1
		}
	}

	configuration, err := core.LoadConfiguration(core.DefaultsBox)
	if err != nil {
		log.Error(err)
		return 1
	}
	if *stage != "" {
		if configuration.Stage, err = core.ParseStage(*stage); err != nil {
			log.Error(err)
			return 1
		}
	}
	if *debug {
		configuration.Instance.Validation = true
	}
	if level, err := log.ParseLevel(configuration.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.WithError(err).Warn("using default log level")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	application := app.New(configuration, app.Options{
		Window:   window.NewSDL(log.StandardLogger()),
		Platform: core.NewVulkan(),
		Output:   os.Stdout,
		Logger:   log.StandardLogger(),
	})
	if err := application.Run(ctx); err != nil {
		log.Error(err)
		return 1
	}
	return 0
}
