// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package app sequences the bootstrap: window, instance, device selection
// and the event loop, releasing everything in reverse order.
package app

import (
	"context"
	"io"

	"github.com/devblok/koruboot/core"
	"github.com/devblok/koruboot/report"
	"github.com/devblok/koruboot/window"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Options are the collaborators of an Application
type Options struct {
	Window   window.System
	Platform core.Platform

	// Suitable and Rank drive device selection, nil means
	// any device in enumeration order
	Suitable core.Predicate
	Rank     core.Ranker

	// Output receives the diagnostic listings
	Output io.Writer
	Logger log.FieldLogger
}

// New creates an Application
func New(cfg core.Configuration, opts Options) *Application {
	if opts.Logger == nil {
		opts.Logger = log.StandardLogger()
	}
	if opts.Output == nil {
		opts.Output = io.Discard
	}
	return &Application{
		configuration: cfg,
		options:       opts,
		logger:        opts.Logger.WithField("stage", cfg.Stage),
	}
}

// Application drives a single bootstrap run
type Application struct {
	configuration core.Configuration
	options       Options
	logger        log.FieldLogger

	window   window.Window
	instance core.InstanceHandle
	device   core.PhysicalDeviceHandle
}

// Device returns the selected physical device. It is nil outside of the
// event loop and when the configured stage does not select one.
func (a *Application) Device() core.PhysicalDeviceHandle {
	return a.device
}

// Run initialises everything, then polls window events until the window
// is closed or ctx is cancelled. Acquired resources are always released.
func (a *Application) Run(ctx context.Context) error {
	ws := a.options.Window
	cfg := a.configuration

	if err := ws.Init(); err != nil {
		return errors.WithMessage(err, "initWindow")
	}
	defer ws.Terminate()

	w, err := ws.CreateWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title)
	if err != nil {
		return errors.WithMessage(err, "initWindow")
	}
	a.window = w
	defer w.Destroy()

	// initVulkan may fail after the instance exists
	defer a.cleanupVulkan()
	if err := a.initVulkan(); err != nil {
		return errors.WithMessage(err, "initVulkan")
	}

	return a.mainLoop(ctx)
}

func (a *Application) initVulkan() error {
	platform := a.options.Platform
	if err := platform.Init(a.options.Window.InstanceProcAddr()); err != nil {
		return err
	}

	factory := core.NewInstanceFactory(platform, a.configuration.Instance, a.logger)
	instance, err := factory.CreateInstance(a.window.RequiredInstanceExtensions())
	if err != nil {
		return err
	}
	a.instance = instance

	if a.configuration.Stage != core.StageDevice {
		return nil
	}

	selector := core.NewDeviceSelector(platform, a.options.Suitable, a.options.Rank, a.logger)
	devices, err := selector.Enumerate(instance)
	if err != nil {
		return err
	}
	if err := report.Devices(a.options.Output, core.PhysicalDevicesInfo(platform, devices)); err != nil {
		return err
	}

	device, err := selector.Select()
	if err != nil {
		return err
	}
	a.device = device
	return nil
}

func (a *Application) cleanupVulkan() {
	if a.instance == nil {
		return
	}
	a.device = nil
	a.options.Platform.DestroyInstance(a.instance)
	a.instance = nil
	a.logger.Debug("instance destroyed")
}

func (a *Application) mainLoop(ctx context.Context) error {
	if err := a.printDiagnostics(); err != nil {
		return errors.WithMessage(err, "mainLoop")
	}

	timeService := core.NewTime(a.configuration.Time)
	defer timeService.Stop()

	for !a.window.ShouldClose() {
		select {
		case <-ctx.Done():
			a.logger.Info("event loop cancelled")
			return nil
		case <-timeService.EventTicker().C:
			a.options.Window.PollEvents()
		}
	}
	a.logger.Info("window closed")
	return nil
}

func (a *Application) printDiagnostics() error {
	platform := a.options.Platform

	extensions, err := platform.InstanceExtensions()
	if err != nil {
		return err
	}
	if err := report.Extensions(a.options.Output, extensions); err != nil {
		return err
	}

	layers, err := platform.InstanceLayers()
	if err != nil {
		return err
	}
	return report.Layers(a.options.Output, layers)
}
