// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"flag"
	"io"
	"os"

	"github.com/devblok/koruboot/core"
	"github.com/devblok/koruboot/report"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var (
	output   = flag.String("o", "", "Write the device dump to this file instead of stdout")
	compress = flag.Bool("lz4", false, "Compress the device dump with lz4")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func run() error {
	configuration, err := core.LoadConfiguration(core.DefaultsBox)
	if err != nil {
		return err
	}

	platform := core.NewVulkan()
	if err := platform.Init(nil); err != nil {
		return err
	}

	factory := core.NewInstanceFactory(platform, configuration.Instance, log.StandardLogger())
	instance, err := factory.CreateInstance(nil)
	if err != nil {
		return err
	}
	defer platform.DestroyInstance(instance)

	selector := core.NewDeviceSelector(platform, nil, nil, log.StandardLogger())
	devices, err := selector.Enumerate(instance)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return errors.Wrap(err, "creating output")
		}
		defer f.Close()
		w = f
	}
	return report.WriteJSON(w, core.PhysicalDevicesInfo(platform, devices), *compress)
}
