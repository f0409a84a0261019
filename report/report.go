// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package report writes human readable diagnostics about the graphics
// runtime, one entry per line, and JSON dumps of physical devices.
package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/devblok/koruboot/core"
	"github.com/pierrec/lz4"
	"github.com/pkg/errors"
)

// Layers prints the supported validation layers
func Layers(w io.Writer, layers []core.LayerDescriptor) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "available validation layers:")
	for _, layer := range layers {
		fmt.Fprintf(bw, "\t%s\n", layer.Name)
	}
	return bw.Flush()
}

// Extensions prints the supported instance extensions
func Extensions(w io.Writer, extensions []core.ExtensionDescriptor) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "available extensions:")
	for _, ext := range extensions {
		fmt.Fprintf(bw, "\t%s\n", ext.Name)
	}
	return bw.Flush()
}

// Devices prints a property dump for each device in the given order
func Devices(w io.Writer, devices []core.PhysicalDeviceInfo) error {
	bw := bufio.NewWriter(w)
	for _, d := range devices {
		fmt.Fprintf(bw, "device %d: %s\n", d.Index, d.Name)
		fmt.Fprintf(bw, "\ttype: %s\n", d.Type)
		fmt.Fprintf(bw, "\tapi version: %s\n", d.APIVersion)
		fmt.Fprintf(bw, "\tdriver version: %s\n", d.DriverVersion)
		fmt.Fprintf(bw, "\tvendor id: %#x\n", d.VendorID)
		fmt.Fprintf(bw, "\tdevice id: %#x\n", d.DeviceID)
		fmt.Fprintf(bw, "\tpipeline cache uuid: %s\n", d.CacheUUID)
		if d.Memory > 0 {
			fmt.Fprintf(bw, "\tmemory: %d MiB\n", d.Memory>>20)
		}
	}
	return bw.Flush()
}

// WriteJSON encodes devices as JSON, lz4 compressed when compress is set.
func WriteJSON(w io.Writer, devices []core.PhysicalDeviceInfo, compress bool) error {
	if !compress {
		return errors.Wrap(json.NewEncoder(w).Encode(devices), "encoding devices")
	}

	zw := lz4.NewWriter(w)
	if err := json.NewEncoder(zw).Encode(devices); err != nil {
		zw.Close()
		return errors.Wrap(err, "encoding devices")
	}
	return errors.Wrap(zw.Close(), "lz4")
}

// ReadJSON decodes what WriteJSON wrote.
func ReadJSON(r io.Reader, compressed bool) ([]core.PhysicalDeviceInfo, error) {
	if compressed {
		r = lz4.NewReader(r)
	}
	var devices []core.PhysicalDeviceInfo
	if err := json.NewDecoder(r).Decode(&devices); err != nil {
		return nil, errors.Wrap(err, "decoding devices")
	}
	return devices, nil
}
