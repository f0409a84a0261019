// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"errors"
	"fmt"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/devblok/koruboot/core"
	"github.com/devblok/koruboot/core/coretest"
)

func newInstance(c *qt.C, platform *coretest.Platform) core.InstanceHandle {
	instance, err := platform.CreateInstance(core.InstanceInfo{})
	c.Assert(err, qt.IsNil)
	return instance
}

func TestDeviceTypeLabels(t *testing.T) {
	c := qt.New(t)
	c.Assert(core.DeviceTypeOther.String(), qt.Equals, "Other")
	c.Assert(core.DeviceTypeIntegratedGPU.String(), qt.Equals, "Integrated GPU")
	c.Assert(core.DeviceTypeDiscreteGPU.String(), qt.Equals, "Discrete GPU")
	c.Assert(core.DeviceTypeVirtualGPU.String(), qt.Equals, "Virtual GPU")
	c.Assert(core.DeviceTypeCPU.String(), qt.Equals, "CPU")

	for _, unknown := range []core.DeviceType{-1, 5, 42, 1 << 20} {
		c.Assert(unknown.String(), qt.Equals, "Other")
	}
	for code := core.DeviceTypeOther; code <= core.DeviceTypeCPU; code++ {
		c.Assert(code.String(), qt.Not(qt.Equals), "")
	}
}

func TestDeviceTypeText(t *testing.T) {
	c := qt.New(t)
	for code := core.DeviceTypeOther; code <= core.DeviceTypeCPU; code++ {
		text, err := code.MarshalText()
		c.Assert(err, qt.IsNil)
		var back core.DeviceType
		c.Assert(back.UnmarshalText(text), qt.IsNil)
		c.Assert(back, qt.Equals, code)
	}
}

func TestVersion(t *testing.T) {
	c := qt.New(t)
	c.Assert(core.Version(core.MakeVersion(1, 3, 250)), qt.Equals, "1.3.250")
	c.Assert(core.Version(0), qt.Equals, "0.0.0")
}

func TestEnumerateNoDevices(t *testing.T) {
	c := qt.New(t)
	platform := &coretest.Platform{}
	selector := core.NewDeviceSelector(platform, nil, nil, nil)

	devices, err := selector.Enumerate(newInstance(c, platform))
	c.Assert(devices, qt.IsNil)
	c.Assert(errors.Is(err, core.ErrNoGPUFound), qt.Equals, true)

	_, err = selector.Select()
	c.Assert(errors.Is(err, core.ErrNotEnumerated), qt.Equals, true)
}

func TestEnumeratePlatformError(t *testing.T) {
	c := qt.New(t)
	platform := &coretest.Platform{DevicesErr: errors.New("ErrorInitializationFailed")}

	_, err := core.NewDeviceSelector(platform, nil, nil, nil).Enumerate(newInstance(c, platform))
	c.Assert(err, qt.ErrorMatches, "vulkan physical device enumeration failed: ErrorInitializationFailed")
}

func TestSelectFirstSuitableRejectsAll(t *testing.T) {
	c := qt.New(t)
	platform := &coretest.Platform{Devices: []*coretest.Device{
		coretest.NewDevice("a", core.DeviceTypeCPU),
		coretest.NewDevice("b", core.DeviceTypeDiscreteGPU),
	}}
	selector := core.NewDeviceSelector(platform, func(core.PhysicalDeviceProperties) bool { return false }, nil, nil)

	_, err := selector.Enumerate(newInstance(c, platform))
	c.Assert(err, qt.IsNil)

	device, err := selector.Select()
	c.Assert(device, qt.IsNil)
	c.Assert(errors.Is(err, core.ErrNoSuitableGPU), qt.Equals, true)
	c.Assert(selector.Selected(), qt.IsNil)
}

func TestSelectFirstSuitableThirdOfFive(t *testing.T) {
	c := qt.New(t)
	var devices []*coretest.Device
	for i := 0; i < 5; i++ {
		devices = append(devices, coretest.NewDevice(fmt.Sprintf("gpu%d", i), core.DeviceTypeDiscreteGPU))
	}
	wanted := devices[2]
	props := func(h core.PhysicalDeviceHandle) core.PhysicalDeviceProperties {
		return h.(*coretest.Device).Properties
	}
	onlyWanted := func(p core.PhysicalDeviceProperties) bool { return p.Name == wanted.Properties.Name }

	orders := [][]int{{0, 1, 2, 3, 4}, {4, 3, 2, 1, 0}, {2, 0, 1, 4, 3}, {1, 4, 0, 3, 2}}
	for _, order := range orders {
		var candidates []core.PhysicalDeviceHandle
		for _, idx := range order {
			candidates = append(candidates, devices[idx])
		}
		got, err := core.SelectFirstSuitable(candidates, props, onlyWanted)
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.Equals, core.PhysicalDeviceHandle(wanted))
	}
}

func TestSelectAnyPicksFirstEnumerated(t *testing.T) {
	c := qt.New(t)
	platform := &coretest.Platform{Devices: []*coretest.Device{
		coretest.NewDevice("llvmpipe", core.DeviceTypeCPU),
		coretest.NewDevice("Intel UHD", core.DeviceTypeIntegratedGPU),
		coretest.NewDevice("GeForce RTX", core.DeviceTypeDiscreteGPU),
	}}
	selector := core.NewDeviceSelector(platform, nil, nil, nil)

	handles, err := selector.Enumerate(newInstance(c, platform))
	c.Assert(err, qt.IsNil)
	c.Assert(handles, qt.HasLen, 3)

	device, err := selector.Select()
	c.Assert(err, qt.IsNil)
	c.Assert(selector.Properties(device).Name, qt.Equals, "llvmpipe")
	c.Assert(selector.Selected(), qt.Equals, device)
}

func TestSelectionIsFinal(t *testing.T) {
	c := qt.New(t)
	platform := &coretest.Platform{Devices: []*coretest.Device{
		coretest.NewDevice("gpu", core.DeviceTypeDiscreteGPU),
	}}
	selector := core.NewDeviceSelector(platform, nil, nil, nil)
	instance := newInstance(c, platform)

	_, err := selector.Enumerate(instance)
	c.Assert(err, qt.IsNil)
	first, err := selector.Select()
	c.Assert(err, qt.IsNil)

	_, err = selector.Select()
	c.Assert(errors.Is(err, core.ErrAlreadySelected), qt.Equals, true)
	_, err = selector.Enumerate(instance)
	c.Assert(errors.Is(err, core.ErrAlreadySelected), qt.Equals, true)
	c.Assert(selector.Selected(), qt.Equals, first)
}

func TestSelectWithRanker(t *testing.T) {
	c := qt.New(t)
	platform := &coretest.Platform{Devices: []*coretest.Device{
		coretest.NewDevice("llvmpipe", core.DeviceTypeCPU),
		coretest.NewDevice("Intel UHD", core.DeviceTypeIntegratedGPU),
		coretest.NewDevice("GeForce RTX", core.DeviceTypeDiscreteGPU),
		coretest.NewDevice("Radeon", core.DeviceTypeDiscreteGPU),
	}}
	preferDiscrete := func(a, b core.PhysicalDeviceProperties) bool {
		return a.Type == core.DeviceTypeDiscreteGPU && b.Type != core.DeviceTypeDiscreteGPU
	}
	notRTX := func(p core.PhysicalDeviceProperties) bool { return p.Name != "GeForce RTX" }

	selector := core.NewDeviceSelector(platform, notRTX, preferDiscrete, nil)
	_, err := selector.Enumerate(newInstance(c, platform))
	c.Assert(err, qt.IsNil)

	device, err := selector.Select()
	c.Assert(err, qt.IsNil)
	c.Assert(selector.Properties(device).Name, qt.Equals, "Radeon")
}

func TestPhysicalDevicesInfo(t *testing.T) {
	c := qt.New(t)
	gpu := coretest.NewDevice("GeForce RTX", core.DeviceTypeDiscreteGPU)
	gpu.Properties.VendorID = 0x10de
	gpu.Properties.DeviceID = 0x2684
	gpu.Properties.DriverVersion = core.MakeVersion(535, 0, 0)
	gpu.Properties.PipelineCacheUUID = [16]byte{0xde, 0xad, 0xbe, 0xef}
	gpu.Memory = 24 << 30
	gpu.Extensions = []core.ExtensionDescriptor{{Name: "VK_KHR_swapchain"}}

	broken := coretest.NewDevice("broken", core.DeviceTypeOther)
	broken.ExtensionsErr = errors.New("ErrorDeviceLost")

	platform := &coretest.Platform{}
	info := core.PhysicalDevicesInfo(platform, []core.PhysicalDeviceHandle{gpu, broken})
	c.Assert(info, qt.HasLen, 2)
	c.Assert(info[0], qt.DeepEquals, core.PhysicalDeviceInfo{
		Index:         0,
		Name:          "GeForce RTX",
		Type:          core.DeviceTypeDiscreteGPU,
		APIVersion:    "1.0.0",
		DriverVersion: "535.0.0",
		VendorID:      0x10de,
		DeviceID:      0x2684,
		CacheUUID:     "deadbeef000000000000000000000000",
		Memory:        24 << 30,
		Extensions:    []string{"VK_KHR_swapchain"},
	})
	c.Assert(info[1].Index, qt.Equals, 1)
	c.Assert(info[1].Invalid, qt.Equals, true)
}
