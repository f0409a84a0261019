// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package coretest provides an in-memory core.Platform for tests.
package coretest

import (
	"errors"
	"sync"
	"unsafe"

	"github.com/devblok/koruboot/core"
)

// Device is a fake physical device
type Device struct {
	Properties core.PhysicalDeviceProperties
	Memory     uint64
	Extensions []core.ExtensionDescriptor

	// ExtensionsErr is returned when the device extensions are queried
	ExtensionsErr error
}

// Instance is the handle given out by Platform
type Instance struct {
	ID   int
	Info core.InstanceInfo
}

// Platform is a scripted core.Platform. Zero value is usable and
// reports nothing.
type Platform struct {
	Layers     []core.LayerDescriptor
	Extensions []core.ExtensionDescriptor
	Devices    []*Device

	InitErr     error
	LayersErr   error
	CreateErr   error
	DevicesErr  error
	InitAddress unsafe.Pointer

	mu        sync.Mutex
	nextID    int
	live      map[int]*Instance
	destroyed []int
	calls     []string
}

var _ core.Platform = (*Platform)(nil)

// ErrUnknownInstance is set when a foreign handle is passed in
var ErrUnknownInstance = errors.New("coretest: unknown instance")

func (p *Platform) record(call string) {
	p.mu.Lock()
	p.calls = append(p.calls, call)
	p.mu.Unlock()
}

// Calls returns the recorded method names in call order
func (p *Platform) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

// Live returns the number of instances not yet destroyed
func (p *Platform) Live() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.live)
}

// Destroyed returns ids of destroyed instances, in order
func (p *Platform) Destroyed() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int(nil), p.destroyed...)
}

// Init implements interface
func (p *Platform) Init(procAddr unsafe.Pointer) error {
	p.record("Init")
	p.InitAddress = procAddr
	return p.InitErr
}

// InstanceLayers implements interface
func (p *Platform) InstanceLayers() ([]core.LayerDescriptor, error) {
	p.record("InstanceLayers")
	if p.LayersErr != nil {
		return nil, p.LayersErr
	}
	return append([]core.LayerDescriptor(nil), p.Layers...), nil
}

// InstanceExtensions implements interface
func (p *Platform) InstanceExtensions() ([]core.ExtensionDescriptor, error) {
	p.record("InstanceExtensions")
	return append([]core.ExtensionDescriptor(nil), p.Extensions...), nil
}

// CreateInstance implements interface
func (p *Platform) CreateInstance(info core.InstanceInfo) (core.InstanceHandle, error) {
	p.record("CreateInstance")
	if p.CreateErr != nil {
		return nil, p.CreateErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.live == nil {
		p.live = make(map[int]*Instance)
	}
	p.nextID++
	inst := &Instance{ID: p.nextID, Info: info}
	p.live[inst.ID] = inst
	return inst, nil
}

// DestroyInstance implements interface
func (p *Platform) DestroyInstance(instance core.InstanceHandle) {
	p.record("DestroyInstance")
	inst, ok := instance.(*Instance)
	if !ok {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.live[inst.ID]; ok {
		delete(p.live, inst.ID)
		p.destroyed = append(p.destroyed, inst.ID)
	}
}

// PhysicalDevices implements interface
func (p *Platform) PhysicalDevices(instance core.InstanceHandle) ([]core.PhysicalDeviceHandle, error) {
	p.record("PhysicalDevices")
	inst, ok := instance.(*Instance)
	if !ok {
		return nil, ErrUnknownInstance
	}
	p.mu.Lock()
	_, live := p.live[inst.ID]
	p.mu.Unlock()
	if !live {
		return nil, ErrUnknownInstance
	}
	if p.DevicesErr != nil {
		return nil, p.DevicesErr
	}
	handles := make([]core.PhysicalDeviceHandle, len(p.Devices))
	for i, d := range p.Devices {
		handles[i] = d
	}
	return handles, nil
}

// PhysicalDeviceProperties implements interface
func (p *Platform) PhysicalDeviceProperties(device core.PhysicalDeviceHandle) core.PhysicalDeviceProperties {
	return device.(*Device).Properties
}

// PhysicalDeviceMemory implements interface
func (p *Platform) PhysicalDeviceMemory(device core.PhysicalDeviceHandle) uint64 {
	return device.(*Device).Memory
}

// PhysicalDeviceExtensions implements interface
func (p *Platform) PhysicalDeviceExtensions(device core.PhysicalDeviceHandle) ([]core.ExtensionDescriptor, error) {
	d := device.(*Device)
	if d.ExtensionsErr != nil {
		return nil, d.ExtensionsErr
	}
	return d.Extensions, nil
}

// NewDevice is a shorthand for a device with a name and type
func NewDevice(name string, t core.DeviceType) *Device {
	return &Device{
		Properties: core.PhysicalDeviceProperties{
			Name:       name,
			Type:       t,
			APIVersion: core.MakeVersion(1, 0, 0),
		},
	}
}
