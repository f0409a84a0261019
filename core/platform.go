// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import "unsafe"

// LayerDescriptor describes an instance layer reported by the runtime.
type LayerDescriptor struct {
	Name                  string
	Description           string
	SpecVersion           uint32
	ImplementationVersion uint32
}

// ExtensionDescriptor describes an instance or device extension.
type ExtensionDescriptor struct {
	Name        string
	SpecVersion uint32
}

// InstanceHandle is an opaque live connection to the graphics runtime.
type InstanceHandle interface{}

// PhysicalDeviceHandle is an opaque reference to a device enumerated
// from an instance. It is owned by the instance and never destroyed directly.
type PhysicalDeviceHandle interface{}

// InstanceInfo holds everything needed to create an instance.
type InstanceInfo struct {
	ApplicationName string
	EngineName      string
	APIVersion      uint32
	Layers          []string
	Extensions      []string
}

// Platform describes the graphics runtime primitives the bootstrap consumes.
// Implementations hide the query-count-then-query-data protocol, callers
// only ever see complete sequences.
type Platform interface {
	// Init binds the runtime loader. A nil procAddr selects the
	// default system loader.
	Init(procAddr unsafe.Pointer) error

	// InstanceLayers lists layers available to new instances
	InstanceLayers() ([]LayerDescriptor, error)

	// InstanceExtensions lists platform-global instance extensions
	InstanceExtensions() ([]ExtensionDescriptor, error)

	// CreateInstance allocates a new instance
	CreateInstance(info InstanceInfo) (InstanceHandle, error)

	// DestroyInstance releases an instance created by CreateInstance
	DestroyInstance(instance InstanceHandle)

	// PhysicalDevices returns devices exposed by the instance
	// in platform-defined order
	PhysicalDevices(instance InstanceHandle) ([]PhysicalDeviceHandle, error)

	// PhysicalDeviceProperties captures a read-only snapshot
	PhysicalDeviceProperties(device PhysicalDeviceHandle) PhysicalDeviceProperties

	// PhysicalDeviceMemory sums up the size of all memory heaps
	PhysicalDeviceMemory(device PhysicalDeviceHandle) uint64

	// PhysicalDeviceExtensions lists extensions supported by a device
	PhysicalDeviceExtensions(device PhysicalDeviceHandle) ([]ExtensionDescriptor, error)
}
