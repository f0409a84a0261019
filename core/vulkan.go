// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"unsafe"

	vk "github.com/devblok/vulkan"
	"github.com/pkg/errors"
)

// NewVulkan creates the Vulkan API platform. Init has to be called
// before any other method.
func NewVulkan() *Vulkan {
	return &Vulkan{}
}

var _ Platform = (*Vulkan)(nil)

// Vulkan implements Platform on top of the Vulkan API
type Vulkan struct{}

// Init implements interface
func (v *Vulkan) Init(procAddr unsafe.Pointer) error {
	if procAddr == nil {
		if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
			return errors.New("vk.InstanceProcAddr(): " + err.Error())
		}
	} else {
		vk.SetGetInstanceProcAddr(procAddr)
	}

	if err := vk.Init(); err != nil {
		return errors.New("vk.Init(): " + err.Error())
	}
	return nil
}

// InstanceLayers implements interface
func (v *Vulkan) InstanceLayers() ([]LayerDescriptor, error) {
	var count uint32
	if err := vk.Error(vk.EnumerateInstanceLayerProperties(&count, nil)); err != nil {
		return nil, errors.New("vk.EnumerateInstanceLayerProperties(): " + err.Error())
	}
	properties := make([]vk.LayerProperties, count)
	if err := vk.Error(vk.EnumerateInstanceLayerProperties(&count, properties)); err != nil {
		return nil, errors.New("vk.EnumerateInstanceLayerProperties(): " + err.Error())
	}

	layers := make([]LayerDescriptor, 0, count)
	for _, layer := range properties[:count] {
		layer.Deref()
		layers = append(layers, LayerDescriptor{
			Name:                  vk.ToString(layer.LayerName[:]),
			Description:           vk.ToString(layer.Description[:]),
			SpecVersion:           layer.SpecVersion,
			ImplementationVersion: layer.ImplementationVersion,
		})
	}
	return layers, nil
}

// InstanceExtensions implements interface
func (v *Vulkan) InstanceExtensions() ([]ExtensionDescriptor, error) {
	var count uint32
	if err := vk.Error(vk.EnumerateInstanceExtensionProperties("", &count, nil)); err != nil {
		return nil, errors.New("vk.EnumerateInstanceExtensionProperties(): " + err.Error())
	}
	properties := make([]vk.ExtensionProperties, count)
	if err := vk.Error(vk.EnumerateInstanceExtensionProperties("", &count, properties)); err != nil {
		return nil, errors.New("vk.EnumerateInstanceExtensionProperties(): " + err.Error())
	}
	return extensionDescriptors(properties[:count]), nil
}

// CreateInstance implements interface
func (v *Vulkan) CreateInstance(info InstanceInfo) (InstanceHandle, error) {
	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         info.APIVersion,
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		EngineVersion:      vk.MakeVersion(1, 0, 0),
		PApplicationName:   safeString(info.ApplicationName),
		PEngineName:        safeString(info.EngineName),
	}

	instanceInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(info.Extensions)),
		PpEnabledExtensionNames: safeStrings(info.Extensions),
		EnabledLayerCount:       uint32(len(info.Layers)),
		PpEnabledLayerNames:     safeStrings(info.Layers),
	}

	var instance vk.Instance
	if err := vk.Error(vk.CreateInstance(&instanceInfo, nil, &instance)); err != nil {
		return nil, errors.New("vk.CreateInstance(): " + err.Error())
	}
	if err := vk.InitInstance(instance); err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, errors.New("vk.InitInstance(): " + err.Error())
	}
	return instance, nil
}

// DestroyInstance implements interface
func (v *Vulkan) DestroyInstance(instance InstanceHandle) {
	if inst, ok := instance.(vk.Instance); ok {
		vk.DestroyInstance(inst, nil)
	}
}

// PhysicalDevices implements interface
func (v *Vulkan) PhysicalDevices(instance InstanceHandle) ([]PhysicalDeviceHandle, error) {
	inst, ok := instance.(vk.Instance)
	if !ok {
		return nil, errors.Errorf("unexpected instance handle %T", instance)
	}

	var deviceCount uint32
	if err := vk.Error(vk.EnumeratePhysicalDevices(inst, &deviceCount, nil)); err != nil {
		return nil, errors.New("vk.EnumeratePhysicalDevices(): " + err.Error())
	}
	availableDevices := make([]vk.PhysicalDevice, deviceCount)
	if err := vk.Error(vk.EnumeratePhysicalDevices(inst, &deviceCount, availableDevices)); err != nil {
		return nil, errors.New("vk.EnumeratePhysicalDevices(): " + err.Error())
	}

	handles := make([]PhysicalDeviceHandle, deviceCount)
	for i := range handles {
		handles[i] = availableDevices[i]
	}
	return handles, nil
}

// PhysicalDeviceProperties implements interface
func (v *Vulkan) PhysicalDeviceProperties(device PhysicalDeviceHandle) PhysicalDeviceProperties {
	var physicalDeviceProperties vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(device.(vk.PhysicalDevice), &physicalDeviceProperties)
	physicalDeviceProperties.Deref()

	return PhysicalDeviceProperties{
		APIVersion:        physicalDeviceProperties.ApiVersion,
		DriverVersion:     physicalDeviceProperties.DriverVersion,
		VendorID:          physicalDeviceProperties.VendorID,
		DeviceID:          physicalDeviceProperties.DeviceID,
		Type:              deviceType(physicalDeviceProperties.DeviceType),
		Name:              vk.ToString(physicalDeviceProperties.DeviceName[:]),
		PipelineCacheUUID: physicalDeviceProperties.PipelineCacheUUID,
	}
}

// PhysicalDeviceMemory implements interface
func (v *Vulkan) PhysicalDeviceMemory(device PhysicalDeviceHandle) uint64 {
	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(device.(vk.PhysicalDevice), &memoryProperties)
	memoryProperties.Deref()

	var total uint64
	for iMem := uint32(0); iMem < memoryProperties.MemoryHeapCount; iMem++ {
		memoryProperties.MemoryHeaps[iMem].Deref()
		total += uint64(memoryProperties.MemoryHeaps[iMem].Size)
	}
	return total
}

// PhysicalDeviceExtensions implements interface
func (v *Vulkan) PhysicalDeviceExtensions(device PhysicalDeviceHandle) ([]ExtensionDescriptor, error) {
	pd := device.(vk.PhysicalDevice)

	var numDeviceExtensions uint32
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(pd, "", &numDeviceExtensions, nil)); err != nil {
		return nil, errors.New("vk.EnumerateDeviceExtensionProperties(): " + err.Error())
	}
	deviceExt := make([]vk.ExtensionProperties, numDeviceExtensions)
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(pd, "", &numDeviceExtensions, deviceExt)); err != nil {
		return nil, errors.New("vk.EnumerateDeviceExtensionProperties(): " + err.Error())
	}
	return extensionDescriptors(deviceExt[:numDeviceExtensions]), nil
}

func extensionDescriptors(properties []vk.ExtensionProperties) []ExtensionDescriptor {
	extensions := make([]ExtensionDescriptor, 0, len(properties))
	for _, ext := range properties {
		ext.Deref()
		extensions = append(extensions, ExtensionDescriptor{
			Name:        vk.ToString(ext.ExtensionName[:]),
			SpecVersion: ext.SpecVersion,
		})
	}
	return extensions
}

func deviceType(t vk.PhysicalDeviceType) DeviceType {
	switch t {
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return DeviceTypeIntegratedGPU
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return DeviceTypeDiscreteGPU
	case vk.PhysicalDeviceTypeVirtualGpu:
		return DeviceTypeVirtualGPU
	case vk.PhysicalDeviceTypeCpu:
		return DeviceTypeCPU
	default:
		return DeviceTypeOther
	}
}
