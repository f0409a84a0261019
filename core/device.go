// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// DeviceType classifies a physical device.
type DeviceType int

// Device types, values match the graphics runtime's.
const (
	DeviceTypeOther DeviceType = iota
	DeviceTypeIntegratedGPU
	DeviceTypeDiscreteGPU
	DeviceTypeVirtualGPU
	DeviceTypeCPU
)

// String returns a human readable label. Unknown codes are "Other".
func (t DeviceType) String() string {
	switch t {
	case DeviceTypeIntegratedGPU:
		return "Integrated GPU"
	case DeviceTypeDiscreteGPU:
		return "Discrete GPU"
	case DeviceTypeVirtualGPU:
		return "Virtual GPU"
	case DeviceTypeCPU:
		return "CPU"
	default:
		return "Other"
	}
}

// MarshalText makes the label show up in JSON dumps.
func (t DeviceType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText accepts the labels produced by MarshalText.
func (t *DeviceType) UnmarshalText(text []byte) error {
	for _, candidate := range []DeviceType{DeviceTypeIntegratedGPU, DeviceTypeDiscreteGPU, DeviceTypeVirtualGPU, DeviceTypeCPU} {
		if candidate.String() == string(text) {
			*t = candidate
			return nil
		}
	}
	*t = DeviceTypeOther
	return nil
}

// PhysicalDeviceProperties is a snapshot of a device's properties
// taken at enumeration time.
type PhysicalDeviceProperties struct {
	APIVersion        uint32
	DriverVersion     uint32
	VendorID          uint32
	DeviceID          uint32
	Type              DeviceType
	Name              string
	PipelineCacheUUID [16]byte
}

// PhysicalDeviceInfo describes available physical properties of a rendering device
type PhysicalDeviceInfo struct {
	Index         int
	Name          string
	Type          DeviceType
	APIVersion    string
	DriverVersion string
	VendorID      uint32
	DeviceID      uint32
	CacheUUID     string
	Memory        uint64
	Extensions    []string
	Invalid       bool
}

// Version unpacks a runtime version number into major.minor.patch.
func Version(v uint32) string {
	return fmt.Sprintf("%d.%d.%d", v>>22, (v>>12)&0x3ff, v&0xfff)
}

// Predicate decides if a device is suitable.
type Predicate func(PhysicalDeviceProperties) bool

// Ranker reports whether device a should be preferred over device b.
type Ranker func(a, b PhysicalDeviceProperties) bool

// AnyDevice accepts every device.
func AnyDevice(PhysicalDeviceProperties) bool {
	return true
}

// SelectFirstSuitable walks candidates in order and returns the first
// one accepted by suitable.
func SelectFirstSuitable(candidates []PhysicalDeviceHandle, properties func(PhysicalDeviceHandle) PhysicalDeviceProperties, suitable Predicate) (PhysicalDeviceHandle, error) {
	for _, candidate := range candidates {
		if suitable(properties(candidate)) {
			return candidate, nil
		}
	}
	return nil, ErrNoSuitableGPU
}

type selectorState int

const (
	stateUnqueried selectorState = iota
	stateEnumerated
	stateSelected
)

// NewDeviceSelector creates a selector. A nil predicate accepts any device,
// a nil ranker keeps first-match order.
func NewDeviceSelector(platform Platform, suitable Predicate, rank Ranker, logger log.FieldLogger) *DeviceSelector {
	if suitable == nil {
		suitable = AnyDevice
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &DeviceSelector{
		platform: platform,
		suitable: suitable,
		rank:     rank,
		logger:   logger,
	}
}

// DeviceSelector enumerates the physical devices of an instance and
// picks exactly one. Once selected, the choice is final.
type DeviceSelector struct {
	platform Platform
	suitable Predicate
	rank     Ranker
	logger   log.FieldLogger

	state    selectorState
	devices  []PhysicalDeviceHandle
	selected PhysicalDeviceHandle
}

// Enumerate lists devices exposed by the instance.
func (s *DeviceSelector) Enumerate(instance InstanceHandle) ([]PhysicalDeviceHandle, error) {
	if s.state == stateSelected {
		return nil, ErrAlreadySelected
	}
	devices, err := s.platform.PhysicalDevices(instance)
	if err != nil {
		return nil, errors.WithMessage(err, "vulkan physical device enumeration failed")
	}
	if len(devices) == 0 {
		return nil, ErrNoGPUFound
	}
	s.devices = devices
	s.state = stateEnumerated
	s.logger.WithField("count", len(devices)).Debug("physical devices enumerated")
	return devices, nil
}

// Properties fetches a read-only snapshot of the device.
func (s *DeviceSelector) Properties(device PhysicalDeviceHandle) PhysicalDeviceProperties {
	return s.platform.PhysicalDeviceProperties(device)
}

// Devices returns the enumerated handles.
func (s *DeviceSelector) Devices() []PhysicalDeviceHandle {
	return s.devices
}

// Select picks the device to use. Without a ranker it is the first
// suitable one in enumeration order.
func (s *DeviceSelector) Select() (PhysicalDeviceHandle, error) {
	switch s.state {
	case stateUnqueried:
		return nil, ErrNotEnumerated
	case stateSelected:
		return nil, ErrAlreadySelected
	}

	candidates := s.devices
	if s.rank != nil {
		candidates = s.ranked()
	}

	device, err := SelectFirstSuitable(candidates, s.Properties, s.suitable)
	if err != nil {
		return nil, err
	}

	s.selected = device
	s.state = stateSelected
	s.logger.WithField("device", s.Properties(device).Name).Info("physical device selected")
	return device, nil
}

// Selected returns the chosen device, or nil before Select succeeds.
func (s *DeviceSelector) Selected() PhysicalDeviceHandle {
	return s.selected
}

func (s *DeviceSelector) ranked() []PhysicalDeviceHandle {
	props := make(map[int]PhysicalDeviceProperties, len(s.devices))
	order := make([]int, len(s.devices))
	for i, d := range s.devices {
		props[i] = s.Properties(d)
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return s.rank(props[order[i]], props[order[j]])
	})

	ranked := make([]PhysicalDeviceHandle, len(order))
	for i, idx := range order {
		ranked[i] = s.devices[idx]
	}
	return ranked
}

// PhysicalDevicesInfo gathers a report entry for each device.
func PhysicalDevicesInfo(platform Platform, devices []PhysicalDeviceHandle) []PhysicalDeviceInfo {
	pdi := make([]PhysicalDeviceInfo, len(devices))
	for i, device := range devices {
		props := platform.PhysicalDeviceProperties(device)
		pdi[i] = PhysicalDeviceInfo{
			Index:         i,
			Name:          props.Name,
			Type:          props.Type,
			APIVersion:    Version(props.APIVersion),
			DriverVersion: Version(props.DriverVersion),
			VendorID:      props.VendorID,
			DeviceID:      props.DeviceID,
			CacheUUID:     fmt.Sprintf("%x", props.PipelineCacheUUID[:]),
			Memory:        platform.PhysicalDeviceMemory(device),
		}

		extensions, err := platform.PhysicalDeviceExtensions(device)
		if err != nil {
			pdi[i].Invalid = true
			continue
		}
		for _, ext := range extensions {
			pdi[i].Extensions = append(pdi[i].Extensions, ext.Name)
		}
	}
	return pdi
}
