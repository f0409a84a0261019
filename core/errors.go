// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import "github.com/pkg/errors"

// Initialisation errors. All of them are fatal.
var (
	ErrValidationLayersUnavailable = errors.New("validation layers requested, but not available")
	ErrInstanceCreationFailed      = errors.New("failed to create instance")
	ErrNoGPUFound                  = errors.New("failed to find GPUs with Vulkan support")
	ErrNoSuitableGPU               = errors.New("failed to find a suitable GPU")
)

// Selector misuse.
var (
	ErrNotEnumerated   = errors.New("physical devices were not enumerated")
	ErrAlreadySelected = errors.New("a physical device is already selected")
)
