// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// NewInstanceFactory creates a factory bound to a platform. Validation
// layers are requested only when cfg.Validation is set.
func NewInstanceFactory(platform Platform, cfg InstanceConfiguration, logger log.FieldLogger) *InstanceFactory {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &InstanceFactory{
		platform:      platform,
		configuration: cfg,
		logger:        logger,
	}
}

// InstanceFactory queries instance capabilities and creates instances.
type InstanceFactory struct {
	platform      Platform
	configuration InstanceConfiguration
	logger        log.FieldLogger
}

// SupportedLayers queries the platform for layers, fresh on every call.
func (f *InstanceFactory) SupportedLayers() ([]LayerDescriptor, error) {
	layers, err := f.platform.InstanceLayers()
	if err != nil {
		return nil, errors.WithMessage(err, "core.SupportedLayers()")
	}
	return layers, nil
}

// SupportedExtensions queries the platform for global instance extensions.
func (f *InstanceFactory) SupportedExtensions() ([]ExtensionDescriptor, error) {
	extensions, err := f.platform.InstanceExtensions()
	if err != nil {
		return nil, errors.WithMessage(err, "core.SupportedExtensions()")
	}
	return extensions, nil
}

// LayersSupported reports whether every requested layer is available.
func (f *InstanceFactory) LayersSupported(requested []string) (bool, error) {
	supported, err := f.SupportedLayers()
	if err != nil {
		return false, err
	}
	return LayersSupported(requested, supported), nil
}

// LayersSupported returns true iff each requested name exactly matches
// the name of one of the supported layers. Comparison is case-sensitive.
func LayersSupported(requested []string, supported []LayerDescriptor) bool {
	names := make(map[string]struct{}, len(supported))
	for _, layer := range supported {
		names[layer.Name] = struct{}{}
	}
	for _, name := range requested {
		if _, ok := names[name]; !ok {
			return false
		}
	}
	return true
}

// CreateInstance creates a new instance. The extensions are passed to the
// platform as given, they normally come from the window system.
func (f *InstanceFactory) CreateInstance(extensions []string) (InstanceHandle, error) {
	cfg := f.configuration
	info := InstanceInfo{
		ApplicationName: cfg.ApplicationName,
		EngineName:      cfg.EngineName,
		APIVersion:      cfg.APIVersion,
		Extensions:      extensions,
	}

	if cfg.Validation {
		ok, err := f.LayersSupported(cfg.ValidationLayers)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.WithMessagef(ErrValidationLayersUnavailable, "requested %v", cfg.ValidationLayers)
		}
		info.Layers = cfg.ValidationLayers
	}

	instance, err := f.platform.CreateInstance(info)
	if err != nil {
		return nil, errors.WithMessage(ErrInstanceCreationFailed, err.Error())
	}

	f.logger.WithFields(log.Fields{
		"application": info.ApplicationName,
		"layers":      len(info.Layers),
		"extensions":  len(info.Extensions),
	}).Debug("instance created")
	return instance, nil
}
