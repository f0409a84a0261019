// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"strconv"
	"strings"

	"github.com/gobuffalo/envy"
	"github.com/gobuffalo/packd"
	"github.com/gobuffalo/packr"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// DefaultsFile is the name of the shipped defaults inside DefaultsBox.
const DefaultsFile = "defaults.env"

// DefaultsBox contains the default configuration values
var DefaultsBox = packr.NewBox("./resources")

// Configuration keys
const (
	KeyWindowTitle      = "KORU_WINDOW_TITLE"
	KeyWindowWidth      = "KORU_WINDOW_WIDTH"
	KeyWindowHeight     = "KORU_WINDOW_HEIGHT"
	KeyApplicationName  = "KORU_APP_NAME"
	KeyEngineName       = "KORU_ENGINE_NAME"
	KeyAPIVersion       = "KORU_API_VERSION"
	KeyValidation       = "KORU_VALIDATION"
	KeyValidationLayers = "KORU_VALIDATION_LAYERS"
	KeyStage            = "KORU_STAGE"
	KeyEventPollDelay   = "KORU_EVENT_POLL_DELAY"
	KeyLogLevel         = "KORU_LOG_LEVEL"
)

// Stage selects how far the bootstrap goes before entering the event loop
type Stage string

// Known stages
const (
	StageInstance Stage = "instance"
	StageDevice   Stage = "device"
)

// ParseStage validates a stage name
func ParseStage(s string) (Stage, error) {
	switch st := Stage(strings.ToLower(strings.TrimSpace(s))); st {
	case StageInstance, StageDevice:
		return st, nil
	default:
		return "", errors.Errorf("unknown stage %q", s)
	}
}

// Configuration defines a global configuration setting
type Configuration struct {
	Window   WindowConfiguration
	Instance InstanceConfiguration
	Time     TimeConfiguration
	Stage    Stage
	LogLevel string
}

// WindowConfiguration describes the fixed size application window
type WindowConfiguration struct {
	Title  string
	Width  uint32
	Height uint32
}

// InstanceConfiguration is used to configure instance creation
type InstanceConfiguration struct {
	ApplicationName string
	EngineName      string
	APIVersion      uint32

	// Validation enables the ValidationLayers, defaults
	// to on unless built with the release tag
	Validation       bool
	ValidationLayers []string
}

// TimeConfiguration is used to configure time services
type TimeConfiguration struct {
	// EventPollDelay is the delay between event polls in milliseconds
	EventPollDelay int
}

// LoadConfiguration builds the configuration from the defaults found in
// box, overridden by the environment.
func LoadConfiguration(box packd.Finder) (Configuration, error) {
	raw, err := box.FindString(DefaultsFile)
	if err != nil {
		return Configuration{}, errors.Wrap(err, "reading defaults")
	}
	defaults, err := godotenv.Unmarshal(raw)
	if err != nil {
		return Configuration{}, errors.Wrap(err, "parsing defaults")
	}
	// empty environment values fall back to the defaults
	get := func(key string) string {
		if v := strings.TrimSpace(envy.Get(key, "")); v != "" {
			return v
		}
		return strings.TrimSpace(defaults[key])
	}

	var cfg Configuration
	cfg.Window.Title = get(KeyWindowTitle)
	if cfg.Window.Width, err = parseDimension(KeyWindowWidth, get(KeyWindowWidth)); err != nil {
		return Configuration{}, err
	}
	if cfg.Window.Height, err = parseDimension(KeyWindowHeight, get(KeyWindowHeight)); err != nil {
		return Configuration{}, err
	}

	cfg.Instance.ApplicationName = get(KeyApplicationName)
	cfg.Instance.EngineName = get(KeyEngineName)
	if cfg.Instance.APIVersion, err = ParseVersion(get(KeyAPIVersion)); err != nil {
		return Configuration{}, errors.WithMessage(err, KeyAPIVersion)
	}
	cfg.Instance.Validation = defaultValidation
	if v := get(KeyValidation); v != "" {
		if cfg.Instance.Validation, err = strconv.ParseBool(v); err != nil {
			return Configuration{}, errors.Wrap(err, KeyValidation)
		}
	}
	cfg.Instance.ValidationLayers = splitList(get(KeyValidationLayers))

	if cfg.Stage, err = ParseStage(get(KeyStage)); err != nil {
		return Configuration{}, errors.WithMessage(err, KeyStage)
	}
	if cfg.Time.EventPollDelay, err = strconv.Atoi(get(KeyEventPollDelay)); err != nil {
		return Configuration{}, errors.Wrap(err, KeyEventPollDelay)
	}
	if cfg.Time.EventPollDelay < 0 {
		return Configuration{}, errors.Errorf("%s: negative delay %d", KeyEventPollDelay, cfg.Time.EventPollDelay)
	}
	cfg.LogLevel = get(KeyLogLevel)

	return cfg, nil
}

// LoadEnvironment loads additional env files into the environment
// consulted by LoadConfiguration.
func LoadEnvironment(files ...string) error {
	if err := envy.Load(files...); err != nil {
		return errors.Wrapf(err, "loading %v", files)
	}
	return nil
}

// MakeVersion packs a version the way the graphics runtime expects it.
func MakeVersion(major, minor, patch uint32) uint32 {
	return major<<22 | minor<<12 | patch
}

// ParseVersion parses "major.minor[.patch]" into a packed version.
func ParseVersion(s string) (uint32, error) {
	parts := strings.Split(s, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, errors.Errorf("malformed version %q", s)
	}
	limits := []uint64{0x3ff, 0x3ff, 0xfff}
	nums := make([]uint32, 3)
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil || n > limits[i] {
			return 0, errors.Errorf("malformed version %q", s)
		}
		nums[i] = uint32(n)
	}
	return MakeVersion(nums[0], nums[1], nums[2]), nil
}

func parseDimension(key, s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, errors.Wrap(err, key)
	}
	if n == 0 {
		return 0, errors.Errorf("%s: must be positive", key)
	}
	return uint32(n), nil
}
