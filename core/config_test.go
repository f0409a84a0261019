// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/gobuffalo/envy"
	"github.com/gobuffalo/packd"

	"github.com/devblok/koruboot/core"
)

const testDefaults = `
KORU_WINDOW_TITLE=Vulkan
KORU_WINDOW_WIDTH=800
KORU_WINDOW_HEIGHT=600
KORU_APP_NAME="Hello Triangle"
KORU_ENGINE_NAME="No Engine"
KORU_API_VERSION=1.0
KORU_VALIDATION_LAYERS=VK_LAYER_KHRONOS_validation
KORU_STAGE=device
KORU_EVENT_POLL_DELAY=10
KORU_LOG_LEVEL=info
`

func memoryBox(c *qt.C, defaults string) *packd.MemoryBox {
	box := packd.NewMemoryBox()
	c.Assert(box.AddString(core.DefaultsFile, defaults), qt.IsNil)
	return box
}

var configKeys = []string{
	core.KeyWindowTitle, core.KeyWindowWidth, core.KeyWindowHeight,
	core.KeyApplicationName, core.KeyEngineName, core.KeyAPIVersion,
	core.KeyValidation, core.KeyValidationLayers, core.KeyStage,
	core.KeyEventPollDelay, core.KeyLogLevel,
}

// withEnv runs f with only the given configuration keys set
func withEnv(env map[string]string, f func()) {
	envy.Temp(func() {
		for _, k := range configKeys {
			envy.Set(k, "")
		}
		for k, v := range env {
			envy.Set(k, v)
		}
		f()
	})
}

func TestLoadConfigurationDefaults(t *testing.T) {
	c := qt.New(t)
	withEnv(nil, func() {
		cfg, err := core.LoadConfiguration(memoryBox(c, testDefaults))
		c.Assert(err, qt.IsNil)
		c.Assert(cfg, qt.DeepEquals, core.Configuration{
			Window: core.WindowConfiguration{Title: "Vulkan", Width: 800, Height: 600},
			Instance: core.InstanceConfiguration{
				ApplicationName:  "Hello Triangle",
				EngineName:       "No Engine",
				APIVersion:       core.MakeVersion(1, 0, 0),
				Validation:       cfg.Instance.Validation,
				ValidationLayers: []string{"VK_LAYER_KHRONOS_validation"},
			},
			Time:     core.TimeConfiguration{EventPollDelay: 10},
			Stage:    core.StageDevice,
			LogLevel: "info",
		})
	})
}

func TestLoadConfigurationShippedDefaults(t *testing.T) {
	c := qt.New(t)
	withEnv(nil, func() {
		cfg, err := core.LoadConfiguration(core.DefaultsBox)
		c.Assert(err, qt.IsNil)
		c.Assert(cfg.Window.Width, qt.Equals, uint32(800))
		c.Assert(cfg.Window.Height, qt.Equals, uint32(600))
		c.Assert(cfg.Instance.ValidationLayers, qt.DeepEquals, []string{"VK_LAYER_KHRONOS_validation"})
	})
}

func TestLoadConfigurationOverrides(t *testing.T) {
	c := qt.New(t)
	withEnv(map[string]string{
		core.KeyWindowTitle:      "Koru3D",
		core.KeyValidation:       "false",
		core.KeyValidationLayers: "VK_LAYER_KHRONOS_validation, VK_LAYER_LUNARG_api_dump,",
		core.KeyStage:            "Instance",
		core.KeyAPIVersion:       "1.2.131",
	}, func() {
		cfg, err := core.LoadConfiguration(memoryBox(c, testDefaults))
		c.Assert(err, qt.IsNil)
		c.Assert(cfg.Window.Title, qt.Equals, "Koru3D")
		c.Assert(cfg.Instance.Validation, qt.Equals, false)
		c.Assert(cfg.Instance.ValidationLayers, qt.DeepEquals, []string{"VK_LAYER_KHRONOS_validation", "VK_LAYER_LUNARG_api_dump"})
		c.Assert(cfg.Stage, qt.Equals, core.StageInstance)
		c.Assert(core.Version(cfg.Instance.APIVersion), qt.Equals, "1.2.131")
	})

	withEnv(map[string]string{core.KeyValidation: "true"}, func() {
		cfg, err := core.LoadConfiguration(memoryBox(c, testDefaults))
		c.Assert(err, qt.IsNil)
		c.Assert(cfg.Instance.Validation, qt.Equals, true)
	})
}

func TestLoadConfigurationErrors(t *testing.T) {
	tests := []struct {
		key, value, err string
	}{
		{core.KeyWindowWidth, "wide", `KORU_WINDOW_WIDTH: .*invalid syntax`},
		{core.KeyWindowHeight, "0", `KORU_WINDOW_HEIGHT: must be positive`},
		{core.KeyAPIVersion, "1", `KORU_API_VERSION: malformed version "1"`},
		{core.KeyAPIVersion, "1.2000.0", `KORU_API_VERSION: malformed version "1.2000.0"`},
		{core.KeyValidation, "maybe", `KORU_VALIDATION: .*invalid syntax`},
		{core.KeyStage, "swapchain", `KORU_STAGE: unknown stage "swapchain"`},
		{core.KeyEventPollDelay, "-5", `KORU_EVENT_POLL_DELAY: negative delay -5`},
	}
	for _, test := range tests {
		test := test
		t.Run(test.key+"="+test.value, func(t *testing.T) {
			c := qt.New(t)
			withEnv(map[string]string{test.key: test.value}, func() {
				_, err := core.LoadConfiguration(memoryBox(c, testDefaults))
				c.Assert(err, qt.ErrorMatches, test.err)
			})
		})
	}
}

func TestLoadConfigurationMissingDefaults(t *testing.T) {
	c := qt.New(t)
	_, err := core.LoadConfiguration(packd.NewMemoryBox())
	c.Assert(err, qt.ErrorMatches, "reading defaults: .*")
}

func TestParseVersion(t *testing.T) {
	c := qt.New(t)
	v, err := core.ParseVersion("1.1")
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.Equals, core.MakeVersion(1, 1, 0))

	_, err = core.ParseVersion("a.b.c")
	c.Assert(err, qt.ErrorMatches, `malformed version "a.b.c"`)
	_, err = core.ParseVersion("1.0.0.0")
	c.Assert(err, qt.Not(qt.IsNil))
}
