// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package config loads the program configuration. Defaults are shipped in
// resources/default.env, the environment and a .env file override them.
package config

import (
	"strconv"
	"strings"

	"github.com/devblok/hellovk/core"
	"github.com/gobuffalo/envy"
	"github.com/gobuffalo/packr"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"
)

// Configuration keys
const (
	KeyAppName               = "HELLOVK_APP_NAME"
	KeyEngineName            = "HELLOVK_ENGINE_NAME"
	KeyWindowBackend         = "HELLOVK_WINDOW_BACKEND"
	KeyWindowTitle           = "HELLOVK_WINDOW_TITLE"
	KeyWindowWidth           = "HELLOVK_WINDOW_WIDTH"
	KeyWindowHeight          = "HELLOVK_WINDOW_HEIGHT"
	KeyDebug                 = "HELLOVK_DEBUG"
	KeyValidationLayers      = "HELLOVK_VALIDATION_LAYERS"
	KeyDeviceTypes           = "HELLOVK_DEVICE_TYPES"
	KeyRequireGeometryShader = "HELLOVK_REQUIRE_GEOMETRY_SHADER"
	KeyEventPollDelay        = "HELLOVK_EVENT_POLL_DELAY"
	KeyLogLevel              = "HELLOVK_LOG_LEVEL"
)

const defaultsResource = "default.env"

var resources = packr.NewBox("./resources")

// Configuration defines the global program configuration
type Configuration struct {
	Window   core.WindowConfiguration
	Instance core.InstanceConfiguration
	Device   core.DeviceConfiguration
	Selector core.DeviceRequirements
	Time     core.TimeConfiguration
	LogLevel log.Level
}

// Defaults returns the raw default values shipped with the program
func Defaults() (map[string]string, error) {
	raw, err := resources.FindString(defaultsResource)
	if err != nil {
		return nil, errors.Wrap(err, "config.Defaults()")
	}
	values, err := godotenv.Unmarshal(raw)
	if err != nil {
		return nil, errors.Wrap(err, "config.Defaults()")
	}
	return values, nil
}

// Load reads the defaults, overrides them from the environment
// and parses the result.
func Load() (Configuration, error) {
	defaults, err := Defaults()
	if err != nil {
		return Configuration{}, err
	}

	values := make(map[string]string, len(defaults))
	for key, value := range defaults {
		values[key] = envy.Get(key, value)
	}
	return Parse(values)
}

// Parse builds a Configuration from raw values. Every key
// present in the defaults must be present in values.
func Parse(values map[string]string) (Configuration, error) {
	p := parser{values: values}

	cfg := Configuration{
		Window: core.WindowConfiguration{
			Backend: core.WindowBackend(strings.ToLower(p.str(KeyWindowBackend))),
			Title:   p.str(KeyWindowTitle),
			Width:   p.positive(KeyWindowWidth),
			Height:  p.positive(KeyWindowHeight),
		},
		Instance: core.InstanceConfiguration{
			ApplicationName:  p.str(KeyAppName),
			EngineName:       p.str(KeyEngineName),
			DebugMode:        p.boolean(KeyDebug),
			ValidationLayers: p.list(KeyValidationLayers),
		},
		Selector: core.DeviceRequirements{
			GeometryShader: p.boolean(KeyRequireGeometryShader),
		},
		Time: core.TimeConfiguration{
			EventPollDelay: p.positive(KeyEventPollDelay),
		},
	}

	switch cfg.Window.Backend {
	case core.GLFWBackend, core.SDLBackend:
	default:
		p.fail(KeyWindowBackend, errors.Errorf("unknown backend %q", cfg.Window.Backend))
	}

	for _, name := range p.list(KeyDeviceTypes) {
		dt, err := core.ParseDeviceType(name)
		if err != nil {
			p.fail(KeyDeviceTypes, err)
			continue
		}
		cfg.Selector.DeviceTypes = append(cfg.Selector.DeviceTypes, dt)
	}
	if len(cfg.Selector.DeviceTypes) == 0 && p.err == nil {
		p.fail(KeyDeviceTypes, errors.New("at least one device type is required"))
	}

	if level, err := log.ParseLevel(p.str(KeyLogLevel)); err != nil {
		p.fail(KeyLogLevel, err)
	} else {
		cfg.LogLevel = level
	}

	if p.err != nil {
		return Configuration{}, p.err
	}
	return cfg, nil
}

// IsLiteralDeviceTypeCheck reports whether the selector only accepts
// integrated GPUs, which is what comparing the device type for equality
// with the boolean OR of the discrete and integrated constants yields.
func (c Configuration) IsLiteralDeviceTypeCheck() bool {
	types := c.Selector.DeviceTypes
	return len(types) == 1 && types[0] == vk.PhysicalDeviceTypeIntegratedGpu
}

type parser struct {
	values map[string]string
	err    error
}

func (p *parser) fail(key string, err error) {
	if p.err == nil {
		p.err = errors.Wrapf(err, "config: %s", key)
	}
}

func (p *parser) str(key string) string {
	value, ok := p.values[key]
	if !ok {
		p.fail(key, errors.New("missing value"))
	}
	return strings.TrimSpace(value)
}

func (p *parser) boolean(key string) bool {
	raw := p.str(key)
	b, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(key, err)
	}
	return b
}

func (p *parser) positive(key string) int {
	raw := p.str(key)
	n, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(key, err)
	} else if n <= 0 {
		p.fail(key, errors.Errorf("%d is not positive", n))
	}
	return n
}

func (p *parser) list(key string) []string {
	var result []string
	for _, item := range strings.Split(p.str(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
