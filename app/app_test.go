// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package app_test

import (
	"bytes"
	"errors"
	"testing"
	"unsafe"

	"github.com/devblok/hellovk/app"
	"github.com/devblok/hellovk/config"
	"github.com/devblok/hellovk/core"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

// calls records the order of interesting calls across fakes
type calls []string

func (c *calls) add(name string) { *c = append(*c, name) }

type fakeWindow struct {
	log        *calls
	closeAfter int
	polls      int
}

func (w *fakeWindow) InstanceExtensions() []string       { return []string{"VK_KHR_surface"} }
func (w *fakeWindow) GetInstanceProcAddr() unsafe.Pointer { return nil }
func (w *fakeWindow) PollEvents()                         { w.polls++ }
func (w *fakeWindow) ShouldClose() bool                   { return w.polls >= w.closeAfter }
func (w *fakeWindow) Destroy()                            { w.log.add("window.Destroy") }

type fakeLoader struct {
	log        *calls
	layers     []string
	extensions []string
	instance   *fakeInstance
	created    []core.InstanceConfiguration
}

func (l *fakeLoader) InstanceLayers() ([]string, error)     { return l.layers, nil }
func (l *fakeLoader) InstanceExtensions() ([]string, error) { return l.extensions, nil }

func (l *fakeLoader) NewInstance(cfg core.InstanceConfiguration) (core.Instance, error) {
	l.log.add("loader.NewInstance")
	l.created = append(l.created, cfg)
	l.instance.layers = cfg.ValidationLayers
	return l.instance, nil
}

type fakeInstance struct {
	log       *calls
	devices   []core.PhysicalDevice
	deviceErr error
	layers    []string

	deviceCfg core.DeviceConfiguration
}

func (i *fakeInstance) PhysicalDevices() ([]core.PhysicalDevice, error) {
	i.log.add("instance.PhysicalDevices")
	return i.devices, nil
}

func (i *fakeInstance) Extensions() []string { return nil }
func (i *fakeInstance) Layers() []string     { return i.layers }
func (i *fakeInstance) Inner() interface{}   { return nil }
func (i *fakeInstance) Destroy()             { i.log.add("instance.Destroy") }

func (i *fakeInstance) NewLogicalDevice(sel core.SelectedDevice, cfg core.DeviceConfiguration) (core.LogicalDevice, error) {
	i.log.add("instance.NewLogicalDevice")
	if i.deviceErr != nil {
		return nil, i.deviceErr
	}
	if !sel.Queues.IsComplete() {
		return nil, core.ErrIncompleteQueueFamilies
	}
	i.deviceCfg = cfg
	family, _ := sel.Queues.Graphics()
	return &fakeDevice{log: i.log, family: family}, nil
}

type fakeDevice struct {
	log    *calls
	family uint32
}

func (d *fakeDevice) GraphicsQueue() vk.Queue { return nil }
func (d *fakeDevice) QueueFamily() uint32     { return d.family }
func (d *fakeDevice) Inner() interface{}      { return nil }
func (d *fakeDevice) Destroy()                { d.log.add("device.Destroy") }

func gpu(name string, families ...vk.QueueFlagBits) core.PhysicalDevice {
	pd := core.PhysicalDevice{
		Name:     name,
		Type:     vk.PhysicalDeviceTypeDiscreteGpu,
		Features: vk.PhysicalDeviceFeatures{GeometryShader: vk.True},
	}
	for i, f := range families {
		pd.QueueFamilies = append(pd.QueueFamilies, core.QueueFamily{
			Index:      uint32(i),
			Flags:      vk.QueueFlags(f),
			QueueCount: 1,
		})
	}
	return pd
}

type fixture struct {
	log      *calls
	cfg      config.Configuration
	window   *fakeWindow
	loader   *fakeLoader
	instance *fakeInstance
	output   *bytes.Buffer
}

func newFixture(devices ...core.PhysicalDevice) *fixture {
	log := &calls{}
	instance := &fakeInstance{log: log, devices: devices}
	return &fixture{
		log: log,
		cfg: config.Configuration{
			Instance: core.InstanceConfiguration{
				ApplicationName:  "test",
				ValidationLayers: []string{"VK_LAYER_KHRONOS_validation"},
			},
			Selector: core.DefaultDeviceRequirements,
			Time:     core.TimeConfiguration{EventPollDelay: 1},
		},
		window: &fakeWindow{log: log, closeAfter: 3},
		loader: &fakeLoader{
			log:        log,
			layers:     []string{"VK_LAYER_KHRONOS_validation"},
			extensions: []string{"VK_KHR_surface", "VK_KHR_xcb_surface"},
			instance:   instance,
		},
		instance: instance,
		output:   &bytes.Buffer{},
	}
}

func (f *fixture) run() (*app.Application, error) {
	a := app.New(f.cfg, f.window, f.loader)
	a.SetOutput(f.output)
	return a, a.Run()
}

func TestRun(t *testing.T) {
	f := newFixture(
		gpu("compute-only", vk.QueueComputeBit),
		gpu("target", vk.QueueComputeBit, vk.QueueGraphicsBit),
	)

	a, err := f.run()
	require.NoError(t, err)

	assert.Equal(t, "target", a.SelectedDevice().Device.Name)
	assert.Nil(t, a.Device(), "device is released at shutdown")
	assert.Equal(t, 3, f.window.polls)
	assert.Equal(t, "Extensions :\n\tVK_KHR_surface\n\tVK_KHR_xcb_surface\n", f.output.String())

	require.Len(t, f.loader.created, 1)
	assert.Equal(t, []string{"VK_KHR_surface"}, f.loader.created[0].Extensions)
	assert.Empty(t, f.loader.created[0].ValidationLayers)

	assert.Equal(t, calls{
		"loader.NewInstance",
		"instance.PhysicalDevices",
		"instance.NewLogicalDevice",
		"device.Destroy",
		"instance.Destroy",
	}, *f.log)
}

func TestRunDebugMode(t *testing.T) {
	f := newFixture(gpu("gpu", vk.QueueGraphicsBit))
	f.cfg.Instance.DebugMode = true

	_, err := f.run()
	require.NoError(t, err)

	require.Len(t, f.loader.created, 1)
	assert.Equal(t, []string{"VK_LAYER_KHRONOS_validation"}, f.loader.created[0].ValidationLayers)
	assert.Contains(t, f.loader.created[0].Extensions, core.DebugReportExtension)
	assert.Equal(t, []string{"VK_LAYER_KHRONOS_validation"}, f.instance.deviceCfg.Layers)
}

func TestRunMissingValidationLayer(t *testing.T) {
	f := newFixture(gpu("gpu", vk.QueueGraphicsBit))
	f.cfg.Instance.DebugMode = true
	f.cfg.Instance.ValidationLayers = []string{"X"}
	f.loader.layers = []string{"Y"}

	_, err := f.run()
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrLayerNotSupported))
	assert.Empty(t, *f.log, "nothing is created or enumerated")
	assert.Zero(t, f.window.polls)
}

func TestRunNoDevices(t *testing.T) {
	f := newFixture()

	_, err := f.run()
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNoDevices))
	assert.Equal(t, calls{
		"loader.NewInstance",
		"instance.PhysicalDevices",
		"instance.Destroy",
	}, *f.log)
	assert.Zero(t, f.window.polls)
}

func TestRunNoSuitableDevice(t *testing.T) {
	f := newFixture(gpu("compute-only", vk.QueueComputeBit))

	_, err := f.run()
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNoSuitableDevice))
	assert.False(t, errors.Is(err, core.ErrNoDevices))
}

func TestRunLogicalDeviceFailure(t *testing.T) {
	f := newFixture(gpu("gpu", vk.QueueGraphicsBit))
	f.instance.deviceErr = errors.New("vk.CreateDevice(): Error: initialization failed")

	_, err := f.run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create logical device")
	assert.Equal(t, calls{
		"loader.NewInstance",
		"instance.PhysicalDevices",
		"instance.NewLogicalDevice",
		"instance.Destroy",
	}, *f.log)
}

func TestRunLogsSelectedDevice(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	f := newFixture(gpu("gpu", vk.QueueComputeBit, vk.QueueGraphicsBit))
	_, err := f.run()
	require.NoError(t, err)

	var selected *log.Entry
	for _, entry := range hook.AllEntries() {
		if entry.Message == "Physical device selected" {
			selected = entry
		}
	}
	require.NotNil(t, selected)
	assert.Equal(t, log.InfoLevel, selected.Level)
	assert.Equal(t, "gpu", selected.Data["device"])
	assert.Equal(t, "discrete", selected.Data["type"])
	assert.Equal(t, uint32(1), selected.Data["family"])
}

func deviceTypeEntry(hook *test.Hook) *log.Entry {
	for _, entry := range hook.AllEntries() {
		if _, ok := entry.Data["types"]; ok {
			return entry
		}
	}
	return nil
}

func TestRunWarnsAboutDeviceTypes(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	f := newFixture(gpu("gpu", vk.QueueGraphicsBit))
	_, err := f.run()
	require.NoError(t, err)

	entry := deviceTypeEntry(hook)
	require.NotNil(t, entry)
	assert.Equal(t, log.WarnLevel, entry.Level)
	assert.Equal(t, "discrete,integrated", entry.Data["types"])
	assert.Contains(t, entry.Message, config.KeyDeviceTypes)
}

func TestRunIntegratedOnlyDeviceTypes(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	igpu := gpu("igpu", vk.QueueGraphicsBit)
	igpu.Type = vk.PhysicalDeviceTypeIntegratedGpu
	f := newFixture(igpu)
	f.cfg.Selector.DeviceTypes = []vk.PhysicalDeviceType{vk.PhysicalDeviceTypeIntegratedGpu}

	a, err := f.run()
	require.NoError(t, err)
	assert.Equal(t, "igpu", a.SelectedDevice().Device.Name)

	entry := deviceTypeEntry(hook)
	require.NotNil(t, entry)
	assert.Equal(t, log.InfoLevel, entry.Level)
	assert.Equal(t, "integrated", entry.Data["types"])
}
