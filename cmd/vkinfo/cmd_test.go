// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/devblok/hellovk/capture"
	"github.com/devblok/hellovk/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func writeCapture(t *testing.T, devices ...core.PhysicalDevice) string {
	snapshot := &capture.Snapshot{
		Devices:    devices,
		Layers:     []string{"VK_LAYER_KHRONOS_validation"},
		Extensions: []string{"VK_KHR_surface"},
	}

	path := filepath.Join(t.TempDir(), "host.vkc")
	file, err := os.Create(path)
	require.NoError(t, err)
	_, err = snapshot.Save(file, "test")
	require.NoError(t, err)
	require.NoError(t, file.Close())
	return path
}

func device(name string, t vk.PhysicalDeviceType, flags vk.QueueFlagBits) core.PhysicalDevice {
	return core.PhysicalDevice{
		Name:     name,
		Type:     t,
		Features: vk.PhysicalDeviceFeatures{GeometryShader: vk.True},
		QueueFamilies: []core.QueueFamily{
			{Index: 0, Flags: vk.QueueFlags(flags), QueueCount: 1},
		},
	}
}

func execute(args ...string) (string, error) {
	out := &bytes.Buffer{}
	cli := NewCLI()
	cli.SetOut(out)
	cli.SetErr(&bytes.Buffer{})
	cli.SetArgs(args)
	err := cli.Execute()
	return out.String(), err
}

func TestDevicesTable(t *testing.T) {
	path := writeCapture(t,
		device("llvmpipe", vk.PhysicalDeviceTypeCpu, vk.QueueGraphicsBit),
		device("radeon", vk.PhysicalDeviceTypeDiscreteGpu, vk.QueueGraphicsBit),
	)

	out, err := execute("devices", "--from", path)
	require.NoError(t, err)
	assert.Contains(t, out, "llvmpipe")
	assert.Contains(t, out, "no: device type cpu not accepted")
	assert.Contains(t, out, "radeon")
	assert.Contains(t, out, "yes")
}

func TestDevicesJSON(t *testing.T) {
	path := writeCapture(t, device("radeon", vk.PhysicalDeviceTypeDiscreteGpu, vk.QueueGraphicsBit))

	out, err := execute("devices", "--json", "--from", path)
	require.NoError(t, err)

	var devices []core.PhysicalDevice
	require.NoError(t, json.Unmarshal([]byte(out), &devices))
	require.Len(t, devices, 1)
	assert.Equal(t, "radeon", devices[0].Name)
}

func TestLayersAndExtensions(t *testing.T) {
	path := writeCapture(t)

	out, err := execute("layers", "--from", path)
	require.NoError(t, err)
	assert.Equal(t, "VK_LAYER_KHRONOS_validation\n", out)

	out, err = execute("extensions", "--from", path)
	require.NoError(t, err)
	assert.Equal(t, "VK_KHR_surface\n", out)
}

func TestSelect(t *testing.T) {
	path := writeCapture(t,
		device("compute", vk.PhysicalDeviceTypeDiscreteGpu, vk.QueueComputeBit),
		device("radeon", vk.PhysicalDeviceTypeDiscreteGpu, vk.QueueGraphicsBit),
	)

	out, err := execute("select", "--from", path)
	require.NoError(t, err)
	assert.Equal(t, "radeon (discrete), graphics queue family 0\n", out)
}

func TestSelectNoSuitableDevice(t *testing.T) {
	path := writeCapture(t, device("compute", vk.PhysicalDeviceTypeDiscreteGpu, vk.QueueComputeBit))

	_, err := execute("select", "--from", path)
	assert.True(t, errors.Is(err, core.ErrNoSuitableDevice))
}

func TestSelectNoDevices(t *testing.T) {
	path := writeCapture(t)

	_, err := execute("select", "--from", path)
	assert.True(t, errors.Is(err, core.ErrNoDevices))
}

func TestCaptureFromCapture(t *testing.T) {
	path := writeCapture(t, device("radeon", vk.PhysicalDeviceTypeDiscreteGpu, vk.QueueGraphicsBit))
	output := filepath.Join(t.TempDir(), "copy.vkc")

	_, err := execute("capture", "--from", path, "-o", output, "--author", "devblok")
	require.NoError(t, err)

	file, err := os.Open(output)
	require.NoError(t, err)
	defer file.Close()

	snapshot, header, err := capture.LoadSnapshot(file)
	require.NoError(t, err)
	assert.Equal(t, "devblok", header.Author)
	require.Len(t, snapshot.Devices, 1)
	assert.Equal(t, "radeon", snapshot.Devices[0].Name)
}

func TestCaptureRequiresOutput(t *testing.T) {
	_, err := execute("capture", "--from", writeCapture(t))
	assert.Error(t, err)
}

func TestMissingCapture(t *testing.T) {
	_, err := execute("devices", "--from", filepath.Join(t.TempDir(), "missing.vkc"))
	assert.Error(t, err)
}
