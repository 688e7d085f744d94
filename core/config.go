package core

import (
	vk "github.com/vulkan-go/vulkan"
)

// WindowBackend names a windowing library
type WindowBackend string

// Supported window backends
const (
	GLFWBackend WindowBackend = "glfw"
	SDLBackend  WindowBackend = "sdl"
)

// WindowConfiguration is used to configure the window
type WindowConfiguration struct {
	Backend WindowBackend
	Title   string

	Width  int
	Height int
}

// InstanceConfiguration is used to configure the Vulkan instance
type InstanceConfiguration struct {
	ApplicationName string
	EngineName      string

	// DebugMode enables ValidationLayers, which must all be
	// supported, and the debug report extension
	DebugMode        bool
	ValidationLayers []string

	Extensions []string
}

// DeviceConfiguration is used to configure the logical device
type DeviceConfiguration struct {
	Layers     []string
	Extensions []string
}

// DeviceRequirements is the suitability predicate for physical devices
type DeviceRequirements struct {
	// DeviceTypes lists the accepted device categories
	DeviceTypes []vk.PhysicalDeviceType

	// GeometryShader requires the geometryShader feature
	GeometryShader bool
}

// DefaultDeviceRequirements accepts discrete and integrated GPUs
// that can run geometry shaders
var DefaultDeviceRequirements = DeviceRequirements{
	DeviceTypes: []vk.PhysicalDeviceType{
		vk.PhysicalDeviceTypeDiscreteGpu,
		vk.PhysicalDeviceTypeIntegratedGpu,
	},
	GeometryShader: true,
}

// TimeConfiguration is used to configure time services
type TimeConfiguration struct {
	// EventPollDelay is the pause between window event polls in
	// milliseconds, values below one are treated as one
	EventPollDelay int
}
