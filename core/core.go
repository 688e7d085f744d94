// Package core brings up the Vulkan API: instance creation with optional
// validation layers, physical device selection and logical device creation.
package core

import (
	vk "github.com/vulkan-go/vulkan"
)

// InstanceQuerier describes instance-level queries that are
// available before any instance is created.
type InstanceQuerier interface {
	// InstanceLayers returns names of the layers the loader offers
	InstanceLayers() ([]string, error)

	// InstanceExtensions returns names of the instance extensions
	// the loader offers
	InstanceExtensions() ([]string, error)
}

// Loader is the entry point of the graphics API.
type Loader interface {
	InstanceQuerier

	// NewInstance creates an instance with exactly the layers and
	// extensions given in the configuration
	NewInstance(InstanceConfiguration) (Instance, error)
}

// DeviceSource provides physical device descriptors in enumeration order.
type DeviceSource interface {
	PhysicalDevices() ([]PhysicalDevice, error)
}

// Instance describes a Vulkan instance and supporting methods.
// Once created it is ready to use.
type Instance interface {
	DeviceSource

	// Extensions returns the instance extensions enabled at creation
	Extensions() []string

	// Layers returns the instance layers enabled at creation
	Layers() []string

	// NewLogicalDevice creates a logical device on the selected
	// physical device with a single graphics queue
	NewLogicalDevice(SelectedDevice, DeviceConfiguration) (LogicalDevice, error)

	// Inner returns the inner handle of the underlying API
	Inner() interface{}

	// Destroy destroys internal members
	Destroy()
}

// LogicalDevice is an application side handle to a configured
// physical device.
type LogicalDevice interface {
	// GraphicsQueue returns the queue retrieved at creation
	GraphicsQueue() vk.Queue

	// QueueFamily returns the index of the family GraphicsQueue belongs to
	QueueFamily() uint32

	// Inner returns the inner handle of the underlying API
	Inner() interface{}

	// Destroy destroys internal members
	Destroy()
}

// Destroyable is anything that holds API handles that need explicit release.
type Destroyable interface {
	Destroy()
}
