package core

import "github.com/pkg/errors"

// package errors
var (
	ErrLayerNotSupported       = errors.New("validation layer requested, but not available")
	ErrNoDevices               = errors.New("no GPU found with Vulkan support")
	ErrNoSuitableDevice        = errors.New("failed to find a suitable GPU")
	ErrIncompleteQueueFamilies = errors.New("selected device has no graphics queue family")
	ErrUnknownDeviceType       = errors.New("unknown physical device type")
)
