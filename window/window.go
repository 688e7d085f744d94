// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package window creates the fixed-size, non-resizable window the Vulkan
// instance is created for. Both GLFW and SDL2 backends are available.
// All functions must be called from the main OS thread.
package window

import (
	"unsafe"

	"github.com/devblok/hellovk/core"
	"github.com/pkg/errors"
)

// ErrUnknownBackend is returned for backends other than glfw and sdl
var ErrUnknownBackend = errors.New("unknown window backend")

// Window describes a window as far as Vulkan bootstrapping needs it.
type Window interface {
	// InstanceExtensions returns the instance extensions the window
	// system needs to present to the window
	InstanceExtensions() []string

	// GetInstanceProcAddr returns the vkGetInstanceProcAddr of the
	// Vulkan library the window system loaded
	GetInstanceProcAddr() unsafe.Pointer

	// PollEvents processes pending events without blocking
	PollEvents()

	// ShouldClose reports whether a close was requested
	ShouldClose() bool

	// Destroy destroys the window and shuts the window system down
	Destroy()
}

// New creates a window with the configured backend
func New(cfg core.WindowConfiguration) (Window, error) {
	switch cfg.Backend {
	case core.GLFWBackend, "":
		return NewGLFW(cfg)
	case core.SDLBackend:
		return NewSDL(cfg)
	}
	return nil, errors.Wrapf(ErrUnknownBackend, "%q", cfg.Backend)
}
