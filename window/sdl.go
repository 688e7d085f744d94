// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package window

import (
	"unsafe"

	"github.com/devblok/hellovk/core"
	"github.com/pkg/errors"
	"github.com/veandco/go-sdl2/sdl"
)

// NewSDL creates an SDL window flagged for Vulkan use
func NewSDL(cfg core.WindowConfiguration) (*SDL, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, errors.Wrap(err, "sdl.Init()")
	}

	if err := sdl.VulkanLoadLibrary(""); err != nil {
		sdl.Quit()
		return nil, errors.Wrap(err, "sdl.VulkanLoadLibrary()")
	}

	window, err := sdl.CreateWindow(cfg.Title,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(cfg.Width),
		int32(cfg.Height),
		sdl.WINDOW_VULKAN)
	if err != nil {
		sdl.VulkanUnloadLibrary()
		sdl.Quit()
		return nil, errors.Wrap(err, "sdl.CreateWindow()")
	}

	return &SDL{window: window}, nil
}

// SDL is a Window backed by SDL2
type SDL struct {
	window *sdl.Window
	closed bool
}

// InstanceExtensions implements interface
func (s *SDL) InstanceExtensions() []string {
	return s.window.VulkanGetInstanceExtensions()
}

// GetInstanceProcAddr implements interface
func (s *SDL) GetInstanceProcAddr() unsafe.Pointer {
	return sdl.VulkanGetVkGetInstanceProcAddr()
}

// PollEvents implements interface
func (s *SDL) PollEvents() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if IsSDLCloseEvent(event) {
			s.closed = true
		}
	}
}

// IsSDLCloseEvent reports whether event is a quit or a window close request
func IsSDLCloseEvent(event sdl.Event) bool {
	switch et := event.(type) {
	case *sdl.QuitEvent:
		return true
	case *sdl.WindowEvent:
		return et.Event == sdl.WINDOWEVENT_CLOSE
	}
	return false
}

// ShouldClose implements interface
func (s *SDL) ShouldClose() bool {
	return s.closed
}

// Destroy implements interface
func (s *SDL) Destroy() {
	if s.window == nil {
		return
	}
	s.window.Destroy()
	s.window = nil
	sdl.VulkanUnloadLibrary()
	sdl.Quit()
}
