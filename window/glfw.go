// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package window

import (
	"unsafe"

	"github.com/devblok/hellovk/core"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
)

// NewGLFW creates a GLFW window without a client API context
func NewGLFW(cfg core.WindowConfiguration) (*GLFW, error) {
	if err := glfw.Init(); err != nil {
		return nil, errors.Wrap(err, "glfw.Init()")
	}

	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return nil, errors.New("glfw.VulkanSupported(): no Vulkan loader found")
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.False)

	window, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, errors.Wrap(err, "glfw.CreateWindow()")
	}

	return &GLFW{window: window}, nil
}

// GLFW is a Window backed by GLFW
type GLFW struct {
	window *glfw.Window
}

// InstanceExtensions implements interface
func (g *GLFW) InstanceExtensions() []string {
	return g.window.GetRequiredInstanceExtensions()
}

// GetInstanceProcAddr implements interface
func (g *GLFW) GetInstanceProcAddr() unsafe.Pointer {
	return glfw.GetVulkanGetInstanceProcAddress()
}

// PollEvents implements interface
func (g *GLFW) PollEvents() {
	glfw.PollEvents()
}

// ShouldClose implements interface
func (g *GLFW) ShouldClose() bool {
	return g.window.ShouldClose()
}

// Destroy implements interface
func (g *GLFW) Destroy() {
	if g.window == nil {
		return
	}
	g.window.Destroy()
	g.window = nil
	glfw.Terminate()
}
