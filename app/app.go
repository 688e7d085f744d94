// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package app owns every handle the program creates and runs the
// startup, event loop and teardown sequence.
package app

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/devblok/hellovk/config"
	"github.com/devblok/hellovk/core"
	"github.com/devblok/hellovk/window"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// New creates a not yet initialised Application. The window is
// owned by the caller and must outlive the Application.
func New(cfg config.Configuration, win window.Window, loader core.Loader) *Application {
	return &Application{
		configuration: cfg,
		window:        win,
		loader:        loader,
		output:        os.Stdout,
	}
}

// Application is the owning context of the Vulkan handles.
type Application struct {
	configuration config.Configuration
	output        io.Writer

	window   window.Window
	loader   core.Loader
	instance core.Instance
	selected core.SelectedDevice
	device   core.LogicalDevice
}

// SetOutput sets where the instance extension listing is written
func (a *Application) SetOutput(w io.Writer) {
	a.output = w
}

// SelectedDevice returns the physical device picked at startup
func (a *Application) SelectedDevice() core.SelectedDevice {
	return a.selected
}

// Device returns the logical device, nil before initialisation
func (a *Application) Device() core.LogicalDevice {
	return a.device
}

// Run initialises Vulkan, polls window events until the window is
// closed and tears down everything that was created.
func (a *Application) Run() error {
	defer a.cleanup()

	if err := a.initVulkan(); err != nil {
		return err
	}

	a.mainLoop()
	return nil
}

func (a *Application) initVulkan() error {
	a.logDeviceTypes()

	instanceCfg := a.configuration.Instance
	instanceCfg.Extensions = append(append([]string{}, a.window.InstanceExtensions()...), instanceCfg.Extensions...)

	instance, err := core.CreateInstance(a.loader, instanceCfg)
	if err != nil {
		return errors.Wrap(err, "failed to create instance")
	}
	a.instance = instance

	if err := a.listExtensions(); err != nil {
		return err
	}

	if err := a.pickPhysicalDevice(); err != nil {
		return err
	}

	return a.createLogicalDevice()
}

// logDeviceTypes reports the accepted device types. Anything other than
// integrated only departs from the strict type comparison and is warned about.
func (a *Application) logDeviceTypes() {
	var names []string
	for _, t := range a.configuration.Selector.DeviceTypes {
		names = append(names, core.DeviceTypeName(t))
	}
	entry := log.WithField("types", strings.Join(names, ","))

	if a.configuration.IsLiteralDeviceTypeCheck() {
		entry.Info("Device type check accepts integrated GPUs only")
		return
	}
	entry.Warnf("Device type check differs from the integrated only comparison, set %s=integrated to restore it", config.KeyDeviceTypes)
}

func (a *Application) listExtensions() error {
	extensions, err := a.loader.InstanceExtensions()
	if err != nil {
		return errors.Wrap(err, "failed to list instance extensions")
	}

	fmt.Fprintln(a.output, "Extensions :")
	for _, ext := range extensions {
		fmt.Fprintf(a.output, "\t%s\n", ext)
	}
	return nil
}

func (a *Application) pickPhysicalDevice() error {
	devices, err := a.instance.PhysicalDevices()
	if err != nil {
		return errors.Wrap(err, "failed to enumerate physical devices")
	}

	selected, err := core.PickPhysicalDevice(devices, a.configuration.Selector)
	if err != nil {
		return err
	}
	a.selected = selected

	family, _ := selected.Queues.Graphics()
	log.WithFields(log.Fields{
		"device": selected.Device.Name,
		"type":   core.DeviceTypeName(selected.Device.Type),
		"family": family,
	}).Info("Physical device selected")
	return nil
}

func (a *Application) createLogicalDevice() error {
	deviceCfg := a.configuration.Device
	if a.configuration.Instance.DebugMode {
		deviceCfg.Layers = a.instance.Layers()
	}

	device, err := a.instance.NewLogicalDevice(a.selected, deviceCfg)
	if err != nil {
		return errors.Wrap(err, "failed to create logical device")
	}
	a.device = device
	return nil
}

func (a *Application) mainLoop() {
	t := core.NewTime(a.configuration.Time)
	defer t.Stop()

	for !a.window.ShouldClose() {
		<-t.EventTicker().C
		a.window.PollEvents()
	}
	log.Info("Event loop exited")
}

func (a *Application) cleanup() {
	if a.device != nil {
		a.device.Destroy()
		a.device = nil
	}
	if a.instance != nil {
		a.instance.Destroy()
		a.instance = nil
	}
}
