// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"flag"
	"os"
	"runtime"
	"strings"

	"github.com/devblok/hellovk/app"
	"github.com/devblok/hellovk/config"
	"github.com/devblok/hellovk/core"
	"github.com/devblok/hellovk/window"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

func init() {
	// Window systems and the Vulkan loader expect calls from the main thread
	runtime.LockOSThread()
}

var (
	vkDebug  = flag.Bool("vkdbg", false, "enable Vulkan validation layers")
	backend  = flag.String("backend", "", "window backend, glfw or sdl")
	logLevel = flag.String("loglevel", "", "log level, overrides "+config.KeyLogLevel)
)

func main() {
	flag.Parse()

	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	if err := run(); err != nil {
		fail(err)
		os.Exit(1)
	}
}

// fail logs err even when the configured level is above error
func fail(err error) {
	if !log.IsLevelEnabled(log.ErrorLevel) {
		log.SetLevel(log.ErrorLevel)
	}
	log.Error(err)
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := applyFlags(&cfg); err != nil {
		return err
	}
	log.SetLevel(cfg.LogLevel)

	win, err := window.New(cfg.Window)
	if err != nil {
		return err
	}
	defer win.Destroy()

	loader, err := core.NewVulkanLoader(win.GetInstanceProcAddr())
	if err != nil {
		return err
	}

	return app.New(cfg, win, loader).Run()
}

func applyFlags(cfg *config.Configuration) error {
	if *vkDebug {
		cfg.Instance.DebugMode = true
	}
	if *backend != "" {
		switch b := core.WindowBackend(strings.ToLower(*backend)); b {
		case core.GLFWBackend, core.SDLBackend:
			cfg.Window.Backend = b
		default:
			return errors.Wrapf(window.ErrUnknownBackend, "%q", *backend)
		}
	}
	if *logLevel != "" {
		level, err := log.ParseLevel(*logLevel)
		if err != nil {
			return err
		}
		cfg.LogLevel = level
	}
	return nil
}
