// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"github.com/devblok/hellovk/capture"
	"github.com/devblok/hellovk/config"
	"github.com/devblok/hellovk/core"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/mmap"
)

// host is whatever answers the questions vkinfo asks,
// either the local Vulkan implementation or a capture.
type host interface {
	core.InstanceQuerier
	core.DeviceSource
}

type liveHost struct {
	core.Loader
	core.Instance
}

// openHost opens the capture at from, or the local Vulkan
// implementation when from is empty. release must be called once done.
func openHost(cfg config.Configuration, from string) (h host, release func(), err error) {
	if from != "" {
		return openCapture(from)
	}

	loader, err := core.NewVulkanLoader(nil)
	if err != nil {
		return nil, nil, err
	}

	instanceCfg := cfg.Instance
	instanceCfg.DebugMode = false
	instanceCfg.Extensions = nil
	instance, err := core.CreateInstance(loader, instanceCfg)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to create instance")
	}
	return liveHost{Loader: loader, Instance: instance}, instance.Destroy, nil
}

func openCapture(path string) (host, func(), error) {
	file, err := mmap.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	snapshot, header, err := capture.LoadSnapshot(file)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "load %s", path)
	}
	log.WithFields(log.Fields{
		"author":  header.Author,
		"created": header.DateCreated,
	}).Debug("Capture loaded")
	return snapshot, func() {}, nil
}
