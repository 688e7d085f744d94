// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package capture

import (
	"encoding/json"
	"io"
	"time"

	"github.com/devblok/hellovk/core"
	"github.com/pkg/errors"
)

// Entry names of a snapshot archive
const (
	DevicesEntry    = "devices.json"
	LayersEntry     = "layers.json"
	ExtensionsEntry = "extensions.json"
)

// SnapshotVersion is written into the Header of saved snapshots
const SnapshotVersion = 1

// Snapshot is what a host reported at the time it was taken. It can
// stand in for the host when selecting devices or listing layers.
type Snapshot struct {
	Devices    []core.PhysicalDevice
	Layers     []string
	Extensions []string
}

// TakeSnapshot queries the loader and the device source
func TakeSnapshot(q core.InstanceQuerier, source core.DeviceSource) (*Snapshot, error) {
	layers, err := q.InstanceLayers()
	if err != nil {
		return nil, err
	}
	extensions, err := q.InstanceExtensions()
	if err != nil {
		return nil, err
	}
	devices, err := source.PhysicalDevices()
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Devices:    devices,
		Layers:     layers,
		Extensions: extensions,
	}, nil
}

// PhysicalDevices implements core.DeviceSource. Handles of
// captured devices are always nil.
func (s *Snapshot) PhysicalDevices() ([]core.PhysicalDevice, error) {
	return append([]core.PhysicalDevice{}, s.Devices...), nil
}

// InstanceLayers implements core.InstanceQuerier
func (s *Snapshot) InstanceLayers() ([]string, error) {
	return append([]string{}, s.Layers...), nil
}

// InstanceExtensions implements core.InstanceQuerier
func (s *Snapshot) InstanceExtensions() ([]string, error) {
	return append([]string{}, s.Extensions...), nil
}

// Save writes the snapshot as an archive authored by author
func (s *Snapshot) Save(w io.Writer, author string) (int64, error) {
	builder := NewBuilder(Header{
		Author:      author,
		DateCreated: time.Now().Unix(),
		Version:     SnapshotVersion,
	})

	for _, entry := range []struct {
		name  string
		value interface{}
	}{
		{DevicesEntry, s.Devices},
		{LayersEntry, s.Layers},
		{ExtensionsEntry, s.Extensions},
	} {
		data, err := json.Marshal(entry.value)
		if err != nil {
			return 0, errors.Wrapf(err, "encode %s", entry.name)
		}
		if err := builder.Add(entry.name, data); err != nil {
			return 0, err
		}
	}

	return builder.WriteTo(w)
}

// LoadSnapshot reads a snapshot saved with Save
func LoadSnapshot(r io.ReaderAt) (*Snapshot, Header, error) {
	archive, err := Open(r)
	if err != nil {
		return nil, Header{}, err
	}

	if v := archive.Header().Version; v != SnapshotVersion {
		return nil, Header{}, errors.Wrapf(ErrFileFormat, "unsupported snapshot version %d", v)
	}

	var s Snapshot
	for _, entry := range []struct {
		name   string
		target interface{}
	}{
		{DevicesEntry, &s.Devices},
		{LayersEntry, &s.Layers},
		{ExtensionsEntry, &s.Extensions},
	} {
		data, err := archive.ReadAll(entry.name)
		if err != nil {
			return nil, Header{}, err
		}
		if err := json.Unmarshal(data, entry.target); err != nil {
			return nil, Header{}, errors.Wrapf(ErrFileFormat, "decode %s: %s", entry.name, err)
		}
	}
	if err := checkQueueFamilies(s.Devices); err != nil {
		return nil, Header{}, err
	}
	return &s, archive.Header(), nil
}

// checkQueueFamilies rejects devices whose families are not listed
// in index order, selection relies on the position being the index.
func checkQueueFamilies(devices []core.PhysicalDevice) error {
	for _, pd := range devices {
		for i, family := range pd.QueueFamilies {
			if family.Index != uint32(i) {
				return errors.Wrapf(ErrFileFormat, "%s: queue family %d listed at position %d", pd.Name, family.Index, i)
			}
		}
	}
	return nil
}
