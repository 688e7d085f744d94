package core

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"
)

// PhysicalDevice describes a rendering device along with
// the properties queried from it.
type PhysicalDevice struct {
	Handle vk.PhysicalDevice `json:"-"`

	ID            int
	VendorID      int
	DriverVersion int
	Name          string
	Type          vk.PhysicalDeviceType

	// Invalid is set when one of the queries against the device failed
	Invalid bool

	Extensions    []string
	Memory        uint
	Features      vk.PhysicalDeviceFeatures
	QueueFamilies []QueueFamily
}

func (pd PhysicalDevice) String() string {
	return fmt.Sprintf("%s (%s)", pd.Name, DeviceTypeName(pd.Type))
}

// QueueFamily describes a group of queues sharing supported operations.
type QueueFamily struct {
	Index      uint32
	Flags      vk.QueueFlags
	QueueCount uint32
}

// Supports reports whether every bit of flags is advertised by the family
func (qf QueueFamily) Supports(flags vk.QueueFlagBits) bool {
	return qf.Flags&vk.QueueFlags(flags) == vk.QueueFlags(flags)
}

func (qf QueueFamily) String() string {
	var ops []string
	for _, op := range []struct {
		bit  vk.QueueFlagBits
		name string
	}{
		{vk.QueueGraphicsBit, "graphics"},
		{vk.QueueComputeBit, "compute"},
		{vk.QueueTransferBit, "transfer"},
		{vk.QueueSparseBindingBit, "sparse"},
	} {
		if qf.Supports(op.bit) {
			ops = append(ops, op.name)
		}
	}
	return fmt.Sprintf("%d: %s x%d", qf.Index, strings.Join(ops, "|"), qf.QueueCount)
}

// QueueFamilyIndices holds the queue families a device will be used with.
// The zero value has no family selected.
type QueueFamilyIndices struct {
	graphics      uint32
	graphicsFound bool
}

// Graphics returns the graphics family index, ok is false if none was found
func (q QueueFamilyIndices) Graphics() (index uint32, ok bool) {
	return q.graphics, q.graphicsFound
}

// IsComplete reports whether every required family has been found
func (q QueueFamilyIndices) IsComplete() bool {
	return q.graphicsFound
}

// FindQueueFamilies scans families in index order and records the first
// one capable of graphics operations.
func FindQueueFamilies(families []QueueFamily) QueueFamilyIndices {
	var indices QueueFamilyIndices
	for i, family := range families {
		if family.Supports(vk.QueueGraphicsBit) {
			// families are in Vulkan order, the position is the family index
			indices.graphics = uint32(i)
			indices.graphicsFound = true
		}

		if indices.IsComplete() {
			break
		}
	}
	return indices
}

// SelectedDevice is the physical device chosen at startup.
type SelectedDevice struct {
	Device PhysicalDevice
	Queues QueueFamilyIndices
}

// IsDeviceSuitable checks if the device satisfies req.
// If not suitable the string contains the reason.
func IsDeviceSuitable(pd PhysicalDevice, req DeviceRequirements) (bool, string) {
	if pd.Invalid {
		return false, "device queries failed"
	}

	typeAccepted := false
	for _, t := range req.DeviceTypes {
		if pd.Type == t {
			typeAccepted = true
			break
		}
	}
	if !typeAccepted {
		return false, fmt.Sprintf("device type %s not accepted", DeviceTypeName(pd.Type))
	}

	if req.GeometryShader && !pd.Features.GeometryShader.B() {
		return false, "geometry shaders not supported"
	}

	if !FindQueueFamilies(pd.QueueFamilies).IsComplete() {
		return false, "no queue family with graphics support"
	}

	return true, ""
}

// PickPhysicalDevice returns the first device in devices that is suitable.
// An empty list yields ErrNoDevices, a list without any suitable
// device yields ErrNoSuitableDevice.
func PickPhysicalDevice(devices []PhysicalDevice, req DeviceRequirements) (SelectedDevice, error) {
	if len(devices) == 0 {
		return SelectedDevice{}, ErrNoDevices
	}

	for i, pd := range devices {
		if suitable, reason := IsDeviceSuitable(pd, req); !suitable {
			log.WithFields(log.Fields{
				"device": pd.Name,
				"index":  i,
			}).Debug("Skipping device: " + reason)
			continue
		}

		return SelectedDevice{
			Device: pd,
			Queues: FindQueueFamilies(pd.QueueFamilies),
		}, nil
	}

	return SelectedDevice{}, errors.Wrapf(ErrNoSuitableDevice, "%d device(s) checked", len(devices))
}

var deviceTypeNames = map[vk.PhysicalDeviceType]string{
	vk.PhysicalDeviceTypeOther:         "other",
	vk.PhysicalDeviceTypeIntegratedGpu: "integrated",
	vk.PhysicalDeviceTypeDiscreteGpu:   "discrete",
	vk.PhysicalDeviceTypeVirtualGpu:    "virtual",
	vk.PhysicalDeviceTypeCpu:           "cpu",
}

// DeviceTypeName returns the short name of a device type
func DeviceTypeName(t vk.PhysicalDeviceType) string {
	if name, ok := deviceTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", t)
}

// ParseDeviceType is the inverse of DeviceTypeName
func ParseDeviceType(name string) (vk.PhysicalDeviceType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for t, n := range deviceTypeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownDeviceType, "%q", name)
}
