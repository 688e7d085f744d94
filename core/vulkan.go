package core

import (
	"unsafe"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"
)

// NewVulkanLoader initialises the Vulkan API. procAddr is the
// vkGetInstanceProcAddr provided by the window system, when nil
// the system Vulkan library is loaded instead.
func NewVulkanLoader(procAddr unsafe.Pointer) (*VulkanLoader, error) {
	if procAddr == nil {
		if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
			return nil, errors.Wrap(err, "vk.SetDefaultGetInstanceProcAddr()")
		}
	} else {
		vk.SetGetInstanceProcAddr(procAddr)
	}

	if err := vk.Init(); err != nil {
		return nil, errors.Wrap(err, "vk.Init()")
	}

	return &VulkanLoader{}, nil
}

// VulkanLoader is the Vulkan API implementation of Loader
type VulkanLoader struct{}

// InstanceLayers implements interface
func (VulkanLoader) InstanceLayers() ([]string, error) {
	var count uint32
	if err := vk.Error(vk.EnumerateInstanceLayerProperties(&count, nil)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumerateInstanceLayerProperties()")
	}
	layers := make([]vk.LayerProperties, count)
	if err := vk.Error(vk.EnumerateInstanceLayerProperties(&count, layers)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumerateInstanceLayerProperties()")
	}

	names := make([]string, 0, count)
	for _, layer := range layers[:count] {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}
	return names, nil
}

// InstanceExtensions implements interface
func (VulkanLoader) InstanceExtensions() ([]string, error) {
	var count uint32
	if err := vk.Error(vk.EnumerateInstanceExtensionProperties("", &count, nil)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumerateInstanceExtensionProperties()")
	}
	extensions := make([]vk.ExtensionProperties, count)
	if err := vk.Error(vk.EnumerateInstanceExtensionProperties("", &count, extensions)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumerateInstanceExtensionProperties()")
	}

	names := make([]string, 0, count)
	for _, ext := range extensions[:count] {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, nil
}

// NewInstance implements interface
func (VulkanLoader) NewInstance(cfg InstanceConfiguration) (Instance, error) {
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   SafeString(cfg.ApplicationName),
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		PEngineName:        SafeString(cfg.EngineName),
		EngineVersion:      vk.MakeVersion(1, 0, 0),
		ApiVersion:         vk.MakeVersion(1, 0, 0),
	}

	instanceInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        appInfo,
		EnabledExtensionCount:   uint32(len(cfg.Extensions)),
		PpEnabledExtensionNames: SafeStrings(cfg.Extensions),
		EnabledLayerCount:       uint32(len(cfg.ValidationLayers)),
		PpEnabledLayerNames:     SafeStrings(cfg.ValidationLayers),
	}

	var instance vk.Instance
	if err := vk.Error(vk.CreateInstance(&instanceInfo, nil, &instance)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateInstance()")
	}
	if err := vk.InitInstance(instance); err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, errors.Wrap(err, "vk.InitInstance()")
	}

	log.WithFields(log.Fields{
		"extensions": len(cfg.Extensions),
		"layers":     len(cfg.ValidationLayers),
	}).Debug("Vulkan instance created")

	return &VulkanInstance{
		configuration: cfg,
		instance:      instance,
	}, nil
}

// VulkanInstance describes a Vulkan API Instance
type VulkanInstance struct {
	configuration InstanceConfiguration
	instance      vk.Instance
}

func enumerateDevices(instance vk.Instance) ([]vk.PhysicalDevice, error) {
	var deviceCount uint32
	if err := vk.Error(vk.EnumeratePhysicalDevices(instance, &deviceCount, nil)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumeratePhysicalDevices()")
	}
	availableDevices := make([]vk.PhysicalDevice, deviceCount)
	if err := vk.Error(vk.EnumeratePhysicalDevices(instance, &deviceCount, availableDevices)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumeratePhysicalDevices()")
	}
	return availableDevices[:deviceCount], nil
}

// PhysicalDevices implements interface
func (v *VulkanInstance) PhysicalDevices() ([]PhysicalDevice, error) {
	handles, err := enumerateDevices(v.instance)
	if err != nil {
		return nil, err
	}

	devices := make([]PhysicalDevice, len(handles))
	for i, handle := range handles {
		devices[i] = describePhysicalDevice(handle)
	}
	return devices, nil
}

func describePhysicalDevice(handle vk.PhysicalDevice) PhysicalDevice {
	pd := PhysicalDevice{Handle: handle}

	// Get extension info
	var numDeviceExtensions uint32
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(handle, "", &numDeviceExtensions, nil)); err != nil {
		pd.Invalid = true
	}
	deviceExt := make([]vk.ExtensionProperties, numDeviceExtensions)
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(handle, "", &numDeviceExtensions, deviceExt)); err != nil {
		pd.Invalid = true
	}
	for _, ext := range deviceExt {
		ext.Deref()
		pd.Extensions = append(pd.Extensions, vk.ToString(ext.ExtensionName[:]))
	}

	// Get memory info
	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(handle, &memoryProperties)
	memoryProperties.Deref()
	for iMem := uint32(0); iMem < memoryProperties.MemoryHeapCount; iMem++ {
		memoryProperties.MemoryHeaps[iMem].Deref()
		pd.Memory += uint(memoryProperties.MemoryHeaps[iMem].Size)
	}

	// Get general device info
	var properties vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(handle, &properties)
	properties.Deref()
	pd.ID = int(properties.DeviceID)
	pd.VendorID = int(properties.VendorID)
	pd.DriverVersion = int(properties.DriverVersion)
	pd.Name = vk.ToString(properties.DeviceName[:])
	pd.Type = properties.DeviceType

	var features vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(handle, &features)
	features.Deref()
	pd.Features = features

	// Get queue families
	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(handle, &queueFamilyCount, nil)
	queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(handle, &queueFamilyCount, queueFamilies)
	for i := uint32(0); i < queueFamilyCount; i++ {
		queueFamilies[i].Deref()
		pd.QueueFamilies = append(pd.QueueFamilies, QueueFamily{
			Index:      i,
			Flags:      queueFamilies[i].QueueFlags,
			QueueCount: queueFamilies[i].QueueCount,
		})
	}

	return pd
}

// Extensions implements interface
func (v *VulkanInstance) Extensions() []string {
	return v.configuration.Extensions
}

// Layers implements interface
func (v *VulkanInstance) Layers() []string {
	return v.configuration.ValidationLayers
}

// NewLogicalDevice implements interface
func (v *VulkanInstance) NewLogicalDevice(sel SelectedDevice, cfg DeviceConfiguration) (LogicalDevice, error) {
	family, ok := sel.Queues.Graphics()
	if !ok {
		return nil, ErrIncompleteQueueFamilies
	}

	queueInfos := []vk.DeviceQueueCreateInfo{{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: family,
		QueueCount:       1,
		PQueuePriorities: []float32{1.0},
	}}

	dci := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(cfg.Extensions)),
		PpEnabledExtensionNames: SafeStrings(cfg.Extensions),
		EnabledLayerCount:       uint32(len(cfg.Layers)),
		PpEnabledLayerNames:     SafeStrings(cfg.Layers),
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{{}},
	}

	var device vk.Device
	if err := vk.Error(vk.CreateDevice(sel.Device.Handle, &dci, nil, &device)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateDevice()")
	}

	var queue vk.Queue
	vk.GetDeviceQueue(device, family, 0, &queue)

	log.WithFields(log.Fields{
		"device": sel.Device.Name,
		"family": family,
	}).Debug("Logical device created")

	return &VulkanDevice{
		device:      device,
		queue:       queue,
		queueFamily: family,
	}, nil
}

// Inner implements interface
func (v *VulkanInstance) Inner() interface{} {
	return v.instance
}

// Destroy implements interface
func (v *VulkanInstance) Destroy() {
	if v == nil || v.instance == nil {
		return
	}
	vk.DestroyInstance(v.instance, nil)
	v.instance = nil
}

// VulkanDevice is a Vulkan API logical device with its graphics queue
type VulkanDevice struct {
	device      vk.Device
	queue       vk.Queue
	queueFamily uint32
}

// GraphicsQueue implements interface
func (d *VulkanDevice) GraphicsQueue() vk.Queue {
	return d.queue
}

// QueueFamily implements interface
func (d *VulkanDevice) QueueFamily() uint32 {
	return d.queueFamily
}

// Inner implements interface
func (d *VulkanDevice) Inner() interface{} {
	return d.device
}

// Destroy implements interface
func (d *VulkanDevice) Destroy() {
	if d == nil || d.device == nil {
		return
	}
	vk.DeviceWaitIdle(d.device)
	vk.DestroyDevice(d.device, nil)
	d.device = nil
}
