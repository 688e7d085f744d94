package core

import (
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// DebugReportExtension is enabled alongside validation layers
const DebugReportExtension = "VK_EXT_debug_report"

// MissingLayers returns the names in required that are not in available,
// in the order they were required.
func MissingLayers(required, available []string) []string {
	supported := make(map[string]struct{}, len(available))
	for _, name := range available {
		supported[name] = struct{}{}
	}

	var missing []string
	for _, name := range required {
		if _, ok := supported[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// CheckLayerSupport reports whether every required layer is available
func CheckLayerSupport(required, available []string) bool {
	return len(MissingLayers(required, available)) == 0
}

// CreateInstance creates an instance through loader. In debug mode the
// validation layers are checked for support first and the instance is not
// created when any of them is missing.
func CreateInstance(loader Loader, cfg InstanceConfiguration) (Instance, error) {
	if !cfg.DebugMode {
		cfg.ValidationLayers = nil
		return loader.NewInstance(cfg)
	}

	available, err := loader.InstanceLayers()
	if err != nil {
		return nil, errors.Wrap(err, "vk.EnumerateInstanceLayerProperties()")
	}

	if missing := MissingLayers(cfg.ValidationLayers, available); len(missing) > 0 {
		return nil, errors.Wrap(ErrLayerNotSupported, strings.Join(missing, ", "))
	}

	for _, layer := range cfg.ValidationLayers {
		log.WithField("layer", layer).Debug("Enabling validation layer")
	}

	cfg.Extensions = appendUnique(cfg.Extensions, DebugReportExtension)
	return loader.NewInstance(cfg)
}

func appendUnique(list []string, names ...string) []string {
	result := append([]string{}, list...)
	for _, name := range names {
		found := false
		for _, existing := range result {
			if existing == name {
				found = true
				break
			}
		}
		if !found {
			result = append(result, name)
		}
	}
	return result
}
