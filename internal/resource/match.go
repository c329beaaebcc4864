package resource

import (
	"maps"
	"strings"

	"github.com/benchfarm/devmatch/internal/flow"
	"github.com/benchfarm/devmatch/internal/udev"
)

// AncestorPrefix marks a match key that is checked against the
// device's ancestors instead of the device itself.
const AncestorPrefix = "@"

// Spec describes the device a resource wants, as a set of key/value
// requirements. A key is looked up as a udev property first, then as
// a sysfs attribute, then as one of the well-known device fields
// (subsystem, device_type, device_node, sys_name, sys_path, driver).
// All keys have to match.
type Spec map[string]string

func (s Spec) clone() Spec {
	res := make(Spec, len(s))
	maps.Copy(res, s)
	return res
}

func (s Spec) setDefault(key, value string) {
	if _, found := s[key]; !found {
		s[key] = value
	}
}

// Subsystem returns the subsystem the spec pins down, or an empty
// string if it leaves the subsystem open.
func (s Spec) Subsystem() string {
	return s[udev.PropertySubsystem]
}

// Filter compiles the spec into a device filter.
func (s Spec) Filter() flow.FilterFunc[udev.Device] {
	filters := make([]flow.FilterFunc[udev.Device], 0, len(s))
	for key, value := range s {
		filters = append(filters, matchFilter(key, value))
	}
	return flow.And(filters...)
}

func matchFilter(key, value string) flow.FilterFunc[udev.Device] {
	if ancestorKey, found := strings.CutPrefix(key, AncestorPrefix); found {
		return func(dev udev.Device) bool {
			for _, ancestor := range dev.Ancestors() {
				if matchSingle(ancestor, ancestorKey, value) {
					return true
				}
			}
			return false
		}
	}
	return func(dev udev.Device) bool {
		return matchSingle(dev, key, value)
	}
}

func matchSingle(dev udev.Device, key, value string) bool {
	if prop, found := dev.Properties()[key]; found && prop == value {
		return true
	}
	if attr, found := dev.Attribute(key); found && attr == value {
		return true
	}
	if field, found := deviceField(dev, key); found && field == value {
		return true
	}
	return false
}

func deviceField(dev udev.Device, key string) (string, bool) {
	switch key {
	case "subsystem":
		return dev.Subsystem(), true
	case "device_type":
		return dev.DevType(), true
	case "device_node":
		return dev.DevNode(), true
	case "sys_name":
		return dev.SysName(), true
	case "sys_path":
		return dev.SysPath(), true
	case "driver":
		return dev.Driver(), true
	}
	return "", false
}
