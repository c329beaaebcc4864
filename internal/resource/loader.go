package resource

import (
	"github.com/benchfarm/devmatch/internal/flow"
	"github.com/benchfarm/devmatch/internal/udev"
)

// usbID matches a device by its USB vendor and model id properties.
func usbID(vendor, model string) flow.FilterFunc[udev.Device] {
	return func(dev udev.Device) bool {
		props := dev.Properties()
		return props[udev.PropertyVendorID] == vendor && props[udev.PropertyModelID] == model
	}
}

// IMXUSBLoader is an NXP i.MX SoC waiting in its USB recovery mode.
// The ROM answers under one of a fixed set of ids, depending on the
// SoC generation.
type IMXUSBLoader struct {
	*USBResource
}

func NewIMXUSBLoader(name string, match Spec) *IMXUSBLoader {
	r := &IMXUSBLoader{USBResource: NewUSBResource(name, match)}
	r.filter = flow.Or(
		usbID("15a2", "003a"),
		usbID("15a2", "0054"),
		usbID("15a2", "0061"),
		usbID("15a2", "0063"),
		usbID("15a2", "0071"),
		usbID("15a2", "0076"),
		usbID("15a2", "007d"),
		usbID("15a2", "0080"),
		usbID("1fc9", "0126"),
		usbID("1fc9", "0128"),
		usbID("1fc9", "012b"),
	)
	return r
}

// RKUSBLoader is a Rockchip SoC waiting in its USB recovery mode.
type RKUSBLoader struct {
	*USBResource
}

func NewRKUSBLoader(name string, match Spec) *RKUSBLoader {
	r := &RKUSBLoader{USBResource: NewUSBResource(name, match)}
	r.filter = usbID("2207", "110a")
	return r
}

// MXSUSBLoader is an NXP i.MX23/28 SoC waiting in its USB recovery
// mode.
type MXSUSBLoader struct {
	*USBResource
}

func NewMXSUSBLoader(name string, match Spec) *MXSUSBLoader {
	r := &MXSUSBLoader{USBResource: NewUSBResource(name, match)}
	r.filter = flow.Or(
		usbID("066f", "3780"),
		usbID("15a2", "004f"),
	)
	return r
}
