package resource

import (
	"k8s.io/klog/v2"

	"github.com/benchfarm/devmatch/internal/udev"
)

// USBSDMuxDevice is a USB-SD-Mux, an SD card multiplexer that hands
// its card to either the host or the device under test. The mux is
// only usable once two of its child devices are known as well: the
// card reader's block device and the control interface.
type USBSDMuxDevice struct {
	*USBResource

	controlPath string
	diskPath    string
}

func NewUSBSDMuxDevice(name string, match Spec) *USBSDMuxDevice {
	match = match.clone()
	match[udev.PropertyVendorID] = "0424"
	match[udev.PropertyModelID] = "4041"
	r := &USBSDMuxDevice{USBResource: NewUSBResource(name, match)}
	r.availFn = r.available
	r.pollFn = r.scan
	r.pathFn = r.DiskPath
	return r
}

func (r *USBSDMuxDevice) available() bool {
	return r.avail && r.complete()
}

func (r *USBSDMuxDevice) complete() bool {
	return r.controlPath != "" && r.diskPath != ""
}

// scan looks for the mux's child devices. The block device in
// particular can show up well after the mux's own add event, so the
// search repeats on every poll until both paths are known.
func (r *USBSDMuxDevice) scan() {
	if r.dev == nil {
		r.controlPath = ""
		r.diskPath = ""
		return
	}
	if r.complete() {
		return
	}

	children, err := r.dev.Children()
	if err != nil {
		klog.Errorf("%s: failed to scan for child devices: %v", r.name, err)
		return
	}
	for _, child := range children {
		switch {
		case child.Subsystem() == udev.SubsystemBlock && child.DevType() == udev.DevTypeDisk:
			r.diskPath = child.DevNode()
		case child.Subsystem() == udev.SubsystemSCSIGeneric:
			r.controlPath = child.DevNode()
		}
	}
}

// ControlPath returns the device node the mux is switched through, or
// an empty string until it is found.
func (r *USBSDMuxDevice) ControlPath() string { return r.controlPath }

// DiskPath returns the block device node of the SD card reader, or an
// empty string until it is found.
func (r *USBSDMuxDevice) DiskPath() string { return r.diskPath }
