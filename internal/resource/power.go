package resource

import (
	"github.com/benchfarm/devmatch/internal/udev"
)

// USBPowerPort is a single port on a USB hub with per-port power
// switching. The index selects the port on the hub.
type USBPowerPort struct {
	*USBResource

	index int
}

func NewUSBPowerPort(name string, match Spec, index int) *USBPowerPort {
	match = match.clone()
	match[udev.PropertyDevType] = udev.DevTypeUSBInterface
	match[udev.PropertyDriver] = udev.DriverHub
	return &USBPowerPort{
		USBResource: NewUSBResource(name, match),
		index:       index,
	}
}

// Index returns the port number on the hub.
func (r *USBPowerPort) Index() int { return r.index }
