package resource

import (
	"github.com/benchfarm/devmatch/internal/udev"
)

// USBTMC is a measurement instrument speaking the USB Test and
// Measurement Class protocol, for example an oscilloscope.
type USBTMC struct {
	*USBResource
}

func NewUSBTMC(name string, match Spec) *USBTMC {
	match = match.clone()
	match[udev.PropertySubsystem] = udev.SubsystemUSBMisc
	match[AncestorPrefix+udev.PropertyDriver] = udev.DriverUSBTMC
	match[AncestorPrefix+udev.PropertySubsystem] = udev.SubsystemUSB
	r := &USBTMC{USBResource: NewUSBResource(name, match)}
	r.pathFn = r.devNodePath
	return r
}
