package resource

import (
	"github.com/benchfarm/devmatch/internal/udev"
)

// USBVideo is a video capture device, usually an HDMI grabber or a
// camera pointed at the device under test.
type USBVideo struct {
	*USBResource
}

func NewUSBVideo(name string, match Spec) *USBVideo {
	match = match.clone()
	match[udev.PropertySubsystem] = udev.SubsystemVideo4Linux
	match[AncestorPrefix+udev.PropertySubsystem] = udev.SubsystemUSB
	r := &USBVideo{USBResource: NewUSBResource(name, match)}
	r.pathFn = r.devNodePath
	return r
}
