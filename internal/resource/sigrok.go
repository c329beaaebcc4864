package resource

import (
	"github.com/benchfarm/devmatch/internal/udev"
)

// SigrokUSBDevice is a USB attached measurement device driven through
// sigrok, for example a logic analyzer. The driver name and the
// channel mapping are handed through to the sigrok tooling unchanged.
type SigrokUSBDevice struct {
	*USBResource

	driver   string
	channels string
}

func NewSigrokUSBDevice(name string, match Spec, driver, channels string) *SigrokUSBDevice {
	match = match.clone()
	match[AncestorPrefix+udev.PropertySubsystem] = udev.SubsystemUSB
	return &SigrokUSBDevice{
		USBResource: NewUSBResource(name, match),
		driver:      driver,
		channels:    channels,
	}
}

// Driver returns the sigrok driver name.
func (r *SigrokUSBDevice) Driver() string { return r.driver }

// Channels returns the channel mapping.
func (r *SigrokUSBDevice) Channels() string { return r.channels }
