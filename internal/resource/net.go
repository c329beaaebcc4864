package resource

import (
	"github.com/benchfarm/devmatch/internal/udev"
)

// USBEthernetInterface is a network interface provided by a USB
// adapter.
type USBEthernetInterface struct {
	*USBResource

	ifname string
}

func NewUSBEthernetInterface(name string, match Spec) *USBEthernetInterface {
	match = match.clone()
	match[udev.PropertySubsystem] = udev.SubsystemNet
	match[AncestorPrefix+udev.PropertySubsystem] = udev.SubsystemUSB
	r := &USBEthernetInterface{USBResource: NewUSBResource(name, match)}
	r.update = r.refresh
	return r
}

func (r *USBEthernetInterface) refresh() {
	if r.dev != nil {
		r.ifname = r.dev.Property(udev.PropertyInterface)
	} else {
		r.ifname = ""
	}
}

// Interface returns the kernel name of the network interface, or an
// empty string while the adapter is unplugged.
func (r *USBEthernetInterface) Interface() string { return r.ifname }

// LinkState reads the operational state of the link. The state
// changes without any device event, so it is read fresh from sysfs on
// every call. It is empty while the adapter is unplugged.
func (r *USBEthernetInterface) LinkState() (string, error) {
	value, err := r.ReadAttr(udev.SysAttrOperstate)
	if err != nil {
		return "", err
	}
	return string(value), nil
}
