package resource

import (
	"github.com/benchfarm/devmatch/internal/udev"
)

// USBSerialPort is a serial console behind a USB serial converter.
type USBSerialPort struct {
	*USBResource

	port string
}

func NewUSBSerialPort(name string, match Spec) *USBSerialPort {
	match = match.clone()
	match[udev.PropertySubsystem] = udev.SubsystemTTY
	r := &USBSerialPort{USBResource: NewUSBResource(name, match)}
	r.update = r.refresh
	return r
}

func (r *USBSerialPort) refresh() {
	if r.dev != nil {
		r.port = r.dev.DevNode()
	} else {
		r.port = ""
	}
}

// Port returns the serial device node, or an empty string while the
// converter is unplugged.
func (r *USBSerialPort) Port() string { return r.port }
