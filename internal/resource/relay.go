package resource

import (
	"github.com/benchfarm/devmatch/internal/udev"
)

// DeditecRelais8 is a Deditec USB relay board with eight outputs. The
// index selects the output.
type DeditecRelais8 struct {
	*USBResource

	index int
}

func NewDeditecRelais8(name string, match Spec, index int) *DeditecRelais8 {
	match = match.clone()
	match[udev.PropertyVendor] = "DEDITEC"
	match[udev.PropertyShortSerial] = "DT000014"
	r := &DeditecRelais8{
		USBResource: NewUSBResource(name, match),
		index:       index,
	}
	r.pathFn = r.devPath
	return r
}

func (r *DeditecRelais8) devPath() string {
	if r.dev == nil {
		return ""
	}
	return r.dev.DevPath()
}

// Index returns the output number on the board.
func (r *DeditecRelais8) Index() int { return r.index }
