package resource

import (
	"github.com/benchfarm/devmatch/internal/flow"
)

// AlteraUSBBlaster is an Altera USB Blaster FPGA download cable, in
// either its original or its II revision.
type AlteraUSBBlaster struct {
	*USBResource
}

func NewAlteraUSBBlaster(name string, match Spec) *AlteraUSBBlaster {
	r := &AlteraUSBBlaster{USBResource: NewUSBResource(name, match)}
	r.filter = flow.Or(
		usbID("09fb", "6010"),
		usbID("09fb", "6810"),
	)
	return r
}
