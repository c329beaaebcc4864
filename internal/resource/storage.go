package resource

import (
	"github.com/benchfarm/devmatch/internal/udev"
)

// USBMassStorage is a disk attached through USB, for example a card
// reader or a flash drive. It matches the whole disk, not a
// partition.
type USBMassStorage struct {
	*USBResource
}

func NewUSBMassStorage(name string, match Spec) *USBMassStorage {
	match = match.clone()
	match[udev.PropertySubsystem] = udev.SubsystemBlock
	match[udev.PropertyDevType] = udev.DevTypeDisk
	match[AncestorPrefix+udev.PropertySubsystem] = udev.SubsystemUSB
	r := &USBMassStorage{USBResource: NewUSBResource(name, match)}
	r.pathFn = r.devNodePath
	return r
}
