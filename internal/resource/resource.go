package resource

import (
	"strconv"

	"k8s.io/klog/v2"

	"github.com/benchfarm/devmatch/internal/flow"
	"github.com/benchfarm/devmatch/internal/udev"
)

// Resource tracks the presence of one piece of attached hardware. It
// is bound to a concrete kernel device once a matching one shows up
// and follows that device until it goes away again.
//
// Resources are not safe for concurrent use. The manager drives them
// from a single goroutine.
type Resource interface {
	Name() string

	// Match returns the device requirements.
	Match() Spec

	// TryMatch offers a device event to the resource and reports
	// whether the resource claimed it.
	TryMatch(dev udev.Device) bool

	// Available reports whether the hardware is present and usable.
	Available() bool

	// Device returns the bound kernel device, or nil.
	Device() udev.Device

	// Poll runs periodic work that events alone cannot cover.
	Poll()
}

// USBResource is the common implementation behind the catalogue. It
// matches devices against its spec and keeps the binding up to date
// as events come in. Concrete resource types add their spec entries
// and hook into its behavior.
type USBResource struct {
	name  string
	match Spec
	dev   udev.Device
	avail bool

	specFilter flow.FilterFunc[udev.Device]
	// filter narrows the spec further, for resource types whose
	// requirements go beyond plain key/value matching.
	filter flow.FilterFunc[udev.Device]

	// update runs after every claimed event.
	update func()
	// availFn overrides what Available reports.
	availFn func() bool
	// pollFn runs on every manager poll.
	pollFn func()
	// pathFn overrides what Path reports.
	pathFn func() string
}

// NewUSBResource builds a resource matching the given spec. Unless
// the spec says otherwise, it is narrowed to the usb subsystem.
func NewUSBResource(name string, match Spec) *USBResource {
	r := &USBResource{
		name:  name,
		match: match.clone(),
	}
	r.match.setDefault(udev.PropertySubsystem, udev.SubsystemUSB)
	r.specFilter = r.match.Filter()
	r.filter = flow.Any[udev.Device]()
	return r
}

func (r *USBResource) Name() string { return r.name }

func (r *USBResource) Match() Spec { return r.match }

func (r *USBResource) TryMatch(dev udev.Device) bool {
	if r.dev != nil {
		// Once bound, only events for that exact kernel device are
		// relevant. The spec is not re-checked, a change event may no
		// longer carry the properties the original match saw.
		if dev.SysPath() != r.dev.SysPath() {
			return false
		}
	} else {
		if !r.specFilter(dev) {
			return false
		}
		if !r.filter(dev) {
			return false
		}
	}

	klog.V(2).Infof("%s: found match: %s", r.name, dev.SysPath())
	switch dev.Action() {
	case udev.ActionNone, udev.ActionAdd:
		if r.Available() {
			klog.Warningf("%s: device %s is already available", r.name, dev.SysPath())
		}
		r.avail = true
		r.dev = dev
	case udev.ActionChange, udev.ActionMove:
		r.dev = dev
	case udev.ActionUnbind, udev.ActionRemove:
		r.avail = false
		r.dev = nil
	}
	if r.update != nil {
		r.update()
	}
	return true
}

func (r *USBResource) Available() bool {
	if r.availFn != nil {
		return r.availFn()
	}
	return r.avail
}

func (r *USBResource) Device() udev.Device { return r.dev }

func (r *USBResource) Poll() {
	if r.pollFn != nil {
		r.pollFn()
	}
}

// usbDevice resolves the USB device itself: the bound device if it is
// one, otherwise its nearest usb_device ancestor. Resources often
// match an interface or a child device below the device they belong
// to.
func (r *USBResource) usbDevice() udev.Device {
	if r.dev == nil {
		return nil
	}
	if r.dev.Subsystem() == udev.SubsystemUSB && r.dev.DevType() == udev.DevTypeUSBDevice {
		return r.dev
	}
	for _, ancestor := range r.dev.Ancestors() {
		if ancestor.Subsystem() == udev.SubsystemUSB && ancestor.DevType() == udev.DevTypeUSBDevice {
			return ancestor
		}
	}
	return nil
}

func (r *USBResource) intProperty(key string, base int) (int, bool) {
	dev := r.usbDevice()
	if dev == nil {
		return 0, false
	}
	value, err := strconv.ParseInt(dev.Property(key), base, 0)
	if err != nil {
		return 0, false
	}
	return int(value), true
}

// BusNum returns the number of the USB bus the device sits on.
func (r *USBResource) BusNum() (int, bool) {
	return r.intProperty(udev.PropertyBusNum, 10)
}

// DevNum returns the device's address on its USB bus.
func (r *USBResource) DevNum() (int, bool) {
	return r.intProperty(udev.PropertyDevNum, 10)
}

// VendorID returns the USB vendor id of the device.
func (r *USBResource) VendorID() (int, bool) {
	return r.intProperty(udev.PropertyVendorID, 16)
}

// ModelID returns the USB model id of the device.
func (r *USBResource) ModelID() (int, bool) {
	return r.intProperty(udev.PropertyModelID, 16)
}

// Path returns how consumers address the hardware. The default is the
// sysfs name of the USB device, resource types that are used through
// a device node report that instead. It is empty while the resource
// is unbound.
func (r *USBResource) Path() string {
	if r.pathFn != nil {
		return r.pathFn()
	}
	if dev := r.usbDevice(); dev != nil {
		return dev.SysName()
	}
	return ""
}

func (r *USBResource) devNodePath() string {
	if r.dev == nil {
		return ""
	}
	return r.dev.DevNode()
}

// ReadAttr reads a sysfs attribute of the bound device fresh from the
// filesystem, for attributes that change without a device event. It
// returns nil while the resource is unbound.
func (r *USBResource) ReadAttr(attribute string) ([]byte, error) {
	if r.dev == nil {
		return nil, nil
	}
	return udev.ReadAttr(r.dev.SysPath(), attribute)
}
