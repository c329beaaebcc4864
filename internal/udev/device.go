package udev

// Property keys announced by udev that matching and the derived usb
// fields rely on.
const (
	PropertySubsystem   = "SUBSYSTEM"
	PropertyDevType     = "DEVTYPE"
	PropertyDriver      = "DRIVER"
	PropertyInterface   = "INTERFACE"
	PropertyBusNum      = "BUSNUM"
	PropertyDevNum      = "DEVNUM"
	PropertyVendor      = "ID_VENDOR"
	PropertyVendorID    = "ID_VENDOR_ID"
	PropertyModelID     = "ID_MODEL_ID"
	PropertyShortSerial = "ID_SERIAL_SHORT"
)

const (
	SubsystemUSB         = "usb"
	SubsystemTTY         = "tty"
	SubsystemBlock       = "block"
	SubsystemNet         = "net"
	SubsystemVideo4Linux = "video4linux"
	SubsystemUSBMisc     = "usbmisc"
	SubsystemSCSIGeneric = "scsi_generic"

	DevTypeUSBDevice    = "usb_device"
	DevTypeUSBInterface = "usb_interface"
	DevTypeDisk         = "disk"

	DriverHub    = "hub"
	DriverUSBTMC = "usbtmc"

	SysAttrOperstate = "operstate"
)

// Action is the uevent action a device observation arrived with.
// Devices seen through enumeration carry ActionNone. The kernel may
// emit actions beyond the ones named here (bind, online, ...).
type Action string

const (
	ActionNone   Action = ""
	ActionAdd    Action = "add"
	ActionChange Action = "change"
	ActionMove   Action = "move"
	ActionUnbind Action = "unbind"
	ActionRemove Action = "remove"
)

// Device is a view of a kernel device at the moment it was observed.
// Observations are never mutated; the same physical device showing up
// twice yields two values that agree on SysPath.
type Device interface {
	SysPath() string
	SysName() string
	DevPath() string
	Subsystem() string
	DevType() string
	DevNode() string
	Driver() string
	Action() Action
	Properties() map[string]string
	Property(string) string
	// Attribute returns a sysfs attribute value and whether the
	// attribute exists at all.
	Attribute(string) (string, bool)
	// Ancestors returns the parent chain, nearest first.
	Ancestors() []Device
	// Children enumerates the devices currently below this one in the
	// kernel device tree.
	Children() ([]Device, error)
}
