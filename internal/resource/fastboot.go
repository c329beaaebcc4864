package resource

// The ids the Linux USB gadget stack advertises for fastboot.
const (
	defaultFastbootVendorID  = "1d6b"
	defaultFastbootProductID = "0104"
)

// AndroidFastboot is a device waiting in the Android fastboot
// protocol. Boards with a vendor bootloader show up under their own
// ids, which can be given instead of the defaults.
type AndroidFastboot struct {
	*USBResource

	vendorID  string
	productID string
}

func NewAndroidFastboot(name string, match Spec, vendorID, productID string) *AndroidFastboot {
	if vendorID == "" {
		vendorID = defaultFastbootVendorID
	}
	if productID == "" {
		productID = defaultFastbootProductID
	}
	r := &AndroidFastboot{
		USBResource: NewUSBResource(name, match),
		vendorID:    vendorID,
		productID:   productID,
	}
	r.filter = usbID(vendorID, productID)
	return r
}
