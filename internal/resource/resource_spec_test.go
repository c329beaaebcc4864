package resource_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/benchfarm/devmatch/internal/resource"
	"github.com/benchfarm/devmatch/internal/udev"
)

// gadget builds a usb_device carrying the given serial.
func gadget(action udev.Action, serial string) *fakeDevice {
	return &fakeDevice{
		syspath:   "/sys/devices/platform/soc/usb1/1-2",
		sysname:   "1-2",
		subsystem: "usb",
		devtype:   "usb_device",
		action:    action,
		properties: map[string]string{
			"SUBSYSTEM":       "usb",
			"DEVTYPE":         "usb_device",
			"ID_SERIAL_SHORT": serial,
		},
	}
}

var _ = Describe("USBResource", func() {
	var r *resource.USBResource

	BeforeEach(func() {
		r = resource.NewUSBResource("dut", resource.Spec{"ID_SERIAL_SHORT": "P-2004"})
	})

	It("should default to the usb subsystem", func() {
		Expect(r.Match().Subsystem()).To(Equal("usb"))
	})

	It("should keep a subsystem the spec chose", func() {
		r = resource.NewUSBResource("dut", resource.Spec{"SUBSYSTEM": "tty"})
		Expect(r.Match().Subsystem()).To(Equal("tty"))
	})

	Describe("binding", func() {
		It("should start out unbound", func() {
			Expect(r.Available()).To(BeFalse())
			Expect(r.Device()).To(BeNil())
			Expect(r.Path()).To(BeEmpty())
		})

		It("should bind to a matching device on add", func() {
			dev := gadget(udev.ActionAdd, "P-2004")

			Expect(r.TryMatch(dev)).To(BeTrue())
			Expect(r.Available()).To(BeTrue())
			Expect(r.Device()).To(BeIdenticalTo(dev))
		})

		It("should bind to a matching device found by enumeration", func() {
			Expect(r.TryMatch(gadget(udev.ActionNone, "P-2004"))).To(BeTrue())
			Expect(r.Available()).To(BeTrue())
		})

		It("should decline a device that does not match", func() {
			Expect(r.TryMatch(gadget(udev.ActionAdd, "P-2005"))).To(BeFalse())
			Expect(r.Available()).To(BeFalse())
			Expect(r.Device()).To(BeNil())
		})

		It("should stay bound when the device changes", func() {
			Expect(r.TryMatch(gadget(udev.ActionAdd, "P-2004"))).To(BeTrue())

			changed := gadget(udev.ActionChange, "P-2004")
			Expect(r.TryMatch(changed)).To(BeTrue())
			Expect(r.Available()).To(BeTrue())
			Expect(r.Device()).To(BeIdenticalTo(changed))
		})

		It("should replace the binding on a repeated add", func() {
			Expect(r.TryMatch(gadget(udev.ActionAdd, "P-2004"))).To(BeTrue())

			again := gadget(udev.ActionAdd, "P-2004")
			Expect(r.TryMatch(again)).To(BeTrue())
			Expect(r.Available()).To(BeTrue())
			Expect(r.Device()).To(BeIdenticalTo(again))
		})

		It("should unbind on remove", func() {
			Expect(r.TryMatch(gadget(udev.ActionAdd, "P-2004"))).To(BeTrue())

			Expect(r.TryMatch(gadget(udev.ActionRemove, "P-2004"))).To(BeTrue())
			Expect(r.Available()).To(BeFalse())
			Expect(r.Device()).To(BeNil())
		})

		It("should unbind on unbind", func() {
			Expect(r.TryMatch(gadget(udev.ActionAdd, "P-2004"))).To(BeTrue())

			Expect(r.TryMatch(gadget(udev.ActionUnbind, "P-2004"))).To(BeTrue())
			Expect(r.Available()).To(BeFalse())
			Expect(r.Device()).To(BeNil())
		})

		It("should rebind after the device came back", func() {
			Expect(r.TryMatch(gadget(udev.ActionAdd, "P-2004"))).To(BeTrue())
			Expect(r.TryMatch(gadget(udev.ActionRemove, "P-2004"))).To(BeTrue())

			Expect(r.TryMatch(gadget(udev.ActionAdd, "P-2004"))).To(BeTrue())
			Expect(r.Available()).To(BeTrue())
		})
	})

	Describe("identity", func() {
		BeforeEach(func() {
			Expect(r.TryMatch(gadget(udev.ActionAdd, "P-2004"))).To(BeTrue())
		})

		It("should decline another device even if it matches the spec", func() {
			other := gadget(udev.ActionAdd, "P-2004")
			other.syspath = "/sys/devices/platform/soc/usb1/1-3"

			Expect(r.TryMatch(other)).To(BeFalse())
			Expect(r.Device().SysPath()).To(Equal("/sys/devices/platform/soc/usb1/1-2"))
		})

		It("should follow its device even when an event no longer matches the spec", func() {
			// A remove event often carries fewer properties than the
			// add event the match ran on.
			bare := &fakeDevice{
				syspath: "/sys/devices/platform/soc/usb1/1-2",
				action:  udev.ActionRemove,
			}

			Expect(r.TryMatch(bare)).To(BeTrue())
			Expect(r.Available()).To(BeFalse())
		})
	})

	Describe("actions without a transition", func() {
		It("should claim an event it cannot act on without binding", func() {
			dev := gadget("online", "P-2004")

			Expect(r.TryMatch(dev)).To(BeTrue())
			Expect(r.Available()).To(BeFalse())
			Expect(r.Device()).To(BeNil())
		})

		It("should claim an event it cannot act on without rebinding", func() {
			first := gadget(udev.ActionAdd, "P-2004")
			Expect(r.TryMatch(first)).To(BeTrue())

			Expect(r.TryMatch(gadget("bind", "P-2004"))).To(BeTrue())
			Expect(r.Available()).To(BeTrue())
			Expect(r.Device()).To(BeIdenticalTo(first))
		})
	})

	Describe("USB coordinates", func() {
		It("should derive them from the device itself", func() {
			dev := gadget(udev.ActionAdd, "P-2004")
			dev.properties["BUSNUM"] = "003"
			dev.properties["DEVNUM"] = "011"
			dev.properties["ID_VENDOR_ID"] = "0bda"
			dev.properties["ID_MODEL_ID"] = "8153"
			Expect(r.TryMatch(dev)).To(BeTrue())

			busnum, ok := r.BusNum()
			Expect(ok).To(BeTrue())
			Expect(busnum).To(Equal(3))

			devnum, ok := r.DevNum()
			Expect(ok).To(BeTrue())
			Expect(devnum).To(Equal(11))

			vendor, ok := r.VendorID()
			Expect(ok).To(BeTrue())
			Expect(vendor).To(Equal(0x0bda))

			model, ok := r.ModelID()
			Expect(ok).To(BeTrue())
			Expect(model).To(Equal(0x8153))

			Expect(r.Path()).To(Equal("1-2"))
		})

		It("should derive them from the usb_device ancestor", func() {
			r = resource.NewUSBResource("dut", resource.Spec{"SUBSYSTEM": "tty"})
			dev := &fakeDevice{
				syspath:    "/sys/devices/platform/soc/usb1/1-2/1-2:1.0/ttyUSB0",
				sysname:    "ttyUSB0",
				subsystem:  "tty",
				action:     udev.ActionAdd,
				properties: map[string]string{"SUBSYSTEM": "tty"},
				ancestors: []udev.Device{
					&fakeDevice{subsystem: "usb", devtype: "usb_interface"},
					usbParent("003", "011", "0bda", "8153"),
				},
			}
			Expect(r.TryMatch(dev)).To(BeTrue())

			busnum, ok := r.BusNum()
			Expect(ok).To(BeTrue())
			Expect(busnum).To(Equal(3))

			vendor, ok := r.VendorID()
			Expect(ok).To(BeTrue())
			Expect(vendor).To(Equal(0x0bda))

			Expect(r.Path()).To(Equal("1-2"))
		})

		It("should report their absence while unbound", func() {
			_, ok := r.BusNum()
			Expect(ok).To(BeFalse())
			_, ok = r.VendorID()
			Expect(ok).To(BeFalse())
		})

		It("should report their absence without a usb_device", func() {
			r = resource.NewUSBResource("dut", resource.Spec{"SUBSYSTEM": "tty"})
			dev := &fakeDevice{
				syspath:    "/sys/devices/platform/serial8250/tty/ttyS0",
				subsystem:  "tty",
				action:     udev.ActionAdd,
				properties: map[string]string{"SUBSYSTEM": "tty"},
			}
			Expect(r.TryMatch(dev)).To(BeTrue())

			_, ok := r.BusNum()
			Expect(ok).To(BeFalse())
			Expect(r.Path()).To(BeEmpty())
		})

		It("should report the absence of a malformed property", func() {
			dev := gadget(udev.ActionAdd, "P-2004")
			dev.properties["BUSNUM"] = "not-a-number"
			Expect(r.TryMatch(dev)).To(BeTrue())

			_, ok := r.BusNum()
			Expect(ok).To(BeFalse())
		})
	})

	Describe("ReadAttr", func() {
		It("should return nothing while unbound", func() {
			value, err := r.ReadAttr("operstate")
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(BeNil())
		})

		It("should read the attribute fresh on every call", func() {
			syspath := GinkgoT().TempDir()
			dev := gadget(udev.ActionAdd, "P-2004")
			dev.syspath = syspath
			Expect(r.TryMatch(dev)).To(BeTrue())

			Expect(os.WriteFile(filepath.Join(syspath, "version"), []byte("1\n"), 0o644)).To(Succeed())
			value, err := r.ReadAttr("version")
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(Equal([]byte("1")))

			Expect(os.WriteFile(filepath.Join(syspath, "version"), []byte("2\n"), 0o644)).To(Succeed())
			value, err = r.ReadAttr("version")
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(Equal([]byte("2")))
		})
	})
})
