package resource

import (
	"fmt"
)

// Config describes one resource in the agent configuration.
type Config struct {
	Name  string            `yaml:"name"`
	Type  string            `yaml:"type"`
	Match map[string]string `yaml:"match,omitempty"`

	// Index is required by the resource types that address one port
	// or output on a multi-port device.
	Index *int `yaml:"index,omitempty"`

	// Driver and Channels are required by sigrok devices.
	Driver   string `yaml:"driver,omitempty"`
	Channels string `yaml:"channels,omitempty"`

	// VendorID and ProductID override the USB ids of resource types
	// that carry defaults.
	VendorID  string `yaml:"vendorId,omitempty"`
	ProductID string `yaml:"productId,omitempty"`
}

// New builds the resource a configuration entry describes.
func New(cfg Config) (Resource, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("resource name must be set")
	}

	match := Spec(cfg.Match)
	switch cfg.Type {
	case "usb-serial-port":
		return NewUSBSerialPort(cfg.Name, match), nil
	case "usb-mass-storage":
		return NewUSBMassStorage(cfg.Name, match), nil
	case "imx-usb-loader":
		return NewIMXUSBLoader(cfg.Name, match), nil
	case "rk-usb-loader":
		return NewRKUSBLoader(cfg.Name, match), nil
	case "mxs-usb-loader":
		return NewMXSUSBLoader(cfg.Name, match), nil
	case "android-fastboot":
		return NewAndroidFastboot(cfg.Name, match, cfg.VendorID, cfg.ProductID), nil
	case "usb-ethernet-interface":
		return NewUSBEthernetInterface(cfg.Name, match), nil
	case "altera-usb-blaster":
		return NewAlteraUSBBlaster(cfg.Name, match), nil
	case "sigrok-usb-device":
		if cfg.Driver == "" {
			return nil, fmt.Errorf("%s: %s requires a driver", cfg.Name, cfg.Type)
		}
		if cfg.Channels == "" {
			return nil, fmt.Errorf("%s: %s requires a channel mapping", cfg.Name, cfg.Type)
		}
		return NewSigrokUSBDevice(cfg.Name, match, cfg.Driver, cfg.Channels), nil
	case "usb-sd-mux":
		return NewUSBSDMuxDevice(cfg.Name, match), nil
	case "usb-power-port":
		index, err := requiredIndex(cfg)
		if err != nil {
			return nil, err
		}
		return NewUSBPowerPort(cfg.Name, match, index), nil
	case "usb-video":
		return NewUSBVideo(cfg.Name, match), nil
	case "usb-tmc":
		return NewUSBTMC(cfg.Name, match), nil
	case "deditec-relais8":
		index, err := requiredIndex(cfg)
		if err != nil {
			return nil, err
		}
		return NewDeditecRelais8(cfg.Name, match, index), nil
	case "":
		return nil, fmt.Errorf("%s: resource type must be set", cfg.Name)
	default:
		return nil, fmt.Errorf("%s: unknown resource type %q", cfg.Name, cfg.Type)
	}
}

func requiredIndex(cfg Config) (int, error) {
	if cfg.Index == nil {
		return 0, fmt.Errorf("%s: %s requires an index", cfg.Name, cfg.Type)
	}
	if *cfg.Index < 0 {
		return 0, fmt.Errorf("%s: index must not be negative", cfg.Name)
	}
	return *cfg.Index, nil
}
