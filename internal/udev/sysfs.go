package udev

import (
	"bytes"
	"os"
	"path/filepath"
)

// ReadAttr reads a sysfs attribute straight from the filesystem,
// bypassing the cached snapshot libudev took when the device object
// was created. Attributes such as a network interface's operstate
// change while the device stays bound, so they have to be read fresh.
func ReadAttr(syspath, attribute string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(syspath, attribute))
	if err != nil {
		return nil, err
	}
	return bytes.TrimRight(data, "\n"), nil
}
