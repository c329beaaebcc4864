package udev

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	libudev "github.com/jochenvg/go-udev"

	"k8s.io/klog/v2"

	"github.com/benchfarm/devmatch/internal/flow"
)

// Source produces device observations, both on demand and as the
// kernel announces them.
type Source interface {
	flow.Source[Device]

	// Enumerate returns the devices currently present, narrowed to a
	// subsystem unless it is empty.
	Enumerate(subsystem string) ([]Device, error)

	Close()
}

type udevSource struct {
	udev   libudev.Udev
	fanout *flow.Fanout[Device]
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSource connects to the udev monitor and starts fanning out its
// events. Subscribers see events in arrival order.
func NewSource() (Source, error) {
	s := &udevSource{
		fanout: flow.NewFanout[Device](),
	}

	ctx, cancel := context.WithCancel(context.Background())
	mon := s.udev.NewMonitorFromNetlink("udev")
	devChan, errChan, err := mon.DeviceChan(ctx)
	if err != nil {
		cancel()
		klog.Errorf("Failed to connect to udev monitor: %v", err)
		return nil, fmt.Errorf("failed to connect to udev monitor: %w", err)
	}
	s.cancel = cancel

	s.wg.Add(1)
	go s.monitor(ctx, devChan, errChan)

	return s, nil
}

func (s *udevSource) monitor(ctx context.Context, devChan <-chan *libudev.Device, errChan <-chan error) {
	defer s.wg.Done()
	defer s.fanout.Close()

	for {
		select {
		case dev, ok := <-devChan:
			if !ok {
				if devChan, errChan = s.reconnect(ctx); devChan == nil {
					return
				}
				continue
			}
			if dev == nil {
				klog.Error("udev device is nil!")
				continue
			}
			klog.V(5).Infof("Received device event (%s): %s", dev.Action(), dev.Syspath())
			if err := s.fanout.Submit(s.wrap(dev)); err != nil {
				klog.Errorf("Failed to submit device event: %v", err)
			}
		case err := <-errChan:
			klog.Errorf("Error from udev monitor, will try to reconnect: %v", err)
			if devChan, errChan = s.reconnect(ctx); devChan == nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// reconnect reopens the monitor, retrying until it succeeds or the
// context ends. Events raised while disconnected are lost; the
// resource layer re-discovers state through its poll hooks.
func (s *udevSource) reconnect(ctx context.Context) (<-chan *libudev.Device, <-chan error) {
	for {
		if ctx.Err() != nil {
			return nil, nil
		}
		mon := s.udev.NewMonitorFromNetlink("udev")
		devChan, errChan, err := mon.DeviceChan(ctx)
		if err != nil {
			klog.Errorf("Failed to create device channel, retrying: %v", err)
			time.Sleep(1 * time.Second)
			continue
		}
		klog.Infof("Successfully reconnected to udev")
		return devChan, errChan
	}
}

func (s *udevSource) Enumerate(subsystem string) ([]Device, error) {
	enum := s.udev.NewEnumerate()
	if subsystem != "" {
		if err := enum.AddMatchSubsystem(subsystem); err != nil {
			klog.Errorf("Failed to narrow enumeration to subsystem %q: %v", subsystem, err)
			return nil, fmt.Errorf("failed to narrow enumeration to subsystem %q: %w", subsystem, err)
		}
	}

	devs, err := enum.Devices()
	if err != nil {
		klog.Errorf("Failed to enumerate devices: %v", err)
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	res := make([]Device, 0, len(devs))
	for _, dev := range devs {
		if dev == nil {
			klog.Error("udev device is nil!")
			continue
		}
		res = append(res, s.wrap(dev))
	}
	return res, nil
}

func (s *udevSource) Subscribe(sink flow.Sink[Device]) flow.CancelFunc {
	return s.fanout.Subscribe(sink)
}

func (s *udevSource) Close() {
	s.cancel()
	s.wg.Wait()
}

func (s *udevSource) wrap(dev *libudev.Device) Device {
	return &sysDevice{udev: &s.udev, dev: dev}
}

// sysDevice adapts a libudev device handle to the Device view.
type sysDevice struct {
	udev *libudev.Udev
	dev  *libudev.Device
}

func (d *sysDevice) SysPath() string   { return d.dev.Syspath() }
func (d *sysDevice) SysName() string   { return d.dev.Sysname() }
func (d *sysDevice) DevPath() string   { return d.dev.Devpath() }
func (d *sysDevice) Subsystem() string { return d.dev.Subsystem() }
func (d *sysDevice) DevType() string   { return d.dev.Devtype() }
func (d *sysDevice) DevNode() string   { return d.dev.Devnode() }
func (d *sysDevice) Driver() string    { return d.dev.Driver() }
func (d *sysDevice) Action() Action    { return Action(d.dev.Action()) }

func (d *sysDevice) Properties() map[string]string {
	return d.dev.Properties()
}

func (d *sysDevice) Property(key string) string {
	return strings.TrimSpace(d.dev.PropertyValue(key))
}

func (d *sysDevice) Attribute(key string) (string, bool) {
	if _, found := d.dev.Sysattrs()[key]; !found {
		return "", false
	}
	return strings.TrimSpace(d.dev.SysattrValue(key)), true
}

func (d *sysDevice) Ancestors() []Device {
	var res []Device
	for parent := d.dev.Parent(); parent != nil; parent = parent.Parent() {
		res = append(res, &sysDevice{udev: d.udev, dev: parent})
	}
	return res
}

func (d *sysDevice) Children() ([]Device, error) {
	enum := d.udev.NewEnumerate()
	if err := enum.AddMatchParent(d.dev); err != nil {
		return nil, fmt.Errorf("failed to narrow enumeration to children of %q: %w", d.dev.Syspath(), err)
	}

	devs, err := enum.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate children of %q: %w", d.dev.Syspath(), err)
	}

	res := make([]Device, 0, len(devs))
	for _, child := range devs {
		// the parent match includes the device itself
		if child == nil || child.Syspath() == d.dev.Syspath() {
			continue
		}
		res = append(res, &sysDevice{udev: d.udev, dev: child})
	}
	return res, nil
}
