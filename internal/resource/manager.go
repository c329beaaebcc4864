package resource

import (
	"fmt"
	"time"

	"k8s.io/klog/v2"

	"github.com/benchfarm/devmatch/internal/flow"
	"github.com/benchfarm/devmatch/internal/udev"
)

const defaultPollBudget = 100 * time.Millisecond

// Manager owns a set of resources and feeds them device events. The
// events are queued as they arrive and handed out by Poll, so that
// resources are only ever touched from the goroutine calling into the
// manager.
type Manager struct {
	source    udev.Source
	queue     *flow.Queue[udev.Device]
	resources []Resource
	budget    time.Duration
	cancel    flow.CancelFunc
}

type ManagerOption func(*Manager)

// WithPollBudget bounds the time a single Poll spends handing out
// queued events.
func WithPollBudget(budget time.Duration) ManagerOption {
	return func(m *Manager) {
		m.budget = budget
	}
}

// NewManager starts collecting device events from the source.
func NewManager(source udev.Source, opts ...ManagerOption) *Manager {
	m := &Manager{
		source: source,
		queue:  flow.NewQueue[udev.Device](),
		budget: defaultPollBudget,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.cancel = source.Subscribe(m.queue)
	return m
}

// Add registers a resource and offers it the devices that are already
// present. If the scan fails the resource stays registered, a later
// event can still bind it.
func (m *Manager) Add(r Resource) error {
	m.resources = append(m.resources, r)

	devs, err := m.source.Enumerate(r.Match().Subsystem())
	if err != nil {
		klog.Errorf("%s: failed to scan for devices: %v", r.Name(), err)
		return fmt.Errorf("%s: failed to scan for devices: %w", r.Name(), err)
	}
	for _, dev := range devs {
		if r.TryMatch(dev) {
			break
		}
	}
	return nil
}

// Poll hands queued device events to the resources and then runs
// their periodic hooks. Each event goes to the resources in
// registration order until one claims it. Poll returns once the queue
// is empty or the poll budget is spent, whichever comes first.
func (m *Manager) Poll() {
	deadline := time.Now().Add(m.budget)
	for time.Now().Before(deadline) {
		dev, ok := m.queue.TryPop()
		if !ok {
			break
		}
		klog.V(5).Infof("Distributing device event (%s): %s", dev.Action(), dev.SysPath())
		claimed := false
		for _, r := range m.resources {
			if r.TryMatch(dev) {
				claimed = true
				break
			}
		}
		if !claimed {
			klog.V(5).Infof("Unmatched device: %s", dev.SysPath())
		}
	}

	for _, r := range m.resources {
		r.Poll()
	}
}

// Resources returns the registered resources in registration order.
func (m *Manager) Resources() []Resource {
	res := make([]Resource, len(m.resources))
	copy(res, m.resources)
	return res
}

// Close detaches the manager from the event source. Events that were
// already queued can still be handed out with Poll.
func (m *Manager) Close() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}
