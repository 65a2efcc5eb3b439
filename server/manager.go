// Package server exposes the signal controller over HTTP: lane readings
// come in, decision reports go out. The controller instance is managed
// per lane set; a request naming a different set of lanes discards the
// running controller and starts a fresh one.
package server

import (
	"sync"

	"github.com/samber/lo"

	"github.com/anggasct/greenwave"
)

// Manager owns the controller instance behind the HTTP surface
type Manager struct {
	cfg       greenwave.Config
	observers []greenwave.Observer

	controller *greenwave.SignalController
	laneIDs    []string
	mutex      sync.Mutex
}

// NewManager creates a manager that builds controllers with the given
// configuration. No controller exists until the first update.
func NewManager(cfg greenwave.Config) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Manager{cfg: cfg}, nil
}

// WithObserver registers an observer that is attached to every
// controller instance the manager creates
func (m *Manager) WithObserver(observer greenwave.Observer) *Manager {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.observers = append(m.observers, observer)
	if m.controller != nil {
		m.controller.AddObserver(observer)
	}
	return m
}

// Apply runs one decision cycle over the given readings. When the lane
// set named by the readings differs from the running controller's set,
// all history is discarded and a fresh controller takes over. Order
// changes alone do not trigger a swap; the comparison is by set.
func (m *Manager) Apply(readings []greenwave.Reading) (*greenwave.Decision, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	incoming := lo.Map(readings, func(r greenwave.Reading, _ int) string { return r.LaneID })
	if m.controller == nil || !sameLaneSet(m.laneIDs, incoming) {
		controller, err := greenwave.NewController(incoming, m.cfg)
		if err != nil {
			return nil, err
		}
		for _, observer := range m.observers {
			controller.AddObserver(observer)
		}
		m.controller = controller
		m.laneIDs = incoming
	}

	return m.controller.Decide(readings)
}

// Inspect returns the running controller's lane state, or an empty map
// when no controller exists yet
func (m *Manager) Inspect() map[string]greenwave.Lane {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.controller == nil {
		return map[string]greenwave.Lane{}
	}
	return m.controller.Inspect()
}

// ControllerID returns the running controller's identifier, or false
// when no controller exists yet
func (m *Manager) ControllerID() (string, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.controller == nil {
		return "", false
	}
	return m.controller.ID(), true
}

// sameLaneSet compares two lane-id lists ignoring order and duplicates
func sameLaneSet(a, b []string) bool {
	left, right := lo.Uniq(a), lo.Uniq(b)
	if len(left) != len(right) {
		return false
	}
	return len(lo.Intersect(left, right)) == len(left)
}
