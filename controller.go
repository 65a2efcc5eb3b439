// Package greenwave implements an adaptive traffic-signal decision loop:
// given per-lane vehicle and emergency-vehicle counts it decides which
// lane receives the green phase next and for how long, with emergency
// preemption, starvation-avoidance aging, and demand-proportional timing.
package greenwave

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Clock supplies the wall-clock instant used to decide whether the
// current green has expired. Injectable for tests.
type Clock func() time.Time

// Controller runs one decision cycle at a time over a fixed lane set
type Controller interface {
	Decide(readings []Reading) (*Decision, error)
	Inspect() map[string]Lane

	LaneIDs() []string
	CurrentGreen() (string, bool)
	Reset(laneIDs []string) error

	AddObserver(observer Observer)
	RemoveObserver(observer Observer)
}

// SignalController implements the Controller interface. All mutable
// state is guarded by a single mutex; concurrent Decide calls are
// serialized so that exactly one lane holds Green and wait counters
// advance exactly once per cycle.
type SignalController struct {
	id  string
	cfg Config

	order []string
	lanes map[string]*Lane

	currentGreen  string
	greenStarted  time.Time
	allottedGreen float64
	cycle         int

	emergency *EmergencySelector
	fairness  *FairnessSelector
	estimator *GreenTimeEstimator
	demand    *DemandModel

	observers *ObserverManager
	clock     Clock
	mutex     sync.Mutex
}

// NewController creates a controller for the given lane set in
// registration order. Every lane starts with zero counts, zero wait and
// a Red phase; no lane is green until the first decision.
func NewController(laneIDs []string, cfg Config) (*SignalController, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &SignalController{
		id:        uuid.New().String(),
		cfg:       cfg,
		estimator: NewGreenTimeEstimator(cfg),
		demand:    NewDemandModel(cfg.ClearanceRate),
		observers: NewObserverManager(),
		clock:     time.Now,
	}
	if err := c.register(laneIDs); err != nil {
		return nil, err
	}
	return c, nil
}

// WithClock replaces the wall-clock source
func (c *SignalController) WithClock(clock Clock) *SignalController {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.clock = clock
	return c
}

// WithDemandModel replaces the demand evolution model
func (c *SignalController) WithDemandModel(model *DemandModel) *SignalController {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.demand = model
	return c
}

// ID returns the controller instance identifier
func (c *SignalController) ID() string {
	return c.id
}

// Config returns the controller's tuning constants
func (c *SignalController) Config() Config {
	return c.cfg
}

// AddObserver adds an observer to the controller
func (c *SignalController) AddObserver(observer Observer) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.observers.AddObserver(observer)
}

// RemoveObserver removes an observer from the controller
func (c *SignalController) RemoveObserver(observer Observer) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.observers.RemoveObserver(observer)
}

// LaneIDs returns the registered lane ids in registration order
func (c *SignalController) LaneIDs() []string {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	ids := make([]string, len(c.order))
	copy(ids, c.order)
	return ids
}

// CurrentGreen returns the lane currently holding Green, or false if no
// decision has been made yet
func (c *SignalController) CurrentGreen() (string, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.currentGreen == "" {
		return "", false
	}
	return c.currentGreen, true
}

// Inspect returns a copy of the full lane state map
func (c *SignalController) Inspect() map[string]Lane {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	result := make(map[string]Lane, len(c.lanes))
	for id, lane := range c.lanes {
		result[id] = *lane
	}
	return result
}

// Reset discards all state and re-initializes the controller for a new
// lane set. History loss is intentional: fairness bookkeeping and the
// emergency round-robin memory do not survive a topology change.
func (c *SignalController) Reset(laneIDs []string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if err := c.register(laneIDs); err != nil {
		return err
	}
	c.observers.NotifyLaneSetReset(c.order)
	return nil
}

// register replaces the lane set and zeroes all decision state
func (c *SignalController) register(laneIDs []string) error {
	order := make([]string, 0, len(laneIDs))
	lanes := make(map[string]*Lane, len(laneIDs))
	for _, id := range laneIDs {
		if id == "" {
			return NewInvalidLaneError(id, "lane id must not be empty")
		}
		if _, exists := lanes[id]; exists {
			return NewInvalidLaneError(id, "lane id is registered twice")
		}
		order = append(order, id)
		lanes[id] = &Lane{ID: id, Phase: Red}
	}

	c.order = order
	c.lanes = lanes
	c.currentGreen = ""
	c.greenStarted = time.Time{}
	c.allottedGreen = c.cfg.MinGreen
	c.cycle = 0
	c.emergency = NewEmergencySelector(order)
	c.fairness = NewFairnessSelector(order, c.cfg.WaitBoost, c.cfg.StarvationLimit)
	return nil
}

// Decide runs one decision cycle. Counts supplied in readings are
// authoritative for their lanes this cycle; lanes absent from readings
// keep the counts evolved by the demand model, so a standalone
// simulation keeps running when no feed is attached. The cycle never
// blocks and always completes once entered.
func (c *SignalController) Decide(readings []Reading) (*Decision, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.clock()
	decision := &Decision{
		ControllerID: c.id,
		Timestamp:    now,
		Lanes:        make(map[string]LaneStatus, len(c.order)),
	}
	if len(c.order) == 0 {
		return decision, nil
	}

	demand, err := c.merge(readings)
	if err != nil {
		c.observers.NotifyError(err)
		return nil, err
	}

	c.cycle++

	chosen, isEmergency := c.emergency.Select(demand)
	held := false
	if isEmergency {
		c.observers.NotifyEmergencyPreemption(chosen, demand[chosen].Emergency)
	} else {
		if c.currentGreen != "" {
			elapsed := now.Sub(c.greenStarted).Seconds()
			if elapsed < c.allottedGreen {
				chosen = c.currentGreen
				held = true
				c.observers.NotifyGreenHeld(chosen, c.allottedGreen-elapsed)
			}
		}
		if !held {
			chosen = c.fairness.Select(demand)
			if demand[chosen].Wait >= c.cfg.StarvationLimit {
				c.observers.NotifyStarvationOverride(chosen, demand[chosen].Wait)
			}
		}
	}

	for _, id := range c.order {
		if id == chosen {
			c.lanes[id].Wait = 0
		} else {
			c.lanes[id].Wait++
		}
	}

	// The estimate uses the pre-reset wait counter from the snapshot.
	c.allottedGreen = c.estimator.Estimate(demand[chosen])

	c.transition(chosen, now)

	cleared := c.demand.Evolve(demand, c.order, chosen, c.allottedGreen)
	for _, id := range c.order {
		c.lanes[id].Normal = demand[id].Normal
		c.lanes[id].Emergency = demand[id].Emergency
	}

	decision.Cycle = c.cycle
	decision.Chosen = chosen
	decision.GreenTime = c.allottedGreen
	decision.Emergency = isEmergency
	decision.Held = held
	decision.Cleared = cleared
	for _, id := range c.order {
		lane := c.lanes[id]
		status := LaneStatus{Phase: lane.Phase, State: lane.Phase.Vector(), Wait: lane.Wait}
		if id == chosen {
			greenTime := c.allottedGreen
			status.GreenTime = &greenTime
		}
		decision.Lanes[id] = status
	}

	c.observers.NotifyDecision(decision)
	return decision, nil
}

// merge builds the working snapshot for this cycle: stored counts and
// wait counters, overwritten by any lane present in the readings.
// Negative counts are clamped to zero.
func (c *SignalController) merge(readings []Reading) (map[string]LaneDemand, error) {
	demand := make(map[string]LaneDemand, len(c.order))
	for _, id := range c.order {
		lane := c.lanes[id]
		demand[id] = LaneDemand{Normal: lane.Normal, Emergency: lane.Emergency, Wait: lane.Wait}
	}
	for _, r := range readings {
		if _, ok := c.lanes[r.LaneID]; !ok {
			return nil, NewLaneNotFoundError(r.LaneID)
		}
		r = r.Clamped()
		d := demand[r.LaneID]
		d.Normal = r.Normal
		d.Emergency = r.Emergency
		demand[r.LaneID] = d
	}
	return demand, nil
}

// transition sets every lane Red, labels the chosen lane Yellow and
// immediately supersedes it with Green, recording the green start
// instant. The Yellow label is never observable with nonzero duration;
// YellowTime in the config is advisory only.
func (c *SignalController) transition(chosen string, now time.Time) {
	for _, id := range c.order {
		c.setPhase(c.lanes[id], Red)
	}
	c.setPhase(c.lanes[chosen], Yellow)
	c.setPhase(c.lanes[chosen], Green)
	c.currentGreen = chosen
	c.greenStarted = now
}

// setPhase updates a lane's phase label and notifies observers
func (c *SignalController) setPhase(lane *Lane, phase Phase) {
	if lane.Phase == phase {
		return
	}
	from := lane.Phase
	lane.Phase = phase
	c.observers.NotifyPhaseChange(lane.ID, from, phase)
}
