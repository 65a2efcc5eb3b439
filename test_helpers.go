package greenwave

import (
	"sync"
	"testing"
	"time"
)

// TestObserver is a mock observer for testing that captures all observer events
type TestObserver struct {
	mutex        sync.RWMutex
	Decisions    []*Decision
	PhaseChanges []PhaseChangeEvent
	Preemptions  []PreemptionEvent
	Holds        []HoldEvent
	Starvations  []StarvationEvent
	Resets       [][]string
	Errors       []error
}

type PhaseChangeEvent struct {
	LaneID string
	From   Phase
	To     Phase
}

type PreemptionEvent struct {
	LaneID string
	Count  int
}

type HoldEvent struct {
	LaneID    string
	Remaining float64
}

type StarvationEvent struct {
	LaneID string
	Wait   int
}

// NewTestObserver creates a new test observer
func NewTestObserver() *TestObserver {
	return &TestObserver{
		Decisions:    make([]*Decision, 0),
		PhaseChanges: make([]PhaseChangeEvent, 0),
		Preemptions:  make([]PreemptionEvent, 0),
		Holds:        make([]HoldEvent, 0),
		Starvations:  make([]StarvationEvent, 0),
		Resets:       make([][]string, 0),
		Errors:       make([]error, 0),
	}
}

// Observer interface implementations
func (o *TestObserver) OnDecision(decision *Decision) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Decisions = append(o.Decisions, decision)
}

func (o *TestObserver) OnPhaseChange(laneID string, from Phase, to Phase) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.PhaseChanges = append(o.PhaseChanges, PhaseChangeEvent{LaneID: laneID, From: from, To: to})
}

// ExtendedObserver interface implementations
func (o *TestObserver) OnEmergencyPreemption(laneID string, count int) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Preemptions = append(o.Preemptions, PreemptionEvent{LaneID: laneID, Count: count})
}

func (o *TestObserver) OnGreenHeld(laneID string, remaining float64) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Holds = append(o.Holds, HoldEvent{LaneID: laneID, Remaining: remaining})
}

func (o *TestObserver) OnStarvationOverride(laneID string, wait int) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Starvations = append(o.Starvations, StarvationEvent{LaneID: laneID, Wait: wait})
}

func (o *TestObserver) OnLaneSetReset(laneIDs []string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Resets = append(o.Resets, laneIDs)
}

func (o *TestObserver) OnError(err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Errors = append(o.Errors, err)
}

// Helper methods for test assertions
func (o *TestObserver) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Decisions = nil
	o.PhaseChanges = nil
	o.Preemptions = nil
	o.Holds = nil
	o.Starvations = nil
	o.Resets = nil
	o.Errors = nil
}

func (o *TestObserver) DecisionCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.Decisions)
}

func (o *TestObserver) LastDecision() *Decision {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	if len(o.Decisions) == 0 {
		return nil
	}
	return o.Decisions[len(o.Decisions)-1]
}

func (o *TestObserver) PreemptionCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.Preemptions)
}

// TestClock is a controllable wall clock for testing green expiry
type TestClock struct {
	mutex sync.Mutex
	now   time.Time
}

// NewTestClock creates a clock fixed at the given instant
func NewTestClock(now time.Time) *TestClock {
	return &TestClock{now: now}
}

// Now returns the clock's current instant
func (c *TestClock) Now() time.Time {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.now
}

// Advance moves the clock forward
func (c *TestClock) Advance(d time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.now = c.now.Add(d)
}

// zeroSource is a rand.Source that always yields zero, so the demand
// model adds no random arrivals and post-cycle counts are exact
type zeroSource struct{}

func (zeroSource) Int63() int64 { return 0 }
func (zeroSource) Seed(int64)   {}

// NewQuietDemandModel creates a demand model whose random arrivals are
// always zero
func NewQuietDemandModel(clearanceRate float64) *DemandModel {
	return NewSeededDemandModel(clearanceRate, zeroSource{})
}

// CreateTestController creates a four-lane controller with the original
// simulation tuning, a fixed clock, and no random arrivals
func CreateTestController(t *testing.T) (*SignalController, *TestClock) {
	t.Helper()
	cfg := DefaultConfig().
		WithMinGreen(3.0).
		WithMaxGreen(12.0).
		WithClearanceRate(2.5)

	controller, err := NewController([]string{"Lane_1", "Lane_2", "Lane_3", "Lane_4"}, cfg)
	if err != nil {
		t.Fatalf("Expected no error creating controller, got: %v", err)
	}

	clock := NewTestClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	controller.WithClock(clock.Now).WithDemandModel(NewQuietDemandModel(cfg.ClearanceRate))
	return controller, clock
}

// Readings builds a reading slice from parallel id and count lists
func Readings(ids []string, normal []int, emergency []int) []Reading {
	readings := make([]Reading, len(ids))
	for i, id := range ids {
		readings[i] = Reading{LaneID: id, Normal: normal[i], Emergency: emergency[i]}
	}
	return readings
}

// AssertGreen checks that exactly the expected lane holds Green and all
// other lanes are Red in the decision report
func AssertGreen(t *testing.T, decision *Decision, expected string) {
	t.Helper()
	if decision.Chosen != expected {
		t.Errorf("Expected chosen lane %s, got %s", expected, decision.Chosen)
	}
	for id, status := range decision.Lanes {
		if id == expected {
			if status.Phase != Green {
				t.Errorf("Expected lane %s to be green, got %s", id, status.Phase)
			}
		} else if status.Phase != Red {
			t.Errorf("Expected lane %s to be red, got %s", id, status.Phase)
		}
	}
}

// AssertGreenTime checks the allotted green duration of a decision
func AssertGreenTime(t *testing.T, decision *Decision, expected float64) {
	t.Helper()
	if decision.GreenTime != expected {
		t.Errorf("Expected green time %.2f, got %.2f", expected, decision.GreenTime)
	}
}

// AssertWait checks a lane's wait counter in the decision report
func AssertWait(t *testing.T, decision *Decision, laneID string, expected int) {
	t.Helper()
	status, ok := decision.Lanes[laneID]
	if !ok {
		t.Fatalf("Expected lane %s in report", laneID)
	}
	if status.Wait != expected {
		t.Errorf("Expected lane %s wait %d, got %d", laneID, expected, status.Wait)
	}
}
