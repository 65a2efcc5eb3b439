package greenwave

import "time"

// LaneStatus is the per-lane entry of a decision report
type LaneStatus struct {
	// Phase as a name and as the one-hot [red, yellow, green] vector
	Phase Phase  `json:"phase"`
	State [3]int `json:"state"`
	// Wait counter after this cycle's update
	Wait int `json:"wait"`
	// Allotted green duration in seconds, present only on the chosen lane
	GreenTime *float64 `json:"green_time,omitempty"`
}

// Decision is the report emitted by one decision cycle
type Decision struct {
	// Identifier of the controller instance that produced the report
	ControllerID string `json:"controller_id"`
	// Monotonic cycle counter of the controller instance
	Cycle int `json:"cycle"`
	// Lane granted green this cycle; empty only for an empty lane set
	Chosen string `json:"chosen"`
	// Allotted green duration for the chosen lane, in seconds
	GreenTime float64 `json:"green_time"`
	// True when the lane was chosen by emergency preemption
	Emergency bool `json:"emergency"`
	// True when the current green lane was retained because its allotted
	// time had not elapsed
	Held bool `json:"held"`
	// Vehicles removed from the chosen lane by the demand model
	Cleared int `json:"cleared"`
	// Wall-clock instant of the decision
	Timestamp time.Time `json:"timestamp"`
	// Per-lane phase and wait report
	Lanes map[string]LaneStatus `json:"lanes"`
}

// Status returns the report entry for one lane
func (d *Decision) Status(laneID string) (LaneStatus, bool) {
	s, ok := d.Lanes[laneID]
	return s, ok
}

// GreenLane returns the lane holding Green in this report, or false for
// an empty report
func (d *Decision) GreenLane() (string, bool) {
	for id, s := range d.Lanes {
		if s.Phase == Green {
			return id, true
		}
	}
	return "", false
}
