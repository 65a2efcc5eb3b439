package greenwave

// Lane holds the controller's view of one intersection approach
type Lane struct {
	// Stable identifier, unique within a controller instance
	ID string `json:"lane_id"`
	// Number of ordinary vehicles queued on the lane
	Normal int `json:"normal"`
	// Number of emergency vehicles reported on the lane
	Emergency int `json:"emergency"`
	// Consecutive decision cycles since the lane last held Green
	Wait int `json:"wait"`
	// Current signal phase
	Phase Phase `json:"phase"`
}

// Reading is one per-lane input sample for a decision cycle
type Reading struct {
	LaneID    string `json:"lane_id"`
	Normal    int    `json:"normal"`
	Emergency int    `json:"emergency"`
}

// Clamped returns a copy of the reading with negative counts raised to zero
func (r Reading) Clamped() Reading {
	if r.Normal < 0 {
		r.Normal = 0
	}
	if r.Emergency < 0 {
		r.Emergency = 0
	}
	return r
}

// LaneDemand is the per-cycle working view of a lane that the selectors
// and the green-time estimator operate on
type LaneDemand struct {
	Normal    int
	Emergency int
	Wait      int
}
