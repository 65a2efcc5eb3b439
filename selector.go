package greenwave

// starvationBonus is the fixed score added once a lane's wait reaches the
// starvation limit. It dominates any realistic demand score, turning the
// limit into a hard guarantee rather than a soft bias.
const starvationBonus = 1000.0

// EmergencySelector picks the lane to serve when any lane reports
// emergency traffic. Ties at the maximum emergency count are broken by a
// circular scan of the registration order starting just past the lane
// last chosen for an emergency, so persistently tied lanes are served
// round-robin instead of the same lane winning every cycle.
type EmergencySelector struct {
	order []string
	last  int
}

// NewEmergencySelector creates a selector over the given registration order
func NewEmergencySelector(order []string) *EmergencySelector {
	return &EmergencySelector{
		order: order,
		last:  -1,
	}
}

// Select returns the lane with the highest emergency count, or false if
// no lane reports emergency traffic. The round-robin memory is updated on
// every selection, tie or not.
func (s *EmergencySelector) Select(demand map[string]LaneDemand) (string, bool) {
	maxCount := 0
	tied := 0
	for _, id := range s.order {
		if d := demand[id]; d.Emergency > maxCount {
			maxCount = d.Emergency
			tied = 1
		} else if d.Emergency == maxCount && maxCount > 0 {
			tied++
		}
	}
	if maxCount == 0 {
		return "", false
	}

	chosen := -1
	if tied == 1 {
		for i, id := range s.order {
			if demand[id].Emergency == maxCount {
				chosen = i
				break
			}
		}
	} else {
		start := (s.last + 1) % len(s.order)
		for i := 0; i < len(s.order); i++ {
			idx := (start + i) % len(s.order)
			if demand[s.order[idx]].Emergency == maxCount {
				chosen = idx
				break
			}
		}
	}

	s.last = chosen
	return s.order[chosen], true
}

// LastChosen returns the lane last granted green for an emergency reason,
// or false if no emergency selection has happened yet
func (s *EmergencySelector) LastChosen() (string, bool) {
	if s.last < 0 {
		return "", false
	}
	return s.order[s.last], true
}

// FairnessSelector picks the lane to serve among ordinary traffic,
// combining queue length with wait-time aging
type FairnessSelector struct {
	order           []string
	waitBoost       float64
	starvationLimit int
}

// NewFairnessSelector creates a selector over the given registration order
func NewFairnessSelector(order []string, waitBoost float64, starvationLimit int) *FairnessSelector {
	return &FairnessSelector{
		order:           order,
		waitBoost:       waitBoost,
		starvationLimit: starvationLimit,
	}
}

// Score computes the fairness score of a single lane
func (s *FairnessSelector) Score(d LaneDemand) float64 {
	score := float64(d.Normal) * (1 + float64(d.Wait)*s.waitBoost)
	if d.Wait >= s.starvationLimit {
		score += starvationBonus
	}
	return score
}

// Select returns the lane with the maximum fairness score. Ties are broken
// by registration order, so the result is deterministic regardless of map
// iteration order. With no demand at all the first registered lane wins
// on a vacuous zero-score tie.
func (s *FairnessSelector) Select(demand map[string]LaneDemand) string {
	chosen := ""
	best := 0.0
	for _, id := range s.order {
		score := s.Score(demand[id])
		if chosen == "" || score > best {
			chosen = id
			best = score
		}
	}
	return chosen
}
