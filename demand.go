package greenwave

import (
	"math/rand"
	"time"
)

// maxArrivalsPerCycle bounds the random arrivals added to a non-served
// lane in one cycle (uniform 0..3 inclusive)
const maxArrivalsPerCycle = 3

// DemandModel is a synthetic arrival/departure model used to age lane
// queues between externally supplied readings. It keeps a standalone
// simulation runnable without a live feed; when a feed supplies
// authoritative counts every cycle its output is superseded by the next
// cycle's input. Randomness comes from an injectable source so tests can
// assert exact post-cycle counts.
type DemandModel struct {
	clearanceRate float64
	rng           *rand.Rand
}

// NewDemandModel creates a demand model with its own time-seeded source
func NewDemandModel(clearanceRate float64) *DemandModel {
	return NewSeededDemandModel(clearanceRate, rand.NewSource(time.Now().UnixNano()))
}

// NewSeededDemandModel creates a demand model with an explicit random source
func NewSeededDemandModel(clearanceRate float64, src rand.Source) *DemandModel {
	return &DemandModel{
		clearanceRate: clearanceRate,
		rng:           rand.New(src),
	}
}

// Evolve mutates the working demand snapshot after a phase transition:
// the chosen lane loses the vehicles cleared during its granted green,
// every other lane gains a bounded random number of new arrivals.
// Returns the number of vehicles cleared from the chosen lane.
func (m *DemandModel) Evolve(demand map[string]LaneDemand, order []string, chosen string, greenTime float64) int {
	d := demand[chosen]
	cleared := int(m.clearanceRate * greenTime)
	if cleared > d.Normal {
		cleared = d.Normal
	}
	d.Normal -= cleared
	demand[chosen] = d

	for _, id := range order {
		if id == chosen {
			continue
		}
		d := demand[id]
		d.Normal += m.rng.Intn(maxArrivalsPerCycle + 1)
		demand[id] = d
	}
	return cleared
}
