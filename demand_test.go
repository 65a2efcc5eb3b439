package greenwave

import (
	"math/rand"
	"testing"
)

func TestDemandModel_ClearsChosenLane(t *testing.T) {
	m := NewQuietDemandModel(2.5)
	demand := map[string]LaneDemand{
		"A": {Normal: 10},
		"B": {Normal: 4},
	}

	cleared := m.Evolve(demand, []string{"A", "B"}, "A", 4.0)

	if cleared != 10 {
		t.Errorf("Expected 10 vehicles cleared, got %d", cleared)
	}
	if demand["A"].Normal != 0 {
		t.Errorf("Expected chosen lane emptied, got %d", demand["A"].Normal)
	}
}

func TestDemandModel_ClearanceBoundedByGreenTime(t *testing.T) {
	m := NewQuietDemandModel(2.0)
	demand := map[string]LaneDemand{"A": {Normal: 50}}

	// floor(2.0 * 3.0) = 6 vehicles in three seconds of green.
	cleared := m.Evolve(demand, []string{"A"}, "A", 3.0)

	if cleared != 6 {
		t.Errorf("Expected 6 vehicles cleared, got %d", cleared)
	}
	if demand["A"].Normal != 44 {
		t.Errorf("Expected 44 vehicles left, got %d", demand["A"].Normal)
	}
}

func TestDemandModel_ArrivalsAreBounded(t *testing.T) {
	m := NewSeededDemandModel(2.5, rand.NewSource(42))
	order := []string{"A", "B", "C", "D"}

	for cycle := 0; cycle < 50; cycle++ {
		demand := map[string]LaneDemand{"A": {}, "B": {}, "C": {}, "D": {}}
		m.Evolve(demand, order, "A", 3.0)

		for _, id := range order[1:] {
			if n := demand[id].Normal; n < 0 || n > maxArrivalsPerCycle {
				t.Fatalf("Expected arrivals in [0, %d], lane %s got %d", maxArrivalsPerCycle, id, n)
			}
		}
		if demand["A"].Normal != 0 {
			t.Fatalf("Expected no arrivals on the chosen lane, got %d", demand["A"].Normal)
		}
	}
}

func TestDemandModel_SeededRunsAreReproducible(t *testing.T) {
	run := func() []int {
		m := NewSeededDemandModel(2.5, rand.NewSource(7))
		counts := make([]int, 0, 10)
		for cycle := 0; cycle < 10; cycle++ {
			demand := map[string]LaneDemand{"A": {}, "B": {}}
			m.Evolve(demand, []string{"A", "B"}, "A", 3.0)
			counts = append(counts, demand["B"].Normal)
		}
		return counts
	}

	first, second := run(), run()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("Expected identical seeded runs, cycle %d differs: %d vs %d", i, first[i], second[i])
		}
	}
}
