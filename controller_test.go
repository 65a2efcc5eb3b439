package greenwave

import (
	"testing"
	"time"
)

var testLanes = []string{"Lane_1", "Lane_2", "Lane_3", "Lane_4"}

func zeroReadings() []Reading {
	return Readings(testLanes, []int{0, 0, 0, 0}, []int{0, 0, 0, 0})
}

func TestController_FreshAllQuiet(t *testing.T) {
	controller, _ := CreateTestController(t)

	decision, err := controller.Decide(zeroReadings())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	// First registered lane wins the vacuous zero-score tie.
	AssertGreen(t, decision, "Lane_1")
	AssertGreenTime(t, decision, 3.0)
	AssertWait(t, decision, "Lane_1", 0)
	AssertWait(t, decision, "Lane_2", 1)
	AssertWait(t, decision, "Lane_3", 1)
	AssertWait(t, decision, "Lane_4", 1)
}

func TestController_DemandBeatsZeroScoreTie(t *testing.T) {
	controller, _ := CreateTestController(t)

	decision, err := controller.Decide(Readings(testLanes, []int{0, 2, 0, 0}, []int{0, 0, 0, 0}))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	AssertGreen(t, decision, "Lane_2")
	// max(3, 2/2.5 + 0 + 0) = 3.0
	AssertGreenTime(t, decision, 3.0)
}

func TestController_EmergencyPreemptsNormalTraffic(t *testing.T) {
	controller, _ := CreateTestController(t)
	observer := NewTestObserver()
	controller.AddObserver(observer)

	decision, err := controller.Decide(Readings(testLanes, []int{0, 100, 0, 0}, []int{0, 0, 1, 0}))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	AssertGreen(t, decision, "Lane_3")
	if !decision.Emergency {
		t.Error("Expected decision to be marked as emergency")
	}
	if observer.PreemptionCount() != 1 {
		t.Errorf("Expected 1 preemption notification, got %d", observer.PreemptionCount())
	}
}

func TestController_EmergencyTieRoundRobin(t *testing.T) {
	controller, clock := CreateTestController(t)
	tied := Readings(testLanes, []int{0, 0, 0, 0}, []int{2, 2, 0, 0})

	decision, _ := controller.Decide(tied)
	AssertGreen(t, decision, "Lane_1")

	clock.Advance(time.Second)
	decision, _ = controller.Decide(tied)
	AssertGreen(t, decision, "Lane_2")
}

func TestController_EmergencyOverridesHeldGreen(t *testing.T) {
	controller, clock := CreateTestController(t)

	decision, _ := controller.Decide(Readings(testLanes, []int{0, 5, 0, 0}, []int{0, 0, 0, 0}))
	AssertGreen(t, decision, "Lane_2")

	clock.Advance(time.Second)
	decision, _ = controller.Decide(Readings(testLanes, []int{0, 5, 0, 0}, []int{0, 0, 0, 1}))
	AssertGreen(t, decision, "Lane_4")
	if decision.Held {
		t.Error("Expected emergency decision not to be a hold")
	}
}

func TestController_GreenHeldUntilExpiry(t *testing.T) {
	controller, clock := CreateTestController(t)
	observer := NewTestObserver()
	controller.AddObserver(observer)

	decision, _ := controller.Decide(Readings(testLanes, []int{0, 5, 0, 0}, []int{0, 0, 0, 0}))
	AssertGreen(t, decision, "Lane_2")
	AssertGreenTime(t, decision, 3.0)

	// One second into a three second green the lane is retained even
	// against much heavier demand elsewhere.
	clock.Advance(time.Second)
	decision, _ = controller.Decide(Readings(testLanes, []int{0, 0, 50, 0}, []int{0, 0, 0, 0}))
	AssertGreen(t, decision, "Lane_2")
	if !decision.Held {
		t.Error("Expected the green lane to be held")
	}
	if len(observer.Holds) != 1 {
		t.Fatalf("Expected 1 hold notification, got %d", len(observer.Holds))
	}

	// Once the allotted time has elapsed the heavier lane takes over.
	clock.Advance(20 * time.Second)
	decision, _ = controller.Decide(Readings(testLanes, []int{0, 0, 50, 0}, []int{0, 0, 0, 0}))
	AssertGreen(t, decision, "Lane_3")
	if decision.Held {
		t.Error("Expected a fresh selection after expiry")
	}
}

func TestController_IdleGapCountsAsElapsedGreen(t *testing.T) {
	controller, clock := CreateTestController(t)

	decision, _ := controller.Decide(Readings(testLanes, []int{0, 5, 0, 0}, []int{0, 0, 0, 0}))
	AssertGreen(t, decision, "Lane_2")

	// A long idle gap between invocations is counted against the green
	// allotment; the next call re-selects immediately.
	clock.Advance(time.Hour)
	decision, _ = controller.Decide(Readings(testLanes, []int{0, 0, 1, 0}, []int{0, 0, 0, 0}))
	AssertGreen(t, decision, "Lane_3")
}

func TestController_StarvationGuarantee(t *testing.T) {
	controller, clock := CreateTestController(t)
	observer := NewTestObserver()
	controller.AddObserver(observer)
	busy := Readings(testLanes, []int{5, 0, 0, 0}, []int{0, 0, 0, 0})

	// Lane_1 wins eight cycles in a row while the empty lanes age.
	for cycle := 0; cycle < 8; cycle++ {
		decision, _ := controller.Decide(busy)
		AssertGreen(t, decision, "Lane_1")
		clock.Advance(20 * time.Second)
	}

	// At wait 8 the starvation bonus outranks any queue, and the tie
	// among the three starved lanes falls to registration order.
	decision, _ := controller.Decide(busy)
	AssertGreen(t, decision, "Lane_2")
	// 0/2.5 + 8*0.4 + 0 = 3.2
	AssertGreenTime(t, decision, 3.2)
	if len(observer.Starvations) != 1 {
		t.Fatalf("Expected 1 starvation notification, got %d", len(observer.Starvations))
	}
	if observer.Starvations[0].Wait != 8 {
		t.Errorf("Expected starvation at wait 8, got %d", observer.Starvations[0].Wait)
	}
}

func TestController_WaitCountersAdvanceExactlyOncePerCycle(t *testing.T) {
	controller, clock := CreateTestController(t)
	previous := map[string]int{}

	for cycle := 0; cycle < 12; cycle++ {
		decision, err := controller.Decide(zeroReadings())
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}

		for id, status := range decision.Lanes {
			if id == decision.Chosen {
				if status.Wait != 0 {
					t.Fatalf("cycle %d: expected chosen lane %s wait 0, got %d", cycle, id, status.Wait)
				}
			} else if cycle > 0 && status.Wait != previous[id]+1 {
				t.Fatalf("cycle %d: expected lane %s wait %d, got %d", cycle, id, previous[id]+1, status.Wait)
			}
			previous[id] = status.Wait
		}
		clock.Advance(20 * time.Second)
	}
}

func TestController_ExactlyOneGreenEveryCycle(t *testing.T) {
	controller, clock := CreateTestController(t)

	inputs := [][]int{
		{4, 0, 2, 0},
		{0, 0, 0, 0},
		{1, 9, 3, 2},
		{0, 0, 0, 7},
		{2, 2, 2, 2},
	}
	for cycle, normals := range inputs {
		decision, err := controller.Decide(Readings(testLanes, normals, []int{0, 0, 0, 0}))
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}

		greens := 0
		for _, status := range decision.Lanes {
			switch status.Phase {
			case Green:
				greens++
			case Red:
			default:
				t.Fatalf("cycle %d: observed persistent phase %s", cycle, status.Phase)
			}
		}
		if greens != 1 {
			t.Fatalf("cycle %d: expected exactly 1 green lane, got %d", cycle, greens)
		}
		clock.Advance(20 * time.Second)
	}
}

func TestController_GreenTimeOnlyOnChosenLane(t *testing.T) {
	controller, _ := CreateTestController(t)

	decision, _ := controller.Decide(Readings(testLanes, []int{0, 0, 6, 0}, []int{0, 0, 0, 0}))

	for id, status := range decision.Lanes {
		if id == decision.Chosen {
			if status.GreenTime == nil {
				t.Errorf("Expected green time on chosen lane %s", id)
			} else if *status.GreenTime != decision.GreenTime {
				t.Errorf("Expected matching green time, got %.2f vs %.2f", *status.GreenTime, decision.GreenTime)
			}
		} else if status.GreenTime != nil {
			t.Errorf("Expected no green time on lane %s", id)
		}
	}
}

func TestController_DemandModelClearsServedQueue(t *testing.T) {
	controller, _ := CreateTestController(t)

	decision, _ := controller.Decide(Readings(testLanes, []int{10, 0, 0, 0}, []int{0, 0, 0, 0}))
	AssertGreen(t, decision, "Lane_1")
	// 10/2.5 = 4.0 seconds, clearing floor(2.5*4.0) = 10 vehicles.
	AssertGreenTime(t, decision, 4.0)
	if decision.Cleared != 10 {
		t.Errorf("Expected 10 vehicles cleared, got %d", decision.Cleared)
	}

	lanes := controller.Inspect()
	if lanes["Lane_1"].Normal != 0 {
		t.Errorf("Expected served queue emptied, got %d", lanes["Lane_1"].Normal)
	}
}

func TestController_AbsentLanesKeepEvolvedCounts(t *testing.T) {
	controller, clock := CreateTestController(t)

	// Only Lane_2 is reported; the rest stay on their stored counts.
	decision, err := controller.Decide([]Reading{{LaneID: "Lane_2", Normal: 4}})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	AssertGreen(t, decision, "Lane_2")

	// With no readings at all the controller keeps cycling on its own
	// simulated state.
	clock.Advance(20 * time.Second)
	decision, err = controller.Decide(nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if decision.Chosen == "" {
		t.Error("Expected a lane to be chosen without readings")
	}
}

func TestController_NegativeCountsClampedToZero(t *testing.T) {
	controller, _ := CreateTestController(t)

	decision, err := controller.Decide(Readings(testLanes, []int{-5, 0, 0, 0}, []int{-2, 0, 0, 0}))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	AssertGreen(t, decision, "Lane_1")
	AssertGreenTime(t, decision, 3.0)
	lanes := controller.Inspect()
	if lanes["Lane_1"].Normal != 0 || lanes["Lane_1"].Emergency != 0 {
		t.Errorf("Expected clamped counts, got normal=%d emergency=%d",
			lanes["Lane_1"].Normal, lanes["Lane_1"].Emergency)
	}
}

func TestController_UnknownLaneRejected(t *testing.T) {
	controller, _ := CreateTestController(t)
	observer := NewTestObserver()
	controller.AddObserver(observer)

	_, err := controller.Decide([]Reading{{LaneID: "Lane_9", Normal: 1}})

	if err == nil {
		t.Fatal("Expected an error for an unregistered lane")
	}
	if !IsLaneError(err) {
		t.Errorf("Expected a LaneError, got %T", err)
	}
	if GetErrorCode(err) != ErrCodeLaneNotFound {
		t.Errorf("Expected ErrCodeLaneNotFound, got %v", GetErrorCode(err))
	}
	if len(observer.Errors) != 1 {
		t.Errorf("Expected 1 error notification, got %d", len(observer.Errors))
	}
}

func TestController_EmptyLaneSet(t *testing.T) {
	controller, err := NewController(nil, DefaultConfig())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	decision, err := controller.Decide(nil)
	if err != nil {
		t.Fatalf("Expected no error for an empty lane set, got: %v", err)
	}
	if decision.Chosen != "" || len(decision.Lanes) != 0 {
		t.Errorf("Expected an empty report, got chosen=%q lanes=%d", decision.Chosen, len(decision.Lanes))
	}
}

func TestController_InvalidLaneSet(t *testing.T) {
	if _, err := NewController([]string{"A", "A"}, DefaultConfig()); err == nil {
		t.Error("Expected an error for a duplicate lane id")
	}
	if _, err := NewController([]string{""}, DefaultConfig()); err == nil {
		t.Error("Expected an error for an empty lane id")
	}
}

func TestController_ResetDiscardsAllState(t *testing.T) {
	controller, clock := CreateTestController(t)
	observer := NewTestObserver()
	controller.AddObserver(observer)

	decision, _ := controller.Decide(Readings(testLanes, []int{3, 0, 0, 0}, []int{0, 0, 0, 0}))
	AssertGreen(t, decision, "Lane_1")
	clock.Advance(20 * time.Second)
	_, _ = controller.Decide(zeroReadings())

	if err := controller.Reset([]string{"Lane_1", "Lane_2", "Lane_3", "Lane_4", "Lane_5"}); err != nil {
		t.Fatalf("Expected no error resetting, got: %v", err)
	}

	if _, ok := controller.CurrentGreen(); ok {
		t.Error("Expected no green lane after reset")
	}
	for id, lane := range controller.Inspect() {
		if lane.Wait != 0 || lane.Normal != 0 || lane.Phase != Red {
			t.Errorf("Expected lane %s reset to zero/Red, got %+v", id, lane)
		}
	}
	if len(observer.Resets) != 1 {
		t.Errorf("Expected 1 reset notification, got %d", len(observer.Resets))
	}

	// The cycle counter starts over with the new lane set.
	decision, _ = controller.Decide(nil)
	if decision.Cycle != 1 {
		t.Errorf("Expected cycle 1 after reset, got %d", decision.Cycle)
	}
}

func TestController_PhaseChangeSequence(t *testing.T) {
	controller, clock := CreateTestController(t)
	observer := NewTestObserver()
	controller.AddObserver(observer)

	_, _ = controller.Decide(Readings(testLanes, []int{3, 0, 0, 0}, []int{0, 0, 0, 0}))

	// Fresh controller: the chosen lane passes through the transient
	// Yellow label into Green; the Red lanes stay untouched.
	want := []PhaseChangeEvent{
		{LaneID: "Lane_1", From: Red, To: Yellow},
		{LaneID: "Lane_1", From: Yellow, To: Green},
	}
	if len(observer.PhaseChanges) != len(want) {
		t.Fatalf("Expected %d phase changes, got %d", len(want), len(observer.PhaseChanges))
	}
	for i, event := range want {
		if observer.PhaseChanges[i] != event {
			t.Errorf("phase change %d: expected %+v, got %+v", i, event, observer.PhaseChanges[i])
		}
	}

	observer.Reset()
	clock.Advance(20 * time.Second)
	_, _ = controller.Decide(Readings(testLanes, []int{0, 3, 0, 0}, []int{0, 0, 0, 0}))

	want = []PhaseChangeEvent{
		{LaneID: "Lane_1", From: Green, To: Red},
		{LaneID: "Lane_2", From: Red, To: Yellow},
		{LaneID: "Lane_2", From: Yellow, To: Green},
	}
	if len(observer.PhaseChanges) != len(want) {
		t.Fatalf("Expected %d phase changes, got %d", len(want), len(observer.PhaseChanges))
	}
	for i, event := range want {
		if observer.PhaseChanges[i] != event {
			t.Errorf("phase change %d: expected %+v, got %+v", i, event, observer.PhaseChanges[i])
		}
	}
}

func TestController_RepeatedInputIsNotIdempotent(t *testing.T) {
	controller, clock := CreateTestController(t)
	readings := Readings(testLanes, []int{0, 2, 0, 0}, []int{0, 0, 0, 0})

	first, _ := controller.Decide(readings)
	clock.Advance(20 * time.Second)
	second, _ := controller.Decide(readings)

	if first.Lanes["Lane_3"].Wait == second.Lanes["Lane_3"].Wait {
		t.Error("Expected wait counters to differ between successive identical cycles")
	}
	if first.Cycle == second.Cycle {
		t.Error("Expected cycle counter to advance")
	}
}

func TestController_InspectReturnsACopy(t *testing.T) {
	controller, _ := CreateTestController(t)
	_, _ = controller.Decide(zeroReadings())

	lanes := controller.Inspect()
	lane := lanes["Lane_1"]
	lane.Normal = 999
	lanes["Lane_1"] = lane

	if controller.Inspect()["Lane_1"].Normal == 999 {
		t.Error("Expected Inspect to return a copy of the lane state")
	}
}

func TestController_ReportMetadata(t *testing.T) {
	controller, _ := CreateTestController(t)

	decision, _ := controller.Decide(zeroReadings())

	if decision.ControllerID == "" {
		t.Error("Expected a controller id on the report")
	}
	if decision.ControllerID != controller.ID() {
		t.Error("Expected report controller id to match the instance")
	}
	if green, ok := decision.GreenLane(); !ok || green != decision.Chosen {
		t.Errorf("Expected GreenLane to agree with Chosen, got %s", green)
	}
}
