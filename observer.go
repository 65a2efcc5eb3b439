package greenwave

import "fmt"

// Observer represents an entity that observes controller decisions
type Observer interface {
	// Required methods

	// OnDecision is called after every completed decision cycle
	OnDecision(decision *Decision)

	// OnPhaseChange is called when a lane's phase label changes
	OnPhaseChange(laneID string, from Phase, to Phase)
}

// ExtendedObserver provides additional optional observation methods
type ExtendedObserver interface {
	Observer

	// OnEmergencyPreemption is called when an emergency lane preempts selection
	OnEmergencyPreemption(laneID string, count int)

	// OnGreenHeld is called when the current green lane is retained
	OnGreenHeld(laneID string, remaining float64)

	// OnStarvationOverride is called when a lane wins through the starvation bonus
	OnStarvationOverride(laneID string, wait int)

	// OnLaneSetReset is called when the registered lane set is replaced
	OnLaneSetReset(laneIDs []string)

	// OnError is called when an error occurs during processing
	OnError(err error)
}

// BaseObserver provides a default implementation with no-op methods
type BaseObserver struct{}

// OnDecision implements the required Observer method
func (o *BaseObserver) OnDecision(decision *Decision) {
	// Default implementation - no operation
}

// OnPhaseChange implements the required Observer method
func (o *BaseObserver) OnPhaseChange(laneID string, from Phase, to Phase) {
	// Default implementation - no operation
}

// OnEmergencyPreemption implements the optional ExtendedObserver method
func (o *BaseObserver) OnEmergencyPreemption(laneID string, count int) {
	// Default implementation - no operation
}

// OnGreenHeld implements the optional ExtendedObserver method
func (o *BaseObserver) OnGreenHeld(laneID string, remaining float64) {
	// Default implementation - no operation
}

// OnStarvationOverride implements the optional ExtendedObserver method
func (o *BaseObserver) OnStarvationOverride(laneID string, wait int) {
	// Default implementation - no operation
}

// OnLaneSetReset implements the optional ExtendedObserver method
func (o *BaseObserver) OnLaneSetReset(laneIDs []string) {
	// Default implementation - no operation
}

// OnError implements the optional ExtendedObserver method
func (o *BaseObserver) OnError(err error) {
	// Default implementation - no operation
}

// ObserverManager manages a collection of observers
type ObserverManager struct {
	observers []Observer
}

// NewObserverManager creates a new observer manager
func NewObserverManager() *ObserverManager {
	return &ObserverManager{
		observers: make([]Observer, 0),
	}
}

// AddObserver adds an observer to the manager
func (om *ObserverManager) AddObserver(observer Observer) {
	om.observers = append(om.observers, observer)
}

// RemoveObserver removes an observer from the manager
func (om *ObserverManager) RemoveObserver(observer Observer) {
	for i, obs := range om.observers {
		if obs == observer {
			om.observers = append(om.observers[:i], om.observers[i+1:]...)
			break
		}
	}
}

// NotifyDecision notifies all observers of a completed decision
func (om *ObserverManager) NotifyDecision(decision *Decision) {
	observers := make([]Observer, len(om.observers))
	copy(observers, om.observers)

	for _, observer := range observers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					// Observer panicked - report it if there's an error observer but don't crash
					if extObs, ok := observer.(ExtendedObserver); ok {
						func() {
							defer func() { recover() }()
							extObs.OnError(fmt.Errorf("observer panic in OnDecision: %v", r))
						}()
					}
				}
			}()
			observer.OnDecision(decision)
		}()
	}
}

// NotifyPhaseChange notifies all observers of a phase change
func (om *ObserverManager) NotifyPhaseChange(laneID string, from Phase, to Phase) {
	observers := make([]Observer, len(om.observers))
	copy(observers, om.observers)

	for _, observer := range observers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					if extObs, ok := observer.(ExtendedObserver); ok {
						func() {
							defer func() { recover() }()
							extObs.OnError(fmt.Errorf("observer panic in OnPhaseChange: %v", r))
						}()
					}
				}
			}()
			observer.OnPhaseChange(laneID, from, to)
		}()
	}
}

// NotifyEmergencyPreemption notifies all observers of an emergency preemption
func (om *ObserverManager) NotifyEmergencyPreemption(laneID string, count int) {
	observers := make([]Observer, len(om.observers))
	copy(observers, om.observers)

	for _, observer := range observers {
		if extObs, ok := observer.(ExtendedObserver); ok {
			extObs.OnEmergencyPreemption(laneID, count)
		}
	}
}

// NotifyGreenHeld notifies all observers of a retained green lane
func (om *ObserverManager) NotifyGreenHeld(laneID string, remaining float64) {
	observers := make([]Observer, len(om.observers))
	copy(observers, om.observers)

	for _, observer := range observers {
		if extObs, ok := observer.(ExtendedObserver); ok {
			extObs.OnGreenHeld(laneID, remaining)
		}
	}
}

// NotifyStarvationOverride notifies all observers of a starvation override
func (om *ObserverManager) NotifyStarvationOverride(laneID string, wait int) {
	observers := make([]Observer, len(om.observers))
	copy(observers, om.observers)

	for _, observer := range observers {
		if extObs, ok := observer.(ExtendedObserver); ok {
			extObs.OnStarvationOverride(laneID, wait)
		}
	}
}

// NotifyLaneSetReset notifies all observers of a lane-set replacement
func (om *ObserverManager) NotifyLaneSetReset(laneIDs []string) {
	observers := make([]Observer, len(om.observers))
	copy(observers, om.observers)

	for _, observer := range observers {
		if extObs, ok := observer.(ExtendedObserver); ok {
			extObs.OnLaneSetReset(laneIDs)
		}
	}
}

// NotifyError notifies all observers of errors
func (om *ObserverManager) NotifyError(err error) {
	observers := make([]Observer, len(om.observers))
	copy(observers, om.observers)

	for _, observer := range observers {
		if extObs, ok := observer.(ExtendedObserver); ok {
			extObs.OnError(err)
		}
	}
}
