package greenwave

// Per-second bonuses applied by the estimator. The wait factor is a fixed
// tuning knob, intentionally separate from the configurable WaitBoost used
// for selection.
const (
	waitBonusPerCycle    = 0.4
	emergencyBonusPerVeh = 2.0
)

// GreenTimeEstimator computes how long a chosen lane stays green:
// the time needed to clear the queue at the configured clearance rate,
// plus bonuses for accumulated wait and emergency vehicles, clamped to
// the configured [MinGreen, MaxGreen] window.
type GreenTimeEstimator struct {
	minGreen      float64
	maxGreen      float64
	clearanceRate float64
}

// NewGreenTimeEstimator creates an estimator from the controller config
func NewGreenTimeEstimator(cfg Config) *GreenTimeEstimator {
	return &GreenTimeEstimator{
		minGreen:      cfg.MinGreen,
		maxGreen:      cfg.MaxGreen,
		clearanceRate: cfg.ClearanceRate,
	}
}

// Estimate returns the green duration in seconds for the given demand.
// Pure function of its inputs and the configuration.
func (e *GreenTimeEstimator) Estimate(d LaneDemand) float64 {
	clear := float64(d.Normal) / e.clearanceRate
	raw := clear + float64(d.Wait)*waitBonusPerCycle + float64(d.Emergency)*emergencyBonusPerVeh

	if raw < e.minGreen {
		return e.minGreen
	}
	if raw > e.maxGreen {
		return e.maxGreen
	}
	return raw
}
