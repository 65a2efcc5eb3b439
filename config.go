package greenwave

import "fmt"

// Config holds the tuning constants of a signal controller
type Config struct {
	// Shortest green duration granted to any lane, in seconds
	MinGreen float64
	// Longest green duration granted to any lane, in seconds
	MaxGreen float64
	// Advisory yellow duration, in seconds. The transition itself does
	// not hold Yellow for this long; see Controller.
	YellowTime float64
	// Weight of the wait counter in the fairness score
	WaitBoost float64
	// Wait-cycle threshold beyond which a lane is guaranteed selection
	StarvationLimit int
	// Assumed vehicles served per second of green
	ClearanceRate float64
}

// DefaultConfig returns the standard controller tuning
func DefaultConfig() Config {
	return Config{
		MinGreen:        3.0,
		MaxGreen:        15.0,
		YellowTime:      2.0,
		WaitBoost:       0.4,
		StarvationLimit: 8,
		ClearanceRate:   3.0,
	}
}

// WithMinGreen sets the minimum green duration
func (c Config) WithMinGreen(seconds float64) Config {
	c.MinGreen = seconds
	return c
}

// WithMaxGreen sets the maximum green duration
func (c Config) WithMaxGreen(seconds float64) Config {
	c.MaxGreen = seconds
	return c
}

// WithYellowTime sets the advisory yellow duration
func (c Config) WithYellowTime(seconds float64) Config {
	c.YellowTime = seconds
	return c
}

// WithWaitBoost sets the fairness aging weight
func (c Config) WithWaitBoost(boost float64) Config {
	c.WaitBoost = boost
	return c
}

// WithStarvationLimit sets the guaranteed-selection wait threshold
func (c Config) WithStarvationLimit(cycles int) Config {
	c.StarvationLimit = cycles
	return c
}

// WithClearanceRate sets the assumed vehicles served per green second
func (c Config) WithClearanceRate(rate float64) Config {
	c.ClearanceRate = rate
	return c
}

// Validate checks the configuration for inconsistent values
func (c Config) Validate() error {
	if c.MinGreen <= 0 {
		return NewConfigurationError("Config", "MinGreen must be positive")
	}
	if c.MaxGreen < c.MinGreen {
		return NewConfigurationError("Config", fmt.Sprintf("MaxGreen (%.1f) must not be below MinGreen (%.1f)", c.MaxGreen, c.MinGreen))
	}
	if c.YellowTime < 0 {
		return NewConfigurationError("Config", "YellowTime must not be negative")
	}
	if c.WaitBoost < 0 {
		return NewConfigurationError("Config", "WaitBoost must not be negative")
	}
	if c.StarvationLimit <= 0 {
		return NewConfigurationError("Config", "StarvationLimit must be positive")
	}
	if c.ClearanceRate <= 0 {
		return NewConfigurationError("Config", "ClearanceRate must be positive")
	}
	return nil
}
