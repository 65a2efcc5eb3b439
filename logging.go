package greenwave

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// LogLevel represents the logging level
type LogLevel int

const (
	// LogError logs only errors
	LogError LogLevel = iota
	// LogWarning logs errors and warnings
	LogWarning
	// LogInfo logs errors, warnings, and info
	LogInfo
	// LogDebug logs errors, warnings, info, and debug
	LogDebug
)

// LogFormatter formats log messages
type LogFormatter func(level LogLevel, format string, args ...interface{}) string

// DefaultLogFormatter provides default log formatting
func DefaultLogFormatter(level LogLevel, format string, args ...interface{}) string {
	levelStr := "INFO"
	switch level {
	case LogError:
		levelStr = "ERROR"
	case LogWarning:
		levelStr = "WARN"
	case LogInfo:
		levelStr = "INFO"
	case LogDebug:
		levelStr = "DEBUG"
	}

	return fmt.Sprintf("[%s] %s", levelStr, fmt.Sprintf(format, args...))
}

// LoggingObserver logs controller decisions and phase changes
type LoggingObserver struct {
	BaseObserver
	level     LogLevel
	prefix    string
	out       io.Writer
	formatter LogFormatter
	mutex     sync.RWMutex
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(level LogLevel, prefix string) *LoggingObserver {
	return &LoggingObserver{
		level:     level,
		prefix:    prefix,
		out:       os.Stdout,
		formatter: DefaultLogFormatter,
	}
}

// NewDefaultLoggingObserver creates a logging observer at info level
func NewDefaultLoggingObserver() *LoggingObserver {
	return NewLoggingObserver(LogInfo, "greenwave")
}

// SetOutput redirects log output to the given writer
func (o *LoggingObserver) SetOutput(w io.Writer) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.out = w
}

// SetFormatter sets the log formatter
func (o *LoggingObserver) SetFormatter(formatter LogFormatter) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.formatter = formatter
}

// log writes a message at the specified level
func (o *LoggingObserver) log(level LogLevel, format string, args ...interface{}) {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	if level > o.level {
		return
	}

	prefix := ""
	if o.prefix != "" {
		prefix = fmt.Sprintf("[%s] ", o.prefix)
	}

	message := fmt.Sprintf(format, args...)
	if o.formatter != nil {
		message = o.formatter(level, format, args...)
	}

	fmt.Fprintf(o.out, "%s%s\n", prefix, message)
}

// OnDecision logs the outcome of a decision cycle
func (o *LoggingObserver) OnDecision(decision *Decision) {
	o.log(LogInfo, "cycle %d: green %s for %.1fs (emergency=%t held=%t)",
		decision.Cycle, decision.Chosen, decision.GreenTime, decision.Emergency, decision.Held)
}

// OnPhaseChange logs phase label changes
func (o *LoggingObserver) OnPhaseChange(laneID string, from Phase, to Phase) {
	o.log(LogDebug, "lane %s: %s -> %s", laneID, from, to)
}

// OnEmergencyPreemption logs emergency preemptions
func (o *LoggingObserver) OnEmergencyPreemption(laneID string, count int) {
	o.log(LogWarning, "emergency preemption: lane %s (%d vehicles)", laneID, count)
}

// OnGreenHeld logs retained green phases
func (o *LoggingObserver) OnGreenHeld(laneID string, remaining float64) {
	o.log(LogDebug, "green held on %s (%.1fs remaining)", laneID, remaining)
}

// OnStarvationOverride logs starvation overrides
func (o *LoggingObserver) OnStarvationOverride(laneID string, wait int) {
	o.log(LogWarning, "starvation override: lane %s after %d cycles", laneID, wait)
}

// OnLaneSetReset logs lane-set replacements
func (o *LoggingObserver) OnLaneSetReset(laneIDs []string) {
	o.log(LogInfo, "lane set reset: %v", laneIDs)
}

// OnError logs errors
func (o *LoggingObserver) OnError(err error) {
	o.log(LogError, "%v", err)
}

// MetricsObserver collects metrics about controller execution
type MetricsObserver struct {
	BaseObserver
	decisions      map[string]int
	greenSeconds   map[string]float64
	preemptions    int
	starvations    int
	heldCycles     int
	errorCount     int
	lastDecisionAt time.Time
	mutex          sync.RWMutex
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{
		decisions:    make(map[string]int),
		greenSeconds: make(map[string]float64),
	}
}

// OnDecision records decision metrics
func (o *MetricsObserver) OnDecision(decision *Decision) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if decision.Chosen != "" {
		o.decisions[decision.Chosen]++
		o.greenSeconds[decision.Chosen] += decision.GreenTime
	}
	if decision.Held {
		o.heldCycles++
	}
	o.lastDecisionAt = decision.Timestamp
}

// OnEmergencyPreemption records preemption metrics
func (o *MetricsObserver) OnEmergencyPreemption(laneID string, count int) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.preemptions++
}

// OnStarvationOverride records starvation metrics
func (o *MetricsObserver) OnStarvationOverride(laneID string, wait int) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.starvations++
}

// OnError records error counts
func (o *MetricsObserver) OnError(err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.errorCount++
}

// Decisions returns how many times each lane has been chosen
func (o *MetricsObserver) Decisions() map[string]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	result := make(map[string]int, len(o.decisions))
	for k, v := range o.decisions {
		result[k] = v
	}
	return result
}

// GreenSeconds returns the total green time granted per lane
func (o *MetricsObserver) GreenSeconds() map[string]float64 {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	result := make(map[string]float64, len(o.greenSeconds))
	for k, v := range o.greenSeconds {
		result[k] = v
	}
	return result
}

// Preemptions returns the number of emergency preemptions observed
func (o *MetricsObserver) Preemptions() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.preemptions
}

// Starvations returns the number of starvation overrides observed
func (o *MetricsObserver) Starvations() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.starvations
}

// HeldCycles returns how many cycles retained the current green lane
func (o *MetricsObserver) HeldCycles() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.heldCycles
}

// ErrorCount returns the number of errors observed
func (o *MetricsObserver) ErrorCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.errorCount
}
