package greenwave

import "fmt"

// ErrorCode represents specific error conditions in the controller
type ErrorCode int

const (
	// No error occurred
	ErrCodeNone ErrorCode = iota
	// Lane was not found in the controller's registered set
	ErrCodeLaneNotFound
	// Lane id is duplicated or empty at registration
	ErrCodeInvalidLane
	// Controller configuration is invalid
	ErrCodeInvalidConfiguration
	// Controller operation failed
	ErrCodeControllerFailed
)

// LaneError represents lane-related errors
type LaneError struct {
	Code    ErrorCode
	LaneID  string
	Message string
}

func (e *LaneError) Error() string {
	return fmt.Sprintf("lane error [%s]: %s", e.LaneID, e.Message)
}

// NewLaneNotFoundError creates a new lane not found error
func NewLaneNotFoundError(laneID string) *LaneError {
	return &LaneError{
		Code:    ErrCodeLaneNotFound,
		LaneID:  laneID,
		Message: fmt.Sprintf("lane '%s' is not registered", laneID),
	}
}

// NewInvalidLaneError creates a new invalid lane error
func NewInvalidLaneError(laneID string, reason string) *LaneError {
	return &LaneError{
		Code:    ErrCodeInvalidLane,
		LaneID:  laneID,
		Message: reason,
	}
}

// ConfigurationError represents controller configuration issues
type ConfigurationError struct {
	Component string
	Issue     string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Issue)
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(component, issue string) *ConfigurationError {
	return &ConfigurationError{
		Component: component,
		Issue:     issue,
	}
}

// ControllerError represents controller operation errors
type ControllerError struct {
	Code      ErrorCode
	Operation string
	Message   string
}

func (e *ControllerError) Error() string {
	return fmt.Sprintf("controller error during %s: %s", e.Operation, e.Message)
}

// NewControllerError creates a new controller error
func NewControllerError(code ErrorCode, operation string, message string) *ControllerError {
	return &ControllerError{
		Code:      code,
		Operation: operation,
		Message:   message,
	}
}

// IsLaneError checks if an error is a LaneError
func IsLaneError(err error) bool {
	_, ok := err.(*LaneError)
	return ok
}

// IsConfigurationError checks if an error is a ConfigurationError
func IsConfigurationError(err error) bool {
	_, ok := err.(*ConfigurationError)
	return ok
}

// IsControllerError checks if an error is a ControllerError
func IsControllerError(err error) bool {
	_, ok := err.(*ControllerError)
	return ok
}

// GetErrorCode returns the error code for known error types
func GetErrorCode(err error) ErrorCode {
	switch e := err.(type) {
	case *LaneError:
		return e.Code
	case *ControllerError:
		return e.Code
	case *ConfigurationError:
		return ErrCodeInvalidConfiguration
	default:
		return ErrCodeNone
	}
}
