package domain

import (
	"errors"
	"fmt"
)

// ErrNoSelection is returned when a session has no resolved bounding box yet.
var ErrNoSelection = errors.New("no area selected")

// ValidationError reports malformed manual input or drawn geometry.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// ConfigError reports missing or unusable configuration, such as the API key.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "config: " + e.Reason
}

// RequestError reports a failed DEM request: either a non-200 upstream
// status (StatusCode set) or a transport failure (Err set).
type RequestError struct {
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("download failed: status code %d", e.StatusCode)
	}
	return fmt.Sprintf("download failed: %v", e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}
