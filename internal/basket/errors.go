package basket

import (
	"fmt"
	"math"
)

// DataError reports a malformed or incomplete input row.
// Row is 1-based and counts the header line for file sources; 0 means unknown.
type DataError struct {
	Row     int         `json:"row,omitempty"`
	Field   string      `json:"field"`
	Value   interface{} `json:"value,omitempty"`
	Message string      `json:"message"`
}

// Error implements the error interface
func (e *DataError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("data error at row %d: %s: %s", e.Row, e.Field, e.Message)
	}
	return fmt.Sprintf("data error: %s: %s", e.Field, e.Message)
}

// ParameterError reports a mining parameter outside its allowed range
type ParameterError struct {
	Name    string      `json:"name"`
	Value   interface{} `json:"value"`
	Message string      `json:"message"`
}

// Error implements the error interface
func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v: %s", e.Name, e.Value, e.Message)
}

// ValidateThreshold checks that a support or confidence threshold lies in (0, 1].
// Out of range values are rejected, never clamped.
func ValidateThreshold(name string, value float64) error {
	if math.IsNaN(value) || value <= 0 || value > 1 {
		return &ParameterError{
			Name:    name,
			Value:   value,
			Message: "must be in the interval (0, 1]",
		}
	}
	return nil
}
