package server

import "github.com/agbru/mfmprime/pkg/models"

// SweepResponse represents the JSON response for a successful sweep request.
type SweepResponse struct {
	models.SweepRecord
	// N is the sequence length the pass used.
	N int `json:"n"`
	// Policy is the coefficient policy the pass used.
	Policy string `json:"policy"`
	// Duration is the formatted request handling time.
	Duration string `json:"duration"`
}

// ErrorResponse represents the standardized JSON response for an API error.
type ErrorResponse struct {
	// Error is the short error code or status text.
	Error string `json:"error"`
	// Message is a descriptive error message.
	Message string `json:"message,omitempty"`
}

// SweepParseError represents a parameter parsing error with HTTP status.
type SweepParseError struct {
	Message    string
	StatusCode int
}

// Error implements the error interface.
func (e SweepParseError) Error() string {
	return e.Message
}
