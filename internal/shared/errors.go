package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrAuthFailed     = fmt.Errorf("authentication failed")
	ErrNoRefreshToken = fmt.Errorf("no refresh token available")
	ErrAuthTimeout    = fmt.Errorf("authorization timed out")

	// API and playback errors
	ErrAPIRequest = fmt.Errorf("API request failed")
	ErrNoPlayback = fmt.Errorf("no active playback")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
