package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Session / identity errors
	ErrNoIdentity     = fmt.Errorf("no session identity")
	ErrSessionInvalid = fmt.Errorf("session data invalid")
	ErrUnauthorized   = fmt.Errorf("unauthorized")
	ErrTokenExpired   = fmt.Errorf("access token expired")

	// Counter service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrDuplicate          = fmt.Errorf("action already applied")
	ErrItemNotFound       = fmt.Errorf("item not found")
	ErrTrackNotFound      = fmt.Errorf("track not found")

	// Engagement invariant violations, rejected before any network call
	ErrZeroFloor = fmt.Errorf("like count already at zero")
	ErrNoSession = fmt.Errorf("no active playback session")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
