package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Source errors: fatal to a run, nothing is touched when these surface
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")
	ErrAuthFailed         = fmt.Errorf("authentication failed")

	// Per-track errors: contained to the track that raised them
	ErrAcquireFailed = fmt.Errorf("acquisition failed")
	// ErrHistoryWrite marks a track that was downloaded but could not be
	// recorded. A later run will re-download it, so the remediation is to
	// check the output directory for a duplicate file, not to retry.
	ErrHistoryWrite = fmt.Errorf("history write failed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
