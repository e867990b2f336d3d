package args

import "errors"

var (
	ErrMissingEndpoint     = errors.New("hostname or socket must be set")
	ErrMissingUsername     = errors.New("username must be set")
	ErrInvalidPollInterval = errors.New("poll_interval is below the minimum")
	ErrInvalidRowLimit     = errors.New("max_rows_per_poll must be positive")
	ErrInvalidRunDuration  = errors.New("run_duration cannot be negative")
)
