package utils

import "errors"

var (
	ErrSourceUnavailable              = errors.New("statement history unavailable")
	ErrMalformedRow                   = errors.New("malformed statement history row")
	ErrPerformanceSchemaDisabled      = errors.New("performance schema is not enabled")
	ErrEssentialConsumerNotEnabled    = errors.New("essential consumer is not enabled")
	ErrEssentialInstrumentNotEnabled  = errors.New("essential instrument is not fully enabled")
	ErrMySQLVersion                   = errors.New("failed to determine MySQL version")
	ErrNoRowsFound                    = errors.New("no rows found")
	ErrInvalidExcludedDatabasesFormat = errors.New("excluded_databases must be a JSON array of strings")
)
