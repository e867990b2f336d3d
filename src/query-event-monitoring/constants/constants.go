package constants

import "time"

const (
	IntegrationName = "com.newrelic.mysql-events"
	NodeEntityType  = "node"
	// MetricSetLimit defines the maximum number of metric sets published in a single payload.
	MetricSetLimit = 100
	// QueryEventSampleName is the event type used for every published query event.
	QueryEventSampleName = "MysqlQueryEventSample"
	// TimeoutDuration defines the timeout for a single poll of the statement history table
	// and for the precondition checks.
	TimeoutDuration = 5 * time.Second
	// MinPollInterval is the hard floor for the configured poll interval. Polling the
	// statement history faster than this puts measurable load on the monitored server.
	MinPollInterval = time.Second
	// PollIntervalResolution is the precision the poll interval is stored with.
	PollIntervalResolution = time.Microsecond
	// UnknownPlaceholder fills the user and host of an event; the statement history
	// table does not expose them.
	UnknownPlaceholder = "unknown"
	// PicosecondsPerSecond converts performance_schema timer columns to seconds.
	PicosecondsPerSecond = 1_000_000_000_000
	// PicosecondsPerMicrosecond is the truncation step for the six fractional digits.
	PicosecondsPerMicrosecond = 1_000_000
	// MaxRowsPerPoll is the page size used when reading the history table.
	MaxRowsPerPoll = 1000
	// APMConnectTimeout bounds the wait for the New Relic APM application to connect.
	APMConnectTimeout = 10 * time.Second
	// MinVersionParts defines the minimum number of version parts
	MinVersionParts = 2
)

// DefaultExcludedDatabases defines a list of database names that are excluded by default.
// These are the MySQL system schemas; statements run against them are the monitor's own
// traffic or server housekeeping.
//
//   - "mysql": system user accounts and privileges.
//   - "information_schema": read-only metadata.
//   - "performance_schema": instrumentation tables, including the one being polled.
//   - "sys": helper views over performance_schema.
//   - "": statements that ran without a default schema.
var DefaultExcludedDatabases = []string{"", "mysql", "information_schema", "performance_schema", "sys"}
