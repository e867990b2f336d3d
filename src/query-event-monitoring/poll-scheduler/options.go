package pollscheduler

import (
	"time"

	"github.com/newrelic/infra-integrations-sdk/v3/log"
	metrics "github.com/newrelic/nri-mysql-events/src/query-event-monitoring/metrics"
	queryevents "github.com/newrelic/nri-mysql-events/src/query-event-monitoring/query-events"
)

// Option customizes a Scheduler at construction.
type Option func(*Scheduler)

// WithClock replaces the wall clock used for reference times and the inter-poll sleep.
func WithClock(c Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithLogger sets the logger for poll failures and verbose tracing.
func WithLogger(l log.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// WithTimestampFormatter sets how a poll's reference time is rendered on its events.
func WithTimestampFormatter(f queryevents.TimestampFormatter) Option {
	return func(s *Scheduler) { s.format = f }
}

// WithMetrics records poll and cache activity in c.
func WithMetrics(c *metrics.Collectors) Option {
	return func(s *Scheduler) { s.metrics = c }
}

// PollOption overrides the clock for a single NextEvent call. Both overrides exist so
// tests can pin the poll's reference time and elapsed duration.
type PollOption func(*pollOverrides)

type pollOverrides struct {
	referenceTime *time.Time
	elapsed       *time.Duration
}

// WithReferenceTime stamps the poll with t instead of the clock's time after the fetch.
// Unless WithElapsed is also given, elapsed is t minus the clock time read before the fetch.
func WithReferenceTime(t time.Time) PollOption {
	return func(o *pollOverrides) { o.referenceTime = &t }
}

// WithElapsed reports d as the poll duration; the clock is not read before the fetch.
func WithElapsed(d time.Duration) PollOption {
	return func(o *pollOverrides) { o.elapsed = &d }
}
