package pollscheduler

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/newrelic/infra-integrations-sdk/v3/log"
	constants "github.com/newrelic/nri-mysql-events/src/query-event-monitoring/constants"
	metrics "github.com/newrelic/nri-mysql-events/src/query-event-monitoring/metrics"
	queryevents "github.com/newrelic/nri-mysql-events/src/query-event-monitoring/query-events"
)

// ErrIntervalTooShort is returned by New when the configured interval is below the floor.
var ErrIntervalTooShort = errors.New("poll interval is below the minimum")

// RowSource reads the current contents of the statement history table. A non-nil error
// means no valid batch could be read; an empty slice with a nil error is a valid poll
// that found nothing.
type RowSource interface {
	FetchRows() ([]queryevents.RawRow, error)
}

// RowSourceFunc adapts a function to RowSource.
type RowSourceFunc func() ([]queryevents.RawRow, error)

func (f RowSourceFunc) FetchRows() ([]queryevents.RawRow, error) { return f() }

// Config is the scheduler configuration. A zero Interval disables the inter-poll wait.
type Config struct {
	Interval time.Duration `yaml:"interval"`
	Verbose  bool          `yaml:"verbose"`
}

// Scheduler turns polls of a RowSource into a stream of events delivered one at a time.
// It is not safe for concurrent use.
type Scheduler struct {
	interval time.Duration
	verbose  bool

	pollCount uint64
	lastPoll  time.Time
	queue     []queryevents.Event

	clock   Clock
	logger  log.Logger
	format  queryevents.TimestampFormatter
	metrics *metrics.Collectors
}

// New validates cfg and returns an idle scheduler.
func New(cfg Config, opts ...Option) (*Scheduler, error) {
	interval := cfg.Interval.Truncate(constants.PollIntervalResolution)
	if cfg.Interval != 0 && interval < constants.MinPollInterval {
		return nil, fmt.Errorf("%w: got %dus, need at least %dus",
			ErrIntervalTooShort, interval.Microseconds(), constants.MinPollInterval.Microseconds())
	}

	s := &Scheduler{
		interval: interval,
		verbose:  cfg.Verbose,
		clock:    realClock{},
		format:   queryevents.FormatTimestamp,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(cfg.Verbose, os.Stderr)
	}
	return s, nil
}

// NextEvent returns the oldest undelivered event. When none is buffered it polls src,
// first sleeping for the interval unless this is the first poll. The boolean is false
// when the poll failed or returned no rows.
func (s *Scheduler) NextEvent(src RowSource, opts ...PollOption) (queryevents.Event, bool) {
	if len(s.queue) > 0 {
		return s.pop()
	}

	var overrides pollOverrides
	for _, opt := range opts {
		opt(&overrides)
	}

	if s.pollCount > 0 && s.interval > 0 {
		s.tracef("sleeping %v before poll %d", s.interval, s.pollCount+1)
		s.clock.Sleep(s.interval)
	}

	var before time.Time
	if overrides.elapsed == nil {
		before = s.clock.Now()
	}

	rows, err := src.FetchRows()
	if err != nil {
		s.logger.Warnf("Failed to read statement history, no events this poll: %v", err)
		s.metrics.RecordPollFailure()
		return queryevents.Event{}, false
	}

	var ref time.Time
	if overrides.referenceTime != nil {
		ref = *overrides.referenceTime
	} else {
		ref = s.clock.Now()
	}

	var elapsed time.Duration
	switch {
	case overrides.elapsed != nil:
		elapsed = *overrides.elapsed
	case !before.IsZero():
		elapsed = ref.Sub(before)
	}

	s.pollCount++
	for _, row := range rows {
		s.queue = append(s.queue, queryevents.Build(row, ref, s.format))
	}
	s.lastPoll = ref

	s.tracef("poll %d returned %d rows in %v", s.pollCount, len(rows), elapsed)
	s.metrics.RecordPoll(len(rows), elapsed.Seconds())
	s.metrics.SetCacheSize(len(s.queue))

	if len(s.queue) == 0 {
		return queryevents.Event{}, false
	}
	return s.pop()
}

func (s *Scheduler) pop() (queryevents.Event, bool) {
	event := s.queue[0]
	s.queue[0] = queryevents.Event{}
	s.queue = s.queue[1:]
	s.metrics.RecordServed(len(s.queue))
	return event, true
}

func (s *Scheduler) tracef(format string, args ...interface{}) {
	if s.verbose {
		s.logger.Debugf(format, args...)
	}
}

// PollCount is the number of polls that returned a valid batch.
func (s *Scheduler) PollCount() uint64 { return s.pollCount }

// LastPoll is the reference time of the most recent valid poll, zero before the first.
func (s *Scheduler) LastPoll() time.Time { return s.lastPoll }

// Pending is the number of buffered events.
func (s *Scheduler) Pending() int { return len(s.queue) }

// Interval is the configured minimum time between polls.
func (s *Scheduler) Interval() time.Duration { return s.interval }
