package rowsource

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/newrelic/infra-integrations-sdk/v3/log"
	constants "github.com/newrelic/nri-mysql-events/src/query-event-monitoring/constants"
	mysqlapm "github.com/newrelic/nri-mysql-events/src/query-event-monitoring/mysql-apm"
	queries "github.com/newrelic/nri-mysql-events/src/query-event-monitoring/queries"
	queryevents "github.com/newrelic/nri-mysql-events/src/query-event-monitoring/query-events"
	utils "github.com/newrelic/nri-mysql-events/src/query-event-monitoring/utils"
)

// Config selects which statements a PerformanceSchemaSource returns.
type Config struct {
	ExcludedDatabases []string
	MaxRows           int
}

// PerformanceSchemaSource reads performance_schema.events_statements_history. The table
// keeps the last few statements of every thread, so consecutive polls overlap; the source
// remembers the highest EVENT_ID delivered per thread and skips anything at or below it.
type PerformanceSchemaSource struct {
	db     utils.DataSource
	cfg    Config
	tracer *mysqlapm.Tracer

	lastEventID map[uint64]uint64
}

func NewPerformanceSchemaSource(db utils.DataSource, cfg Config, tracer *mysqlapm.Tracer) *PerformanceSchemaSource {
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = constants.MaxRowsPerPoll
	}
	if len(cfg.ExcludedDatabases) == 0 {
		cfg.ExcludedDatabases = constants.DefaultExcludedDatabases
	}
	return &PerformanceSchemaSource{
		db:          db,
		cfg:         cfg,
		tracer:      tracer,
		lastEventID: make(map[uint64]uint64),
	}
}

// FetchRows returns the statements completed since the previous call. The history table
// is read in pages of MaxRows ordered by (THREAD_ID, EVENT_ID) until a short page, so
// every poll sees the whole table however many threads it holds.
func (s *PerformanceSchemaSource) FetchRows() ([]queryevents.RawRow, error) {
	txn := s.tracer.StartTransaction("MysqlStatementHistoryPoll")
	defer txn.End()
	ctx := mysqlapm.WithTransaction(context.Background(), txn)

	var rows []queryevents.RawRow
	var cursorThread, cursorEvent uint64
	for pages := 1; ; pages++ {
		page, err := s.fetchPage(ctx, cursorThread, cursorEvent)
		if err != nil {
			txn.NoticeError(err)
			return nil, fmt.Errorf("%w: %w", utils.ErrSourceUnavailable, err)
		}
		rows = append(rows, page...)
		if len(page) < s.cfg.MaxRows {
			log.Debug("Statement history read in %d pages", pages)
			break
		}

		last := page[len(page)-1]
		if last.ThreadID < cursorThread || (last.ThreadID == cursorThread && last.EventID <= cursorEvent) {
			return nil, fmt.Errorf("%w: %w: page ended at thread %d event %d, not past the cursor",
				utils.ErrSourceUnavailable, utils.ErrMalformedRow, last.ThreadID, last.EventID)
		}
		cursorThread, cursorEvent = last.ThreadID, last.EventID
	}

	fresh := make([]queryevents.RawRow, 0, len(rows))
	seen := make(map[uint64]struct{}, len(rows))
	for _, row := range rows {
		seen[row.ThreadID] = struct{}{}
		if row.EventID <= s.lastEventID[row.ThreadID] {
			continue
		}
		s.lastEventID[row.ThreadID] = row.EventID
		fresh = append(fresh, row)
	}

	// Threads absent from the snapshot have exited; drop their watermark so a reused
	// thread id starts from scratch.
	for threadID := range s.lastEventID {
		if _, ok := seen[threadID]; !ok {
			delete(s.lastEventID, threadID)
		}
	}

	log.Debug("Statement history returned %d rows, %d new", len(rows), len(fresh))
	return fresh, nil
}

func (s *PerformanceSchemaSource) fetchPage(ctx context.Context, afterThread, afterEvent uint64) ([]queryevents.RawRow, error) {
	query, args, err := sqlx.In(queries.StatementHistoryQuery, s.cfg.ExcludedDatabases, afterThread, afterEvent, s.cfg.MaxRows)
	if err != nil {
		return nil, fmt.Errorf("preparing statement history query: %w", err)
	}

	page, err := utils.CollectMetrics[queryevents.RawRow](ctx, s.db, query, args...)
	if err != nil {
		return nil, err
	}
	for _, row := range page {
		if err := row.Validate(); err != nil {
			return nil, err
		}
	}
	return page, nil
}
