package queryevents

import (
	"database/sql"
	"fmt"

	utils "github.com/newrelic/nri-mysql-events/src/query-event-monitoring/utils"
)

// RawRow is one row of performance_schema.events_statements_history. Columns are bound by
// name through the db tags, so the query may select them in any order.
type RawRow struct {
	ThreadID             uint64         `db:"thread_id"`
	EventID              uint64         `db:"event_id"`
	EndEventID           sql.NullInt64  `db:"end_event_id"`
	SQLText              sql.NullString `db:"sql_text"`
	TimerWait            sql.NullInt64  `db:"timer_wait"`
	LockTime             sql.NullInt64  `db:"lock_time"`
	RowsExamined         int64          `db:"rows_examined"`
	RowsSent             int64          `db:"rows_sent"`
	RowsAffected         int64          `db:"rows_affected"`
	CreatedTmpTables     int64          `db:"created_tmp_tables"`
	CreatedTmpDiskTables int64          `db:"created_tmp_disk_tables"`
	SelectFullJoin       int64          `db:"select_full_join"`
	SelectFullRangeJoin  int64          `db:"select_full_range_join"`
	SelectScan           int64          `db:"select_scan"`
	SortMergePasses      int64          `db:"sort_merge_passes"`
	SortScan             int64          `db:"sort_scan"`
	CurrentSchema        sql.NullString `db:"current_schema"`
}

// Validate rejects rows the builder cannot turn into a meaningful event.
func (r RawRow) Validate() error {
	if r.ThreadID == 0 {
		return fmt.Errorf("%w: event %d has no thread id", utils.ErrMalformedRow, r.EventID)
	}
	if !r.SQLText.Valid {
		return fmt.Errorf("%w: thread %d event %d has no sql text", utils.ErrMalformedRow, r.ThreadID, r.EventID)
	}
	return nil
}
