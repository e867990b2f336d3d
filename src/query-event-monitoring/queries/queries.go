package queries

const (
	// StatementHistoryQuery reads completed statements from the per-thread history table.
	// Arguments: excluded schemas (expanded by sqlx.In), the (THREAD_ID, EVENT_ID) cursor
	// of the previous page and the page size.
	StatementHistoryQuery = `
		SELECT
			THREAD_ID AS thread_id,
			EVENT_ID AS event_id,
			END_EVENT_ID AS end_event_id,
			SQL_TEXT AS sql_text,
			TIMER_WAIT AS timer_wait,
			LOCK_TIME AS lock_time,
			ROWS_EXAMINED AS rows_examined,
			ROWS_SENT AS rows_sent,
			ROWS_AFFECTED AS rows_affected,
			CREATED_TMP_TABLES AS created_tmp_tables,
			CREATED_TMP_DISK_TABLES AS created_tmp_disk_tables,
			SELECT_FULL_JOIN AS select_full_join,
			SELECT_FULL_RANGE_JOIN AS select_full_range_join,
			SELECT_SCAN AS select_scan,
			SORT_MERGE_PASSES AS sort_merge_passes,
			SORT_SCAN AS sort_scan,
			CURRENT_SCHEMA AS current_schema
		FROM performance_schema.events_statements_history
		WHERE END_EVENT_ID IS NOT NULL
			AND SQL_TEXT IS NOT NULL
			AND (CURRENT_SCHEMA IS NULL OR CURRENT_SCHEMA NOT IN (?))
			AND (THREAD_ID, EVENT_ID) > (?, ?)
		ORDER BY THREAD_ID, EVENT_ID
		LIMIT ?;
	`
	PerformanceSchemaEnabledQuery = "SHOW GLOBAL VARIABLES LIKE 'performance_schema';"
	ConsumersQueryPrefix          = "SELECT NAME, ENABLED FROM performance_schema.setup_consumers WHERE NAME IN ("
	InstrumentsQueryPrefix        = "SELECT NAME, ENABLED, TIMED FROM performance_schema.setup_instruments WHERE "
	VersionQuery                  = "SELECT VERSION();"
)
