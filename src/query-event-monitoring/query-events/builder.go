package queryevents

import (
	"time"

	constants "github.com/newrelic/nri-mysql-events/src/query-event-monitoring/constants"
)

// Build converts a statement row into an Event stamped with ref. It has no side effects;
// the same row and reference time always give the same Event. A nil format falls back to
// FormatTimestamp.
func Build(row RawRow, ref time.Time, format TimestampFormatter) Event {
	if format == nil {
		format = FormatTimestamp
	}

	sqlText := row.SQLText.String

	return Event{
		Timestamp:      format(ref),
		ThreadID:       row.ThreadID,
		EventID:        row.EventID,
		User:           constants.UnknownPlaceholder,
		Host:           constants.UnknownPlaceholder,
		Database:       row.CurrentSchema.String,
		QueryText:      sqlText,
		QueryBytes:     len(sqlText),
		QueryTime:      FormatPicoseconds(row.TimerWait.Int64),
		LockTime:       FormatPicoseconds(row.LockTime.Int64),
		RowsExamined:   row.RowsExamined,
		RowsSent:       row.RowsSent,
		RowsAffected:   row.RowsAffected,
		TmpTable:       yesNo(row.CreatedTmpTables > 0),
		TmpTableOnDisk: yesNo(row.CreatedTmpDiskTables > 0),
		FullScan:       yesNo(row.SelectScan > 0),
		FullJoin:       row.SelectFullJoin + row.SelectFullRangeJoin,
		Filesort:       yesNo(row.SortScan > 0 || row.SortMergePasses > 0),
		MergePasses:    row.SortMergePasses,
	}
}
