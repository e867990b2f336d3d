package queryevents

import (
	"fmt"
	"time"

	constants "github.com/newrelic/nri-mysql-events/src/query-event-monitoring/constants"
)

const (
	Yes = "Yes"
	No  = "No"
)

// Event is a normalized completed statement, laid out like a slow log entry. The
// metric_name and source_type tags drive ingestion into metric sets.
type Event struct {
	Timestamp      string `json:"ts" metric_name:"timestamp" source_type:"attribute"`
	ThreadID       uint64 `json:"thread_id" metric_name:"thread_id" source_type:"gauge"`
	EventID        uint64 `json:"event_id" metric_name:"event_id" source_type:"gauge"`
	User           string `json:"user" metric_name:"user" source_type:"attribute"`
	Host           string `json:"host" metric_name:"host" source_type:"attribute"`
	Database       string `json:"db" metric_name:"database_name" source_type:"attribute"`
	QueryText      string `json:"arg" metric_name:"query_text" source_type:"attribute"`
	QueryBytes     int    `json:"bytes" metric_name:"query_bytes" source_type:"gauge"`
	QueryTime      string `json:"Query_time" metric_name:"query_time" source_type:"attribute"`
	LockTime       string `json:"Lock_time" metric_name:"lock_time" source_type:"attribute"`
	RowsExamined   int64  `json:"Rows_examined" metric_name:"rows_examined" source_type:"gauge"`
	RowsSent       int64  `json:"Rows_sent" metric_name:"rows_sent" source_type:"gauge"`
	RowsAffected   int64  `json:"Rows_affected" metric_name:"rows_affected" source_type:"gauge"`
	TmpTable       string `json:"Tmp_table" metric_name:"tmp_table" source_type:"attribute"`
	TmpTableOnDisk string `json:"Tmp_table_on_disk" metric_name:"tmp_table_on_disk" source_type:"attribute"`
	FullScan       string `json:"Full_scan" metric_name:"full_scan" source_type:"attribute"`
	FullJoin       int64  `json:"Full_join" metric_name:"full_join" source_type:"gauge"`
	Filesort       string `json:"Filesort" metric_name:"filesort" source_type:"attribute"`
	MergePasses    int64  `json:"Merge_passes" metric_name:"merge_passes" source_type:"gauge"`
}

// TimestampFormatter renders the reference time of a poll for display.
type TimestampFormatter func(time.Time) string

// FormatTimestamp renders t in UTC as 2006-01-02T15:04:05, adding microseconds only when
// t has a sub-second part.
func FormatTimestamp(t time.Time) string {
	t = t.UTC()
	formatted := t.Format("2006-01-02T15:04:05")
	if micros := t.Nanosecond() / 1000; micros > 0 {
		formatted += fmt.Sprintf(".%06d", micros)
	}
	return formatted
}

// FormatPicoseconds converts a performance_schema timer value to seconds with exactly six
// fractional digits. Digits past the microsecond are dropped, never rounded. The division
// is done on integers, so no value ever goes through an exponent form.
func FormatPicoseconds(ps int64) string {
	if ps <= 0 {
		return "0.000000"
	}
	seconds := ps / constants.PicosecondsPerSecond
	micros := (ps % constants.PicosecondsPerSecond) / constants.PicosecondsPerMicrosecond
	return fmt.Sprintf("%d.%06d", seconds, micros)
}

func yesNo(b bool) string {
	if b {
		return Yes
	}
	return No
}
