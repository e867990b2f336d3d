package eventpublisher

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	simplejson "github.com/bitly/go-simplejson"
	"github.com/newrelic/infra-integrations-sdk/v3/integration"
	"github.com/newrelic/infra-integrations-sdk/v3/log"
	arguments "github.com/newrelic/nri-mysql-events/src/args"
	pollscheduler "github.com/newrelic/nri-mysql-events/src/query-event-monitoring/poll-scheduler"
	queryevents "github.com/newrelic/nri-mysql-events/src/query-event-monitoring/query-events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDrained = errors.New("drained")

type stepClock struct {
	now    time.Time
	sleeps int
}

func (c *stepClock) Now() time.Time { return c.now }

func (c *stepClock) Sleep(d time.Duration) {
	c.sleeps++
	c.now = c.now.Add(d)
}

func statementRows(n int) []queryevents.RawRow {
	rows := make([]queryevents.RawRow, 0, n)
	for idx := 0; idx < n; idx++ {
		rows = append(rows, queryevents.RawRow{
			ThreadID:      uint64(40 + idx%3),
			EventID:       uint64(idx + 1),
			SQLText:       sql.NullString{String: "SELECT 1", Valid: true},
			TimerWait:     sql.NullInt64{Int64: 1234567890, Valid: true},
			RowsSent:      1,
			CurrentSchema: sql.NullString{String: "shop", Valid: true},
		})
	}
	return rows
}

// oneBatchSource serves rows on the first poll and cancels the run on the next one.
func oneBatchSource(rows []queryevents.RawRow, cancel context.CancelFunc) pollscheduler.RowSource {
	calls := 0
	return pollscheduler.RowSourceFunc(func() ([]queryevents.RawRow, error) {
		calls++
		if calls == 1 {
			return rows, nil
		}
		cancel()
		return nil, errDrained
	})
}

func newTestPublisher(t *testing.T, buf *bytes.Buffer, source pollscheduler.RowSource) (*Publisher, *stepClock) {
	t.Helper()
	i, err := integration.New("test", "1.0.0", integration.Writer(buf))
	require.NoError(t, err)

	clock := &stepClock{now: time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)}
	scheduler, err := pollscheduler.New(
		pollscheduler.Config{Interval: time.Second},
		pollscheduler.WithClock(clock),
		pollscheduler.WithLogger(log.New(false, io.Discard)),
	)
	require.NoError(t, err)

	args := arguments.ArgumentList{Hostname: "localhost", Port: 3306}
	return New(i, args, scheduler, source), clock
}

func decodePayloads(t *testing.T, buf *bytes.Buffer) []*simplejson.Json {
	t.Helper()
	var payloads []*simplejson.Json
	decoder := json.NewDecoder(buf)
	for decoder.More() {
		var raw json.RawMessage
		require.NoError(t, decoder.Decode(&raw))
		js, err := simplejson.NewJson(raw)
		require.NoError(t, err)
		payloads = append(payloads, js)
	}
	return payloads
}

func TestRun_PublishesDrainedBatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var buf bytes.Buffer
	publisher, clock := newTestPublisher(t, &buf, oneBatchSource(statementRows(2), cancel))

	published, err := publisher.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, published)
	assert.Equal(t, 1, clock.sleeps)

	payloads := decodePayloads(t, &buf)
	require.Len(t, payloads, 1)
	metrics, err := payloads[0].Get("data").GetIndex(0).Get("metrics").Array()
	require.NoError(t, err)
	require.Len(t, metrics, 2)

	first := payloads[0].Get("data").GetIndex(0).Get("metrics").GetIndex(0)
	assert.Equal(t, "MysqlQueryEventSample", first.Get("event_type").MustString())
	assert.Equal(t, "SELECT 1", first.Get("query_text").MustString())
	assert.Equal(t, "0.001234", first.Get("query_time").MustString())
	assert.Equal(t, "2024-03-09T12:00:00", first.Get("timestamp").MustString())
	assert.Equal(t, "unknown", first.Get("user").MustString())
	assert.Equal(t, "shop", first.Get("database_name").MustString())
}

func TestRun_SplitsLargeBatches(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var buf bytes.Buffer
	publisher, _ := newTestPublisher(t, &buf, oneBatchSource(statementRows(150), cancel))

	published, err := publisher.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 150, published)

	payloads := decodePayloads(t, &buf)
	require.Len(t, payloads, 2)
	firstBatch, err := payloads[0].Get("data").GetIndex(0).Get("metrics").Array()
	require.NoError(t, err)
	assert.Len(t, firstBatch, 100)
	secondBatch, err := payloads[1].Get("data").GetIndex(0).Get("metrics").Array()
	require.NoError(t, err)
	assert.Len(t, secondBatch, 50)
}

func TestRun_EmptyPollsPublishNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	polls := 0
	source := pollscheduler.RowSourceFunc(func() ([]queryevents.RawRow, error) {
		polls++
		if polls == 3 {
			cancel()
		}
		return []queryevents.RawRow{}, nil
	})

	var buf bytes.Buffer
	publisher, clock := newTestPublisher(t, &buf, source)

	published, err := publisher.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, published)
	assert.Equal(t, 3, polls)
	assert.Equal(t, 2, clock.sleeps)
	assert.Zero(t, buf.Len())
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := pollscheduler.RowSourceFunc(func() ([]queryevents.RawRow, error) {
		t.Fatal("source must not be polled after cancellation")
		return nil, nil
	})

	var buf bytes.Buffer
	publisher, _ := newTestPublisher(t, &buf, source)

	published, err := publisher.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, published)
}
