package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectors_RecordPoll(t *testing.T) {
	c := New()

	c.RecordPoll(3, 0.25)
	c.RecordPoll(0, 0.1)

	assert.Equal(t, float64(2), testutil.ToFloat64(c.PollsTotal))
	assert.Equal(t, float64(3), testutil.ToFloat64(c.EventsBuiltTotal))
	assert.Equal(t, 1, testutil.CollectAndCount(c.PollDuration))
}

func TestCollectors_RecordPollFailure(t *testing.T) {
	c := New()
	c.RecordPollFailure()
	assert.Equal(t, float64(1), testutil.ToFloat64(c.PollFailuresTotal))
	assert.Equal(t, float64(0), testutil.ToFloat64(c.PollsTotal))
}

func TestCollectors_RecordServed(t *testing.T) {
	c := New()
	c.SetCacheSize(3)
	c.RecordServed(2)
	assert.Equal(t, float64(1), testutil.ToFloat64(c.EventsServedTotal))
	assert.Equal(t, float64(2), testutil.ToFloat64(c.EventCacheSize))
}

func TestCollectors_NilReceiver(t *testing.T) {
	var c *Collectors
	c.RecordPoll(1, 1)
	c.RecordPollFailure()
	c.RecordServed(0)
	c.SetCacheSize(0)
}

func TestCollectors_Handler(t *testing.T) {
	c := New()
	c.RecordPoll(1, 0.01)

	recorder := httptest.NewRecorder()
	c.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "query_event_polls_total 1")
	assert.Contains(t, recorder.Body.String(), "query_event_poll_duration_seconds_bucket")
}
