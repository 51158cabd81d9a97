package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordRating("good", "remove")
	m.RecordStale()
	m.SetQueueLength(3)
	assert.Nil(t, m.Registry())
}

func TestRecordAndServe(t *testing.T) {
	m := New()
	m.RecordRating("good", "remove")
	m.RecordRating("good", "remove")
	m.RecordStale()
	m.SetQueueLength(4)
	m.RecordReminderPoll("fired")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RatingsTotal.WithLabelValues("good", "remove")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StaleSubmissions))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.QueueLength))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "wordbot_reminder_polls_total"))
}
