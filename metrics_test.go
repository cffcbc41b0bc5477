package pollwatcher

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

// TestMetricsObserve 指标按类型累加
func TestMetricsObserve(t *testing.T) {
	m := NewMetrics()

	m.observePoll(0.01)
	m.observePoll(0.02)
	m.observeChanges(ChangeSet{Deleted: []string{"a"}, Created: []string{"b", "c"}})
	m.observeAction(nil)
	m.observeAction(errors.New("exit status 1"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Polls))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Changes.WithLabelValues("deleted")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Changes.WithLabelValues("created")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Changes.WithLabelValues("modified")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Actions.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Actions.WithLabelValues("error")))
}

// TestMetricsNil 未设置指标时调用安全
func TestMetricsNil(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.observePoll(1)
		m.observeChanges(ChangeSet{Created: []string{"x"}})
		m.observeAction(nil)
	})
}

// TestMetricsHandler /metrics 输出自定义 Registry 中的指标
func TestMetricsHandler(t *testing.T) {
	m := NewMetrics()
	m.observePoll(0.5)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "pollwatcher_polls_total 1"))
}
