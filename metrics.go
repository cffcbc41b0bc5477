package pollwatcher

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 轮询相关的 Prometheus 指标，使用独立的 Registry
type Metrics struct {
	Polls        prometheus.Counter
	Changes      *prometheus.CounterVec
	Actions      *prometheus.CounterVec
	PollDuration prometheus.Histogram
	registry     *prometheus.Registry
}

// NewMetrics 创建并注册全部指标
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Polls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pollwatcher_polls_total",
			Help: "Total number of poll ticks",
		}),
		Changes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pollwatcher_changes_total",
				Help: "Total number of detected changes by kind",
			},
			[]string{"kind"},
		),
		Actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pollwatcher_actions_total",
				Help: "Total number of action invocations by result",
			},
			[]string{"result"},
		),
		PollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pollwatcher_poll_duration_seconds",
			Help:    "Time spent capturing and diffing one snapshot",
			Buckets: prometheus.DefBuckets,
		}),
		registry: registry,
	}

	registry.MustRegister(m.Polls)
	registry.MustRegister(m.Changes)
	registry.MustRegister(m.Actions)
	registry.MustRegister(m.PollDuration)

	return m
}

// Handler 返回 /metrics 的 HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// observeChanges 按类型累加变更数
func (m *Metrics) observeChanges(cs ChangeSet) {
	if m == nil {
		return
	}
	m.Changes.WithLabelValues(string(ChangeDeleted)).Add(float64(len(cs.Deleted)))
	m.Changes.WithLabelValues(string(ChangeCreated)).Add(float64(len(cs.Created)))
	m.Changes.WithLabelValues(string(ChangeModified)).Add(float64(len(cs.Modified)))
}

func (m *Metrics) observePoll(seconds float64) {
	if m == nil {
		return
	}
	m.Polls.Inc()
	m.PollDuration.Observe(seconds)
}

func (m *Metrics) observeAction(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Actions.WithLabelValues(result).Inc()
}
