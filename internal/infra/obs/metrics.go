package obs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts inbox refreshes and thread loads by outcome. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry     *prometheus.Registry
	inboxRefresh *prometheus.CounterVec
	threadLoad   *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		inboxRefresh: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campusmarket_inbox_refresh_total",
			Help: "Inbox aggregation requests by result.",
		}, []string{"result"}),
		threadLoad: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campusmarket_thread_load_total",
			Help: "Thread loads by result.",
		}, []string{"result"}),
	}
	m.registry.MustRegister(m.inboxRefresh, m.threadLoad)
	return m
}

func (m *Metrics) InboxRefresh(ok bool) {
	if m == nil {
		return
	}
	m.inboxRefresh.WithLabelValues(result(ok)).Inc()
}

func (m *Metrics) ThreadLoad(ok bool) {
	if m == nil {
		return
	}
	m.threadLoad.WithLabelValues(result(ok)).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
