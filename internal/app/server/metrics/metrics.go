package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors. It implements geo.Observer and
// replication.Observer.
type Metrics struct {
	registry *prometheus.Registry

	resolveTotal  *prometheus.CounterVec
	pushTotal     *prometheus.CounterVec
	pushDuration  *prometheus.HistogramVec
	requestsTotal *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.resolveTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vigil",
		Name:      "geo_resolve_total",
		Help:      "Zipcode resolutions by result (hit, miss, fail)",
	}, []string{"result"})
	m.pushTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vigil",
		Name:      "replication_push_total",
		Help:      "Snapshot pushes per endpoint and result",
	}, []string{"endpoint", "result"})
	m.pushDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vigil",
		Name:      "replication_push_duration_seconds",
		Help:      "Time spent pushing a snapshot to one endpoint",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})
	m.requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vigil",
		Name:      "http_requests_total",
		Help:      "HTTP requests by operation and status",
	}, []string{"operation", "status"})

	m.registry.MustRegister(
		m.resolveTotal,
		m.pushTotal,
		m.pushDuration,
		m.requestsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveResolve(result string) {
	m.resolveTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObservePush(endpoint string, ok bool, took time.Duration) {
	result := "ok"
	if !ok {
		result = "fail"
	}
	m.pushTotal.WithLabelValues(endpoint, result).Inc()
	if took > 0 {
		m.pushDuration.WithLabelValues(endpoint).Observe(took.Seconds())
	}
}

func (m *Metrics) ObserveRequest(operation string, status int) {
	m.requestsTotal.WithLabelValues(operation, strconv.Itoa(status)).Inc()
}

// WatchVigils exports the number of stored vigils, read at scrape time.
func (m *Metrics) WatchVigils(count func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "vigil",
		Name:      "vigils",
		Help:      "Vigils currently held in memory",
	}, func() float64 { return float64(count()) }))
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
