package metrics

import "github.com/prometheus/client_golang/prometheus"

// ClinicMetrics exposes counters/histograms for the clinical API.
type ClinicMetrics struct {
	recordsTotal   *prometheus.CounterVec
	cascadeTotal   *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	loginTotal     *prometheus.CounterVec
}

func NewClinicMetrics(reg prometheus.Registerer) *ClinicMetrics {
	m := &ClinicMetrics{
		recordsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "records",
			Name:      "mutations_total",
			Help:      "Total record mutations by collection and outcome",
		}, []string{"collection", "operation", "status"}),
		cascadeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "cascade",
			Name:      "derived_appointments_total",
			Help:      "Appointments derived by the cascade rules",
		}, []string{"source", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "http",
			Name:      "request_latency_seconds",
			Help:      "Latency of API request handling",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		loginTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Login attempts by outcome",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.recordsTotal, m.cascadeTotal, m.requestLatency, m.loginTotal)
	return m
}

func (m *ClinicMetrics) ObserveMutation(collection, operation, status string) {
	if m == nil {
		return
	}
	m.recordsTotal.WithLabelValues(collection, operation, status).Inc()
}

func (m *ClinicMetrics) ObserveCascade(source, status string) {
	if m == nil {
		return
	}
	m.cascadeTotal.WithLabelValues(source, status).Inc()
}

func (m *ClinicMetrics) ObserveRequest(route, method, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requestLatency.WithLabelValues(route, method, status).Observe(seconds)
}

func (m *ClinicMetrics) ObserveLogin(status string) {
	if m == nil {
		return
	}
	m.loginTotal.WithLabelValues(status).Inc()
}
