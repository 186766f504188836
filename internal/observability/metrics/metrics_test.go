package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestClinicMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewClinicMetrics(reg)
	m.ObserveMutation("injections", "create", "ok")
	m.ObserveCascade("injection", "derived")
	m.ObserveRequest("/api/patients", "GET", "200", 0.05)
	m.ObserveLogin("ok")
}

func TestClinicMetricsNilSafe(t *testing.T) {
	var m *ClinicMetrics
	m.ObserveMutation("patients", "delete", "error")
	m.ObserveCascade("followup", "skipped")
	m.ObserveRequest("/healthz", "GET", "200", 0.01)
	m.ObserveLogin("rejected")
}
