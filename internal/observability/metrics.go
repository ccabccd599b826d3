// Package observability exposes Prometheus collectors for a design run.
// Metrics live on a private registry so parallel runs and tests never
// collide on registration; the CLI gathers a snapshot at the end of a run.
package observability

import (
	"fmt"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Metrics reports design-run activity.
type Metrics struct {
	registry *prometheus.Registry

	llmRequests    *prometheus.CounterVec
	llmTokens      *prometheus.CounterVec
	toolExecutions *prometheus.CounterVec
	iterations     prometheus.Counter
	roleUpdates    *prometheus.CounterVec
	stageDuration  *prometheus.HistogramVec
}

// MustNewMetrics constructs the collectors on a fresh private registry.
// Registration errors panic, mirroring promauto semantics.
func MustNewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		llmRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "avion",
				Subsystem: "llm",
				Name:      "requests_total",
				Help:      "LLM completion requests by role and outcome.",
			},
			[]string{"role", "status"},
		),
		llmTokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "avion",
				Subsystem: "llm",
				Name:      "tokens_total",
				Help:      "Tokens consumed by role and direction.",
			},
			[]string{"role", "direction"},
		),
		toolExecutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "avion",
				Subsystem: "tools",
				Name:      "executions_total",
				Help:      "Tool executions by tool name and outcome.",
			},
			[]string{"tool", "status"},
		),
		iterations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "avion",
				Subsystem: "workflow",
				Name:      "iterations_total",
				Help:      "Completed design iterations.",
			},
		),
		roleUpdates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "avion",
				Subsystem: "workflow",
				Name:      "role_updates_total",
				Help:      "Design updates by role (maintains excluded).",
			},
			[]string{"role"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "avion",
				Subsystem: "workflow",
				Name:      "stage_duration_seconds",
				Help:      "Wall time per role per iteration.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"role"},
		),
	}

	registry.MustRegister(
		m.llmRequests, m.llmTokens, m.toolExecutions,
		m.iterations, m.roleUpdates, m.stageDuration,
	)
	return m
}

func (m *Metrics) ObserveLLMRequest(role, status string) {
	m.llmRequests.WithLabelValues(role, status).Inc()
}

func (m *Metrics) ObserveTokens(role string, prompt, completion int) {
	m.llmTokens.WithLabelValues(role, "prompt").Add(float64(prompt))
	m.llmTokens.WithLabelValues(role, "completion").Add(float64(completion))
}

func (m *Metrics) ObserveToolExecution(tool, status string) {
	m.toolExecutions.WithLabelValues(tool, status).Inc()
}

func (m *Metrics) ObserveIteration() {
	m.iterations.Inc()
}

func (m *Metrics) ObserveRoleUpdate(role string) {
	m.roleUpdates.WithLabelValues(role).Inc()
}

func (m *Metrics) ObserveStageDuration(role string, seconds float64) {
	m.stageDuration.WithLabelValues(role).Observe(seconds)
}

// Registry exposes the private registry, e.g. for an HTTP handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Snapshot gathers all counters into a flat name{labels}=value map for the
// end-of-run summary.
func (m *Metrics) Snapshot() (map[string]float64, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, err
	}

	snapshot := make(map[string]float64)
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			key := family.GetName() + labelSuffix(metric)
			switch family.GetType() {
			case dto.MetricType_COUNTER:
				snapshot[key] = metric.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				snapshot[key] = metric.GetGauge().GetValue()
			case dto.MetricType_HISTOGRAM:
				snapshot[key+"_count"] = float64(metric.GetHistogram().GetSampleCount())
				snapshot[key+"_sum"] = metric.GetHistogram().GetSampleSum()
			}
		}
	}
	return snapshot, nil
}

func labelSuffix(metric *dto.Metric) string {
	labels := metric.GetLabel()
	if len(labels) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(labels))
	for _, label := range labels {
		pairs = append(pairs, fmt.Sprintf("%s=%s", label.GetName(), label.GetValue()))
	}
	sort.Strings(pairs)
	return "{" + strings.Join(pairs, ",") + "}"
}
