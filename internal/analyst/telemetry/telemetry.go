// Package telemetry aggregates in-process pipeline metrics and exports them
// to Prometheus.
package telemetry

import (
	"log"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// MethodStats accumulates per-method execution counters.
type MethodStats struct {
	Executions int     `json:"executions"`
	Failures   int     `json:"failures"`
	TotalTime  float64 `json:"total_time_seconds"`
}

// Snapshot is a copy of the aggregate counters.
type Snapshot struct {
	RequestsTotal  int                    `json:"requests_total"`
	RequestsFailed int                    `json:"requests_failed"`
	StepsTotal     int                    `json:"steps_total"`
	StepsFailed    int                    `json:"steps_failed"`
	Methods        map[string]MethodStats `json:"methods"`
}

// Telemetry is safe for concurrent use.
type Telemetry struct {
	logger *log.Logger

	mu             sync.Mutex
	requestsTotal  int
	requestsFailed int
	stepsTotal     int
	stepsFailed    int
	methods        map[string]*MethodStats

	promRequests   *prometheus.CounterVec
	promExecutions *prometheus.CounterVec
	promDuration   prometheus.Histogram
}

// New registers the collectors with reg. Pass a fresh registry in tests to
// avoid duplicate registration.
func New(reg prometheus.Registerer) *Telemetry {
	t := &Telemetry{
		logger:  log.New(log.Writer(), "[TELEMETRY] ", log.LstdFlags),
		methods: map[string]*MethodStats{},
		promRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coanalyst_requests_total",
			Help: "Analysis requests processed, by outcome.",
		}, []string{"outcome"}),
		promExecutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coanalyst_step_executions_total",
			Help: "Sandbox step executions, by method and outcome.",
		}, []string{"method", "outcome"}),
		promDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "coanalyst_step_duration_seconds",
			Help:    "Wall-clock duration of sandbox step executions.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
	}
	if reg != nil {
		reg.MustRegister(t.promRequests, t.promExecutions, t.promDuration)
	}
	return t
}

// RequestStarted counts an incoming request.
func (t *Telemetry) RequestStarted() {
	t.mu.Lock()
	t.requestsTotal++
	t.mu.Unlock()
}

// RequestFinished records the outcome of a request.
func (t *Telemetry) RequestFinished(success bool) {
	outcome := "success"
	if !success {
		outcome = "error"
		t.mu.Lock()
		t.requestsFailed++
		t.mu.Unlock()
	}
	t.promRequests.WithLabelValues(outcome).Inc()
}

// StepExecuted records one sandbox execution.
func (t *Telemetry) StepExecuted(methodID string, success bool, seconds float64) {
	t.mu.Lock()
	t.stepsTotal++
	ms, ok := t.methods[methodID]
	if !ok {
		ms = &MethodStats{}
		t.methods[methodID] = ms
	}
	ms.Executions++
	ms.TotalTime += seconds
	outcome := "success"
	if !success {
		outcome = "failure"
		t.stepsFailed++
		ms.Failures++
	}
	t.mu.Unlock()

	t.promExecutions.WithLabelValues(methodID, outcome).Inc()
	t.promDuration.Observe(seconds)
}

// Stats returns a copy of the counters.
func (t *Telemetry) Stats() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	snap := Snapshot{
		RequestsTotal:  t.requestsTotal,
		RequestsFailed: t.requestsFailed,
		StepsTotal:     t.stepsTotal,
		StepsFailed:    t.stepsFailed,
		Methods:        map[string]MethodStats{},
	}
	for id, ms := range t.methods {
		snap.Methods[id] = *ms
	}
	return snap
}
