package controller

import (
	"sync"
	"time"
)

// Metrics tracks reconciliation counters for monitoring and the status
// surfaces. Counters are tracked per resource type so a misbehaving kind
// is visible on its own.
type Metrics struct {
	mu sync.RWMutex

	resourceMetrics map[ResourceType]*resourceTypeMetrics

	totalAttempts  int64
	totalSuccesses int64
	totalFailures  int64
}

// resourceTypeMetrics holds reconciliation counters for one resource type.
type resourceTypeMetrics struct {
	ResourceType ResourceType
	Attempts     int64
	Successes    int64
	Failures     int64
	LastAttempt  time.Time
	LastSuccess  time.Time
	LastFailure  time.Time
}

// NewMetrics creates an empty metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		resourceMetrics: make(map[ResourceType]*resourceTypeMetrics),
	}
}

func (m *Metrics) getOrCreate(resourceType ResourceType) *resourceTypeMetrics {
	if metrics, exists := m.resourceMetrics[resourceType]; exists {
		return metrics
	}

	metrics := &resourceTypeMetrics{
		ResourceType: resourceType,
	}
	m.resourceMetrics[resourceType] = metrics
	return metrics
}

// RecordAttempt records a reconciliation attempt.
func (m *Metrics) RecordAttempt(resourceType ResourceType) {
	m.mu.Lock()
	defer m.mu.Unlock()

	metrics := m.getOrCreate(resourceType)
	metrics.Attempts++
	metrics.LastAttempt = time.Now()
	m.totalAttempts++
}

// RecordSuccess records a successful reconciliation.
func (m *Metrics) RecordSuccess(resourceType ResourceType) {
	m.mu.Lock()
	defer m.mu.Unlock()

	metrics := m.getOrCreate(resourceType)
	metrics.Successes++
	metrics.LastSuccess = time.Now()
	m.totalSuccesses++
}

// RecordFailure records a failed reconciliation.
func (m *Metrics) RecordFailure(resourceType ResourceType) {
	m.mu.Lock()
	defer m.mu.Unlock()

	metrics := m.getOrCreate(resourceType)
	metrics.Failures++
	metrics.LastFailure = time.Now()
	m.totalFailures++
}

// MetricsSummary is a point-in-time snapshot of the counters.
type MetricsSummary struct {
	TotalAttempts  int64                    `json:"total_attempts"`
	TotalSuccesses int64                    `json:"total_successes"`
	TotalFailures  int64                    `json:"total_failures"`
	FailureRate    float64                  `json:"failure_rate"`
	PerType        []ResourceTypeMetricView `json:"per_type"`
}

// ResourceTypeMetricView is the per-type slice of a MetricsSummary.
type ResourceTypeMetricView struct {
	ResourceType string    `json:"resource_type"`
	Attempts     int64     `json:"attempts"`
	Successes    int64     `json:"successes"`
	Failures     int64     `json:"failures"`
	LastAttempt  time.Time `json:"last_attempt,omitempty"`
	LastSuccess  time.Time `json:"last_success,omitempty"`
	LastFailure  time.Time `json:"last_failure,omitempty"`
}

// Summary returns a snapshot of all counters.
func (m *Metrics) Summary() MetricsSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summary := MetricsSummary{
		TotalAttempts:  m.totalAttempts,
		TotalSuccesses: m.totalSuccesses,
		TotalFailures:  m.totalFailures,
	}
	if m.totalAttempts > 0 {
		summary.FailureRate = float64(m.totalFailures) / float64(m.totalAttempts)
	}

	for _, metrics := range m.resourceMetrics {
		summary.PerType = append(summary.PerType, ResourceTypeMetricView{
			ResourceType: string(metrics.ResourceType),
			Attempts:     metrics.Attempts,
			Successes:    metrics.Successes,
			Failures:     metrics.Failures,
			LastAttempt:  metrics.LastAttempt,
			LastSuccess:  metrics.LastSuccess,
			LastFailure:  metrics.LastFailure,
		})
	}

	return summary
}
