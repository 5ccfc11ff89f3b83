package measure

import "time"

// Measure collects a Metric per stage.
type Measure interface {
	AddMetric(name string, concurrent int) Metric
	GetMetric(name string) Metric
	AllMetrics() map[string]Metric
}

// Metric aggregates the durations reported by a stage.
type Metric interface {
	AddDuration(elapsed time.Duration)
	AddTransportDuration(inputStageName string, elapsed time.Duration)
	AVGDuration() time.Duration
	AVGTransportDuration() map[string]*TransportInfo
	SetTotalDuration(endDuration time.Duration)
	GetTotalDuration() time.Duration
	Total() int64
}
