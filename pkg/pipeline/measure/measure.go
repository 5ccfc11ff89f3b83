package measure

import (
	"sync"
)

type DefaultMeasure struct {
	mu    sync.Mutex
	Steps map[string]Metric
}

func NewDefaultMeasure() *DefaultMeasure {
	return &DefaultMeasure{
		Steps: make(map[string]Metric),
	}
}

// AddMetric registers a new metric under name, replacing any previous one.
func (m *DefaultMeasure) AddMetric(name string, concurrent int) Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	mt := &DefaultMetric{
		mu:            &sync.Mutex{},
		allTransports: make(map[string]*TransportInfo),
		concurrent:    concurrent,
	}
	m.Steps[name] = mt

	return mt
}

func (m *DefaultMeasure) GetMetric(name string) Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.Steps[name]
}

func (m *DefaultMeasure) AllMetrics() map[string]Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	res := make(map[string]Metric, len(m.Steps))
	for name, mt := range m.Steps {
		res[name] = mt
	}

	return res
}

var _ Measure = (*DefaultMeasure)(nil)
