package measure

import (
	"sync"
	"time"
)

type TransportInfo struct {
	Elapsed time.Duration
	total   int64
}

type DefaultMetric struct {
	allTransports map[string]*TransportInfo
	mu            *sync.Mutex
	EndDuration   time.Duration
	stageElapsed  time.Duration
	total         int64
	concurrent    int
}

func (mt *DefaultMetric) AddDuration(elapsed time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.total++
	mt.stageElapsed += elapsed
}

func (mt *DefaultMetric) Total() int64 {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.total
}

func (mt *DefaultMetric) SetTotalDuration(endDuration time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.EndDuration = endDuration
}

func (mt *DefaultMetric) GetTotalDuration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.EndDuration
}

func (mt *DefaultMetric) AddTransportDuration(inputStageName string, elapsed time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	if mt.allTransports[inputStageName] == nil {
		mt.allTransports[inputStageName] = &TransportInfo{}
	}

	ch := mt.allTransports[inputStageName]
	ch.Elapsed += elapsed
	ch.total++
}

func (mt *DefaultMetric) AVGDuration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	if mt.total == 0 {
		return time.Duration(0)
	}

	return round(time.Duration(float64(mt.stageElapsed) / float64(mt.total)))
}

// AVGTransportDuration returns, per input stage, the average time spent waiting for an item.
func (mt *DefaultMetric) AVGTransportDuration() map[string]*TransportInfo {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	res := make(map[string]*TransportInfo, len(mt.allTransports))

	for name, ch := range mt.allTransports {
		avg := &TransportInfo{total: ch.total}
		if ch.total > 0 && mt.concurrent > 0 {
			avg.Elapsed = round(time.Duration(float64(ch.Elapsed) / float64(ch.total) / float64(mt.concurrent)))
		}

		res[name] = avg
	}

	return res
}

func round(d time.Duration) time.Duration {
	switch {
	case d > time.Hour:
		d = d.Round(time.Hour)
	case d > time.Minute:
		d = d.Round(time.Minute)
	case d > time.Second:
		d = d.Round(time.Second)
	case d > time.Millisecond:
		d = d.Round(time.Millisecond)
	case d > time.Microsecond:
		d = d.Round(time.Microsecond)
	}

	return d
}
