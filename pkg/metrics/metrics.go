package metrics

import (
	"sort"
	"strings"
	"sync"
	"time"
)

const maxObservations = 100

// Collector - простой потокобезопасный сборщик счётчиков и задержек
type Collector struct {
	counters  map[string]map[string]int64
	latencies map[string][]time.Duration
	mutex     sync.RWMutex
}

func NewCollector() *Collector {
	return &Collector{
		counters:  make(map[string]map[string]int64),
		latencies: make(map[string][]time.Duration),
	}
}

// labelKey собирает ключ из всех меток в детерминированном порядке
func labelKey(labels map[string]string) string {
	if len(labels) == 0 {
		return "default"
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+":"+labels[k])
	}
	return strings.Join(parts, ",")
}

func (c *Collector) IncrementCounter(name string, labels map[string]string) {
	if c == nil {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, exists := c.counters[name]; !exists {
		c.counters[name] = make(map[string]int64)
	}
	c.counters[name][labelKey(labels)]++
}

// ObserveLatency хранит только последние maxObservations значений
func (c *Collector) ObserveLatency(name string, d time.Duration) {
	if c == nil {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.latencies[name] = append(c.latencies[name], d)
	if len(c.latencies[name]) > maxObservations {
		c.latencies[name] = c.latencies[name][len(c.latencies[name])-maxObservations:]
	}
}

func (c *Collector) Counters() map[string]map[string]int64 {
	if c == nil {
		return map[string]map[string]int64{}
	}
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	out := make(map[string]map[string]int64, len(c.counters))
	for name, labels := range c.counters {
		out[name] = make(map[string]int64, len(labels))
		for label, value := range labels {
			out[name][label] = value
		}
	}
	return out
}

func (c *Collector) Latencies() map[string]map[string]float64 {
	if c == nil {
		return map[string]map[string]float64{}
	}
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	out := make(map[string]map[string]float64)
	for name, durations := range c.latencies {
		if len(durations) == 0 {
			continue
		}
		var sum, max time.Duration
		for _, d := range durations {
			sum += d
			if d > max {
				max = d
			}
		}
		out[name] = map[string]float64{
			"avg_ms": float64(sum) / float64(len(durations)) / float64(time.Millisecond),
			"max_ms": float64(max) / float64(time.Millisecond),
			"count":  float64(len(durations)),
		}
	}
	return out
}

type Snapshot struct {
	Counters  map[string]map[string]int64   `json:"counters"`
	Latencies map[string]map[string]float64 `json:"latencies"`
}

func (c *Collector) Snapshot() Snapshot {
	return Snapshot{Counters: c.Counters(), Latencies: c.Latencies()}
}
