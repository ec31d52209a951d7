package status

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector exposes a Registry to Prometheus as untyped gauges
// Metric names are derived from registry keys: "host.update.cycles" -> "<namespace>_host_update_cycles"
type Collector struct {
	namespace string
	registry  *Registry
}

// NewCollector wraps r for registration with a prometheus.Registerer
func NewCollector(namespace string, r *Registry) *Collector {
	return &Collector{
		namespace: namespace,
		registry:  r,
	}
}

// Describe implements prometheus.Collector
// Metrics appear lazily, so the collector is registered unchecked
func (c *Collector) Describe(chan<- *prometheus.Desc) {}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for key, value := range c.registry.Snapshot() {
		desc := prometheus.NewDesc(c.metricName(key), "scape status metric "+key, nil, nil)
		m, err := prometheus.NewConstMetric(desc, prometheus.GaugeValue, value)
		if err != nil {
			ch <- prometheus.NewInvalidMetric(desc, err)
			continue
		}
		ch <- m
	}
}

func (c *Collector) metricName(key string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, key)
	return prometheus.BuildFQName(c.namespace, "", name)
}
