// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sidecore

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

// MetricType identifies a registered metric's aggregation kind.
type MetricType int

const (
	MetricCounter MetricType = iota
	MetricGauge
	MetricHistogram
)

func (t MetricType) String() string {
	switch t {
	case MetricCounter:
		return "counter"
	case MetricGauge:
		return "gauge"
	case MetricHistogram:
		return "histogram"
	default:
		return "unknown"
	}
}

const maxMetrics = 256

// MetricConfig describes a metric at registration time.
type MetricConfig struct {
	Name        string
	Description string
	Type        MetricType
	// LabelNames is accepted for API compatibility but, per the native
	// collector this package replaces, label values passed to
	// CounterInc/GaugeSet/HistogramObserve/Get always collapse onto a
	// single series (see DESIGN.md). Declaring label names does not
	// enable per-combination dispatch.
	LabelNames []string
}

// MetricValue is a point-in-time read of a metric's accumulated state.
type MetricValue struct {
	Type    MetricType
	Counter uint64  // counter
	Gauge   float64 // gauge
	Count   uint64  // histogram
	Sum     float64 // histogram
}

type metric struct {
	cfg     MetricConfig
	counter uint64
	gauge   float64
	count   uint64
	sum     float64
}

// MetricsCollector is a name-indexed registry of counter, gauge, and
// histogram metrics with a Prometheus-compatible text export. It is
// capped at 256 registered metrics, matching the native collector's fixed
// table; registration past the cap fails with ErrFull.
//
// Every metric accepts label values for API symmetry with the native
// collector, but — as that collector does — always aggregates onto a
// single series regardless of the label values passed in. See
// DESIGN.md's Open Question entry before building label-keyed dispatch
// on top of this type.
type MetricsCollector struct {
	mu      sync.Mutex
	byName  map[string]int
	metrics []*metric
}

// NewMetricsCollector creates an empty collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		byName: make(map[string]int),
	}
}

// Register adds a metric. Returns ErrInvalid for an empty name, a name
// longer than 128 bytes, or a name that is already registered (regardless
// of whether the type matches — names must be unique), and ErrFull once
// 256 metrics are registered.
func (c *MetricsCollector) Register(cfg MetricConfig) error {
	if cfg.Name == "" || len(cfg.Name) > 128 {
		return ErrInvalid
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.byName[cfg.Name]; ok {
		return ErrInvalid
	}

	if len(c.metrics) >= maxMetrics {
		return ErrFull
	}

	c.byName[cfg.Name] = len(c.metrics)
	c.metrics = append(c.metrics, &metric{cfg: cfg})
	return nil
}

func (c *MetricsCollector) find(name string) (*metric, error) {
	idx, ok := c.byName[name]
	if !ok {
		return nil, ErrInvalid
	}
	return c.metrics[idx], nil
}

// CounterInc adds delta to a counter. Counters are monotonic: delta must
// not be negative. labelValues is accepted but ignored — see
// MetricsCollector's doc comment.
func (c *MetricsCollector) CounterInc(name string, labelValues []string, delta uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, err := c.find(name)
	if err != nil {
		return err
	}
	if m.cfg.Type != MetricCounter {
		return ErrInvalid
	}
	m.counter += delta
	return nil
}

// GaugeSet overwrites a gauge's value (last write wins). labelValues is
// accepted but ignored — see MetricsCollector's doc comment.
func (c *MetricsCollector) GaugeSet(name string, labelValues []string, value float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, err := c.find(name)
	if err != nil {
		return err
	}
	if m.cfg.Type != MetricGauge {
		return ErrInvalid
	}
	m.gauge = value
	return nil
}

// HistogramObserve records one observation: count increments by 1, sum
// increases by value. labelValues is accepted but ignored — see
// MetricsCollector's doc comment.
func (c *MetricsCollector) HistogramObserve(name string, labelValues []string, value float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, err := c.find(name)
	if err != nil {
		return err
	}
	if m.cfg.Type != MetricHistogram {
		return ErrInvalid
	}
	m.count++
	m.sum += value
	return nil
}

// Get reads a metric's current accumulated state. labelValues is
// accepted but ignored — see MetricsCollector's doc comment.
func (c *MetricsCollector) Get(name string, labelValues []string) (MetricValue, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, err := c.find(name)
	if err != nil {
		return MetricValue{}, err
	}
	return MetricValue{
		Type:    m.cfg.Type,
		Counter: m.counter,
		Gauge:   m.gauge,
		Count:   m.count,
		Sum:     m.sum,
	}, nil
}

// ExportPrometheus writes every registered metric to w in Prometheus text
// exposition format, in registration order, and returns the number of
// bytes written. Counters render an integer value; gauges render %g;
// histograms render "<name>_count" and "<name>_sum" lines with no bare
// "<name>" line, matching the native collector's export.
func (c *MetricsCollector) ExportPrometheus(w io.Writer) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var b strings.Builder
	for _, m := range c.metrics {
		fmt.Fprintf(&b, "# HELP %s %s\n", m.cfg.Name, m.cfg.Description)
		fmt.Fprintf(&b, "# TYPE %s %s\n", m.cfg.Name, m.cfg.Type)

		switch m.cfg.Type {
		case MetricCounter:
			fmt.Fprintf(&b, "%s %s\n", m.cfg.Name, strconv.FormatUint(m.counter, 10))
		case MetricGauge:
			fmt.Fprintf(&b, "%s %g\n", m.cfg.Name, m.gauge)
		case MetricHistogram:
			fmt.Fprintf(&b, "%s_count %d\n", m.cfg.Name, m.count)
			fmt.Fprintf(&b, "%s_sum %g\n", m.cfg.Name, m.sum)
		}
	}

	n, err := io.WriteString(w, b.String())
	return n, err
}

// Destroy discards all registered metrics. The collector must not be
// used afterward.
func (c *MetricsCollector) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.byName = nil
	c.metrics = nil
}
