// Package metrics provides performance instrumentation for wb.
//
// Timing metrics cover the hot paths: terminal chart rendering, full view
// renders, chart snapshot rendering, report export and config loading.
// Collection is enabled by default and can be disabled with WB_METRICS=0.
//
// Usage:
//
//	func renderCard() {
//	    defer metrics.Timer(metrics.ChartRender)()
//	    // ...
//	}
package metrics

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"
)

var enabled atomic.Bool

func init() {
	enabled.Store(os.Getenv("WB_METRICS") != "0")
}

// Enabled reports whether metrics are being collected.
func Enabled() bool {
	return enabled.Load()
}

// SetEnabled turns collection on or off.
func SetEnabled(e bool) {
	enabled.Store(e)
}

// TimingMetric accumulates durations for one named operation. It is safe
// for concurrent use; ExportAll records from several goroutines at once.
type TimingMetric struct {
	name  string
	count atomic.Int64
	total atomic.Int64 // ns
	max   atomic.Int64 // ns
	min   atomic.Int64 // ns, 0 until the first sample
}

func newTimingMetric(name string) *TimingMetric {
	return &TimingMetric{name: name}
}

// Record adds one sample.
func (m *TimingMetric) Record(d time.Duration) {
	if !Enabled() {
		return
	}
	ns := int64(d)
	m.count.Add(1)
	m.total.Add(ns)
	for old := m.max.Load(); ns > old && !m.max.CompareAndSwap(old, ns); old = m.max.Load() {
	}
	for old := m.min.Load(); (old == 0 || ns < old) && !m.min.CompareAndSwap(old, ns); old = m.min.Load() {
	}
}

// Name returns the metric name.
func (m *TimingMetric) Name() string { return m.name }

// Count returns the number of samples.
func (m *TimingMetric) Count() int64 { return m.count.Load() }

// Stats returns a snapshot of the accumulated samples.
func (m *TimingMetric) Stats() TimingStats {
	s := TimingStats{
		Name:  m.name,
		Count: m.count.Load(),
		Total: time.Duration(m.total.Load()),
		Max:   time.Duration(m.max.Load()),
		Min:   time.Duration(m.min.Load()),
	}
	if s.Count > 0 {
		s.Avg = s.Total / time.Duration(s.Count)
	}
	return s
}

// Reset drops all samples.
func (m *TimingMetric) Reset() {
	m.count.Store(0)
	m.total.Store(0)
	m.max.Store(0)
	m.min.Store(0)
}

// TimingStats is a point-in-time view of a TimingMetric.
type TimingStats struct {
	Name  string        `json:"name"`
	Count int64         `json:"count"`
	Total time.Duration `json:"total_ns"`
	Avg   time.Duration `json:"avg_ns"`
	Max   time.Duration `json:"max_ns"`
	Min   time.Duration `json:"min_ns,omitempty"`
}

func (s TimingStats) String() string {
	return fmt.Sprintf("%s: count=%d avg=%s min=%s max=%s", s.Name, s.Count, s.Avg, s.Min, s.Max)
}

// Timer starts timing m and returns the function that records the sample.
// Use it with defer.
func Timer(m *TimingMetric) func() {
	if !Enabled() || m == nil {
		return func() {}
	}
	start := time.Now()
	return func() { m.Record(time.Since(start)) }
}

var (
	ChartRender    = newTimingMetric("chart_render")
	UIRender       = newTimingMetric("ui_render")
	SnapshotRender = newTimingMetric("snapshot_render")
	Export         = newTimingMetric("export")
	ConfigLoad     = newTimingMetric("config_load")
)

var all = []*TimingMetric{ChartRender, UIRender, SnapshotRender, Export, ConfigLoad}

// ResetAll resets every registered metric.
func ResetAll() {
	for _, m := range all {
		m.Reset()
	}
}

// AllTimingStats returns stats for the metrics that have samples.
func AllTimingStats() []TimingStats {
	stats := make([]TimingStats, 0, len(all))
	for _, m := range all {
		if m.Count() > 0 {
			stats = append(stats, m.Stats())
		}
	}
	return stats
}
