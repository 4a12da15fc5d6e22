package metrics

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func withEnabled(t *testing.T, on bool) {
	t.Helper()
	prev := Enabled()
	SetEnabled(on)
	t.Cleanup(func() { SetEnabled(prev) })
}

func TestTimingMetric_Record(t *testing.T) {
	withEnabled(t, true)
	m := newTimingMetric("test")
	m.Record(2 * time.Millisecond)
	m.Record(4 * time.Millisecond)

	if m.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", m.Count())
	}
	stats := m.Stats()
	if stats.Name != "test" {
		t.Errorf("Name = %q", stats.Name)
	}
	if stats.Min != 2*time.Millisecond || stats.Max != 4*time.Millisecond || stats.Avg != 3*time.Millisecond {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if !strings.Contains(stats.String(), "count=2 avg=3ms") {
		t.Errorf("String() = %q", stats.String())
	}

	m.Reset()
	if s := m.Stats(); s.Count != 0 || s.Avg != 0 || s.Min != 0 {
		t.Errorf("Reset left data: %+v", s)
	}
}

func TestTimingMetric_ConcurrentRecord(t *testing.T) {
	withEnabled(t, true)
	m := newTimingMetric("concurrent")

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(d time.Duration) {
			defer wg.Done()
			m.Record(d)
		}(time.Duration(i) * time.Microsecond)
	}
	wg.Wait()

	s := m.Stats()
	if s.Count != 50 || s.Min != time.Microsecond || s.Max != 50*time.Microsecond {
		t.Errorf("unexpected stats after concurrent records: %+v", s)
	}
}

func TestTimer_DisabledIsNoop(t *testing.T) {
	withEnabled(t, false)
	m := newTimingMetric("off")
	Timer(m)()
	if m.Count() != 0 {
		t.Errorf("disabled timer recorded %d samples", m.Count())
	}

	SetEnabled(true)
	Timer(m)()
	if m.Count() != 1 {
		t.Errorf("enabled timer recorded %d samples, want 1", m.Count())
	}
	Timer(nil)()
}

func TestAllTimingStats_OnlyIncludesUsed(t *testing.T) {
	withEnabled(t, true)
	ResetAll()
	defer ResetAll()
	Export.Record(time.Millisecond)

	stats := AllTimingStats()
	if len(stats) != 1 || stats[0].Name != "export" {
		t.Errorf("AllTimingStats() = %+v, want only export", stats)
	}
}
