package perf

import (
	"encoding/json"
	"sync"
	"testing"
	"time"
)

// TestCollector_Snapshot_SplitsKinds verifies requests and queries are aggregated separately.
func TestCollector_Snapshot_SplitsKinds(t *testing.T) {
	c := NewCollector(100)
	now := time.Now()

	c.Record(Entry{Kind: KindRequest, Path: "GET /views/{id}", StatusCode: 200, DurationMs: 10, Timestamp: now})
	c.Record(Entry{Kind: KindRequest, Path: "GET /views/{id}", StatusCode: 200, DurationMs: 30, Timestamp: now})
	c.Record(Entry{Kind: KindRequest, Path: "POST /views", StatusCode: 502, DurationMs: 2, Timestamp: now})
	c.Record(Entry{Kind: KindQuery, Path: "SELECT member", DurationMs: 5, Timestamp: now})

	snap := c.Snapshot(now.Add(-time.Minute), DefaultTopN)
	if snap.TotalRecorded != 4 || snap.Requests != 3 || snap.Queries != 1 {
		t.Errorf("counts = %d/%d/%d, want 4/3/1", snap.TotalRecorded, snap.Requests, snap.Queries)
	}
	if snap.ServerErrors != 1 {
		t.Errorf("ServerErrors = %d, want 1", snap.ServerErrors)
	}
	if len(snap.SlowestPaths) != 2 {
		t.Fatalf("SlowestPaths len = %d, want 2", len(snap.SlowestPaths))
	}
	if snap.SlowestPaths[0].Path != "GET /views/{id}" || snap.SlowestPaths[0].AvgMs != 20 {
		t.Errorf("slowest = %+v, want GET /views/{id} at 20ms", snap.SlowestPaths[0])
	}
	if len(snap.SlowestQueries) != 1 || snap.SlowestQueries[0].MaxMs != 5 {
		t.Errorf("SlowestQueries = %+v", snap.SlowestQueries)
	}
}

// TestCollector_RingBuffer_Overwrites verifies oldest entries are overwritten when full.
func TestCollector_RingBuffer_Overwrites(t *testing.T) {
	c := NewCollector(3)
	now := time.Now()

	for i := 0; i < 5; i++ {
		c.Record(Entry{Kind: KindRequest, Path: "GET /members", DurationMs: float64(i), Timestamp: now})
	}

	if c.TotalRecorded() != 5 {
		t.Errorf("TotalRecorded = %d, want 5", c.TotalRecorded())
	}
	snap := c.Snapshot(now.Add(-time.Minute), DefaultTopN)
	if len(snap.SlowestPaths) != 1 {
		t.Fatalf("SlowestPaths len = %d, want 1", len(snap.SlowestPaths))
	}
	if got := snap.SlowestPaths[0]; got.Count != 3 || got.MaxMs != 4 {
		t.Errorf("stat = %+v, want the last three entries", got)
	}
}

// TestCollector_Percentiles verifies P50/P95/P99 calculation.
func TestCollector_Percentiles(t *testing.T) {
	c := NewCollector(200)
	now := time.Now()

	for i := 1; i <= 100; i++ {
		c.Record(Entry{Kind: KindRequest, Path: "GET /members", DurationMs: float64(i), Timestamp: now})
	}

	snap := c.Snapshot(now.Add(-time.Minute), DefaultTopN)
	tests := []struct {
		name     string
		got      float64
		min, max float64
	}{
		{"p50", snap.RequestP50Ms, 49, 51},
		{"p95", snap.RequestP95Ms, 94, 96},
		{"p99", snap.RequestP99Ms, 98, 100},
	}
	for _, tt := range tests {
		if tt.got < tt.min || tt.got > tt.max {
			t.Errorf("%s = %v, want within [%v, %v]", tt.name, tt.got, tt.min, tt.max)
		}
	}
}

// TestCollector_Snapshot_FiltersBySince verifies old entries are excluded.
func TestCollector_Snapshot_FiltersBySince(t *testing.T) {
	c := NewCollector(100)
	now := time.Now()

	c.Record(Entry{Kind: KindRequest, Path: "GET /old", DurationMs: 100, Timestamp: now.Add(-2 * time.Hour)})
	c.Record(Entry{Kind: KindRequest, Path: "GET /new", DurationMs: 10, Timestamp: now})

	snap := c.Snapshot(now.Add(-time.Hour), DefaultTopN)
	if len(snap.SlowestPaths) != 1 || snap.SlowestPaths[0].Path != "GET /new" {
		t.Errorf("SlowestPaths = %+v, want only GET /new", snap.SlowestPaths)
	}
}

// TestCollector_Snapshot_TopN verifies the list is cut to topN entries.
func TestCollector_Snapshot_TopN(t *testing.T) {
	c := NewCollector(100)
	now := time.Now()
	for i, p := range []string{"a", "b", "c", "d"} {
		c.Record(Entry{Kind: KindQuery, Path: p, DurationMs: float64(i), Timestamp: now})
	}
	snap := c.Snapshot(now.Add(-time.Minute), 2)
	if len(snap.SlowestQueries) != 2 || snap.SlowestQueries[0].Path != "d" {
		t.Errorf("SlowestQueries = %+v, want d then c", snap.SlowestQueries)
	}
}

// TestSnapshot_JSON verifies the wire names served by /api/perf.
func TestSnapshot_JSON(t *testing.T) {
	data, err := json.Marshal(NewCollector(1).Snapshot(time.Now(), DefaultTopN))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, key := range []string{"total_recorded", "request_p95_ms", "slowest_paths", "slowest_queries"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
}

// TestCollector_ConcurrentWrites verifies goroutine safety of Record.
func TestCollector_ConcurrentWrites(t *testing.T) {
	c := NewCollector(1000)
	now := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				c.Record(Entry{Kind: KindRequest, Path: "GET /members", DurationMs: float64(n), Timestamp: now})
			}
		}(i)
	}
	wg.Wait()
	if c.TotalRecorded() != 1000 {
		t.Errorf("TotalRecorded = %d, want 1000", c.TotalRecorded())
	}
}

// BenchmarkCollectorRecord measures per-call cost of Record.
func BenchmarkCollectorRecord(b *testing.B) {
	c := NewCollector(DefaultRingSize)
	e := Entry{Kind: KindRequest, Path: "GET /members", StatusCode: 200, DurationMs: 1.5, Timestamp: time.Now()}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Record(e)
	}
}
