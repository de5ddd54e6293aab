package embed

import (
	"testing"
	"time"
)

func TestStatsSnapshotPercentiles(t *testing.T) {
	stats := NewStats(time.Hour)
	stats.Record(100, 4)
	stats.Record(200, 4)
	stats.Record(300, 4)
	stats.Record(400, 4)
	stats.Record(500, 4)

	snap := stats.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.MinMs != 100 {
		t.Fatalf("expected min=100, got %d", snap.MinMs)
	}
	if snap.MaxMs != 500 {
		t.Fatalf("expected max=500, got %d", snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
}

func TestStatsTracksThroughputAndRetries(t *testing.T) {
	stats := NewStats(time.Hour)
	stats.Record(100, 16)
	stats.Record(150, 16)
	stats.Record(50, 4)
	stats.RecordRetry()
	stats.RecordRetry()

	snap := stats.Snapshot()
	if snap.TotalTexts != 36 {
		t.Errorf("expected total_texts=36, got %d", snap.TotalTexts)
	}
	if snap.AvgBatch != 12 {
		t.Errorf("expected avg_batch=12, got %f", snap.AvgBatch)
	}
	if snap.Retries != 2 {
		t.Errorf("expected retries=2, got %d", snap.Retries)
	}
}

func TestStatsRetriesSurviveSamplePruning(t *testing.T) {
	stats := NewStats(10 * time.Millisecond)
	stats.Record(100, 8)
	stats.RecordRetry()
	time.Sleep(25 * time.Millisecond)

	snap := stats.Snapshot()
	if snap.Count != 0 {
		t.Fatalf("expected count=0 after prune, got %d", snap.Count)
	}
	if snap.Retries != 1 {
		t.Errorf("retry total should outlive the latency window, got %d", snap.Retries)
	}
}

func TestStatsPrunesExpiredSamples(t *testing.T) {
	stats := NewStats(10 * time.Millisecond)
	stats.Record(100, 1)
	time.Sleep(25 * time.Millisecond)

	snap := stats.Snapshot()
	if snap.Count != 0 {
		t.Fatalf("expected count=0 after prune, got %d", snap.Count)
	}

	stats.Record(200, 1)
	snap = stats.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected count=1 for fresh sample, got %d", snap.Count)
	}
}

func TestStatsRecordClampsNegativeDuration(t *testing.T) {
	stats := NewStats(time.Hour)
	stats.Record(-10, -1)
	snap := stats.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected count=1, got %d", snap.Count)
	}
	if snap.MinMs != 0 || snap.MaxMs != 0 {
		t.Fatalf("expected clamped duration=0, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
	if snap.TotalTexts != 0 {
		t.Fatalf("expected clamped texts=0, got %d", snap.TotalTexts)
	}
}
