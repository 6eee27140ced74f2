package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/k-lindqvist/ctxwatch/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := New(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func snapshotAt(ts time.Time, sessionID string, tokens int64, pct float64) *models.UsageSnapshot {
	return &models.UsageSnapshot{
		Timestamp:     ts,
		SessionID:     sessionID,
		Engine:        models.EngineClaude,
		Model:         "claude-sonnet-4-5",
		CurrentTokens: tokens,
		WindowSize:    200_000,
		Percentage:    pct,
		Level:         models.LevelLow,
	}
}

func TestRecordAndLatestSnapshot(t *testing.T) {
	database := newTestDB(t)

	now := time.Now().UTC().Truncate(time.Second)
	older := snapshotAt(now.Add(-time.Minute), "sess-1", 1000, 0.5)
	newer := snapshotAt(now, "sess-1", 5000, 2.5)

	for _, s := range []*models.UsageSnapshot{older, newer} {
		if err := database.RecordSnapshot(s); err != nil {
			t.Fatalf("RecordSnapshot() error: %v", err)
		}
		if s.ID == 0 {
			t.Error("RecordSnapshot should backfill the row ID")
		}
	}

	latest, err := database.GetLatestSnapshot("sess-1")
	if err != nil {
		t.Fatalf("GetLatestSnapshot() error: %v", err)
	}
	if latest == nil || latest.CurrentTokens != 5000 {
		t.Errorf("latest = %+v, want the newer snapshot", latest)
	}
	if latest.Engine != models.EngineClaude {
		t.Errorf("Engine = %s, want claude", latest.Engine)
	}

	missing, err := database.GetLatestSnapshot("no-such-session")
	if err != nil {
		t.Fatalf("GetLatestSnapshot() error: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown session, got %+v", missing)
	}
}

func TestGetSessionSeries(t *testing.T) {
	database := newTestDB(t)

	now := time.Now().UTC()
	for i, tokens := range []int64{1000, 2000, 3000} {
		s := snapshotAt(now.Add(time.Duration(i)*time.Minute), "sess-1", tokens, float64(tokens)/2000)
		if err := database.RecordSnapshot(s); err != nil {
			t.Fatalf("RecordSnapshot() error: %v", err)
		}
	}
	// Another session's rows must not leak into the series.
	if err := database.RecordSnapshot(snapshotAt(now, "sess-2", 9999, 5)); err != nil {
		t.Fatalf("RecordSnapshot() error: %v", err)
	}

	series, err := database.GetSessionSeries("sess-1", models.TimeRangeAllTime)
	if err != nil {
		t.Fatalf("GetSessionSeries() error: %v", err)
	}
	if len(series) != 3 {
		t.Fatalf("got %d snapshots, want 3", len(series))
	}
	for i := 1; i < len(series); i++ {
		if series[i].Timestamp.Before(series[i-1].Timestamp) {
			t.Error("series must be ordered oldest first")
		}
	}
	if series[0].CurrentTokens != 1000 || series[2].CurrentTokens != 3000 {
		t.Errorf("unexpected series ordering: %v, %v", series[0].CurrentTokens, series[2].CurrentTokens)
	}
}

func TestGetSessionSeriesTimeRange(t *testing.T) {
	database := newTestDB(t)

	now := time.Now().UTC()
	recent := snapshotAt(now.Add(-10*time.Minute), "sess-1", 2000, 1)
	ancient := snapshotAt(now.Add(-48*time.Hour), "sess-1", 1000, 0.5)
	for _, s := range []*models.UsageSnapshot{recent, ancient} {
		if err := database.RecordSnapshot(s); err != nil {
			t.Fatalf("RecordSnapshot() error: %v", err)
		}
	}

	series, err := database.GetSessionSeries("sess-1", models.TimeRange24Hours)
	if err != nil {
		t.Fatalf("GetSessionSeries() error: %v", err)
	}
	if len(series) != 1 {
		t.Fatalf("got %d snapshots, want 1 inside 24h", len(series))
	}
	if series[0].CurrentTokens != 2000 {
		t.Errorf("kept the wrong snapshot: %+v", series[0])
	}
}

func TestGetHourlyUsage(t *testing.T) {
	database := newTestDB(t)

	base := time.Now().UTC().Truncate(time.Hour).Add(-2 * time.Hour)
	for i, pct := range []float64{10, 20, 60} {
		s := snapshotAt(base.Add(time.Duration(i)*time.Minute), "sess-1", int64(1000*(i+1)), pct)
		if err := database.RecordSnapshot(s); err != nil {
			t.Fatalf("RecordSnapshot() error: %v", err)
		}
	}

	hours, err := database.GetHourlyUsage(models.TimeRangeAllTime)
	if err != nil {
		t.Fatalf("GetHourlyUsage() error: %v", err)
	}
	if len(hours) != 1 {
		t.Fatalf("got %d hourly buckets, want 1", len(hours))
	}
	bucket := hours[0]
	if bucket.Samples != 3 {
		t.Errorf("Samples = %d, want 3", bucket.Samples)
	}
	if bucket.AvgPercentage != 30 {
		t.Errorf("AvgPercentage = %v, want 30", bucket.AvgPercentage)
	}
	if bucket.PeakTokens != 3000 {
		t.Errorf("PeakTokens = %d, want 3000", bucket.PeakTokens)
	}
}

func TestPruneBefore(t *testing.T) {
	database := newTestDB(t)

	now := time.Now().UTC()
	if err := database.RecordSnapshot(snapshotAt(now.Add(-72*time.Hour), "sess-1", 1, 1)); err != nil {
		t.Fatal(err)
	}
	if err := database.RecordSnapshot(snapshotAt(now, "sess-1", 2, 2)); err != nil {
		t.Fatal(err)
	}

	pruned, err := database.PruneBefore(now.Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("PruneBefore() error: %v", err)
	}
	if pruned != 1 {
		t.Errorf("pruned = %d, want 1", pruned)
	}

	count, err := database.CountSnapshots()
	if err != nil {
		t.Fatalf("CountSnapshots() error: %v", err)
	}
	if count != 1 {
		t.Errorf("CountSnapshots() = %d, want 1", count)
	}
}
