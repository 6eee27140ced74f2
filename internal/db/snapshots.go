package db

import (
	"context"
	"fmt"
	"time"

	"github.com/k-lindqvist/ctxwatch/internal/models"
)

const timeFormat = "2006-01-02 15:04:05"

// RecordSnapshot persists one usage reading.
func (db *DB) RecordSnapshot(snapshot *models.UsageSnapshot) error {
	query := `
		INSERT INTO usage_snapshots (
			timestamp, session_id, engine, model,
			current_tokens, window_size, percentage, level
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	timestamp := snapshot.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	result, err := db.ExecContext(context.Background(), query,
		timestamp.UTC().Format(timeFormat),
		snapshot.SessionID,
		string(snapshot.Engine),
		snapshot.Model,
		snapshot.CurrentTokens,
		snapshot.WindowSize,
		snapshot.Percentage,
		int(snapshot.Level),
	)
	if err != nil {
		return fmt.Errorf("failed to insert usage snapshot: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		snapshot.ID = id
	}
	return nil
}

// GetSessionSeries returns a session's snapshots inside the time range,
// oldest first, ready for charting.
func (db *DB) GetSessionSeries(sessionID string, timeRange models.TimeRange) ([]models.UsageSnapshot, error) {
	query := `
		SELECT id, timestamp, session_id, engine, model,
			   current_tokens, window_size, percentage, level
		FROM usage_snapshots
		WHERE session_id = ?` + rangeClause(timeRange) + `
		ORDER BY timestamp ASC
	`

	rows, err := db.QueryContext(context.Background(), query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query session series: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// GetLatestSnapshot returns a session's most recent reading, or nil.
func (db *DB) GetLatestSnapshot(sessionID string) (*models.UsageSnapshot, error) {
	query := `
		SELECT id, timestamp, session_id, engine, model,
			   current_tokens, window_size, percentage, level
		FROM usage_snapshots
		WHERE session_id = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT 1
	`

	rows, err := db.QueryContext(context.Background(), query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest snapshot: %w", err)
	}
	defer rows.Close()

	snapshots, err := scanSnapshots(rows)
	if err != nil || len(snapshots) == 0 {
		return nil, err
	}
	return &snapshots[0], nil
}

// GetHourlyUsage aggregates all sessions' snapshots by hour inside the
// time range, oldest hour first.
func (db *DB) GetHourlyUsage(timeRange models.TimeRange) ([]models.HourlyUsage, error) {
	query := `
		SELECT strftime('%Y-%m-%d %H:00:00', timestamp) AS hour,
			   AVG(percentage),
			   MAX(current_tokens),
			   COUNT(*)
		FROM usage_snapshots
		WHERE 1=1` + rangeClause(timeRange) + `
		GROUP BY hour
		ORDER BY hour ASC
	`

	rows, err := db.QueryContext(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("failed to query hourly usage: %w", err)
	}
	defer rows.Close()

	var result []models.HourlyUsage
	for rows.Next() {
		var hourStr string
		var h models.HourlyUsage
		if err := rows.Scan(&hourStr, &h.AvgPercentage, &h.PeakTokens, &h.Samples); err != nil {
			return nil, fmt.Errorf("failed to scan hourly usage: %w", err)
		}
		if hour, err := time.Parse(timeFormat, hourStr); err == nil {
			h.Hour = hour
		}
		result = append(result, h)
	}
	return result, rows.Err()
}

// CountSnapshots returns the total number of recorded snapshots.
func (db *DB) CountSnapshots() (int, error) {
	var count int
	err := db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM usage_snapshots").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	return count, nil
}

// PruneBefore deletes snapshots older than the cutoff and returns how
// many rows went away.
func (db *DB) PruneBefore(cutoff time.Time) (int64, error) {
	result, err := db.ExecContext(context.Background(),
		"DELETE FROM usage_snapshots WHERE timestamp < ?",
		cutoff.UTC().Format(timeFormat))
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}
	return result.RowsAffected()
}

// rangeClause returns the WHERE fragment limiting rows to a time range.
func rangeClause(timeRange models.TimeRange) string {
	d := timeRange.Duration()
	if d <= 0 {
		return ""
	}
	return fmt.Sprintf(" AND timestamp >= datetime('now', '-%d seconds')", int64(d.Seconds()))
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanSnapshots(rows rowScanner) ([]models.UsageSnapshot, error) {
	var snapshots []models.UsageSnapshot
	for rows.Next() {
		var s models.UsageSnapshot
		var timestamp, engine string
		var level int
		if err := rows.Scan(&s.ID, &timestamp, &s.SessionID, &engine, &s.Model,
			&s.CurrentTokens, &s.WindowSize, &s.Percentage, &level); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		if ts, err := time.Parse(timeFormat, timestamp); err == nil {
			s.Timestamp = ts
		} else if ts, err := time.Parse(time.RFC3339, timestamp); err == nil {
			s.Timestamp = ts
		}
		s.Engine = models.Engine(engine)
		s.Level = models.UsageLevel(level)
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}
