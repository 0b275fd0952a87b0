package state

import (
	"context"
	"database/sql"
	"time"

	"todoink/internal/services"
)

// maxCycleHistory bounds the cycles table.
const maxCycleHistory = 500

// CycleRecord summarizes one wake cycle.
type CycleRecord struct {
	CycleID       string
	StartedAt     time.Time
	FinishedAt    time.Time
	Outcome       string
	ErrorKind     string
	ErrorMessage  string
	Stale         bool
	Rendered      bool
	FocusCount    int
	OverviewCount int
	NextWake      time.Time
}

// Duration returns how long the cycle ran.
func (r CycleRecord) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

const cycleColumns = "cycle_id, started_at, finished_at, outcome, error_kind, error_message, stale, rendered, focus_count, overview_count, next_wake"

// RecordCycle appends a cycle report and trims the history to the newest
// maxCycleHistory rows.
func (s *Store) RecordCycle(ctx context.Context, rec CycleRecord) error {
	err := s.exec(ctx,
		`INSERT INTO cycles (`+cycleColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.CycleID,
		formatTime(rec.StartedAt),
		formatTime(rec.FinishedAt),
		rec.Outcome,
		nullableString(rec.ErrorKind),
		nullableString(rec.ErrorMessage),
		boolToInt(rec.Stale),
		boolToInt(rec.Rendered),
		rec.FocusCount,
		rec.OverviewCount,
		nullableTime(rec.NextWake),
	)
	if err != nil {
		return services.Wrap(services.ErrStorage, stageName, "record cycle", rec.CycleID, err)
	}
	if err := s.exec(ctx,
		`DELETE FROM cycles WHERE id NOT IN (SELECT id FROM cycles ORDER BY id DESC LIMIT ?)`,
		maxCycleHistory,
	); err != nil {
		return services.Wrap(services.ErrStorage, stageName, "trim cycles", "", err)
	}
	return nil
}

// RecentCycles returns up to limit cycle records, newest first.
func (s *Store) RecentCycles(ctx context.Context, limit int) ([]CycleRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+cycleColumns+` FROM cycles ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, stageName, "recent cycles", "", err)
	}
	defer rows.Close()

	var records []CycleRecord
	for rows.Next() {
		rec, err := scanCycle(rows)
		if err != nil {
			return nil, services.Wrap(services.ErrStorage, stageName, "scan cycle", "", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrStorage, stageName, "recent cycles", "", err)
	}
	return records, nil
}

func scanCycle(scanner interface{ Scan(dest ...any) error }) (CycleRecord, error) {
	var (
		rec          CycleRecord
		startedRaw   string
		finishedRaw  string
		errorKind    sql.NullString
		errorMessage sql.NullString
		stale        int
		rendered     int
		nextWakeRaw  sql.NullString
	)
	if err := scanner.Scan(
		&rec.CycleID,
		&startedRaw,
		&finishedRaw,
		&rec.Outcome,
		&errorKind,
		&errorMessage,
		&stale,
		&rendered,
		&rec.FocusCount,
		&rec.OverviewCount,
		&nextWakeRaw,
	); err != nil {
		return CycleRecord{}, err
	}
	rec.ErrorKind = errorKind.String
	rec.ErrorMessage = errorMessage.String
	rec.Stale = stale != 0
	rec.Rendered = rendered != 0
	rec.StartedAt = parseTime(startedRaw)
	rec.FinishedAt = parseTime(finishedRaw)
	rec.NextWake = parseTime(nextWakeRaw.String)
	return rec, nil
}
