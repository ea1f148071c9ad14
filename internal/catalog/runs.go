package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const eventColumns = "id, run_id, dataset, stage, status, rows, bytes, path, checksum, error_kind, error_message, duration_ms, recorded_at"

// BeginRun inserts the run row that later events reference.
func (s *Store) BeginRun(ctx context.Context, id, command string, started time.Time) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("run id is required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, command, started_at) VALUES (?, ?, ?)`,
		id, command, formatTime(started),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun stores the final counters of a run.
func (s *Store) FinishRun(ctx context.Context, run Run) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs
         SET finished_at = ?, fetched = ?, skipped = ?, cleaned = ?, failed = ?
         WHERE id = ?`,
		formatTime(run.FinishedAt), run.Fetched, run.Skipped, run.Cleaned, run.Failed, run.ID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update run: unknown run %q", run.ID)
	}
	return nil
}

// RecordEvent appends one dataset outcome. RecordedAt defaults to now.
func (s *Store) RecordEvent(ctx context.Context, ev Event) (int64, error) {
	if ev.RecordedAt.IsZero() {
		ev.RecordedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO dataset_events (
            run_id, dataset, stage, status, rows, bytes, path, checksum,
            error_kind, error_message, duration_ms, recorded_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.RunID,
		ev.Dataset,
		ev.Stage,
		ev.Status,
		ev.Rows,
		ev.Bytes,
		nullableString(ev.Path),
		nullableString(ev.Checksum),
		nullableString(ev.ErrorKind),
		nullableString(ev.ErrorMessage),
		ev.Duration.Milliseconds(),
		formatTime(ev.RecordedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// LatestRun returns the most recently begun run, or nil when none exist.
func (s *Store) LatestRun(ctx context.Context) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, command, started_at, finished_at, fetched, skipped, cleaned, failed
         FROM runs ORDER BY rowid DESC LIMIT 1`)
	var (
		run         Run
		startedRaw  string
		finishedRaw sql.NullString
	)
	err := row.Scan(&run.ID, &run.Command, &startedRaw, &finishedRaw, &run.Fetched, &run.Skipped, &run.Cleaned, &run.Failed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest run: %w", err)
	}
	if started, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			run.FinishedAt = finished
		}
	}
	return &run, nil
}

// EventsForRun lists a run's events in insertion order.
func (s *Store) EventsForRun(ctx context.Context, runID string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM dataset_events WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	return collectEvents(rows)
}

// LatestEvents returns the newest event per dataset and stage, ordered by
// dataset then stage.
func (s *Store) LatestEvents(ctx context.Context) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM dataset_events
         WHERE id IN (SELECT MAX(id) FROM dataset_events GROUP BY dataset, stage)
         ORDER BY dataset, stage`)
	if err != nil {
		return nil, fmt.Errorf("query latest events: %w", err)
	}
	return collectEvents(rows)
}

func collectEvents(rows *sql.Rows) ([]Event, error) {
	defer rows.Close()
	var events []Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

func scanEvent(scanner interface{ Scan(dest ...any) error }) (Event, error) {
	var (
		ev          Event
		path        sql.NullString
		checksum    sql.NullString
		errorKind   sql.NullString
		errorMsg    sql.NullString
		durationMS  int64
		recordedRaw string
	)
	if err := scanner.Scan(
		&ev.ID,
		&ev.RunID,
		&ev.Dataset,
		&ev.Stage,
		&ev.Status,
		&ev.Rows,
		&ev.Bytes,
		&path,
		&checksum,
		&errorKind,
		&errorMsg,
		&durationMS,
		&recordedRaw,
	); err != nil {
		return Event{}, err
	}
	ev.Path = path.String
	ev.Checksum = checksum.String
	ev.ErrorKind = errorKind.String
	ev.ErrorMessage = errorMsg.String
	ev.Duration = time.Duration(durationMS) * time.Millisecond
	if recorded, err := parseTimeString(recordedRaw); err == nil {
		ev.RecordedAt = recorded
	}
	return ev, nil
}
