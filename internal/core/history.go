package core

// history.go persists one record per conversion attempt, successful or not,
// so past conversions can be listed and audited. History is best-effort:
// when no database is configured, or an insert fails, the conversion outcome
// stands and the failure is only logged.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// ConversionStatus is the recorded outcome of a conversion.
type ConversionStatus string

const (
	StatusSuccess ConversionStatus = "success"
	StatusFailed  ConversionStatus = "failed"
)

// HistoryEntry is a single persisted conversion record.
type HistoryEntry struct {
	ID           string           `json:"id"`
	FileName     string           `json:"fileName"`
	SourceFormat string           `json:"sourceFormat"`
	TargetFormat string           `json:"targetFormat"`
	Status       ConversionStatus `json:"status"`
	Error        string           `json:"error,omitempty"`
	Rows         int              `json:"rows"`
	Cells        int              `json:"cells"`
	DurationMS   int64            `json:"durationMs"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// ErrHistoryDisabled is returned by history operations when the service
// runs without a database.
var ErrHistoryDisabled = errors.New("conversion history is not configured")

const historySchema = `
CREATE TABLE IF NOT EXISTS conversion_history (
	id UUID PRIMARY KEY,
	file_name TEXT NOT NULL,
	source_format TEXT NOT NULL,
	target_format TEXT NOT NULL,
	status TEXT NOT NULL,
	error TEXT,
	rows_converted INT NOT NULL DEFAULT 0,
	cells_converted INT NOT NULL DEFAULT 0,
	duration_ms BIGINT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_conversion_history_created_at
	ON conversion_history (created_at DESC);
`

// EnsureSchema creates the history table if it does not exist.
func (s *Service) EnsureSchema(ctx context.Context) error {
	if s.pool == nil {
		return ErrHistoryDisabled
	}
	if _, err := s.pool.Exec(ctx, historySchema); err != nil {
		return fmt.Errorf("ensure history schema: %w", err)
	}
	return nil
}

// RecordConversion inserts one history row and returns it with its
// generated id and timestamp filled in.
func (s *Service) RecordConversion(ctx context.Context, entry HistoryEntry) (*HistoryEntry, error) {
	if s.pool == nil {
		return nil, ErrHistoryDisabled
	}

	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now().UTC()

	errCol := pgtype.Text{String: entry.Error, Valid: entry.Error != ""}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO conversion_history
			(id, file_name, source_format, target_format, status, error,
			 rows_converted, cells_converted, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		entry.ID, entry.FileName, entry.SourceFormat, entry.TargetFormat,
		string(entry.Status), errCol, entry.Rows, entry.Cells,
		entry.DurationMS, entry.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert history: %w", err)
	}
	return &entry, nil
}

// ListHistory returns the most recent entries, newest first. A limit of
// zero or less applies the default of 100.
func (s *Service) ListHistory(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if s.pool == nil {
		return nil, ErrHistoryDisabled
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, file_name, source_format, target_format, status, error,
		       rows_converted, cells_converted, duration_ms, created_at
		FROM conversion_history
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var errCol pgtype.Text
		if err := rows.Scan(&e.ID, &e.FileName, &e.SourceFormat, &e.TargetFormat,
			&e.Status, &errCol, &e.Rows, &e.Cells, &e.DurationMS, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		if errCol.Valid {
			e.Error = errCol.String
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return entries, nil
}

// ClearHistory deletes all history records and reports how many were
// removed.
func (s *Service) ClearHistory(ctx context.Context) (int64, error) {
	if s.pool == nil {
		return 0, ErrHistoryDisabled
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM conversion_history`)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	return tag.RowsAffected(), nil
}
