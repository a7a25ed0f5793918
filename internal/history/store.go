package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/sonote/internal/domain"
)

const selectColumns = `
	SELECT id, item_id, file_name, file_size, transcript,
		polished_text, summary, keywords, completed_at
	FROM history`

// Record inserts rec, assigning an id and completion time when missing,
// then trims the table to the retention cap.
func (s *implStore) Record(ctx context.Context, rec domain.HistoryRecord) error {
	if rec.ID == "" {
		rec.ID = s.newID()
	}
	if rec.CompletedAt.IsZero() {
		rec.CompletedAt = time.Now()
	}

	keywords, err := json.Marshal(nonNil(rec.Refined.Keywords))
	if err != nil {
		return fmt.Errorf("encode keywords: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO history
			(id, item_id, file_name, file_size, transcript, polished_text, summary, keywords, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.ItemID, rec.FileName, rec.FileSize, rec.Transcript,
		rec.Refined.PolishedText, rec.Refined.Summary, string(keywords), rec.CompletedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		s.logger.Debug(ctx, "History for item %s already recorded", rec.ItemID)
		return nil
	}

	if s.maxItems > 0 {
		if _, err := s.db.ExecContext(ctx, `
			DELETE FROM history WHERE id NOT IN (
				SELECT id FROM history ORDER BY completed_at DESC, rowid DESC LIMIT ?
			)
		`, s.maxItems); err != nil {
			return fmt.Errorf("trim history: %w", err)
		}
	}

	s.logger.Info(ctx, "Recorded history for %s", rec.FileName)
	return nil
}

// List returns up to limit records, newest first. limit <= 0 returns all.
func (s *implStore) List(ctx context.Context, limit int) ([]domain.HistoryRecord, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, selectColumns+`
		ORDER BY completed_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	records := []domain.HistoryRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Get returns one record by its history id.
func (s *implStore) Get(ctx context.Context, id string) (domain.HistoryRecord, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.HistoryRecord{}, ErrNotFound
	}
	return rec, err
}

// Delete removes one record.
func (s *implStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM history WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete history: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear removes every record.
func (s *implStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *implStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (domain.HistoryRecord, error) {
	var (
		rec         domain.HistoryRecord
		keywords    string
		completedAt int64
	)
	if err := row.Scan(&rec.ID, &rec.ItemID, &rec.FileName, &rec.FileSize, &rec.Transcript,
		&rec.Refined.PolishedText, &rec.Refined.Summary, &keywords, &completedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("scan history: %w", err)
	}

	if err := json.Unmarshal([]byte(keywords), &rec.Refined.Keywords); err != nil {
		return rec, fmt.Errorf("decode keywords: %w", err)
	}
	rec.CompletedAt = time.Unix(0, completedAt)
	return rec, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
