package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/storage"
)

func (s *Store) UpsertWeekSummary(summary models.WeekSummary) error {
	metadata, err := storage.EncodeMetadata(summary.Metadata)
	if err != nil {
		return err
	}
	if summary.UpdatedAt.IsZero() {
		summary.UpdatedAt = time.Now()
	}

	_, err = s.db.Exec(`
		INSERT INTO week_summaries (week_start, total_hours, metadata, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (week_start) DO UPDATE SET
			total_hours = excluded.total_hours,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at`,
		formatTime(summary.WeekStart), summary.TotalHours, metadata, formatTime(summary.UpdatedAt),
	)
	return err
}

func (s *Store) GetWeekSummary(weekStart time.Time) (models.WeekSummary, error) {
	row := s.db.QueryRow(`
		SELECT week_start, total_hours, metadata, updated_at
		FROM week_summaries WHERE week_start = ?`,
		formatTime(weekStart),
	)
	summary, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.WeekSummary{}, fmt.Errorf("week summary for %s: %w", formatTime(weekStart), storage.ErrNotFound)
	}
	return summary, err
}

// GetWeekSummaries returns the most recent summaries first. A limit of zero
// or less returns all of them.
func (s *Store) GetWeekSummaries(limit int) ([]models.WeekSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`
		SELECT week_start, total_hours, metadata, updated_at
		FROM week_summaries
		ORDER BY week_start DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []models.WeekSummary
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner) (models.WeekSummary, error) {
	var summary models.WeekSummary
	var weekStart, metadata, updatedAt string
	if err := row.Scan(&weekStart, &summary.TotalHours, &metadata, &updatedAt); err != nil {
		return models.WeekSummary{}, err
	}

	var err error
	if summary.WeekStart, err = parseTime(weekStart); err != nil {
		return models.WeekSummary{}, err
	}
	if summary.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return models.WeekSummary{}, err
	}
	if summary.Metadata, err = storage.DecodeMetadata([]byte(metadata)); err != nil {
		return models.WeekSummary{}, err
	}
	return summary, nil
}
