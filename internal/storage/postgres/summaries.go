package postgres

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
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (week_start) DO UPDATE SET
			total_hours = EXCLUDED.total_hours,
			metadata = EXCLUDED.metadata,
			updated_at = EXCLUDED.updated_at`,
		summary.WeekStart.UTC(), summary.TotalHours, metadata, summary.UpdatedAt.UTC(),
	)
	return err
}

func (s *Store) GetWeekSummary(weekStart time.Time) (models.WeekSummary, error) {
	row := s.db.QueryRow(`
		SELECT week_start, total_hours, metadata, updated_at
		FROM week_summaries WHERE week_start = $1`,
		weekStart.UTC(),
	)
	summary, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.WeekSummary{}, fmt.Errorf("week summary for %s: %w", weekStart.UTC().Format(time.RFC3339), storage.ErrNotFound)
	}
	return summary, err
}

// GetWeekSummaries returns the most recent summaries first. A limit of zero
// or less returns all of them.
func (s *Store) GetWeekSummaries(limit int) ([]models.WeekSummary, error) {
	rows, err := s.db.Query(`
		SELECT week_start, total_hours, metadata, updated_at
		FROM week_summaries
		ORDER BY week_start DESC
		LIMIT $1`, nullLimit(limit))
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
	var metadata []byte
	if err := row.Scan(&summary.WeekStart, &summary.TotalHours, &metadata, &summary.UpdatedAt); err != nil {
		return models.WeekSummary{}, err
	}
	summary.WeekStart = summary.WeekStart.UTC()
	summary.UpdatedAt = summary.UpdatedAt.UTC()

	var err error
	if summary.Metadata, err = storage.DecodeMetadata(metadata); err != nil {
		return models.WeekSummary{}, err
	}
	return summary, nil
}
