package postgres

import (
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/storage"
)

func (s *Store) AddRawEvent(event models.RawEvent, occurredAt time.Time) (bool, error) {
	metadata, err := storage.EncodeMetadata(event.Metadata)
	if err != nil {
		return false, err
	}

	res, err := s.db.Exec(`
		INSERT INTO raw_events (id, source, source_id, timestamp, occurred_at, duration_minutes, description, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (source, source_id) DO NOTHING`,
		uuid.NewString(), string(event.Source), event.SourceID, event.Timestamp, occurredAt.UTC(),
		event.DurationMinutes, event.Description, metadata,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *Store) FetchRawEvents(start, end time.Time) ([]models.RawEvent, error) {
	rows, err := s.db.Query(`
		SELECT source, source_id, timestamp, duration_minutes, description, metadata
		FROM raw_events
		WHERE occurred_at BETWEEN $1 AND $2
		ORDER BY occurred_at, created_at`,
		start.UTC(), end.UTC(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.RawEvent
	for rows.Next() {
		var ev models.RawEvent
		var source string
		var metadata []byte
		if err := rows.Scan(&source, &ev.SourceID, &ev.Timestamp, &ev.DurationMinutes, &ev.Description, &metadata); err != nil {
			return nil, err
		}
		ev.Source = models.Source(source)
		if ev.Metadata, err = storage.DecodeMetadata(metadata); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (s *Store) CountRawEvents() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM raw_events").Scan(&count)
	return count, err
}
