package sqlite

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/storage"
)

func insertBlock(db execer, block models.TimeBlock, weekStart time.Time) error {
	if block.ID == "" {
		block.ID = uuid.NewString()
	}
	metadata, err := storage.EncodeMetadata(block.Metadata)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT INTO time_blocks (id, week_start, block_start, block_end, source, description, priority, duration_hours, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		block.ID, formatTime(weekStart), formatTime(block.Start), formatTime(block.End), string(block.Source),
		block.Description, block.Priority, block.Hours(), metadata, formatTime(time.Now()),
	)
	return err
}

func (s *Store) PersistTimeBlock(block models.TimeBlock, weekStart time.Time) error {
	return insertBlock(s.db, block, weekStart)
}

func (s *Store) ReplaceTimeBlocksForWeek(weekStart time.Time, blocks []models.TimeBlock) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM time_blocks WHERE week_start = ?", formatTime(weekStart)); err != nil {
		return fmt.Errorf("clearing week: %w", err)
	}
	for i, block := range blocks {
		if err := insertBlock(tx, block, weekStart); err != nil {
			return fmt.Errorf("block %d of %d: %w", i+1, len(blocks), err)
		}
	}

	return tx.Commit()
}

func (s *Store) GetTimeBlocksForWeek(weekStart time.Time) ([]models.TimeBlock, error) {
	rows, err := s.db.Query(`
		SELECT id, block_start, block_end, source, description, priority, metadata
		FROM time_blocks
		WHERE week_start = ?
		ORDER BY block_start, rowid`,
		formatTime(weekStart),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []models.TimeBlock
	for rows.Next() {
		var b models.TimeBlock
		var start, end, source, metadata string
		if err := rows.Scan(&b.ID, &start, &end, &source, &b.Description, &b.Priority, &metadata); err != nil {
			return nil, err
		}
		if b.Start, err = parseTime(start); err != nil {
			return nil, err
		}
		if b.End, err = parseTime(end); err != nil {
			return nil, err
		}
		b.Source = models.Source(source)
		if b.Metadata, err = storage.DecodeMetadata([]byte(metadata)); err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

func (s *Store) DeleteTimeBlocksForWeek(weekStart time.Time) (int, error) {
	res, err := s.db.Exec("DELETE FROM time_blocks WHERE week_start = ?", formatTime(weekStart))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
