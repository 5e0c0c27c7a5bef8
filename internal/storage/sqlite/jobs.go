package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/storage"
)

func (s *Store) RecordJobStart(run models.JobRun) error {
	metadata, err := storage.EncodeMetadata(run.Metadata)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO job_runs (id, job, started_at, success, error, metadata)
		VALUES (?, ?, ?, 0, '', ?)`,
		run.ID, run.Job, formatTime(run.StartedAt), metadata,
	)
	return err
}

func (s *Store) RecordJobFinish(run models.JobRun) error {
	if run.FinishedAt == nil {
		return fmt.Errorf("job run %s has no finish time", run.ID)
	}
	metadata, err := storage.EncodeMetadata(run.Metadata)
	if err != nil {
		return err
	}

	res, err := s.db.Exec(`
		UPDATE job_runs SET finished_at = ?, success = ?, error = ?, metadata = ?
		WHERE id = ?`,
		formatTime(*run.FinishedAt), run.Success, run.Error, metadata, run.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("job run %s: %w", run.ID, storage.ErrNotFound)
	}
	return nil
}

// GetJobRuns returns the latest runs first. An empty job matches every job
// and a limit of zero or less disables the limit.
func (s *Store) GetJobRuns(job string, limit int) ([]models.JobRun, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`
		SELECT id, job, started_at, finished_at, success, error, metadata
		FROM job_runs
		WHERE ? = '' OR job = ?
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?`, job, job, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.JobRun
	for rows.Next() {
		var run models.JobRun
		var startedAt, metadata string
		var finishedAt sql.NullString
		if err := rows.Scan(&run.ID, &run.Job, &startedAt, &finishedAt, &run.Success, &run.Error, &metadata); err != nil {
			return nil, err
		}
		if run.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, err
		}
		if finishedAt.Valid {
			t, err := parseTime(finishedAt.String)
			if err != nil {
				return nil, err
			}
			run.FinishedAt = &t
		}
		if run.Metadata, err = storage.DecodeMetadata([]byte(metadata)); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
