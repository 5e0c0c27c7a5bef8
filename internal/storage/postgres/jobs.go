package postgres

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
		INSERT INTO job_runs (id, job, started_at, metadata)
		VALUES ($1, $2, $3, $4)`,
		run.ID, run.Job, run.StartedAt.UTC(), metadata,
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
		UPDATE job_runs SET finished_at = $1, success = $2, error = $3, metadata = $4
		WHERE id = $5`,
		run.FinishedAt.UTC(), run.Success, run.Error, metadata, run.ID,
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
	rows, err := s.db.Query(`
		SELECT id, job, started_at, finished_at, success, error, metadata
		FROM job_runs
		WHERE $1 = '' OR job = $1
		ORDER BY started_at DESC
		LIMIT $2`, job, nullLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.JobRun
	for rows.Next() {
		var run models.JobRun
		var finishedAt sql.NullTime
		var metadata []byte
		if err := rows.Scan(&run.ID, &run.Job, &run.StartedAt, &finishedAt, &run.Success, &run.Error, &metadata); err != nil {
			return nil, err
		}
		run.StartedAt = run.StartedAt.UTC()
		if finishedAt.Valid {
			t := finishedAt.Time.UTC()
			run.FinishedAt = &t
		}
		if run.Metadata, err = storage.DecodeMetadata(metadata); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
