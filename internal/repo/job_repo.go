package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/skyfetch/internal/domain"
)

// JobRepo — журнал заданий. Держит только финальные записи:
// живыми заданиями владеет Scheduler в памяти, сюда они попадают
// после перехода в FINISHED или ERRORED.
type JobRepo struct {
	pool *pgxpool.Pool
}

// NewJobRepo создаёт JobRepo.
func NewJobRepo(pool *pgxpool.Pool) *JobRepo {
	return &JobRepo{pool: pool}
}

// SaveResult записывает финальное задание. Повторная запись того же
// задания перезаписывает строку (идемпотентность при рестартах).
func (r *JobRepo) SaveResult(ctx context.Context, job *domain.Job) error {
	specsJSON, err := json.Marshal(job.Specs)
	if err != nil {
		return fmt.Errorf("marshal specs: %w", err)
	}

	var output, jobErr string
	if job.Result != nil {
		output = job.Result.Output
		jobErr = job.Result.Err
	}

	query := `
		INSERT INTO jobs (id, text, specs, state, output, error,
		                  created_at, queued_at, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE
		SET state = EXCLUDED.state,
		    output = EXCLUDED.output,
		    error = EXCLUDED.error,
		    finished_at = EXCLUDED.finished_at
	`
	_, err = r.pool.Exec(ctx, query,
		job.ID,
		job.Text,
		specsJSON,
		string(job.State),
		output,
		jobErr,
		job.CreatedAt,
		job.QueuedAt,
		job.StartedAt,
		job.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("save job: %w", err)
	}
	return nil
}

// GetByID возвращает финальное задание по ID.
func (r *JobRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	query := `
		SELECT id, text, specs, state, output, error,
		       created_at, queued_at, started_at, finished_at
		FROM jobs
		WHERE id = $1
	`
	return scanJob(r.pool.QueryRow(ctx, query, id))
}

// ListRecent возвращает последние финальные задания.
func (r *JobRepo) ListRecent(ctx context.Context, limit int) ([]*domain.Job, error) {
	query := `
		SELECT id, text, specs, state, output, error,
		       created_at, queued_at, started_at, finished_at
		FROM jobs
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// scanJob маппит строку jobs в domain.Job.
func scanJob(row pgx.Row) (*domain.Job, error) {
	var (
		job       domain.Job
		specsJSON []byte
		state     string
		output    string
		jobErr    string
	)

	err := row.Scan(
		&job.ID,
		&job.Text,
		&specsJSON,
		&state,
		&output,
		&jobErr,
		&job.CreatedAt,
		&job.QueuedAt,
		&job.StartedAt,
		&job.FinishedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan job: %w", err)
	}

	if len(specsJSON) > 0 {
		if err := json.Unmarshal(specsJSON, &job.Specs); err != nil {
			return nil, fmt.Errorf("unmarshal specs: %w", err)
		}
	}
	job.State = domain.JobState(state)
	if output != "" || jobErr != "" {
		job.Result = &domain.JobResult{Output: output, Err: jobErr}
	}

	return &job, nil
}
