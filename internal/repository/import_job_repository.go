package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rfmelo/corretora/internal/domain"
)

type importJobRepository struct {
	pool *pgxpool.Pool
}

// NewImportJobRepository wires a repository backed by pgxpool.
func NewImportJobRepository(pool *pgxpool.Pool) ImportJobRepository {
	return &importJobRepository{pool: pool}
}

func (r *importJobRepository) Create(ctx context.Context, job domain.ImportJob) (domain.ImportJob, error) {
	if r.pool == nil {
		return domain.ImportJob{}, fmt.Errorf("import job repository not initialized")
	}

	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO import_jobs (id, user_id, entity_type, source_filename, total_rows, imported_count, error_count, status, error_details, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		job.ID,
		job.UserID,
		job.EntityType,
		job.SourceFilename,
		job.TotalRows,
		job.ImportedCount,
		job.ErrorCount,
		string(job.Status),
		job.ErrorDetails,
		job.CreatedAt,
	)
	if err != nil {
		return domain.ImportJob{}, fmt.Errorf("failed to create import job: %w", err)
	}

	return job, nil
}

func (r *importJobRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.ImportJob, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("import job repository not initialized")
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT id, user_id, entity_type, source_filename, total_rows, imported_count, error_count, status, error_details, created_at
		 FROM import_jobs
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list import jobs: %w", err)
	}
	defer rows.Close()

	jobs := []domain.ImportJob{}
	for rows.Next() {
		var (
			job       domain.ImportJob
			status    string
			createdAt pgtype.Timestamptz
		)
		if scanErr := rows.Scan(
			&job.ID,
			&job.UserID,
			&job.EntityType,
			&job.SourceFilename,
			&job.TotalRows,
			&job.ImportedCount,
			&job.ErrorCount,
			&status,
			&job.ErrorDetails,
			&createdAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan import job: %w", scanErr)
		}

		job.Status = domain.ImportStatus(status)
		if createdAt.Valid {
			job.CreatedAt = createdAt.Time
		}

		jobs = append(jobs, job)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate import jobs: %w", rowsErr)
	}

	return jobs, nil
}
