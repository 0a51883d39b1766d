package resumes

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, row *ResumeRow) error
	GetByID(ctx context.Context, id uuid.UUID) (*ResumeRow, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*ResumeRow, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	Update(ctx context.Context, row *ResumeRow) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Create(ctx context.Context, row *ResumeRow) error {
	query := `
		INSERT INTO resumes (id, user_id, title, basics, work, education, skills, projects, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		row.ID, row.UserID, row.Title,
		row.Basics, row.Work, row.Education, row.Skills, row.Projects,
		row.CreatedAt, row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting resume: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*ResumeRow, error) {
	query := `
		SELECT id, user_id, title, basics, work, education, skills, projects, created_at, updated_at, deleted_at
		FROM resumes
		WHERE id = $1 AND deleted_at IS NULL`

	row := &ResumeRow{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&row.ID, &row.UserID, &row.Title,
		&row.Basics, &row.Work, &row.Education, &row.Skills, &row.Projects,
		&row.CreatedAt, &row.UpdatedAt, &row.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying resume by id: %w", err)
	}
	return row, nil
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*ResumeRow, error) {
	query := `
		SELECT id, user_id, title, basics, work, education, skills, projects, created_at, updated_at, deleted_at
		FROM resumes
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing resumes: %w", err)
	}
	defer rows.Close()

	var resumes []*ResumeRow
	for rows.Next() {
		row := &ResumeRow{}
		err := rows.Scan(
			&row.ID, &row.UserID, &row.Title,
			&row.Basics, &row.Work, &row.Education, &row.Skills, &row.Projects,
			&row.CreatedAt, &row.UpdatedAt, &row.DeletedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning resume row: %w", err)
		}
		resumes = append(resumes, row)
	}
	return resumes, rows.Err()
}

func (r *postgresRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM resumes WHERE user_id = $1 AND deleted_at IS NULL`

	var count int64
	err := r.pool.QueryRow(ctx, query, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting resumes: %w", err)
	}
	return count, nil
}

func (r *postgresRepository) Update(ctx context.Context, row *ResumeRow) error {
	query := `
		UPDATE resumes
		SET title = $2, basics = $3, work = $4, education = $5, skills = $6, projects = $7, updated_at = $8
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.pool.Exec(ctx, query,
		row.ID, row.Title, row.Basics, row.Work, row.Education, row.Skills, row.Projects, row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("updating resume: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("resume not found or already deleted")
	}
	return nil
}

func (r *postgresRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE resumes SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("soft deleting resume: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("resume not found or already deleted")
	}
	return nil
}
