package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dutoan_backend/internal/config"
	"dutoan_backend/internal/models"
)

// projectDocumentID is the single row holding the collection.
const projectDocumentID = 1

// ProjectRepository stores the collection as one row of the
// project_documents table.
type ProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

func (r *ProjectRepository) Driver() string { return config.DriverPostgres }

func (r *ProjectRepository) Ensure(ctx context.Context) error {
	query := `
		INSERT INTO project_documents (id, body, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query, projectDocumentID, string(emptyDocument))
	return err
}

func (r *ProjectRepository) Load(ctx context.Context) ([]models.Project, error) {
	query := `SELECT body::text FROM project_documents WHERE id = $1`

	var body string
	err := r.pool.QueryRow(ctx, query, projectDocumentID).Scan(&body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []models.Project{}, nil
		}
		return nil, err
	}

	return decodeProjects([]byte(body))
}

func (r *ProjectRepository) Save(ctx context.Context, projects []models.Project) error {
	data, err := encodeProjects(projects)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO project_documents (id, body, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at
	`
	_, err = r.pool.Exec(ctx, query, projectDocumentID, string(data))
	return err
}
