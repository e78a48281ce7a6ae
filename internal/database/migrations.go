package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func RunMigrations(ctx context.Context, pool *pgxpool.Pool, log *zap.Logger) error {
	migrations := []string{
		createProjectDocumentsTable,
	}

	for i, migration := range migrations {
		log.Debug("Running migration", zap.Int("step", i+1), zap.Int("total", len(migrations)))
		if _, err := pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	log.Info("All migrations completed successfully")
	return nil
}

// body is json rather than jsonb: jsonb reorders object keys and sheet
// order is part of the data.
const createProjectDocumentsTable = `
CREATE TABLE IF NOT EXISTS project_documents (
  id SMALLINT PRIMARY KEY,
  body JSON NOT NULL,
  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
`
