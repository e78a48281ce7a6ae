package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"dutoan_backend/internal/models"
)

// ProjectStore persists the whole project collection as one document.
// Every call reads or rewrites the full sequence; there is no per-record
// access.
type ProjectStore interface {
	// Ensure creates an empty collection when none exists yet.
	Ensure(ctx context.Context) error
	Load(ctx context.Context) ([]models.Project, error)
	Save(ctx context.Context, projects []models.Project) error
	// Driver names the backend, e.g. "file".
	Driver() string
}

var emptyDocument = []byte("[]")

// encodeProjects renders the collection pretty-printed with a two-space
// indent.
func encodeProjects(projects []models.Project) ([]byte, error) {
	if projects == nil {
		projects = []models.Project{}
	}
	data, err := json.MarshalIndent(projects, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode projects: %w", err)
	}
	return append(data, '\n'), nil
}

func decodeProjects(data []byte) ([]models.Project, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []models.Project{}, nil
	}
	var projects []models.Project
	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}
	if projects == nil {
		projects = []models.Project{}
	}
	return projects, nil
}
