package repositories

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"dutoan_backend/internal/config"
	"dutoan_backend/internal/models"
)

// FileProjectRepository keeps the collection in a single JSON file.
type FileProjectRepository struct {
	path string
}

func NewFileProjectRepository(path string) *FileProjectRepository {
	return &FileProjectRepository{path: path}
}

func (r *FileProjectRepository) Driver() string { return config.DriverFile }

// Path is the backing file.
func (r *FileProjectRepository) Path() string { return r.path }

func (r *FileProjectRepository) Ensure(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	if _, err := os.Stat(r.path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", r.path, err)
	}
	return writeFileAtomic(r.path, append(append([]byte(nil), emptyDocument...), '\n'))
}

func (r *FileProjectRepository) Load(ctx context.Context) ([]models.Project, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}
	return decodeProjects(data)
}

func (r *FileProjectRepository) Save(ctx context.Context, projects []models.Project) error {
	data, err := encodeProjects(projects)
	if err != nil {
		return err
	}
	return writeFileAtomic(r.path, data)
}

// writeFileAtomic replaces path through a temp file and rename so a
// reader never sees a half-written document.
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
