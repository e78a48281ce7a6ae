package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"dutoan_backend/internal/export"
	"dutoan_backend/internal/metrics"
)

type ExportService struct {
	projects *ProjectService
	dir      string
	log      *zap.Logger
}

func NewExportService(projects *ProjectService, dir string, log *zap.Logger) *ExportService {
	return &ExportService{projects: projects, dir: dir, log: log}
}

// ExportResult points at a workbook written to the export directory.
type ExportResult struct {
	Path     string
	FileName string
}

// ExportProject writes the project's sheets to an xlsx file under the
// export directory. Files are kept after the download.
func (s *ExportService) ExportProject(ctx context.Context, projectID string) (res *ExportResult, err error) {
	defer func() {
		if !errors.Is(err, ErrProjectNotFound) {
			metrics.ExportsTotal.WithLabelValues(metrics.Result(err)).Inc()
		}
	}()

	project, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	f, err := export.Build(project).Render()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	defer f.Close()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	name := export.FileName(project)
	path := filepath.Join(s.dir, name)
	if err := writeWorkbook(f, path); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", name, err)
	}

	s.log.Info("Project exported",
		zap.String("project_id", project.ID),
		zap.String("file", path),
		zap.Int("sheets", len(project.Sheets)),
	)
	return &ExportResult{Path: path, FileName: name}, nil
}

// writeWorkbook writes f next to path and renames it into place, so a
// download running at the same time never streams a partial file.
func writeWorkbook(f *excelize.File, path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*.xlsx.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := f.Write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
