package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"dutoan_backend/internal/metrics"
	"dutoan_backend/internal/models"
	"dutoan_backend/internal/repositories"
)

// ProjectService implements the project API over a whole-document store.
// Writes are serialized so that two read-modify-write cycles in this
// process never interleave.
type ProjectService struct {
	store repositories.ProjectStore
	log   *zap.Logger
	now   func() time.Time

	mu     sync.Mutex
	lastID int64
}

func NewProjectService(store repositories.ProjectStore, log *zap.Logger) *ProjectService {
	return &ProjectService{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// CreateProjectRequest is the body accepted by CreateProject. Nil Sheets
// and Data mean the caller did not send them.
type CreateProjectRequest struct {
	Name   string          `json:"name"`
	Sheets models.SheetSet `json:"sheets"`
	Data   []models.Row    `json:"data"`
}

// ListProjects returns the stored collection in store order.
func (s *ProjectService) ListProjects(ctx context.Context) []models.Project {
	return s.load(ctx)
}

func (s *ProjectService) GetProject(ctx context.Context, id string) (*models.Project, error) {
	projects := s.load(ctx)
	if i := indexOf(projects, id); i >= 0 {
		return &projects[i], nil
	}
	return nil, ErrProjectNotFound
}

func (s *ProjectService) CreateProject(ctx context.Context, req CreateProjectRequest) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects := s.load(ctx)

	now := s.now()
	stamp := models.FormatTimestamp(now)
	project := models.Project{
		ID:        s.nextID(now, projects),
		Name:      req.Name,
		CreatedAt: stamp,
		UpdatedAt: stamp,
		Sheets:    req.Sheets,
		Data:      req.Data,
	}
	if project.Name == "" {
		project.Name = models.DefaultProjectName
	}
	if project.Sheets == nil {
		project.Sheets = models.DefaultSheets()
	}
	if project.Data == nil {
		project.Data = []models.Row{}
	}

	projects = append(projects, project)
	if err := s.save(ctx, projects); err != nil {
		return nil, err
	}

	s.log.Info("Project created", zap.String("project_id", project.ID), zap.String("name", project.Name))
	return &project, nil
}

// UpdateProject shallow-merges patch onto the stored project and
// refreshes updatedAt.
func (s *ProjectService) UpdateProject(ctx context.Context, id string, patch []byte) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects := s.load(ctx)
	i := indexOf(projects, id)
	if i < 0 {
		return nil, ErrProjectNotFound
	}

	updated := projects[i].Clone()
	if err := updated.Merge(patch); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	updated.UpdatedAt = laterTimestamp(s.now(), projects[i].UpdatedAt)
	projects[i] = updated

	if err := s.save(ctx, projects); err != nil {
		return nil, err
	}

	return &updated, nil
}

// DeleteProject removes every project with the given id. The remaining
// collection is written back even when nothing matched.
func (s *ProjectService) DeleteProject(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects := s.load(ctx)
	remaining := make([]models.Project, 0, len(projects))
	for _, p := range projects {
		if p.ID != id {
			remaining = append(remaining, p)
		}
	}

	if err := s.save(ctx, remaining); err != nil {
		return err
	}
	if removed := len(projects) - len(remaining); removed > 0 {
		s.log.Info("Project deleted", zap.String("project_id", id), zap.Int("removed", removed))
	}
	return nil
}

// load never fails: an unreadable store is treated as an empty one.
func (s *ProjectService) load(ctx context.Context) []models.Project {
	projects, err := s.store.Load(ctx)
	metrics.StoreOperationsTotal.WithLabelValues(s.store.Driver(), "load", metrics.Result(err)).Inc()
	if err != nil {
		s.log.Warn("Project store unreadable, continuing with an empty collection",
			zap.String("driver", s.store.Driver()), zap.Error(err))
		return []models.Project{}
	}
	return projects
}

func (s *ProjectService) save(ctx context.Context, projects []models.Project) error {
	err := s.store.Save(ctx, projects)
	metrics.StoreOperationsTotal.WithLabelValues(s.store.Driver(), "save", metrics.Result(err)).Inc()
	if err != nil {
		return fmt.Errorf("failed to save projects: %w", err)
	}
	return nil
}

// nextID issues a millisecond timestamp id. Ids are strictly increasing
// within the process and never collide with one already stored.
func (s *ProjectService) nextID(now time.Time, projects []models.Project) string {
	ms := now.UnixMilli()
	if ms <= s.lastID {
		ms = s.lastID + 1
	}
	for indexOf(projects, strconv.FormatInt(ms, 10)) >= 0 {
		ms++
	}
	s.lastID = ms
	return strconv.FormatInt(ms, 10)
}

// laterTimestamp formats now, unless the previous timestamp is ahead of
// it (clock skew), in which case the previous value is kept.
func laterTimestamp(now time.Time, previous string) string {
	if prev, err := time.Parse(time.RFC3339Nano, previous); err == nil && prev.After(now) {
		return models.FormatTimestamp(prev)
	}
	return models.FormatTimestamp(now)
}

func indexOf(projects []models.Project, id string) int {
	for i := range projects {
		if projects[i].ID == id {
			return i
		}
	}
	return -1
}
