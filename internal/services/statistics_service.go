package services

import (
	"context"

	"dutoan_backend/internal/statistics"
)

type StatisticsService struct {
	projects *ProjectService
}

func NewStatisticsService(projects *ProjectService) *StatisticsService {
	return &StatisticsService{projects: projects}
}

// GetStatistics rolls up every stored project.
func (s *StatisticsService) GetStatistics(ctx context.Context) statistics.Report {
	return statistics.Compute(s.projects.ListProjects(ctx))
}
