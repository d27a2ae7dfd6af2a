package services

import (
	"context"

	"github.com/Azechum30/npresec-app/internal/app/models"
	"github.com/Azechum30/npresec-app/internal/app/models/dto"
)

// StatsSource computes the dashboard counters
type StatsSource interface {
	Stats(ctx context.Context) (*dto.DashboardStats, error)
}

// DashboardService serves the dashboard counters
type DashboardService struct {
	stats StatsSource
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(stats StatsSource) *DashboardService {
	return &DashboardService{stats: stats}
}

// Stats returns the counters with every student status present
func (s *DashboardService) Stats(ctx context.Context) (*dto.DashboardStats, error) {
	stats, err := s.stats.Stats(ctx)
	if err != nil {
		return nil, err
	}
	if stats.StudentsByStatus == nil {
		stats.StudentsByStatus = map[string]int64{}
	}
	for _, st := range []models.StudentStatus{
		models.StudentActive, models.StudentGraduated, models.StudentWithdrawn, models.StudentSuspended,
	} {
		if _, ok := stats.StudentsByStatus[string(st)]; !ok {
			stats.StudentsByStatus[string(st)] = 0
		}
	}
	return stats, nil
}
