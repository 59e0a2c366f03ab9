package usecase

import (
	"context"
	"fmt"
	"time"

	"watch-list/internal/data/repository"
	"watch-list/internal/dto/response"

	"go.uber.org/zap"
)

type StatsService interface {
	Dashboard(ctx context.Context) (*response.DashboardResponse, error)
}

type statsService struct {
	statsRepo repository.StatsRepository
	log       *zap.Logger
}

func NewStatsService(statsRepo repository.StatsRepository, log *zap.Logger) StatsService {
	return &statsService{
		statsRepo: statsRepo,
		log:       log.With(zap.String("service", "stats")),
	}
}

func (s *statsService) Dashboard(ctx context.Context) (*response.DashboardResponse, error) {
	stats, err := s.statsRepo.Dashboard(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("load dashboard: %w", err)
	}

	resp := response.DashboardToResponse(stats)
	return &resp, nil
}
