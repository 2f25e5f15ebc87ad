package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"hms/internal/domain"
	"hms/internal/repository"
)

type LookupServiceImpl struct {
	repo   repository.LookupRepository
	logger *zap.Logger
}

func NewLookupService(repo repository.LookupRepository, logger *zap.Logger) *LookupServiceImpl {
	return &LookupServiceImpl{
		repo:   repo,
		logger: logger,
	}
}

func (s *LookupServiceImpl) Patients(ctx context.Context) ([]domain.Option, error) {
	options, err := s.repo.Patients(ctx)
	if err != nil {
		s.logger.Error("error loading patient options", zap.Error(err))
		return nil, fmt.Errorf("error loading patients: %w", err)
	}
	return options, nil
}

// Staff lists active staff only; inactive staff cannot be assigned new work.
func (s *LookupServiceImpl) Staff(ctx context.Context) ([]domain.Option, error) {
	options, err := s.repo.ActiveStaff(ctx)
	if err != nil {
		s.logger.Error("error loading staff options", zap.Error(err))
		return nil, fmt.Errorf("error loading staff: %w", err)
	}
	return options, nil
}

func (s *LookupServiceImpl) Rooms(ctx context.Context) ([]domain.Option, error) {
	options, err := s.repo.Rooms(ctx)
	if err != nil {
		s.logger.Error("error loading room options", zap.Error(err))
		return nil, fmt.Errorf("error loading rooms: %w", err)
	}
	return options, nil
}
