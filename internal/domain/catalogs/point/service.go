package point

import (
	"context"
	"fmt"

	"pointorder/internal/core/apperror"
	"pointorder/internal/core/id"
	"pointorder/pkg/logger"
)

// Service provides business operations for the point catalog.
type Service struct {
	repo Repository
}

// NewService creates a new point service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and stores a point record.
func (s *Service) Create(ctx context.Context, p *Point) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return fmt.Errorf("create point: %w", err)
	}
	logger.Info(ctx, "point created", "id", p.ID, "code", p.Code)
	return nil
}

// GetByID retrieves a point record.
func (s *Service) GetByID(ctx context.Context, pointID id.ID) (*Point, error) {
	return s.repo.GetByID(ctx, pointID)
}

// GetActive retrieves a point and rejects inactive ones.
// Orders may only be placed against active points.
func (s *Service) GetActive(ctx context.Context, pointID id.ID) (*Point, error) {
	p, err := s.repo.GetByID(ctx, pointID)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, apperror.NewValidation("point is not active").
			WithDetail("pointId", pointID.String())
	}
	return p, nil
}

// Update validates and stores changes to a point record.
func (s *Service) Update(ctx context.Context, p *Point) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}
	return s.repo.Update(ctx, p)
}

// List retrieves points with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Point, error) {
	return s.repo.List(ctx, filter)
}
