package goods

import (
	"context"
	"fmt"

	"pointorder/internal/core/apperror"
	"pointorder/internal/core/id"
	"pointorder/pkg/logger"
)

// Service provides business operations for the goods catalog.
type Service struct {
	repo Repository
}

// NewService creates a new goods service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and stores a goods record.
func (s *Service) Create(ctx context.Context, g *Goods) error {
	if err := g.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, g); err != nil {
		return fmt.Errorf("create goods: %w", err)
	}
	logger.Info(ctx, "goods created", "id", g.ID, "code", g.Code)
	return nil
}

// GetByID retrieves a goods record.
func (s *Service) GetByID(ctx context.Context, goodsID id.ID) (*Goods, error) {
	return s.repo.GetByID(ctx, goodsID)
}

// GetByIDs retrieves several goods records, failing if any id is unknown.
// Used by order validation, where every ordered goods must exist.
func (s *Service) GetByIDs(ctx context.Context, goodsIDs []id.ID) (map[id.ID]*Goods, error) {
	found, err := s.repo.GetByIDs(ctx, goodsIDs)
	if err != nil {
		return nil, fmt.Errorf("get goods: %w", err)
	}
	for _, gid := range goodsIDs {
		if _, ok := found[gid]; !ok {
			return nil, apperror.NewNotFound("goods", gid.String())
		}
	}
	return found, nil
}

// Update validates and stores changes to a goods record.
func (s *Service) Update(ctx context.Context, g *Goods) error {
	if err := g.Validate(ctx); err != nil {
		return err
	}
	return s.repo.Update(ctx, g)
}

// List retrieves goods with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Goods, error) {
	return s.repo.List(ctx, filter)
}
