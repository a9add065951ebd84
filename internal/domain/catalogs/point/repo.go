package point

import (
	"context"

	"pointorder/internal/core/id"
)

// Repository defines storage operations for the point catalog.
type Repository interface {
	Create(ctx context.Context, p *Point) error
	GetByID(ctx context.Context, pointID id.ID) (*Point, error)
	Update(ctx context.Context, p *Point) error
	List(ctx context.Context, filter ListFilter) ([]*Point, error)
}

// ListFilter narrows point listings.
type ListFilter struct {
	BaseID     id.ID
	Search     string
	ActiveOnly bool
	Limit      int
	Offset     int
}
