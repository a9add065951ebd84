package goods

import (
	"context"

	"pointorder/internal/core/id"
)

// Repository defines storage operations for the goods catalog.
type Repository interface {
	Create(ctx context.Context, g *Goods) error
	GetByID(ctx context.Context, goodsID id.ID) (*Goods, error)

	// GetByIDs fetches several goods at once; missing ids are simply
	// absent from the result map.
	GetByIDs(ctx context.Context, goodsIDs []id.ID) (map[id.ID]*Goods, error)

	// Update modifies a goods record. The repository owns the version
	// increment; a stale version fails with ConcurrentModification.
	Update(ctx context.Context, g *Goods) error

	List(ctx context.Context, filter ListFilter) ([]*Goods, error)
}

// ListFilter narrows goods listings.
type ListFilter struct {
	BaseID     id.ID
	Search     string
	ActiveOnly bool
	Limit      int
	Offset     int
}
