// Package outbound provides the outbound movement audit ledger.
package outbound

import (
	"context"
	"time"

	"pointorder/internal/core/entity"
	"pointorder/internal/core/id"
)

// Repository defines storage operations for outbound movements.
// Movements are immutable: the contract deliberately has no update or
// delete methods.
type Repository interface {
	// CreateMovements batch inserts movement rows.
	CreateMovements(ctx context.Context, movements []entity.OutboundMovement) error

	// GetByOrderCode retrieves all movements that fulfill one order.
	GetByOrderCode(ctx context.Context, orderCode string) ([]entity.OutboundMovement, error)

	// List retrieves movements with filtering.
	List(ctx context.Context, filter ListFilter) ([]entity.OutboundMovement, error)
}

// ListFilter narrows movement listings.
type ListFilter struct {
	BaseID     id.ID
	GoodsID    *id.ID
	LocationID *id.ID
	Cause      *entity.MovementCause
	FromDate   *time.Time
	ToDate     *time.Time
	Limit      int
	Offset     int
}
