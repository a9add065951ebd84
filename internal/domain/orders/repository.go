package orders

import (
	"context"
	"time"

	"pointorder/internal/core/id"
)

// Repository defines storage operations for orders.
type Repository interface {
	// Create inserts the order row.
	Create(ctx context.Context, o *Order) error

	// GetByID retrieves an order without lines.
	GetByID(ctx context.Context, orderID id.ID) (*Order, error)

	// GetByIDForUpdate retrieves an order with a row lock. Must be called
	// inside a transaction; serializes all mutating transitions per order.
	GetByIDForUpdate(ctx context.Context, orderID id.ID) (*Order, error)

	// GetByCode retrieves an order by its human-facing code.
	GetByCode(ctx context.Context, code string) (*Order, error)

	// GetLines retrieves the order's lines in line order.
	GetLines(ctx context.Context, orderID id.ID) ([]OrderLine, error)

	// SaveLines replaces all lines of an order.
	SaveLines(ctx context.Context, orderID id.ID, lines []OrderLine) error

	// Update writes the order row back.
	Update(ctx context.Context, o *Order) error

	// Delete physically removes the order and its lines.
	Delete(ctx context.Context, orderID id.ID) error

	// List retrieves orders with filtering and pagination.
	List(ctx context.Context, filter ListFilter) (ListResult, error)
}

// ListFilter narrows order listings.
type ListFilter struct {
	BaseID        id.ID
	PointID       *id.ID
	Status        *Status
	PaymentStatus *PaymentStatus
	Search        string
	DateFrom      *time.Time
	DateTo        *time.Time
	OrderBy       string
	Limit         int
	Offset        int
}

// ListResult contains paginated orders.
type ListResult struct {
	Items      []*Order `json:"items"`
	TotalCount int64    `json:"totalCount"`
	Limit      int      `json:"limit"`
	Offset     int      `json:"offset"`
}
