package entity

import (
	"time"

	"pointorder/internal/core/id"
)

// MovementCause describes what triggered an outbound stock movement.
type MovementCause string

const (
	// MovementCauseOrder - shipment of a point order
	MovementCauseOrder MovementCause = "ORDER"
	// MovementCauseTransfer - stock transferred to another location
	MovementCauseTransfer MovementCause = "TRANSFER"
	// MovementCauseManual - manual correction by staff
	MovementCauseManual MovementCause = "MANUAL"
)

// Valid reports whether the cause is one of the known values.
func (c MovementCause) Valid() bool {
	switch c {
	case MovementCauseOrder, MovementCauseTransfer, MovementCauseManual:
		return true
	}
	return false
}

// OutboundMovement is an immutable ledger row recording one stock decrease.
// Rows are only ever inserted; there is no update or delete path.
type OutboundMovement struct {
	ID id.ID `db:"id" json:"id"`

	BaseID       id.ID     `db:"base_id" json:"baseId"`
	MovementDate time.Time `db:"movement_date" json:"movementDate"`

	GoodsID    id.ID `db:"goods_id" json:"goodsId"`
	LocationID id.ID `db:"location_id" json:"locationId"`

	Cause MovementCause `db:"cause" json:"cause"`

	BoxQuantity  int64 `db:"box_quantity" json:"boxQuantity"`
	PackQuantity int64 `db:"pack_quantity" json:"packQuantity"`

	// SourceOrderCode back-references the order this movement fulfills
	// (set when Cause is ORDER).
	SourceOrderCode string `db:"source_order_code" json:"sourceOrderCode,omitempty"`

	CreatedBy id.ID     `db:"created_by" json:"createdBy"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewOutboundMovement creates a movement row with generated ID.
func NewOutboundMovement(
	baseID, goodsID, locationID id.ID,
	cause MovementCause,
	boxQty, packQty int64,
	sourceOrderCode string,
	createdBy id.ID,
) OutboundMovement {
	return OutboundMovement{
		ID:              id.New(),
		BaseID:          baseID,
		MovementDate:    time.Now().UTC(),
		GoodsID:         goodsID,
		LocationID:      locationID,
		Cause:           cause,
		BoxQuantity:     boxQty,
		PackQuantity:    packQty,
		SourceOrderCode: sourceOrderCode,
		CreatedBy:       createdBy,
		CreatedAt:       time.Now().UTC(),
	}
}

// StockBalance is the current on-hand quantity per (base, goods, location).
// Owned by the stock ledger; box/pack are stored normalized.
type StockBalance struct {
	BaseID     id.ID `db:"base_id" json:"baseId"`
	GoodsID    id.ID `db:"goods_id" json:"goodsId"`
	LocationID id.ID `db:"location_id" json:"locationId"`

	BoxQuantity  int64 `db:"box_quantity" json:"boxQuantity"`
	PackQuantity int64 `db:"pack_quantity" json:"packQuantity"`

	LastMovementAt time.Time `db:"last_movement_at" json:"lastMovementAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}
