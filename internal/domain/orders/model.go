// Package orders provides the point-order lifecycle engine.
//
// An order moves through a guarded state machine; every transition that
// touches stock or money runs inside one storage transaction with the
// order row locked first.
package orders

import (
	"context"
	"time"

	"pointorder/internal/core/apperror"
	"pointorder/internal/core/id"
	"pointorder/internal/core/types"
	"pointorder/internal/core/uom"
	"pointorder/internal/domain/catalogs/goods"
)

// Status is the order lifecycle state.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusShipping  Status = "SHIPPING"
	StatusDelivered Status = "DELIVERED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Terminal reports whether no transition leaves this status.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Order is a sales order placed by a retail point against a base.
type Order struct {
	ID id.ID `db:"id" json:"id"`

	// Code is the human-facing order number (PTO- + 11 base36 chars,
	// globally unique).
	Code string `db:"code" json:"code"`

	BaseID    id.ID     `db:"base_id" json:"baseId"`
	PointID   id.ID     `db:"point_id" json:"pointId"`
	OrderDate time.Time `db:"order_date" json:"orderDate"`

	Status        Status        `db:"status" json:"status"`
	PaymentStatus PaymentStatus `db:"payment_status" json:"paymentStatus"`

	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`
	PaidAmount  types.Money `db:"paid_amount" json:"paidAmount"`

	// PaymentNotes is an append-only, newline-joined log of payment
	// confirmations. Entries are never rewritten.
	PaymentNotes string `db:"payment_notes" json:"paymentNotes,omitempty"`

	ShippingAddress string `db:"shipping_address" json:"shippingAddress,omitempty"`
	ShippingPhone   string `db:"shipping_phone" json:"shippingPhone,omitempty"`

	TrackingNumber string `db:"tracking_number" json:"trackingNumber,omitempty"`
	DeliveryPerson string `db:"delivery_person" json:"deliveryPerson,omitempty"`
	DeliveryPhone  string `db:"delivery_phone" json:"deliveryPhone,omitempty"`

	ConfirmedAt *time.Time `db:"confirmed_at" json:"confirmedAt,omitempty"`
	ShippedAt   *time.Time `db:"shipped_at" json:"shippedAt,omitempty"`
	DeliveredAt *time.Time `db:"delivered_at" json:"deliveredAt,omitempty"`
	CompletedAt *time.Time `db:"completed_at" json:"completedAt,omitempty"`
	CancelledAt *time.Time `db:"cancelled_at" json:"cancelledAt,omitempty"`

	CreatedBy   id.ID `db:"created_by" json:"createdBy"`
	ConfirmedBy id.ID `db:"confirmed_by" json:"confirmedBy,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
	Version   int       `db:"version" json:"version"`

	Lines []OrderLine `db:"-" json:"lines"`
}

// OrderLine is one ordered goods position. Quantities are expressed in two
// nested units; UnitPrice is the price per pack.
type OrderLine struct {
	ID      id.ID `db:"id" json:"id"`
	OrderID id.ID `db:"order_id" json:"orderId"`
	LineNo  int   `db:"line_no" json:"lineNo"`

	GoodsID   id.ID  `db:"goods_id" json:"goodsId"`
	GoodsName string `db:"goods_name" json:"goodsName,omitempty"`

	BoxQuantity  int64 `db:"box_quantity" json:"boxQuantity"`
	PackQuantity int64 `db:"pack_quantity" json:"packQuantity"`

	UnitPrice  types.Money `db:"unit_price" json:"unitPrice"`
	TotalPrice types.Money `db:"total_price" json:"totalPrice"`

	// Actual received quantities, recorded by the point owner when the
	// delivery differs from what was ordered.
	ActualBoxQuantity  *int64 `db:"actual_box_quantity" json:"actualBoxQuantity,omitempty"`
	ActualPackQuantity *int64 `db:"actual_pack_quantity" json:"actualPackQuantity,omitempty"`
}

// NewOrder creates an order in PENDING with a fresh id.
func NewOrder(baseID, pointID, createdBy id.ID) *Order {
	now := time.Now().UTC()
	return &Order{
		ID:            id.New(),
		BaseID:        baseID,
		PointID:       pointID,
		OrderDate:     now,
		Status:        StatusPending,
		PaymentStatus: PaymentStatusUnpaid,
		TotalAmount:   types.ZeroMoney(),
		PaidAmount:    types.ZeroMoney(),
		CreatedBy:     createdBy,
		CreatedAt:     now,
		UpdatedAt:     now,
		Version:       1,
	}
}

// Touch updates the UpdatedAt timestamp and increments the version.
func (o *Order) Touch() {
	o.UpdatedAt = time.Now().UTC()
	o.Version++
}

// Validate checks order invariants that need no database access.
func (o *Order) Validate(ctx context.Context) error {
	if id.IsNil(o.PointID) {
		return apperror.NewValidation("point is required").
			WithDetail("field", "pointId")
	}
	if id.IsNil(o.BaseID) {
		return apperror.NewValidation("base is required").
			WithDetail("field", "baseId")
	}
	if len(o.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}
	for i, line := range o.Lines {
		if id.IsNil(line.GoodsID) {
			return apperror.NewValidation("goods is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.BoxQuantity < 0 || line.PackQuantity < 0 {
			return apperror.NewValidation("quantities must not be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.BoxQuantity == 0 && line.PackQuantity == 0 {
			return apperror.NewValidation("line quantity is empty").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price must not be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}
	return nil
}

// RecalculateTotals recomputes every line total and the order total.
//
// Line total = (box*packPerBox + pack) * unitPrice: the quantity is first
// normalized to its pack-equivalent so mixed-unit arithmetic cannot drift.
func (o *Order) RecalculateTotals(goodsByID map[id.ID]*goods.Goods) error {
	total := types.ZeroMoney()
	for i := range o.Lines {
		line := &o.Lines[i]
		g, ok := goodsByID[line.GoodsID]
		if !ok {
			return apperror.NewNotFound("goods", line.GoodsID.String())
		}

		packs, err := uom.ToTotalPacks(line.BoxQuantity, line.PackQuantity, g.PackPerBox)
		if err != nil {
			return err
		}

		line.GoodsName = g.Name
		line.TotalPrice = line.UnitPrice.Mul(types.NewMoneyFromInt(packs))
		total = total.Add(line.TotalPrice)
	}
	o.TotalAmount = total
	return nil
}
