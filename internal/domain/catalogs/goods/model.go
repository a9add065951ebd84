// Package goods provides the goods catalog.
package goods

import (
	"context"

	"pointorder/internal/core/apperror"
	"pointorder/internal/core/entity"
	"pointorder/internal/core/id"
	"pointorder/internal/core/types"
)

// Goods represents a sellable item with nested units of measure.
// PackPerBox and PiecePerPack are the per-goods conversion constants used
// by all quantity arithmetic.
type Goods struct {
	entity.BaseEntity

	BaseID id.ID  `db:"base_id" json:"baseId"`
	Code   string `db:"code" json:"code"`
	Name   string `db:"name" json:"name"`

	// Unit names for display (e.g. "箱"/"box", "包"/"pack", "支"/"piece")
	BoxUnit   string `db:"box_unit" json:"boxUnit,omitempty"`
	PackUnit  string `db:"pack_unit" json:"packUnit,omitempty"`
	PieceUnit string `db:"piece_unit" json:"pieceUnit,omitempty"`

	PackPerBox   int64 `db:"pack_per_box" json:"packPerBox"`
	PiecePerPack int64 `db:"piece_per_pack" json:"piecePerPack"`

	// SalePrice is the default price per pack.
	SalePrice types.Money `db:"sale_price" json:"salePrice"`

	Active bool `db:"active" json:"active"`
}

// NewGoods creates a goods record.
func NewGoods(baseID id.ID, code, name string, packPerBox, piecePerPack int64) *Goods {
	return &Goods{
		BaseEntity:   entity.NewBaseEntity(),
		BaseID:       baseID,
		Code:         code,
		Name:         name,
		PackPerBox:   packPerBox,
		PiecePerPack: piecePerPack,
		Active:       true,
	}
}

// Validate implements entity.Validatable.
// Conversion constants are rejected on write; rows that predate this check
// still surface as ConfigurationError when the arithmetic touches them.
func (g *Goods) Validate(ctx context.Context) error {
	if id.IsNil(g.BaseID) {
		return apperror.NewValidation("base is required").
			WithDetail("field", "baseId")
	}
	if g.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if g.PackPerBox <= 0 {
		return apperror.NewValidation("packPerBox must be positive").
			WithDetail("field", "packPerBox").
			WithDetail("value", g.PackPerBox)
	}
	if g.PiecePerPack <= 0 {
		return apperror.NewValidation("piecePerPack must be positive").
			WithDetail("field", "piecePerPack").
			WithDetail("value", g.PiecePerPack)
	}
	return nil
}

var _ entity.Validatable = (*Goods)(nil)
