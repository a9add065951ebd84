// Package point provides the retail point catalog.
package point

import (
	"context"

	"pointorder/internal/core/apperror"
	"pointorder/internal/core/entity"
	"pointorder/internal/core/id"
)

// Point is a retail/distribution location that places orders against a
// base's inventory. Its contact record supplies the default shipping
// address and phone for orders that omit them.
type Point struct {
	entity.BaseEntity

	BaseID id.ID  `db:"base_id" json:"baseId"`
	Code   string `db:"code" json:"code"`
	Name   string `db:"name" json:"name"`

	ContactName string `db:"contact_name" json:"contactName,omitempty"`
	Phone       string `db:"phone" json:"phone,omitempty"`
	Address     string `db:"address" json:"address,omitempty"`

	// OwnerUserID is the point-owner account allowed to receive orders.
	OwnerUserID id.ID `db:"owner_user_id" json:"ownerUserId,omitempty"`

	Active bool `db:"active" json:"active"`
}

// NewPoint creates a point record.
func NewPoint(baseID id.ID, code, name string) *Point {
	return &Point{
		BaseEntity: entity.NewBaseEntity(),
		BaseID:     baseID,
		Code:       code,
		Name:       name,
		Active:     true,
	}
}

// Validate implements entity.Validatable.
func (p *Point) Validate(ctx context.Context) error {
	if id.IsNil(p.BaseID) {
		return apperror.NewValidation("base is required").
			WithDetail("field", "baseId")
	}
	if p.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	return nil
}

var _ entity.Validatable = (*Point)(nil)
