package orders

import (
	"context"
	"fmt"
	"time"

	"pointorder/internal/core/apperror"
	"pointorder/internal/core/entity"
	"pointorder/internal/core/id"
	"pointorder/internal/core/identity"
	"pointorder/internal/core/tx"
	"pointorder/internal/core/types"
	"pointorder/internal/domain/catalogs/goods"
	"pointorder/internal/domain/catalogs/point"
	"pointorder/internal/domain/registers/outbound"
	"pointorder/internal/domain/registers/stock"
	"pointorder/pkg/logger"
	"pointorder/pkg/ordercode"
)

// Auditor records lifecycle transitions for the audit trail.
// The postgres implementation writes inside the current transaction.
type Auditor interface {
	LogTransition(ctx context.Context, orderID id.ID, action string, snapshot any) error
}

// createCodeAttempts bounds retries on an order code collision.
const createCodeAttempts = 3

// Service orchestrates the order state machine. It owns the atomicity
// boundary: every mutating transition runs in one transaction with the
// order row locked before any effect is applied.
type Service struct {
	repo      Repository
	points    *point.Service
	goods     *goods.Service
	stock     *stock.Service
	movements *outbound.Recorder
	codes     *ordercode.Generator
	txManager tx.Manager
	audit     Auditor
}

// NewService creates the order lifecycle service.
// audit may be nil, in which case transitions are not audit-logged.
func NewService(
	repo Repository,
	points *point.Service,
	goodsSvc *goods.Service,
	stockSvc *stock.Service,
	movements *outbound.Recorder,
	txManager tx.Manager,
	audit Auditor,
) *Service {
	return &Service{
		repo:      repo,
		points:    points,
		goods:     goodsSvc,
		stock:     stockSvc,
		movements: movements,
		codes:     ordercode.New(),
		txManager: txManager,
		audit:     audit,
	}
}

// LineInput is one requested order line.
type LineInput struct {
	GoodsID      id.ID       `json:"goodsId"`
	BoxQuantity  int64       `json:"boxQuantity"`
	PackQuantity int64       `json:"packQuantity"`
	UnitPrice    types.Money `json:"unitPrice"`
}

// CreateInput describes a new order.
type CreateInput struct {
	PointID         id.ID       `json:"pointId"`
	OrderDate       *time.Time  `json:"orderDate,omitempty"`
	ShippingAddress string      `json:"shippingAddress,omitempty"`
	ShippingPhone   string      `json:"shippingPhone,omitempty"`
	Lines           []LineInput `json:"lines"`
}

// ShipInput carries the delivery metadata of a shipment.
type ShipInput struct {
	LocationID     id.ID  `json:"locationId"`
	TrackingNumber string `json:"trackingNumber,omitempty"`
	DeliveryPerson string `json:"deliveryPerson,omitempty"`
	DeliveryPhone  string `json:"deliveryPhone,omitempty"`
}

// PaymentInput carries one payment confirmation.
type PaymentInput struct {
	Amount types.Money `json:"amount"`
	Method string      `json:"method,omitempty"`
	Notes  string      `json:"notes,omitempty"`
}

// ActualQuantityInput records what a point actually received on one line,
// when it differs from what was ordered.
type ActualQuantityInput struct {
	LineNo       int   `json:"lineNo"`
	BoxQuantity  int64 `json:"boxQuantity"`
	PackQuantity int64 `json:"packQuantity"`
}

// Create validates the request, computes totals and stores a PENDING order.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Order, error) {
	if id.IsNil(input.PointID) {
		return nil, apperror.NewValidation("point is required").
			WithDetail("field", "pointId")
	}
	if len(input.Lines) == 0 {
		return nil, apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	p, err := s.points.GetActive(ctx, input.PointID)
	if err != nil {
		return nil, err
	}

	o := NewOrder(p.BaseID, p.ID, identity.UserID(ctx))
	if input.OrderDate != nil {
		o.OrderDate = input.OrderDate.UTC()
	}
	o.Lines = linesFromInput(o.ID, input.Lines)

	// Shipping contact defaults to the point's own record.
	o.ShippingAddress = input.ShippingAddress
	o.ShippingPhone = input.ShippingPhone
	if o.ShippingAddress == "" {
		o.ShippingAddress = p.Address
	}
	if o.ShippingPhone == "" {
		o.ShippingPhone = p.Phone
	}

	if err := o.Validate(ctx); err != nil {
		return nil, err
	}

	goodsByID, err := s.goods.GetByIDs(ctx, lineGoodsIDs(o.Lines))
	if err != nil {
		return nil, err
	}
	if err := o.RecalculateTotals(goodsByID); err != nil {
		return nil, err
	}

	// Codes are random; collisions surface as duplicate-key errors and
	// are retried with a fresh draw.
	for attempt := 0; ; attempt++ {
		o.Code, err = s.codes.Next()
		if err != nil {
			return nil, apperror.NewInternal(err)
		}

		err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			if err := s.repo.Create(ctx, o); err != nil {
				return err
			}
			if err := s.repo.SaveLines(ctx, o.ID, o.Lines); err != nil {
				return fmt.Errorf("save lines: %w", err)
			}
			return s.logTransition(ctx, o, "create")
		})
		if err == nil {
			break
		}
		if apperror.IsCode(err, apperror.CodeDuplicate) && attempt < createCodeAttempts-1 {
			continue
		}
		return nil, err
	}

	logger.Info(ctx, "order created",
		"id", o.ID,
		"code", o.Code,
		"point_id", o.PointID,
		"total", o.TotalAmount,
	)
	return o, nil
}

// UpdateItems replaces all lines of a PENDING order and recomputes totals.
func (s *Service) UpdateItems(ctx context.Context, orderID id.ID, lines []LineInput) (*Order, error) {
	if len(lines) == 0 {
		return nil, apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	var o *Order
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		o, err = s.repo.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if _, err := nextStatus(o.Status, EventUpdateItems); err != nil {
			return err
		}

		o.Lines = linesFromInput(o.ID, lines)
		if err := o.Validate(ctx); err != nil {
			return err
		}

		goodsByID, err := s.goods.GetByIDs(ctx, lineGoodsIDs(o.Lines))
		if err != nil {
			return err
		}
		if err := o.RecalculateTotals(goodsByID); err != nil {
			return err
		}

		o.Touch()
		if err := s.repo.SaveLines(ctx, o.ID, o.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		if err := s.repo.Update(ctx, o); err != nil {
			return err
		}
		return s.logTransition(ctx, o, "updateItems")
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "order items updated", "id", o.ID, "code", o.Code, "total", o.TotalAmount)
	return o, nil
}

// Confirm moves PENDING to CONFIRMED, stamping who confirmed and when.
func (s *Service) Confirm(ctx context.Context, orderID id.ID) (*Order, error) {
	if !identity.HasAnyRole(ctx, identity.RoleStaff, identity.RoleAdmin) {
		return nil, apperror.NewForbidden("caller may not confirm orders").
			WithDetail("required_role", identity.RoleStaff)
	}

	return s.transition(ctx, orderID, EventConfirm, "confirm", func(o *Order) error {
		now := time.Now().UTC()
		o.ConfirmedAt = &now
		o.ConfirmedBy = identity.UserID(ctx)
		return nil
	})
}

// Ship moves CONFIRMED to SHIPPING after a batched sufficiency check.
//
// The cheap read-only check runs first so an obviously short shipment
// fails without taking locks. The authoritative check happens again inside
// the transaction: the order row is locked, each balance row is locked and
// re-verified, and the debits, the movement rows, and the status change
// commit or roll back together. Retrying a ship that already succeeded
// fails the status guard and therefore never double-debits.
func (s *Service) Ship(ctx context.Context, orderID id.ID, input ShipInput) (*Order, error) {
	if id.IsNil(input.LocationID) {
		return nil, apperror.NewValidation("location is required").
			WithDetail("field", "locationId")
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if _, err := nextStatus(o.Status, EventShip); err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	reqs := requirementsFromLines(lines)

	check, err := s.stock.BatchCheckStock(ctx, o.BaseID, input.LocationID, reqs)
	if err != nil {
		return nil, err
	}
	if !check.AllSufficient {
		return nil, apperror.NewInsufficientStock(check.Shortfalls())
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		o, err = s.repo.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		next, err := nextStatus(o.Status, EventShip)
		if err != nil {
			return err
		}

		// Re-verified under row locks; the pre-check above may be stale.
		if err := s.stock.DebitForShipment(ctx, o.BaseID, input.LocationID, reqs); err != nil {
			return err
		}

		now := time.Now().UTC()
		o.Status = next
		o.ShippedAt = &now
		o.TrackingNumber = input.TrackingNumber
		o.DeliveryPerson = input.DeliveryPerson
		o.DeliveryPhone = input.DeliveryPhone
		o.Touch()
		if err := s.repo.Update(ctx, o); err != nil {
			return err
		}

		movements := make([]entity.OutboundMovement, 0, len(lines))
		for _, line := range lines {
			movements = append(movements, entity.NewOutboundMovement(
				o.BaseID, line.GoodsID, input.LocationID,
				entity.MovementCauseOrder,
				line.BoxQuantity, line.PackQuantity,
				o.Code,
				identity.UserID(ctx),
			))
		}
		if err := s.movements.Record(ctx, movements); err != nil {
			return err
		}

		return s.logTransition(ctx, o, "ship")
	})
	if err != nil {
		return nil, err
	}

	o.Lines = lines
	logger.Info(ctx, "order shipped",
		"id", o.ID,
		"code", o.Code,
		"location_id", input.LocationID,
		"lines", len(lines),
	)
	return o, nil
}

// Deliver moves SHIPPING to DELIVERED.
func (s *Service) Deliver(ctx context.Context, orderID id.ID) (*Order, error) {
	return s.transition(ctx, orderID, EventDeliver, "deliver", func(o *Order) error {
		now := time.Now().UTC()
		o.DeliveredAt = &now
		return nil
	})
}

// Receive is the point-owner's confirmation path: SHIPPING or DELIVERED to
// COMPLETED. Idempotent; receiving a completed order is a no-op success.
// actuals optionally records per-line received quantities that differ from
// what was ordered.
func (s *Service) Receive(ctx context.Context, orderID id.ID, actuals ...ActualQuantityInput) (*Order, error) {
	var o *Order
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		o, err = s.repo.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		next, err := nextStatus(o.Status, EventReceive)
		if err != nil {
			return err
		}
		if o.Status == StatusCompleted {
			// Repeat receive is a no-op, but quantities recorded at
			// completion are final.
			if len(actuals) > 0 {
				return apperror.NewValidation("cannot record actual quantities on a completed order").
					WithDetail("status", string(o.Status))
			}
			return nil
		}

		if len(actuals) > 0 {
			lines, err := s.repo.GetLines(ctx, orderID)
			if err != nil {
				return fmt.Errorf("get lines: %w", err)
			}
			if err := applyActualQuantities(lines, actuals); err != nil {
				return err
			}
			if err := s.repo.SaveLines(ctx, orderID, lines); err != nil {
				return fmt.Errorf("save lines: %w", err)
			}
			o.Lines = lines
		}

		now := time.Now().UTC()
		o.Status = next
		o.CompletedAt = &now
		if o.DeliveredAt == nil {
			o.DeliveredAt = &now
		}
		o.Touch()
		if err := s.repo.Update(ctx, o); err != nil {
			return err
		}
		return s.logTransition(ctx, o, "receive")
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "order received by point", "id", o.ID, "code", o.Code)
	return o, nil
}

// Complete is the staff confirmation path: DELIVERED to COMPLETED.
// Parallel to Receive but a different actor, kept as a distinct operation
// so the audit trail shows who finished the order and how.
func (s *Service) Complete(ctx context.Context, orderID id.ID) (*Order, error) {
	return s.transition(ctx, orderID, EventComplete, "complete", func(o *Order) error {
		now := time.Now().UTC()
		o.CompletedAt = &now
		return nil
	})
}

// Cancel moves PENDING to CANCELLED (terminal).
func (s *Service) Cancel(ctx context.Context, orderID id.ID) (*Order, error) {
	return s.transition(ctx, orderID, EventCancel, "cancel", func(o *Order) error {
		now := time.Now().UTC()
		o.CancelledAt = &now
		return nil
	})
}

// ConfirmPayment folds one payment into the order under the row lock,
// derives the payment status and appends a log entry to paymentNotes.
func (s *Service) ConfirmPayment(ctx context.Context, orderID id.ID, input PaymentInput) (*Order, error) {
	if input.Amount.Sign() <= 0 {
		return nil, apperror.NewValidation("payment amount must be positive").
			WithDetail("amount", input.Amount.String())
	}

	var o *Order
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		o, err = s.repo.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if _, err := nextStatus(o.Status, EventConfirmPayment); err != nil {
			return err
		}

		newPaid, status, err := ApplyPayment(o.PaidAmount, o.TotalAmount, input.Amount)
		if err != nil {
			return err
		}
		o.PaidAmount = newPaid
		o.PaymentStatus = status
		o.PaymentNotes = AppendPaymentNote(o.PaymentNotes,
			FormatPaymentNote(time.Now().UTC(), input.Amount, input.Method, input.Notes))

		o.Touch()
		if err := s.repo.Update(ctx, o); err != nil {
			return err
		}
		return s.logTransition(ctx, o, "confirmPayment")
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "payment confirmed",
		"id", o.ID,
		"code", o.Code,
		"amount", input.Amount,
		"paid", o.PaidAmount,
		"payment_status", o.PaymentStatus,
	)
	return o, nil
}

// Delete physically removes a PENDING or CANCELLED order.
// Orders past PENDING are part of the audit history and reject deletion.
func (s *Service) Delete(ctx context.Context, orderID id.ID) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		o, err := s.repo.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if _, err := nextStatus(o.Status, EventDelete); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, orderID); err != nil {
			return err
		}
		return s.logTransition(ctx, o, "delete")
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "order deleted", "id", orderID)
	return nil
}

// GetByID retrieves an order with its lines.
func (s *Service) GetByID(ctx context.Context, orderID id.ID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	o.Lines, err = s.repo.GetLines(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	return o, nil
}

// GetByCode retrieves an order by its human-facing code.
func (s *Service) GetByCode(ctx context.Context, code string) (*Order, error) {
	o, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	o.Lines, err = s.repo.GetLines(ctx, o.ID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	return o, nil
}

// List retrieves orders with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (ListResult, error) {
	return s.repo.List(ctx, filter)
}

// transition runs the common shape of a simple status move: lock the row,
// ask the table, apply stamps, write back, audit.
func (s *Service) transition(ctx context.Context, orderID id.ID, event Event, action string, stamp func(*Order) error) (*Order, error) {
	var o *Order
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		o, err = s.repo.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		next, err := nextStatus(o.Status, event)
		if err != nil {
			return err
		}

		o.Status = next
		if err := stamp(o); err != nil {
			return err
		}
		o.Touch()
		if err := s.repo.Update(ctx, o); err != nil {
			return err
		}
		return s.logTransition(ctx, o, action)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "order transition", "id", o.ID, "code", o.Code, "event", event, "status", o.Status)
	return o, nil
}

func (s *Service) logTransition(ctx context.Context, o *Order, action string) error {
	if s.audit == nil {
		return nil
	}
	return s.audit.LogTransition(ctx, o.ID, action, o)
}

func linesFromInput(orderID id.ID, inputs []LineInput) []OrderLine {
	lines := make([]OrderLine, 0, len(inputs))
	for i, in := range inputs {
		lines = append(lines, OrderLine{
			ID:           id.New(),
			OrderID:      orderID,
			LineNo:       i + 1,
			GoodsID:      in.GoodsID,
			BoxQuantity:  in.BoxQuantity,
			PackQuantity: in.PackQuantity,
			UnitPrice:    in.UnitPrice,
		})
	}
	return lines
}

func lineGoodsIDs(lines []OrderLine) []id.ID {
	ids := make([]id.ID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.GoodsID)
	}
	return ids
}

func applyActualQuantities(lines []OrderLine, actuals []ActualQuantityInput) error {
	byLineNo := make(map[int]*OrderLine, len(lines))
	for i := range lines {
		byLineNo[lines[i].LineNo] = &lines[i]
	}
	for _, a := range actuals {
		line, ok := byLineNo[a.LineNo]
		if !ok {
			return apperror.NewValidation("unknown line number").
				WithDetail("lineNo", a.LineNo)
		}
		if a.BoxQuantity < 0 || a.PackQuantity < 0 {
			return apperror.NewValidation("quantities must not be negative").
				WithDetail("lineNo", a.LineNo)
		}
		box, pack := a.BoxQuantity, a.PackQuantity
		line.ActualBoxQuantity = &box
		line.ActualPackQuantity = &pack
	}
	return nil
}

func requirementsFromLines(lines []OrderLine) []stock.Requirement {
	reqs := make([]stock.Requirement, 0, len(lines))
	for _, line := range lines {
		reqs = append(reqs, stock.Requirement{
			GoodsID:      line.GoodsID,
			BoxQuantity:  line.BoxQuantity,
			PackQuantity: line.PackQuantity,
		})
	}
	return reqs
}
