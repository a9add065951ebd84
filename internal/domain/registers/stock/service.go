package stock

import (
	"context"
	"fmt"
	"time"

	"pointorder/internal/core/apperror"
	"pointorder/internal/core/entity"
	"pointorder/internal/core/id"
	"pointorder/internal/core/uom"
	"pointorder/internal/domain/catalogs/goods"
	"pointorder/pkg/logger"
)

// Requirement is one goods quantity to check or debit.
type Requirement struct {
	GoodsID      id.ID
	BoxQuantity  int64
	PackQuantity int64
}

// StockInfo is the current balance of one goods at one location.
type StockInfo struct {
	GoodsID     id.ID `json:"goodsId"`
	CurrentBox  int64 `json:"currentBox"`
	CurrentPack int64 `json:"currentPack"`
	TotalPacks  int64 `json:"totalPacks"`
}

// LineCheck is the per-goods detail of a batch sufficiency check.
type LineCheck struct {
	GoodsID       id.ID  `json:"goodsId"`
	GoodsName     string `json:"goodsName"`
	RequiredBox   int64  `json:"requiredBox"`
	RequiredPack  int64  `json:"requiredPack"`
	AvailableBox  int64  `json:"availableBox"`
	AvailablePack int64  `json:"availablePack"`
	Sufficient    bool   `json:"sufficient"`

	// Pack-equivalent totals, for rendering "needed X, have Y".
	RequiredPacks  int64 `json:"requiredPacks"`
	AvailablePacks int64 `json:"availablePacks"`
}

// BatchCheckResult is the outcome of a batch sufficiency check.
type BatchCheckResult struct {
	AllSufficient bool        `json:"allSufficient"`
	Details       []LineCheck `json:"details"`
}

// Shortfalls converts the insufficient lines into the structured
// per-line shortfall list of an InsufficientStock error.
func (r BatchCheckResult) Shortfalls() []apperror.StockShortfall {
	var out []apperror.StockShortfall
	for _, d := range r.Details {
		if d.Sufficient {
			continue
		}
		out = append(out, apperror.StockShortfall{
			GoodsID:   d.GoodsID.String(),
			GoodsName: d.GoodsName,
			Required:  d.RequiredPacks,
			Available: d.AvailablePacks,
		})
	}
	return out
}

// Service provides stock ledger operations.
//
// The read paths (GetStock, BatchCheckStock) run without locks; the debit
// path must run inside the caller's transaction and re-verifies every line
// under a row lock before subtracting.
type Service struct {
	repo      Repository
	goodsRepo goods.Repository
}

// NewService creates a stock ledger service.
func NewService(repo Repository, goodsRepo goods.Repository) *Service {
	return &Service{repo: repo, goodsRepo: goodsRepo}
}

// GetStock returns the current balance for one goods at one location.
func (s *Service) GetStock(ctx context.Context, baseID, goodsID, locationID id.ID) (StockInfo, error) {
	g, err := s.goodsRepo.GetByID(ctx, goodsID)
	if err != nil {
		return StockInfo{}, err
	}

	balance, err := s.repo.GetBalance(ctx, baseID, goodsID, locationID)
	if err != nil {
		return StockInfo{}, fmt.Errorf("get balance: %w", err)
	}

	total, err := uom.ToTotalPacks(balance.BoxQuantity, balance.PackQuantity, g.PackPerBox)
	if err != nil {
		return StockInfo{}, err
	}

	return StockInfo{
		GoodsID:     goodsID,
		CurrentBox:  balance.BoxQuantity,
		CurrentPack: balance.PackQuantity,
		TotalPacks:  total,
	}, nil
}

// BatchCheckStock checks every requirement against one location.
// Read-only; the result may be stale by the time a shipment commits, so
// DebitForShipment re-verifies under row locks.
func (s *Service) BatchCheckStock(ctx context.Context, baseID, locationID id.ID, reqs []Requirement) (BatchCheckResult, error) {
	if len(reqs) == 0 {
		return BatchCheckResult{AllSufficient: true}, nil
	}

	goodsByID, err := s.resolveGoods(ctx, reqs)
	if err != nil {
		return BatchCheckResult{}, err
	}

	goodsIDs := make([]id.ID, 0, len(reqs))
	for _, r := range reqs {
		goodsIDs = append(goodsIDs, r.GoodsID)
	}
	balances, err := s.repo.GetBalances(ctx, baseID, locationID, goodsIDs)
	if err != nil {
		return BatchCheckResult{}, fmt.Errorf("get balances: %w", err)
	}

	result := BatchCheckResult{AllSufficient: true}
	for _, r := range reqs {
		g := goodsByID[r.GoodsID]
		balance := balances[r.GoodsID]

		required, err := uom.ToTotalPacks(r.BoxQuantity, r.PackQuantity, g.PackPerBox)
		if err != nil {
			return BatchCheckResult{}, err
		}
		available, err := uom.ToTotalPacks(balance.BoxQuantity, balance.PackQuantity, g.PackPerBox)
		if err != nil {
			return BatchCheckResult{}, err
		}

		line := LineCheck{
			GoodsID:        r.GoodsID,
			GoodsName:      g.Name,
			RequiredBox:    r.BoxQuantity,
			RequiredPack:   r.PackQuantity,
			AvailableBox:   balance.BoxQuantity,
			AvailablePack:  balance.PackQuantity,
			Sufficient:     available >= required,
			RequiredPacks:  required,
			AvailablePacks: available,
		}
		if !line.Sufficient {
			result.AllSufficient = false
		}
		result.Details = append(result.Details, line)
	}

	return result, nil
}

// DebitForShipment subtracts every requirement from the location's
// balances. Must run inside the caller's transaction: each balance row is
// locked, re-verified, and rewritten, so the status change and the debits
// commit or roll back together.
//
// If any line is short the whole call fails with the full shortfall list
// and no balance is touched (the transaction rolls back).
func (s *Service) DebitForShipment(ctx context.Context, baseID, locationID id.ID, reqs []Requirement) error {
	if len(reqs) == 0 {
		return nil
	}

	goodsByID, err := s.resolveGoods(ctx, reqs)
	if err != nil {
		return err
	}

	type debit struct {
		balance  entity.StockBalance
		newTotal int64
		perBox   int64
	}

	var shortfalls []apperror.StockShortfall
	debits := make([]debit, 0, len(reqs))

	for _, r := range reqs {
		g := goodsByID[r.GoodsID]

		required, err := uom.ToTotalPacks(r.BoxQuantity, r.PackQuantity, g.PackPerBox)
		if err != nil {
			return err
		}

		balance, err := s.repo.GetBalanceForUpdate(ctx, baseID, r.GoodsID, locationID)
		if err != nil {
			return fmt.Errorf("lock balance for %s: %w", r.GoodsID, err)
		}
		available, err := uom.ToTotalPacks(balance.BoxQuantity, balance.PackQuantity, g.PackPerBox)
		if err != nil {
			return err
		}

		if available < required {
			shortfalls = append(shortfalls, apperror.StockShortfall{
				GoodsID:   r.GoodsID.String(),
				GoodsName: g.Name,
				Required:  required,
				Available: available,
			})
			continue
		}

		debits = append(debits, debit{
			balance:  balance,
			newTotal: available - required,
			perBox:   g.PackPerBox,
		})
	}

	if len(shortfalls) > 0 {
		return apperror.NewInsufficientStock(shortfalls)
	}

	now := time.Now().UTC()
	for _, d := range debits {
		box, pack, err := uom.FromTotalPacks(d.newTotal, d.perBox)
		if err != nil {
			return err
		}
		d.balance.BoxQuantity = box
		d.balance.PackQuantity = pack
		d.balance.LastMovementAt = now
		d.balance.UpdatedAt = now

		if err := s.repo.UpdateBalance(ctx, d.balance); err != nil {
			return fmt.Errorf("update balance for %s: %w", d.balance.GoodsID, err)
		}
	}

	logger.Info(ctx, "stock debited",
		"location_id", locationID,
		"lines", len(debits),
	)
	return nil
}

// GetLocationStock returns all non-zero balances at one location.
func (s *Service) GetLocationStock(ctx context.Context, baseID, locationID id.ID) ([]entity.StockBalance, error) {
	return s.repo.GetBalancesByLocation(ctx, baseID, locationID)
}

func (s *Service) resolveGoods(ctx context.Context, reqs []Requirement) (map[id.ID]*goods.Goods, error) {
	goodsIDs := make([]id.ID, 0, len(reqs))
	for _, r := range reqs {
		goodsIDs = append(goodsIDs, r.GoodsID)
	}

	goodsByID, err := s.goodsRepo.GetByIDs(ctx, goodsIDs)
	if err != nil {
		return nil, fmt.Errorf("get goods: %w", err)
	}
	for _, r := range reqs {
		if _, ok := goodsByID[r.GoodsID]; !ok {
			return nil, apperror.NewNotFound("goods", r.GoodsID.String())
		}
	}
	return goodsByID, nil
}
