package stock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pointorder/internal/core/apperror"
	"pointorder/internal/core/entity"
	"pointorder/internal/core/id"
	"pointorder/internal/domain/catalogs/goods"
)

type balanceKey struct {
	base, goods, location id.ID
}

type fakeRepo struct {
	balances map[balanceKey]entity.StockBalance
	updates  int
}

func (r *fakeRepo) key(b, g, l id.ID) balanceKey { return balanceKey{base: b, goods: g, location: l} }

func (r *fakeRepo) GetBalance(_ context.Context, baseID, goodsID, locationID id.ID) (entity.StockBalance, error) {
	if b, ok := r.balances[r.key(baseID, goodsID, locationID)]; ok {
		return b, nil
	}
	return entity.StockBalance{BaseID: baseID, GoodsID: goodsID, LocationID: locationID}, nil
}

func (r *fakeRepo) GetBalanceForUpdate(ctx context.Context, baseID, goodsID, locationID id.ID) (entity.StockBalance, error) {
	return r.GetBalance(ctx, baseID, goodsID, locationID)
}

func (r *fakeRepo) GetBalances(ctx context.Context, baseID, locationID id.ID, goodsIDs []id.ID) (map[id.ID]entity.StockBalance, error) {
	out := make(map[id.ID]entity.StockBalance)
	for _, gid := range goodsIDs {
		if b, ok := r.balances[r.key(baseID, gid, locationID)]; ok {
			out[gid] = b
		}
	}
	return out, nil
}

func (r *fakeRepo) UpdateBalance(_ context.Context, b entity.StockBalance) error {
	r.balances[r.key(b.BaseID, b.GoodsID, b.LocationID)] = b
	r.updates++
	return nil
}

func (r *fakeRepo) GetBalancesByLocation(_ context.Context, baseID, locationID id.ID) ([]entity.StockBalance, error) {
	var out []entity.StockBalance
	for k, b := range r.balances {
		if k.base == baseID && k.location == locationID {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeGoodsRepo struct {
	goods map[id.ID]*goods.Goods
}

func (r *fakeGoodsRepo) Create(_ context.Context, g *goods.Goods) error { r.goods[g.ID] = g; return nil }
func (r *fakeGoodsRepo) Update(_ context.Context, g *goods.Goods) error { r.goods[g.ID] = g; return nil }

func (r *fakeGoodsRepo) GetByID(_ context.Context, goodsID id.ID) (*goods.Goods, error) {
	g, ok := r.goods[goodsID]
	if !ok {
		return nil, apperror.NewNotFound("goods", goodsID.String())
	}
	return g, nil
}

func (r *fakeGoodsRepo) GetByIDs(_ context.Context, ids []id.ID) (map[id.ID]*goods.Goods, error) {
	out := make(map[id.ID]*goods.Goods)
	for _, gid := range ids {
		if g, ok := r.goods[gid]; ok {
			out[gid] = g
		}
	}
	return out, nil
}

func (r *fakeGoodsRepo) List(_ context.Context, _ goods.ListFilter) ([]*goods.Goods, error) {
	return nil, nil
}

type env struct {
	svc        *Service
	repo       *fakeRepo
	baseID     id.ID
	locationID id.ID
	goodsA     *goods.Goods
	goodsB     *goods.Goods
}

func newEnv(t *testing.T) *env {
	t.Helper()

	baseID := id.New()
	goodsRepo := &fakeGoodsRepo{goods: make(map[id.ID]*goods.Goods)}
	a := goods.NewGoods(baseID, "A", "Goods A", 10, 20)
	b := goods.NewGoods(baseID, "B", "Goods B", 6, 12)
	require.NoError(t, goodsRepo.Create(context.Background(), a))
	require.NoError(t, goodsRepo.Create(context.Background(), b))

	repo := &fakeRepo{balances: make(map[balanceKey]entity.StockBalance)}
	return &env{
		svc:        NewService(repo, goodsRepo),
		repo:       repo,
		baseID:     baseID,
		locationID: id.New(),
		goodsA:     a,
		goodsB:     b,
	}
}

func (e *env) set(t *testing.T, g *goods.Goods, box, pack int64) {
	t.Helper()
	require.NoError(t, e.repo.UpdateBalance(context.Background(), entity.StockBalance{
		BaseID:       e.baseID,
		GoodsID:      g.ID,
		LocationID:   e.locationID,
		BoxQuantity:  box,
		PackQuantity: pack,
	}))
	e.repo.updates = 0
}

func TestGetStock(t *testing.T) {
	e := newEnv(t)
	e.set(t, e.goodsA, 1, 15)

	info, err := e.svc.GetStock(context.Background(), e.baseID, e.goodsA.ID, e.locationID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), info.CurrentBox)
	assert.Equal(t, int64(15), info.CurrentPack)
	assert.Equal(t, int64(25), info.TotalPacks)
}

func TestGetStock_MissingRowReadsAsZero(t *testing.T) {
	e := newEnv(t)

	info, err := e.svc.GetStock(context.Background(), e.baseID, e.goodsA.ID, e.locationID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.TotalPacks)
}

func TestBatchCheckStock(t *testing.T) {
	e := newEnv(t)
	e.set(t, e.goodsA, 1, 15) // 25 available
	e.set(t, e.goodsB, 0, 3)  // 3 available

	result, err := e.svc.BatchCheckStock(context.Background(), e.baseID, e.locationID, []Requirement{
		{GoodsID: e.goodsA.ID, BoxQuantity: 2},                  // 20 required, ok
		{GoodsID: e.goodsB.ID, BoxQuantity: 1, PackQuantity: 1}, // 7 required, short
	})
	require.NoError(t, err)
	assert.False(t, result.AllSufficient)
	require.Len(t, result.Details, 2)

	assert.True(t, result.Details[0].Sufficient)
	assert.Equal(t, int64(20), result.Details[0].RequiredPacks)
	assert.Equal(t, int64(25), result.Details[0].AvailablePacks)

	assert.False(t, result.Details[1].Sufficient)
	assert.Equal(t, "Goods B", result.Details[1].GoodsName)
	assert.Equal(t, int64(7), result.Details[1].RequiredPacks)
	assert.Equal(t, int64(3), result.Details[1].AvailablePacks)

	shortfalls := result.Shortfalls()
	require.Len(t, shortfalls, 1)
	assert.Equal(t, e.goodsB.ID.String(), shortfalls[0].GoodsID)
}

func TestBatchCheckStock_UnknownGoods(t *testing.T) {
	e := newEnv(t)

	_, err := e.svc.BatchCheckStock(context.Background(), e.baseID, e.locationID, []Requirement{
		{GoodsID: id.New(), BoxQuantity: 1},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestDebitForShipment(t *testing.T) {
	e := newEnv(t)
	e.set(t, e.goodsA, 1, 15) // 25 available

	err := e.svc.DebitForShipment(context.Background(), e.baseID, e.locationID, []Requirement{
		{GoodsID: e.goodsA.ID, BoxQuantity: 2}, // 20 required
	})
	require.NoError(t, err)

	b, _ := e.repo.GetBalance(context.Background(), e.baseID, e.goodsA.ID, e.locationID)
	assert.Equal(t, int64(0), b.BoxQuantity)
	assert.Equal(t, int64(5), b.PackQuantity)
	assert.False(t, b.LastMovementAt.IsZero())
}

func TestDebitForShipment_ShortLineWritesNothing(t *testing.T) {
	e := newEnv(t)
	e.set(t, e.goodsA, 5, 0) // plenty
	e.set(t, e.goodsB, 0, 3) // short

	err := e.svc.DebitForShipment(context.Background(), e.baseID, e.locationID, []Requirement{
		{GoodsID: e.goodsA.ID, BoxQuantity: 1},
		{GoodsID: e.goodsB.ID, BoxQuantity: 1},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	// All lines are checked before any write, so even the sufficient
	// line's balance is untouched.
	assert.Equal(t, 0, e.repo.updates)
	a, _ := e.repo.GetBalance(context.Background(), e.baseID, e.goodsA.ID, e.locationID)
	assert.Equal(t, int64(5), a.BoxQuantity)
}

func TestDebitForShipment_ExactAmount(t *testing.T) {
	e := newEnv(t)
	e.set(t, e.goodsA, 2, 0)

	err := e.svc.DebitForShipment(context.Background(), e.baseID, e.locationID, []Requirement{
		{GoodsID: e.goodsA.ID, BoxQuantity: 2},
	})
	require.NoError(t, err)

	b, _ := e.repo.GetBalance(context.Background(), e.baseID, e.goodsA.ID, e.locationID)
	assert.Equal(t, int64(0), b.BoxQuantity)
	assert.Equal(t, int64(0), b.PackQuantity)
}
