// Package main provides a CLI tool for seeding the database with demo data.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"pointorder/internal/core/entity"
	"pointorder/internal/core/id"
	"pointorder/internal/core/types"
	"pointorder/internal/domain/catalogs/goods"
	"pointorder/internal/domain/catalogs/point"
	"pointorder/internal/infrastructure/storage/postgres"
	"pointorder/internal/infrastructure/storage/postgres/catalog_repo"
	"pointorder/internal/infrastructure/storage/postgres/register_repo"
	"pointorder/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	baseID, err := resolveBaseID()
	if err != nil {
		log.Fatalw("invalid BASE_ID", "error", err)
	}

	txm := postgres.NewTxManager(pool)
	goodsRepo := catalog_repo.NewGoodsRepo(txm)
	pointRepo := catalog_repo.NewPointRepo(txm)
	stockRepo := register_repo.NewStockRepo(txm)

	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		seededGoods, err := seedGoods(ctx, goodsRepo, baseID, log)
		if err != nil {
			return err
		}
		if err := seedPoints(ctx, pointRepo, baseID, log); err != nil {
			return err
		}
		return seedStock(ctx, stockRepo, baseID, seededGoods, log)
	})
	if err != nil {
		log.Fatalw("seeding failed", "error", err)
	}

	log.Infow("seeding completed successfully", "base_id", baseID)
}

func resolveBaseID() (id.ID, error) {
	if raw := os.Getenv("BASE_ID"); raw != "" {
		return id.Parse(raw)
	}
	return id.New(), nil
}

func seedGoods(ctx context.Context, repo *catalog_repo.GoodsRepo, baseID id.ID, log *logger.Logger) ([]*goods.Goods, error) {
	items := []struct {
		code, name   string
		packPerBox   int64
		piecePerPack int64
		price        string
	}{
		{"G-0001", "Classic Red", 10, 20, "45.00"},
		{"G-0002", "Classic Blue", 10, 20, "52.50"},
		{"G-0003", "Slim Gold", 6, 20, "80.00"},
	}

	seeded := make([]*goods.Goods, 0, len(items))
	for _, item := range items {
		g := goods.NewGoods(baseID, item.code, item.name, item.packPerBox, item.piecePerPack)
		g.BoxUnit = "box"
		g.PackUnit = "pack"
		g.PieceUnit = "piece"
		price, err := types.NewMoneyFromString(item.price)
		if err != nil {
			return nil, fmt.Errorf("parse price %q: %w", item.price, err)
		}
		g.SalePrice = price

		if err := repo.Create(ctx, g); err != nil {
			return nil, fmt.Errorf("seed goods %s: %w", item.code, err)
		}
		log.Infow("seeded goods", "code", g.Code, "name", g.Name)
		seeded = append(seeded, g)
	}

	return seeded, nil
}

func seedPoints(ctx context.Context, repo *catalog_repo.PointRepo, baseID id.ID, log *logger.Logger) error {
	points := []struct {
		code, name, contact, phone, address string
	}{
		{"P-0001", "Downtown Kiosk", "Chen Wei", "555-0101", "12 Market St"},
		{"P-0002", "Riverside Store", "Li Ming", "555-0102", "4 River Rd"},
	}

	for _, item := range points {
		p := point.NewPoint(baseID, item.code, item.name)
		p.ContactName = item.contact
		p.Phone = item.phone
		p.Address = item.address

		if err := repo.Create(ctx, p); err != nil {
			return fmt.Errorf("seed point %s: %w", item.code, err)
		}
		log.Infow("seeded point", "code", p.Code, "name", p.Name)
	}

	return nil
}

func seedStock(ctx context.Context, repo *register_repo.StockRepo, baseID id.ID, seeded []*goods.Goods, log *logger.Logger) error {
	locationID := baseID // single warehouse per base in demo data
	now := time.Now().UTC()

	for _, g := range seeded {
		balance := entity.StockBalance{
			BaseID:         baseID,
			GoodsID:        g.ID,
			LocationID:     locationID,
			BoxQuantity:    50,
			PackQuantity:   0,
			LastMovementAt: now,
			UpdatedAt:      now,
		}
		if err := repo.UpdateBalance(ctx, balance); err != nil {
			return fmt.Errorf("seed stock for %s: %w", g.Code, err)
		}
		log.Infow("seeded stock", "goods", g.Code, "boxes", balance.BoxQuantity)
	}

	return nil
}
