package catalog

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Seed inserts a small demo catalog for local development.
func Seed(ctx context.Context, repo Repository, logger *zap.Logger) error {
	demo := []Product{
		{ID: 1, Name: "Wireless Headphones", Description: "Over-ear, noise cancelling", Price: decimal.RequireFromString("89.99"), Category: "Electronics", Available: true, Quantity: 25},
		{ID: 2, Name: "Mechanical Keyboard", Description: "Tenkeyless, brown switches", Price: decimal.RequireFromString("129.00"), Category: "Electronics", Available: true, Quantity: 12},
		{ID: 3, Name: "Ceramic Mug", Description: "350ml, dishwasher safe", Price: decimal.RequireFromString("14.50"), Category: "Home", Available: true, Quantity: 80},
		{ID: 4, Name: "Canvas Backpack", Description: "20L daypack", Price: decimal.RequireFromString("49.95"), Category: "Outdoor", Available: false, Quantity: 0},
	}

	for _, p := range demo {
		if err := repo.Upsert(ctx, p); err != nil {
			return fmt.Errorf("seed product %d: %w", p.ID, err)
		}
	}
	logger.Info("demo catalog seeded", zap.Int("products", len(demo)))
	return nil
}
