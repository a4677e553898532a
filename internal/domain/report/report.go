// Package report exposes the read-only aggregates behind the admin
// dashboard: headline stats, per-day sales history, and top sellers.
package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Stats is the dashboard headline block.
type Stats struct {
	TotalOrders     int
	PendingOrders   int
	Revenue         decimal.Decimal
	ActiveCommerces int
	ActiveProducts  int
}

// DailySales is one bucket of the sales history chart.
type DailySales struct {
	Day     time.Time
	Orders  int
	Revenue decimal.Decimal
}

// TopProduct is one row of the best-sellers table.
type TopProduct struct {
	ProductID string
	Name      string
	Units     int
	Revenue   decimal.Decimal
}

// Repository defines the read-only reporting queries.
type Repository interface {
	Stats(ctx context.Context) (*Stats, error)
	SalesHistory(ctx context.Context, days int) ([]DailySales, error)
	TopProducts(ctx context.Context, limit int) ([]TopProduct, error)
}
