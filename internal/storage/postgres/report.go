package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emiliogarza/distrimax/internal/domain/report"
)

var _ report.Repository = (*ReportRepository)(nil)

// ReportRepository implements the dashboard aggregates with SQL directly
// over the orders, commerces and products tables. Cancelled orders never
// count towards revenue.
type ReportRepository struct {
	pool *pgxpool.Pool
}

func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

func (r *ReportRepository) Stats(ctx context.Context) (*report.Stats, error) {
	var s report.Stats
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM orders),
			(SELECT count(*) FROM orders WHERE status = 'pending'),
			(SELECT COALESCE(sum(total), 0) FROM orders WHERE status <> 'cancelled'),
			(SELECT count(*) FROM commerces WHERE active),
			(SELECT count(*) FROM products WHERE active)`,
	).Scan(&s.TotalOrders, &s.PendingOrders, &s.Revenue, &s.ActiveCommerces, &s.ActiveProducts)
	if err != nil {
		return nil, errors.Wrap(err, "loading dashboard stats")
	}
	return &s, nil
}

func (r *ReportRepository) SalesHistory(ctx context.Context, days int) ([]report.DailySales, error) {
	if days < 1 {
		days = 30
	}

	rows, err := r.pool.Query(ctx, `
		SELECT date_trunc('day', created_at) AS day,
		       count(*),
		       COALESCE(sum(total), 0)
		FROM orders
		WHERE status <> 'cancelled'
		  AND created_at >= now() - make_interval(days => $1)
		GROUP BY day
		ORDER BY day`, days)
	if err != nil {
		return nil, errors.Wrap(err, "loading sales history")
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (report.DailySales, error) {
		var d report.DailySales
		err := row.Scan(&d.Day, &d.Orders, &d.Revenue)
		return d, err
	})
}

func (r *ReportRepository) TopProducts(ctx context.Context, limit int) ([]report.TopProduct, error) {
	if limit < 1 {
		limit = 10
	}

	rows, err := r.pool.Query(ctx, `
		SELECT line->>'product_id',
		       max(line->>'name'),
		       sum((line->>'quantity')::int),
		       sum((line->>'line_total')::numeric)
		FROM orders, jsonb_array_elements(lines) AS line
		WHERE status <> 'cancelled'
		GROUP BY line->>'product_id'
		ORDER BY sum((line->>'quantity')::int) DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "loading top products")
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (report.TopProduct, error) {
		var t report.TopProduct
		err := row.Scan(&t.ProductID, &t.Name, &t.Units, &t.Revenue)
		return t, err
	})
}
