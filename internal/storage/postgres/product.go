package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/emiliogarza/distrimax/internal/domain/cart"
	"github.com/emiliogarza/distrimax/internal/domain/catalog"
)

const productColumns = `id, slug, name, description, category, COALESCE(supplier_id, ''),
	pack_price, unit_price, pallet_price, exclusive_price,
	units_per_pack, packs_per_pallet, bulk_tiers, stock, image, exclusive, active, created_at`

var _ catalog.Repository = (*ProductRepository)(nil)

// ProductRepository implements catalog.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns catalog products matching the filter.
func (r *ProductRepository) List(ctx context.Context, filter catalog.ListFilter) ([]catalog.Product, error) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(`SELECT ` + productColumns + ` FROM products`)

	var conds []string
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !filter.IncludeInactive {
		conds = append(conds, "active")
	}
	if filter.Search != "" {
		ph := arg("%" + filter.Search + "%")
		conds = append(conds, "(name ILIKE "+ph+" OR description ILIKE "+ph+")")
	}
	if filter.Category != "" {
		conds = append(conds, "category = "+arg(filter.Category))
	}
	if filter.ExcludeCategory != "" {
		conds = append(conds, "category <> "+arg(filter.ExcludeCategory))
	}
	if filter.Exclusive {
		conds = append(conds, "exclusive")
	}
	switch filter.SellType {
	case "unit":
		conds = append(conds, "unit_price > 0")
	case "pack":
		conds = append(conds, "pack_price > 0")
	case "pallet":
		conds = append(conds, "pallet_price > 0 AND packs_per_pallet > 0")
	}

	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}

	switch filter.Sort {
	case "price":
		sb.WriteString(" ORDER BY pack_price ASC")
	case "price_desc":
		sb.WriteString(" ORDER BY pack_price DESC")
	case "newest":
		sb.WriteString(" ORDER BY created_at DESC")
	default:
		sb.WriteString(" ORDER BY name ASC")
	}

	if filter.Limit > 0 {
		sb.WriteString(" LIMIT " + arg(filter.Limit))
		if filter.Page > 1 {
			sb.WriteString(" OFFSET " + arg((filter.Page-1)*filter.Limit))
		}
	}

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, errors.Wrap(err, "listing products")
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*catalog.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetBySlug returns a single active product by its URL slug.
func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE slug = $1 AND active`, slug)
}

func (r *ProductRepository) getOne(ctx context.Context, sql, key string) (*catalog.Product, error) {
	rows, err := r.pool.Query(ctx, sql, key)
	if err != nil {
		return nil, errors.Wrapf(err, "getting product %q", key)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting product %q", key)
	}
	return &p, nil
}

// GetByIDs returns products matching any of the given IDs.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "getting products by ids")
	}
	return pgx.CollectRows(rows, scanProduct)
}

// Categories returns the distinct category names, registered or in use.
func (r *ProductRepository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT name FROM categories
		 UNION SELECT DISTINCT category FROM products WHERE category <> ''
		 ORDER BY 1`)
	if err != nil {
		return nil, errors.Wrap(err, "listing categories")
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// CreateCategory registers a category name. Duplicates are ignored.
func (r *ProductRepository) CreateCategory(ctx context.Context, name string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO categories (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
	if err != nil {
		return errors.Wrapf(err, "creating category %q", name)
	}
	return nil
}

// Create inserts a new product and records its initial price history sample.
func (r *ProductRepository) Create(ctx context.Context, p *catalog.Product) error {
	tiers, err := marshalTiers(p.BulkTiers)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO products (id, slug, name, description, category, supplier_id,
			pack_price, unit_price, pallet_price, exclusive_price,
			units_per_pack, packs_per_pallet, bulk_tiers, stock, image, exclusive, active)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		p.ID, p.Slug, p.Name, p.Description, p.Category, p.SupplierID,
		p.PackPrice, p.UnitPrice, p.PalletPrice, p.ExclusivePrice,
		p.UnitsPerPack, p.PacksPerPallet, tiers, p.Stock, p.Image, p.Exclusive, p.Active,
	)
	if err != nil {
		return errors.Wrapf(err, "creating product %q", p.ID)
	}

	return r.recordPrice(ctx, p)
}

// Update rewrites a product and samples the pack price into its history.
func (r *ProductRepository) Update(ctx context.Context, p *catalog.Product) error {
	tiers, err := marshalTiers(p.BulkTiers)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET slug = $2, name = $3, description = $4, category = $5,
			supplier_id = NULLIF($6, ''), pack_price = $7, unit_price = $8,
			pallet_price = $9, exclusive_price = $10, units_per_pack = $11,
			packs_per_pallet = $12, bulk_tiers = $13, stock = $14, image = $15,
			exclusive = $16, active = $17
		 WHERE id = $1`,
		p.ID, p.Slug, p.Name, p.Description, p.Category, p.SupplierID,
		p.PackPrice, p.UnitPrice, p.PalletPrice, p.ExclusivePrice,
		p.UnitsPerPack, p.PacksPerPallet, tiers, p.Stock, p.Image, p.Exclusive, p.Active,
	)
	if err != nil {
		return errors.Wrapf(err, "updating product %q", p.ID)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}

	return r.recordPrice(ctx, p)
}

// Delete removes a product. Its price history rows cascade away with it.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return errors.Wrapf(err, "deleting product %q", id)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// ToggleStatus flips the active flag and returns the new value.
func (r *ProductRepository) ToggleStatus(ctx context.Context, id string) (bool, error) {
	rows, err := r.pool.Query(ctx,
		`UPDATE products SET active = NOT active WHERE id = $1 RETURNING active`, id)
	if err != nil {
		return false, errors.Wrapf(err, "toggling product %q", id)
	}

	active, err := pgx.CollectExactlyOneRow(rows, pgx.RowTo[bool])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, catalog.ErrNotFound
		}
		return false, errors.Wrapf(err, "toggling product %q", id)
	}
	return active, nil
}

// HistoryStats returns a product's recorded pack price samples and their
// min/max/avg summary.
func (r *ProductRepository) HistoryStats(ctx context.Context, id string) (*catalog.HistoryStats, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT pack_price, recorded_at FROM product_price_history
		 WHERE product_id = $1 ORDER BY recorded_at`, id)
	if err != nil {
		return nil, errors.Wrapf(err, "loading price history for %q", id)
	}

	samples, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.PriceSample, error) {
		var s catalog.PriceSample
		err := row.Scan(&s.PackPrice, &s.RecordedAt)
		return s, err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "loading price history for %q", id)
	}
	if len(samples) == 0 {
		return nil, catalog.ErrNotFound
	}

	stats := &catalog.HistoryStats{
		Samples:  samples,
		MinPrice: samples[0].PackPrice,
		MaxPrice: samples[0].PackPrice,
	}
	sum := samples[0].PackPrice
	for _, s := range samples[1:] {
		if s.PackPrice.LessThan(stats.MinPrice) {
			stats.MinPrice = s.PackPrice
		}
		if s.PackPrice.GreaterThan(stats.MaxPrice) {
			stats.MaxPrice = s.PackPrice
		}
		sum = sum.Add(s.PackPrice)
	}
	stats.AvgPrice = sum.DivRound(decimal.NewFromInt(int64(len(samples))), 2)

	return stats, nil
}

func (r *ProductRepository) recordPrice(ctx context.Context, p *catalog.Product) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO product_price_history (product_id, pack_price) VALUES ($1, $2)`,
		p.ID, p.PackPrice)
	if err != nil {
		return errors.Wrapf(err, "recording price history for %q", p.ID)
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var (
		p     catalog.Product
		tiers []byte
	)
	err := row.Scan(
		&p.ID, &p.Slug, &p.Name, &p.Description, &p.Category, &p.SupplierID,
		&p.PackPrice, &p.UnitPrice, &p.PalletPrice, &p.ExclusivePrice,
		&p.UnitsPerPack, &p.PacksPerPallet, &tiers, &p.Stock, &p.Image,
		&p.Exclusive, &p.Active, &p.CreatedAt,
	)
	if err != nil {
		return p, err
	}
	if len(tiers) > 0 {
		if err := json.Unmarshal(tiers, &p.BulkTiers); err != nil {
			return p, errors.Wrapf(err, "decoding bulk tiers for %q", p.ID)
		}
	}
	return p, nil
}

func marshalTiers(tiers []cart.BulkTier) ([]byte, error) {
	if tiers == nil {
		return []byte("[]"), nil
	}
	data, err := json.Marshal(tiers)
	if err != nil {
		return nil, errors.Wrap(err, "encoding bulk tiers")
	}
	return data, nil
}
