package postgres

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emiliogarza/distrimax/internal/domain/combo"
)

const comboColumns = `id, slug, name, description, items, final_price, image, active, created_at`

var _ combo.Repository = (*ComboRepository)(nil)

// ComboRepository implements combo.Repository backed by PostgreSQL.
type ComboRepository struct {
	pool *pgxpool.Pool
}

func NewComboRepository(pool *pgxpool.Pool) *ComboRepository {
	return &ComboRepository{pool: pool}
}

func (r *ComboRepository) List(ctx context.Context, includeInactive bool) ([]combo.Combo, error) {
	sql := `SELECT ` + comboColumns + ` FROM combos`
	if !includeInactive {
		sql += ` WHERE active`
	}
	sql += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, sql)
	if err != nil {
		return nil, errors.Wrap(err, "listing combos")
	}
	return pgx.CollectRows(rows, scanCombo)
}

func (r *ComboRepository) GetByID(ctx context.Context, id string) (*combo.Combo, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+comboColumns+` FROM combos WHERE id = $1`, id)
	if err != nil {
		return nil, errors.Wrapf(err, "getting combo %q", id)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCombo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, combo.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting combo %q", id)
	}
	return &c, nil
}

func (r *ComboRepository) Create(ctx context.Context, c *combo.Combo) error {
	items, err := marshalComboItems(c.Items)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO combos (id, slug, name, description, items, final_price, image, active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.Slug, c.Name, c.Description, items, c.FinalPrice, c.Image, c.Active,
	)
	if err != nil {
		return errors.Wrapf(err, "creating combo %q", c.ID)
	}
	return nil
}

func (r *ComboRepository) Update(ctx context.Context, c *combo.Combo) error {
	items, err := marshalComboItems(c.Items)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE combos SET slug = $2, name = $3, description = $4, items = $5,
			final_price = $6, image = $7, active = $8
		 WHERE id = $1`,
		c.ID, c.Slug, c.Name, c.Description, items, c.FinalPrice, c.Image, c.Active,
	)
	if err != nil {
		return errors.Wrapf(err, "updating combo %q", c.ID)
	}
	if tag.RowsAffected() == 0 {
		return combo.ErrNotFound
	}
	return nil
}

func (r *ComboRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM combos WHERE id = $1`, id)
	if err != nil {
		return errors.Wrapf(err, "deleting combo %q", id)
	}
	if tag.RowsAffected() == 0 {
		return combo.ErrNotFound
	}
	return nil
}

func scanCombo(row pgx.CollectableRow) (combo.Combo, error) {
	var (
		c     combo.Combo
		items []byte
	)
	err := row.Scan(&c.ID, &c.Slug, &c.Name, &c.Description, &items,
		&c.FinalPrice, &c.Image, &c.Active, &c.CreatedAt)
	if err != nil {
		return c, err
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &c.Items); err != nil {
			return c, errors.Wrapf(err, "decoding items for combo %q", c.ID)
		}
	}
	return c, nil
}

func marshalComboItems(items []combo.Item) ([]byte, error) {
	if items == nil {
		return []byte("[]"), nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, errors.Wrap(err, "encoding combo items")
	}
	return data, nil
}
