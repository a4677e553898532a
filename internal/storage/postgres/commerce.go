package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emiliogarza/distrimax/internal/domain/commerce"
)

const commerceColumns = `id, name, cuit, email, phone, address, zone, exclusive, active, created_at`

var _ commerce.Repository = (*CommerceRepository)(nil)

// CommerceRepository implements commerce.Repository backed by PostgreSQL.
type CommerceRepository struct {
	pool *pgxpool.Pool
}

func NewCommerceRepository(pool *pgxpool.Pool) *CommerceRepository {
	return &CommerceRepository{pool: pool}
}

func (r *CommerceRepository) List(ctx context.Context) ([]commerce.Commerce, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+commerceColumns+` FROM commerces ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "listing commerces")
	}
	return pgx.CollectRows(rows, scanCommerce)
}

func (r *CommerceRepository) GetByID(ctx context.Context, id string) (*commerce.Commerce, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+commerceColumns+` FROM commerces WHERE id = $1`, id)
	if err != nil {
		return nil, errors.Wrapf(err, "getting commerce %q", id)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCommerce)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, commerce.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting commerce %q", id)
	}
	return &c, nil
}

func (r *CommerceRepository) Create(ctx context.Context, c *commerce.Commerce) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO commerces (id, name, cuit, email, phone, address, zone, exclusive, active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.Name, c.CUIT, c.Email, c.Phone, c.Address, c.Zone, c.Exclusive, c.Active,
	)
	if err != nil {
		return errors.Wrapf(err, "creating commerce %q", c.ID)
	}
	return nil
}

func (r *CommerceRepository) Update(ctx context.Context, c *commerce.Commerce) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE commerces SET name = $2, cuit = $3, email = $4, phone = $5,
			address = $6, zone = $7, exclusive = $8, active = $9
		 WHERE id = $1`,
		c.ID, c.Name, c.CUIT, c.Email, c.Phone, c.Address, c.Zone, c.Exclusive, c.Active,
	)
	if err != nil {
		return errors.Wrapf(err, "updating commerce %q", c.ID)
	}
	if tag.RowsAffected() == 0 {
		return commerce.ErrNotFound
	}
	return nil
}

func (r *CommerceRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM commerces WHERE id = $1`, id)
	if err != nil {
		return errors.Wrapf(err, "deleting commerce %q", id)
	}
	if tag.RowsAffected() == 0 {
		return commerce.ErrNotFound
	}
	return nil
}

func (r *CommerceRepository) ToggleStatus(ctx context.Context, id string) (bool, error) {
	rows, err := r.pool.Query(ctx,
		`UPDATE commerces SET active = NOT active WHERE id = $1 RETURNING active`, id)
	if err != nil {
		return false, errors.Wrapf(err, "toggling commerce %q", id)
	}

	active, err := pgx.CollectExactlyOneRow(rows, pgx.RowTo[bool])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, commerce.ErrNotFound
		}
		return false, errors.Wrapf(err, "toggling commerce %q", id)
	}
	return active, nil
}

func scanCommerce(row pgx.CollectableRow) (commerce.Commerce, error) {
	var c commerce.Commerce
	err := row.Scan(&c.ID, &c.Name, &c.CUIT, &c.Email, &c.Phone,
		&c.Address, &c.Zone, &c.Exclusive, &c.Active, &c.CreatedAt)
	return c, err
}
