package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emiliogarza/distrimax/internal/domain/supplier"
)

const supplierColumns = `id, name, contact, email, phone, cbu, payment_terms, notes, created_at`

var _ supplier.Repository = (*SupplierRepository)(nil)

// SupplierRepository implements supplier.Repository backed by PostgreSQL.
type SupplierRepository struct {
	pool *pgxpool.Pool
}

func NewSupplierRepository(pool *pgxpool.Pool) *SupplierRepository {
	return &SupplierRepository{pool: pool}
}

func (r *SupplierRepository) List(ctx context.Context) ([]supplier.Supplier, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+supplierColumns+` FROM suppliers ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "listing suppliers")
	}
	return pgx.CollectRows(rows, scanSupplier)
}

func (r *SupplierRepository) GetByID(ctx context.Context, id string) (*supplier.Supplier, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return nil, errors.Wrapf(err, "getting supplier %q", id)
	}

	s, err := pgx.CollectExactlyOneRow(rows, scanSupplier)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, supplier.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting supplier %q", id)
	}
	return &s, nil
}

func (r *SupplierRepository) Create(ctx context.Context, s *supplier.Supplier) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO suppliers (id, name, contact, email, phone, cbu, payment_terms, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.Name, s.Contact, s.Email, s.Phone, s.CBU, s.PaymentTerms, s.Notes,
	)
	if err != nil {
		return errors.Wrapf(err, "creating supplier %q", s.ID)
	}
	return nil
}

func (r *SupplierRepository) Update(ctx context.Context, s *supplier.Supplier) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE suppliers SET name = $2, contact = $3, email = $4, phone = $5,
			cbu = $6, payment_terms = $7, notes = $8
		 WHERE id = $1`,
		s.ID, s.Name, s.Contact, s.Email, s.Phone, s.CBU, s.PaymentTerms, s.Notes,
	)
	if err != nil {
		return errors.Wrapf(err, "updating supplier %q", s.ID)
	}
	if tag.RowsAffected() == 0 {
		return supplier.ErrNotFound
	}
	return nil
}

func (r *SupplierRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return errors.Wrapf(err, "deleting supplier %q", id)
	}
	if tag.RowsAffected() == 0 {
		return supplier.ErrNotFound
	}
	return nil
}

func scanSupplier(row pgx.CollectableRow) (supplier.Supplier, error) {
	var s supplier.Supplier
	err := row.Scan(&s.ID, &s.Name, &s.Contact, &s.Email, &s.Phone,
		&s.CBU, &s.PaymentTerms, &s.Notes, &s.CreatedAt)
	return s, err
}
