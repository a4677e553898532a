package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emiliogarza/distrimax/internal/domain/discount"
)

const discountColumns = `id, code, discount_type, value, min_items, description,
	valid_from, valid_until, max_uses, uses, active`

var _ discount.Repository = (*DiscountRepository)(nil)

// DiscountRepository implements discount.Repository backed by PostgreSQL.
type DiscountRepository struct {
	pool *pgxpool.Pool
}

func NewDiscountRepository(pool *pgxpool.Pool) *DiscountRepository {
	return &DiscountRepository{pool: pool}
}

// FindByCode looks up a rule by its code. Unknown codes map to
// discount.ErrInvalidCode so callers never distinguish "absent" from
// "invalid".
func (r *DiscountRepository) FindByCode(ctx context.Context, code string) (*discount.Rule, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+discountColumns+` FROM discounts WHERE code = $1`, code)
	if err != nil {
		return nil, errors.Wrapf(err, "finding discount %q", code)
	}

	rule, err := pgx.CollectExactlyOneRow(rows, scanDiscount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, discount.ErrInvalidCode
		}
		return nil, errors.Wrapf(err, "finding discount %q", code)
	}
	return &rule, nil
}

// IncrementUses bumps the redemption counter for a code.
func (r *DiscountRepository) IncrementUses(ctx context.Context, code string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE discounts SET uses = uses + 1 WHERE code = $1`, code)
	if err != nil {
		return errors.Wrapf(err, "incrementing uses for %q", code)
	}
	return nil
}

func (r *DiscountRepository) List(ctx context.Context) ([]discount.Rule, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+discountColumns+` FROM discounts ORDER BY code`)
	if err != nil {
		return nil, errors.Wrap(err, "listing discounts")
	}
	return pgx.CollectRows(rows, scanDiscount)
}

func (r *DiscountRepository) Create(ctx context.Context, rule *discount.Rule) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO discounts (id, code, discount_type, value, min_items, description,
			valid_from, valid_until, max_uses, uses, active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		rule.ID, rule.Code, rule.Type, rule.Value, rule.MinItems, rule.Description,
		rule.ValidFrom, rule.ValidUntil, rule.MaxUses, rule.Uses, rule.Active,
	)
	if err != nil {
		return errors.Wrapf(err, "creating discount %q", rule.Code)
	}
	return nil
}

func (r *DiscountRepository) Update(ctx context.Context, rule *discount.Rule) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE discounts SET code = $2, discount_type = $3, value = $4, min_items = $5,
			description = $6, valid_from = $7, valid_until = $8, max_uses = $9, active = $10
		 WHERE id = $1`,
		rule.ID, rule.Code, rule.Type, rule.Value, rule.MinItems,
		rule.Description, rule.ValidFrom, rule.ValidUntil, rule.MaxUses, rule.Active,
	)
	if err != nil {
		return errors.Wrapf(err, "updating discount %q", rule.ID)
	}
	if tag.RowsAffected() == 0 {
		return discount.ErrInvalidCode
	}
	return nil
}

func (r *DiscountRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM discounts WHERE id = $1`, id)
	if err != nil {
		return errors.Wrapf(err, "deleting discount %q", id)
	}
	if tag.RowsAffected() == 0 {
		return discount.ErrInvalidCode
	}
	return nil
}

func scanDiscount(row pgx.CollectableRow) (discount.Rule, error) {
	var rule discount.Rule
	err := row.Scan(&rule.ID, &rule.Code, &rule.Type, &rule.Value, &rule.MinItems,
		&rule.Description, &rule.ValidFrom, &rule.ValidUntil,
		&rule.MaxUses, &rule.Uses, &rule.Active)
	return rule, err
}
