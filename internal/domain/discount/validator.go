package discount

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/emiliogarza/distrimax/internal/domain/cart"
)

// Validator validates a discount code against the cart's item count and
// returns the discount overlay to apply. Validation never consumes a use;
// Consume burns one once an order has committed to the code.
type Validator interface {
	Validate(ctx context.Context, code string, itemCount int) (*cart.Discount, error)
	Consume(ctx context.Context, code string) error
}

// RepoValidator implements Validator by looking up rules from a Repository
// and applying them via Apply.
type RepoValidator struct {
	repo Repository
	now  func() time.Time
}

// NewRepoValidator creates a RepoValidator backed by the given Repository.
func NewRepoValidator(repo Repository) *RepoValidator {
	return &RepoValidator{repo: repo, now: time.Now}
}

// Validate looks up the rule for the given code, checks temporal validity
// and usage limits, and applies it. The usage counter is untouched, so a
// cart preview can re-validate the same code any number of times.
func (v *RepoValidator) Validate(ctx context.Context, code string, itemCount int) (*cart.Discount, error) {
	rule, err := v.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrInvalidCode) {
			return nil, ErrInvalidCode
		}
		return nil, errors.Wrap(err, "lookup discount code")
	}

	if !rule.Active {
		return nil, ErrInvalidCode
	}

	now := v.now()
	if rule.ValidFrom != nil && now.Before(*rule.ValidFrom) {
		return nil, ErrExpired
	}
	if rule.ValidUntil != nil && now.After(*rule.ValidUntil) {
		return nil, ErrExpired
	}

	if rule.MaxUses > 0 && rule.Uses >= rule.MaxUses {
		return nil, ErrUsageLimitReached
	}

	d, err := Apply(rule, itemCount)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Consume burns one use of the code.
func (v *RepoValidator) Consume(ctx context.Context, code string) error {
	if err := v.repo.IncrementUses(ctx, code); err != nil {
		return errors.Wrap(err, "increment discount uses")
	}
	return nil
}
