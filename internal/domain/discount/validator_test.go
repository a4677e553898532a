package discount

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliogarza/distrimax/internal/domain/cart"
)

type mockDiscountRepo struct {
	rule          *Rule
	err           error
	incrementErr  error
	incrementCode string
}

func (m *mockDiscountRepo) FindByCode(_ context.Context, _ string) (*Rule, error) {
	return m.rule, m.err
}

func (m *mockDiscountRepo) IncrementUses(_ context.Context, code string) error {
	m.incrementCode = code
	return m.incrementErr
}

func (m *mockDiscountRepo) List(_ context.Context) ([]Rule, error)   { return nil, nil }
func (m *mockDiscountRepo) Create(_ context.Context, _ *Rule) error  { return nil }
func (m *mockDiscountRepo) Update(_ context.Context, _ *Rule) error  { return nil }
func (m *mockDiscountRepo) Delete(_ context.Context, _ string) error { return nil }

func activeRule(code string, typ cart.DiscountType, value int64) *Rule {
	return &Rule{
		Code:   code,
		Type:   typ,
		Value:  decimal.NewFromInt(value),
		Active: true,
	}
}

func TestRepoValidator_Validate(t *testing.T) {
	fixedNow := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	pastTime := fixedNow.Add(-24 * time.Hour)
	futureTime := fixedNow.Add(24 * time.Hour)

	tests := []struct {
		name      string
		repo      *mockDiscountRepo
		itemCount int
		wantType  cart.DiscountType
		wantValue int64
		wantErr   error
	}{
		{
			name:      "percentage code maps to percentage overlay",
			repo:      &mockDiscountRepo{rule: activeRule("MAYO10", cart.DiscountPercentage, 10)},
			itemCount: 1,
			wantType:  cart.DiscountPercentage,
			wantValue: 10,
		},
		{
			name:      "fixed code maps to fixed overlay",
			repo:      &mockDiscountRepo{rule: activeRule("MENOS500", cart.DiscountFixed, 500)},
			itemCount: 1,
			wantType:  cart.DiscountFixed,
			wantValue: 500,
		},
		{
			name:      "unknown code",
			repo:      &mockDiscountRepo{err: ErrInvalidCode},
			itemCount: 1,
			wantErr:   ErrInvalidCode,
		},
		{
			name: "inactive code",
			repo: &mockDiscountRepo{rule: &Rule{
				Code:  "PAUSED",
				Type:  cart.DiscountPercentage,
				Value: decimal.NewFromInt(10),
			}},
			itemCount: 1,
			wantErr:   ErrInvalidCode,
		},
		{
			name: "below minimum item count",
			repo: &mockDiscountRepo{rule: &Rule{
				Code:     "MIN6",
				Type:     cart.DiscountFixed,
				Value:    decimal.NewFromInt(100),
				MinItems: 6,
				Active:   true,
			}},
			itemCount: 5,
			wantErr:   ErrInvalidCode,
		},
		{
			name: "meets minimum item count",
			repo: &mockDiscountRepo{rule: &Rule{
				Code:     "MIN6",
				Type:     cart.DiscountFixed,
				Value:    decimal.NewFromInt(100),
				MinItems: 6,
				Active:   true,
			}},
			itemCount: 6,
			wantType:  cart.DiscountFixed,
			wantValue: 100,
		},
		{
			name: "expired code",
			repo: &mockDiscountRepo{rule: &Rule{
				Code:       "OLD",
				Type:       cart.DiscountPercentage,
				Value:      decimal.NewFromInt(10),
				ValidUntil: &pastTime,
				Active:     true,
			}},
			itemCount: 1,
			wantErr:   ErrExpired,
		},
		{
			name: "not yet valid",
			repo: &mockDiscountRepo{rule: &Rule{
				Code:      "SOON",
				Type:      cart.DiscountPercentage,
				Value:     decimal.NewFromInt(10),
				ValidFrom: &futureTime,
				Active:    true,
			}},
			itemCount: 1,
			wantErr:   ErrExpired,
		},
		{
			name: "usage limit reached",
			repo: &mockDiscountRepo{rule: &Rule{
				Code:    "BURNED",
				Type:    cart.DiscountPercentage,
				Value:   decimal.NewFromInt(10),
				MaxUses: 50,
				Uses:    50,
				Active:  true,
			}},
			itemCount: 1,
			wantErr:   ErrUsageLimitReached,
		},
		{
			name: "unlimited uses never exhausts",
			repo: &mockDiscountRepo{rule: &Rule{
				Code:   "SIEMPRE",
				Type:   cart.DiscountPercentage,
				Value:  decimal.NewFromInt(5),
				Uses:   9999,
				Active: true,
			}},
			itemCount: 1,
			wantType:  cart.DiscountPercentage,
			wantValue: 5,
		},
		{
			name: "unsupported type is rejected",
			repo: &mockDiscountRepo{rule: &Rule{
				Code:   "WEIRD",
				Type:   "bogo",
				Value:  decimal.NewFromInt(1),
				Active: true,
			}},
			itemCount: 1,
			wantErr:   nil, // generic error, asserted below
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewRepoValidator(tt.repo)
			v.now = func() time.Time { return fixedNow }

			got, err := v.Validate(context.Background(), tt.repo.code(), tt.itemCount)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			if tt.wantType == "" {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantType, got.Type)
			assert.True(t, decimal.NewFromInt(tt.wantValue).Equal(got.Value))
		})
	}
}

// code returns the rule's code for the lookup, or a placeholder when the
// mock is configured to fail the lookup itself.
func (m *mockDiscountRepo) code() string {
	if m.rule != nil {
		return m.rule.Code
	}
	return "MISSING"
}

func TestRepoValidator_ValidateDoesNotConsume(t *testing.T) {
	repo := &mockDiscountRepo{rule: activeRule("MAYO10", cart.DiscountPercentage, 10)}
	v := NewRepoValidator(repo)

	// Previewing a code on the cart must be repeatable without burning uses.
	for range 3 {
		_, err := v.Validate(context.Background(), "MAYO10", 3)
		require.NoError(t, err)
	}
	assert.Empty(t, repo.incrementCode)
}

func TestRepoValidator_Consume(t *testing.T) {
	repo := &mockDiscountRepo{rule: activeRule("MAYO10", cart.DiscountPercentage, 10)}

	v := NewRepoValidator(repo)
	require.NoError(t, v.Consume(context.Background(), "MAYO10"))

	assert.Equal(t, "MAYO10", repo.incrementCode)
}

func TestRepoValidator_ConsumeError(t *testing.T) {
	repo := &mockDiscountRepo{incrementErr: errors.New("db error")}

	v := NewRepoValidator(repo)
	err := v.Consume(context.Background(), "MAYO10")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "increment discount uses")
}

func TestApply_OverlayFeedsCartTotals(t *testing.T) {
	rule := activeRule("MENOS1500", cart.DiscountFixed, 1500)
	d, err := Apply(rule, 10)
	require.NoError(t, err)

	c := cart.New(nopStore{})
	require.NoError(t, c.Add(context.Background(), cart.Snapshot{
		ProductID: "p",
		UnitPrice: decimal.NewFromInt(100),
	}, cart.KindProduct, cart.UnitSingle))
	require.NoError(t, c.SetQuantity(context.Background(), "p", cart.KindProduct, 10, cart.UnitSingle))

	c.ApplyDiscount(d)
	assert.True(t, c.DiscountedTotal().IsZero(), "1500 off a 1000 subtotal floors at zero")
}

type nopStore struct{}

func (nopStore) Load(_ context.Context) ([]cart.LineItem, error) { return nil, nil }
func (nopStore) Save(_ context.Context, _ []cart.LineItem) error { return nil }
