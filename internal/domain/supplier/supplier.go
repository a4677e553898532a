// Package supplier defines the distributor's upstream beverage suppliers.
package supplier

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested supplier does not exist.
var ErrNotFound = errors.New("supplier not found")

// Supplier is an upstream provider of catalog products.
type Supplier struct {
	ID           string
	Name         string
	Contact      string
	Email        string
	Phone        string
	CBU          string
	PaymentTerms string
	Notes        string
	CreatedAt    time.Time
}

// Repository defines persistence operations for suppliers.
type Repository interface {
	List(ctx context.Context) ([]Supplier, error)
	GetByID(ctx context.Context, id string) (*Supplier, error)
	Create(ctx context.Context, s *Supplier) error
	Update(ctx context.Context, s *Supplier) error
	Delete(ctx context.Context, id string) error
}
