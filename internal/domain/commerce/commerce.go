// Package commerce defines the wholesale customer accounts (the shops and
// kiosks that buy from the distributor).
package commerce

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested commerce does not exist.
var ErrNotFound = errors.New("commerce not found")

// Commerce is a wholesale customer account.
type Commerce struct {
	ID        string
	Name      string
	CUIT      string
	Email     string
	Phone     string
	Address   string
	Zone      string
	Exclusive bool
	Active    bool
	CreatedAt time.Time
}

// Repository defines persistence operations for commerces.
type Repository interface {
	List(ctx context.Context) ([]Commerce, error)
	GetByID(ctx context.Context, id string) (*Commerce, error)
	Create(ctx context.Context, c *Commerce) error
	Update(ctx context.Context, c *Commerce) error
	Delete(ctx context.Context, id string) error
	ToggleStatus(ctx context.Context, id string) (bool, error)
}
