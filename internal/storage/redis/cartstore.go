// Package redis stores session carts in Redis, one key per session.
package redis

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/emiliogarza/distrimax/internal/domain/cart"
)

// DefaultCartTTL is how long an idle cart survives before Redis evicts it.
// Every save refreshes the TTL.
const DefaultCartTTL = 7 * 24 * time.Hour

// NewClient connects a go-redis client from a redis:// URL and verifies the
// connection with a ping.
func NewClient(ctx context.Context, redisURL string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Wrap(err, "parsing redis url")
	}

	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "pinging redis")
	}
	return client, nil
}

// Stores mints per-session cart stores sharing one client.
type Stores struct {
	client *goredis.Client
}

func NewStores(client *goredis.Client) *Stores {
	return &Stores{client: client}
}

// ForSession returns the store bound to the given session ID.
func (s *Stores) ForSession(session string) cart.Store {
	return NewCartStore(s.client, session)
}

var _ cart.Store = (*CartStore)(nil)

// CartStore persists one session's cart under a single key holding the full
// JSON-encoded item list.
type CartStore struct {
	client  *goredis.Client
	session string
	ttl     time.Duration
}

// NewCartStore returns a store scoped to the given session ID.
func NewCartStore(client *goredis.Client, session string) *CartStore {
	return &CartStore{client: client, session: session, ttl: DefaultCartTTL}
}

func (s *CartStore) key() string {
	return "cart:" + s.session
}

// Load fetches and decodes the session's items. A missing key is an empty
// cart, not an error.
func (s *CartStore) Load(ctx context.Context) ([]cart.LineItem, error) {
	data, err := s.client.Get(ctx, s.key()).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "loading cart")
	}
	return cart.DecodeItems(data)
}

// Save rewrites the session's items in full and refreshes the TTL.
func (s *CartStore) Save(ctx context.Context, items []cart.LineItem) error {
	data := cart.EncodeItems(items)
	if err := s.client.Set(ctx, s.key(), data, s.ttl).Err(); err != nil {
		return errors.Wrap(err, "saving cart")
	}
	return nil
}
