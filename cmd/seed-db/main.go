package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/emiliogarza/distrimax/internal/domain/cart"
	"github.com/emiliogarza/distrimax/internal/storage/postgres"
)

type productJSON struct {
	ID             string          `json:"id"`
	Slug           string          `json:"slug"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Category       string          `json:"category"`
	PackPrice      decimal.Decimal `json:"packPrice"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	PalletPrice    decimal.Decimal `json:"palletPrice"`
	ExclusivePrice decimal.Decimal `json:"exclusivePrice"`
	UnitsPerPack   int             `json:"unitsPerPack"`
	PacksPerPallet int             `json:"packsPerPallet"`
	BulkTiers      []cart.BulkTier `json:"bulkTiers"`
	Stock          int             `json:"stock"`
	Image          string          `json:"image"`
	Exclusive      bool            `json:"exclusive"`
}

func main() {
	var (
		databaseURL  string
		productsFile string
		apiKey       string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.StringVar(&apiKey, "api-key", "", "admin API key to seed (or DSTR_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or DSTR_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("DSTR_SEED_API_KEY")
	}
	if apiKey == "" {
		slog.Error("API key is required: set --api-key or DSTR_SEED_API_KEY")
		os.Exit(1)
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("DSTR_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, apiKey, pepper string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, pool, productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if err := seedCombos(ctx, pool); err != nil {
		return errors.Wrap(err, "seed combos")
	}

	if err := seedDiscounts(ctx, pool); err != nil {
		return errors.Wrap(err, "seed discounts")
	}

	if err := seedAPIKey(ctx, pool, apiKey, pepper); err != nil {
		return errors.Wrap(err, "seed api key")
	}

	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		tiers, err := json.Marshal(p.BulkTiers)
		if err != nil {
			return errors.Wrapf(err, "encode bulk tiers for %s", p.ID)
		}

		if _, err := pool.Exec(ctx,
			`INSERT INTO products (id, slug, name, description, category,
				pack_price, unit_price, pallet_price, exclusive_price,
				units_per_pack, packs_per_pallet, bulk_tiers, stock, image, exclusive, active)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, true)
			 ON CONFLICT (id) DO UPDATE SET
				slug = EXCLUDED.slug, name = EXCLUDED.name,
				description = EXCLUDED.description, category = EXCLUDED.category,
				pack_price = EXCLUDED.pack_price, unit_price = EXCLUDED.unit_price,
				pallet_price = EXCLUDED.pallet_price, exclusive_price = EXCLUDED.exclusive_price,
				units_per_pack = EXCLUDED.units_per_pack, packs_per_pallet = EXCLUDED.packs_per_pallet,
				bulk_tiers = EXCLUDED.bulk_tiers, stock = EXCLUDED.stock,
				image = EXCLUDED.image, exclusive = EXCLUDED.exclusive`,
			p.ID, p.Slug, p.Name, p.Description, p.Category,
			p.PackPrice, p.UnitPrice, p.PalletPrice, p.ExclusivePrice,
			p.UnitsPerPack, p.PacksPerPallet, tiers, p.Stock, p.Image, p.Exclusive,
		); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}

		if p.Category != "" {
			if _, err := pool.Exec(ctx,
				`INSERT INTO categories (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`,
				p.Category); err != nil {
				return errors.Wrapf(err, "register category %s", p.Category)
			}
		}

		slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.Name))
	}

	return nil
}

func seedCombos(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding starter combos")

	items, err := json.Marshal([]map[string]any{
		{"productId": "quilmes-cerveza-1l", "quantity": 5},
		{"productId": "coca-cola-225l", "quantity": 5},
	})
	if err != nil {
		return errors.Wrap(err, "encode combo items")
	}

	if _, err := pool.Exec(ctx,
		`INSERT INTO combos (id, slug, name, description, items, final_price, active)
		 VALUES ($1, $2, $3, $4, $5, $6, true)
		 ON CONFLICT (id) DO UPDATE SET
			slug = EXCLUDED.slug, name = EXCLUDED.name,
			description = EXCLUDED.description, items = EXCLUDED.items,
			final_price = EXCLUDED.final_price`,
		"combo-kiosco-inicial", "combo-kiosco-inicial", "Combo Kiosco Inicial",
		"5 packs de cerveza + 5 packs de gaseosa a precio fijo",
		items, decimal.NewFromInt(98500),
	); err != nil {
		return errors.Wrap(err, "upsert combo")
	}

	slog.Info("upserted combo", slog.String("id", "combo-kiosco-inicial"))

	return nil
}

func seedDiscounts(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding discount codes")

	discounts := []struct {
		id           string
		code         string
		discountType string
		value        decimal.Decimal
		minItems     int
		description  string
	}{
		{
			id:           "seed-verano25",
			code:         "VERANO25",
			discountType: "percentage",
			value:        decimal.NewFromInt(25),
			description:  "Verano: 25% off entire order",
		},
		{
			id:           "seed-bienvenido",
			code:         "BIENVENIDO",
			discountType: "percentage",
			value:        decimal.NewFromInt(10),
			description:  "Welcome discount: 10% off first order",
		},
		{
			id:           "seed-mayorista",
			code:         "MAYORISTA",
			discountType: "fixed",
			value:        decimal.NewFromInt(5000),
			minItems:     20,
			description:  "$5000 off orders of 20+ packs",
		},
	}

	for _, d := range discounts {
		if _, err := pool.Exec(ctx,
			`INSERT INTO discounts (id, code, discount_type, value, min_items, description, active)
			 VALUES ($1, $2, $3, $4, $5, $6, true)
			 ON CONFLICT (code) DO UPDATE SET
				discount_type = EXCLUDED.discount_type, value = EXCLUDED.value,
				min_items = EXCLUDED.min_items, description = EXCLUDED.description,
				active = true`,
			d.id, d.code, d.discountType, d.value, d.minItems, d.description,
		); err != nil {
			return errors.Wrapf(err, "upsert discount %s", d.code)
		}

		slog.Info("upserted discount", slog.String("code", d.code), slog.String("description", d.description))
	}

	return nil
}

func seedAPIKey(ctx context.Context, pool *pgxpool.Pool, apiKey, pepper string) error {
	slog.Info("seeding default API key")

	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(apiKey))
	keyHash := hex.EncodeToString(mac.Sum(nil))

	if _, err := pool.Exec(ctx,
		`INSERT INTO api_keys (id, key_hash, name, scopes)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET
			key_hash = EXCLUDED.key_hash, name = EXCLUDED.name, scopes = EXCLUDED.scopes`,
		"default", keyHash, "Default admin key", []string{"admin"},
	); err != nil {
		return errors.Wrap(err, "upsert default API key")
	}

	slog.Info("upserted API key", slog.String("id", "default"), slog.String("name", "Default admin key"))

	return nil
}
