// Command pricelist-import ingests gzipped supplier price lists. Each line is
// "SKU,price". A SKU is confirmed only when it appears in two or more supplier
// lists; confirmed rows land in the supplier_prices staging table with the
// lowest quoted pack price.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"math/bits"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/emiliogarza/distrimax/internal/storage/postgres"
)

const (
	bloomCapacity = 50_000_000
	bloomFPR      = 0.001
	progressEvery = 5_000_000
	minSKULen     = 4
	maxSKULen     = 32
)

// skuPrice is a confirmed SKU with the bitmask of source files it appeared in
// and the lowest price quoted for it.
type skuPrice struct {
	mask  uint
	price decimal.Decimal
}

// fileResult holds candidate SKUs found in a single file during pass 2.
type fileResult struct {
	candidates map[string]skuPrice
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing pricelist*.gz files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("pricelist import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("pricelist import completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "pricelist*.gz"))
	if err != nil {
		return errors.Wrap(err, "glob price list files")
	}
	if len(files) < 2 {
		return errors.Errorf("need at least 2 price list files to cross-confirm, found %d in %s", len(files), dataDir)
	}

	// Pass 1: build one bloom filter per supplier file, concurrently.
	slog.Info("pass 1: building bloom filters", slog.Int("files", len(files)))

	filters, err := buildBloomFilters(ctx, files)
	if err != nil {
		return errors.Wrap(err, "build bloom filters")
	}

	// Pass 2: find SKUs quoted by 2+ suppliers.
	slog.Info("pass 2: finding confirmed SKUs")

	confirmed, err := findConfirmedSKUs(ctx, files, filters)
	if err != nil {
		return errors.Wrap(err, "find confirmed SKUs")
	}

	slog.Info("confirmed SKUs found", slog.Int("count", len(confirmed)))

	if len(confirmed) == 0 {
		slog.Info("no confirmed SKUs to insert")
		return nil
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := writePrices(ctx, pool, confirmed); err != nil {
		return errors.Wrap(err, "write prices to database")
	}

	return nil
}

// buildBloomFilters creates one bloom filter per file, concurrently.
func buildBloomFilters(ctx context.Context, files []string) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(buildFilterForFile(ctx, i, f, filters))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return filters, nil
}

func buildFilterForFile(ctx context.Context, idx int, path string, filters []*bloom.BloomFilter) func() error {
	return func() error {
		filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
		var count uint64

		if err := streamGzFile(ctx, path, func(sku string, _ decimal.Decimal) {
			filter.AddString(sku)
			count++
			if count%progressEvery == 0 {
				slog.Info("pass 1 progress",
					slog.Int("file", idx+1),
					slog.Uint64("rows", count),
				)
			}
		}); err != nil {
			return errors.Wrapf(err, "build filter for file %d", idx+1)
		}

		slog.Info("pass 1 complete",
			slog.Int("file", idx+1),
			slog.Uint64("total_rows", count),
		)

		filters[idx] = filter
		return nil
	}
}

// findConfirmedSKUs re-streams each file and checks SKUs against OTHER files'
// bloom filters. A SKU is confirmed when it appears in 2 or more files.
func findConfirmedSKUs(ctx context.Context, files []string, filters []*bloom.BloomFilter) (map[string]skuPrice, error) {
	results := make([]fileResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(findCandidatesInFile(ctx, i, f, filters, results))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Merge bitmasks from all files, keeping the lowest quoted price.
	merged := make(map[string]skuPrice)
	for _, r := range results {
		for sku, c := range r.candidates {
			m, ok := merged[sku]
			if !ok {
				merged[sku] = c
				continue
			}
			m.mask |= c.mask
			if c.price.LessThan(m.price) {
				m.price = c.price
			}
			merged[sku] = m
		}
	}

	// Keep SKUs appearing in 2+ files.
	confirmed := make(map[string]skuPrice)
	for sku, c := range merged {
		if bits.OnesCount(c.mask) >= 2 {
			confirmed[sku] = c
		}
	}

	return confirmed, nil
}

func findCandidatesInFile(
	ctx context.Context,
	idx int,
	path string,
	filters []*bloom.BloomFilter,
	results []fileResult,
) func() error {
	return func() error {
		candidates := make(map[string]skuPrice)
		fileBit := uint(1) << uint(idx)
		var count uint64

		if err := streamGzFile(ctx, path, func(sku string, price decimal.Decimal) {
			count++
			if count%progressEvery == 0 {
				slog.Info("pass 2 progress",
					slog.Int("file", idx+1),
					slog.Uint64("rows", count),
				)
			}

			// Check if this SKU appears in any OTHER file's bloom filter.
			for j, f := range filters {
				if j == idx {
					continue
				}
				if f.TestString(sku) {
					c, ok := candidates[sku]
					if !ok || price.LessThan(c.price) {
						c.price = price
					}
					c.mask |= fileBit
					candidates[sku] = c
					break
				}
			}
		}); err != nil {
			return errors.Wrapf(err, "scan file %d for candidates", idx+1)
		}

		slog.Info("pass 2 complete",
			slog.Int("file", idx+1),
			slog.Uint64("total_rows", count),
			slog.Int("candidates", len(candidates)),
		)

		results[idx] = fileResult{candidates: candidates}
		return nil
	}
}

// streamGzFile opens a gzip-compressed price list and calls fn for each
// well-formed "SKU,price" line. Malformed lines are skipped.
func streamGzFile(ctx context.Context, path string, fn func(sku string, price decimal.Decimal)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		sku, rawPrice, ok := strings.Cut(scanner.Text(), ",")
		if !ok || len(sku) < minSKULen || len(sku) > maxSKULen {
			continue
		}
		price, err := decimal.NewFromString(strings.TrimSpace(rawPrice))
		if err != nil || price.Sign() <= 0 {
			continue
		}
		fn(sku, price)
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}

// writePrices upserts all confirmed SKU prices into the staging table.
func writePrices(ctx context.Context, pool *pgxpool.Pool, confirmed map[string]skuPrice) error {
	slog.Info("writing prices to database", slog.Int("count", len(confirmed)))

	written := 0
	for sku, c := range confirmed {
		if _, err := pool.Exec(ctx,
			`INSERT INTO supplier_prices (sku, pack_price, sources, imported_at)
			 VALUES ($1, $2, $3, now())
			 ON CONFLICT (sku) DO UPDATE SET
				pack_price = EXCLUDED.pack_price,
				sources = EXCLUDED.sources,
				imported_at = now()`,
			sku, c.price, bits.OnesCount(c.mask),
		); err != nil {
			return errors.Wrapf(err, "upsert price for %s", sku)
		}

		written++
		if written%100 == 0 || written == len(confirmed) {
			slog.Info("write progress", slog.Int("written", written), slog.Int("total", len(confirmed)))
		}
	}

	return nil
}
