// Command catalog-ingest bulk-imports products from gzip-compressed JSONL
// files. Each line holds one product; SKUs are deduplicated across all input
// files with a bloom filter, first occurrence wins. Surviving products are
// upserted, so re-running an ingest is safe.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/vkarpenko/mini-crm/internal/domain/product"
	"github.com/vkarpenko/mini-crm/internal/repository"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 100_000
)

// productLine is the JSONL wire format for one catalog entry.
type productLine struct {
	Name         string                     `json:"name"`
	SKU          string                     `json:"sku"`
	BasePrice    decimal.Decimal            `json:"base_price"`
	OfferPercent decimal.Decimal            `json:"offer_percent"`
	Sizes        map[string]decimal.Decimal `json:"sizes"`
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing catalog*.gz JSONL files")
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
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "catalog*.gz"))
	if err != nil {
		return errors.Wrap(err, "glob catalog files")
	}
	if len(files) == 0 {
		return errors.Errorf("no catalog*.gz files found in %s", dataDir)
	}
	sort.Strings(files)

	slog.Info("parsing catalog files", slog.Int("files", len(files)))

	parsed, err := parseFiles(ctx, files)
	if err != nil {
		return err
	}

	// Deduplicate SKUs across files, first occurrence wins. The bloom
	// filter keeps the seen-set memory bounded for very large catalogs; its
	// false positive rate means a product is occasionally dropped, which a
	// later targeted upsert can correct.
	seen := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
	var unique []productLine
	var dropped int
	for _, lines := range parsed {
		for _, p := range lines {
			if seen.TestAndAddString(p.SKU) {
				dropped++
				continue
			}
			unique = append(unique, p)
		}
	}

	slog.Info("deduplicated products",
		slog.Int("unique", len(unique)),
		slog.Int("duplicates", dropped),
	)

	if len(unique) == 0 {
		slog.Info("no products to ingest")
		return nil
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	return upsertProducts(ctx, repository.NewProductRepository(pool), unique)
}

// parseFiles reads every input file concurrently. Results are keyed by file
// index so the cross-file precedence order stays deterministic.
func parseFiles(ctx context.Context, files []string) ([][]productLine, error) {
	parsed := make([][]productLine, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(parseFile(ctx, i, f, parsed))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return parsed, nil
}

func parseFile(ctx context.Context, idx int, path string, parsed [][]productLine) func() error {
	return func() error {
		var (
			lines []productLine
			count uint64
		)

		if err := streamGzLines(ctx, path, func(lineNo int, raw []byte) error {
			var p productLine
			if err := json.Unmarshal(raw, &p); err != nil {
				return errors.Wrapf(err, "line %d", lineNo)
			}
			if p.SKU == "" || p.Name == "" {
				return errors.Errorf("line %d: sku and name are required", lineNo)
			}
			lines = append(lines, p)
			count++
			if count%progressEvery == 0 {
				slog.Info("parse progress",
					slog.String("file", filepath.Base(path)),
					slog.Uint64("products", count),
				)
			}
			return nil
		}); err != nil {
			return errors.Wrapf(err, "parse %s", path)
		}

		slog.Info("parsed file",
			slog.String("file", filepath.Base(path)),
			slog.Uint64("products", count),
		)

		parsed[idx] = lines
		return nil
	}
}

func upsertProducts(ctx context.Context, repo *repository.ProductRepository, lines []productLine) error {
	slog.Info("upserting products", slog.Int("count", len(lines)))

	for _, p := range lines {
		prod := &product.Product{
			Name:         p.Name,
			SKU:          p.SKU,
			BasePrice:    p.BasePrice,
			OfferPercent: p.OfferPercent,
		}
		if err := repo.UpsertBySKU(ctx, prod); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.SKU)
		}
		for size, price := range p.Sizes {
			err := repo.UpsertSizePrice(ctx, &product.SizePrice{
				ProductID: prod.ID,
				SizeName:  size,
				Price:     price,
			})
			if err != nil {
				return errors.Wrapf(err, "upsert size price (%s, %s)", p.SKU, size)
			}
		}
	}

	return nil
}

// streamGzLines opens a gzip-compressed file and calls fn for each non-empty
// line.
func streamGzLines(ctx context.Context, path string, fn func(lineNo int, raw []byte) error) error {
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
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNo := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := fn(lineNo, line); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}
	return nil
}
