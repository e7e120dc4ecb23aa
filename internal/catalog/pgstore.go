package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"shopbot/core/logger"
	"log/slog"
)

type brandRow struct {
	ID       string `db:"id"`
	Name     string `db:"name"`
	Position int    `db:"position"`
}

type flavorRow struct {
	ID        string `db:"id"`
	BrandID   string `db:"brand_id"`
	Name      string `db:"name"`
	PriceKZT  int    `db:"price_kzt"`
	PriceUSDT int    `db:"price_usdt"`
	Position  int    `db:"position"`
}

// LoadDB reads the catalog tables populated by migrations/seeding.
// Row order follows the stored position so keyboards match the source file.
func LoadDB(ctx context.Context, db *sqlx.DB) (*Catalog, error) {
	start := time.Now()

	var brandRows []brandRow
	if err := db.SelectContext(ctx, &brandRows,
		`SELECT id, name, position FROM catalog_brands ORDER BY position`); err != nil {
		return nil, fmt.Errorf("catalog: select brands: %w", err)
	}

	var flavorRows []flavorRow
	if err := db.SelectContext(ctx, &flavorRows,
		`SELECT id, brand_id, name, price_kzt, price_usdt, position
		 FROM catalog_flavors ORDER BY brand_id, position`); err != nil {
		return nil, fmt.Errorf("catalog: select flavors: %w", err)
	}

	flavorsByBrand := make(map[string][]Flavor, len(brandRows))
	for _, fr := range flavorRows {
		flavorsByBrand[fr.BrandID] = append(flavorsByBrand[fr.BrandID], Flavor{
			ID:        fr.ID,
			Name:      fr.Name,
			PriceKZT:  fr.PriceKZT,
			PriceUSDT: fr.PriceUSDT,
		})
	}

	brands := make([]Brand, 0, len(brandRows))
	for _, br := range brandRows {
		brands = append(brands, Brand{
			ID:      br.ID,
			Name:    br.Name,
			Flavors: flavorsByBrand[br.ID],
		})
	}

	c, err := New(brands)
	if err != nil {
		return nil, err
	}

	logger.SVCCatalog.Info("catalog loaded",
		slog.String("event", "catalog.load"),
		slog.String("status", "ok"),
		slog.String("mode", "postgres"),
		slog.Int("count", c.Size()),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return c, nil
}

// Seed inserts the provided brands into empty catalog tables. A non-empty
// catalog is left untouched so operator edits survive restarts.
func Seed(ctx context.Context, db *sqlx.DB, brands []Brand) error {
	var existing int
	if err := db.GetContext(ctx, &existing, `SELECT COUNT(*) FROM catalog_brands`); err != nil {
		return fmt.Errorf("catalog: count brands: %w", err)
	}
	if existing > 0 {
		logger.SVCCatalog.Debug("catalog seed skipped",
			slog.String("event", "catalog.seed"),
			slog.String("status", "skip"),
			slog.Int("count", existing),
		)
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("catalog: begin seed tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	inserted := 0
	for bi, b := range brands {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO catalog_brands (id, name, position) VALUES ($1, $2, $3)`,
			b.ID, b.Name, bi); err != nil {
			return fmt.Errorf("catalog: insert brand %s: %w", b.ID, err)
		}
		for fi, f := range b.Flavors {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO catalog_flavors (id, brand_id, name, price_kzt, price_usdt, position)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				f.ID, b.ID, f.Name, f.PriceKZT, f.PriceUSDT, fi); err != nil {
				return fmt.Errorf("catalog: insert flavor %s: %w", f.ID, err)
			}
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("catalog: commit seed: %w", err)
	}

	logger.SVCCatalog.Info("catalog seeded",
		slog.String("event", "catalog.seed"),
		slog.String("status", "ok"),
		slog.Int("count", inserted),
	)
	return nil
}
