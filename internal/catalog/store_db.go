package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"Storefront/pkg/kit"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

const productColumns = `
	id, title, description, price::text, discount_percentage, rating,
	stock, brand, category, thumbnail, images::text`

// PostgresProvider reads the catalog from a products table. Rows that fail
// validation are skipped and logged.
type PostgresProvider struct {
	db  *sql.DB
	log *zap.Logger
}

func NewPostgresProvider(db *sql.DB, log *zap.Logger) *PostgresProvider {
	return &PostgresProvider{db: db, log: kit.OrNop(log)}
}

func (s *PostgresProvider) EnsureSchema(ctx context.Context) error {
	return kit.WithTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS products (
				id                  BIGINT PRIMARY KEY,
				title               TEXT NOT NULL,
				description         TEXT NOT NULL DEFAULT '',
				price               NUMERIC(12, 2) NOT NULL CHECK (price >= 0),
				discount_percentage DOUBLE PRECISION CHECK (discount_percentage BETWEEN 0 AND 100),
				rating              DOUBLE PRECISION NOT NULL DEFAULT 0,
				stock               INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
				brand               TEXT NOT NULL DEFAULT '',
				category            TEXT NOT NULL,
				thumbnail           TEXT NOT NULL DEFAULT '',
				images              JSONB NOT NULL DEFAULT '[]'
			)
		`)
		return err
	})
}

// Seed inserts products that are not already present.
func (s *PostgresProvider) Seed(ctx context.Context, products []Product) error {
	return kit.WithTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO products (id, title, description, price, discount_percentage,
				rating, stock, brand, category, thumbnail, images)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (id) DO NOTHING
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, p := range products {
			images, err := json.Marshal(p.Images)
			if err != nil {
				return err
			}
			discount := sql.NullFloat64{Float64: p.DiscountPercentage, Valid: p.HasDiscount()}
			if _, err := stmt.ExecContext(ctx, p.ID, p.Title, p.Description, p.Price.String(), discount,
				p.Rating, p.Stock, p.Brand, p.Category, p.Thumbnail, string(images)); err != nil {
				return fmt.Errorf("seed product %d: %w", p.ID, err)
			}
		}
		return tx.Commit()
	})
}

func (s *PostgresProvider) Ping(ctx context.Context) error {
	return kit.WithTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *PostgresProvider) ListAll(ctx context.Context) ([]Product, error) {
	return s.query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id ASC`)
}

func (s *PostgresProvider) ListByCategory(ctx context.Context, category string) ([]Product, error) {
	if category == CategoryAll {
		return s.ListAll(ctx)
	}
	return s.query(ctx, `SELECT `+productColumns+` FROM products WHERE category = $1 ORDER BY id ASC`, category)
}

func (s *PostgresProvider) ListFeatured(ctx context.Context, n int) ([]Product, error) {
	if n <= 0 {
		n = DefaultFeatured
	}
	return s.query(ctx, `SELECT `+productColumns+` FROM products ORDER BY random() LIMIT $1`, n)
}

func (s *PostgresProvider) GetByID(ctx context.Context, id int64) (Product, bool, error) {
	var p Product

	err := kit.WithTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		row := s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
		var err error
		p, err = scanProduct(row)
		return err
	})

	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, false, nil
	}
	if err != nil {
		return Product{}, false, err
	}
	return p, true, nil
}

func (s *PostgresProvider) query(ctx context.Context, q string, args ...any) ([]Product, error) {
	var out []Product

	err := kit.WithTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, q, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]Product, 0, 16)
		for rows.Next() {
			p, err := scanProduct(rows)
			if err != nil {
				if errors.Is(err, ErrInvalidProduct) {
					s.log.Warn("skipping invalid product row", zap.Error(err))
					continue
				}
				return err
			}
			out = append(out, p)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (Product, error) {
	var (
		p        Product
		price    string
		discount sql.NullFloat64
		images   string
	)

	if err := row.Scan(&p.ID, &p.Title, &p.Description, &price, &discount, &p.Rating,
		&p.Stock, &p.Brand, &p.Category, &p.Thumbnail, &images); err != nil {
		return Product{}, err
	}

	var err error
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return Product{}, fmt.Errorf("%w: price %q: %v", ErrInvalidProduct, price, err)
	}
	if discount.Valid {
		p.DiscountPercentage = discount.Float64
	}
	if err := json.Unmarshal([]byte(images), &p.Images); err != nil {
		return Product{}, fmt.Errorf("%w: images: %v", ErrInvalidProduct, err)
	}
	if err := p.Validate(); err != nil {
		return Product{}, fmt.Errorf("product %d: %w", p.ID, err)
	}
	return p, nil
}
