package db

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

type sampleSweet struct {
	name     string
	category string
	price    float64
	quantity int
}

var sampleSweets = []sampleSweet{
	{"Chocolate Bar", "Chocolate", 2.50, 50},
	{"Gummy Bears", "Candy", 1.75, 100},
	{"Lollipop", "Candy", 1.00, 75},
	{"Toffee", "Hard Candy", 3.00, 30},
	{"Jelly Beans", "Candy", 2.25, 80},
	{"Marshmallows", "Soft Candy", 2.00, 60},
	{"Caramel Squares", "Caramel", 2.75, 40},
	{"Licorice", "Candy", 1.50, 55},
}

// SeedSampleSweets fills an empty catalogue with demo stock. Skipped entirely
// when any sweets already exist; individual conflicts are ignored so a partial
// earlier seed does not block startup.
func SeedSampleSweets(ctx context.Context, pool *pgxpool.Pool, log *slog.Logger) error {
	var count int

	err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM sweets`).Scan(&count)

	if err != nil {
		return err
	}

	if count > 0 {
		log.Debug("catalogue already populated, skipping seed", "count", count)
		return nil
	}

	seeded := 0

	for _, s := range sampleSweets {
		_, err := pool.Exec(ctx, `
			INSERT INTO sweets (name, category, price, quantity)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (name) DO NOTHING
		`, s.name, s.category, s.price, s.quantity)

		if err != nil {
			return err
		}
		seeded++
	}

	log.Info("seeded sample sweets", "seeded", seeded)

	return nil
}
