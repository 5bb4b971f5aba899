package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/candyhaus/sweetshop/internal/domain/sweet"
	"github.com/candyhaus/sweetshop/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const sweetColumns = `id, name, category, price, quantity, created_at, updated_at`

type SweetsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewSweetsRepo(pool *pgxpool.Pool, prom *observability.Prom) *SweetsRepo {
	return &SweetsRepo{pool: pool, prom: prom}
}

func (r *SweetsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func scanSweet(row pgx.Row, s *sweet.Sweet) error {
	return row.Scan(&s.ID, &s.Name, &s.Category, &s.Price, &s.Quantity, &s.CreatedAt, &s.UpdatedAt)
}

func (r *SweetsRepo) Create(ctx context.Context, req sweet.CreateSweetRequest) (s sweet.Sweet, err error) {
	quantity := 0
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	err = r.observe("sweets.create", func() error {
		return scanSweet(r.pool.QueryRow(ctx, `
			INSERT INTO sweets (name, category, price, quantity)
			VALUES ($1, $2, $3, $4)
			RETURNING `+sweetColumns,
			req.Name, req.Category, *req.Price, quantity,
		), &s)
	})

	if err != nil {
		// unique index on name decides duplicates, so two concurrent creates
		// can never both succeed
		if isUniqueViolation(err) {
			err = sweet.ErrDuplicateName
		}
		return
	}

	return
}

func (r *SweetsRepo) List(ctx context.Context) ([]sweet.Sweet, error) {
	return r.Search(ctx, sweet.SearchFilter{})
}

func (r *SweetsRepo) Search(ctx context.Context, filter sweet.SearchFilter) (out []sweet.Sweet, err error) {
	baseQuery := `SELECT ` + sweetColumns + ` FROM sweets`

	var conds []string
	var args []interface{}

	argsPosition := 1

	// filtered conditional checks.
	if filter.Name != nil {
		conds = append(conds, fmt.Sprintf("name LIKE $%d", argsPosition))
		args = append(args, "%"+*filter.Name+"%")
		argsPosition++
	}

	if filter.Category != nil {
		conds = append(conds, fmt.Sprintf("category = $%d", argsPosition))
		args = append(args, *filter.Category)
		argsPosition++
	}

	if filter.MinPrice != nil {
		conds = append(conds, fmt.Sprintf("price >= $%d", argsPosition))
		args = append(args, *filter.MinPrice)
		argsPosition++
	}

	if filter.MaxPrice != nil {
		conds = append(conds, fmt.Sprintf("price <= $%d", argsPosition))
		args = append(args, *filter.MaxPrice)
		argsPosition++
	}

	query := baseQuery

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	// newest first; id breaks ties for rows created in the same instant
	query += " ORDER BY created_at DESC, id DESC"

	var rows pgx.Rows

	err = r.observe("sweets.search", func() error {
		rows, err = r.pool.Query(ctx, query, args...)
		return err
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out = make([]sweet.Sweet, 0)

	for rows.Next() {
		var s sweet.Sweet

		if scanErr := rows.Scan(&s.ID, &s.Name, &s.Category, &s.Price, &s.Quantity, &s.CreatedAt, &s.UpdatedAt); scanErr != nil {
			return nil, scanErr
		}
		out = append(out, s)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return out, nil
}

func (r *SweetsRepo) GetByID(ctx context.Context, id int64) (s sweet.Sweet, err error) {
	err = r.observe("sweets.get_by_id", func() error {
		return scanSweet(r.pool.QueryRow(ctx,
			`SELECT `+sweetColumns+` FROM sweets WHERE id = $1`, id), &s)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = sweet.ErrNotFound
		}
		return
	}

	return
}

// Update applies only the provided fields. A request with no fields returns
// the current row untouched, without bumping updated_at.
func (r *SweetsRepo) Update(ctx context.Context, id int64, req sweet.UpdateSweetRequest) (s sweet.Sweet, err error) {
	if req.Empty() {
		return r.GetByID(ctx, id)
	}

	if req.Name != nil {
		var taken bool

		err = r.observe("sweets.update.name_check", func() error {
			return r.pool.QueryRow(ctx,
				`SELECT EXISTS(SELECT 1 FROM sweets WHERE name = $1 AND id <> $2)`,
				*req.Name, id).Scan(&taken)
		})

		if err != nil {
			return
		}

		if taken {
			err = sweet.ErrDuplicateName
			return
		}
	}

	sets := []string{}
	args := []interface{}{id}
	argsPosition := 2

	if req.Name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", argsPosition))
		args = append(args, *req.Name)
		argsPosition++
	}
	if req.Category != nil {
		sets = append(sets, fmt.Sprintf("category = $%d", argsPosition))
		args = append(args, *req.Category)
		argsPosition++
	}
	if req.Price != nil {
		sets = append(sets, fmt.Sprintf("price = $%d", argsPosition))
		args = append(args, *req.Price)
		argsPosition++
	}
	if req.Quantity != nil {
		sets = append(sets, fmt.Sprintf("quantity = $%d", argsPosition))
		args = append(args, *req.Quantity)
		argsPosition++
	}

	sets = append(sets, "updated_at = NOW()")

	query := `UPDATE sweets SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1 RETURNING ` + sweetColumns

	err = r.observe("sweets.update", func() error {
		return scanSweet(r.pool.QueryRow(ctx, query, args...), &s)
	})

	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			err = sweet.ErrNotFound
		case isUniqueViolation(err):
			err = sweet.ErrDuplicateName
		}
		return
	}

	return
}

func (r *SweetsRepo) Delete(ctx context.Context, id int64) (err error) {
	var tag pgconn.CommandTag

	err = r.observe("sweets.delete", func() error {
		var execErr error
		tag, execErr = r.pool.Exec(ctx, `DELETE FROM sweets WHERE id = $1`, id)
		return execErr
	})

	if err != nil {
		return
	}

	if tag.RowsAffected() == 0 {
		err = sweet.ErrNotFound
		return
	}

	return
}

// Purchase performs the check-and-decrement as one conditional UPDATE so two
// concurrent purchases can never both drain the same stock. A miss is then
// probed once to tell "no such sweet" apart from "not enough stock".
func (r *SweetsRepo) Purchase(ctx context.Context, id int64, quantity int) (s sweet.Sweet, err error) {
	err = r.observe("sweets.purchase", func() error {
		return scanSweet(r.pool.QueryRow(ctx, `
			UPDATE sweets
			SET quantity = quantity - $2,
				updated_at = NOW()
			WHERE id = $1 AND quantity >= $2
			RETURNING `+sweetColumns,
			id, quantity,
		), &s)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			_, getErr := r.GetByID(ctx, id)

			switch {
			case errors.Is(getErr, sweet.ErrNotFound):
				err = sweet.ErrNotFound
			case getErr != nil:
				err = getErr
			default:
				if r.prom != nil {
					r.prom.StockConflicts.Inc()
				}
				err = sweet.ErrInsufficientStock
			}
		}
		return
	}

	return
}

func (r *SweetsRepo) Restock(ctx context.Context, id int64, quantity int) (s sweet.Sweet, err error) {
	err = r.observe("sweets.restock", func() error {
		return scanSweet(r.pool.QueryRow(ctx, `
			UPDATE sweets
			SET quantity = quantity + $2,
				updated_at = NOW()
			WHERE id = $1
			RETURNING `+sweetColumns,
			id, quantity,
		), &s)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = sweet.ErrNotFound
		}
		return
	}

	return
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
