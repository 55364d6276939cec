package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/UnitVectorY-Labs/shoppinglist/internal/model"
)

// TableName is the PostgreSQL table holding the shopping list.
const TableName = "shopping_items"

// Store provides shopping list operations against PostgreSQL.
// Ordering follows the position column, assigned once on insert.
type Store struct {
	db *sql.DB
}

// NewStore creates a new Store backed by the given database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Upsert inserts a new item or merges the amount of an existing one in a
// single statement. The position of an existing row is never touched.
func (s *Store) Upsert(ctx context.Context, item model.Item, mode model.UpsertMode) (model.Item, bool, error) {
	set := "amount = EXCLUDED.amount"
	if mode == model.UpsertAccumulate {
		set = fmt.Sprintf("amount = %q.amount + EXCLUDED.amount", TableName)
	}

	query := fmt.Sprintf(
		`INSERT INTO %q (name, amount, created_at, updated_at)
		 VALUES ($1, $2, now(), now())
		 ON CONFLICT (name) DO UPDATE SET %s, updated_at = now()
		 RETURNING amount, (xmax = 0) AS inserted`,
		TableName, set,
	)

	var amount int
	var inserted bool
	if err := s.db.QueryRowContext(ctx, query, item.Name, item.Amount).Scan(&amount, &inserted); err != nil {
		return model.Item{}, false, wrapQueryError("upsert item", err)
	}
	return model.Item{Name: item.Name, Amount: amount}, inserted, nil
}

// Get retrieves a single item by name.
func (s *Store) Get(ctx context.Context, name string) (model.Item, error) {
	var amount int
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT amount FROM %q WHERE name = $1`, TableName),
		name,
	).Scan(&amount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Item{}, fmt.Errorf("get %q: %w", name, model.ErrNotFound)
		}
		return model.Item{}, wrapQueryError("get item", err)
	}
	return model.Item{Name: name, Amount: amount}, nil
}

// Update replaces the amount of an existing item.
func (s *Store) Update(ctx context.Context, item model.Item) (model.Item, error) {
	var amount int
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`UPDATE %q SET amount = $2, updated_at = now() WHERE name = $1 RETURNING amount`, TableName),
		item.Name, item.Amount,
	).Scan(&amount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Item{}, fmt.Errorf("update %q: %w", item.Name, model.ErrNotFound)
		}
		return model.Item{}, wrapQueryError("update item", err)
	}
	return model.Item{Name: item.Name, Amount: amount}, nil
}

// Delete removes an item by name.
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %q WHERE name = $1`, TableName),
		name,
	)
	if err != nil {
		return wrapQueryError("delete item", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete %q: %w", name, model.ErrNotFound)
	}
	return nil
}

// Clear deletes every item.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %q`, TableName)); err != nil {
		return wrapQueryError("clear items", err)
	}
	return nil
}

// List returns up to limit items starting at offset, in insertion order.
func (s *Store) List(ctx context.Context, offset, limit int) ([]model.Item, error) {
	items := []model.Item{}
	if offset < 0 || limit <= 0 {
		return items, nil
	}

	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT name, amount FROM %q ORDER BY position LIMIT $1 OFFSET $2`, TableName),
		limit, offset,
	)
	if err != nil {
		return nil, wrapQueryError("list items", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it model.Item
		if err := rows.Scan(&it.Name, &it.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return items, nil
}

func wrapQueryError(op string, err error) error {
	if isOutOfRangeError(err) {
		return fmt.Errorf("failed to %s: %w: amount out of range", op, model.ErrInvalidPayload)
	}
	if isUndefinedTableError(err) {
		return fmt.Errorf("failed to %s: table %q does not exist; run migrate: %w", op, TableName, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
