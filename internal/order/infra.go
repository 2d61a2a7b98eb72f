package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const ordersSchema = `
CREATE TABLE IF NOT EXISTS orders (
	id              UUID PRIMARY KEY,
	items           JSONB NOT NULL,
	subtotal        NUMERIC(10, 2) NOT NULL,
	is_finalized    BOOLEAN NOT NULL,
	order_timestamp TIMESTAMPTZ NOT NULL
)`

// PGRepo stores orders in postgres. *sql.DB handles concurrent inserts.
type PGRepo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *PGRepo {
	return &PGRepo{db: db}
}

func (r *PGRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, ordersSchema)
	return err
}

func (r *PGRepo) SaveOrder(ctx context.Context, rec *Record) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	items, err := json.Marshal(OrderState{Items: rec.Items}.Clone().Items)
	if err != nil {
		return "", fmt.Errorf("marshal items: %w", err)
	}

	var id string
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO orders (id, items, subtotal, is_finalized, order_timestamp)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`,
		rec.ID,
		string(items),
		rec.Subtotal,
		rec.IsFinalized,
		rec.OrderTimestamp,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert order: %w", err)
	}

	return id, nil
}

func (r *PGRepo) GetOrder(ctx context.Context, id string) (*Record, error) {
	// the column is uuid; anything else cannot exist
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrOrderNotFound
	}

	var (
		rec   Record
		items []byte
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, items, subtotal, is_finalized, order_timestamp
		FROM orders
		WHERE id = $1
	`, id).Scan(&rec.ID, &items, &rec.Subtotal, &rec.IsFinalized, &rec.OrderTimestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &rec.Items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	return &rec, nil
}

func (r *PGRepo) ListOrders(ctx context.Context) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, items, subtotal, is_finalized, order_timestamp
		FROM orders
		ORDER BY order_timestamp, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var (
			rec   Record
			items []byte
		)
		if err := rows.Scan(&rec.ID, &items, &rec.Subtotal, &rec.IsFinalized, &rec.OrderTimestamp); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if err := json.Unmarshal(items, &rec.Items); err != nil {
			return nil, fmt.Errorf("decode items of %s: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
