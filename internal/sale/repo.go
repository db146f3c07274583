package sale

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the requested sale does not exist.
var ErrNotFound = errors.New("sale not found")

// ErrRejected indicates the database refused the submission (constraint
// violation), which is not retryable as-is.
var ErrRejected = errors.New("sale submission rejected")

// PGRepository persists sales to Postgres. A sale and its items are written
// in a single transaction so a partial sale can never be observed.
type PGRepository struct {
	Pool *pgxpool.Pool
}

// Create inserts the sale and its item snapshots, returning the stored record.
func (r *PGRepository) Create(ctx context.Context, sub Submission) (Record, error) {
	if r == nil || r.Pool == nil {
		return Record{}, errors.New("sale repository not configured")
	}
	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Record{}, fmt.Errorf("begin sale tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	rec := Record{Submission: sub}
	details := sub.PaymentDetails
	if len(details) == 0 {
		details = json.RawMessage(`{}`)
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO sales (store_id, total, payment_method, payment_details)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		sub.StoreID, sub.Total, string(sub.PaymentMethod), details,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return Record{}, mapPGError("insert sale", err)
	}

	for i, item := range sub.Items {
		modifiers, err := json.Marshal(item.Modifiers)
		if err != nil {
			return Record{}, fmt.Errorf("encode modifiers: %w", err)
		}
		discounts, err := json.Marshal(item.Discounts)
		if err != nil {
			return Record{}, fmt.Errorf("encode discounts: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO sale_items (sale_id, position, product_id, quantity, modifiers, discounts, unit_price_at_sale)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			rec.ID, i, item.ProductID, item.Quantity, modifiers, discounts, item.UnitPriceAtSale,
		); err != nil {
			return Record{}, mapPGError("insert sale item", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return Record{}, fmt.Errorf("commit sale: %w", err)
	}
	return rec, nil
}

// List returns recent sales for a store, newest first.
func (r *PGRepository) List(ctx context.Context, storeID string, limit, offset int) ([]Record, error) {
	if r == nil || r.Pool == nil {
		return nil, errors.New("sale repository not configured")
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.Pool.Query(ctx,
		`SELECT id, store_id, total, payment_method, payment_details, created_at
		 FROM sales WHERE store_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`, storeID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	var records []Record
	ids := make([]uuid.UUID, 0, limit)
	for rows.Next() {
		var rec Record
		var method string
		if err := rows.Scan(&rec.ID, &rec.StoreID, &rec.Total, &method, &rec.PaymentDetails, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		rec.PaymentMethod = PaymentMethod(method)
		records = append(records, rec)
		ids = append(ids, rec.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return records, nil
	}
	itemsBySale, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i].Items = itemsBySale[records[i].ID]
	}
	return records, nil
}

// Get loads a single sale with its items.
func (r *PGRepository) Get(ctx context.Context, id uuid.UUID) (Record, error) {
	if r == nil || r.Pool == nil {
		return Record{}, errors.New("sale repository not configured")
	}
	var rec Record
	var method string
	err := r.Pool.QueryRow(ctx,
		`SELECT id, store_id, total, payment_method, payment_details, created_at
		 FROM sales WHERE id = $1`, id,
	).Scan(&rec.ID, &rec.StoreID, &rec.Total, &method, &rec.PaymentDetails, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("get sale: %w", err)
	}
	rec.PaymentMethod = PaymentMethod(method)
	itemsBySale, err := r.loadItems(ctx, []uuid.UUID{id})
	if err != nil {
		return Record{}, err
	}
	rec.Items = itemsBySale[id]
	return rec, nil
}

func (r *PGRepository) loadItems(ctx context.Context, saleIDs []uuid.UUID) (map[uuid.UUID][]ItemSnapshot, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT sale_id, product_id, quantity, modifiers, discounts, unit_price_at_sale
		 FROM sale_items WHERE sale_id = ANY($1)
		 ORDER BY sale_id, position`, saleIDs)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]ItemSnapshot, len(saleIDs))
	for rows.Next() {
		var (
			saleID        uuid.UUID
			item          ItemSnapshot
			modifiersJSON []byte
			discountsJSON []byte
		)
		if err := rows.Scan(&saleID, &item.ProductID, &item.Quantity, &modifiersJSON, &discountsJSON, &item.UnitPriceAtSale); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		if len(modifiersJSON) > 0 {
			if err := json.Unmarshal(modifiersJSON, &item.Modifiers); err != nil {
				return nil, fmt.Errorf("decode modifiers: %w", err)
			}
		}
		if len(discountsJSON) > 0 {
			if err := json.Unmarshal(discountsJSON, &item.Discounts); err != nil {
				return nil, fmt.Errorf("decode discounts: %w", err)
			}
		}
		out[saleID] = append(out[saleID], item)
	}
	return out, rows.Err()
}

func mapPGError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) >= 2 && pgErr.Code[:2] == "23" {
		return fmt.Errorf("%s: %s: %w", op, pgErr.Message, ErrRejected)
	}
	return fmt.Errorf("%s: %w", op, err)
}
