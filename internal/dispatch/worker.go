package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/obs"
	"github.com/noah-isme/backend-pos/internal/sale"
)

// StoreInfo is the letterhead printed on every receipt.
type StoreInfo struct {
	Name    string
	Address string
	Phone   string
}

// Marker records that an event's downstream work completed.
type Marker interface {
	MarkDispatched(ctx context.Context, id uuid.UUID) error
}

// Worker renders and dispatches receipts for committed sales.
type Worker struct {
	Sales  sale.Repository
	Events Marker
	Store  StoreInfo
	Logger zerolog.Logger
}

// Receipt is the rendered payload handed to the printing/forwarding channel.
type Receipt struct {
	StoreName    string             `json:"storeName"`
	StoreAddress string             `json:"storeAddress"`
	StorePhone   string             `json:"storePhone"`
	SaleID       uuid.UUID          `json:"saleId"`
	Items        []sale.ItemSnapshot `json:"items"`
	Total        decimal.Decimal    `json:"total"`
	Method       sale.PaymentMethod `json:"paymentMethod"`
	IssuedAt     time.Time          `json:"issuedAt"`
}

// HandleReceiptDispatch processes one receipt task. A sale that no longer
// exists is dropped rather than retried.
func (w *Worker) HandleReceiptDispatch(ctx context.Context, t *asynq.Task) error {
	obs.ReceiptDispatchAttempts.Inc()

	var payload ReceiptPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		obs.ReceiptDispatchFailures.Inc()
		return fmt.Errorf("decode receipt task: %v: %w", err, asynq.SkipRetry)
	}
	rec, err := w.Sales.Get(ctx, payload.SaleID)
	if err != nil {
		if errors.Is(err, sale.ErrNotFound) {
			w.Logger.Warn().Str("sale_id", payload.SaleID.String()).Msg("receipt for missing sale dropped")
			return nil
		}
		obs.ReceiptDispatchFailures.Inc()
		return fmt.Errorf("load sale: %w", err)
	}

	receipt := Receipt{
		StoreName:    w.Store.Name,
		StoreAddress: w.Store.Address,
		StorePhone:   w.Store.Phone,
		SaleID:       rec.ID,
		Items:        rec.Items,
		Total:        rec.Total,
		Method:       rec.PaymentMethod,
		IssuedAt:     rec.CreatedAt,
	}
	raw, err := json.Marshal(receipt)
	if err != nil {
		obs.ReceiptDispatchFailures.Inc()
		return fmt.Errorf("encode receipt: %v: %w", err, asynq.SkipRetry)
	}
	w.Logger.Info().
		Str("sale_id", rec.ID.String()).
		Str("payment_method", string(rec.PaymentMethod)).
		Str("total", rec.Total.String()).
		RawJSON("receipt", raw).
		Msg("receipt_dispatched")

	if w.Events != nil && payload.EventID != uuid.Nil {
		if err := w.Events.MarkDispatched(ctx, payload.EventID); err != nil {
			return fmt.Errorf("mark event dispatched: %w", err)
		}
	}
	return nil
}
