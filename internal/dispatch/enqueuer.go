package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/noah-isme/backend-pos/internal/events"
)

// Enqueuer schedules receipt dispatch for committed sales. It implements
// events.Scheduler; events for other topics are ignored.
type Enqueuer struct {
	Client *asynq.Client
}

// Schedule enqueues a receipt task for a sale-committed event.
func (e *Enqueuer) Schedule(ctx context.Context, ev events.Event) error {
	if ev.Topic != events.TopicSaleCommitted {
		return nil
	}
	if e == nil || e.Client == nil {
		return errors.New("dispatch: asynq client not configured")
	}
	var payload struct {
		SaleID uuid.UUID `json:"saleId"`
	}
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		return fmt.Errorf("dispatch: decode event payload: %w", err)
	}
	task, opts, err := NewReceiptTask(ev.ID, payload.SaleID)
	if err != nil {
		return err
	}
	if _, err := e.Client.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		return fmt.Errorf("dispatch: enqueue receipt: %w", err)
	}
	return nil
}
