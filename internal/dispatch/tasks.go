package dispatch

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// TypeReceiptDispatch is the asynq task type for receipt dispatch.
const TypeReceiptDispatch = "sale:dispatch"

// QueueReceipts is the asynq queue receipts are processed on.
const QueueReceipts = "receipts"

// ReceiptPayload carries the identifiers a worker needs to render a receipt.
type ReceiptPayload struct {
	EventID uuid.UUID `json:"eventId"`
	SaleID  uuid.UUID `json:"saleId"`
}

// NewReceiptTask builds the asynq task for a committed sale. The task id is
// derived from the event id so redelivery of the same event enqueues once.
func NewReceiptTask(eventID, saleID uuid.UUID) (*asynq.Task, []asynq.Option, error) {
	raw, err := json.Marshal(ReceiptPayload{EventID: eventID, SaleID: saleID})
	if err != nil {
		return nil, nil, fmt.Errorf("encode receipt payload: %w", err)
	}
	opts := []asynq.Option{
		asynq.Queue(QueueReceipts),
		asynq.TaskID(fmt.Sprintf("%s:%s", TypeReceiptDispatch, eventID)),
		asynq.MaxRetry(5),
	}
	return asynq.NewTask(TypeReceiptDispatch, raw), opts, nil
}
