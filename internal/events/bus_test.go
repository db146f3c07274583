package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/events"
)

type stubStore struct {
	inserted []events.Event
}

func (s *stubStore) Insert(_ context.Context, topic string, aggregateID uuid.UUID, payload []byte) (events.Event, error) {
	ev := events.Event{
		ID:          uuid.New(),
		Topic:       topic,
		AggregateID: aggregateID,
		Payload:     payload,
		OccurredAt:  time.Now(),
	}
	s.inserted = append(s.inserted, ev)
	return ev, nil
}

type captureScheduler struct {
	events []events.Event
	err    error
}

func (c *captureScheduler) Schedule(_ context.Context, event events.Event) error {
	c.events = append(c.events, event)
	return c.err
}

type captureNotifier struct {
	events []events.Event
}

func (c *captureNotifier) Notify(_ context.Context, event events.Event) error {
	c.events = append(c.events, event)
	return nil
}

func TestEmitPersistsAndFansOut(t *testing.T) {
	store := &stubStore{}
	scheduler := &captureScheduler{}
	notifier := &captureNotifier{}
	bus := &events.Bus{Store: store, Scheduler: scheduler, Notifiers: []events.Notifier{notifier}}

	saleID := uuid.New()
	ev, err := bus.Emit(context.Background(), events.TopicSaleCommitted, saleID, map[string]any{"total": "16.6"})
	require.NoError(t, err)
	require.Equal(t, events.TopicSaleCommitted, ev.Topic)
	require.Equal(t, saleID, ev.AggregateID)
	require.True(t, json.Valid(ev.Payload))
	require.Len(t, store.inserted, 1)
	require.Len(t, scheduler.events, 1)
	require.Len(t, notifier.events, 1)
}

func TestEmitRejectsMissingTopic(t *testing.T) {
	bus := &events.Bus{Store: &stubStore{}}
	_, err := bus.Emit(context.Background(), "  ", uuid.New(), nil)
	require.Error(t, err)
}

func TestEmitCollectsSchedulerError(t *testing.T) {
	scheduler := &captureScheduler{err: errors.New("queue down")}
	bus := &events.Bus{Store: &stubStore{}, Scheduler: scheduler}
	ev, err := bus.Emit(context.Background(), events.TopicSaleCommitted, uuid.New(), []byte(`{"ok":true}`))
	require.Error(t, err)
	require.NotEqual(t, uuid.Nil, ev.ID)
}

func TestEmitRejectsInvalidJSONBytes(t *testing.T) {
	bus := &events.Bus{Store: &stubStore{}}
	_, err := bus.Emit(context.Background(), events.TopicSaleCommitted, uuid.New(), []byte("not-json"))
	require.Error(t, err)
}
