package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore persists domain events to Postgres.
type PGStore struct {
	Pool *pgxpool.Pool
}

// Insert writes a domain event row and returns it with assigned id and time.
func (s *PGStore) Insert(ctx context.Context, topic string, aggregateID uuid.UUID, payload []byte) (Event, error) {
	if s == nil || s.Pool == nil {
		return Event{}, errors.New("events: pg store not configured")
	}
	ev := Event{Topic: topic, AggregateID: aggregateID, Payload: payload}
	err := s.Pool.QueryRow(ctx,
		`INSERT INTO domain_events (topic, aggregate_id, payload)
		 VALUES ($1, $2, $3)
		 RETURNING id, occurred_at`,
		topic, aggregateID, payload,
	).Scan(&ev.ID, &ev.OccurredAt)
	if err != nil {
		return Event{}, fmt.Errorf("insert domain event: %w", err)
	}
	return ev, nil
}

// MarkDispatched stamps an event once the worker has handed it off.
func (s *PGStore) MarkDispatched(ctx context.Context, id uuid.UUID) error {
	if s == nil || s.Pool == nil {
		return errors.New("events: pg store not configured")
	}
	_, err := s.Pool.Exec(ctx,
		`UPDATE domain_events SET dispatched_at = now() WHERE id = $1`, id)
	return err
}
