// Package nats publishes inventory events to a NATS subject.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	natsio "github.com/nats-io/nats.go"

	"github.com/heartmarshall/mealink-backend/internal/domain"
)

// EventInventoryRecorded is the type of the event sent after a successful
// ingestion.
const EventInventoryRecorded = "inventory.recorded"

type conn interface {
	Publish(subject string, data []byte) error
}

// Publisher sends inventory events. It is safe for concurrent use.
type Publisher struct {
	conn    conn
	subject string
	log     *slog.Logger
	now     func() time.Time
}

// Connect dials the NATS server at url.
func Connect(url, subject string, logger *slog.Logger) (*Publisher, *natsio.Conn, error) {
	nc, err := natsio.Connect(url,
		natsio.Name("mealink"),
		natsio.MaxReconnects(-1),
		natsio.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("connect nats: %w", err)
	}
	return NewPublisher(nc, subject, logger), nc, nil
}

// NewPublisher creates a Publisher on an existing connection.
func NewPublisher(c conn, subject string, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:    c,
		subject: subject,
		log:     logger.With("adapter", "nats"),
		now:     time.Now,
	}
}

// RecordedEvent is the payload of an inventory.recorded event.
type RecordedEvent struct {
	Type       string         `json:"type"`
	OwnerID    uuid.UUID      `json:"owner_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Items      []RecordedItem `json:"items"`
}

// RecordedItem is one stored inventory record.
type RecordedItem struct {
	ID           uuid.UUID `json:"id"`
	IngredientID uuid.UUID `json:"ingredient_id"`
	Quantity     string    `json:"quantity"`
	Unit         string    `json:"unit"`
	Location     string    `json:"location"`
	ExpiresAt    *string   `json:"expires_at,omitempty"`
}

// NewRecordedEvent builds the event payload for records stored for ownerID.
func NewRecordedEvent(ownerID uuid.UUID, records []domain.InventoryRecord, at time.Time) RecordedEvent {
	items := make([]RecordedItem, len(records))
	for i, rec := range records {
		items[i] = RecordedItem{
			ID:           rec.ID,
			IngredientID: rec.IngredientID,
			Quantity:     rec.Quantity.String(),
			Unit:         rec.Unit,
			Location:     string(rec.Location.OrDefault()),
			ExpiresAt:    rec.ExpiresAt,
		}
	}
	return RecordedEvent{
		Type:       EventInventoryRecorded,
		OwnerID:    ownerID,
		OccurredAt: at.UTC(),
		Items:      items,
	}
}

// InventoryRecorded publishes one event for a stored batch.
func (p *Publisher) InventoryRecorded(ctx context.Context, ownerID uuid.UUID, records []domain.InventoryRecord) error {
	// Publish does not take a context; honour cancellation before sending.
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(NewRecordedEvent(ownerID, records, p.now()))
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", p.subject, err)
	}

	p.log.DebugContext(ctx, "event published",
		slog.String("subject", p.subject),
		slog.Int("records", len(records)),
	)
	return nil
}
