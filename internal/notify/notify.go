// Package notify tells session subscribers that something changed. Events carry ids only.
package notify

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"go.uber.org/zap"
)

type EventType string

const (
	ItemReserved      EventType = "item_reserved"
	ItemReleased      EventType = "item_released"
	ItemCancelled     EventType = "item_cancelled"
	ItemConfirmed     EventType = "item_confirmed"
	DailyPriceUpdated EventType = "daily_price_updated"
	ItemAdded         EventType = "item_added"
	ItemRemoved       EventType = "item_removed"
	ItemUpdated       EventType = "item_updated"
	SessionOpened     EventType = "session_opened"
	SessionClosed     EventType = "session_closed"
)

type Event struct {
	Type       EventType `json:"type"`
	SessionID  string    `json:"session_id"`
	VariantID  string    `json:"variant_id,omitempty"`
	ItemID     string    `json:"item_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// Channel is the pub/sub channel subscribers of a session listen on.
func Channel(sessionID string) string {
	return "session:" + sessionID
}

// Emit publishes evt and only logs failures; a mutation never fails because delivery did.
func Emit(ctx context.Context, pub Publisher, log logger.ZapLogger, evt Event) {
	if pub == nil {
		return
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	if err := pub.Publish(ctx, evt); err != nil {
		log.Warn("failed to publish event",
			zap.String("type", string(evt.Type)),
			zap.String("session_id", evt.SessionID),
			zap.Error(err),
		)
	}
}

type nopPublisher struct{}

func NewNopPublisher() Publisher { return nopPublisher{} }

func (nopPublisher) Publish(context.Context, Event) error { return nil }
