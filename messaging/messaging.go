// Package messaging publishes domain events after their transaction commits.
package messaging

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
)

// Publisher defines an interface for publishing events to a message broker.
type Publisher interface {
	PublishEvent(ctx context.Context, topic string, key string, event any) error
	Close() error
}

// VoicerCreated is emitted once per committed sale, keyed by shop owner.
type VoicerCreated struct {
	ShopOwnerID   string          `json:"shop_owner_id"`
	VoicerID      string          `json:"voicer_id"`
	InvoiceNumber string          `json:"invoice_id"`
	CustomerID    *string         `json:"customer_id,omitempty"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	NowPaying     decimal.Decimal `json:"now_paying"`
	TotalProfit   decimal.Decimal `json:"total_profit"`
	Date          string          `json:"date"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// Noop drops every event. It is used when no brokers are configured.
type Noop struct{}

func (Noop) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	slog.Debug("event dropped, no broker configured", "topic", topic, "key", key)
	return nil
}

func (Noop) Close() error { return nil }
