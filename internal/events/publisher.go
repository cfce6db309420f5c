package events

import (
	"context"

	"logistock/internal/domain"
)

// Publisher delivers stock events to interested consumers
type Publisher interface {
	Publish(ctx context.Context, event domain.StockEvent) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, domain.StockEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
