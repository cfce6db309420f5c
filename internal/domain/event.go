package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies a stock event
type EventType string

const (
	EventProductCreated EventType = "product.created"
	EventProductDeleted EventType = "product.deleted"
	EventStockIncreased EventType = "stock.increased"
	EventStockDecreased EventType = "stock.decreased"
	EventStockLow       EventType = "stock.low"
)

// StockEvent is emitted after a product or its stock changes
type StockEvent struct {
	Type          EventType `json:"type"`
	ProductID     uuid.UUID `json:"product_id"`
	Barcode       string    `json:"barcode"`
	Quantity      int       `json:"quantity"`
	Delta         int       `json:"delta,omitempty"`
	MinStockLevel int       `json:"min_stock_level"`
	MaxStockLevel int       `json:"max_stock_level"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewStockEvent builds an event from the current product state
func NewStockEvent(eventType EventType, p *Product, delta int) StockEvent {
	return StockEvent{
		Type:          eventType,
		ProductID:     p.ID,
		Barcode:       p.Barcode,
		Quantity:      p.StockQuantity,
		Delta:         delta,
		MinStockLevel: p.MinStockLevel,
		MaxStockLevel: p.MaxStockLevel,
		OccurredAt:    time.Now().UTC(),
	}
}
