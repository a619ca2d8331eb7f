package publisher

import (
	"context"
	"encoding/json"

	"github.com/bizfleet/inventory-service/internal/inventory/dto"
	"github.com/bizfleet/inventory-service/pkg/broker"
)

const eventLowStock = "inventory.low_stock"

type envelope struct {
	EventType string             `json:"event_type"`
	Payload   *dto.LowStockEvent `json:"payload"`
}

// KafkaPublisher emits ledger events for downstream alerting/reporting.
type KafkaPublisher struct {
	publisher *broker.KafkaPublisher
}

func NewKafkaPublisher(p *broker.KafkaPublisher) *KafkaPublisher {
	return &KafkaPublisher{publisher: p}
}

func (p *KafkaPublisher) PublishLowStock(ctx context.Context, event *dto.LowStockEvent) error {
	value, err := json.Marshal(envelope{EventType: eventLowStock, Payload: event})
	if err != nil {
		return err
	}
	return p.publisher.Publish(ctx, []byte(event.ProductID), value)
}
