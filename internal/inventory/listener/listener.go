package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bizfleet/inventory-service/internal/inventory"
	"github.com/bizfleet/inventory-service/internal/inventory/dto"
	"github.com/bizfleet/inventory-service/internal/model"
	"github.com/bizfleet/inventory-service/pkg/broker"
	"github.com/bizfleet/inventory-service/pkg/logger"
	"go.uber.org/zap"
)

// OrderListener ties the reservation lifecycle to order events: placement
// reserves, payment fulfills, cancellation/expiry releases. Every
// cancellation path of the checkout flow ends in a release, so holds are
// never left dangling.
type OrderListener struct {
	consumer *broker.KafkaConsumer
	uc       inventory.UseCase
	logger   logger.ZapLogger
}

func NewOrderListener(consumer *broker.KafkaConsumer, uc inventory.UseCase, log logger.ZapLogger) *OrderListener {
	return &OrderListener{
		consumer: consumer,
		uc:       uc,
		logger:   log,
	}
}

func (l *OrderListener) Start(ctx context.Context) {
	l.logger.Info("starting order event listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("stopping order event listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("failed to read order event", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

const (
	eventOrderPlaced   = "OrderPlaced"
	eventOrderPaid     = "OrderPaid"
	eventOrderCanceled = "OrderCanceled"
)

type OrderEvent struct {
	EventID   string       `json:"event_id"`
	EventType string       `json:"event_type"`
	Payload   OrderPayload `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}

type OrderPayload struct {
	ID          string             `json:"id"`
	TenantID    string             `json:"tenant_id"`
	WarehouseID string             `json:"warehouse_id"`
	Items       []OrderItemPayload `json:"items"`
}

type OrderItemPayload struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (l *OrderListener) processMessage(ctx context.Context, value []byte) {
	var event OrderEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("failed to unmarshal order event", zap.Error(err))
		return
	}

	switch event.EventType {
	case eventOrderPlaced, eventOrderPaid, eventOrderCanceled:
	default:
		return
	}

	l.logger.Info("processing order event",
		zap.String("event_type", event.EventType),
		zap.String("order_id", event.Payload.ID))

	warehouseID := (*string)(nil)
	if event.Payload.WarehouseID != "" {
		w := event.Payload.WarehouseID
		warehouseID = &w
	}
	reference := model.Reference{Kind: model.ReferenceSale, ID: event.Payload.ID}

	for _, item := range event.Payload.Items {
		var err error
		switch event.EventType {
		case eventOrderPlaced:
			err = l.uc.Reserve(ctx, &dto.ReserveInput{
				TenantID:    event.Payload.TenantID,
				ProductID:   item.ProductID,
				WarehouseID: warehouseID,
				Quantity:    item.Quantity,
				Reference:   reference,
			})
		case eventOrderPaid:
			err = l.uc.Release(ctx, &dto.ReleaseInput{
				TenantID:    event.Payload.TenantID,
				ProductID:   item.ProductID,
				WarehouseID: warehouseID,
				Quantity:    item.Quantity,
				Kind:        dto.ReleaseFulfill,
				Reference:   reference,
			})
		case eventOrderCanceled:
			err = l.uc.Release(ctx, &dto.ReleaseInput{
				TenantID:    event.Payload.TenantID,
				ProductID:   item.ProductID,
				WarehouseID: warehouseID,
				Quantity:    item.Quantity,
				Kind:        dto.ReleaseCancel,
				Reference:   reference,
			})
		}
		if err != nil {
			l.logger.Error("failed to process order item",
				zap.String("event_type", event.EventType),
				zap.String("order_id", event.Payload.ID),
				zap.String("product_id", item.ProductID),
				zap.Error(err),
			)
		}
	}
}
