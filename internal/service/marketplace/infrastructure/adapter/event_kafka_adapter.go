// internal/service/marketplace/infrastructure/adapter/event_kafka_adapter.go
package adapter

import (
	"context"
	"encoding/json"
	"time"

	"mandi/internal/pkg/mq"
	"mandi/internal/service/marketplace/domain"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

// OrderEventKafkaAdapter 是 port.EventPublisher 的 Kafka 实现。
// 事件以订单 ID 作为 key，保证同一订单的事件落在同一分区内有序。
type OrderEventKafkaAdapter struct {
	writer *kafka.Writer
}

// NewOrderEventKafkaAdapter 创建一个新的订单事件生产者适配器。
func NewOrderEventKafkaAdapter(writer *kafka.Writer) *OrderEventKafkaAdapter {
	return &OrderEventKafkaAdapter{writer: writer}
}

func (a *OrderEventKafkaAdapter) PublishOrderPlaced(ctx context.Context, order *domain.Order) error {
	event := domain.OrderPlaced{
		OrderID:     order.ID,
		VendorID:    order.VendorID,
		SupplierID:  order.SupplierID,
		TotalAmount: order.TotalAmount,
		PlacedAt:    order.CreatedAt,
	}
	return a.publish(ctx, order.ID, event)
}

func (a *OrderEventKafkaAdapter) PublishOrderStatusChanged(ctx context.Context, order *domain.Order, from domain.Status) error {
	event := domain.OrderStatusChanged{
		OrderID: order.ID,
		From:    from,
		To:      order.Status,
		At:      order.UpdatedAt,
	}
	return a.publish(ctx, order.ID, event)
}

func (a *OrderEventKafkaAdapter) PublishOrderDeleted(ctx context.Context, orderID string) error {
	event := domain.OrderDeleted{OrderID: orderID, At: time.Now()}
	return a.publish(ctx, orderID, event)
}

func (a *OrderEventKafkaAdapter) publish(ctx context.Context, key string, event interface{}) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "failed to marshal order event")
	}
	// mq.ProduceMessage 会自动处理追踪上下文注入
	return mq.ProduceMessage(ctx, a.writer, []byte(key), eventBytes)
}

// Close 关闭底层的 Kafka writer。
func (a *OrderEventKafkaAdapter) Close() error {
	return a.writer.Close()
}
