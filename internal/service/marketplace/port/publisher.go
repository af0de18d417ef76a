// internal/service/marketplace/port/publisher.go
package port

import (
	"context"

	"mandi/internal/service/marketplace/domain"
)

// EventPublisher 是订单事件的出站端口。
// 事件发布是尽力而为的: 发布失败只记日志，不回滚业务操作。
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, order *domain.Order) error
	PublishOrderStatusChanged(ctx context.Context, order *domain.Order, from domain.Status) error
	PublishOrderDeleted(ctx context.Context, orderID string) error
	Close() error
}
