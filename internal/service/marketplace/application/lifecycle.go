// internal/service/marketplace/application/lifecycle.go
package application

import (
	"context"

	"mandi/internal/pkg/logger"
	"mandi/internal/service/marketplace/domain"
	"mandi/internal/service/marketplace/port"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OrderLifecycleManager 持有订单状态机的唯一权威实现。
// 所有释放库存的流转（取消、删除未取消的订单）都经由
// Reconciler.Reverse 这一个入口，避免回补逻辑散落多处。
type OrderLifecycleManager struct {
	store      domain.Store
	reconciler *InventoryReconciler
	locker     port.ResourceLocker
	publisher  port.EventPublisher
	tracer     trace.Tracer
}

func NewOrderLifecycleManager(store domain.Store, reconciler *InventoryReconciler, locker port.ResourceLocker, publisher port.EventPublisher, tracer trace.Tracer) *OrderLifecycleManager {
	return &OrderLifecycleManager{
		store:      store,
		reconciler: reconciler,
		locker:     locker,
		publisher:  publisher,
		tracer:     tracer,
	}
}

// UpdateStatus 按状态机推进订单。
// 流转到 cancelled 时，库存回补和状态翻转在同一个事务内提交；
// 条件更新（WHERE status = 旧状态）保证回补恰好执行一次——
// 若并发请求已抢先流转，本事务连同回补一起回滚。
func (m *OrderLifecycleManager) UpdateStatus(ctx context.Context, orderID, requestedStatus string, actor domain.Identity) (*domain.Order, error) {
	ctx, span := m.tracer.Start(ctx, "lifecycle.UpdateStatus")
	defer span.End()
	span.SetAttributes(
		attribute.String("order.id", orderID),
		attribute.String("order.requested_status", requestedStatus),
	)

	next, err := domain.ParseStatus(requestedStatus)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	unlock, err := m.locker.Lock(ctx, "order-"+orderID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	defer func() {
		if err := unlock(); err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("order_id", orderID).Msg("failed to release order lock")
		}
	}()

	var updated *domain.Order
	var from domain.Status
	err = m.store.Transaction(ctx, func(tx domain.Store) error {
		order, err := tx.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order.SupplierID != actor.UserID {
			return &domain.AuthorizationError{UserID: actor.UserID, Operation: "update order " + orderID}
		}

		from = order.Status
		if err := order.TransitionTo(next); err != nil {
			return err
		}

		if next == domain.StatusCancelled {
			if err := m.reconciler.Reverse(ctx, tx, order); err != nil {
				return err
			}
		}

		if err := tx.Orders().UpdateStatus(ctx, orderID, from, next); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "status transition failed")
		return nil, err
	}

	if next == domain.StatusCancelled {
		ordersCancelledTotal.Inc()
	}
	logger.Ctx(ctx).Info().
		Str("order_id", orderID).
		Str("from", string(from)).
		Str("to", string(next)).
		Msg("order status updated")

	// 事件发布是尽力而为，失败不影响已提交的流转
	if m.publisher != nil {
		if err := m.publisher.PublishOrderStatusChanged(ctx, updated, from); err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("order_id", orderID).Msg("failed to publish status change event")
		}
	}
	return updated, nil
}

// Delete 删除订单记录，属于管理动作。
// 未取消的订单先回补库存再删除；已取消的订单直接删除，
// 不会出现二次回补。
func (m *OrderLifecycleManager) Delete(ctx context.Context, orderID string, actor domain.Identity) (*domain.Order, error) {
	ctx, span := m.tracer.Start(ctx, "lifecycle.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", orderID))

	if !actor.IsAdmin() {
		err := &domain.AuthorizationError{UserID: actor.UserID, Operation: "delete order " + orderID}
		span.RecordError(err)
		return nil, err
	}

	unlock, err := m.locker.Lock(ctx, "order-"+orderID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	defer func() {
		if err := unlock(); err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("order_id", orderID).Msg("failed to release order lock")
		}
	}()

	var deleted *domain.Order
	err = m.store.Transaction(ctx, func(tx domain.Store) error {
		order, err := tx.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		// 已取消的订单库存早已回补过了
		if order.Status != domain.StatusCancelled {
			if err := m.reconciler.Reverse(ctx, tx, order); err != nil {
				return err
			}
		}

		if err := tx.Orders().Delete(ctx, orderID); err != nil {
			return err
		}
		deleted = order
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "order deletion failed")
		return nil, err
	}

	logger.Ctx(ctx).Info().Str("order_id", orderID).Msg("order deleted")
	if m.publisher != nil {
		if err := m.publisher.PublishOrderDeleted(ctx, orderID); err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("order_id", orderID).Msg("failed to publish order deleted event")
		}
	}
	return deleted, nil
}
