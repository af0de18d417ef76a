// internal/service/marketplace/application/reconciler.go
package application

import (
	"context"
	"errors"
	"strings"

	"mandi/internal/service/marketplace/domain"
	"mandi/internal/service/marketplace/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InventoryReconciler 负责订单与库存的原子对账:
// 校验、扣减、定价快照、订单落库在同一个事务里完成，
// 任何一步失败都不会留下半套已扣减的库存。
type InventoryReconciler struct {
	store  domain.Store
	rules  port.OrderRuleEngine // 可为 nil，表示不启用下单规则
	tracer trace.Tracer
}

func NewInventoryReconciler(store domain.Store, rules port.OrderRuleEngine, tracer trace.Tracer) *InventoryReconciler {
	return &InventoryReconciler{store: store, rules: rules, tracer: tracer}
}

// Apply 按请求顺序逐个校验并扣减库存，生成带价格快照的订单并持久化。
// 全部操作运行在一个事务内: 第 k 个行项目失败时，前 k-1 个扣减随事务回滚，
// 对外不可能观察到半套已应用的订单。
func (r *InventoryReconciler) Apply(ctx context.Context, vendorID string, requests []LineItemRequest, shippingAddress string) (*domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "reconciler.Apply")
	defer span.End()

	if err := validateRequests(vendorID, requests, shippingAddress); err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("order.vendor_id", vendorID),
		attribute.Int("order.item_count", len(requests)),
	)

	var order *domain.Order
	err := r.store.Transaction(ctx, func(tx domain.Store) error {
		items := make([]domain.LineItem, 0, len(requests))
		supplierID := ""

		for _, req := range requests {
			product, err := tx.Products().FindByID(ctx, req.ProductID)
			if err != nil {
				return err
			}
			if product.Stock < req.Quantity {
				return &domain.InsufficientStockError{
					ProductID:   product.ID,
					ProductName: product.Name,
					Requested:   req.Quantity,
					Available:   product.Stock,
				}
			}

			// 价格快照在扣减之前捕获；扣减本身是条件更新，
			// 并发订单竞争同一商品时以数据库的判定为准。
			if err := tx.Products().DecrementStock(ctx, product.ID, req.Quantity); err != nil {
				if errors.Is(err, domain.ErrInsufficientStock) {
					return &domain.InsufficientStockError{
						ProductID:   product.ID,
						ProductName: product.Name,
						Requested:   req.Quantity,
						Available:   product.Stock,
					}
				}
				return err
			}

			// 订单的供应商取自第一个行项目的商品，后续行项目不做同供应商校验
			if supplierID == "" {
				supplierID = product.SupplierID
			}

			items = append(items, domain.LineItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    req.Quantity,
				Price:       product.Price,
			})
		}

		entity, err := domain.NewOrder(uuid.NewString(), vendorID, supplierID, shippingAddress, items)
		if err != nil {
			return err
		}

		// 运营配置的下单规则在订单落库之前评估；
		// 规则拒绝时整个事务回滚，库存保持原样。
		if r.rules != nil {
			if err := r.rules.Evaluate(ctx, orderFact(entity)); err != nil {
				return err
			}
		}

		if err := tx.Orders().Create(ctx, entity); err != nil {
			return err
		}
		order = entity
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "order application failed")
		return nil, err
	}

	span.AddEvent("Stock reserved and order persisted.")
	return order, nil
}

// Reverse 把订单每个行项目的数量回补到对应商品。
// 必须运行在调用方的事务内，且每个订单至多被调用一次；
// 去重是调用方（生命周期管理器）的责任。
func (r *InventoryReconciler) Reverse(ctx context.Context, tx domain.Store, order *domain.Order) error {
	for _, item := range order.Items {
		if err := tx.Products().IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func validateRequests(vendorID string, requests []LineItemRequest, shippingAddress string) error {
	if vendorID == "" {
		return &domain.ValidationError{Reason: "vendor identity is required"}
	}
	if len(requests) == 0 {
		return &domain.ValidationError{Reason: "please add products to the order"}
	}
	if strings.TrimSpace(shippingAddress) == "" {
		return &domain.ValidationError{Reason: "shipping address must not be empty"}
	}
	for _, req := range requests {
		if req.ProductID == "" {
			return &domain.ValidationError{Reason: "line item product id must not be empty"}
		}
		if req.Quantity <= 0 {
			return &domain.ValidationError{Reason: "line item quantity must be positive"}
		}
	}
	return nil
}

func orderFact(order *domain.Order) port.OrderFact {
	fact := port.OrderFact{
		VendorID:    order.VendorID,
		ItemCount:   len(order.Items),
		TotalAmount: order.TotalAmount,
	}
	for _, item := range order.Items {
		fact.TotalQuantity += item.Quantity
	}
	return fact
}
