// internal/service/marketplace/application/service.go
package application

import (
	"context"
	"errors"

	"mandi/internal/pkg/logger"
	"mandi/internal/service/marketplace/domain"
	"mandi/internal/service/marketplace/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MarketplaceService 是应用层的编排入口。
// 它只做角色检查、用例编排和缓存/事件等旁路副作用，
// 库存与状态机的硬不变量分别由 Reconciler 和 LifecycleManager 保证。
type MarketplaceService struct {
	store      domain.Store
	reconciler *InventoryReconciler
	lifecycle  *OrderLifecycleManager
	cache      port.ProductCache
	publisher  port.EventPublisher
	tracer     trace.Tracer
}

func NewMarketplaceService(store domain.Store, reconciler *InventoryReconciler, lifecycle *OrderLifecycleManager, cache port.ProductCache, publisher port.EventPublisher, tracer trace.Tracer) *MarketplaceService {
	return &MarketplaceService{
		store:      store,
		reconciler: reconciler,
		lifecycle:  lifecycle,
		cache:      cache,
		publisher:  publisher,
		tracer:     tracer,
	}
}

// PlaceOrder 处理买方下单。
// 失败时不留下任何痕迹: 没有订单记录，库存保持原样。
func (s *MarketplaceService) PlaceOrder(ctx context.Context, actor domain.Identity, req *PlaceOrderRequest) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "app.PlaceOrder")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", actor.UserID))

	if !actor.IsVendor() {
		err := &domain.AuthorizationError{UserID: actor.UserID, Operation: "place an order"}
		span.RecordError(err)
		return nil, err
	}

	order, err := s.reconciler.Apply(ctx, actor.UserID, req.Products, req.ShippingAddress)
	if err != nil {
		orderFailuresTotal.WithLabelValues(failureReason(err)).Inc()
		if errors.Is(err, domain.ErrInsufficientStock) {
			stockConflictsTotal.Inc()
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "order placement failed")
		return nil, err
	}

	ordersPlacedTotal.Inc()
	logger.Ctx(ctx).Info().
		Str("order_id", order.ID).
		Str("vendor_id", order.VendorID).
		Float64("total_amount", order.TotalAmount).
		Msg("order placed")

	s.invalidateProducts(ctx, order)
	if s.publisher != nil {
		if err := s.publisher.PublishOrderPlaced(ctx, order); err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("order_id", order.ID).Msg("failed to publish order placed event")
		}
	}
	return order, nil
}

// GetOrder 返回单个订单，仅限订单的买方、卖方或管理员查看。
func (s *MarketplaceService) GetOrder(ctx context.Context, orderID string, actor domain.Identity) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "app.GetOrder")
	defer span.End()

	order, err := s.store.Orders().FindByID(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !order.AccessibleBy(actor) {
		err := &domain.AuthorizationError{UserID: actor.UserID, Operation: "access order " + orderID}
		span.RecordError(err)
		return nil, err
	}
	return order, nil
}

// UpdateOrderStatus 推进订单状态，见 OrderLifecycleManager.UpdateStatus。
func (s *MarketplaceService) UpdateOrderStatus(ctx context.Context, orderID, requestedStatus string, actor domain.Identity) (*domain.Order, error) {
	order, err := s.lifecycle.UpdateStatus(ctx, orderID, requestedStatus, actor)
	if err != nil {
		return nil, err
	}
	// 取消会改动库存，相关商品的缓存需要失效
	if order.Status == domain.StatusCancelled {
		s.invalidateProducts(ctx, order)
	}
	return order, nil
}

// DeleteOrder 删除订单（管理动作），见 OrderLifecycleManager.Delete。
func (s *MarketplaceService) DeleteOrder(ctx context.Context, orderID string, actor domain.Identity) error {
	order, err := s.lifecycle.Delete(ctx, orderID, actor)
	if err != nil {
		return err
	}
	s.invalidateProducts(ctx, order)
	return nil
}

// ListOrders 按操作者的角色返回可见的订单集合，按创建时间倒序。
func (s *MarketplaceService) ListOrders(ctx context.Context, actor domain.Identity) ([]*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "app.ListOrders")
	defer span.End()

	switch {
	case actor.IsAdmin():
		return s.store.Orders().List(ctx)
	case actor.IsVendor():
		return s.store.Orders().ListByVendor(ctx, actor.UserID)
	case actor.IsSupplier():
		return s.store.Orders().ListBySupplier(ctx, actor.UserID)
	}
	return nil, &domain.AuthorizationError{UserID: actor.UserID, Operation: "list orders"}
}

// CreateProduct 上架新商品，归属于发起请求的供应商。
func (s *MarketplaceService) CreateProduct(ctx context.Context, actor domain.Identity, req *CreateProductRequest) (*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "app.CreateProduct")
	defer span.End()

	if !actor.IsSupplier() {
		err := &domain.AuthorizationError{UserID: actor.UserID, Operation: "create a product"}
		span.RecordError(err)
		return nil, err
	}

	product, err := domain.NewProduct(uuid.NewString(), req.Name, req.Description, req.Price, req.Stock, domain.Category(req.Category), actor.UserID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := s.store.Products().Create(ctx, product); err != nil {
		span.RecordError(err)
		return nil, err
	}

	logger.Ctx(ctx).Info().Str("product_id", product.ID).Str("supplier_id", actor.UserID).Msg("product created")
	return product, nil
}

// GetProduct 读取单个商品，经由缓存回源。
func (s *MarketplaceService) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "app.GetProduct")
	defer span.End()

	if s.cache == nil {
		return s.store.Products().FindByID(ctx, productID)
	}
	return s.cache.GetOrLoad(ctx, productID, func(ctx context.Context) (*domain.Product, error) {
		return s.store.Products().FindByID(ctx, productID)
	})
}

// ListProducts 返回全部商品列表。
func (s *MarketplaceService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "app.ListProducts")
	defer span.End()
	return s.store.Products().List(ctx)
}

// UpdateProduct 修改商品，仅限归属供应商。
// 库存调整以增量形式回放到 Increment/DecrementStock 原语上，
// 避免覆盖写与并发订单的扣减互相踩踏；
// 下调量超过剩余库存时返回 InsufficientStockError。
func (s *MarketplaceService) UpdateProduct(ctx context.Context, actor domain.Identity, productID string, req *UpdateProductRequest) (*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "app.UpdateProduct")
	defer span.End()

	var updated *domain.Product
	err := s.store.Transaction(ctx, func(tx domain.Store) error {
		product, err := tx.Products().FindByID(ctx, productID)
		if err != nil {
			return err
		}
		if !product.OwnedBy(actor.UserID) {
			return &domain.AuthorizationError{UserID: actor.UserID, Operation: "update product " + productID}
		}

		if req.Name != nil {
			product.Name = *req.Name
		}
		if req.Description != nil {
			product.Description = *req.Description
		}
		if req.Price != nil {
			if *req.Price <= 0 {
				return &domain.ValidationError{Reason: "product price must be positive"}
			}
			product.Price = *req.Price
		}
		if req.Category != nil {
			category, err := domain.ParseCategory(*req.Category)
			if err != nil {
				return err
			}
			product.Category = category
		}

		if err := tx.Products().Save(ctx, product); err != nil {
			return err
		}

		if req.Stock != nil {
			if *req.Stock < 0 {
				return &domain.ValidationError{Reason: "product stock must not be negative"}
			}
			switch delta := *req.Stock - product.Stock; {
			case delta > 0:
				if err := tx.Products().IncrementStock(ctx, productID, delta); err != nil {
					return err
				}
			case delta < 0:
				if err := tx.Products().DecrementStock(ctx, productID, -delta); err != nil {
					if errors.Is(err, domain.ErrInsufficientStock) {
						return &domain.InsufficientStockError{
							ProductID:   product.ID,
							ProductName: product.Name,
							Requested:   -delta,
							Available:   product.Stock,
						}
					}
					return err
				}
			}
			product.Stock = *req.Stock
		}

		updated = product
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, productID); err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("product_id", productID).Msg("failed to invalidate product cache")
		}
	}
	return updated, nil
}

// DeleteProduct 下架商品，仅限归属供应商或管理员。
// 历史订单不受影响: 行项目只保留价格快照，不依赖商品行存在。
func (s *MarketplaceService) DeleteProduct(ctx context.Context, actor domain.Identity, productID string) error {
	ctx, span := s.tracer.Start(ctx, "app.DeleteProduct")
	defer span.End()

	err := s.store.Transaction(ctx, func(tx domain.Store) error {
		product, err := tx.Products().FindByID(ctx, productID)
		if err != nil {
			return err
		}
		if !product.OwnedBy(actor.UserID) && !actor.IsAdmin() {
			return &domain.AuthorizationError{UserID: actor.UserID, Operation: "delete product " + productID}
		}
		return tx.Products().Delete(ctx, productID)
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, productID); err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("product_id", productID).Msg("failed to invalidate product cache")
		}
	}
	return nil
}

// invalidateProducts 让订单触碰过的商品缓存失效，失败只记日志。
func (s *MarketplaceService) invalidateProducts(ctx context.Context, order *domain.Order) {
	if s.cache == nil {
		return
	}
	for _, item := range order.Items {
		if err := s.cache.Invalidate(ctx, item.ProductID); err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("product_id", item.ProductID).Msg("failed to invalidate product cache")
		}
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "internal"
	}
}
