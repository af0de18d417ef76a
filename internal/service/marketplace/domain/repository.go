// internal/service/marketplace/domain/repository.go
package domain

import "context"

// ProductRepository 定义了商品聚合的持久化接口。
// 它位于领域层，但由基础设施层实现。
type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	Save(ctx context.Context, product *Product) error
	FindByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context) ([]*Product, error)
	Delete(ctx context.Context, id string) error

	// DecrementStock 是原子的条件扣减:
	// UPDATE products SET stock = stock - qty WHERE id = ? AND stock >= qty。
	// 库存不足时返回 ErrInsufficientStock，绝不会把库存扣成负数。
	DecrementStock(ctx context.Context, id string, quantity int) error

	// IncrementStock 回补库存，用于取消/删除订单时的反向操作。
	IncrementStock(ctx context.Context, id string, quantity int) error
}

// OrderRepository 定义了订单聚合的持久化接口。
type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context) ([]*Order, error)
	ListByVendor(ctx context.Context, vendorID string) ([]*Order, error)
	ListBySupplier(ctx context.Context, supplierID string) ([]*Order, error)
	Delete(ctx context.Context, id string) error

	// UpdateStatus 是条件更新: 只有当前状态仍为 from 时才会流转到 to。
	// 没有命中任何行时返回 InvalidTransitionError，
	// 这让 "状态检查 + 状态翻转" 成为单个原子步骤。
	UpdateStatus(ctx context.Context, id string, from, to Status) error
}

// Store 是仓储的聚合入口，同时承担事务边界。
// Transaction 内拿到的 Store 的所有操作要么一起提交，要么一起回滚，
// 这保证了订单创建与库存扣减的跨字段一致性。
type Store interface {
	Products() ProductRepository
	Orders() OrderRepository
	Transaction(ctx context.Context, fn func(txStore Store) error) error
}
