// internal/service/marketplace/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"

	"mandi/internal/service/marketplace/domain"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// GormStore 是 domain.Store 的 GORM 实现。
// Transaction 内返回的 Store 绑定到事务句柄，
// 其上的所有仓储操作共享同一个提交/回滚边界。
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Products() domain.ProductRepository {
	return &GormProductRepository{db: s.db}
}

func (s *GormStore) Orders() domain.OrderRepository {
	return &GormOrderRepository{db: s.db}
}

func (s *GormStore) Transaction(ctx context.Context, fn func(txStore domain.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

// GormProductRepository 是 ProductRepository 的 GORM 实现
type GormProductRepository struct {
	db *gorm.DB
}

func (r *GormProductRepository) Create(ctx context.Context, product *domain.Product) error {
	err := r.db.WithContext(ctx).Create(ToProductModel(product)).Error
	if isDuplicateEntry(err) {
		return &domain.ValidationError{Reason: "product already exists: " + product.ID}
	}
	return errors.Wrap(err, "failed to create product")
}

// Save 更新商品的描述性字段。库存列被刻意排除在外，
// 库存只能通过 DecrementStock/IncrementStock 变更。
func (r *GormProductRepository) Save(ctx context.Context, product *domain.Product) error {
	err := r.db.WithContext(ctx).Model(&ProductModel{}).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"name":        product.Name,
			"description": product.Description,
			"price":       product.Price,
			"category":    string(product.Category),
		}).Error
	return errors.Wrap(err, "failed to save product")
}

func (r *GormProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	var model ProductModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &domain.NotFoundError{Resource: "product", ID: id}
		}
		return nil, errors.Wrap(err, "failed to find product")
	}
	return ToDomainProduct(&model), nil
}

func (r *GormProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	var models []ProductModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}
	products := make([]*domain.Product, 0, len(models))
	for i := range models {
		products = append(products, ToDomainProduct(&models[i]))
	}
	return products, nil
}

func (r *GormProductRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&ProductModel{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "failed to delete product")
	}
	if res.RowsAffected == 0 {
		return &domain.NotFoundError{Resource: "product", ID: id}
	}
	return nil
}

// DecrementStock 执行原子的条件扣减。
// WHERE stock >= ? 让检查和扣减成为数据库层面的单条 check-and-set，
// 两个并发订单不可能把库存扣成负数。
func (r *GormProductRepository) DecrementStock(ctx context.Context, id string, quantity int) error {
	res := r.db.WithContext(ctx).Model(&ProductModel{}).
		Where("id = ? AND stock >= ?", id, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return errors.Wrap(res.Error, "failed to decrement stock")
	}
	if res.RowsAffected == 0 {
		// 没有命中行: 商品不存在，或库存不足
		var count int64
		if err := r.db.WithContext(ctx).Model(&ProductModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return errors.Wrap(err, "failed to check product existence")
		}
		if count == 0 {
			return &domain.NotFoundError{Resource: "product", ID: id}
		}
		return domain.ErrInsufficientStock
	}
	return nil
}

func (r *GormProductRepository) IncrementStock(ctx context.Context, id string, quantity int) error {
	res := r.db.WithContext(ctx).Model(&ProductModel{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", quantity))
	if res.Error != nil {
		return errors.Wrap(res.Error, "failed to increment stock")
	}
	if res.RowsAffected == 0 {
		// 商品在订单存续期间被下架了; 回补无处可去，按原价快照的弱引用语义忽略
		return nil
	}
	return nil
}

// GormOrderRepository 是 OrderRepository 的 GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

func (r *GormOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	err := r.db.WithContext(ctx).Create(ToOrderModel(order)).Error
	if isDuplicateEntry(err) {
		return &domain.ValidationError{Reason: "order already exists: " + order.ID}
	}
	return errors.Wrap(err, "failed to create order")
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &domain.NotFoundError{Resource: "order", ID: id}
		}
		return nil, errors.Wrap(err, "failed to find order")
	}
	return ToDomainOrder(&model), nil
}

func (r *GormOrderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	return r.list(ctx, r.db.WithContext(ctx))
}

func (r *GormOrderRepository) ListByVendor(ctx context.Context, vendorID string) ([]*domain.Order, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("vendor_id = ?", vendorID))
}

func (r *GormOrderRepository) ListBySupplier(ctx context.Context, supplierID string) ([]*domain.Order, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("supplier_id = ?", supplierID))
}

func (r *GormOrderRepository) list(ctx context.Context, query *gorm.DB) ([]*domain.Order, error) {
	var models []OrderModel
	if err := query.Preload("Items").Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list orders")
	}
	orders := make([]*domain.Order, 0, len(models))
	for i := range models {
		orders = append(orders, ToDomainOrder(&models[i]))
	}
	return orders, nil
}

func (r *GormOrderRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&OrderItemModel{}).Error; err != nil {
			return errors.Wrap(err, "failed to delete order items")
		}
		res := tx.Where("id = ?", id).Delete(&OrderModel{})
		if res.Error != nil {
			return errors.Wrap(res.Error, "failed to delete order")
		}
		if res.RowsAffected == 0 {
			return &domain.NotFoundError{Resource: "order", ID: id}
		}
		return nil
	})
}

// UpdateStatus 是条件状态翻转: 只有当前状态仍为 from 时才生效。
// 并发流转中只有一个请求能命中行，落选者拿到 InvalidTransitionError，
// 它所在事务里的库存回补会随之回滚。
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, id string, from, to domain.Status) error {
	res := r.db.WithContext(ctx).Model(&OrderModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		Update("status", string(to))
	if res.Error != nil {
		return errors.Wrap(res.Error, "failed to update order status")
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&OrderModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return errors.Wrap(err, "failed to check order existence")
		}
		if count == 0 {
			return &domain.NotFoundError{Resource: "order", ID: id}
		}
		return &domain.InvalidTransitionError{From: from, To: to}
	}
	return nil
}

// isDuplicateEntry 识别 MySQL 的唯一键冲突 (error 1062)。
func isDuplicateEntry(err error) bool {
	var mysqlErr *gomysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
