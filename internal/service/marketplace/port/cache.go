// internal/service/marketplace/port/cache.go
package port

import (
	"context"

	"mandi/internal/service/marketplace/domain"
)

// ProductCache 是商品读路径的缓存端口。
// 库存是热点字段且由数据库保证一致性，所以缓存只服务读路径，
// 任何触碰商品的写操作之后都必须 Invalidate。
type ProductCache interface {
	// GetOrLoad 读取缓存，未命中时调用 loader 回源并回填。
	GetOrLoad(ctx context.Context, id string, loader func(ctx context.Context) (*domain.Product, error)) (*domain.Product, error)
	Invalidate(ctx context.Context, id string) error
}
