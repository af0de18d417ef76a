// internal/service/marketplace/infrastructure/adapter/catalog_redis_adapter.go
package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"mandi/internal/pkg/logger"
	pkgredis "mandi/internal/pkg/redis"
	"mandi/internal/service/marketplace/domain"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const productCacheTTL = 5 * time.Minute

// CatalogRedisAdapter 是 port.ProductCache 的 Redis 实现。
// singleflight 把同一商品的并发未命中合并成一次回源，
// 防止热点商品在缓存失效瞬间击穿数据库。
type CatalogRedisAdapter struct {
	redisClient *pkgredis.Client
	group       singleflight.Group
}

// NewCatalogRedisAdapter 创建一个新的商品缓存适配器实例。
func NewCatalogRedisAdapter(redisClient *pkgredis.Client) *CatalogRedisAdapter {
	return &CatalogRedisAdapter{redisClient: redisClient}
}

func (a *CatalogRedisAdapter) GetOrLoad(ctx context.Context, id string, loader func(ctx context.Context) (*domain.Product, error)) (*domain.Product, error) {
	key := cacheKey(id)

	data, err := a.redisClient.GetClient().Get(ctx, key).Bytes()
	if err == nil {
		var product domain.Product
		if err := json.Unmarshal(data, &product); err == nil {
			return &product, nil
		}
		// 缓存内容损坏，当作未命中回源
		logger.Ctx(ctx).Warn().Str("product_id", id).Msg("corrupt product cache entry, reloading")
	} else if err != redis.Nil {
		// Redis 故障时降级为直接回源，读路径不应因缓存不可用而失败
		logger.Ctx(ctx).Error().Err(err).Str("product_id", id).Msg("product cache read failed, falling back to store")
		return loader(ctx)
	}

	result, err, _ := a.group.Do(id, func() (interface{}, error) {
		product, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(product); err == nil {
			if err := a.redisClient.GetClient().Set(ctx, key, data, productCacheTTL).Err(); err != nil {
				logger.Ctx(ctx).Error().Err(err).Str("product_id", id).Msg("failed to fill product cache")
			}
		}
		return product, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.Product), nil
}

func (a *CatalogRedisAdapter) Invalidate(ctx context.Context, id string) error {
	return a.redisClient.GetClient().Del(ctx, cacheKey(id)).Err()
}

func cacheKey(id string) string {
	return fmt.Sprintf("catalog:product:{%s}", id)
}
