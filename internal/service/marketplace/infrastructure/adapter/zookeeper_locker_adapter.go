// internal/service/marketplace/infrastructure/adapter/zookeeper_locker_adapter.go
package adapter

import (
	"context"
	"time"

	"mandi/internal/zookeeper"
)

const lockTimeout = 30 * time.Second

// ZookeeperLockerAdapter 是 port.ResourceLocker 的 ZooKeeper 实现。
// 多实例部署时，它保证同一订单的状态流转在全集群内串行。
type ZookeeperLockerAdapter struct {
	conn *zookeeper.Conn
}

// NewZookeeperLockerAdapter 创建一个新的分布式锁适配器实例。
func NewZookeeperLockerAdapter(conn *zookeeper.Conn) *ZookeeperLockerAdapter {
	return &ZookeeperLockerAdapter{conn: conn}
}

func (a *ZookeeperLockerAdapter) Lock(ctx context.Context, key string) (func() error, error) {
	lock, err := zookeeper.NewDistributedLock(a.conn, key, lockTimeout)
	if err != nil {
		return nil, err
	}
	if err := lock.Lock(); err != nil {
		return nil, err
	}
	return lock.Unlock, nil
}
