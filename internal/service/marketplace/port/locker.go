// internal/service/marketplace/port/locker.go
package port

import "context"

// ResourceLocker 是跨实例互斥的出站端口。
// 生命周期管理器用它按订单 ID 串行化状态流转，
// 避免多实例部署下两个并发流转同时读到同一个旧状态。
type ResourceLocker interface {
	// Lock 获取 key 上的互斥锁，返回释放函数。
	Lock(ctx context.Context, key string) (unlock func() error, err error)
}
