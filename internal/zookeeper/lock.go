// internal/zookeeper/lock.go
package zookeeper

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-zookeeper/zk"
)

const (
	lockRoot = "/mandi/locks" // 所有分布式锁的根节点
)

// DistributedLock 定义了一个分布式锁对象。
// 基于临时顺序节点实现，会话断开时锁自动释放。
type DistributedLock struct {
	conn     *Conn
	path     string // 锁的路径，例如 /mandi/locks/order-123
	lockNode string // 成功获取锁后，自己创建的节点路径
	timeout  time.Duration
}

// NewDistributedLock 创建一个新的分布式锁实例。
func NewDistributedLock(conn *Conn, resourceID string, timeout time.Duration) (*DistributedLock, error) {
	if err := ensurePath(conn, lockRoot); err != nil {
		return nil, err
	}

	lockPath := lockRoot + "/" + resourceID
	if err := ensurePath(conn, lockPath); err != nil {
		return nil, err
	}

	return &DistributedLock{
		conn:    conn,
		path:    lockPath,
		timeout: timeout,
	}, nil
}

// ensurePath 确保锁路径上的节点存在。
// 在生产环境中，根节点通常由初始化脚本预先创建。
func ensurePath(conn *Conn, path string) error {
	acc := ""
	for _, part := range strings.Split(strings.TrimPrefix(path, "/"), "/") {
		acc += "/" + part
		exists, _, err := conn.Exists(acc)
		if err != nil {
			return fmt.Errorf("failed to check lock path %s: %w", acc, err)
		}
		if exists {
			continue
		}
		if _, err := conn.Create(acc, []byte(""), 0, zk.WorldACL(zk.PermAll)); err != nil && err != zk.ErrNodeExists {
			return fmt.Errorf("failed to create lock path %s: %w", acc, err)
		}
	}
	return nil
}

// Lock 尝试获取锁，如果获取不到则阻塞等待，直到超时。
func (l *DistributedLock) Lock() error {
	// 1. 在锁路径下创建一个临时顺序节点
	nodePath, err := l.conn.CreateProtectedEphemeralSequential(l.path+"/lock-", []byte(""), zk.WorldACL(zk.PermAll))
	if err != nil {
		return fmt.Errorf("failed to create sequential node: %w", err)
	}
	l.lockNode = nodePath

	for {
		// 2. 获取锁路径下的所有子节点
		children, _, err := l.conn.Children(l.path)
		if err != nil {
			return fmt.Errorf("failed to get children nodes: %w", err)
		}
		sort.Strings(children)

		// 3. 判断自己是否是最小的节点
		myNodeName := strings.TrimPrefix(l.lockNode, l.path+"/")
		if myNodeName == children[0] {
			return nil
		}

		// 4. 不是最小节点，监听前一个节点
		prevNodeIndex := -1
		for i, child := range children {
			if child == myNodeName {
				prevNodeIndex = i - 1
				break
			}
		}
		if prevNodeIndex < 0 {
			return errors.New("cannot find previous node, something is wrong")
		}
		prevNodePath := l.path + "/" + children[prevNodeIndex]

		// 使用 ExistsW 来设置一次性的 Watcher
		_, _, eventChan, err := l.conn.ExistsW(prevNodePath)
		if err != nil {
			// 如果在检查时前一个节点刚好被删除了，重试循环
			if err == zk.ErrNoNode {
				continue
			}
			return fmt.Errorf("failed to watch previous node: %w", err)
		}

		// 阻塞等待事件
		select {
		case event := <-eventChan:
			// 前一个节点被删除，重新进入循环去竞争锁
			if event.Type == zk.EventNodeDeleted {
				continue
			}
		case <-time.After(l.timeout):
			return errors.New("timeout waiting for lock")
		}
	}
}

// Unlock 释放锁
func (l *DistributedLock) Unlock() error {
	if l.lockNode == "" {
		return errors.New("no lock to unlock")
	}
	err := l.conn.Delete(l.lockNode, -1)
	if err != nil && err != zk.ErrNoNode {
		return fmt.Errorf("failed to delete lock node: %w", err)
	}
	l.lockNode = ""
	return nil
}
