package infrastructure

import (
	"skypark/internal/pkg/zookeeper"
)

const catalogLockResource = "strategy-catalog"

// ZkCatalogLock 是 CatalogLock 的 ZooKeeper 实现，
// 多实例部署时串行化跨实例的策略激活/停用。
type ZkCatalogLock struct {
	lock *zookeeper.DistributedLock
}

func NewZkCatalogLock(conn *zookeeper.Conn) (*ZkCatalogLock, error) {
	lock, err := zookeeper.NewDistributedLock(conn, catalogLockResource)
	if err != nil {
		return nil, err
	}
	return &ZkCatalogLock{lock: lock}, nil
}

func (l *ZkCatalogLock) Lock() error {
	return l.lock.Lock()
}

func (l *ZkCatalogLock) Unlock() error {
	return l.lock.Unlock()
}
