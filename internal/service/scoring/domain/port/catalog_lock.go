package port

import "sync"

// CatalogLock 串行化策略目录上影响“单一激活”不变式的操作。
// 单实例部署用进程内互斥锁；多实例部署用 ZooKeeper 分布式锁
// （见 infrastructure 的适配器）。
type CatalogLock interface {
	Lock() error
	Unlock() error
}

// LocalCatalogLock 是 CatalogLock 的进程内实现。
type LocalCatalogLock struct {
	mu sync.Mutex
}

func (l *LocalCatalogLock) Lock() error {
	l.mu.Lock()
	return nil
}

func (l *LocalCatalogLock) Unlock() error {
	l.mu.Unlock()
	return nil
}
