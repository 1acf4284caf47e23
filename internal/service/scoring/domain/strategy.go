package domain

import (
	"time"

	"github.com/google/uuid"
)

// ScoringStrategy 是一条已配置的积分策略：
// 要么绑定一个内置算法（AlgorithmKind + 类型化配置），
// 要么绑定一个外部扩展（PluginID + 只有扩展自己理解的配置）。
// 全目录不变式：任意时刻最多只有一条策略 Active=true。
type ScoringStrategy struct {
	ID          string
	Name        string // 唯一
	Description string
	Active      bool

	AlgorithmKind ConfigKind // 内置算法标签；扩展策略为空
	PluginID      string     // 扩展标识；内置策略为空
	RawConfig     string     // 配置的序列化形式 (JSON)

	// ExtensionAvailable 是派生状态：最近一次尝试物化配置是否成功。
	// 不持久化，每次加载/解析时重算。
	ExtensionAvailable bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// 工厂函数: NewStrategy 创建一条未激活的策略。
func NewStrategy(name, description string) *ScoringStrategy {
	now := time.Now()
	return &ScoringStrategy{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// PluginBacked 判断该策略是否由外部扩展提供算法。
func (s *ScoringStrategy) PluginBacked() bool {
	return s.PluginID != ""
}

// Activate 激活策略。目录级不变式由 Service 在持锁状态下保证，
// 这里只负责自身状态流转。
func (s *ScoringStrategy) Activate() {
	s.Active = true
	s.UpdatedAt = time.Now()
}

// Deactivate 停用策略。
func (s *ScoringStrategy) Deactivate() {
	s.Active = false
	s.UpdatedAt = time.Now()
}
