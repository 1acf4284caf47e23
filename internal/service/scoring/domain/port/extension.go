package port

import (
	"skypark/internal/service/scoring/domain"
)

// Extension 是外部扩展模块向宿主暴露的全部能力：
// 自描述（标识/名称/说明/配置模式）、配置的(反)序列化与校验、算法实例工厂。
// 扩展通过描述文件显式登记这些能力，宿主不做任何类型扫描。
type Extension interface {
	ID() string
	Name() string
	Description() string
	Schema() map[string]string
	DefaultConfig() map[string]interface{}
	// ParseConfig 反序列化配置；raw 为空时返回缺省配置。
	ParseConfig(raw string) (map[string]interface{}, error)
	ValidateConfig(cfg map[string]interface{}) error
	// Algorithm 用给定配置实例化一个算法。
	Algorithm(cfg map[string]interface{}) domain.Algorithm
}

// ExtensionRegistry 是策略服务看到的扩展注册表。
// 缺席返回 (nil, false) 而不是错误。
type ExtensionRegistry interface {
	Get(id string) (Extension, bool)
	All() []Extension
}
