package domain

// Attraction 是游乐设施聚合的根实体。
// 实时在园人数(occupancy)不放在这里：它是一个高频变更的计数器，
// 由准入服务通过 OccupancyController 端口原子维护（见 admission/port）。
type Attraction struct {
	Name         string // 名称即标识
	Type         string // 设施类型, e.g., "ROLLER_COASTER", "WATER_RIDE"
	Capacity     int    // 容量上限
	MinAge       int    // 最低年龄限制
	BasePoints   int    // 基础积分值，积分策略未命中时的回退值
	OutOfService bool   // 是否存在未关闭的故障工单
}

// Admittable 检查设施本身是否处于可接待状态（不含容量判断）。
func (a *Attraction) Admittable() bool {
	return !a.OutOfService
}
