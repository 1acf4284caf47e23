package domain

import "time"

// TimeProvider 是“当前时间”的来源。
// 园区支持模拟时钟（演示/测试场景下快进到活动时段），
// 所以核心逻辑一律通过该接口取时间，不直接调用 time.Now。
type TimeProvider interface {
	Now() time.Time
}

// SystemClock 是 TimeProvider 的真实时钟实现。
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
