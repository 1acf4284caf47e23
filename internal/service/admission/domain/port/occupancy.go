package port

import "context"

// OccupancyController 维护每个设施的实时在园人数。
// Enter 必须是原子的“检查并自增”：只有 occupancy < capacity 时才加一，
// 否则返回 admission 领域的 ErrCapacityExceeded——这是容量不变式的最终防线，
// 处理链前部的容量预检只用来提前拒绝。
type OccupancyController interface {
	// Enter 原子地尝试占用一个名额，返回自增后的在园人数。
	Enter(ctx context.Context, attraction string, capacity int) (int64, error)
	// Leave 释放一个名额，人数下限为 0，返回自减后的在园人数。
	Leave(ctx context.Context, attraction string) (int64, error)
	// Current 返回当前在园人数。
	Current(ctx context.Context, attraction string) (int64, error)
}
