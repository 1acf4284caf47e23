package domain

import (
	"context"
	"time"

	park "skypark/domain"
)

// Input 是一次积分计算的全部输入。
type Input struct {
	Visit      *park.Visit      // 本次（尚未持久化的）游玩记录
	Attraction *park.Attraction // 被游玩的设施
	History    []*park.Visit    // 该游客今天到目前为止的游玩记录
	Now        time.Time
}

// Algorithm 是积分算法的统一契约，内置算法与扩展算法都实现它。
// 算法在构造时完成配置校验，Compute 只做纯计算。
type Algorithm interface {
	Compute(ctx context.Context, in Input) (int, error)
}

// StrategyRepository 定义了策略目录的持久化接口。
type StrategyRepository interface {
	Save(ctx context.Context, strategy *ScoringStrategy) error
	Update(ctx context.Context, strategy *ScoringStrategy) error
	Delete(ctx context.Context, name string) error
	// FindByName 按名称查找；不存在时返回 (nil, nil)。
	FindByName(ctx context.Context, name string) (*ScoringStrategy, error)
	// FindActive 返回当前激活的策略；没有时返回 (nil, nil)。
	FindActive(ctx context.Context) (*ScoringStrategy, error)
	ListAll(ctx context.Context) ([]*ScoringStrategy, error)
}
