package port

import (
	"context"

	park "skypark/domain"
)

// ScoreResult 是一次积分计算的结果。
type ScoreResult struct {
	Points       int
	StrategyName string
}

// PointsAwarder 是准入服务看到的积分侧。
// 没有激活策略时返回 (nil, nil)——入场照常，只是不计分；
// 其他计分错误（扩展不可用、配置物化失败）会中断本次入场。
type PointsAwarder interface {
	Score(ctx context.Context, visit *park.Visit, attraction *park.Attraction, history []*park.Visit) (*ScoreResult, error)
}
