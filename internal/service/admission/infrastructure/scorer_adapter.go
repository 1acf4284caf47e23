package infrastructure

import (
	"context"

	"github.com/pkg/errors"

	park "skypark/domain"
	"skypark/internal/service/admission/domain/port"
	scoring "skypark/internal/service/scoring/application"
	scoringdomain "skypark/internal/service/scoring/domain"
)

// ScoringServiceAdapter 把策略服务接到准入侧的 PointsAwarder 端口上。
// “当前没有激活策略”对准入来说不是错误，翻译成 (nil, nil)；
// 其余计分失败原样上抛，中断本次入场。
type ScoringServiceAdapter struct {
	strategies *scoring.StrategyService
}

func NewScoringServiceAdapter(strategies *scoring.StrategyService) *ScoringServiceAdapter {
	return &ScoringServiceAdapter{strategies: strategies}
}

func (a *ScoringServiceAdapter) Score(ctx context.Context, visit *park.Visit, attraction *park.Attraction, history []*park.Visit) (*port.ScoreResult, error) {
	result, err := a.strategies.ResolveAndScore(ctx, visit, attraction, history)
	if err != nil {
		if errors.Is(err, scoringdomain.ErrNoActiveStrategy) {
			return nil, nil
		}
		return nil, err
	}
	return &port.ScoreResult{
		Points:       result.Points,
		StrategyName: result.StrategyName,
	}, nil
}
