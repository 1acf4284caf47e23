package algorithm

import (
	"context"

	park "skypark/domain"
	"skypark/internal/pkg/logger"
	"skypark/internal/service/scoring/domain"
)

// ByEvent 在活动有效窗口（开场起 4 小时）内、且设施在活动名单上时，
// 按倍数放大基础分；其余情况原样返回基础分，倍数只乘不加。
type ByEvent struct {
	cfg    *domain.EventConfig
	events park.EventRepository
}

func NewByEvent(cfg *domain.StrategyConfig, events park.EventRepository) (*ByEvent, error) {
	if cfg == nil || cfg.Kind != domain.KindByEvent || cfg.Event == nil {
		return nil, domain.ErrConfigurationMismatch
	}
	return &ByEvent{cfg: cfg.Event, events: events}, nil
}

func (a *ByEvent) Compute(ctx context.Context, in domain.Input) (int, error) {
	base := in.Attraction.BasePoints

	event, err := a.events.FindByName(ctx, a.cfg.EventName)
	if err != nil {
		return 0, err
	}
	if event == nil {
		// 配置指向的活动不存在：不加成，照常计基础分
		logger.Ctx(ctx).Warn().Str("event", a.cfg.EventName).Msg("scoring event not found, awarding base points")
		return base, nil
	}

	if event.InWindow(in.Now) && event.Includes(in.Attraction.Name) {
		return base * a.cfg.Multiplier, nil
	}
	return base, nil
}
