package algorithm

import (
	"context"
	"time"

	"skypark/internal/service/scoring/domain"
)

// Combo 在回看窗口内统计同一游客去过的其他设施数量，
// 达到门槛（含本次）则在基础分上叠加连击加成。
// 窗口边界含端点：Δt ≤ windowMinutes 的记录计入。
type Combo struct {
	cfg *domain.ComboConfig
}

func NewCombo(cfg *domain.StrategyConfig) (*Combo, error) {
	if cfg == nil || cfg.Kind != domain.KindCombo || cfg.Combo == nil {
		return nil, domain.ErrConfigurationMismatch
	}
	return &Combo{cfg: cfg.Combo}, nil
}

func (a *Combo) Compute(_ context.Context, in domain.Input) (int, error) {
	windowStart := in.Visit.EntryAt.Add(-time.Duration(a.cfg.WindowMinutes) * time.Minute)

	// 统计窗口内去过的不同设施（按名称去重，排除本次设施）
	seen := make(map[string]struct{})
	for _, prior := range in.History {
		if prior.AttractionName == in.Visit.AttractionName {
			continue
		}
		if prior.EntryAt.After(in.Visit.EntryAt) {
			continue
		}
		if prior.EntryAt.Before(windowStart) {
			continue
		}
		seen[prior.AttractionName] = struct{}{}
	}

	base := in.Attraction.BasePoints
	if len(seen)+1 >= a.cfg.MinAttractionCount {
		return base + a.cfg.Bonus, nil
	}
	return base, nil
}
