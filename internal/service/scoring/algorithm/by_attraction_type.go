package algorithm

import (
	"context"

	"skypark/internal/service/scoring/domain"
)

// ByAttractionType 按设施类型查积分表计分。
// 表里没有该类型时，回退到设施自身的基础积分值，而不是零分。
type ByAttractionType struct {
	cfg *domain.AttractionTypeConfig
}

func NewByAttractionType(cfg *domain.StrategyConfig) (*ByAttractionType, error) {
	if cfg == nil || cfg.Kind != domain.KindByAttractionType || cfg.AttractionType == nil {
		return nil, domain.ErrConfigurationMismatch
	}
	return &ByAttractionType{cfg: cfg.AttractionType}, nil
}

func (a *ByAttractionType) Compute(_ context.Context, in domain.Input) (int, error) {
	if points, ok := a.cfg.Points[in.Attraction.Type]; ok {
		return points, nil
	}
	return in.Attraction.BasePoints, nil
}
