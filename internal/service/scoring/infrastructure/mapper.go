package infrastructure

import (
	"skypark/internal/service/scoring/domain"
)

// ToDomainStrategy 将数据库模型转换为领域模型。
// ExtensionAvailable 是派生状态，由服务层在加载后重算。
func ToDomainStrategy(model *StrategyModel) *domain.ScoringStrategy {
	if model == nil {
		return nil
	}
	return &domain.ScoringStrategy{
		ID:            model.StrategyID,
		Name:          model.Name,
		Description:   model.Description,
		Active:        model.Active,
		AlgorithmKind: domain.ConfigKind(model.AlgorithmKind),
		PluginID:      model.PluginID,
		RawConfig:     model.RawConfig,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

// FromDomainStrategy 将领域模型转换为数据库模型。
func FromDomainStrategy(dmn *domain.ScoringStrategy) *StrategyModel {
	if dmn == nil {
		return nil
	}
	return &StrategyModel{
		StrategyID:    dmn.ID,
		Name:          dmn.Name,
		Description:   dmn.Description,
		Active:        dmn.Active,
		AlgorithmKind: string(dmn.AlgorithmKind),
		PluginID:      dmn.PluginID,
		RawConfig:     dmn.RawConfig,
	}
}
