package algorithm

import (
	park "skypark/domain"
	"skypark/internal/service/scoring/domain"
)

// Kinds 列出全部内置算法标签。
func Kinds() []domain.ConfigKind {
	return []domain.ConfigKind{domain.KindByAttractionType, domain.KindCombo, domain.KindByEvent}
}

// Factory 按配置标签分发内置算法。
type Factory struct {
	events park.EventRepository
}

func NewFactory(events park.EventRepository) *Factory {
	return &Factory{events: events}
}

// New 根据带标签配置实例化内置算法；标签未知时返回 ErrUnsupportedConfigType。
func (f *Factory) New(cfg *domain.StrategyConfig) (domain.Algorithm, error) {
	if cfg == nil {
		return nil, domain.ErrConfigurationMismatch
	}
	switch cfg.Kind {
	case domain.KindByAttractionType:
		return NewByAttractionType(cfg)
	case domain.KindCombo:
		return NewCombo(cfg)
	case domain.KindByEvent:
		return NewByEvent(cfg, f.events)
	default:
		return nil, domain.ErrUnsupportedConfigType
	}
}
