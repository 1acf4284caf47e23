package domain

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// ConfigKind 标识积分配置的变体，与内置算法一一对应。
type ConfigKind string

const (
	KindByAttractionType ConfigKind = "BY_ATTRACTION_TYPE" // 按设施类型查表计分
	KindCombo            ConfigKind = "COMBO"              // 时间窗内连刷不同设施的连击加成
	KindByEvent          ConfigKind = "BY_EVENT"           // 活动时段内的积分倍数
)

// AttractionTypeConfig 是按设施类型计分的积分表。
type AttractionTypeConfig struct {
	Points map[string]int `json:"points"` // 设施类型 → 积分
}

// ComboConfig 是连击加成的参数。
type ComboConfig struct {
	WindowMinutes      int `json:"window_minutes"`       // 回看窗口，边界含端点
	Bonus              int `json:"bonus"`                // 达成连击的加成分
	MinAttractionCount int `json:"min_attraction_count"` // 达成连击所需的不同设施数（含本次）
}

// EventConfig 是按活动加成的参数。
type EventConfig struct {
	Multiplier int    `json:"multiplier"` // 积分倍数，仅乘不加
	EventName  string `json:"event_name"`
}

// StrategyConfig 是内置算法的带标签配置变体。
// kind 决定哪个分支有效；序列化形式是携带 kind 字段的 JSON。
// 扩展策略的配置是只有其所属扩展才理解的不透明 JSON，不经过这里。
type StrategyConfig struct {
	Kind           ConfigKind            `json:"kind"`
	AttractionType *AttractionTypeConfig `json:"by_attraction_type,omitempty"`
	Combo          *ComboConfig          `json:"combo,omitempty"`
	Event          *EventConfig          `json:"by_event,omitempty"`
}

// Validate 检查 kind 与所填分支是否一致。
func (c *StrategyConfig) Validate() error {
	switch c.Kind {
	case KindByAttractionType:
		if c.AttractionType == nil || c.Combo != nil || c.Event != nil {
			return ErrConfigurationMismatch
		}
	case KindCombo:
		if c.Combo == nil || c.AttractionType != nil || c.Event != nil {
			return ErrConfigurationMismatch
		}
		if c.Combo.WindowMinutes <= 0 || c.Combo.MinAttractionCount <= 0 {
			return errors.Wrap(ErrConfigurationMismatch, "combo window and min count must be positive")
		}
	case KindByEvent:
		if c.Event == nil || c.AttractionType != nil || c.Combo != nil {
			return ErrConfigurationMismatch
		}
		if c.Event.EventName == "" || c.Event.Multiplier <= 0 {
			return errors.Wrap(ErrConfigurationMismatch, "event name and positive multiplier are required")
		}
	default:
		return ErrUnsupportedConfigType
	}
	return nil
}

// Marshal 生成配置的序列化形式。
func (c *StrategyConfig) Marshal() (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal strategy config")
	}
	return string(data), nil
}

// UnmarshalStrategyConfig 从序列化形式恢复带标签的配置。
func UnmarshalStrategyConfig(raw string) (*StrategyConfig, error) {
	var cfg StrategyConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, errors.Wrap(ErrConfigurationMismatch, err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultConfig 返回某个内置算法的缺省配置。
func DefaultConfig(kind ConfigKind) (*StrategyConfig, error) {
	switch kind {
	case KindByAttractionType:
		return &StrategyConfig{Kind: kind, AttractionType: &AttractionTypeConfig{Points: map[string]int{}}}, nil
	case KindCombo:
		return &StrategyConfig{Kind: kind, Combo: &ComboConfig{WindowMinutes: 30, Bonus: 50, MinAttractionCount: 3}}, nil
	case KindByEvent:
		return nil, errors.Wrap(ErrConfigurationMismatch, "BY_EVENT has no default: event name is required")
	default:
		return nil, ErrUnsupportedConfigType
	}
}

// ConfigPatch 是部分更新用的补丁，逐字段合并进已有配置。
// nil 字段表示保持原值；积分表按键合并。
type ConfigPatch struct {
	Points             map[string]int `json:"points,omitempty"`
	WindowMinutes      *int           `json:"window_minutes,omitempty"`
	Bonus              *int           `json:"bonus,omitempty"`
	MinAttractionCount *int           `json:"min_attraction_count,omitempty"`
	Multiplier         *int           `json:"multiplier,omitempty"`
	EventName          *string        `json:"event_name,omitempty"`
}

// Merge 将补丁合并进配置，只允许触碰与 kind 匹配的字段。
func (c *StrategyConfig) Merge(patch *ConfigPatch) error {
	if patch == nil {
		return nil
	}
	switch c.Kind {
	case KindByAttractionType:
		if patch.WindowMinutes != nil || patch.Bonus != nil || patch.MinAttractionCount != nil ||
			patch.Multiplier != nil || patch.EventName != nil {
			return ErrConfigurationMismatch
		}
		for t, p := range patch.Points {
			c.AttractionType.Points[t] = p
		}
	case KindCombo:
		if patch.Points != nil || patch.Multiplier != nil || patch.EventName != nil {
			return ErrConfigurationMismatch
		}
		if patch.WindowMinutes != nil {
			c.Combo.WindowMinutes = *patch.WindowMinutes
		}
		if patch.Bonus != nil {
			c.Combo.Bonus = *patch.Bonus
		}
		if patch.MinAttractionCount != nil {
			c.Combo.MinAttractionCount = *patch.MinAttractionCount
		}
	case KindByEvent:
		if patch.Points != nil || patch.WindowMinutes != nil || patch.Bonus != nil || patch.MinAttractionCount != nil {
			return ErrConfigurationMismatch
		}
		if patch.Multiplier != nil {
			c.Event.Multiplier = *patch.Multiplier
		}
		if patch.EventName != nil {
			c.Event.EventName = *patch.EventName
		}
	default:
		return ErrUnsupportedConfigType
	}
	return c.Validate()
}
