package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrategyConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     StrategyConfig
		wantErr error
	}{
		{
			"合法的积分表配置",
			StrategyConfig{Kind: KindByAttractionType, AttractionType: &AttractionTypeConfig{Points: map[string]int{}}},
			nil,
		},
		{
			"kind 与分支不符",
			StrategyConfig{Kind: KindByAttractionType, Combo: &ComboConfig{WindowMinutes: 10, Bonus: 1, MinAttractionCount: 2}},
			ErrConfigurationMismatch,
		},
		{
			"多个分支同时填写",
			StrategyConfig{
				Kind:           KindCombo,
				AttractionType: &AttractionTypeConfig{},
				Combo:          &ComboConfig{WindowMinutes: 10, Bonus: 1, MinAttractionCount: 2},
			},
			ErrConfigurationMismatch,
		},
		{
			"连击窗口必须为正",
			StrategyConfig{Kind: KindCombo, Combo: &ComboConfig{WindowMinutes: 0, Bonus: 1, MinAttractionCount: 2}},
			ErrConfigurationMismatch,
		},
		{
			"活动配置缺活动名",
			StrategyConfig{Kind: KindByEvent, Event: &EventConfig{Multiplier: 2}},
			ErrConfigurationMismatch,
		},
		{
			"未知标签",
			StrategyConfig{Kind: "MYSTERY"},
			ErrUnsupportedConfigType,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestConfigRoundTrip(t *testing.T) {
	cfg := &StrategyConfig{
		Kind:  KindCombo,
		Combo: &ComboConfig{WindowMinutes: 20, Bonus: 30, MinAttractionCount: 2},
	}
	raw, err := cfg.Marshal()
	require.NoError(t, err)

	got, err := UnmarshalStrategyConfig(raw)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)

	_, err = UnmarshalStrategyConfig("{not json")
	assert.ErrorIs(t, err, ErrConfigurationMismatch)
}

func TestDefaultConfig(t *testing.T) {
	cfg, err := DefaultConfig(KindCombo)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	cfg, err = DefaultConfig(KindByAttractionType)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	// 活动加成没有合理的缺省：活动名必填
	_, err = DefaultConfig(KindByEvent)
	assert.ErrorIs(t, err, ErrConfigurationMismatch)

	_, err = DefaultConfig("MYSTERY")
	assert.ErrorIs(t, err, ErrUnsupportedConfigType)
}

func TestConfigMerge(t *testing.T) {
	t.Run("连击配置逐字段合并", func(t *testing.T) {
		cfg := &StrategyConfig{Kind: KindCombo, Combo: &ComboConfig{WindowMinutes: 30, Bonus: 50, MinAttractionCount: 3}}
		bonus := 80
		require.NoError(t, cfg.Merge(&ConfigPatch{Bonus: &bonus}))
		assert.Equal(t, 80, cfg.Combo.Bonus)
		assert.Equal(t, 30, cfg.Combo.WindowMinutes, "未补丁字段保持原值")
	})

	t.Run("积分表按键合并", func(t *testing.T) {
		cfg := &StrategyConfig{
			Kind:           KindByAttractionType,
			AttractionType: &AttractionTypeConfig{Points: map[string]int{"WATER_RIDE": 80}},
		}
		require.NoError(t, cfg.Merge(&ConfigPatch{Points: map[string]int{"ROLLER_COASTER": 150}}))
		assert.Equal(t, map[string]int{"WATER_RIDE": 80, "ROLLER_COASTER": 150}, cfg.AttractionType.Points)
	})

	t.Run("触碰不属于该 kind 的字段被拒绝", func(t *testing.T) {
		cfg := &StrategyConfig{Kind: KindCombo, Combo: &ComboConfig{WindowMinutes: 30, Bonus: 50, MinAttractionCount: 3}}
		mult := 2
		assert.ErrorIs(t, cfg.Merge(&ConfigPatch{Multiplier: &mult}), ErrConfigurationMismatch)
	})

	t.Run("合并结果仍需通过校验", func(t *testing.T) {
		cfg := &StrategyConfig{Kind: KindCombo, Combo: &ComboConfig{WindowMinutes: 30, Bonus: 50, MinAttractionCount: 3}}
		zero := 0
		assert.ErrorIs(t, cfg.Merge(&ConfigPatch{WindowMinutes: &zero}), ErrConfigurationMismatch)
	})
}
