package infrastructure

import (
	"gorm.io/gorm"
)

// StrategyModel 对应数据库中的 scoring_strategy 表。
type StrategyModel struct {
	gorm.Model
	StrategyID    string `gorm:"uniqueIndex;size:36"`
	Name          string `gorm:"uniqueIndex;size:128"`
	Description   string `gorm:"type:text"`
	Active        bool   `gorm:"index"`
	AlgorithmKind string `gorm:"size:32"`
	PluginID      string `gorm:"size:128;index"`
	RawConfig     string `gorm:"type:text"`
}

// TableName 指定 GORM 应该使用的表名
func (StrategyModel) TableName() string {
	return "scoring_strategy"
}
