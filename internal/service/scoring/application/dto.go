package application

import "skypark/internal/service/scoring/domain"

// CreateStrategyRequest 描述一条新策略。
// 内置策略：AlgorithmKind 与 Config 二选一（只给标签则用缺省配置，
// 只给配置则从配置的 kind 推断算法）。
// 扩展策略：给 PluginID，RawConfig 为该扩展的配置 JSON（空则用扩展缺省值）。
// 同时指定内置算法和扩展标识会被拒绝。
type CreateStrategyRequest struct {
	Name          string                 `json:"name"`
	Description   string                 `json:"description"`
	AlgorithmKind domain.ConfigKind      `json:"algorithm_kind,omitempty"`
	Config        *domain.StrategyConfig `json:"config,omitempty"`
	PluginID      string                 `json:"plugin_id,omitempty"`
	RawConfig     string                 `json:"raw_config,omitempty"`
}

// UpdateStrategyRequest 是部分更新。扩展策略只允许改描述和配置 JSON；
// 内置策略按字段合并 Patch 进已有配置。
type UpdateStrategyRequest struct {
	Description *string             `json:"description,omitempty"`
	RawConfig   *string             `json:"raw_config,omitempty"`
	Patch       *domain.ConfigPatch `json:"patch,omitempty"`
}

// StrategyView 是对外展示的策略形态。
type StrategyView struct {
	Name               string `json:"name"`
	Description        string `json:"description"`
	Active             bool   `json:"active"`
	AlgorithmKind      string `json:"algorithm_kind,omitempty"`
	PluginID           string `json:"plugin_id,omitempty"`
	RawConfig          string `json:"raw_config"`
	ExtensionAvailable bool   `json:"extension_available"`
}

// AvailableTypes 列出可配置的算法来源。
type AvailableTypes struct {
	Builtin    []string        `json:"builtin"`
	Extensions []ExtensionInfo `json:"extensions"`
}

type ExtensionInfo struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Schema      map[string]string `json:"schema,omitempty"`
}

// ScoreResult 是一次积分计算的结果。
type ScoreResult struct {
	Points       int
	StrategyName string
}
