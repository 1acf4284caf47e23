package domain

import "errors"

// 积分侧的领域错误。除标注外都只影响单次操作，不需要进程级恢复。
var (
	// --- 配置 ---
	ErrConfigurationMismatch = errors.New("configuration does not match the algorithm")
	ErrUnsupportedConfigType = errors.New("unsupported configuration type")
	ErrExtensionConfigInvalid = errors.New("extension rejected the configuration")

	// --- 扩展生命周期 ---
	ErrExtensionNotFound    = errors.New("extension not found")
	ErrExtensionUnavailable = errors.New("extension is unavailable")

	// --- 策略生命周期 ---
	ErrNoActiveStrategy        = errors.New("no scoring strategy is active")
	ErrAnotherStrategyActive   = errors.New("another strategy is already active")
	ErrCannotDeleteActive      = errors.New("cannot delete the active strategy")
	ErrStrategyNotFound        = errors.New("strategy not found")
	ErrStrategyNameTaken       = errors.New("strategy name is already taken")
	ErrInvalidStrategyDefinition = errors.New("invalid strategy definition")
)
