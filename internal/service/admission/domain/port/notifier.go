package port

import (
	"context"

	park "skypark/domain"
)

// AdmissionNotifier 是入场/离场事件的外发出口（Kafka、实时推送等）。
// 通知是尽力而为的：失败只记录，不影响准入结果。
type AdmissionNotifier interface {
	AdmissionRecorded(ctx context.Context, visit *park.Visit, occupancy int64) error
	ExitRecorded(ctx context.Context, visit *park.Visit, occupancy int64) error
}
