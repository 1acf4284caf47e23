package infrastructure

import (
	"context"

	park "skypark/domain"
	"skypark/internal/pkg/logger"
	"skypark/internal/service/admission/domain/port"
)

// CompositeNotifier 把一次通知扇出给多个出口（Kafka、WebSocket 推送）。
// 单个出口失败只记录，不影响其他出口，也不向调用方报错。
type CompositeNotifier struct {
	targets []port.AdmissionNotifier
}

func NewCompositeNotifier(targets ...port.AdmissionNotifier) *CompositeNotifier {
	return &CompositeNotifier{targets: targets}
}

func (n *CompositeNotifier) AdmissionRecorded(ctx context.Context, visit *park.Visit, occupancy int64) error {
	for _, t := range n.targets {
		if err := t.AdmissionRecorded(ctx, visit, occupancy); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Msg("admission notification target failed")
		}
	}
	return nil
}

func (n *CompositeNotifier) ExitRecorded(ctx context.Context, visit *park.Visit, occupancy int64) error {
	for _, t := range n.targets {
		if err := t.ExitRecorded(ctx, visit, occupancy); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Msg("exit notification target failed")
		}
	}
	return nil
}
