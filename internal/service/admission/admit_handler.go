package admission

import (
	"time"

	park "skypark/domain"
	"skypark/internal/pkg/logger"
	"skypark/internal/service/admission/domain/port"
)

// AdmitHandler 是链尾：全部校验通过后计分、原子占用名额并落库。
//
// 顺序是刻意的：先计分（纯计算，失败无需补偿），再占名额，再写游玩记录；
// 写库失败时把已占的名额退回去——这是链上唯一需要补偿的步骤。
type AdmitHandler struct {
	NextHandler
	visits    park.VisitRepository
	occupancy port.OccupancyController
	scorer    port.PointsAwarder
	notifier  port.AdmissionNotifier
}

func NewAdmitHandler(
	visits park.VisitRepository,
	occupancy port.OccupancyController,
	scorer port.PointsAwarder,
	notifier port.AdmissionNotifier,
) *AdmitHandler {
	return &AdmitHandler{visits: visits, occupancy: occupancy, scorer: scorer, notifier: notifier}
}

func (h *AdmitHandler) Handle(ec *EntryContext) error {
	visit := park.NewVisit(ec.Visitor.ID, ec.Attraction.Name, ec.Now)

	// 1. 计分：用游客今天到目前为止的游玩记录作为历史
	history, err := h.visits.ListByVisitorSince(ec.Ctx, ec.Visitor.ID, startOfDay(ec.Now))
	if err != nil {
		return err
	}
	scoreStart := time.Now()
	result, err := h.scorer.Score(ec.Ctx, visit, ec.Attraction, history)
	scoringDuration.Observe(time.Since(scoreStart).Seconds())
	if err != nil {
		return err
	}
	if result != nil {
		visit.AwardPoints(result.Points, result.StrategyName)
	}

	// 2. 原子占用名额：容量不变式的最终判定点
	occupancy, err := h.occupancy.Enter(ec.Ctx, ec.Attraction.Name, ec.Attraction.Capacity)
	if err != nil {
		return err
	}

	// 3. 落库；失败则退还名额
	if err := h.visits.Save(ec.Ctx, visit); err != nil {
		if _, cerr := h.occupancy.Leave(ec.Ctx, ec.Attraction.Name); cerr != nil {
			logger.Ctx(ec.Ctx).Error().Err(cerr).Str("attraction", ec.Attraction.Name).
				Msg("failed to release seat after save failure")
		}
		return err
	}

	ec.Visit = visit
	ec.Occupancy = occupancy
	occupancyGauge.WithLabelValues(ec.Attraction.Name).Set(float64(occupancy))

	// 4. 尽力而为的事件外发
	if h.notifier != nil {
		if err := h.notifier.AdmissionRecorded(ec.Ctx, visit, occupancy); err != nil {
			logger.Ctx(ec.Ctx).Warn().Err(err).Msg("failed to publish admission event")
		}
	}
	return h.executeNext(ec)
}
