package application

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	park "skypark/domain"
	"skypark/internal/pkg/logger"
	"skypark/internal/service/admission"
	"skypark/internal/service/admission/domain"
	"skypark/internal/service/admission/domain/port"
)

// AdmissionService 是准入状态机的入口：
// 入场请求沿处理链 Requested → CredentialResolved → TicketResolved →
// EligibilityChecked → Admitted|Rejected 逐环推进；离场请求不经过计分。
type AdmissionService struct {
	chain       admission.Handler
	resolver    *admission.CredentialResolver
	attractions park.AttractionRepository
	visits      park.VisitRepository
	occupancy   port.OccupancyController
	notifier    port.AdmissionNotifier
	clock       park.TimeProvider
	tracer      trace.Tracer
}

// Deps 聚合装配准入服务所需的全部协作方。
type Deps struct {
	Attractions park.AttractionRepository
	Visitors    park.VisitorRepository
	Tickets     park.TicketRepository
	Events      park.EventRepository
	Visits      park.VisitRepository
	Occupancy   port.OccupancyController
	Scorer      port.PointsAwarder
	Notifier    port.AdmissionNotifier
	Clock       park.TimeProvider
	Tracer      trace.Tracer
}

// NewAdmissionService 装配完整的入场处理链。
func NewAdmissionService(d Deps) *AdmissionService {
	resolver := admission.NewCredentialResolver(d.Visitors, d.Tickets)

	head := admission.NewAttractionCheckHandler(d.Attractions, d.Occupancy)
	head.
		SetNext(admission.NewCredentialHandler(resolver)).
		SetNext(admission.NewTicketHandler(d.Tickets, d.Events)).
		SetNext(admission.NewAgeCheckHandler()).
		SetNext(admission.NewTicketDateHandler()).
		SetNext(admission.NewActiveVisitHandler(d.Visits)).
		SetNext(admission.NewAdmitHandler(d.Visits, d.Occupancy, d.Scorer, d.Notifier))

	return &AdmissionService{
		chain:       head,
		resolver:    resolver,
		attractions: d.Attractions,
		visits:      d.Visits,
		occupancy:   d.Occupancy,
		notifier:    d.Notifier,
		clock:       d.Clock,
		tracer:      d.Tracer,
	}
}

// Admit 处理一次入场请求，成功时返回新建的游玩记录。
func (s *AdmissionService) Admit(ctx context.Context, attractionName string, kind admission.CredentialKind, value string) (*park.Visit, error) {
	ctx, span := s.tracer.Start(ctx, "admission.Admit")
	defer span.End()
	span.SetAttributes(
		attribute.String("attraction", attractionName),
		attribute.String("credential.kind", string(kind)),
	)

	ec := &admission.EntryContext{
		Ctx:             ctx,
		AttractionName:  attractionName,
		CredentialKind:  kind,
		CredentialValue: value,
		Now:             s.clock.Now(),
	}

	if err := s.chain.Handle(ec); err != nil {
		span.RecordError(err)
		admission.RecordAdmission(attractionName, "rejected")
		logger.Ctx(ctx).Info().Err(err).Str("attraction", attractionName).Msg("admission rejected")
		return nil, err
	}

	admission.RecordAdmission(attractionName, "admitted")
	logger.Ctx(ctx).Info().
		Str("attraction", attractionName).
		Str("visitor", ec.Visitor.ID).
		Int("points", ec.Visit.Points).
		Int64("occupancy", ec.Occupancy).
		Msg("visitor admitted")
	return ec.Visit, nil
}

// RegisterExit 处理一次离场请求：解析凭证（不做门票/活动校验）、
// 找到本设施的活跃游玩记录、写入离场时间并释放名额。
func (s *AdmissionService) RegisterExit(ctx context.Context, attractionName string, kind admission.CredentialKind, value string) (*park.Visit, error) {
	ctx, span := s.tracer.Start(ctx, "admission.RegisterExit")
	defer span.End()
	span.SetAttributes(attribute.String("attraction", attractionName))

	attraction, err := s.attractions.FindByName(ctx, attractionName)
	if err != nil {
		return nil, err
	}
	if attraction == nil {
		return nil, domain.ErrAttractionNotFound
	}

	visitor, _, err := s.resolver.Resolve(ctx, kind, value)
	if err != nil {
		admission.RecordExit(attractionName, "rejected")
		return nil, err
	}

	visit, err := s.visits.FindActive(ctx, visitor.ID, attraction.Name)
	if err != nil {
		return nil, err
	}
	if visit == nil {
		admission.RecordExit(attractionName, "rejected")
		return nil, domain.ErrNoActiveVisit
	}

	if err := visit.Close(s.clock.Now()); err != nil {
		return nil, errors.Wrap(err, "failed to close visit")
	}
	if err := s.visits.Update(ctx, visit); err != nil {
		return nil, errors.Wrap(err, "failed to persist exit")
	}

	occupancy, err := s.occupancy.Leave(ctx, attraction.Name)
	if err != nil {
		// 名额释放失败不回滚离场：计数偏差由下一次对账修正
		logger.Ctx(ctx).Error().Err(err).Str("attraction", attraction.Name).Msg("failed to release seat on exit")
	} else {
		admission.SetOccupancy(attraction.Name, occupancy)
	}

	admission.RecordExit(attractionName, "completed")
	if s.notifier != nil {
		if err := s.notifier.ExitRecorded(ctx, visit, occupancy); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Msg("failed to publish exit event")
		}
	}
	return visit, nil
}
