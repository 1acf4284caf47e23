package admission

import (
	park "skypark/domain"
	"skypark/internal/service/admission/domain"
)

// ActiveVisitHandler 校验游客的在园状态：
// 同一设施不能重复入场，且一名游客同一时刻只能身处一个设施。
type ActiveVisitHandler struct {
	NextHandler
	visits park.VisitRepository
}

func NewActiveVisitHandler(visits park.VisitRepository) *ActiveVisitHandler {
	return &ActiveVisitHandler{visits: visits}
}

func (h *ActiveVisitHandler) Handle(ec *EntryContext) error {
	here, err := h.visits.FindActive(ec.Ctx, ec.Visitor.ID, ec.Attraction.Name)
	if err != nil {
		return err
	}
	if here != nil {
		return domain.ErrVisitAlreadyActiveHere
	}

	elsewhere, err := h.visits.FindAnyActive(ec.Ctx, ec.Visitor.ID)
	if err != nil {
		return err
	}
	if elsewhere != nil {
		return domain.ErrVisitorAlreadyElsewhere
	}
	return h.executeNext(ec)
}
