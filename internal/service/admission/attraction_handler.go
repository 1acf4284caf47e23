package admission

import (
	park "skypark/domain"
	"skypark/internal/service/admission/domain"
	"skypark/internal/service/admission/domain/port"
)

// AttractionCheckHandler 是链上第一环：设施必须存在、在役，
// 且当前在园人数未达上限。这里的容量判断只是提前拒绝，
// 真正的原子判定在链尾占用名额时进行。
type AttractionCheckHandler struct {
	NextHandler
	attractions park.AttractionRepository
	occupancy   port.OccupancyController
}

func NewAttractionCheckHandler(attractions park.AttractionRepository, occupancy port.OccupancyController) *AttractionCheckHandler {
	return &AttractionCheckHandler{attractions: attractions, occupancy: occupancy}
}

func (h *AttractionCheckHandler) Handle(ec *EntryContext) error {
	attraction, err := h.attractions.FindByName(ec.Ctx, ec.AttractionName)
	if err != nil {
		return err
	}
	if attraction == nil {
		return domain.ErrAttractionNotFound
	}
	if !attraction.Admittable() {
		return domain.ErrAttractionOutOfService
	}

	current, err := h.occupancy.Current(ec.Ctx, attraction.Name)
	if err != nil {
		return err
	}
	if current >= int64(attraction.Capacity) {
		return domain.ErrCapacityExceeded
	}

	ec.Attraction = attraction
	return h.executeNext(ec)
}
