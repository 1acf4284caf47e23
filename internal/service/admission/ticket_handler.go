package admission

import (
	park "skypark/domain"
	"skypark/internal/service/admission/domain"
)

// TicketHandler 确定本次入场使用哪张票并做活动票校验。
//
// 二维码入场：票已确定。活动票必须指向一个覆盖本设施的活动，
// 且当前时间落在活动的 4 小时有效窗口内。
//
// 手环入场：按购票顺序逐张尝试当天的票。普通票直接接受；
// 活动票只有独立通过同样的设施/时间窗校验才接受——只因设施不匹配
// 或窗口不符而落选的票被跳过（显式 continue，而不是当成致命错误），
// 直到找到可用的一张；一张都没有则 NoValidTicket。
type TicketHandler struct {
	NextHandler
	tickets park.TicketRepository
	events  park.EventRepository
}

func NewTicketHandler(tickets park.TicketRepository, events park.EventRepository) *TicketHandler {
	return &TicketHandler{tickets: tickets, events: events}
}

func (h *TicketHandler) Handle(ec *EntryContext) error {
	if ec.Ticket != nil {
		if ec.Ticket.Kind == park.TicketKindEvent {
			if err := h.checkEventTicket(ec, ec.Ticket); err != nil {
				return err
			}
		}
		return h.executeNext(ec)
	}

	// 手环入场：挑选当天的候选票
	candidates, err := h.tickets.ListByVisitorAndDate(ec.Ctx, ec.Visitor.ID, ec.Now)
	if err != nil {
		return err
	}
	for _, candidate := range candidates {
		if candidate.Kind == park.TicketKindGeneral {
			ec.Ticket = candidate
			break
		}
		err := h.checkEventTicket(ec, candidate)
		if err == nil {
			ec.Ticket = candidate
			break
		}
		// 设施不匹配或时间窗不符：换下一张候选票
		if err == domain.ErrWrongAttractionForTicket || err == domain.ErrTicketNotValidForTimeWindow {
			continue
		}
		return err
	}
	if ec.Ticket == nil {
		return domain.ErrNoValidTicket
	}
	return h.executeNext(ec)
}

// checkEventTicket 校验活动票的设施覆盖与时间窗口。
func (h *TicketHandler) checkEventTicket(ec *EntryContext, ticket *park.Ticket) error {
	event, err := h.events.FindByName(ec.Ctx, ticket.EventName)
	if err != nil {
		return err
	}
	if event == nil {
		return domain.ErrNoValidTicket
	}
	if !event.Includes(ec.Attraction.Name) {
		return domain.ErrWrongAttractionForTicket
	}
	if !event.InWindow(ec.Now) {
		return domain.ErrTicketNotValidForTimeWindow
	}
	return nil
}
