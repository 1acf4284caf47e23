package admission

import (
	"skypark/internal/service/admission/domain"
)

// AgeCheckHandler 校验游客周岁年龄是否满足设施的最低年龄。
// 年龄按整年计算，当年生日未到则减一岁：生日恰好是今天的游客可入场。
type AgeCheckHandler struct {
	NextHandler
}

func NewAgeCheckHandler() *AgeCheckHandler {
	return &AgeCheckHandler{}
}

func (h *AgeCheckHandler) Handle(ec *EntryContext) error {
	if ec.Visitor.AgeAt(ec.Now) < ec.Attraction.MinAge {
		return domain.ErrAgeLimitNotMet
	}
	return h.executeNext(ec)
}

// TicketDateHandler 校验票面日期：
// 早于今天的票已作废（TicketExpired），晚于今天的票今天不可用
// （TicketNotValidForToday）——两种情况用不同的错误区分。
type TicketDateHandler struct {
	NextHandler
}

func NewTicketDateHandler() *TicketDateHandler {
	return &TicketDateHandler{}
}

func (h *TicketDateHandler) Handle(ec *EntryContext) error {
	if ec.Ticket.Expired(ec.Now) {
		return domain.ErrTicketExpired
	}
	if !ec.Ticket.ValidOn(ec.Now) {
		return domain.ErrTicketNotValidForToday
	}
	return h.executeNext(ec)
}
