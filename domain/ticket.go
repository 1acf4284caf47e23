package domain

import "time"

// TicketKind 定义了门票的种类。
type TicketKind string

const (
	TicketKindGeneral TicketKind = "GENERAL" // 普通全园票
	TicketKindEvent   TicketKind = "EVENT"   // 活动场次票，绑定一个 Event
)

// Ticket 代表一张已售出的门票。
type Ticket struct {
	QRCode      string // 二维码内容，全局唯一 (uuid)
	Kind        TicketKind
	VisitDate   time.Time // 票面日期，只取日期部分有效
	VisitorID   string
	EventName   string // 仅活动票携带
	PurchasedAt time.Time
}

// ValidOn 判断票面日期与给定日期是否为同一天。
func (t *Ticket) ValidOn(day time.Time) bool {
	y1, m1, d1 := t.VisitDate.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Expired 判断票面日期是否早于给定日期（按天）。
func (t *Ticket) Expired(day time.Time) bool {
	y1, m1, d1 := t.VisitDate.Date()
	return time.Date(y1, m1, d1, 0, 0, 0, 0, t.VisitDate.Location()).
		Before(time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location()))
}
