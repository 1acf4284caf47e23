package infrastructure

import (
	"strings"

	park "skypark/domain"
)

// 本文件负责领域实体与 GORM 模型之间的双向转换。

func ToDomainAttraction(m *AttractionModel) *park.Attraction {
	return &park.Attraction{
		Name:         m.Name,
		Type:         m.Type,
		Capacity:     m.Capacity,
		MinAge:       m.MinAge,
		BasePoints:   m.BasePoints,
		OutOfService: m.OutOfService,
	}
}

func FromDomainAttraction(a *park.Attraction) *AttractionModel {
	return &AttractionModel{
		Name:         a.Name,
		Type:         a.Type,
		Capacity:     a.Capacity,
		MinAge:       a.MinAge,
		BasePoints:   a.BasePoints,
		OutOfService: a.OutOfService,
	}
}

func ToDomainVisitor(m *VisitorModel) *park.Visitor {
	return &park.Visitor{
		ID:        m.VisitorID,
		Name:      m.Name,
		TagCode:   m.TagCode,
		BirthDate: m.BirthDate,
	}
}

func FromDomainVisitor(v *park.Visitor) *VisitorModel {
	return &VisitorModel{
		VisitorID: v.ID,
		Name:      v.Name,
		TagCode:   v.TagCode,
		BirthDate: v.BirthDate,
	}
}

func ToDomainTicket(m *TicketModel) *park.Ticket {
	return &park.Ticket{
		QRCode:      m.QRCode,
		Kind:        park.TicketKind(m.Kind),
		VisitDate:   m.VisitDate,
		VisitorID:   m.VisitorID,
		EventName:   m.EventName,
		PurchasedAt: m.PurchasedAt,
	}
}

func FromDomainTicket(t *park.Ticket) *TicketModel {
	return &TicketModel{
		QRCode:      t.QRCode,
		Kind:        string(t.Kind),
		VisitDate:   t.VisitDate,
		VisitorID:   t.VisitorID,
		EventName:   t.EventName,
		PurchasedAt: t.PurchasedAt,
	}
}

func ToDomainEvent(m *EventModel) *park.Event {
	var attractions []string
	if m.Attractions != "" {
		attractions = strings.Split(m.Attractions, ",")
	}
	return &park.Event{
		Name:        m.Name,
		Date:        m.Date,
		StartTime:   m.StartTime,
		Capacity:    m.Capacity,
		Attractions: attractions,
	}
}

func FromDomainEvent(e *park.Event) *EventModel {
	return &EventModel{
		Name:        e.Name,
		Date:        e.Date,
		StartTime:   e.StartTime,
		Capacity:    e.Capacity,
		Attractions: strings.Join(e.Attractions, ","),
	}
}

func ToDomainVisit(m *VisitModel) *park.Visit {
	return &park.Visit{
		ID:             m.VisitID,
		VisitorID:      m.VisitorID,
		AttractionName: m.AttractionName,
		EntryAt:        m.EntryAt,
		ExitAt:         m.ExitAt,
		Active:         m.Active,
		Points:         m.Points,
		StrategyName:   m.StrategyName,
	}
}

func FromDomainVisit(v *park.Visit) *VisitModel {
	return &VisitModel{
		VisitID:        v.ID,
		VisitorID:      v.VisitorID,
		AttractionName: v.AttractionName,
		EntryAt:        v.EntryAt,
		ExitAt:         v.ExitAt,
		Active:         v.Active,
		Points:         v.Points,
		StrategyName:   v.StrategyName,
	}
}
