package infrastructure

import (
	"time"

	"gorm.io/gorm"
)

// AttractionModel 对应数据库中的 attraction 表。
type AttractionModel struct {
	gorm.Model
	Name         string `gorm:"uniqueIndex;size:128"`
	Type         string `gorm:"size:64"`
	Capacity     int
	MinAge       int
	BasePoints   int
	OutOfService bool
}

func (AttractionModel) TableName() string {
	return "attraction"
}

// VisitorModel 对应数据库中的 visitor 表。
type VisitorModel struct {
	gorm.Model
	VisitorID string `gorm:"uniqueIndex;size:36"`
	Name      string `gorm:"size:128"`
	TagCode   string `gorm:"uniqueIndex;size:64"`
	BirthDate time.Time
}

func (VisitorModel) TableName() string {
	return "visitor"
}

// TicketModel 对应数据库中的 ticket 表。
type TicketModel struct {
	gorm.Model
	QRCode      string `gorm:"uniqueIndex;size:36"`
	Kind        string `gorm:"size:16"`
	VisitDate   time.Time
	VisitorID   string `gorm:"index;size:36"`
	EventName   string `gorm:"size:128"`
	PurchasedAt time.Time
}

func (TicketModel) TableName() string {
	return "ticket"
}

// EventModel 对应数据库中的 event 表。
// 覆盖设施名单以逗号拼接存储，读取时拆分。
type EventModel struct {
	gorm.Model
	Name        string `gorm:"uniqueIndex;size:128"`
	Date        time.Time
	StartTime   time.Time
	Capacity    int
	Attractions string `gorm:"type:text"`
}

func (EventModel) TableName() string {
	return "event"
}

// VisitModel 对应数据库中的 visit 表。
type VisitModel struct {
	gorm.Model
	VisitID        string `gorm:"uniqueIndex;size:36"`
	VisitorID      string `gorm:"index:idx_visit_visitor_active;size:36"`
	AttractionName string `gorm:"index;size:128"`
	EntryAt        time.Time
	ExitAt         *time.Time
	Active         bool `gorm:"index:idx_visit_visitor_active"`
	Points         int
	StrategyName   string `gorm:"size:128"`
}

func (VisitModel) TableName() string {
	return "visit"
}
