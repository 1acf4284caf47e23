package domain

import (
	"context"
	"time"
)

// 本文件定义了园区实体的持久化接口。
// 接口位于领域层，由基础设施层实现，是领域层与基础设施层之间的“插座”。

// AttractionRepository 定义了设施数据的持久化接口。
type AttractionRepository interface {
	FindByName(ctx context.Context, name string) (*Attraction, error)
	ListAll(ctx context.Context) ([]*Attraction, error)
}

// VisitorRepository 定义了游客数据的持久化接口。
type VisitorRepository interface {
	FindByID(ctx context.Context, id string) (*Visitor, error)
	FindByTagCode(ctx context.Context, tagCode string) (*Visitor, error)
}

// TicketRepository 定义了门票数据的持久化接口。
type TicketRepository interface {
	FindByQRCode(ctx context.Context, qrCode string) (*Ticket, error)
	// ListByVisitorAndDate 按购票时间顺序返回游客在某天的全部门票。
	ListByVisitorAndDate(ctx context.Context, visitorID string, day time.Time) ([]*Ticket, error)
}

// EventRepository 定义了活动数据的持久化接口。
type EventRepository interface {
	FindByName(ctx context.Context, name string) (*Event, error)
}

// VisitRepository 定义了游玩记录的持久化接口。
type VisitRepository interface {
	Save(ctx context.Context, visit *Visit) error
	Update(ctx context.Context, visit *Visit) error
	// FindActive 查找游客在某设施的当前活跃记录；不存在时返回 (nil, nil)。
	FindActive(ctx context.Context, visitorID, attractionName string) (*Visit, error)
	// FindAnyActive 查找游客在任意设施的当前活跃记录；不存在时返回 (nil, nil)。
	FindAnyActive(ctx context.Context, visitorID string) (*Visit, error)
	// ListByVisitorSince 返回游客自某时刻起的全部游玩记录（含活跃与已结束）。
	ListByVisitorSince(ctx context.Context, visitorID string, since time.Time) ([]*Visit, error)
}
