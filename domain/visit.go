package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Visit 代表一次游玩记录。成功准入时创建；离场时更新一次
// （写入离场时间并清除活跃标记）；永不删除。
type Visit struct {
	ID             string
	VisitorID      string
	AttractionName string
	EntryAt        time.Time
	ExitAt         *time.Time
	Active         bool
	Points         int
	StrategyName   string // 计分时使用的策略名，未计分则为空
}

// 工厂函数: NewVisit 创建一条新的活跃游玩记录。
func NewVisit(visitorID, attractionName string, entryAt time.Time) *Visit {
	return &Visit{
		ID:             uuid.New().String(),
		VisitorID:      visitorID,
		AttractionName: attractionName,
		EntryAt:        entryAt,
		Active:         true,
	}
}

// AwardPoints 记录本次游玩获得的积分及使用的策略。
func (v *Visit) AwardPoints(points int, strategyName string) {
	v.Points = points
	v.StrategyName = strategyName
}

// Close 结束本次游玩。只有活跃记录可以被关闭。
func (v *Visit) Close(exitAt time.Time) error {
	if !v.Active {
		return errors.New("visit is already closed")
	}
	v.ExitAt = &exitAt
	v.Active = false
	return nil
}
