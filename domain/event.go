package domain

import "time"

// EventValidityWindow 是活动的固定有效时长：从开场时间起 4 小时。
// 活动票准入和按活动加成的积分策略共用这个窗口。
const EventValidityWindow = 4 * time.Hour

// Event 代表园区内的一场限时活动。
type Event struct {
	Name        string
	Date        time.Time
	StartTime   time.Time
	Capacity    int
	Attractions []string // 活动覆盖的设施名单
}

// InWindow 判断给定时刻是否落在 [StartTime, StartTime+4h] 内，边界含端点。
func (e *Event) InWindow(now time.Time) bool {
	end := e.StartTime.Add(EventValidityWindow)
	return !now.Before(e.StartTime) && !now.After(end)
}

// Includes 判断某设施是否在活动覆盖名单内。
func (e *Event) Includes(attractionName string) bool {
	for _, name := range e.Attractions {
		if name == attractionName {
			return true
		}
	}
	return false
}
