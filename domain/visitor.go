package domain

import "time"

// Visitor 代表一位持有入园凭证的游客。
type Visitor struct {
	ID        string
	Name      string
	TagCode   string // 实体手环/腕带编码，可替代二维码入场
	BirthDate time.Time
}

// AgeAt 计算游客在给定时刻的周岁年龄。
// 按整年计算：当年生日还没到，则减一岁。
func (v *Visitor) AgeAt(now time.Time) int {
	age := now.Year() - v.BirthDate.Year()
	// 生日未到则还没满这一岁
	if now.Month() < v.BirthDate.Month() ||
		(now.Month() == v.BirthDate.Month() && now.Day() < v.BirthDate.Day()) {
		age--
	}
	return age
}
