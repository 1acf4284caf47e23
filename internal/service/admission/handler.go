package admission

import (
	"context"
	"time"

	park "skypark/domain"
)

// CredentialKind 标识入场凭证的种类。
type CredentialKind string

const (
	CredentialQR  CredentialKind = "QR"  // 门票二维码
	CredentialTag CredentialKind = "TAG" // 实体手环编码
)

// EntryContext 在处理链中传递一次入场请求的全部数据。
// 链上每个节点校验一件事，失败即短路；走完全链后 Visit 字段是结果。
type EntryContext struct {
	Ctx context.Context

	AttractionName  string
	CredentialKind  CredentialKind
	CredentialValue string
	Now             time.Time

	// 沿链逐步解析出来的实体
	Attraction *park.Attraction
	Visitor    *park.Visitor
	Ticket     *park.Ticket

	// 链尾产出
	Visit     *park.Visit
	Occupancy int64
}

// Handler 定义了责任链中每个节点的接口。
type Handler interface {
	// SetNext 设置链中的下一个处理器
	SetNext(handler Handler) Handler
	// Handle 执行当前节点的校验/处理逻辑
	Handle(ec *EntryContext) error
}

// NextHandler 是一个辅助结构，嵌入到具体处理器中以减少重复代码。
type NextHandler struct {
	next Handler
}

func (h *NextHandler) SetNext(handler Handler) Handler {
	h.next = handler
	return handler
}

// executeNext 封装了调用下一个处理器的通用逻辑。
func (h *NextHandler) executeNext(ec *EntryContext) error {
	if h.next != nil {
		return h.next.Handle(ec)
	}
	return nil
}

// startOfDay 返回某时刻所在日的零点，用于圈定“今天”的游玩记录。
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
