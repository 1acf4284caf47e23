package infrastructure

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	park "skypark/domain"
	"skypark/internal/pkg/mq"
)

// 通知事件类型
const (
	eventTypeAdmission        = "VISITOR_ADMITTED"
	eventTypeExit             = "VISITOR_EXITED"
	eventTypeExtensionRemoved = "SCORING_EXTENSION_REMOVED"
)

// notificationEvent 是写入 Kafka 的通知消息体。
type notificationEvent struct {
	Type           string     `json:"type"`
	VisitID        string     `json:"visit_id,omitempty"`
	VisitorID      string     `json:"visitor_id,omitempty"`
	AttractionName string     `json:"attraction_name,omitempty"`
	Points         int        `json:"points,omitempty"`
	Occupancy      int64      `json:"occupancy"`
	EntryAt        *time.Time `json:"entry_at,omitempty"`
	ExitAt         *time.Time `json:"exit_at,omitempty"`
	PluginID       string     `json:"plugin_id,omitempty"`
	OccurredAt     time.Time  `json:"occurred_at"`
}

// KafkaNotificationAdapter 把入场/离场/扩展下线事件发到通知主题。
// 同时满足准入侧的 AdmissionNotifier 和扩展注册表的 DeactivationNotifier。
type KafkaNotificationAdapter struct {
	writer *kafka.Writer
}

func NewKafkaNotificationAdapter(brokers []string, topic string) *KafkaNotificationAdapter {
	return &KafkaNotificationAdapter{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.Hash{},
		},
	}
}

func (a *KafkaNotificationAdapter) AdmissionRecorded(ctx context.Context, visit *park.Visit, occupancy int64) error {
	entryAt := visit.EntryAt
	return a.publish(ctx, visit.VisitorID, notificationEvent{
		Type:           eventTypeAdmission,
		VisitID:        visit.ID,
		VisitorID:      visit.VisitorID,
		AttractionName: visit.AttractionName,
		Points:         visit.Points,
		Occupancy:      occupancy,
		EntryAt:        &entryAt,
		OccurredAt:     time.Now(),
	})
}

func (a *KafkaNotificationAdapter) ExitRecorded(ctx context.Context, visit *park.Visit, occupancy int64) error {
	return a.publish(ctx, visit.VisitorID, notificationEvent{
		Type:           eventTypeExit,
		VisitID:        visit.ID,
		VisitorID:      visit.VisitorID,
		AttractionName: visit.AttractionName,
		Points:         visit.Points,
		Occupancy:      occupancy,
		ExitAt:         visit.ExitAt,
		OccurredAt:     time.Now(),
	})
}

func (a *KafkaNotificationAdapter) ExtensionRemoved(ctx context.Context, pluginID string) error {
	return a.publish(ctx, pluginID, notificationEvent{
		Type:       eventTypeExtensionRemoved,
		PluginID:   pluginID,
		OccurredAt: time.Now(),
	})
}

func (a *KafkaNotificationAdapter) publish(ctx context.Context, key string, event notificationEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "failed to marshal notification event")
	}
	return mq.ProduceMessage(ctx, a.writer, []byte(key), payload)
}

func (a *KafkaNotificationAdapter) Close() error {
	return a.writer.Close()
}
