package event

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// AuditLogger 消费图书变更事件并写入日志
type AuditLogger struct {
	log *zap.Logger
}

// NewAuditLogger 创建审计日志消费者
func NewAuditLogger(log *zap.Logger) *AuditLogger {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuditLogger{log: log}
}

// Handle 符合mq.Handler签名
// 消息体无法解析时返回nil,避免坏消息反复重新入队
func (a *AuditLogger) Handle(ctx context.Context, routingKey string, body []byte) error {
	msg, err := DecodeMessage(body)
	if err != nil {
		a.log.Warn("drop malformed book event",
			zap.String("routing_key", routingKey),
			zap.Error(err),
		)
		return nil
	}

	fields := []zap.Field{
		zap.String("type", msg.Type),
		zap.Int("book_id", msg.Book.ID),
		zap.String("title", msg.Book.Title),
		zap.Time("occurred_at", msg.OccurredAt),
	}
	if msg.Book.ImageURL != nil {
		fields = append(fields, zap.String("image_url", *msg.Book.ImageURL))
	}
	a.log.Info("book event", fields...)
	return nil
}

// DecodeMessage 解析事件消息体
func DecodeMessage(body []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return Message{}, fmt.Errorf("解析事件失败: %w", err)
	}
	if msg.Type == "" {
		return Message{}, fmt.Errorf("事件缺少type字段")
	}
	return msg, nil
}
