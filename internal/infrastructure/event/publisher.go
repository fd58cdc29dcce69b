// Package event 图书变更事件发布
package event

import (
	"context"
	"time"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
)

// Message 事件消息体(JSON)
type Message struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Book       BookPayload `json:"book"`
}

// BookPayload 事件中的图书快照
type BookPayload struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	Author           string  `json:"author"`
	Publisher        string  `json:"publisher"`
	FirstPublishYear *int    `json:"first_publish_year"`
	ImageURL         *string `json:"image_url"`
}

// NewMessage 领域事件 → 消息体
func NewMessage(ev book.Event) Message {
	msg := Message{
		Type:       string(ev.Type),
		OccurredAt: ev.OccurredAt,
	}
	if b := ev.Book; b != nil {
		msg.Book = BookPayload{
			ID:               b.ID,
			Title:            b.Title,
			Author:           b.Author,
			Publisher:        b.Publisher,
			FirstPublishYear: b.FirstPublishYear,
		}
		if b.Image != nil {
			url := b.Image.URL
			msg.Book.ImageURL = &url
		}
	}
	return msg
}

// publisher pkg/mq.Publisher的最小能力
type publisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// MQPublisher 通过RabbitMQ发布事件,routing key即事件类型(book.created等)
type MQPublisher struct {
	pub publisher
}

// NewMQPublisher 创建事件发布器
func NewMQPublisher(pub publisher) *MQPublisher {
	return &MQPublisher{pub: pub}
}

// Publish 发布事件
func (p *MQPublisher) Publish(ctx context.Context, ev book.Event) error {
	return p.pub.Publish(ctx, string(ev.Type), NewMessage(ev))
}

// NoopPublisher 未启用消息队列时使用
type NoopPublisher struct{}

// Publish 什么都不做
func (NoopPublisher) Publish(context.Context, book.Event) error { return nil }
