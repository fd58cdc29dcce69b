package book

import (
	"context"
	"io"
	"time"
)

// Repository 图书仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现(目前只有内存实现)
// 2. ID由仓储分配:第一本为FirstID,之后每次成功插入递增1,删除后不复用
// 3. 返回的*Book都是副本,修改它们不会影响目录
type Repository interface {
	// Seed 按顺序批量插入种子图书,依次分配ID
	Seed(ctx context.Context, books []*Book) error

	// Create 插入图书并分配ID(回填到book.ID)
	Create(ctx context.Context, book *Book) error

	// FindByID 根据ID查找图书,不存在返回ErrBookNotFound
	FindByID(ctx context.Context, id int) (*Book, error)

	// Update 在锁内查找并修改图书,mutate返回error时不落盘
	// 返回修改前与修改后的副本;不存在返回ErrBookNotFound
	Update(ctx context.Context, id int, mutate func(b *Book) error) (before, after *Book, err error)

	// Delete 删除第一本ID匹配的图书并返回它,不存在返回ErrBookNotFound
	Delete(ctx context.Context, id int) (*Book, error)

	// Search 按插入顺序返回匹配query的图书(query为空时返回全部)
	Search(ctx context.Context, query string) ([]*Book, error)

	// Count 目录中的图书数量
	Count(ctx context.Context) (int, error)
}

// StoredImage 已保存图片的元数据
type StoredImage struct {
	Key         string // 存储键
	Filename    string // 原始文件名(仅展示)
	Size        int64
	ContentType string
}

// ImageStore 图片存储接口
type ImageStore interface {
	// Save 保存图片并生成存储键,原始文件名不参与存储路径
	Save(ctx context.Context, filename string, r io.Reader) (*StoredImage, error)

	// Delete 删除图片,键不存在时不报错
	Delete(ctx context.Context, key string) error

	// URL 返回图片的绝对访问地址,baseURL形如 http://host:port
	URL(baseURL, key string) string
}

// EventType 图书变更事件类型(同时作为routing key)
type EventType string

const (
	EventCreated EventType = "book.created"
	EventUpdated EventType = "book.updated"
	EventPatched EventType = "book.patched"
	EventDeleted EventType = "book.deleted"
)

// Event 图书变更事件
type Event struct {
	Type       EventType
	Book       *Book
	OccurredAt time.Time
}

// NewEvent 创建事件
func NewEvent(t EventType, b *Book) Event {
	return Event{Type: t, Book: b.Clone(), OccurredAt: time.Now().UTC()}
}

// EventPublisher 事件发布接口
// 发布失败不影响已完成的目录变更,调用方只记录日志
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
