package book

import (
	"context"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
	"github.com/xiebiao/bookcatalog/pkg/logger"
	"github.com/xiebiao/bookcatalog/pkg/metrics"
)

// tracerName 应用层Span的来源
const tracerName = "bookcatalog/application"

// sagaTimeout 带图片写入的整体超时
const sagaTimeout = 30 * time.Second

// BookDTO 图书响应DTO
// first_publish_year与image_url可以为null
type BookDTO struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	Author           string  `json:"author"`
	Publisher        string  `json:"publisher"`
	FirstPublishYear *int    `json:"first_publish_year"`
	ImageURL         *string `json:"image_url"`
	ImageFilename    *string `json:"image_filename,omitempty"`
}

// ToBookDTO 领域实体 → DTO
func ToBookDTO(b *book.Book) BookDTO {
	dto := BookDTO{
		ID:               b.ID,
		Title:            b.Title,
		Author:           b.Author,
		Publisher:        b.Publisher,
		FirstPublishYear: b.FirstPublishYear,
	}
	if b.Image != nil {
		url, name := b.Image.URL, b.Image.Filename
		dto.ImageURL = &url
		if name != "" {
			dto.ImageFilename = &name
		}
	}
	return dto
}

// ImageUpload 随请求上传的图片
type ImageUpload struct {
	Filename string
	Content  io.Reader
}

// imageSteps 图片相关的saga步骤(保存/补偿删除)
// upload为nil时两个步骤都是空操作,stored保持nil
type imageSteps struct {
	images  book.ImageStore
	upload  *ImageUpload
	baseURL string

	stored *book.Image
}

func (s *imageSteps) save(ctx context.Context) error {
	if s.upload == nil {
		return nil
	}
	img, err := s.images.Save(ctx, s.upload.Filename, s.upload.Content)
	if err != nil {
		return book.ErrImageStore.WithCause(err)
	}
	s.stored = &book.Image{
		Key:      img.Key,
		Filename: img.Filename,
		URL:      s.images.URL(s.baseURL, img.Key),
	}
	return nil
}

func (s *imageSteps) remove(ctx context.Context) error {
	if s.stored == nil {
		return nil
	}
	return s.images.Delete(ctx, s.stored.Key)
}

// removeReplacedImage 记录更新成功后,删除不再被引用的旧图片(失败只记日志)
func removeReplacedImage(ctx context.Context, images book.ImageStore, before, after *book.Book) {
	oldKey := before.ImageKey()
	if oldKey == "" || oldKey == after.ImageKey() {
		return
	}
	if err := images.Delete(ctx, oldKey); err != nil {
		logger.FromContext(ctx).Warn("failed to remove replaced image",
			zap.Int("book_id", before.ID),
			zap.String("key", oldKey),
			zap.Error(err),
		)
	}
}

// publish 发布事件(失败只记日志,不影响已完成的变更)
func publish(ctx context.Context, events book.EventPublisher, t book.EventType, b *book.Book) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, book.NewEvent(t, b)); err != nil {
		logger.FromContext(ctx).Warn("failed to publish book event",
			zap.String("type", string(t)),
			zap.Int("book_id", b.ID),
			zap.Error(err),
		)
	}
}

// observe 记录目录操作结果
func observe(op string, err error) {
	result := "success"
	switch {
	case err == nil:
	case errors.Is(err, book.ErrBookNotFound):
		result = "not_found"
	case errors.Is(err, book.ErrInvalidBook):
		result = "invalid"
	default:
		result = "error"
	}
	metrics.IncCounterVec(metrics.CatalogOperationsTotal, map[string]string{"op": op, "result": result})
}
