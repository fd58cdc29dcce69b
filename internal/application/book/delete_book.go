package book

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
	"github.com/xiebiao/bookcatalog/pkg/logger"
	"github.com/xiebiao/bookcatalog/pkg/tracing"
)

// DeleteBookUseCase 删除图书用例
type DeleteBookUseCase struct {
	bookService book.Service
	images      book.ImageStore
	events      book.EventPublisher
}

// NewDeleteBookUseCase 创建用例
func NewDeleteBookUseCase(bookService book.Service, images book.ImageStore, events book.EventPublisher) *DeleteBookUseCase {
	return &DeleteBookUseCase{
		bookService: bookService,
		images:      images,
		events:      events,
	}
}

// Execute 执行删除
// 记录删除后图片文件尽力清理,清理失败不影响结果
func (uc *DeleteBookUseCase) Execute(ctx context.Context, id int) (resp *BookDTO, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "book.Delete")
	defer func() {
		tracing.RecordError(span, err)
		span.End()
		observe("delete", err)
	}()
	span.SetAttributes(attribute.Int("book_id", id))

	removed, err := uc.bookService.DeleteBook(ctx, id)
	if err != nil {
		return nil, err
	}

	if key := removed.ImageKey(); key != "" {
		if err := uc.images.Delete(ctx, key); err != nil {
			logger.FromContext(ctx).Warn("failed to remove image of deleted book",
				zap.Int("book_id", id),
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}
	publish(ctx, uc.events, book.EventDeleted, removed)

	dto := ToBookDTO(removed)
	return &dto, nil
}
