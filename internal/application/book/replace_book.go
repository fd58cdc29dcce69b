package book

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
	"github.com/xiebiao/bookcatalog/pkg/saga"
	"github.com/xiebiao/bookcatalog/pkg/tracing"
)

// ReplaceBookUseCase 全量更新用例
// 设计说明:
// 1. 四个字段全部替换,ID不变
// 2. 请求未带图片时清空图片;旧图片在更新成功后删除
// 3. 先确认图书存在并校验字段,避免为失败的请求写入图片文件
type ReplaceBookUseCase struct {
	bookService book.Service
	images      book.ImageStore
	events      book.EventPublisher
}

// NewReplaceBookUseCase 创建用例
func NewReplaceBookUseCase(bookService book.Service, images book.ImageStore, events book.EventPublisher) *ReplaceBookUseCase {
	return &ReplaceBookUseCase{
		bookService: bookService,
		images:      images,
		events:      events,
	}
}

// ReplaceBookRequest 全量更新请求DTO
type ReplaceBookRequest struct {
	ID               int
	Title            string
	Author           string
	Publisher        string
	FirstPublishYear int
	Image            *ImageUpload
	BaseURL          string
}

// Execute 执行全量更新
func (uc *ReplaceBookUseCase) Execute(ctx context.Context, req ReplaceBookRequest) (resp *BookDTO, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "book.Replace")
	defer func() {
		tracing.RecordError(span, err)
		span.End()
		observe("replace", err)
	}()
	span.SetAttributes(
		attribute.Int("book_id", req.ID),
		attribute.Bool("with_image", req.Image != nil),
	)

	fields := book.Fields{
		Title:            req.Title,
		Author:           req.Author,
		Publisher:        req.Publisher,
		FirstPublishYear: req.FirstPublishYear,
	}

	// 1. 前置检查
	if _, err := uc.bookService.GetBook(ctx, req.ID); err != nil {
		return nil, err
	}
	if err := book.ValidateFields(fields); err != nil {
		return nil, err
	}

	// 2. 保存新图片 → 替换记录
	img := &imageSteps{images: uc.images, upload: req.Image, baseURL: req.BaseURL}
	var before, after *book.Book

	s := saga.NewSaga("replace_book", sagaTimeout)
	s.AddStep("store_image", img.save, img.remove)
	s.AddStep("replace_book", func(ctx context.Context) error {
		var err error
		before, after, err = uc.bookService.ReplaceBook(ctx, req.ID, fields, img.stored)
		return err
	}, nil)

	if err := s.Execute(ctx); err != nil {
		return nil, err
	}

	// 3. 清理旧图片并发布事件
	removeReplacedImage(ctx, uc.images, before, after)
	publish(ctx, uc.events, book.EventUpdated, after)

	dto := ToBookDTO(after)
	return &dto, nil
}
