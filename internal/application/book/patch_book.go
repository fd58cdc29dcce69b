package book

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
	"github.com/xiebiao/bookcatalog/pkg/saga"
	"github.com/xiebiao/bookcatalog/pkg/tracing"
)

// PatchBookUseCase 部分更新用例
// 只修改请求中出现的字段;未带图片时保留原图片
type PatchBookUseCase struct {
	bookService book.Service
	images      book.ImageStore
	events      book.EventPublisher
}

// NewPatchBookUseCase 创建用例
func NewPatchBookUseCase(bookService book.Service, images book.ImageStore, events book.EventPublisher) *PatchBookUseCase {
	return &PatchBookUseCase{
		bookService: bookService,
		images:      images,
		events:      events,
	}
}

// PatchBookRequest 部分更新请求DTO
// nil表示字段未提供
type PatchBookRequest struct {
	ID               int
	Title            *string
	Author           *string
	Publisher        *string
	FirstPublishYear *int
	Image            *ImageUpload
	BaseURL          string
}

// Execute 执行部分更新
func (uc *PatchBookUseCase) Execute(ctx context.Context, req PatchBookRequest) (resp *BookDTO, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "book.Patch")
	defer func() {
		tracing.RecordError(span, err)
		span.End()
		observe("patch", err)
	}()
	span.SetAttributes(
		attribute.Int("book_id", req.ID),
		attribute.Bool("with_image", req.Image != nil),
	)

	patch := book.Patch{
		Title:            req.Title,
		Author:           req.Author,
		Publisher:        req.Publisher,
		FirstPublishYear: req.FirstPublishYear,
	}

	if _, err := uc.bookService.GetBook(ctx, req.ID); err != nil {
		return nil, err
	}
	if err := book.ValidatePatch(patch); err != nil {
		return nil, err
	}

	img := &imageSteps{images: uc.images, upload: req.Image, baseURL: req.BaseURL}
	var before, after *book.Book

	s := saga.NewSaga("patch_book", sagaTimeout)
	s.AddStep("store_image", img.save, img.remove)
	s.AddStep("patch_book", func(ctx context.Context) error {
		var err error
		before, after, err = uc.bookService.PatchBook(ctx, req.ID, patch, img.stored)
		return err
	}, nil)

	if err := s.Execute(ctx); err != nil {
		return nil, err
	}

	// 只有换了新图片时旧图片才不再被引用
	if img.stored != nil {
		removeReplacedImage(ctx, uc.images, before, after)
	}
	publish(ctx, uc.events, book.EventPatched, after)

	dto := ToBookDTO(after)
	return &dto, nil
}
