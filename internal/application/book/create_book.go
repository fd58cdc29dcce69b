package book

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
	"github.com/xiebiao/bookcatalog/pkg/saga"
	"github.com/xiebiao/bookcatalog/pkg/tracing"
)

// CreateBookUseCase 创建图书用例
// 设计说明:
// 1. 保存图片与写入目录是两个副作用,用saga编排:写入失败时删除已保存的图片,
//    不会留下没有记录引用的文件,也不会留下引用了不存在文件的记录
// 2. 事件在saga成功后发布,发布失败不回滚
type CreateBookUseCase struct {
	bookService book.Service
	images      book.ImageStore
	events      book.EventPublisher
}

// NewCreateBookUseCase 创建用例
func NewCreateBookUseCase(bookService book.Service, images book.ImageStore, events book.EventPublisher) *CreateBookUseCase {
	return &CreateBookUseCase{
		bookService: bookService,
		images:      images,
		events:      events,
	}
}

// CreateBookRequest 创建请求DTO
type CreateBookRequest struct {
	Title            string
	Author           string
	Publisher        string
	FirstPublishYear int
	Image            *ImageUpload // 可选
	BaseURL          string       // 拼接图片URL用
}

// Execute 执行创建
func (uc *CreateBookUseCase) Execute(ctx context.Context, req CreateBookRequest) (resp *BookDTO, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "book.Create")
	defer func() {
		tracing.RecordError(span, err)
		span.End()
		observe("create", err)
	}()
	span.SetAttributes(attribute.Bool("with_image", req.Image != nil))

	img := &imageSteps{images: uc.images, upload: req.Image, baseURL: req.BaseURL}
	var created *book.Book

	s := saga.NewSaga("create_book", sagaTimeout)
	// 1. 保存图片(补偿:删除图片)
	s.AddStep("store_image", img.save, img.remove)
	// 2. 写入目录(最后一步,不需要补偿)
	s.AddStep("insert_book", func(ctx context.Context) error {
		b, err := uc.bookService.CreateBook(ctx, book.Fields{
			Title:            req.Title,
			Author:           req.Author,
			Publisher:        req.Publisher,
			FirstPublishYear: req.FirstPublishYear,
		}, img.stored)
		if err != nil {
			return err
		}
		created = b
		return nil
	}, nil)

	if err := s.Execute(ctx); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("book_id", created.ID))
	publish(ctx, uc.events, book.EventCreated, created)

	dto := ToBookDTO(created)
	return &dto, nil
}
