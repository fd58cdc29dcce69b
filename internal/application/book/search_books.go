package book

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
	"github.com/xiebiao/bookcatalog/pkg/tracing"
)

// SearchBooksUseCase 图书搜索用例
// 设计说明:
// 1. 大小写不敏感的子串匹配(标题/作者/出版社/出版年份)
// 2. 先匹配再分页,结果保持目录顺序
// 3. 只读,没有副作用
type SearchBooksUseCase struct {
	bookService book.Service
}

// NewSearchBooksUseCase 创建搜索用例
func NewSearchBooksUseCase(bookService book.Service) *SearchBooksUseCase {
	return &SearchBooksUseCase{bookService: bookService}
}

// SearchBooksRequest 搜索请求DTO
type SearchBooksRequest struct {
	Query string
	Skip  *int // nil表示未提供
	Limit *int // nil表示未提供
}

// SearchBooksResponse 搜索响应DTO
// count是本页返回的数量,skip/limit是实际使用的值
type SearchBooksResponse struct {
	Query   string    `json:"query"`
	Count   int       `json:"count"`
	Results []BookDTO `json:"results"`
	Skip    int       `json:"skip"`
	Limit   int       `json:"limit"`
}

// Execute 执行搜索
func (uc *SearchBooksUseCase) Execute(ctx context.Context, req SearchBooksRequest) (resp *SearchBooksResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "book.Search")
	defer func() {
		tracing.RecordError(span, err)
		span.End()
		observe("search", err)
	}()
	span.SetAttributes(attribute.String("query", req.Query))

	result, err := uc.bookService.Search(ctx, req.Query, req.Skip, req.Limit)
	if err != nil {
		return nil, err
	}

	results := make([]BookDTO, 0, len(result.Books))
	for _, b := range result.Books {
		results = append(results, ToBookDTO(b))
	}

	span.SetAttributes(attribute.Int("count", len(results)))
	return &SearchBooksResponse{
		Query:   req.Query,
		Count:   len(results),
		Results: results,
		Skip:    result.Skip,
		Limit:   result.Limit,
	}, nil
}
