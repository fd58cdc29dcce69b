package book

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/openlibrary"
	"github.com/xiebiao/bookcatalog/pkg/logger"
	"github.com/xiebiao/bookcatalog/pkg/metrics"
	"github.com/xiebiao/bookcatalog/pkg/tracing"
)

// unknownValue 缺少作者/出版社时的占位
const unknownValue = "Unknown"

// SearchClient 外部图书搜索接口
type SearchClient interface {
	SearchRaw(ctx context.Context, query string, limit int) ([]byte, error)
}

// SeedCache 种子响应缓存(可选)
type SeedCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

// SeedCatalogUseCase 启动时导入种子数据
// 设计说明:
// 1. 只在启动时执行一次,失败时调用方应终止进程
// 2. 配置了缓存时先读缓存,缓存故障降级为直接请求外部接口
// 3. 文档按返回顺序导入,ID从1000开始连续分配
type SeedCatalogUseCase struct {
	bookService book.Service
	client      SearchClient
	cache       SeedCache
	cacheTTL    time.Duration
	log         *zap.Logger
}

// NewSeedCatalogUseCase 创建用例,cache可以为nil
func NewSeedCatalogUseCase(bookService book.Service, client SearchClient, cache SeedCache, cacheTTL time.Duration, log *zap.Logger) *SeedCatalogUseCase {
	if log == nil {
		log = zap.NewNop()
	}
	return &SeedCatalogUseCase{
		bookService: bookService,
		client:      client,
		cache:       cache,
		cacheTTL:    cacheTTL,
		log:         log,
	}
}

// SeedCatalogRequest 种子请求
type SeedCatalogRequest struct {
	Query string
	Limit int
}

// SeedCatalogResponse 导入结果
type SeedCatalogResponse struct {
	Loaded    int  `json:"loaded"`
	FromCache bool `json:"from_cache"`
}

// Execute 执行导入
func (uc *SeedCatalogUseCase) Execute(ctx context.Context, req SeedCatalogRequest) (resp *SeedCatalogResponse, err error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracerName, "book.Seed")
	defer func() {
		tracing.RecordError(span, err)
		span.End()
		metrics.ObserveHistogram(metrics.SeedDuration, time.Since(start).Seconds())
	}()
	span.SetAttributes(
		attribute.String("query", req.Query),
		attribute.Int("limit", req.Limit),
	)

	// 1. 取原始响应(缓存 → 外部接口)
	raw, fromCache, err := uc.fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	// 2. 解析
	result, err := openlibrary.Decode(raw)
	if err != nil {
		return nil, book.ErrSeedMalformed.WithCause(err)
	}

	// 3. 映射并导入
	books := make([]*book.Book, 0, len(result.Docs))
	for _, doc := range result.Docs {
		books = append(books, DocToBook(doc))
	}
	if err := uc.bookService.SeedBooks(ctx, books); err != nil {
		return nil, book.ErrSeedFailed.WithCause(err)
	}

	// 4. 缓存原始响应(只缓存解析成功的)
	if !fromCache {
		uc.store(ctx, req, raw)
	}

	metrics.SetGauge(metrics.SeedBooksLoaded, float64(len(books)))
	uc.log.Info("catalog seeded",
		zap.Int("books", len(books)),
		zap.Bool("from_cache", fromCache),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &SeedCatalogResponse{Loaded: len(books), FromCache: fromCache}, nil
}

func (uc *SeedCatalogUseCase) fetch(ctx context.Context, req SeedCatalogRequest) ([]byte, bool, error) {
	if uc.cache != nil {
		data, ok, err := uc.cache.Get(ctx, cacheKey(req))
		switch {
		case err != nil:
			metrics.IncCounterVec(metrics.SeedCacheLookups, map[string]string{"result": "error"})
			logger.FromContext(ctx).Warn("seed cache unavailable, falling back to upstream", zap.Error(err))
		case ok:
			metrics.IncCounterVec(metrics.SeedCacheLookups, map[string]string{"result": "hit"})
			if _, decodeErr := openlibrary.Decode(data); decodeErr == nil {
				return data, true, nil
			}
			uc.log.Warn("ignoring malformed cached seed response")
		default:
			metrics.IncCounterVec(metrics.SeedCacheLookups, map[string]string{"result": "miss"})
		}
	}

	raw, err := uc.client.SearchRaw(ctx, req.Query, req.Limit)
	if err != nil {
		if errors.Is(err, openlibrary.ErrMalformedResponse) {
			return nil, false, book.ErrSeedMalformed.WithCause(err)
		}
		return nil, false, book.ErrSeedFailed.WithCause(err)
	}
	return raw, false, nil
}

func (uc *SeedCatalogUseCase) store(ctx context.Context, req SeedCatalogRequest, raw []byte) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Set(ctx, cacheKey(req), raw, uc.cacheTTL); err != nil {
		logger.FromContext(ctx).Warn("failed to cache seed response", zap.Error(err))
	}
}

func cacheKey(req SeedCatalogRequest) string {
	return fmt.Sprintf("%s:%d", req.Query, req.Limit)
}

// DocToBook 外部文档 → 图书(ID由仓储分配)
func DocToBook(doc openlibrary.Doc) *book.Book {
	b := &book.Book{
		Author:    firstOr(doc.AuthorName, unknownValue),
		Publisher: firstOr(doc.Publisher, unknownValue),
	}
	if doc.Title != nil {
		b.Title = *doc.Title
	}
	if doc.FirstPublishYear != nil {
		year := *doc.FirstPublishYear
		b.FirstPublishYear = &year
	}
	return b
}

// firstOr 列表第一个元素,列表为空时返回fallback
func firstOr(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	return values[0]
}
