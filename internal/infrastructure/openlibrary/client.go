// Package openlibrary OpenLibrary搜索接口客户端
//
// 只用于启动时加载种子数据：GET {base}/search.json?q=python&limit=58。
// 客户端自带限速(x/time/rate)、对429/5xx/网络错误的指数退避重试，
// 每次HTTP尝试都经过熔断器，熔断打开后不再重试。
package openlibrary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xiebiao/bookcatalog/pkg/circuitbreaker"
	"github.com/xiebiao/bookcatalog/pkg/tracing"
)

// searchFields 只请求种子映射需要的字段
const searchFields = "key,title,author_name,publisher,first_publish_year"

// maxBodySize 响应体上限
const maxBodySize = 32 << 20

// ErrMalformedResponse 响应不是合法的搜索结果
var ErrMalformedResponse = errors.New("openlibrary: malformed search response")

// StatusError 非200响应
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("openlibrary: unexpected status code: %d", e.StatusCode)
}

// Retryable 429与5xx可以重试
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Doc search.json中的一条结果
// title与first_publish_year可能缺失，用指针区分
type Doc struct {
	Key              string   `json:"key"`
	Title            *string  `json:"title"`
	AuthorName       []string `json:"author_name"`
	Publisher        []string `json:"publisher"`
	FirstPublishYear *int     `json:"first_publish_year"`
}

// SearchResponse search.json响应
type SearchResponse struct {
	NumFound int   `json:"numFound"`
	Docs     []Doc `json:"docs"`
}

// Options 客户端配置
type Options struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration // 单次HTTP请求超时
	RPS        float64
	MaxRetries int
	// RetryBackoff 第一次重试前的等待时间，之后每次翻倍；默认1秒
	RetryBackoff time.Duration
	// Breaker 为nil时使用circuitbreaker.DefaultConfig
	Breaker    *circuitbreaker.CircuitBreaker
	HTTPClient *http.Client
}

// Client OpenLibrary客户端
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
	breaker    *circuitbreaker.CircuitBreaker
	log        *zap.Logger
}

// NewClient 创建客户端
func NewClient(opts Options, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	if opts.RPS > 0 {
		limit = rate.Limit(opts.RPS)
	}

	backoff := opts.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}

	breaker := opts.Breaker
	if breaker == nil {
		breaker = NewBreaker(log)
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		userAgent:  opts.UserAgent,
		limiter:    rate.NewLimiter(limit, 1),
		maxRetries: opts.MaxRetries,
		backoff:    backoff,
		breaker:    breaker,
		log:        log,
	}
}

// NewBreaker 创建OpenLibrary熔断器
// 非重试类的4xx(如400)说明请求本身有问题，不计为下游故障
func NewBreaker(log *zap.Logger) *circuitbreaker.CircuitBreaker {
	cfg := circuitbreaker.DefaultConfig()
	cfg.IsSuccessful = func(err error) bool {
		var se *StatusError
		if errors.As(err, &se) {
			return !se.Retryable()
		}
		return err == nil
	}

	cb := circuitbreaker.NewCircuitBreaker("openlibrary", cfg)
	cb.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		log.Warn("circuit breaker state changed",
			zap.String("name", name),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	})
	return cb
}

// SearchURL 构造search.json地址
func (c *Client) SearchURL(query string, limit int) string {
	v := url.Values{}
	v.Set("q", query)
	v.Set("limit", strconv.Itoa(limit))
	v.Set("fields", searchFields)
	return c.baseURL + "/search.json?" + v.Encode()
}

// Search 搜索并解析结果
func (c *Client) Search(ctx context.Context, query string, limit int) (*SearchResponse, error) {
	raw, err := c.SearchRaw(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return Decode(raw)
}

// SearchRaw 搜索并返回原始JSON(用于缓存)
// 返回前会校验JSON格式，不会返回无法解析的内容
func (c *Client) SearchRaw(ctx context.Context, query string, limit int) ([]byte, error) {
	ctx, span := tracing.StartSpan(ctx, "openlibrary", "openlibrary.Search")
	defer span.End()
	span.SetAttributes(attribute.String("query", query), attribute.Int("limit", limit))

	raw, err := c.get(ctx, c.SearchURL(query, limit))
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	if _, err := Decode(raw); err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	return raw, nil
}

// Decode 解析search.json响应
// 不是JSON对象或缺少docs数组时返回ErrMalformedResponse
func Decode(raw []byte) (*SearchResponse, error) {
	var probe struct {
		Docs json.RawMessage `json:"docs"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(probe.Docs) == 0 || bytes.Equal(probe.Docs, []byte("null")) {
		return nil, fmt.Errorf("%w: missing docs", ErrMalformedResponse)
	}

	var res SearchResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &res, nil
}

// get 带限速、重试、熔断的GET
func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			// 退避：backoff, 2*backoff, 4*backoff...
			wait := c.backoff << uint(i-1)
			c.log.Warn("retrying openlibrary request",
				zap.Int("attempt", i+1),
				zap.Duration("backoff", wait),
				zap.Error(lastErr),
			)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		var body []byte
		err := c.breaker.ExecuteContext(ctx, func(ctx context.Context) error {
			var err error
			body, err = c.do(ctx, u)
			return err
		})
		if err == nil {
			return body, nil
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !retryable(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("openlibrary: after %d retries: %w", c.maxRetries, lastErr)
}

func (c *Client) do(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// 读掉响应体以复用连接
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
}

// retryable 网络错误(含单次请求超时)、429、5xx可以重试；熔断打开、其他4xx不重试
func retryable(err error) bool {
	if errors.Is(err, circuitbreaker.ErrOpenState) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	return true
}
