package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appbook "github.com/xiebiao/bookcatalog/internal/application/book"
	"github.com/xiebiao/bookcatalog/internal/domain/book"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/config"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/event"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/persistence/memory"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/storage/local"
	"github.com/xiebiao/bookcatalog/internal/interface/http/dto"
	"github.com/xiebiao/bookcatalog/internal/interface/http/handler"
	"github.com/xiebiao/bookcatalog/internal/interface/http/router"
	"github.com/xiebiao/bookcatalog/pkg/response"
)

const seedCount = 58

type testServer struct {
	engine http.Handler
	svc    book.Service
}

// newTestServer 内存目录 + 临时图片目录 + 真实路由
func newTestServer(t *testing.T, seeded int) *testServer {
	t.Helper()

	svc := book.NewService(memory.NewBookRepository())
	seed := make([]*book.Book, 0, seeded)
	for i := 0; i < seeded; i++ {
		year := 1990 + i%30
		seed = append(seed, &book.Book{
			Title:            fmt.Sprintf("Python Volume %d", i),
			Author:           "Unknown",
			Publisher:        "Unknown",
			FirstPublishYear: &year,
		})
	}
	require.NoError(t, svc.SeedBooks(context.Background(), seed))

	images, err := local.NewImageStore(t.TempDir(), "/images")
	require.NoError(t, err)
	events := event.NoopPublisher{}

	books := handler.NewBookHandler(
		appbook.NewSearchBooksUseCase(svc),
		appbook.NewCreateBookUseCase(svc, images, events),
		appbook.NewReplaceBookUseCase(svc, images, events),
		appbook.NewPatchBookUseCase(svc, images, events),
		appbook.NewDeleteBookUseCase(svc, images, events),
		handler.Options{},
	)

	engine := router.New(router.Options{
		Mode:           "test",
		MaxUploadSize:  1 << 20,
		CORS:           config.CORSConfig{Enabled: true, AllowOrigins: []string{"*"}, AllowMethods: []string{"GET", "PATCH"}},
		ImageDir:       images.Dir(),
		ImageURLPrefix: images.URLPrefix(),
		MetricsEnabled: true,
		MetricsPath:    "/metrics",
	}, zap.NewNop(), books, handler.NewHealthHandler(svc))

	return &testServer{engine: engine, svc: svc}
}

func (s *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	if req.Host == "" || req.Host == "example.com" {
		req.Host = "localhost:8080"
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) count(t *testing.T) int {
	t.Helper()
	n, err := s.svc.CountBooks(context.Background())
	require.NoError(t, err)
	return n
}

type imagePart struct {
	name    string
	content string
}

// multipartRequest 构造表单请求,image为nil时不带文件
func multipartRequest(t *testing.T, method, target string, fields map[string]string, image *imagePart) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if image != nil {
		fw, err := mw.CreateFormFile("image", image.name)
		require.NoError(t, err)
		_, err = io.WriteString(fw, image.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func formRequest(method, target string, fields map[string]string) *http.Request {
	v := url.Values{}
	for k, val := range fields {
		v.Set(k, val)
	}
	req := httptest.NewRequest(method, target, strings.NewReader(v.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

var cleanCode = map[string]string{
	"title":              "Clean Code",
	"author":             "Robert Martin",
	"publisher":          "Prentice Hall",
	"first_publish_year": "2008",
}

// TestBookLifecycle 创建 → 搜索 → 全量更新 → 部分更新 → 删除
func TestBookLifecycle(t *testing.T) {
	s := newTestServer(t, seedCount)

	// 1. 创建:ID紧接种子数据
	w := s.do(t, multipartRequest(t, http.MethodPost, "/books", cleanCode, nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	created := decode[dto.BookResponse](t, w)
	assert.Equal(t, 1058, created.ID)
	assert.Equal(t, "Clean Code", created.Title)
	assert.Equal(t, 2008, *created.FirstPublishYear)
	assert.Nil(t, created.ImageURL)
	assert.Equal(t, seedCount+1, s.count(t))

	// 2. 搜索
	w = s.do(t, httptest.NewRequest(http.MethodGet, "/books?q=clean", nil))
	require.Equal(t, http.StatusOK, w.Code)
	found := decode[dto.SearchBooksResponse](t, w)
	assert.Equal(t, "clean", found.Query)
	assert.Equal(t, 1, found.Count)
	require.Len(t, found.Results, 1)
	assert.Equal(t, 1058, found.Results[0].ID)

	// 3. 全量更新
	w = s.do(t, multipartRequest(t, http.MethodPut, "/books/1058", map[string]string{
		"title":              "Clean Architecture",
		"author":             "Robert Martin",
		"publisher":          "Pearson",
		"first_publish_year": "2017",
	}, nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[dto.BookMessageResponse](t, w)
	assert.Equal(t, "Book updated successfully", updated.Message)
	assert.Equal(t, 1058, updated.Book.ID)
	assert.Equal(t, "Pearson", updated.Book.Publisher)

	// 4. 部分更新:只改年份
	w = s.do(t, multipartRequest(t, http.MethodPatch, "/books/1058", map[string]string{
		"first_publish_year": "2018",
	}, nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	patched := decode[dto.BookMessageResponse](t, w)
	assert.Equal(t, "Book patched successfully", patched.Message)
	assert.Equal(t, "Clean Architecture", patched.Book.Title)
	assert.Equal(t, 2018, *patched.Book.FirstPublishYear)

	// 5. 删除
	w = s.do(t, httptest.NewRequest(http.MethodDelete, "/books/1058", nil))
	require.Equal(t, http.StatusOK, w.Code)
	deleted := decode[dto.BookMessageResponse](t, w)
	assert.Equal(t, "Book deleted successfully", deleted.Message)
	assert.Equal(t, 1058, deleted.Book.ID)
	assert.Equal(t, seedCount, s.count(t))

	// 6. 再次删除
	w = s.do(t, httptest.NewRequest(http.MethodDelete, "/books/1058", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decode[response.ErrorBody](t, w)
	assert.Equal(t, "Book not found", body.Message)
}

func TestCreateBook_IDsNotReusedAfterDelete(t *testing.T) {
	s := newTestServer(t, 0)

	w := s.do(t, formRequest(http.MethodPost, "/books", cleanCode))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := decode[dto.BookResponse](t, w)
	assert.Equal(t, 1000, first.ID)

	w = s.do(t, httptest.NewRequest(http.MethodDelete, "/books/1000", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, formRequest(http.MethodPost, "/books", cleanCode))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1001, decode[dto.BookResponse](t, w).ID)
}

func TestCreateBook_JSONBody(t *testing.T) {
	s := newTestServer(t, 0)

	req := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(
		`{"title":"Clean Code","author":"Robert Martin","publisher":"Prentice Hall","first_publish_year":0}`))
	req.Header.Set("Content-Type", "application/json")

	w := s.do(t, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	created := decode[dto.BookResponse](t, w)
	require.NotNil(t, created.FirstPublishYear)
	assert.Equal(t, 0, *created.FirstPublishYear)
}

func TestCreateBook_ValidationErrors(t *testing.T) {
	s := newTestServer(t, seedCount)

	w := s.do(t, formRequest(http.MethodPost, "/books", map[string]string{
		"title":              "ab",
		"author":             "Robert Martin",
		"first_publish_year": "-1",
	}))

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode[response.ErrorBody](t, w)
	assert.Equal(t, "Validation failed", body.Message)

	fields := map[string]string{}
	for _, d := range body.Details {
		fields[d.Field] = d.Message
	}
	assert.Equal(t, "must be between 3 and 100 characters", fields["title"])
	assert.Equal(t, "field required", fields["publisher"])
	assert.Equal(t, "must be greater than or equal to 0", fields["first_publish_year"])
	assert.NotContains(t, fields, "author")
	assert.Equal(t, seedCount, s.count(t), "校验失败不能写入目录")
}

func TestCreateBook_NonIntegerYear(t *testing.T) {
	s := newTestServer(t, 0)

	fields := map[string]string{}
	for k, v := range cleanCode {
		fields[k] = v
	}
	fields["first_publish_year"] = "two thousand"

	w := s.do(t, formRequest(http.MethodPost, "/books", fields))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, 0, s.count(t))
}

func TestSearchBooks_Pagination(t *testing.T) {
	s := newTestServer(t, seedCount)

	tests := []struct {
		name      string
		query     string
		wantCount int
		wantSkip  int
		wantLimit int
		wantFirst int
	}{
		{"默认不截断", "q=python", seedCount, 0, seedCount, 1000},
		{"skip+limit", "q=python&skip=10&limit=5", 5, 10, 5, 1010},
		{"limit超过剩余数量", "q=python&skip=55&limit=10", 3, 55, 10, 1055},
		{"skip超出范围", "q=python&skip=100", 0, 100, seedCount, 0},
		{"limit为0", "q=python&limit=0", 0, 0, 0, 0},
		{"年份匹配", "q=2019", 1, 0, 1, 1029},
		{"大小写不敏感", "q=PyThOn&limit=1", 1, 0, 1, 1000},
		{"无匹配", "q=golang", 0, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, httptest.NewRequest(http.MethodGet, "/books?"+tt.query, nil))
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			resp := decode[dto.SearchBooksResponse](t, w)
			assert.Equal(t, tt.wantCount, resp.Count)
			assert.Len(t, resp.Results, tt.wantCount)
			assert.Equal(t, tt.wantSkip, resp.Skip)
			assert.Equal(t, tt.wantLimit, resp.Limit)
			if tt.wantCount > 0 {
				assert.Equal(t, tt.wantFirst, resp.Results[0].ID)
			}
		})
	}
}

func TestSearchBooks_InvalidParams(t *testing.T) {
	s := newTestServer(t, seedCount)

	tests := []struct {
		name  string
		query string
		field string
	}{
		{"缺少q", "", "q"},
		{"q过短", "q=py", "q"},
		{"q过长", "q=" + strings.Repeat("a", 101), "q"},
		{"skip为负数", "q=python&skip=-1", "skip"},
		{"limit超过100", "q=python&limit=101", "limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, httptest.NewRequest(http.MethodGet, "/books?"+tt.query, nil))
			require.Equal(t, http.StatusUnprocessableEntity, w.Code)

			body := decode[response.ErrorBody](t, w)
			require.NotEmpty(t, body.Details)
			assert.Equal(t, tt.field, body.Details[0].Field)
		})
	}
}

func TestSearchBooks_SeededUnknownYearNotMatched(t *testing.T) {
	s := newTestServer(t, 0)
	require.NoError(t, s.svc.SeedBooks(context.Background(), []*book.Book{
		{Title: "Mystery", Author: "Unknown", Publisher: "Unknown"},
	}))

	w := s.do(t, httptest.NewRequest(http.MethodGet, "/books?q=none", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[dto.SearchBooksResponse](t, w).Count)

	w = s.do(t, httptest.NewRequest(http.MethodGet, "/books?q=unknown", nil))
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[dto.SearchBooksResponse](t, w)
	require.Equal(t, 1, resp.Count)
	assert.Nil(t, resp.Results[0].FirstPublishYear)
	assert.Nil(t, resp.Results[0].ImageURL)
}

func TestImage_PutClearsPatchPreserves(t *testing.T) {
	s := newTestServer(t, 0)

	// 1. 带图片创建
	w := s.do(t, multipartRequest(t, http.MethodPost, "/books", cleanCode, &imagePart{"cover.png", "png-bytes"}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	created := decode[dto.BookResponse](t, w)
	require.NotNil(t, created.ImageURL)
	assert.True(t, strings.HasPrefix(*created.ImageURL, "http://localhost:8080/images/"))
	require.NotNil(t, created.ImageFilename)
	assert.Equal(t, "cover.png", *created.ImageFilename)

	// 2. 图片可以通过返回的URL访问
	u, err := url.Parse(*created.ImageURL)
	require.NoError(t, err)
	w = s.do(t, httptest.NewRequest(http.MethodGet, u.Path, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png-bytes", w.Body.String())

	// 3. PATCH不带图片:保留
	w = s.do(t, multipartRequest(t, http.MethodPatch, "/books/1000", map[string]string{"title": "Clean Code 2nd"}, nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	patched := decode[dto.BookMessageResponse](t, w)
	require.NotNil(t, patched.Book.ImageURL)
	assert.Equal(t, *created.ImageURL, *patched.Book.ImageURL)

	// 4. PUT不带图片:清空,旧文件被删除
	w = s.do(t, multipartRequest(t, http.MethodPut, "/books/1000", cleanCode, nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	replaced := decode[dto.BookMessageResponse](t, w)
	assert.Nil(t, replaced.Book.ImageURL)

	w = s.do(t, httptest.NewRequest(http.MethodGet, u.Path, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdate_NotFoundAndBadID(t *testing.T) {
	s := newTestServer(t, seedCount)

	tests := []struct {
		name string
		req  *http.Request
		code int
	}{
		{"PUT不存在", formRequest(http.MethodPut, "/books/999", cleanCode), http.StatusNotFound},
		{"PATCH不存在", formRequest(http.MethodPatch, "/books/4242", map[string]string{"title": "Whatever"}), http.StatusNotFound},
		{"DELETE不存在", httptest.NewRequest(http.MethodDelete, "/books/4242", nil), http.StatusNotFound},
		{"ID不是整数", httptest.NewRequest(http.MethodDelete, "/books/abc", nil), http.StatusBadRequest},
		{"PUT的ID不是整数", formRequest(http.MethodPut, "/books/abc", cleanCode), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, tt.req)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
			assert.Equal(t, seedCount, s.count(t))
		})
	}
}

func TestPatch_EmptyFieldRejected(t *testing.T) {
	s := newTestServer(t, 1)

	w := s.do(t, formRequest(http.MethodPatch, "/books/1000", map[string]string{"author": ""}))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(t, httptest.NewRequest(http.MethodGet, "/books?q=unknown", nil))
	resp := decode[dto.SearchBooksResponse](t, w)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "Unknown", resp.Results[0].Author)
}

func TestUpload_TooLarge(t *testing.T) {
	s := newTestServer(t, 0)

	big := strings.Repeat("x", 2<<20)
	w := s.do(t, multipartRequest(t, http.MethodPost, "/books", cleanCode, &imagePart{"big.png", big}))

	assert.Contains(t, []int{http.StatusRequestEntityTooLarge, http.StatusUnprocessableEntity}, w.Code)
	assert.Equal(t, 0, s.count(t))
}

func TestPing(t *testing.T) {
	s := newTestServer(t, seedCount)

	w := s.do(t, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[dto.PingResponse](t, w)
	assert.Equal(t, "pong", resp.Message)
	assert.Equal(t, seedCount, resp.Books)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRequestIDPropagated(t *testing.T) {
	s := newTestServer(t, 0)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := s.do(t, req)

	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, 0)

	req := httptest.NewRequest(http.MethodOptions, "/books/1000", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := s.do(t, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, PATCH", w.Header().Get("Access-Control-Allow-Methods"))
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, 0)

	w := s.do(t, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
