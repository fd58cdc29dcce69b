package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/bookcatalog/internal/application/book"
	"github.com/xiebiao/bookcatalog/internal/interface/http/dto"
	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
	"github.com/xiebiao/bookcatalog/pkg/response"
)

// imageField 上传图片的表单字段名
const imageField = "image"

// 成功提示
const (
	msgUpdated = "Book updated successfully"
	msgPatched = "Book patched successfully"
	msgDeleted = "Book deleted successfully"
)

// Options 处理器配置
type Options struct {
	// PublicBaseURL 图片URL前缀,为空时使用请求的scheme+host
	PublicBaseURL string
}

// BookHandler 图书HTTP处理器
// 设计说明：
// 1. Handler只负责HTTP相关的事情：解析请求、调用应用层、返回响应
// 2. 字段校验由binding tag完成,错误统一转换为422
type BookHandler struct {
	searchBooks *appbook.SearchBooksUseCase
	createBook  *appbook.CreateBookUseCase
	replaceBook *appbook.ReplaceBookUseCase
	patchBook   *appbook.PatchBookUseCase
	deleteBook  *appbook.DeleteBookUseCase
	opts        Options
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	searchBooks *appbook.SearchBooksUseCase,
	createBook *appbook.CreateBookUseCase,
	replaceBook *appbook.ReplaceBookUseCase,
	patchBook *appbook.PatchBookUseCase,
	deleteBook *appbook.DeleteBookUseCase,
	opts Options,
) *BookHandler {
	return &BookHandler{
		searchBooks: searchBooks,
		createBook:  createBook,
		replaceBook: replaceBook,
		patchBook:   patchBook,
		deleteBook:  deleteBook,
		opts:        opts,
	}
}

// SearchBooks 搜索图书
// @Summary      搜索图书
// @Description  标题/作者/出版社/出版年份的大小写不敏感子串匹配,先匹配再分页
// @Tags         图书
// @Produce      json
// @Param        q      query  string  true   "搜索词(3-100字符)"
// @Param        skip   query  int     false  "跳过条数(0-100)"
// @Param        limit  query  int     false  "返回条数(0-100),默认不截断"
// @Success      200 {object} dto.SearchBooksResponse
// @Failure      422 {object} response.ErrorBody "参数错误"
// @Router       /books [get]
func (h *BookHandler) SearchBooks(c *gin.Context) {
	// 1. 参数绑定与验证
	var req dto.SearchBooksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}

	// 2. 调用应用层用例
	result, err := h.searchBooks.Execute(c.Request.Context(), appbook.SearchBooksRequest{
		Query: req.Q,
		Skip:  req.Skip,
		Limit: req.Limit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	// 3. 构建HTTP响应
	results := make([]dto.BookResponse, 0, len(result.Results))
	for _, b := range result.Results {
		results = append(results, toBookResponse(b))
	}
	response.Success(c, dto.SearchBooksResponse{
		Query:   result.Query,
		Count:   result.Count,
		Results: results,
		Skip:    result.Skip,
		Limit:   result.Limit,
	})
}

// CreateBook 创建图书
// @Summary      创建图书
// @Description  表单字段全部必填,可附带图片
// @Tags         图书
// @Accept       multipart/form-data
// @Produce      json
// @Param        title               formData  string  true   "标题(3-100字符)"
// @Param        author              formData  string  true   "作者(3-100字符)"
// @Param        publisher           formData  string  true   "出版社(3-100字符)"
// @Param        first_publish_year  formData  int     true   "首次出版年份(>=0)"
// @Param        image               formData  file    false  "封面图片"
// @Success      200 {object} dto.BookResponse
// @Failure      413 {object} response.ErrorBody "请求体过大"
// @Failure      422 {object} response.ErrorBody "参数错误"
// @Failure      500 {object} response.ErrorBody "图片保存失败"
// @Router       /books [post]
func (h *BookHandler) CreateBook(c *gin.Context) {
	var req dto.CreateBookRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}

	upload, closeImage, err := formImage(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeImage()

	result, err := h.createBook.Execute(c.Request.Context(), appbook.CreateBookRequest{
		Title:            req.Title,
		Author:           req.Author,
		Publisher:        req.Publisher,
		FirstPublishYear: *req.FirstPublishYear,
		Image:            upload,
		BaseURL:          h.baseURL(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toBookResponse(*result))
}

// ReplaceBook 全量更新图书
// @Summary      全量更新图书
// @Description  替换全部字段;未附带图片时清空原图片
// @Tags         图书
// @Accept       multipart/form-data
// @Produce      json
// @Param        id                  path      int     true   "图书ID"
// @Param        title               formData  string  true   "标题(3-100字符)"
// @Param        author              formData  string  true   "作者(3-100字符)"
// @Param        publisher           formData  string  true   "出版社(3-100字符)"
// @Param        first_publish_year  formData  int     true   "首次出版年份(>=0)"
// @Param        image               formData  file    false  "封面图片"
// @Success      200 {object} dto.BookMessageResponse
// @Failure      400 {object} response.ErrorBody "ID非法"
// @Failure      404 {object} response.ErrorBody "图书不存在"
// @Failure      422 {object} response.ErrorBody "参数错误"
// @Router       /books/{id} [put]
func (h *BookHandler) ReplaceBook(c *gin.Context) {
	id, err := bookID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.ReplaceBookRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}

	upload, closeImage, err := formImage(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeImage()

	result, err := h.replaceBook.Execute(c.Request.Context(), appbook.ReplaceBookRequest{
		ID:               id,
		Title:            req.Title,
		Author:           req.Author,
		Publisher:        req.Publisher,
		FirstPublishYear: *req.FirstPublishYear,
		Image:            upload,
		BaseURL:          h.baseURL(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, msgUpdated, toBookResponse(*result))
}

// PatchBook 部分更新图书
// @Summary      部分更新图书
// @Description  只修改出现的字段;未附带图片时保留原图片
// @Tags         图书
// @Accept       multipart/form-data
// @Produce      json
// @Param        id                  path      int     true   "图书ID"
// @Param        title               formData  string  false  "标题(3-100字符)"
// @Param        author              formData  string  false  "作者(3-100字符)"
// @Param        publisher           formData  string  false  "出版社(3-100字符)"
// @Param        first_publish_year  formData  int     false  "首次出版年份(>=0)"
// @Param        image               formData  file    false  "封面图片"
// @Success      200 {object} dto.BookMessageResponse
// @Failure      400 {object} response.ErrorBody "ID非法"
// @Failure      404 {object} response.ErrorBody "图书不存在"
// @Failure      422 {object} response.ErrorBody "参数错误"
// @Router       /books/{id} [patch]
func (h *BookHandler) PatchBook(c *gin.Context) {
	id, err := bookID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.PatchBookRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}

	upload, closeImage, err := formImage(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeImage()

	result, err := h.patchBook.Execute(c.Request.Context(), appbook.PatchBookRequest{
		ID:               id,
		Title:            req.Title,
		Author:           req.Author,
		Publisher:        req.Publisher,
		FirstPublishYear: req.FirstPublishYear,
		Image:            upload,
		BaseURL:          h.baseURL(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, msgPatched, toBookResponse(*result))
}

// DeleteBook 删除图书
// @Summary      删除图书
// @Tags         图书
// @Produce      json
// @Param        id  path  int  true  "图书ID"
// @Success      200 {object} dto.BookMessageResponse
// @Failure      400 {object} response.ErrorBody "ID非法"
// @Failure      404 {object} response.ErrorBody "图书不存在"
// @Router       /books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, err := bookID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.deleteBook.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, msgDeleted, toBookResponse(*result))
}

// baseURL 图片URL前缀
func (h *BookHandler) baseURL(c *gin.Context) string {
	if h.opts.PublicBaseURL != "" {
		return h.opts.PublicBaseURL
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.SplitN(proto, ",", 2)[0]))
	}
	return scheme + "://" + c.Request.Host
}

// bookID 解析路径中的ID
func bookID(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, apperrors.ErrInvalidID.WithCause(err)
	}
	return id, nil
}

// formImage 取出可选的上传图片
// 没有图片(或不是multipart请求)时返回nil;返回的close函数总是可以调用
func formImage(c *gin.Context) (*appbook.ImageUpload, func(), error) {
	noop := func() {}

	fh, err := c.FormFile(imageField)
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return nil, noop, nil
	case err != nil:
		return nil, noop, dto.BindError(err)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, noop, apperrors.ErrBindError.WithCause(err)
	}
	return &appbook.ImageUpload{Filename: fh.Filename, Content: f}, closeFile(f), nil
}

func closeFile(f multipart.File) func() {
	return func() { _ = f.Close() }
}

func toBookResponse(b appbook.BookDTO) dto.BookResponse {
	return dto.BookResponse{
		ID:               b.ID,
		Title:            b.Title,
		Author:           b.Author,
		Publisher:        b.Publisher,
		FirstPublishYear: b.FirstPublishYear,
		ImageURL:         b.ImageURL,
		ImageFilename:    b.ImageFilename,
	}
}
