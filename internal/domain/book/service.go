package book

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
)

// 字段校验规则
const (
	MinTextLen = 3
	MaxTextLen = 100
	MinYear    = 0
)

// Fields 创建/全量更新时的完整字段
type Fields struct {
	Title            string
	Author           string
	Publisher        string
	FirstPublishYear int
}

// SearchResult 搜索结果(分页后)
type SearchResult struct {
	Books []*Book
	Skip  int // 实际使用的skip
	Limit int // 实际使用的limit
}

// Service 图书领域服务接口
// 设计说明:
// 1. 领域服务封装业务规则校验(字段长度、年份)与搜索分页规则
// 2. HTTP层已做一次绑定校验,这里再校验一次,保证非HTTP调用方也遵守规则
// 3. 不依赖具体的Repository实现(依赖倒置)
type Service interface {
	// Search 搜索并分页
	// skip为nil时为0;limit为nil时为匹配总数(不截断);skip超出范围时返回空列表
	Search(ctx context.Context, query string, skip, limit *int) (*SearchResult, error)

	// GetBook 根据ID获取图书
	GetBook(ctx context.Context, id int) (*Book, error)

	// CreateBook 校验并创建图书,img可以为nil
	CreateBook(ctx context.Context, f Fields, img *Image) (*Book, error)

	// ReplaceBook 全量更新;img为nil时清空图片
	ReplaceBook(ctx context.Context, id int, f Fields, img *Image) (before, after *Book, err error)

	// PatchBook 部分更新;img为nil时保留图片
	PatchBook(ctx context.Context, id int, p Patch, img *Image) (before, after *Book, err error)

	// DeleteBook 删除图书并返回被删除的记录
	DeleteBook(ctx context.Context, id int) (*Book, error)

	// SeedBooks 批量导入种子数据(不做字段校验,种子数据可能含未知年份)
	SeedBooks(ctx context.Context, books []*Book) error

	// CountBooks 目录中的图书数量
	CountBooks(ctx context.Context) (int, error)
}

// service 领域服务实现
type service struct {
	repo Repository
}

// NewService 创建图书领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Search 搜索图书
func (s *service) Search(ctx context.Context, query string, skip, limit *int) (*SearchResult, error) {
	matches, err := s.repo.Search(ctx, strings.ToLower(query))
	if err != nil {
		return nil, err
	}

	page, effSkip, effLimit := Paginate(matches, skip, limit)
	return &SearchResult{Books: page, Skip: effSkip, Limit: effLimit}, nil
}

// GetBook 根据ID获取图书
func (s *service) GetBook(ctx context.Context, id int) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

// CreateBook 创建图书
func (s *service) CreateBook(ctx context.Context, f Fields, img *Image) (*Book, error) {
	// 1. 字段校验
	if err := ValidateFields(f); err != nil {
		return nil, err
	}

	// 2. 创建实体
	b := NewBook(f.Title, f.Author, f.Publisher, f.FirstPublishYear)
	b.Image = img

	// 3. 持久化(仓储分配ID)
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// ReplaceBook 全量更新
func (s *service) ReplaceBook(ctx context.Context, id int, f Fields, img *Image) (*Book, *Book, error) {
	if err := ValidateFields(f); err != nil {
		return nil, nil, err
	}

	return s.repo.Update(ctx, id, func(b *Book) error {
		b.Replace(f.Title, f.Author, f.Publisher, f.FirstPublishYear, img)
		return nil
	})
}

// PatchBook 部分更新
func (s *service) PatchBook(ctx context.Context, id int, p Patch, img *Image) (*Book, *Book, error) {
	if err := ValidatePatch(p); err != nil {
		return nil, nil, err
	}

	return s.repo.Update(ctx, id, func(b *Book) error {
		b.ApplyPatch(p, img)
		return nil
	})
}

// DeleteBook 删除图书
func (s *service) DeleteBook(ctx context.Context, id int) (*Book, error) {
	return s.repo.Delete(ctx, id)
}

// SeedBooks 导入种子数据
func (s *service) SeedBooks(ctx context.Context, books []*Book) error {
	return s.repo.Seed(ctx, books)
}

// CountBooks 图书数量
func (s *service) CountBooks(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// =========================================
// 辅助函数:业务规则校验与分页
// =========================================

// ValidateFields 校验完整字段
func ValidateFields(f Fields) error {
	var details []apperrors.FieldDetail
	details = appendTextDetail(details, "title", f.Title)
	details = appendTextDetail(details, "author", f.Author)
	details = appendTextDetail(details, "publisher", f.Publisher)
	details = appendYearDetail(details, f.FirstPublishYear)

	if len(details) > 0 {
		return ErrInvalidBook.WithDetails(details...)
	}
	return nil
}

// ValidatePatch 只校验提供了的字段
func ValidatePatch(p Patch) error {
	var details []apperrors.FieldDetail
	if p.Title != nil {
		details = appendTextDetail(details, "title", *p.Title)
	}
	if p.Author != nil {
		details = appendTextDetail(details, "author", *p.Author)
	}
	if p.Publisher != nil {
		details = appendTextDetail(details, "publisher", *p.Publisher)
	}
	if p.FirstPublishYear != nil {
		details = appendYearDetail(details, *p.FirstPublishYear)
	}

	if len(details) > 0 {
		return ErrInvalidBook.WithDetails(details...)
	}
	return nil
}

// 长度按字符(rune)计算
func appendTextDetail(details []apperrors.FieldDetail, field, value string) []apperrors.FieldDetail {
	n := utf8.RuneCountInString(value)
	if n < MinTextLen || n > MaxTextLen {
		return append(details, apperrors.FieldDetail{
			Field:   field,
			Message: fmt.Sprintf("must be between %d and %d characters", MinTextLen, MaxTextLen),
		})
	}
	return details
}

func appendYearDetail(details []apperrors.FieldDetail, year int) []apperrors.FieldDetail {
	if year < MinYear {
		return append(details, apperrors.FieldDetail{
			Field:   "first_publish_year",
			Message: fmt.Sprintf("must be greater than or equal to %d", MinYear),
		})
	}
	return details
}

// Paginate 对匹配结果做连续切片
// 返回分页结果以及实际使用的skip/limit
func Paginate(matches []*Book, skip, limit *int) ([]*Book, int, int) {
	effSkip := 0
	if skip != nil && *skip > 0 {
		effSkip = *skip
	}
	effLimit := len(matches)
	if limit != nil {
		effLimit = *limit
	}

	if effSkip >= len(matches) || effLimit <= 0 {
		return []*Book{}, effSkip, effLimit
	}

	end := effSkip + effLimit
	if end > len(matches) {
		end = len(matches)
	}
	return matches[effSkip:end], effSkip, effLimit
}
