package book

import (
	"strconv"
	"strings"
)

// FirstID 目录中第一本书的ID，之后按插入顺序递增，删除后不复用
const FirstID = 1000

// Book 图书实体(目录中唯一的聚合)
// 设计说明:
// 1. ID由仓储在插入时分配,调用方不能指定
// 2. FirstPublishYear为nil表示出版年份未知(只会出现在种子数据中)
// 3. Image为nil表示没有上传图片;图片的存储键与原始文件名分开保存,
//    原始文件名只用于展示,不参与文件路径
type Book struct {
	ID               int
	Title            string
	Author           string
	Publisher        string
	FirstPublishYear *int
	Image            *Image
}

// Image 图书关联的图片
type Image struct {
	Key      string // 存储键(生成的uuid+扩展名)
	Filename string // 上传时的原始文件名
	URL      string // 对外可访问的绝对URL
}

// NewBook 创建新图书(工厂方法)
// 参数需调用方先通过ValidateFields校验
func NewBook(title, author, publisher string, year int) *Book {
	return &Book{
		Title:            title,
		Author:           author,
		Publisher:        publisher,
		FirstPublishYear: &year,
	}
}

// Matches 判断图书是否匹配搜索词
// 规则:小写后的query是标题、作者、出版社任一小写形式的子串,或是出版年份文本的子串
// query需调用方先转为小写;年份未知的图书不参与年份匹配
func (b *Book) Matches(query string) bool {
	if strings.Contains(strings.ToLower(b.Title), query) ||
		strings.Contains(strings.ToLower(b.Author), query) ||
		strings.Contains(strings.ToLower(b.Publisher), query) {
		return true
	}
	if b.FirstPublishYear != nil {
		return strings.Contains(strconv.Itoa(*b.FirstPublishYear), query)
	}
	return false
}

// Replace 全量覆盖图书字段(PUT语义)
// img为nil时清空已有图片
func (b *Book) Replace(title, author, publisher string, year int, img *Image) {
	b.Title = title
	b.Author = author
	b.Publisher = publisher
	b.FirstPublishYear = &year
	b.Image = img
}

// ApplyPatch 只覆盖Patch中提供的字段(PATCH语义)
// img为nil时保留已有图片
func (b *Book) ApplyPatch(p Patch, img *Image) {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Author != nil {
		b.Author = *p.Author
	}
	if p.Publisher != nil {
		b.Publisher = *p.Publisher
	}
	if p.FirstPublishYear != nil {
		year := *p.FirstPublishYear
		b.FirstPublishYear = &year
	}
	if img != nil {
		b.Image = img
	}
}

// Clone 深拷贝(仓储对外只返回副本,避免调用方绕过锁修改目录)
func (b *Book) Clone() *Book {
	if b == nil {
		return nil
	}
	cp := *b
	if b.FirstPublishYear != nil {
		year := *b.FirstPublishYear
		cp.FirstPublishYear = &year
	}
	if b.Image != nil {
		img := *b.Image
		cp.Image = &img
	}
	return &cp
}

// ImageKey 返回图片存储键,没有图片时为空
func (b *Book) ImageKey() string {
	if b.Image == nil {
		return ""
	}
	return b.Image.Key
}

// Patch 部分更新请求
// nil表示"未提供,保持不变";非nil表示"覆盖为该值"
type Patch struct {
	Title            *string
	Author           *string
	Publisher        *string
	FirstPublishYear *int
}

// IsEmpty 没有提供任何字段
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Author == nil && p.Publisher == nil && p.FirstPublishYear == nil
}
