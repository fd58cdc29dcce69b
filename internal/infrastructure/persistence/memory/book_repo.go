// Package memory 内存目录存储
//
// 目录是进程级的可变状态,进程启动时由种子数据填充,进程退出时丢弃,没有持久化。
// 所有结构性修改(插入/删除/原地修改)与枚举读取之间互斥。
package memory

import (
	"context"
	"sync"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
	"github.com/xiebiao/bookcatalog/pkg/metrics"
)

// bookRepository 图书仓储实现(内存)
// 设计说明:
// 1. 实现domain/book/repository.go定义的接口
// 2. books保持插入顺序(默认列表顺序),index按ID定位
// 3. nextID只在成功插入时递增,删除不回收
// 4. 对外只返回副本
type bookRepository struct {
	mu     sync.RWMutex
	books  []*book.Book
	index  map[int]int // id → books下标
	nextID int
}

// NewBookRepository 创建内存图书仓储
func NewBookRepository() book.Repository {
	return &bookRepository{
		books:  make([]*book.Book, 0, 64),
		index:  make(map[int]int, 64),
		nextID: book.FirstID,
	}
}

// Seed 批量导入种子数据,按传入顺序分配ID
func (r *bookRepository) Seed(ctx context.Context, books []*book.Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range books {
		r.insertLocked(b)
	}
	metrics.SetGauge(metrics.CatalogBooks, float64(len(r.books)))
	return nil
}

// Create 插入图书,回填ID
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.insertLocked(b)
	metrics.SetGauge(metrics.CatalogBooks, float64(len(r.books)))
	return nil
}

func (r *bookRepository) insertLocked(b *book.Book) {
	b.ID = r.nextID
	r.nextID++

	r.index[b.ID] = len(r.books)
	r.books = append(r.books, b.Clone())
}

// FindByID 根据ID查找图书
func (r *bookRepository) FindByID(ctx context.Context, id int) (*book.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	return r.books[i].Clone(), nil
}

// Update 在写锁内修改图书
// mutate作用在副本上,成功后才替换目录中的记录
func (r *bookRepository) Update(ctx context.Context, id int, mutate func(b *book.Book) error) (*book.Book, *book.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[id]
	if !ok {
		return nil, nil, book.ErrBookNotFound
	}

	before := r.books[i]
	working := before.Clone()
	if err := mutate(working); err != nil {
		return nil, nil, err
	}
	// ID不允许被修改
	working.ID = id

	r.books[i] = working
	return before.Clone(), working.Clone(), nil
}

// Delete 删除图书
// 删除后重建被移动元素的下标;其余图书的ID不受影响
func (r *bookRepository) Delete(ctx context.Context, id int) (*book.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[id]
	if !ok {
		return nil, book.ErrBookNotFound
	}

	removed := r.books[i]
	copy(r.books[i:], r.books[i+1:])
	r.books[len(r.books)-1] = nil
	r.books = r.books[:len(r.books)-1]

	delete(r.index, id)
	for j := i; j < len(r.books); j++ {
		r.index[r.books[j].ID] = j
	}

	metrics.SetGauge(metrics.CatalogBooks, float64(len(r.books)))
	return removed, nil
}

// Search 按插入顺序返回匹配的图书
// query需为小写;为空时返回全部
func (r *bookRepository) Search(ctx context.Context, query string) ([]*book.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]*book.Book, 0)
	for _, b := range r.books {
		if query == "" || b.Matches(query) {
			results = append(results, b.Clone())
		}
	}
	return results, nil
}

// Count 图书数量
func (r *bookRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.books), nil
}
