package book

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestBook_Matches(t *testing.T) {
	b := NewBook("Clean Code", "Robert Martin", "Prentice Hall", 2008)

	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{"标题子串", "clean", true},
		{"作者子串", "martin", true},
		{"出版社子串", "prentice", true},
		{"年份子串", "200", true},
		{"不匹配", "python", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.Matches(tt.query))
		})
	}
}

func TestBook_Matches_UnknownYear(t *testing.T) {
	b := &Book{Title: "Learning Python", Author: "Unknown", Publisher: "Unknown"}

	assert.True(t, b.Matches("python"))
	assert.False(t, b.Matches("none"), "未知年份不应产生任何可匹配文本")
}

func TestBook_Replace_ClearsImage(t *testing.T) {
	b := NewBook("Old Title", "Old Author", "Old Publisher", 1999)
	b.Image = &Image{Key: "k.png", Filename: "cover.png", URL: "http://x/images/k.png"}

	b.Replace("New Title", "New Author", "New Publisher", 2001, nil)

	assert.Equal(t, "New Title", b.Title)
	assert.Equal(t, 2001, *b.FirstPublishYear)
	assert.Nil(t, b.Image)
}

func TestBook_ApplyPatch_KeepsOmittedFields(t *testing.T) {
	b := NewBook("Old Title", "Old Author", "Old Publisher", 1999)
	b.Image = &Image{Key: "k.png"}

	b.ApplyPatch(Patch{Title: strPtr("New Title")}, nil)

	assert.Equal(t, "New Title", b.Title)
	assert.Equal(t, "Old Author", b.Author)
	assert.Equal(t, "Old Publisher", b.Publisher)
	assert.Equal(t, 1999, *b.FirstPublishYear)
	require.NotNil(t, b.Image)
	assert.Equal(t, "k.png", b.Image.Key)

	b.ApplyPatch(Patch{FirstPublishYear: intPtr(0)}, &Image{Key: "n.jpg"})
	assert.Equal(t, 0, *b.FirstPublishYear, "0是合法年份,不应被当作未提供")
	assert.Equal(t, "n.jpg", b.Image.Key)
}

func TestBook_Clone_IsDeep(t *testing.T) {
	b := NewBook("Title", "Author", "Publisher", 2000)
	b.Image = &Image{Key: "a.png"}

	cp := b.Clone()
	*cp.FirstPublishYear = 1
	cp.Image.Key = "b.png"

	assert.Equal(t, 2000, *b.FirstPublishYear)
	assert.Equal(t, "a.png", b.Image.Key)
	assert.Nil(t, (*Book)(nil).Clone())
}

func TestValidateFields(t *testing.T) {
	assert.NoError(t, ValidateFields(Fields{Title: "abc", Author: "abc", Publisher: "abc", FirstPublishYear: 0}))

	err := ValidateFields(Fields{Title: "ab", Author: strings.Repeat("a", 101), Publisher: "ok!", FirstPublishYear: -1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidBook))

	appErr := apperrors.GetAppError(err)
	fields := make([]string, 0, len(appErr.Details))
	for _, d := range appErr.Details {
		fields = append(fields, d.Field)
	}
	assert.Equal(t, []string{"title", "author", "first_publish_year"}, fields)
}

func TestValidateFields_CountsRunes(t *testing.T) {
	// 3个汉字是3个字符(9个字节)
	assert.NoError(t, ValidateFields(Fields{Title: "代码整", Author: "abc", Publisher: "abc"}))
	assert.Error(t, ValidateFields(Fields{Title: "代码", Author: "abc", Publisher: "abc"}))
}

func TestValidatePatch(t *testing.T) {
	assert.NoError(t, ValidatePatch(Patch{}))
	assert.NoError(t, ValidatePatch(Patch{Publisher: strPtr("O'Reilly")}))

	err := ValidatePatch(Patch{Title: strPtr("")})
	require.Error(t, err)
	assert.Equal(t, "title", apperrors.GetAppError(err).Details[0].Field)
}

func TestPaginate(t *testing.T) {
	books := make([]*Book, 10)
	for i := range books {
		books[i] = &Book{ID: FirstID + i}
	}

	tests := []struct {
		name      string
		skip      *int
		limit     *int
		wantIDs   []int
		wantSkip  int
		wantLimit int
	}{
		{"默认不截断", nil, nil, idsFrom(1000, 10), 0, 10},
		{"skip+limit", intPtr(2), intPtr(3), []int{1002, 1003, 1004}, 2, 3},
		{"只给skip", intPtr(7), nil, []int{1007, 1008, 1009}, 7, 10},
		{"limit超出", intPtr(8), intPtr(5), []int{1008, 1009}, 8, 5},
		{"skip越界", intPtr(10), intPtr(5), []int{}, 10, 5},
		{"limit为0", intPtr(0), intPtr(0), []int{}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, skip, limit := Paginate(books, tt.skip, tt.limit)

			ids := make([]int, 0, len(page))
			for _, b := range page {
				ids = append(ids, b.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantSkip, skip)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}

func idsFrom(start, n int) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = start + i
	}
	return ids
}

// fakeRepo 只实现服务测试用到的行为
type fakeRepo struct {
	Repository
	books  []*Book
	nextID int
}

func (r *fakeRepo) Create(ctx context.Context, b *Book) error {
	if r.nextID == 0 {
		r.nextID = FirstID
	}
	b.ID = r.nextID
	r.nextID++
	r.books = append(r.books, b.Clone())
	return nil
}

func (r *fakeRepo) Search(ctx context.Context, query string) ([]*Book, error) {
	var out []*Book
	for _, b := range r.books {
		if b.Matches(query) {
			out = append(out, b.Clone())
		}
	}
	return out, nil
}

func (r *fakeRepo) Update(ctx context.Context, id int, mutate func(b *Book) error) (*Book, *Book, error) {
	for _, b := range r.books {
		if b.ID == id {
			before := b.Clone()
			if err := mutate(b); err != nil {
				return nil, nil, err
			}
			return before, b.Clone(), nil
		}
	}
	return nil, nil, ErrBookNotFound
}

func TestService_CreateAndSearch(t *testing.T) {
	svc := NewService(&fakeRepo{})
	ctx := context.Background()

	created, err := svc.CreateBook(ctx, Fields{Title: "Clean Code", Author: "Robert Martin", Publisher: "Prentice Hall", FirstPublishYear: 2008}, nil)
	require.NoError(t, err)
	assert.Equal(t, FirstID, created.ID)

	// 搜索词大小写不敏感
	res, err := svc.Search(ctx, "CLEAN", nil, nil)
	require.NoError(t, err)
	require.Len(t, res.Books, 1)
	assert.Equal(t, created.ID, res.Books[0].ID)
	assert.Equal(t, 1, res.Limit)
}

func TestService_CreateBook_Invalid(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	_, err := svc.CreateBook(context.Background(), Fields{Title: "ab", Author: "abc", Publisher: "abc"}, nil)
	assert.ErrorIs(t, err, ErrInvalidBook)
	assert.Empty(t, repo.books, "校验失败不应写入")
}

func TestService_ReplaceAndPatch(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	b, err := svc.CreateBook(ctx, Fields{Title: "Title", Author: "Author", Publisher: "Publisher", FirstPublishYear: 2000}, &Image{Key: "a.png"})
	require.NoError(t, err)

	before, after, err := svc.PatchBook(ctx, b.ID, Patch{Author: strPtr("Someone")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Author", before.Author)
	assert.Equal(t, "Someone", after.Author)
	assert.Equal(t, "a.png", after.ImageKey())

	_, after, err = svc.ReplaceBook(ctx, b.ID, Fields{Title: "Title2", Author: "Author2", Publisher: "Publisher2", FirstPublishYear: 2010}, nil)
	require.NoError(t, err)
	assert.Nil(t, after.Image)
	assert.Equal(t, 2010, *after.FirstPublishYear)

	_, _, err = svc.PatchBook(ctx, 9999, Patch{Title: strPtr("Whatever")}, nil)
	assert.ErrorIs(t, err, ErrBookNotFound)
}
