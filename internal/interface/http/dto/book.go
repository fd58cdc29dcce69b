package dto

// SearchBooksRequest GET /books查询参数
// skip/limit未提供时为nil(limit默认不截断)
type SearchBooksRequest struct {
	Q     string `form:"q" binding:"required,min=3,max=100" example:"python"`
	Skip  *int   `form:"skip" binding:"omitnil,min=0,max=100" example:"0"`
	Limit *int   `form:"limit" binding:"omitnil,min=0,max=100" example:"10"`
}

// CreateBookRequest POST /books表单(也接受JSON)
// 年份允许为0,所以用指针区分"未提供"
type CreateBookRequest struct {
	Title            string `form:"title" json:"title" binding:"required,min=3,max=100" example:"Clean Code"`
	Author           string `form:"author" json:"author" binding:"required,min=3,max=100" example:"Robert Martin"`
	Publisher        string `form:"publisher" json:"publisher" binding:"required,min=3,max=100" example:"Prentice Hall"`
	FirstPublishYear *int   `form:"first_publish_year" json:"first_publish_year" binding:"required,min=0" example:"2008"`
}

// ReplaceBookRequest PUT /books/:id表单,字段要求与创建相同
type ReplaceBookRequest = CreateBookRequest

// PatchBookRequest PATCH /books/:id表单
// 未出现的字段为nil,表示不修改;出现的字段按创建时的规则校验
type PatchBookRequest struct {
	Title            *string `form:"title" json:"title" binding:"omitnil,min=3,max=100" example:"Clean Code"`
	Author           *string `form:"author" json:"author" binding:"omitnil,min=3,max=100" example:"Robert Martin"`
	Publisher        *string `form:"publisher" json:"publisher" binding:"omitnil,min=3,max=100" example:"Prentice Hall"`
	FirstPublishYear *int    `form:"first_publish_year" json:"first_publish_year" binding:"omitnil,min=0" example:"2009"`
}

// BookResponse 图书
type BookResponse struct {
	ID               int     `json:"id" example:"1058"`
	Title            string  `json:"title" example:"Clean Code"`
	Author           string  `json:"author" example:"Robert Martin"`
	Publisher        string  `json:"publisher" example:"Prentice Hall"`
	FirstPublishYear *int    `json:"first_publish_year" example:"2008"`
	ImageURL         *string `json:"image_url" example:"http://localhost:8080/images/3f2a9c1e-6b7d-4e0a-9a55-1d2c3b4a5e6f.png"`
	ImageFilename    *string `json:"image_filename,omitempty" example:"cover.png"`
}

// SearchBooksResponse 搜索结果
type SearchBooksResponse struct {
	Query   string         `json:"query" example:"python"`
	Count   int            `json:"count" example:"10"`
	Results []BookResponse `json:"results"`
	Skip    int            `json:"skip" example:"0"`
	Limit   int            `json:"limit" example:"10"`
}

// BookMessageResponse PUT/PATCH/DELETE响应
type BookMessageResponse struct {
	Message string       `json:"message" example:"Book updated successfully"`
	Book    BookResponse `json:"Book"`
}

// PingResponse 健康检查
type PingResponse struct {
	Message string `json:"message" example:"pong"`
	Status  string `json:"status" example:"healthy"`
	Books   int    `json:"books" example:"58"`
}
