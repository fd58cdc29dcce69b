package book

import (
	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.ErrBookNotFound

	// ErrInvalidBook 字段校验失败(具体字段见Details)
	ErrInvalidBook = apperrors.ErrInvalidParams

	// ErrImageStore 图片保存/删除失败
	ErrImageStore = apperrors.ErrStorageError

	// ErrSeedFailed 种子数据加载失败(启动时致命)
	ErrSeedFailed = apperrors.New(apperrors.ErrCodeUpstreamError, "Failed to load seed catalog")

	// ErrSeedMalformed 外部搜索接口返回数据格式错误
	ErrSeedMalformed = apperrors.New(apperrors.ErrCodeUpstreamFormat, "Malformed seed catalog response")
)
