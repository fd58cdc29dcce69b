package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError 自定义应用错误
// 设计说明：
// 1. Code是业务错误码，HTTP状态码由HTTPStatus(Code)推导
// 2. Message是返回给调用方的提示信息
// 3. Err是内部错误，仅记录到日志，不返回给客户端（防止泄露敏感信息）
// 4. Details用于字段级校验错误
type AppError struct {
	Code    int           `json:"code"`
	Message string        `json:"message"`
	Details []FieldDetail `json:"details,omitempty"`
	Err     error         `json:"-"`
}

// FieldDetail 字段级错误明细
type FieldDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按错误码比较，预定义错误被Wrap/WithDetails复制后仍可用errors.Is判断
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// HTTPStatus 返回该错误对应的HTTP状态码
func (e *AppError) HTTPStatus() int {
	return HTTPStatus(e.Code)
}

// New 创建新的AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装系统错误（如文件系统错误、网络错误）
// 用途：将底层错误转换为业务错误，隐藏实现细节
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// WithCause 复制预定义错误并附加内部原因
func (e *AppError) WithCause(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// WithDetails 复制预定义错误并附加字段明细
func (e *AppError) WithDetails(details ...FieldDetail) *AppError {
	cp := *e
	cp.Details = append([]FieldDetail(nil), details...)
	return &cp
}

// =========================================
// 错误码定义
// =========================================
// 规范：
// - 4xxxx: 客户端错误（参数错误、资源不存在）
// - 5xxxx: 服务端错误（文件系统异常、外部服务调用失败）

const (
	// 系统级错误码（50000-50099）
	ErrCodeInternal       = 50000 // 内部错误
	ErrCodeStorageError   = 50001 // 图片存储错误
	ErrCodeRedisError     = 50002 // Redis错误
	ErrCodeUpstreamError  = 50003 // 外部服务（OpenLibrary）错误
	ErrCodeUpstreamFormat = 50004 // 外部服务返回数据格式错误

	// 请求错误（40000-40099）
	ErrCodeBadRequest = 40000 // 请求格式错误(通用)
	ErrCodeInvalidID  = 40001 // 路径ID非法

	// 资源错误（40400-40499）
	ErrCodeNotFound     = 40400 // 资源不存在(通用)
	ErrCodeBookNotFound = 40402 // 图书不存在

	// 参数错误（40900-40999）
	ErrCodeInvalidParams = 40900 // 参数错误
	ErrCodeBindError     = 40901 // 参数绑定失败
	ErrCodeFileTooLarge  = 40902 // 上传文件过大
)

// HTTPStatus 业务错误码 → HTTP状态码
func HTTPStatus(code int) int {
	switch {
	case code >= 40400 && code < 40500:
		return http.StatusNotFound
	case code == ErrCodeFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case code >= 40900 && code < 41000:
		return http.StatusUnprocessableEntity
	case code >= 40000 && code < 50000:
		return http.StatusBadRequest
	case code == ErrCodeUpstreamError || code == ErrCodeUpstreamFormat:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// =========================================
// 预定义错误（避免每次都New）
// =========================================

var (
	// 系统错误
	ErrInternal     = New(ErrCodeInternal, "Internal server error")
	ErrStorageError = New(ErrCodeStorageError, "Failed to store image")
	ErrRedisError   = New(ErrCodeRedisError, "Cache service error")

	// 请求错误
	ErrBadRequest = New(ErrCodeBadRequest, "Bad request")
	ErrInvalidID  = New(ErrCodeInvalidID, "Invalid book id")

	// 资源不存在
	ErrNotFound     = New(ErrCodeNotFound, "Not found")
	ErrBookNotFound = New(ErrCodeBookNotFound, "Book not found")

	// 参数错误
	ErrInvalidParams = New(ErrCodeInvalidParams, "Validation failed")
	ErrBindError     = New(ErrCodeBindError, "Malformed request parameters")
	ErrFileTooLarge  = New(ErrCodeFileTooLarge, "Uploaded file is too large")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "Internal server error")
}
