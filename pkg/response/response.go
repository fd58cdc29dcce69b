package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
	"github.com/xiebiao/bookcatalog/pkg/logger"
)

// ErrorBody 统一错误响应结构
// 设计说明：
// 1. 成功响应直接返回业务数据（目录接口的响应形状由接口约定固定，不再套code/data信封）
// 2. 失败响应统一为{code, message, details}，HTTP状态码由业务错误码推导
// 3. Code是业务错误码，方便客户端区分"图书不存在"与"通用404"
type ErrorBody struct {
	Code    int                     `json:"code"`
	Message string                  `json:"message"`
	Details []apperrors.FieldDetail `json:"details,omitempty"`
}

// MessageBody 带提示信息的单本图书响应（PUT/PATCH/DELETE）
// 字段名"Book"是对外契约的一部分，保持大写
type MessageBody struct {
	Message string      `json:"message"`
	Book    interface{} `json:"Book"`
}

// Success 成功响应（200）
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// SuccessWithMessage 成功响应并附带提示信息
func SuccessWithMessage(c *gin.Context, message string, book interface{}) {
	c.JSON(http.StatusOK, MessageBody{
		Message: message,
		Book:    book,
	})
}

// Error 错误响应（自动处理AppError）
// 用法：
//
//	result, err := h.deleteBookUseCase.Execute(ctx, id)
//	if err != nil {
//	    response.Error(c, err)
//	    return
//	}
func Error(c *gin.Context, err error) {
	// 提取AppError
	appErr := apperrors.GetAppError(err)
	status := appErr.HTTPStatus()

	// 服务端错误记录内部原因，客户端错误只在debug级别记录
	log := logger.FromGin(c)
	if status >= http.StatusInternalServerError {
		log.Error("request failed",
			zap.Int("code", appErr.Code),
			zap.String("message", appErr.Message),
			zap.Error(appErr.Err),
		)
	} else {
		log.Debug("request rejected",
			zap.Int("code", appErr.Code),
			zap.String("message", appErr.Message),
		)
	}
	_ = c.Error(err)

	c.AbortWithStatusJSON(status, ErrorBody{
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	})
}

// ErrorWithCode 自定义错误码和消息
func ErrorWithCode(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(apperrors.HTTPStatus(code), ErrorBody{
		Code:    code,
		Message: message,
	})
}
