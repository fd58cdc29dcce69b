package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
	"github.com/xiebiao/bookcatalog/pkg/logger"
	"github.com/xiebiao/bookcatalog/pkg/response"
)

// Recovery panic恢复,记录堆栈并返回500
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.FromGin(c).Error("panic recovered",
					zap.Any("panic", r),
					zap.Stack("stack"),
				)
				response.Error(c, apperrors.ErrInternal.WithCause(fmt.Errorf("panic: %v", r)))
			}
		}()
		c.Next()
	}
}
