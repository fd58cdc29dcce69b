package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MaxBodySize 限制请求体大小,超出时读取请求体返回*http.MaxBytesError
func MaxBodySize(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
