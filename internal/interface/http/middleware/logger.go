package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xiebiao/bookcatalog/pkg/logger"
	"github.com/xiebiao/bookcatalog/pkg/tracing"
)

// RequestIDHeader 请求ID头
const RequestIDHeader = "X-Request-ID"

// slowRequestThreshold 超过该耗时记录慢请求警告
const slowRequestThreshold = 3 * time.Second

// Logger 请求日志中间件
//
// 1. 复用客户端传入的X-Request-ID,没有则生成
// 2. 带request_id的子Logger挂到gin.Context和request context上,后续层用logger.FromGin/FromContext取
// 3. 请求结束后输出一条结构化访问日志
func Logger(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header(RequestIDHeader, requestID)

		fields := []zap.Field{zap.String("request_id", requestID)}
		if traceID := tracing.ExtractTraceID(c.Request.Context()); traceID != "" {
			fields = append(fields, zap.String("trace_id", traceID))
		}
		log := base.With(fields...)
		logger.SetGin(c, log)
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), log))

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		status := c.Writer.Status()
		access := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("query", c.Request.URL.RawQuery),
			zap.String("client_ip", c.ClientIP()),
			zap.Duration("latency", latency),
			zap.Int("size", c.Writer.Size()),
		}
		if len(c.Errors) > 0 {
			access = append(access, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= 500:
			log.Error("request", access...)
		case status >= 400:
			log.Warn("request", access...)
		default:
			log.Info("request", access...)
		}

		if latency > slowRequestThreshold {
			log.Warn("slow request",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Duration("latency", latency),
			)
		}
	}
}
