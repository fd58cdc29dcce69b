// Package logger 基于zap的结构化日志
//
// 使用方式：
//
//	log, err := logger.New(logger.Options{Level: "info", Format: "json", Output: "stdout"})
//	if err != nil { ... }
//	defer log.Sync()
//	logger.ReplaceGlobals(log)
//
// 请求链路中通过logger.FromGin(c)取出带request_id的子Logger。
package logger

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ginKey gin.Context中保存Logger的键
const ginKey = "logger"

type ctxKey struct{}

// Options 日志配置
type Options struct {
	Level        string // debug | info | warn | error
	Format       string // console | json
	Output       string // stdout | stderr | /path/to/file
	EnableCaller bool
}

// New 根据配置创建Logger
func New(opts Options) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(strings.ToLower(opts.Level))); err != nil {
			return nil, fmt.Errorf("无效的日志级别 %q: %w", opts.Level, err)
		}
	}

	encoding := "json"
	encoderCfg := zap.NewProductionEncoderConfig()
	if opts.Format == "console" {
		encoding = "console"
		encoderCfg = zap.NewDevelopmentEncoderConfig()
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	output := opts.Output
	if output == "" {
		output = "stdout"
	}

	cfg := zap.Config{
		Level:             level,
		Encoding:          encoding,
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{output},
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     !opts.EnableCaller,
		DisableStacktrace: true,
	}

	return cfg.Build()
}

// ReplaceGlobals 替换zap全局Logger，返回恢复函数
func ReplaceGlobals(l *zap.Logger) func() {
	return zap.ReplaceGlobals(l)
}

// SetGin 将Logger挂到gin.Context上
func SetGin(c *gin.Context, l *zap.Logger) {
	c.Set(ginKey, l)
}

// FromGin 从gin.Context取Logger，没有则返回全局Logger
func FromGin(c *gin.Context) *zap.Logger {
	if c != nil {
		if v, ok := c.Get(ginKey); ok {
			if l, ok := v.(*zap.Logger); ok {
				return l
			}
		}
	}
	return zap.L()
}

// WithContext 将Logger放入context（用于应用层）
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext 从context取Logger，没有则返回全局Logger
func FromContext(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
			return l
		}
	}
	return zap.L()
}
