package logger

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Run("json默认配置", func(t *testing.T) {
		l, err := New(Options{Level: "info", Format: "json", Output: "stderr"})
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
		assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("console + debug", func(t *testing.T) {
		l, err := New(Options{Level: "DEBUG", Format: "console", Output: "stderr", EnableCaller: true})
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("非法级别", func(t *testing.T) {
		_, err := New(Options{Level: "verbose"})
		assert.Error(t, err)
	})
}

func TestFromGin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	// 未设置时返回全局Logger
	assert.Equal(t, zap.L(), FromGin(c))

	l := zap.NewNop()
	SetGin(c, l)
	assert.Same(t, l, FromGin(c))
}

func TestFromContext(t *testing.T) {
	assert.Equal(t, zap.L(), FromContext(context.Background()))

	l := zap.NewNop()
	ctx := WithContext(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))
}
