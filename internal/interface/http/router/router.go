// Package router 组装Gin引擎:全局中间件、业务路由、静态图片、运维端点
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/xiebiao/bookcatalog/internal/infrastructure/config"
	"github.com/xiebiao/bookcatalog/internal/interface/http/dto"
	"github.com/xiebiao/bookcatalog/internal/interface/http/handler"
	"github.com/xiebiao/bookcatalog/internal/interface/http/middleware"
)

// Options 路由配置
type Options struct {
	Mode          string
	MaxUploadSize int64
	CORS          config.CORSConfig

	// ImageDir/ImageURLPrefix 静态图片目录及挂载路径
	ImageDir       string
	ImageURLPrefix string

	MetricsEnabled bool
	MetricsPath    string
	SwaggerEnabled bool
}

// New 创建Gin引擎
//
// 中间件执行顺序：Recovery → Tracing → Logger → Metrics → CORS → 路由匹配 → Handler
func New(opts Options, log *zap.Logger, books *handler.BookHandler, health *handler.HealthHandler) *gin.Engine {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}
	dto.RegisterValidator()

	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.Tracing())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(opts.CORS))

	// 运维端点
	r.GET("/ping", health.Ping)
	if opts.MetricsEnabled {
		r.GET(opts.MetricsPath, gin.WrapH(promhttp.Handler()))
	}
	if opts.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// 上传的图片
	if opts.ImageDir != "" && opts.ImageURLPrefix != "" {
		r.Static(opts.ImageURLPrefix, opts.ImageDir)
	}

	// 图书
	g := r.Group("/books")
	g.Use(middleware.MaxBodySize(opts.MaxUploadSize))
	{
		g.GET("", books.SearchBooks)
		g.POST("", books.CreateBook)
		g.PUT("/:id", books.ReplaceBook)
		g.PATCH("/:id", books.PatchBook)
		g.DELETE("/:id", books.DeleteBook)
	}

	return r
}
