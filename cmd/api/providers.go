package main

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appbook "github.com/xiebiao/bookcatalog/internal/application/book"
	"github.com/xiebiao/bookcatalog/internal/domain/book"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/config"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/event"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/openlibrary"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/storage/local"
	"github.com/xiebiao/bookcatalog/internal/interface/http/handler"
	"github.com/xiebiao/bookcatalog/internal/interface/http/router"
	"github.com/xiebiao/bookcatalog/pkg/logger"
	"github.com/xiebiao/bookcatalog/pkg/mq"
	"github.com/xiebiao/bookcatalog/pkg/tracing"
)

// App 组装完成的应用
type App struct {
	Config *config.Config
	Logger *zap.Logger
	Engine *gin.Engine
	Seed   *appbook.SeedCatalogUseCase
}

func newApp(cfg *config.Config, log *zap.Logger, engine *gin.Engine, seed *appbook.SeedCatalogUseCase) *App {
	return &App{
		Config: cfg,
		Logger: log,
		Engine: engine,
		Seed:   seed,
	}
}

// ========================================
// Custom Providers
// ========================================
// 构造函数参数需要从Config中提取时,在这里写Provider

// provideLogger 创建Logger并替换zap全局Logger
func provideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	log, err := logger.New(logger.Options{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: cfg.Log.EnableCaller,
	})
	if err != nil {
		return nil, nil, err
	}
	restore := logger.ReplaceGlobals(log)
	return log, func() {
		_ = log.Sync()
		restore()
	}, nil
}

// provideTracing 初始化链路追踪,cleanup时刷新未发送的Span
func provideTracing(cfg *config.Config, log *zap.Logger) (tracing.ShutdownFunc, func(), error) {
	shutdown, err := tracing.Init(context.Background(), tracing.Options{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		return nil, nil, err
	}
	return shutdown, func() {
		if err := shutdown(context.Background()); err != nil {
			log.Warn("tracing shutdown failed", zap.Error(err))
		}
	}, nil
}

// provideImageStore 本地图片存储
func provideImageStore(cfg *config.Config) (*local.ImageStore, error) {
	return local.NewImageStore(cfg.Storage.ImageDir, cfg.Storage.URLPrefix)
}

// provideEventPublisher 启用MQ时发布到RabbitMQ,否则不发布
func provideEventPublisher(cfg *config.Config, log *zap.Logger) (book.EventPublisher, func(), error) {
	if !cfg.MQ.Enabled {
		return event.NoopPublisher{}, func() {}, nil
	}
	pub, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.ExchangeType, log)
	if err != nil {
		return nil, nil, fmt.Errorf("连接消息队列失败: %w", err)
	}
	return event.NewMQPublisher(pub), func() {
		if err := pub.Close(); err != nil {
			log.Warn("close mq publisher failed", zap.Error(err))
		}
	}, nil
}

// provideSearchClient OpenLibrary客户端
func provideSearchClient(cfg *config.Config, log *zap.Logger) *openlibrary.Client {
	return openlibrary.NewClient(openlibrary.Options{
		BaseURL:    cfg.Seed.BaseURL,
		UserAgent:  cfg.Seed.UserAgent,
		Timeout:    cfg.Seed.Timeout,
		RPS:        cfg.Seed.RPS,
		MaxRetries: cfg.Seed.MaxRetries,
	}, log)
}

// provideSeedCache 启用缓存时连接Redis;连接失败只降级,不阻止启动
func provideSeedCache(cfg *config.Config, log *zap.Logger) (appbook.SeedCache, func()) {
	if !cfg.Seed.CacheEnabled {
		return nil, func() {}
	}
	client, err := redis.NewClient(context.Background(), cfg.Redis, log)
	if err != nil {
		log.Warn("seed cache disabled", zap.Error(err))
		return nil, func() {}
	}
	return redis.NewSeedCache(client), func() {
		if err := client.Close(); err != nil {
			log.Warn("close redis client failed", zap.Error(err))
		}
	}
}

// provideSeedUseCase 种子导入用例
func provideSeedUseCase(cfg *config.Config, svc book.Service, client appbook.SearchClient, cache appbook.SeedCache, log *zap.Logger) *appbook.SeedCatalogUseCase {
	return appbook.NewSeedCatalogUseCase(svc, client, cache, cfg.Seed.CacheTTL, log)
}

// provideHandlerOptions 处理器配置
func provideHandlerOptions(cfg *config.Config) handler.Options {
	return handler.Options{PublicBaseURL: cfg.Server.PublicBaseURL}
}

// provideGinEngine 创建并配置Gin引擎
// tracing参数只用于保证追踪在路由之前初始化
func provideGinEngine(
	cfg *config.Config,
	log *zap.Logger,
	_ tracing.ShutdownFunc,
	images *local.ImageStore,
	books *handler.BookHandler,
	health *handler.HealthHandler,
) *gin.Engine {
	return router.New(router.Options{
		Mode:           cfg.Server.Mode,
		MaxUploadSize:  cfg.Server.MaxUploadSize,
		CORS:           cfg.Server.CORS,
		ImageDir:       images.Dir(),
		ImageURLPrefix: images.URLPrefix(),
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsPath:    cfg.Metrics.Path,
		SwaggerEnabled: cfg.Server.Mode != gin.ReleaseMode,
	}, log, books, health)
}
