package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	_ "github.com/xiebiao/bookcatalog/docs"
	appbook "github.com/xiebiao/bookcatalog/internal/application/book"
	"github.com/xiebiao/bookcatalog/pkg/metrics"
)

// shutdownTimeout 优雅关闭等待时间
const shutdownTimeout = 10 * time.Second

// @title           Book Catalog API
// @version         1.0
// @description     内存图书目录:启动时从OpenLibrary导入种子数据,支持搜索分页、创建、全量/部分更新、删除与封面图片上传
// @BasePath        /

// main 主程序入口
// 启动流程：环境变量 → 指标 → 依赖注入 → 种子数据(失败即退出) → HTTP服务 → 优雅关闭
func main() {
	// 1. 本地开发时从.env.local加载环境变量(文件不存在时忽略)
	_ = godotenv.Load(".env.local")

	// 2. 注册Prometheus指标(是否暴露/metrics由配置决定)
	metrics.InitMetrics()

	// 3. 依赖注入
	app, cleanup, err := InitializeApp()
	if err != nil {
		zap.L().Fatal("初始化应用失败", zap.Error(err))
	}
	defer cleanup()

	cfg, log := app.Config, app.Logger
	log.Info("config loaded",
		zap.Int("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode),
		zap.String("image_dir", cfg.Storage.ImageDir),
		zap.Bool("mq_enabled", cfg.MQ.Enabled),
		zap.Bool("seed_cache_enabled", cfg.Seed.CacheEnabled),
	)

	// 4. 导入种子数据,目录状态不确定时不对外服务
	if err := seed(app); err != nil {
		log.Error("failed to seed catalog", zap.Error(err))
		cleanup()
		os.Exit(1)
	}

	// 5. 启动HTTP服务
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      app.Engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 6. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("http server failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	log.Info("server stopped")
}

// seed 启动时导入种子数据,整体超时为单次请求超时乘以(重试次数+1)
func seed(app *App) error {
	cfg := app.Config.Seed
	timeout := cfg.Timeout * time.Duration(cfg.MaxRetries+1)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	_, err := app.Seed.Execute(ctx, appbook.SeedCatalogRequest{
		Query: cfg.Query,
		Limit: cfg.Limit,
	})
	return err
}
