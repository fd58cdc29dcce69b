// bookevents 订阅图书变更事件并写入审计日志
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/xiebiao/bookcatalog/internal/infrastructure/config"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/event"
	"github.com/xiebiao/bookcatalog/pkg/logger"
	"github.com/xiebiao/bookcatalog/pkg/mq"
)

func main() {
	_ = godotenv.Load(".env.local")

	// 1. 配置
	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("加载配置失败", zap.Error(err))
	}

	// 2. 日志
	log, err := logger.New(logger.Options{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: cfg.Log.EnableCaller,
	})
	if err != nil {
		zap.L().Fatal("初始化日志失败", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()

	// 3. 订阅 book.* 上的全部变更
	consumer, err := mq.NewConsumer(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.ExchangeType, cfg.MQ.Queue, []string{"book.*"}, log)
	if err != nil {
		log.Fatal("连接消息队列失败", zap.Error(err))
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("book event consumer started",
		zap.String("exchange", cfg.MQ.Exchange),
		zap.String("queue", cfg.MQ.Queue),
	)

	audit := event.NewAuditLogger(log)
	if err := consumer.Consume(ctx, audit.Handle); err != nil && ctx.Err() == nil {
		log.Error("consume stopped", zap.Error(err))
		return
	}
	log.Info("book event consumer stopped")
}
