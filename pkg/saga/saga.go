// Package saga 实现按步骤执行、失败逆序补偿的本地Saga
//
// 用在"多个副作用必须一起成功"的写路径上，例如：
// 1. 先把上传的图片落盘
// 2. 再把图书记录写入目录
// 第2步失败时，第1步写下的文件必须删除，避免留下悬空的图片引用。
//
// 要点：
// - 补偿操作需要幂等（允许重试）
// - 补偿使用脱离取消信号的Context，超时后也能完成清理
package saga

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookcatalog/pkg/logger"
	"github.com/xiebiao/bookcatalog/pkg/metrics"
)

// Step 表示Saga中的一个步骤
//
// 设计要点：
// 1. Action是正向操作（如保存图片、写入记录）
// 2. Compensate是补偿操作（如删除图片、移除记录），可以为nil
type Step struct {
	Name       string                          // 步骤名称（用于日志和调试）
	Action     func(ctx context.Context) error // 正向操作
	Compensate func(ctx context.Context) error // 补偿操作
}

// Saga 表示一次Saga执行
type Saga struct {
	name     string        // Saga名称（日志字段）
	steps    []Step        // 所有步骤
	executed []Step        // 已执行的步骤（用于补偿）
	timeout  time.Duration // 整体超时时间，0表示不限制
}

// NewSaga 创建一个新的Saga
//
// 示例：
//
//	s := saga.NewSaga("create_book", 10*time.Second)
//	s.AddStep("store_image", storeImage, deleteImage)
//	s.AddStep("insert_book", insertBook, removeBook)
//	err := s.Execute(ctx)
func NewSaga(name string, timeout time.Duration) *Saga {
	return &Saga{
		name:    name,
		steps:   make([]Step, 0, 4),
		timeout: timeout,
	}
}

// AddStep 添加步骤，按添加顺序执行
func (s *Saga) AddStep(name string, action, compensate func(ctx context.Context) error) {
	s.steps = append(s.steps, Step{
		Name:       name,
		Action:     action,
		Compensate: compensate,
	})
}

// Execute 顺序执行所有步骤
//
// 任一步骤失败或超时时，逆序执行已完成步骤的补偿，并返回包装了原始错误的error
// （调用方可以用errors.As取出原始的业务错误）。
func (s *Saga) Execute(ctx context.Context) error {
	start := time.Now()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	for i, step := range s.steps {
		select {
		case <-ctx.Done():
			s.compensate(context.WithoutCancel(ctx))
			s.observe("timeout", start)
			return fmt.Errorf("saga[%s]超时: %w", s.name, ctx.Err())
		default:
		}

		if step.Action != nil {
			if err := step.Action(ctx); err != nil {
				logger.FromContext(ctx).Warn("saga step failed, compensating",
					zap.String("saga", s.name),
					zap.Int("step", i),
					zap.String("step_name", step.Name),
					zap.Error(err),
				)
				s.compensate(context.WithoutCancel(ctx))
				s.observe("failure", start)
				return fmt.Errorf("saga[%s]步骤[%d:%s]执行失败: %w", s.name, i, step.Name, err)
			}
		}

		s.executed = append(s.executed, step)
	}

	s.observe("success", start)
	return nil
}

// compensate 逆序执行已完成步骤的补偿
func (s *Saga) compensate(ctx context.Context) {
	for i := len(s.executed) - 1; i >= 0; i-- {
		step := s.executed[i]
		if step.Compensate == nil {
			continue
		}

		metrics.IncCounter(metrics.SagaCompensationsTotal)
		if err := step.Compensate(ctx); err != nil {
			// 补偿失败只记录日志，继续执行后续补偿
			logger.FromContext(ctx).Error("saga compensation failed",
				zap.String("saga", s.name),
				zap.String("step_name", step.Name),
				zap.Error(err),
			)
		}
	}

	s.executed = nil
}

func (s *Saga) observe(result string, start time.Time) {
	metrics.IncCounterVec(metrics.SagaExecutionsTotal, map[string]string{
		"saga":   s.name,
		"result": result,
	})
	metrics.ObserveHistogram(metrics.SagaExecutionDuration, time.Since(start).Seconds())
}
