// Package tracing 提供基于OpenTelemetry的链路追踪
//
// 目录服务里的一条请求链路：
//
//	Trace: PUT /books/:id
//	├─ Span1: HTTP处理（middleware.Tracing创建）
//	│  ├─ Span2: book.Replace用例
//	│  │  ├─ Span3: 保存图片
//	│  │  └─ Span4: 写入目录
//	│  └─ Span5: 发布book.updated事件
//
// 启动时的种子加载也是一条独立的Trace（catalog.Seed → openlibrary.Search）。
//
// # 使用示例
//
//	shutdown, err := tracing.Init(ctx, tracing.Options{
//	    Enabled:     true,
//	    ServiceName: "bookcatalog",
//	    Endpoint:    "localhost:4317",
//	    Insecure:    true,
//	})
//	if err != nil {
//	    return err
//	}
//	defer shutdown(context.Background())
//
//	ctx, span := tracing.StartSpan(ctx, "bookcatalog", "book.Create")
//	defer span.End()
//
// Enabled为false时不创建exporter，全局TracerProvider保持为no-op，
// StartSpan返回的Span不会被记录，业务代码不需要区分两种情况。
package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// Options 追踪配置
type Options struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	// Endpoint OTLP gRPC端点（host:port），如localhost:4317
	Endpoint string
	// Insecure 禁用TLS（本地Jaeger/Collector）
	Insecure bool
	// SampleRatio 采样率，<=0或>=1时全部采样
	SampleRatio float64
}

// ShutdownFunc 关闭函数，程序退出前调用以刷新未发送的Span
type ShutdownFunc func(ctx context.Context) error

func noopShutdown(context.Context) error { return nil }

// Init 初始化全局TracerProvider与上下文传播器
//
// 1. Enabled=false：只设置传播器，返回空的关闭函数
// 2. 创建OTLP gRPC exporter（不阻塞等待连接，Collector不可用时Span会被丢弃）
// 3. 创建Resource与TracerProvider并设置为全局
func Init(ctx context.Context, opts Options) (ShutdownFunc, error) {
	setPropagator()

	if !opts.Enabled {
		return noopShutdown, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exporterOpts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(opts.Endpoint),
	}
	if opts.Insecure {
		exporterOpts = append(exporterOpts, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptracegrpc.New(ctx, exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("创建OTLP exporter失败: %w", err)
	}

	tp, err := NewProvider(ctx, opts, exporter)
	if err != nil {
		return nil, err
	}
	otel.SetTracerProvider(tp)

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return tp.Shutdown(ctx)
	}, nil
}

// NewProvider 用给定exporter创建TracerProvider（不设置为全局）
func NewProvider(ctx context.Context, opts Options, exporter sdktrace.SpanExporter) (*sdktrace.TracerProvider, error) {
	attrs := []resource.Option{
		resource.WithAttributes(semconv.ServiceName(opts.ServiceName)),
	}
	if opts.ServiceVersion != "" {
		attrs = append(attrs, resource.WithAttributes(semconv.ServiceVersion(opts.ServiceVersion)))
	}

	res, err := resource.New(ctx, attrs...)
	if err != nil {
		return nil, fmt.Errorf("创建资源属性失败: %w", err)
	}

	sampler := sdktrace.AlwaysSample()
	if opts.SampleRatio > 0 && opts.SampleRatio < 1 {
		sampler = sdktrace.ParentBased(sdktrace.TraceIDRatioBased(opts.SampleRatio))
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sampler),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	), nil
}

func setPropagator() {
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)
}

// StartSpan 从全局Provider创建Span
//
// 必须使用返回的ctx调用下游函数，否则无法构建调用树。
func StartSpan(ctx context.Context, tracerName, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, spanName, opts...)
}

// RecordError 在Span上记录错误并标记失败，err为nil时什么都不做
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// ExtractTraceID 从Context提取TraceID（用于关联日志）
func ExtractTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.SpanContext().IsValid() {
		return ""
	}
	return span.SpanContext().TraceID().String()
}

// ExtractSpanID 从Context提取SpanID
func ExtractSpanID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.SpanContext().IsValid() {
		return ""
	}
	return span.SpanContext().SpanID().String()
}
