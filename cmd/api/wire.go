//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// Wire工作流程：
// Step 1: 编写wire.go（本文件），定义Providers和Injector
// Step 2: 运行 `wire gen ./cmd/api`
// Step 3: Wire生成wire_gen.go，包含完整的依赖创建代码
// Step 4: main.go调用wire_gen.go中的InitializeApp()

package main

import (
	"github.com/google/wire"

	appbook "github.com/xiebiao/bookcatalog/internal/application/book"
	"github.com/xiebiao/bookcatalog/internal/domain/book"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/config"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/openlibrary"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/persistence/memory"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/storage/local"
	"github.com/xiebiao/bookcatalog/internal/interface/http/handler"
)

// infrastructureSet 基础设施层依赖
// 包含：配置、日志、追踪、图片存储、事件发布、外部搜索、种子缓存
var infrastructureSet = wire.NewSet(
	config.Load,
	provideLogger,
	provideTracing,
	provideImageStore,
	wire.Bind(new(book.ImageStore), new(*local.ImageStore)),
	provideEventPublisher,
	provideSearchClient,
	wire.Bind(new(appbook.SearchClient), new(*openlibrary.Client)),
	provideSeedCache,
)

// repositorySet 仓储层依赖
var repositorySet = wire.NewSet(
	memory.NewBookRepository,
)

// domainSet 领域层依赖
var domainSet = wire.NewSet(
	book.NewService,
)

// applicationSet 应用层依赖
var applicationSet = wire.NewSet(
	appbook.NewSearchBooksUseCase,
	appbook.NewCreateBookUseCase,
	appbook.NewReplaceBookUseCase,
	appbook.NewPatchBookUseCase,
	appbook.NewDeleteBookUseCase,
	provideSeedUseCase,
)

// handlerSet HTTP处理器依赖
var handlerSet = wire.NewSet(
	provideHandlerOptions,
	handler.NewBookHandler,
	handler.NewHealthHandler,
)

// InitializeApp 初始化整个应用
// 返回的cleanup按创建的逆序关闭Redis、MQ、追踪和日志
func InitializeApp() (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		handlerSet,
		provideGinEngine,
		newApp,
	)
	return nil, nil, nil
}
