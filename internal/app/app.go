// Package app 组装 proofsql 的依赖图（配置、日志、证明服务）
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"

	configmodule "github.com/weisyn/proofsql/internal/config"
	logmodule "github.com/weisyn/proofsql/internal/core/infrastructure/log"
	"github.com/weisyn/proofsql/internal/core/proof"
	"github.com/weisyn/proofsql/pkg/interfaces/config"
	"github.com/weisyn/proofsql/pkg/interfaces/infrastructure/log"
)

// startTimeout fx 启动与停止的超时
const startTimeout = 30 * time.Second

// App 已启动的应用
type App struct {
	fxApp    *fx.App
	Service  *proof.Service
	Provider config.Provider
	Logger   log.Logger
}

// New 构建并启动应用
func New(opts ...Option) (*App, error) {
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}

	a := &App{}
	a.fxApp = fx.New(
		fx.NopLogger,
		fx.Provide(func() config.AppOptions { return o }),
		configmodule.Module(),
		logmodule.Module(),
		proof.Module(),
		fx.Populate(&a.Service, &a.Provider, &a.Logger),
	)
	if err := a.fxApp.Err(); err != nil {
		return nil, fmt.Errorf("构建依赖图失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()
	if err := a.fxApp.Start(ctx); err != nil {
		return nil, fmt.Errorf("启动应用失败: %w", err)
	}
	return a, nil
}

// Stop 停止应用并刷新日志
func (a *App) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return a.fxApp.Stop(ctx)
}
