// Package config 提供应用配置管理功能
package config

import (
	proofconfig "github.com/weisyn/proofsql/internal/config/proof"
	"github.com/weisyn/proofsql/pkg/interfaces/config"
	"github.com/weisyn/proofsql/pkg/types"
	"go.uber.org/fx"
)

// ConfigParams 定义配置模块的依赖参数
type ConfigParams struct {
	fx.In

	AppOptions config.AppOptions `optional:"true"`
}

// ConfigOutput 定义配置模块的输出结构
type ConfigOutput struct {
	fx.Out

	Provider config.Provider
}

// Module 返回配置模块
func Module() fx.Option {
	return fx.Module("config",
		fx.Provide(
			ProvideConfigServices,
			func(provider config.Provider) *proofconfig.ProofOptions {
				return provider.GetProof()
			},
		),
	)
}

// ProvideConfigServices 提供配置服务
func ProvideConfigServices(params ConfigParams) (ConfigOutput, error) {
	var appConfig *types.AppConfig
	if params.AppOptions != nil {
		appConfig = params.AppOptions.GetAppConfig()
	}
	return ConfigOutput{Provider: NewProvider(appConfig)}, nil
}

// staticAppOptions 固定的应用配置
type staticAppOptions struct {
	appConfig *types.AppConfig
}

func (s staticAppOptions) GetAppConfig() *types.AppConfig {
	return s.appConfig
}

// NewAppOptions 用已加载的配置创建 AppOptions
func NewAppOptions(appConfig *types.AppConfig) config.AppOptions {
	return staticAppOptions{appConfig: appConfig}
}
