package app

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/weisyn/proofsql/pkg/interfaces/config"
	"github.com/weisyn/proofsql/pkg/types"
)

// Option 应用程序选项函数类型
type Option func(*options)

// options 应用程序选项
// 实现config.AppOptions接口
type options struct {
	// 配置文件路径
	configFilePath string

	// 嵌入的配置内容（优先级高于configFilePath）
	embeddedConfig []byte

	// 用户配置
	appConfig *types.AppConfig
}

// 编译时校验options是否实现了config.AppOptions接口
var _ config.AppOptions = (*options)(nil)

// WithConfigFile 设置配置文件路径
func WithConfigFile(configPath string) Option {
	return func(o *options) {
		o.configFilePath = configPath
	}
}

// WithEmbeddedConfig 设置嵌入的配置内容（优先级高于WithConfigFile）
func WithEmbeddedConfig(configBytes []byte) Option {
	return func(o *options) {
		o.embeddedConfig = configBytes
	}
}

// WithAppConfig 直接使用已构造的配置（测试使用）
func WithAppConfig(appConfig *types.AppConfig) Option {
	return func(o *options) {
		o.appConfig = appConfig
	}
}

// newOptions 创建选项并加载配置
//
// 🔧 零值陷阱：配置文件中的字段都是指针，
// 省略的字段由各配置模块的默认值补齐，显式写出的零值会被采用。
func newOptions(opts ...Option) (*options, error) {
	o := &options{appConfig: &types.AppConfig{}}
	for _, opt := range opts {
		opt(o)
	}

	switch {
	case len(o.embeddedConfig) > 0:
		var cfg types.AppConfig
		if err := json.Unmarshal(o.embeddedConfig, &cfg); err != nil {
			return nil, fmt.Errorf("解析嵌入配置失败: %w", err)
		}
		o.appConfig = &cfg
	case o.configFilePath != "":
		if _, err := os.Stat(o.configFilePath); err != nil {
			return nil, fmt.Errorf("配置文件不可用: %w", err)
		}
		cfg, err := types.LoadAppConfig(o.configFilePath)
		if err != nil {
			return nil, err
		}
		o.appConfig = cfg
	}
	if o.appConfig == nil {
		o.appConfig = &types.AppConfig{}
	}
	return o, nil
}

// GetAppConfig 返回应用程序配置
// 实现config.AppOptions接口的新方法
func (o *options) GetAppConfig() *types.AppConfig {
	return o.appConfig
}
