package config

import (
	"github.com/weisyn/proofsql/internal/config/log"
	"github.com/weisyn/proofsql/internal/config/proof"
	"github.com/weisyn/proofsql/internal/config/storage/badger"
	"github.com/weisyn/proofsql/internal/config/storage/memory"
	"github.com/weisyn/proofsql/pkg/interfaces/config"
	"github.com/weisyn/proofsql/pkg/types"
)

// Provider 实现配置提供者接口
type Provider struct {
	appConfig *types.AppConfig
}

// NewProvider 创建配置提供者，appConfig 可以为 nil（全部使用默认值）
func NewProvider(appConfig *types.AppConfig) config.Provider {
	if appConfig == nil {
		appConfig = &types.AppConfig{}
	}
	return &Provider{appConfig: appConfig}
}

// GetLog 获取日志配置
func (p *Provider) GetLog() *log.LogOptions {
	return log.New(p.appConfig.Log).GetOptions()
}

// GetProof 获取证明系统配置
func (p *Provider) GetProof() *proof.ProofOptions {
	return proof.New(p.appConfig.Proof).GetOptions()
}

// GetBadger 获取 BadgerDB 配置
func (p *Provider) GetBadger() *badger.BadgerOptions {
	var userConfig *types.UserBadgerConfig
	if p.appConfig.Storage != nil {
		userConfig = p.appConfig.Storage.Badger
	}
	return badger.New(userConfig).GetOptions()
}

// GetMemory 获取承诺缓存配置
func (p *Provider) GetMemory() *memory.MemoryOptions {
	var userConfig *types.UserMemoryConfig
	if p.appConfig.Storage != nil {
		userConfig = p.appConfig.Storage.Memory
	}
	return memory.New(userConfig).GetOptions()
}

// GetAppConfig 获取原始应用配置
func (p *Provider) GetAppConfig() *types.AppConfig {
	return p.appConfig
}
