// Package config provides configuration provider interfaces.
package config

import (
	logconfig "github.com/weisyn/proofsql/internal/config/log"
	proofconfig "github.com/weisyn/proofsql/internal/config/proof"
	badgerconfig "github.com/weisyn/proofsql/internal/config/storage/badger"
	memoryconfig "github.com/weisyn/proofsql/internal/config/storage/memory"
	"github.com/weisyn/proofsql/pkg/types"
)

// Provider 配置提供者接口
type Provider interface {
	// GetLog 获取日志配置
	GetLog() *logconfig.LogOptions

	// GetProof 获取证明系统配置
	GetProof() *proofconfig.ProofOptions

	// GetBadger 获取 BadgerDB 存储配置
	GetBadger() *badgerconfig.BadgerOptions

	// GetMemory 获取承诺缓存配置
	GetMemory() *memoryconfig.MemoryOptions

	// GetAppConfig 获取原始应用配置
	GetAppConfig() *types.AppConfig
}
