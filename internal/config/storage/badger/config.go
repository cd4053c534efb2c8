package badger

import (
	configtypes "github.com/weisyn/proofsql/pkg/types"
)

// BadgerOptions BadgerDB存储配置选项
type BadgerOptions struct {
	Path         string `json:"path"`           // 数据库存储路径
	InMemory     bool   `json:"in_memory"`      // 内存模式（测试与演示）
	SyncWrites   bool   `json:"sync_writes"`    // 是否同步写入
	MemTableSize int64  `json:"mem_table_size"` // 内存表大小
}

// Config BadgerDB配置实现
type Config struct {
	options *BadgerOptions
}

// New 创建BadgerDB配置（userConfig 为 *types.UserBadgerConfig 或 nil）
func New(userConfig interface{}) *Config {
	options := createDefaultBadgerOptions()
	if userConfig != nil {
		applyUserConfig(options, userConfig)
	}
	return &Config{options: options}
}

// NewFromOptions 从BadgerOptions创建配置实现
func NewFromOptions(options *BadgerOptions) *Config {
	return &Config{options: options}
}

func createDefaultBadgerOptions() *BadgerOptions {
	return &BadgerOptions{
		Path:         defaultPath,
		InMemory:     defaultInMemory,
		SyncWrites:   defaultSyncWrites,
		MemTableSize: defaultMemTableSize,
	}
}

func applyUserConfig(options *BadgerOptions, userConfig interface{}) {
	cfg, ok := userConfig.(*configtypes.UserBadgerConfig)
	if !ok || cfg == nil {
		return
	}
	if cfg.Path != nil && *cfg.Path != "" {
		options.Path = *cfg.Path
	}
	if cfg.InMemory != nil {
		options.InMemory = *cfg.InMemory
	}
	if cfg.SyncWrites != nil {
		options.SyncWrites = *cfg.SyncWrites
	}
}

// GetOptions 获取完整的BadgerDB配置选项
func (c *Config) GetOptions() *BadgerOptions {
	return c.options
}

// GetPath 数据库路径
func (c *Config) GetPath() string {
	return c.options.Path
}

// IsInMemory 是否内存模式
func (c *Config) IsInMemory() bool {
	return c.options.InMemory
}

// IsSyncWrites 是否同步写入
func (c *Config) IsSyncWrites() bool {
	return c.options.SyncWrites
}

// GetMemTableSize 内存表大小
func (c *Config) GetMemTableSize() int64 {
	return c.options.MemTableSize
}
