package memory

import (
	"time"

	configtypes "github.com/weisyn/proofsql/pkg/types"
)

// MemoryOptions 承诺缓存（bigcache）配置选项
type MemoryOptions struct {
	LifeWindow         time.Duration `json:"life_window"`
	Shards             int           `json:"shards"`
	MaxEntrySize       int           `json:"max_entry_size"`
	MaxEntriesInWindow int           `json:"max_entries_in_window"`
	HardMaxCacheMB     int           `json:"hard_max_cache_mb"`
}

// Config 承诺缓存配置实现
type Config struct {
	options *MemoryOptions
}

// New 创建缓存配置（userConfig 为 *types.UserMemoryConfig 或 nil）
func New(userConfig interface{}) *Config {
	options := &MemoryOptions{
		LifeWindow:         defaultLifeWindow,
		Shards:             defaultShards,
		MaxEntrySize:       defaultMaxEntrySize,
		MaxEntriesInWindow: defaultMaxEntriesInWindow,
		HardMaxCacheMB:     defaultHardMaxCacheMB,
	}
	if cfg, ok := userConfig.(*configtypes.UserMemoryConfig); ok && cfg != nil {
		if cfg.LifeWindowSeconds != nil && *cfg.LifeWindowSeconds > 0 {
			options.LifeWindow = time.Duration(*cfg.LifeWindowSeconds) * time.Second
		}
		if cfg.Shards != nil && isPowerOfTwo(*cfg.Shards) {
			options.Shards = *cfg.Shards
		}
		if cfg.MaxEntrySize != nil && *cfg.MaxEntrySize > 0 {
			options.MaxEntrySize = *cfg.MaxEntrySize
		}
		if cfg.HardMaxCacheMB != nil && *cfg.HardMaxCacheMB >= 0 {
			options.HardMaxCacheMB = *cfg.HardMaxCacheMB
		}
	}
	return &Config{options: options}
}

// NewFromOptions 从 MemoryOptions 创建配置实现
func NewFromOptions(options *MemoryOptions) *Config {
	return &Config{options: options}
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// GetOptions 获取完整配置
func (c *Config) GetOptions() *MemoryOptions {
	return c.options
}

// GetLifeWindow 条目存活时间
func (c *Config) GetLifeWindow() time.Duration {
	return c.options.LifeWindow
}

// GetShards 分片数
func (c *Config) GetShards() int {
	return c.options.Shards
}

// GetMaxEntrySize 单条目最大字节数
func (c *Config) GetMaxEntrySize() int {
	return c.options.MaxEntrySize
}

// GetMaxEntriesInWindow 窗口内条目数
func (c *Config) GetMaxEntriesInWindow() int {
	return c.options.MaxEntriesInWindow
}

// GetHardMaxCacheMB 缓存上限（MB）
func (c *Config) GetHardMaxCacheMB() int {
	return c.options.HardMaxCacheMB
}
