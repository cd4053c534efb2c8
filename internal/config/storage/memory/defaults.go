package memory

import "time"

// 承诺缓存默认配置值
const (
	// defaultLifeWindow 缓存条目存活 10 分钟
	defaultLifeWindow = 10 * time.Minute

	// defaultShards 分片数（bigcache 要求 2 的幂）
	defaultShards = 64

	// defaultMaxEntrySize 单条承诺编码 56 字节，留出键的余量
	defaultMaxEntrySize = 256

	// defaultMaxEntriesInWindow 窗口内条目数，用于预分配
	defaultMaxEntriesInWindow = 4096

	// defaultHardMaxCacheMB 缓存上限
	defaultHardMaxCacheMB = 32
)
