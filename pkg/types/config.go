package types

import (
	"encoding/json"
	"fmt"
	"os"
)

// AppConfig 应用配置（用户 JSON 配置文件的根结构）
//
// 所有字段都是可选指针，未出现的字段由 internal/config 下各模块的默认值补齐。
type AppConfig struct {
	AppName *string `json:"app_name,omitempty"` // 应用名称
	DataDir *string `json:"data_dir,omitempty"` // 数据目录路径

	// 日志配置 - 对应配置文件中的 log 字段
	Log *UserLogConfig `json:"log,omitempty"`

	// 证明配置 - 对应配置文件中的 proof 字段
	Proof *UserProofConfig `json:"proof,omitempty"`

	// 存储配置 - 对应配置文件中的 storage 字段
	Storage *UserStorageConfig `json:"storage,omitempty"`
}

// LogLevel 日志级别
type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
	FatalLevel LogLevel = "fatal"
)

// UserLogConfig 用户日志配置
type UserLogConfig struct {
	Level     *string `json:"level,omitempty"`      // 日志级别：debug, info, warn, error, fatal
	FilePath  *string `json:"file_path,omitempty"`  // 日志文件路径
	ToConsole *bool   `json:"to_console,omitempty"` // 是否输出到控制台
}

// UserProofConfig 用户证明配置
type UserProofConfig struct {
	SetupSize         *int    `json:"setup_size,omitempty"`         // 生成元数量（最大表长度）
	DomainTag         *string `json:"domain_tag,omitempty"`         // 生成元派生域分隔标签
	MSMTasks          *int    `json:"msm_tasks,omitempty"`          // 多标量乘法并行任务数
	ParallelThreshold *int    `json:"parallel_threshold,omitempty"` // sumcheck 并行的最小行数
	MaxWorkers        *int    `json:"max_workers,omitempty"`        // sumcheck 最大并行度
	CountAlias        *string `json:"count_alias,omitempty"`        // 分组计数列别名
	EnableMetrics     *bool   `json:"enable_metrics,omitempty"`     // 是否记录 prometheus 指标
}

// UserStorageConfig 用户存储配置
type UserStorageConfig struct {
	Badger *UserBadgerConfig `json:"badger,omitempty"`
	Memory *UserMemoryConfig `json:"memory,omitempty"`
}

// UserBadgerConfig 用户 badger 配置
type UserBadgerConfig struct {
	Path       *string `json:"path,omitempty"`        // 数据目录
	InMemory   *bool   `json:"in_memory,omitempty"`   // 内存模式
	SyncWrites *bool   `json:"sync_writes,omitempty"` // 同步写入
}

// UserMemoryConfig 用户承诺缓存配置
type UserMemoryConfig struct {
	LifeWindowSeconds *int `json:"life_window_seconds,omitempty"` // 缓存条目存活时间
	Shards            *int `json:"shards,omitempty"`              // 分片数（2 的幂）
	MaxEntrySize      *int `json:"max_entry_size,omitempty"`      // 单条目最大字节数
	HardMaxCacheMB    *int `json:"hard_max_cache_mb,omitempty"`   // 缓存上限（MB）
}

// LoadAppConfig 从 JSON 文件加载应用配置
func LoadAppConfig(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}
	var cfg AppConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	return &cfg, nil
}

// StringPtr 返回字符串指针
func StringPtr(s string) *string { return &s }

// IntPtr 返回整数指针
func IntPtr(i int) *int { return &i }

// BoolPtr 返回布尔指针
func BoolPtr(b bool) *bool { return &b }
