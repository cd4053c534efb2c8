package proof

import (
	configtypes "github.com/weisyn/proofsql/pkg/types"
)

// ProofOptions 证明系统配置选项
type ProofOptions struct {
	// === 公共参数 ===
	SetupSize int    `json:"setup_size"` // 生成元数量（最大表长度）
	DomainTag string `json:"domain_tag"` // 生成元派生标签

	// === 并行配置 ===
	MSMTasks          int `json:"msm_tasks"`          // 多标量乘法任务数
	ParallelThreshold int `json:"parallel_threshold"` // sumcheck 并行阈值（行数）
	MaxWorkers        int `json:"max_workers"`        // sumcheck 最大并行度

	// === 查询配置 ===
	CountAlias string `json:"count_alias"` // 分组计数列别名

	// === 观测配置 ===
	EnableMetrics bool `json:"enable_metrics"`
}

// Config 证明配置实现
type Config struct {
	options *ProofOptions
}

// New 创建证明配置（userConfig 为 *types.UserProofConfig 或 nil）
func New(userConfig interface{}) *Config {
	options := createDefaultProofOptions()
	if userConfig != nil {
		applyUserProofConfig(options, userConfig)
	}
	return &Config{options: options}
}

// NewFromOptions 从 ProofOptions 创建配置实现
func NewFromOptions(options *ProofOptions) *Config {
	if options == nil {
		options = createDefaultProofOptions()
	}
	return &Config{options: options}
}

func createDefaultProofOptions() *ProofOptions {
	return &ProofOptions{
		SetupSize:         defaultSetupSize,
		DomainTag:         defaultDomainTag,
		MSMTasks:          defaultMSMTasks,
		ParallelThreshold: defaultParallelThreshold,
		MaxWorkers:        defaultMaxWorkers,
		CountAlias:        defaultCountAlias,
		EnableMetrics:     defaultEnableMetrics,
	}
}

func applyUserProofConfig(options *ProofOptions, userConfig interface{}) {
	cfg, ok := userConfig.(*configtypes.UserProofConfig)
	if !ok || cfg == nil {
		return
	}
	if cfg.SetupSize != nil && *cfg.SetupSize > 0 {
		options.SetupSize = *cfg.SetupSize
	}
	if cfg.DomainTag != nil && *cfg.DomainTag != "" {
		options.DomainTag = *cfg.DomainTag
	}
	if cfg.MSMTasks != nil && *cfg.MSMTasks >= 0 {
		options.MSMTasks = *cfg.MSMTasks
	}
	if cfg.ParallelThreshold != nil && *cfg.ParallelThreshold > 0 {
		options.ParallelThreshold = *cfg.ParallelThreshold
	}
	if cfg.MaxWorkers != nil && *cfg.MaxWorkers >= 0 {
		options.MaxWorkers = *cfg.MaxWorkers
	}
	if cfg.CountAlias != nil && *cfg.CountAlias != "" {
		options.CountAlias = *cfg.CountAlias
	}
	if cfg.EnableMetrics != nil {
		options.EnableMetrics = *cfg.EnableMetrics
	}
}

// GetOptions 获取完整的证明配置选项
func (c *Config) GetOptions() *ProofOptions {
	return c.options
}

// GetSetupSize 生成元数量
func (c *Config) GetSetupSize() int {
	return c.options.SetupSize
}

// GetDomainTag 生成元派生标签
func (c *Config) GetDomainTag() string {
	return c.options.DomainTag
}

// GetMSMTasks 多标量乘法任务数
func (c *Config) GetMSMTasks() int {
	return c.options.MSMTasks
}

// GetParallelThreshold sumcheck 并行阈值
func (c *Config) GetParallelThreshold() int {
	return c.options.ParallelThreshold
}

// GetMaxWorkers sumcheck 最大并行度
func (c *Config) GetMaxWorkers() int {
	return c.options.MaxWorkers
}

// GetCountAlias 分组计数列别名
func (c *Config) GetCountAlias() string {
	return c.options.CountAlias
}

// IsMetricsEnabled 是否记录指标
func (c *Config) IsMetricsEnabled() bool {
	return c.options.EnableMetrics
}
