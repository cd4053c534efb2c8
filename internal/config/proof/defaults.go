package proof

// 证明配置默认值
const (
	// defaultSetupSize 生成元数量，决定可证明的最大表长度
	defaultSetupSize = 1 << 10

	// defaultDomainTag 生成元派生的域分隔标签，证明方与验证方必须一致
	defaultDomainTag = "PROOFSQL_PEDERSEN_G1_V1"

	// defaultMSMTasks 多标量乘法并行任务数，0 表示由 gnark-crypto 按 CPU 数决定
	defaultMSMTasks = 0

	// defaultParallelThreshold 行数低于该值时 sumcheck 单线程执行
	defaultParallelThreshold = 1 << 12

	// defaultMaxWorkers sumcheck 最大并行度，0 表示 GOMAXPROCS
	defaultMaxWorkers = 0

	// defaultCountAlias 分组计数列的保留别名
	defaultCountAlias = "__count__"

	// defaultEnableMetrics 默认记录 prometheus 指标
	defaultEnableMetrics = true
)
