package badger

// BadgerDB 存储默认配置值
const (
	// defaultPath 列与承诺的持久化目录
	defaultPath = "./data/proofsql/badger"

	// defaultInMemory 默认落盘
	defaultInMemory = false

	// defaultSyncWrites 表写入后需要被验证方读取，默认同步写入
	defaultSyncWrites = true

	// defaultMemTableSize 内存表大小 64MB
	defaultMemTableSize = 64 << 20
)
