package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	logconfig "github.com/weisyn/proofsql/internal/config/log"
	"github.com/weisyn/proofsql/pkg/types"
)

// TestStructuredFields 测试 With 附加的结构化字段
func TestStructuredFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core))

	logger.With("request_id", "abc", "rows", 5).Infof("证明完成: %s", "sxt.t")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "证明完成: sxt.t", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "abc", fields["request_id"])
	assert.EqualValues(t, 5, fields["rows"])
}

// TestOddWithArguments 测试奇数个键值参数时丢弃最后一个
func TestOddWithArguments(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core))

	logger.With("k", 1, "dangling").Warn("odd")
	require.Len(t, logs.All(), 1)
	assert.Len(t, logs.All()[0].Context, 1)
}

// TestModuleLogger 测试 module 字段
func TestModuleLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := NewModuleLogger(FromZap(zap.New(core)), "prover")

	logger.Debug("不应输出")
	logger.Info("输出")

	require.Len(t, logs.All(), 1)
	assert.Equal(t, "prover", logs.All()[0].ContextMap()["module"])
	assert.Nil(t, NewModuleLogger(nil, "x"))
}

// TestFileOutput 测试文件输出
func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "proofsql.log")
	config := logconfig.New(&types.UserLogConfig{
		FilePath: types.StringPtr(path),
		Level:    types.StringPtr("debug"),
	})
	require.False(t, config.IsConsoleEnabled())

	logger, err := New(config)
	require.NoError(t, err)
	logger.Debug("写入文件")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "写入文件")
	assert.Contains(t, string(data), `"level":"debug"`)
}

// TestGlobalLogger 测试全局日志记录器替换
func TestGlobalLogger(t *testing.T) {
	old := GetLogger()
	defer SetLogger(old)

	core, logs := observer.New(zapcore.InfoLevel)
	SetLogger(FromZap(zap.New(core)))
	SetLogger(nil)

	Infof("全局 %d", 1)
	Warnf("全局 %d", 2)
	assert.Len(t, logs.All(), 2)
}
