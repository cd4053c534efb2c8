package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/proofsql/pkg/types"
)

// TestProviderDefaults 测试未配置时的默认值
func TestProviderDefaults(t *testing.T) {
	provider := NewProvider(nil)

	logOptions := provider.GetLog()
	assert.Equal(t, "info", logOptions.Level)
	assert.True(t, logOptions.ToConsole)

	proofOptions := provider.GetProof()
	assert.Equal(t, 1024, proofOptions.SetupSize)
	assert.Equal(t, "__count__", proofOptions.CountAlias)
	assert.True(t, proofOptions.EnableMetrics)

	badgerOptions := provider.GetBadger()
	assert.False(t, badgerOptions.InMemory)
	assert.True(t, badgerOptions.SyncWrites)

	memoryOptions := provider.GetMemory()
	assert.Equal(t, 10*time.Minute, memoryOptions.LifeWindow)
	assert.Equal(t, 64, memoryOptions.Shards)
}

// TestProviderOverrides 测试用户配置覆盖默认值
func TestProviderOverrides(t *testing.T) {
	t.Run("证明配置覆盖", func(t *testing.T) {
		provider := NewProvider(&types.AppConfig{
			Proof: &types.UserProofConfig{
				SetupSize:  types.IntPtr(64),
				DomainTag:  types.StringPtr("TEST_TAG"),
				CountAlias: types.StringPtr("n"),
			},
		})
		options := provider.GetProof()
		assert.Equal(t, 64, options.SetupSize)
		assert.Equal(t, "TEST_TAG", options.DomainTag)
		assert.Equal(t, "n", options.CountAlias)
	})

	t.Run("非法值被忽略", func(t *testing.T) {
		provider := NewProvider(&types.AppConfig{
			Proof: &types.UserProofConfig{SetupSize: types.IntPtr(-1)},
			Storage: &types.UserStorageConfig{
				Memory: &types.UserMemoryConfig{Shards: types.IntPtr(3)},
			},
		})
		assert.Equal(t, 1024, provider.GetProof().SetupSize)
		assert.Equal(t, 64, provider.GetMemory().Shards)
	})

	t.Run("指定日志文件时关闭控制台", func(t *testing.T) {
		provider := NewProvider(&types.AppConfig{
			Log: &types.UserLogConfig{FilePath: types.StringPtr("/tmp/proofsql.log"), Level: types.StringPtr("DEBUG")},
		})
		options := provider.GetLog()
		assert.False(t, options.ToConsole)
		assert.Equal(t, "debug", options.Level)
	})

	t.Run("badger 内存模式", func(t *testing.T) {
		provider := NewProvider(&types.AppConfig{
			Storage: &types.UserStorageConfig{
				Badger: &types.UserBadgerConfig{InMemory: types.BoolPtr(true), Path: types.StringPtr("/tmp/x")},
			},
		})
		options := provider.GetBadger()
		assert.True(t, options.InMemory)
		assert.Equal(t, "/tmp/x", options.Path)
	})
}

// TestLoadAppConfig 测试从 JSON 文件加载配置
func TestLoadAppConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"proof":{"setup_size":128},"log":{"level":"warn"}}`), 0o600))

	cfg, err := types.LoadAppConfig(path)
	require.NoError(t, err)

	provider := NewProvider(cfg)
	assert.Equal(t, 128, provider.GetProof().SetupSize)
	assert.Equal(t, "warn", provider.GetLog().Level)

	_, err = types.LoadAppConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
