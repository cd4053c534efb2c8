package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/proofsql/pkg/types"
)

func testConfig(t *testing.T) *types.AppConfig {
	t.Helper()
	return &types.AppConfig{
		Log: &types.UserLogConfig{
			Level:    types.StringPtr("warn"),
			FilePath: types.StringPtr(filepath.Join(t.TempDir(), "proofsql.log")),
		},
		Proof: &types.UserProofConfig{
			SetupSize: types.IntPtr(64),
			DomainTag: types.StringPtr("PROOFSQL_APP_TEST"),
		},
		Storage: &types.UserStorageConfig{
			Badger: &types.UserBadgerConfig{InMemory: types.BoolPtr(true)},
		},
	}
}

// TestNewApp 测试依赖图组装
func TestNewApp(t *testing.T) {
	a, err := New(WithAppConfig(testConfig(t)))
	require.NoError(t, err)
	defer func() { require.NoError(t, a.Stop()) }()

	assert.Equal(t, 64, a.Service.Setup().Size())
	assert.Equal(t, "__count__", a.Service.CountAlias())
	assert.NotNil(t, a.Logger)
	assert.True(t, a.Provider.GetBadger().InMemory)
}

// TestNewAppWithEmbeddedConfig 测试嵌入配置
func TestNewAppWithEmbeddedConfig(t *testing.T) {
	t.Run("合法配置", func(t *testing.T) {
		a, err := New(WithEmbeddedConfig([]byte(`{"log":{"level":"error","to_console":false},"proof":{"setup_size":32,"count_alias":"n"}}`)))
		require.NoError(t, err)
		defer func() { require.NoError(t, a.Stop()) }()
		assert.Equal(t, 32, a.Service.Setup().Size())
		assert.Equal(t, "n", a.Service.CountAlias())
	})

	t.Run("非法 JSON", func(t *testing.T) {
		_, err := New(WithEmbeddedConfig([]byte(`{"proof":`)))
		assert.Error(t, err)
	})

	t.Run("配置文件不存在", func(t *testing.T) {
		_, err := New(WithConfigFile(filepath.Join(t.TempDir(), "missing.json")))
		assert.Error(t, err)
	})
}

// TestRunDemo 测试演示查询在两种存储上都能证明并验证
func TestRunDemo(t *testing.T) {
	for _, store := range []string{StoreMemory, StoreBadger} {
		t.Run(store, func(t *testing.T) {
			a, err := New(WithAppConfig(testConfig(t)))
			require.NoError(t, err)
			defer func() { require.NoError(t, a.Stop()) }()

			results, err := a.RunDemo(context.Background(), store)
			require.NoError(t, err)
			require.Len(t, results, len(Scenarios()))

			byName := make(map[string]DemoResult)
			for _, r := range results {
				byName[r.Scenario.Name] = r
				assert.NotEmpty(t, r.Hash)
				assert.NotEmpty(t, r.Fingerprint)
				assert.Positive(t, r.ProofBytes)
			}

			wantA := types.MustNewTable(
				types.NewField("a", types.NewBigIntColumn(1, 2)),
				types.NewField("sum_c", types.NewBigIntColumn(205, 205)),
				types.NewField("__count__", types.NewBigIntColumn(2, 2)),
			)
			assert.True(t, wantA.Equal(byName["A"].Table))
			assert.Equal(t, 1, byName["B"].Table.Len())
			assert.Equal(t, 0, byName["C"].Table.Len())

			wantD := types.MustNewTable(
				types.NewField("region", types.NewVarCharColumn("east", "north", "west")),
				types.NewField("sum_qty", types.NewBigIntColumn(5, 5, 8)),
				types.NewField("sum_amount", types.Int128ColumnFromInt64(1360, 990, 840)),
				types.NewField("sum_weight", types.ScalarColumnFromInt64(57, 19, 36)),
				types.NewField("__count__", types.NewBigIntColumn(3, 1, 2)),
			)
			assert.True(t, wantD.Equal(byName["D"].Table))

			wantE := types.MustNewTable(
				types.NewField("region", types.NewVarCharColumn("west", "north", "west", "east")),
				types.NewField("amount", types.Int128ColumnFromInt64(800, 990, 40, 310)),
			)
			assert.True(t, wantE.Equal(byName["E"].Table))

			wantF := types.MustNewTable(
				types.NewField("min_amount", types.Int128ColumnFromInt64(-150)),
				types.NewField("max_amount", types.Int128ColumnFromInt64(1200)),
				types.NewField("sum_qty", types.Int128ColumnFromInt64(5)),
				types.NewField("cnt", types.NewBigIntColumn(3)),
			)
			assert.True(t, wantF.Equal(byName["F"].Table))
		})
	}

	t.Run("未知存储", func(t *testing.T) {
		a, err := New(WithAppConfig(testConfig(t)))
		require.NoError(t, err)
		defer func() { require.NoError(t, a.Stop()) }()
		_, err = a.RunDemo(context.Background(), "redis")
		assert.ErrorIs(t, err, ErrUnknownStore)
	})
}
