package query

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/proofsql/internal/core/commitment"
	"github.com/weisyn/proofsql/internal/core/database"
	"github.com/weisyn/proofsql/internal/core/expr"
	"github.com/weisyn/proofsql/internal/core/proof"
	"github.com/weisyn/proofsql/pkg/types"
)

var testRef = types.MustParseTableRef("sxt.t")

type env struct {
	setup *commitment.PublicSetup
	acc   *database.TableAccessor
}

func newEnv(t *testing.T, table *types.Table) *env {
	t.Helper()
	setup, err := commitment.NewPublicSetup(32, "PROOFSQL_QUERY_TEST")
	require.NoError(t, err)
	acc := database.NewTableAccessor(setup, nil)
	require.NoError(t, acc.AddTable(testRef, table))
	return &env{setup: setup, acc: acc}
}

func (e *env) arena(t *testing.T) *expr.Arena {
	t.Helper()
	arena, err := expr.NewArena(testRef, e.acc)
	require.NoError(t, err)
	return arena
}

func (e *env) prove(t *testing.T, plan proof.Plan) *proof.VerifiableQueryResult {
	t.Helper()
	res, err := proof.New(plan, e.acc, e.setup)
	require.NoError(t, err)
	return res
}

// proveAndVerify 证明并用只含承诺的视图验证
func (e *env) proveAndVerify(t *testing.T, plan proof.Plan) *types.Table {
	t.Helper()
	res := e.prove(t, plan)
	data, err := res.Verify(plan, e.acc.CommitmentView(), e.setup)
	require.NoError(t, err)
	require.True(t, data.Table.Equal(res.Table))
	return data.Table
}

func (e *env) verify(plan proof.Plan, table *types.Table, p *proof.QueryProof) error {
	res := &proof.VerifiableQueryResult{Table: table, Proof: p}
	_, err := res.Verify(plan, e.acc.CommitmentView(), e.setup)
	return err
}

func assertRejected(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, proof.ErrVerificationFailed)
	var verr *proof.VerificationError
	assert.True(t, errors.As(err, &verr))
}

func must(t *testing.T) func(expr.Handle, error) expr.Handle {
	return func(h expr.Handle, err error) expr.Handle {
		t.Helper()
		require.NoError(t, err)
		return h
	}
}

func scenarioTable() *types.Table {
	return types.MustNewTable(
		types.NewField("a", types.NewBigIntColumn(1, 2, 2, 1, 2)),
		types.NewField("b", types.NewBigIntColumn(99, 99, 99, 99, 0)),
		types.NewField("c", types.NewBigIntColumn(101, 102, 103, 104, 105)),
	)
}

// scenarioPlan WHERE b = <filter> GROUP BY <keys>，SUM(c) AS sum_c
func scenarioPlan(t *testing.T, e *env, filter int64, keys ...string) *GroupByExpr {
	t.Helper()
	m := must(t)
	arena := e.arena(t)
	lit, err := arena.Int128(big.NewInt(filter))
	require.NoError(t, err)
	where := m(arena.Equal(m(arena.Column("b")), lit))
	plan, err := NewGroupByExpr(arena, keys, []SumExpr{{Expr: m(arena.Column("c")), Alias: "sum_c", Type: types.ColumnTypeBigInt}}, "", where)
	require.NoError(t, err)
	return plan
}

// TestGroupByScenarios 测试分组聚合的基本场景
func TestGroupByScenarios(t *testing.T) {
	e := newEnv(t, scenarioTable())

	t.Run("按列分组", func(t *testing.T) {
		got := e.proveAndVerify(t, scenarioPlan(t, e, 99, "a"))
		want := types.MustNewTable(
			types.NewField("a", types.NewBigIntColumn(1, 2)),
			types.NewField("sum_c", types.NewBigIntColumn(205, 205)),
			types.NewField("__count__", types.NewBigIntColumn(2, 2)),
		)
		assert.True(t, want.Equal(got), "got %v", got.Names())
	})

	t.Run("无分组键", func(t *testing.T) {
		got := e.proveAndVerify(t, scenarioPlan(t, e, 99))
		want := types.MustNewTable(
			types.NewField("sum_c", types.NewBigIntColumn(410)),
			types.NewField("__count__", types.NewBigIntColumn(4)),
		)
		assert.True(t, want.Equal(got))
	})

	t.Run("没有匹配行", func(t *testing.T) {
		got := e.proveAndVerify(t, scenarioPlan(t, e, 12345, "a"))
		assert.Equal(t, 0, got.Len())
		assert.Equal(t, []string{"a", "sum_c", "__count__"}, got.Names())

		got = e.proveAndVerify(t, scenarioPlan(t, e, 12345))
		assert.Equal(t, 0, got.Len())
	})

	t.Run("多键分组", func(t *testing.T) {
		got := e.proveAndVerify(t, scenarioPlan(t, e, 99, "b", "a"))
		want := types.MustNewTable(
			types.NewField("b", types.NewBigIntColumn(99, 99)),
			types.NewField("a", types.NewBigIntColumn(1, 2)),
			types.NewField("sum_c", types.NewBigIntColumn(205, 205)),
			types.NewField("__count__", types.NewBigIntColumn(2, 2)),
		)
		assert.True(t, want.Equal(got))
	})
}

// TestGroupByTypePromotion 测试各聚合保持声明的结果类型
func TestGroupByTypePromotion(t *testing.T) {
	e := newEnv(t, types.MustNewTable(
		types.NewField("k", types.NewVarCharColumn("x", "y", "x", "y", "x")),
		types.NewField("i", types.NewBigIntColumn(1, -2, 3, -4, 5)),
		types.NewField("h", types.Int128ColumnFromInt64(10, 20, 30, 40, 50)),
		types.NewField("s", types.ScalarColumnFromInt64(7, 7, 7, 7, 7)),
	))
	m := must(t)
	arena := e.arena(t)
	i, h, s := m(arena.Column("i")), m(arena.Column("h")), m(arena.Column("s"))
	plan, err := NewGroupByExpr(arena, []string{"k"}, []SumExpr{
		{Expr: i, Alias: "sum_i", Type: types.ColumnTypeBigInt},
		{Expr: i, Alias: "sum_i_wide", Type: types.ColumnTypeInt128},
		{Expr: h, Alias: "sum_h", Type: types.ColumnTypeInt128},
		{Expr: m(arena.Mul(h, s)), Alias: "sum_hs", Type: types.ColumnTypeScalar},
	}, "n", arena.Bool(true))
	require.NoError(t, err)

	got := e.proveAndVerify(t, plan)
	want := types.MustNewTable(
		types.NewField("k", types.NewVarCharColumn("x", "y")),
		types.NewField("sum_i", types.NewBigIntColumn(9, -6)),
		types.NewField("sum_i_wide", types.Int128ColumnFromInt64(9, -6)),
		types.NewField("sum_h", types.Int128ColumnFromInt64(90, 60)),
		types.NewField("sum_hs", types.ScalarColumnFromInt64(630, 420)),
		types.NewField("n", types.NewBigIntColumn(3, 2)),
	)
	assert.True(t, want.Equal(got))
}

func multiTypeTable() *types.Table {
	return types.MustNewTable(
		types.NewField("bigint_filter", types.NewBigIntColumn(30, 20, 30, 30, 30, 20, 30, 20, 30, 20, 30, 20, 20, 20, 30, 30, 20, 20, 20, 30)),
		types.NewField("bigint_group", types.NewBigIntColumn(7, 6, 6, 6, 7, 7, 6, 6, 6, 6, 7, 7, 6, 7, 6, 7, 7, 7, 6, 7)),
		types.NewField("bigint_sum", types.NewBigIntColumn(834, 985, 832, 300, 146, 624, 553, 637, 770, 574, 913, 600, 336, 984, 198, 257, 781, 196, 537, 358)),
		types.NewField("int128_filter", types.Int128ColumnFromInt64(1030, 1030, 1030, 1020, 1020, 1030, 1020, 1020, 1020, 1030, 1030, 1030, 1020, 1020, 1030, 1020, 1020, 1030, 1020, 1030)),
		types.NewField("int128_group", types.Int128ColumnFromInt64(8, 8, 8, 8, 8, 8, 9, 9, 8, 9, 8, 9, 8, 9, 8, 9, 8, 8, 8, 8)),
		types.NewField("int128_sum", types.Int128ColumnFromInt64(275, 225, 315, 199, 562, 578, 563, 513, 634, 829, 613, 295, 509, 923, 133, 973, 700, 464, 622, 943)),
		types.NewField("varchar_filter", types.NewVarCharColumn("f2", "f2", "f3", "f2", "f2", "f3", "f3", "f2", "f2", "f3", "f2", "f2", "f2", "f3", "f2", "f3", "f2", "f2", "f3", "f3")),
		types.NewField("varchar_group", types.NewVarCharColumn("g1", "g2", "g1", "g1", "g1", "g1", "g2", "g1", "g1", "g1", "g2", "g2", "g1", "g1", "g1", "g2", "g1", "g2", "g1", "g1")),
		types.NewField("scalar_filter", types.ScalarColumnFromInt64(333, 222, 222, 333, 222, 333, 333, 333, 222, 222, 222, 333, 222, 222, 222, 222, 222, 222, 333, 333)),
		types.NewField("scalar_group", types.ScalarColumnFromInt64(5, 4, 5, 4, 4, 4, 5, 4, 4, 4, 5, 4, 4, 4, 5, 4, 4, 4, 4, 5)),
		types.NewField("scalar_sum", types.ScalarColumnFromInt64(119, 522, 100, 325, 501, 447, 759, 375, 212, 532, 459, 616, 579, 179, 695, 963, 532, 868, 331, 830)),
	)
}

func multiTypePlan(t *testing.T, e *env, keys ...string) *GroupByExpr {
	t.Helper()
	m := must(t)
	arena := e.arena(t)
	lit, err := arena.Int128(big.NewInt(1020))
	require.NoError(t, err)
	where := m(arena.And(
		m(arena.Equal(m(arena.Column("int128_filter")), lit)),
		m(arena.Equal(m(arena.Column("varchar_filter")), arena.VarChar("f2"))),
	))
	plan, err := NewGroupByExpr(arena, keys, []SumExpr{
		{Expr: m(arena.Column("bigint_sum")), Alias: "sum_int", Type: types.ColumnTypeBigInt},
		{Expr: m(arena.Column("int128_sum")), Alias: "sum_128", Type: types.ColumnTypeInt128},
		{Expr: m(arena.Column("scalar_sum")), Alias: "sum_scal", Type: types.ColumnTypeScalar},
	}, DefaultCountAlias, where)
	require.NoError(t, err)
	return plan
}

// TestGroupByManyColumns 测试多类型分组键、过滤与聚合
func TestGroupByManyColumns(t *testing.T) {
	e := newEnv(t, multiTypeTable())

	t.Run("三列分组", func(t *testing.T) {
		got := e.proveAndVerify(t, multiTypePlan(t, e, "scalar_group", "int128_group", "bigint_group"))
		want := types.MustNewTable(
			types.NewField("scalar_group", types.ScalarColumnFromInt64(4, 4, 4)),
			types.NewField("int128_group", types.Int128ColumnFromInt64(8, 8, 9)),
			types.NewField("bigint_group", types.NewBigIntColumn(6, 7, 6)),
			types.NewField("sum_int", types.NewBigIntColumn(1406, 927, 637)),
			types.NewField("sum_128", types.Int128ColumnFromInt64(1342, 1262, 513)),
			types.NewField("sum_scal", types.ScalarColumnFromInt64(1116, 1033, 375)),
			types.NewField("__count__", types.NewBigIntColumn(3, 2, 1)),
		)
		assert.True(t, want.Equal(got))
	})

	t.Run("无分组键", func(t *testing.T) {
		got := e.proveAndVerify(t, multiTypePlan(t, e))
		want := types.MustNewTable(
			types.NewField("sum_int", types.NewBigIntColumn(2970)),
			types.NewField("sum_128", types.Int128ColumnFromInt64(3117)),
			types.NewField("sum_scal", types.ScalarColumnFromInt64(2524)),
			types.NewField("__count__", types.NewBigIntColumn(6)),
		)
		assert.True(t, want.Equal(got))
	})

	t.Run("VarChar 分组键", func(t *testing.T) {
		// 满足过滤条件的 6 行都属于 g1
		got := e.proveAndVerify(t, multiTypePlan(t, e, "varchar_group"))
		want := types.MustNewTable(
			types.NewField("varchar_group", types.NewVarCharColumn("g1")),
			types.NewField("sum_int", types.NewBigIntColumn(2970)),
			types.NewField("sum_128", types.Int128ColumnFromInt64(3117)),
			types.NewField("sum_scal", types.ScalarColumnFromInt64(2524)),
			types.NewField("__count__", types.NewBigIntColumn(6)),
		)
		assert.True(t, want.Equal(got), "got rows: %v", got.Row(0))
	})
}

// replace 返回替换了一列的新表
func replace(t *testing.T, table *types.Table, name string, col types.Column) *types.Table {
	t.Helper()
	fields := table.Fields()
	for i := range fields {
		if fields[i].Name == name {
			fields[i].Column = col
		}
	}
	out, err := types.NewTableWithRows(col.Len(), fields...)
	require.NoError(t, err)
	return out
}

// TestGroupByTamper 测试篡改后的结果被拒绝
func TestGroupByTamper(t *testing.T) {
	e := newEnv(t, scenarioTable())
	plan := scenarioPlan(t, e, 99, "a")
	res := e.prove(t, plan)

	table := func(a, sum, count []int64) *types.Table {
		return types.MustNewTable(
			types.NewField("a", types.NewBigIntColumn(a...)),
			types.NewField("sum_c", types.NewBigIntColumn(sum...)),
			types.NewField("__count__", types.NewBigIntColumn(count...)),
		)
	}
	tests := []struct {
		name  string
		table *types.Table
	}{
		{"篡改求和", table([]int64{1, 2}, []int64{205, 206}, []int64{2, 2})},
		{"篡改计数", table([]int64{1, 2}, []int64{205, 205}, []int64{2, 1})},
		{"丢弃分组", table([]int64{1}, []int64{205}, []int64{2})},
		{"增加分组", table([]int64{1, 2, 3}, []int64{205, 205, 0}, []int64{2, 2, 1})},
		{"重复分组", table([]int64{1, 1, 2}, []int64{205, 205, 205}, []int64{2, 2, 2})},
		{"合并分组", table([]int64{1}, []int64{410}, []int64{4})},
		{"零计数分组", table([]int64{1, 2, 3}, []int64{205, 205, 0}, []int64{2, 2, 0})},
		{"篡改分组键", table([]int64{1, 3}, []int64{205, 205}, []int64{2, 2})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertRejected(t, e.verify(plan, tt.table, res.Proof))
		})
	}

	t.Run("交换聚合值", func(t *testing.T) {
		me := newEnv(t, multiTypeTable())
		mplan := multiTypePlan(t, me, "scalar_group", "int128_group", "bigint_group")
		mres := me.prove(t, mplan)
		swapped := replace(t, mres.Table, "sum_int", types.NewBigIntColumn(927, 1406, 637))
		assertRejected(t, me.verify(mplan, swapped, mres.Proof))
	})

	t.Run("另一个查询", func(t *testing.T) {
		other := scenarioPlan(t, e, 0, "a")
		assertRejected(t, e.verify(other, res.Table, res.Proof))
	})

	t.Run("另一张表", func(t *testing.T) {
		oe := newEnv(t, types.MustNewTable(
			types.NewField("a", types.NewBigIntColumn(1, 2, 2, 1, 2)),
			types.NewField("b", types.NewBigIntColumn(99, 99, 99, 99, 0)),
			types.NewField("c", types.NewBigIntColumn(101, 102, 103, 104, 106)),
		))
		assertRejected(t, oe.verify(scenarioPlan(t, oe, 99, "a"), res.Table, res.Proof))
	})
}

// TestVerifyIdempotent 测试重复验证结果一致
func TestVerifyIdempotent(t *testing.T) {
	e := newEnv(t, scenarioTable())
	plan := scenarioPlan(t, e, 99, "a")
	res := e.prove(t, plan)
	first, err := res.Verify(plan, e.acc, e.setup)
	require.NoError(t, err)
	second, err := res.Verify(plan, e.acc, e.setup)
	require.NoError(t, err)
	assert.Equal(t, first.VerificationHash, second.VerificationHash)
	assert.True(t, first.Table.Equal(second.Table))
}

// TestGroupByPlanErrors 测试计划构造期错误
func TestGroupByPlanErrors(t *testing.T) {
	e := newEnv(t, types.MustNewTable(
		types.NewField("a", types.NewBigIntColumn(1)),
		types.NewField("v", types.NewVarCharColumn("x")),
		types.NewField("w", types.Int128ColumnFromInt64(1)),
	))
	m := must(t)
	arena := e.arena(t)
	a, v, w := m(arena.Column("a")), m(arena.Column("v")), m(arena.Column("w"))
	yes := arena.Bool(true)

	tests := []struct {
		name    string
		keys    []string
		sums    []SumExpr
		count   string
		where   expr.Handle
		wantErr error
	}{
		{"计数别名与分组键冲突", []string{"a"}, nil, "a", yes, ErrReservedAlias},
		{"计数别名与求和别名冲突", nil, []SumExpr{{Expr: a, Alias: "__count__", Type: types.ColumnTypeBigInt}}, "", yes, ErrReservedAlias},
		{"别名重复", []string{"a"}, []SumExpr{{Expr: a, Alias: "a", Type: types.ColumnTypeBigInt}}, "", yes, ErrDuplicateAlias},
		{"未知分组列", []string{"missing"}, nil, "", yes, expr.ErrUnknownColumn},
		{"VarChar 求和", nil, []SumExpr{{Expr: v, Alias: "s", Type: types.ColumnTypeScalar}}, "", yes, ErrUnsupportedAggregate},
		{"结果类型变窄", nil, []SumExpr{{Expr: w, Alias: "s", Type: types.ColumnTypeBigInt}}, "", yes, expr.ErrTypeMismatch},
		{"非布尔谓词", nil, nil, "", a, expr.ErrTypeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGroupByExpr(arena, tt.keys, tt.sums, tt.count, tt.where)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("空表引用", func(t *testing.T) {
		_, err := NewGroupByExpr(nil, nil, nil, "", 0)
		assert.ErrorIs(t, err, types.ErrEmptyTableRef)
	})
}
