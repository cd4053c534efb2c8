package expr

import (
	"errors"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/proofsql/internal/core/commitment"
	"github.com/weisyn/proofsql/internal/core/database"
	"github.com/weisyn/proofsql/internal/core/proof"
	"github.com/weisyn/proofsql/internal/core/scalar"
	"github.com/weisyn/proofsql/pkg/types"
)

var testRef = types.MustParseTableRef("sxt.t")

func newTestAccessor(t *testing.T, table *types.Table) (*database.TableAccessor, *commitment.PublicSetup) {
	t.Helper()
	setup, err := commitment.NewPublicSetup(16, "PROOFSQL_EXPR_TEST")
	require.NoError(t, err)
	acc := database.NewTableAccessor(setup, nil)
	require.NoError(t, acc.AddTable(testRef, table))
	return acc, setup
}

func sampleTable(a []int64, b []int64, s []string) *types.Table {
	return types.MustNewTable(
		types.NewField("a", types.NewBigIntColumn(a...)),
		types.NewField("b", types.Int128ColumnFromInt64(b...)),
		types.NewField("s", types.NewVarCharColumn(s...)),
	)
}

// exprPlan 把单个表达式的逐行取值作为结果公开
//
// 结果列通过两条求和约束与表达式多项式绑定：Σp 与 Σ i·p。
type exprPlan struct {
	arena *Arena
	root  Handle
}

func (p exprPlan) Table() types.TableRef { return p.arena.Table() }
func (p exprPlan) Columns() []string     { return p.arena.Columns(p.root) }
func (p exprPlan) Describe() string      { return "project(" + p.arena.Describe(p.root) + ")" }

func (p exprPlan) ResultSchema() []types.ColumnField {
	return []types.ColumnField{{Name: "out", Type: p.arena.Type(p.root)}}
}

func (p exprPlan) Execute(input *types.Table) (*proof.Execution, error) {
	col, err := p.arena.Evaluate(p.root, input)
	if err != nil {
		return nil, err
	}
	result, err := types.NewTableWithRows(input.Len(), types.NewField("out", col))
	if err != nil {
		return nil, err
	}
	return &proof.Execution{Result: result}, nil
}

func (p exprPlan) CheckPublic(rows uint64, result *types.Table, public []uint64) error {
	if uint64(result.Len()) != rows || len(public) != 0 {
		return errors.New("result must keep every row")
	}
	return nil
}

func (p exprPlan) Arithmetize(b proof.Builder, result *types.Table, _ []uint64) error {
	polys, err := p.arena.Arithmetize(b, p.root)
	if err != nil {
		return err
	}
	out, _ := result.Column("out")
	values := scalar.FromColumn(out)
	var weighted fr.Element
	for i := range values {
		var term fr.Element
		term.SetUint64(uint64(i))
		term.Mul(&term, &values[i])
		weighted.Add(&weighted, &term)
	}
	b.SumConstraint(polys[0], scalar.Sum(values))
	b.SumConstraint(polys[0].Mul(proof.Var(proof.RowIndex)), weighted)
	return nil
}

// TestArenaTypeChecking 测试构造期类型检查
func TestArenaTypeChecking(t *testing.T) {
	acc, _ := newTestAccessor(t, sampleTable([]int64{1}, []int64{2}, []string{"x"}))

	t.Run("空表引用", func(t *testing.T) {
		_, err := NewArena(types.TableRef{}, acc)
		assert.ErrorIs(t, err, types.ErrEmptyTableRef)
	})

	arena, err := NewArena(testRef, acc)
	require.NoError(t, err)
	a, err := arena.Column("A")
	require.NoError(t, err)
	b, err := arena.Column("b")
	require.NoError(t, err)
	s, err := arena.Column("s")
	require.NoError(t, err)

	t.Run("同名列共享句柄", func(t *testing.T) {
		again, err := arena.Column("a")
		require.NoError(t, err)
		assert.Equal(t, a, again)
	})

	t.Run("未知列", func(t *testing.T) {
		_, err := arena.Column("missing")
		assert.ErrorIs(t, err, ErrUnknownColumn)
	})

	tests := []struct {
		name    string
		build   func() (Handle, error)
		want    types.ColumnType
		wantErr error
	}{
		{"BigInt+Int128 提升", func() (Handle, error) { return arena.Add(a, b) }, types.ColumnTypeInt128, nil},
		{"BigInt*Scalar 提升", func() (Handle, error) { return arena.Mul(a, arena.Scalar(scalar.FromInt64(3))) }, types.ColumnTypeScalar, nil},
		{"VarChar 相等", func() (Handle, error) { return arena.Equal(s, arena.VarChar("x")) }, types.ColumnTypeBoolean, nil},
		{"数值比较", func() (Handle, error) { return arena.LessThan(a, b) }, types.ColumnTypeBoolean, nil},
		{"VarChar 加法", func() (Handle, error) { return arena.Add(s, a) }, 0, ErrTypeMismatch},
		{"VarChar 与数值比较", func() (Handle, error) { return arena.Equal(s, a) }, 0, ErrTypeMismatch},
		{"Scalar 不可排序", func() (Handle, error) { return arena.GreaterThan(arena.Scalar(fr.Element{}), a) }, 0, ErrTypeMismatch},
		{"数值取非", func() (Handle, error) { return arena.Not(a) }, 0, ErrTypeMismatch},
		{"无效句柄", func() (Handle, error) { return arena.And(Handle(999), a) }, 0, ErrInvalidHandle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := tt.build()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, arena.Type(h))
		})
	}

	t.Run("空合取为 true", func(t *testing.T) {
		h, err := arena.AndAll()
		require.NoError(t, err)
		assert.Equal(t, types.ColumnTypeBoolean, arena.Type(h))
		assert.Equal(t, `BOOLEAN("true")`, arena.Describe(h))
	})

	t.Run("引用列排序去重", func(t *testing.T) {
		sum, _ := arena.Add(b, a)
		eq, _ := arena.Equal(s, arena.VarChar("y"))
		assert.Equal(t, []string{"a", "b", "s"}, arena.Columns(sum, eq, a))
	})
}

// TestEvaluate 测试明文求值
func TestEvaluate(t *testing.T) {
	table := sampleTable([]int64{1, -5, 7}, []int64{2, -5, 3}, []string{"x", "y", "x"})
	acc, _ := newTestAccessor(t, table)
	arena, err := NewArena(testRef, acc)
	require.NoError(t, err)
	a, _ := arena.Column("a")
	b, _ := arena.Column("b")
	s, _ := arena.Column("s")

	t.Run("算术提升", func(t *testing.T) {
		h, err := arena.Add(a, b)
		require.NoError(t, err)
		col, err := arena.Evaluate(h, table)
		require.NoError(t, err)
		assert.True(t, col.Equal(types.Int128ColumnFromInt64(3, -10, 10)))
	})

	t.Run("比较与逻辑", func(t *testing.T) {
		le, _ := arena.LessThanOrEqual(a, b)
		eq, _ := arena.Equal(s, arena.VarChar("x"))
		or, _ := arena.Or(le, eq)
		not, _ := arena.Not(or)
		col, err := arena.Evaluate(not, table)
		require.NoError(t, err)
		assert.Equal(t, []bool{false, false, false}, col.Booleans)

		gt, _ := arena.GreaterThan(a, b)
		col, err = arena.Evaluate(gt, table)
		require.NoError(t, err)
		assert.Equal(t, []bool{false, false, true}, col.Booleans)
	})

	t.Run("字面量广播", func(t *testing.T) {
		col, err := arena.Evaluate(arena.BigInt(9), table)
		require.NoError(t, err)
		assert.Equal(t, []int64{9, 9, 9}, col.BigInts)
	})

	t.Run("BigInt 溢出", func(t *testing.T) {
		big64 := arena.BigInt(1 << 62)
		h, _ := arena.Mul(a, big64)
		_, err := arena.Evaluate(h, table)
		assert.ErrorIs(t, err, ErrArithmeticOverflow)
	})

	t.Run("Int128 溢出", func(t *testing.T) {
		max, err := arena.Int128(types.Int128Max)
		require.NoError(t, err)
		h, _ := arena.Add(b, max)
		_, err = arena.Evaluate(h, table)
		assert.ErrorIs(t, err, ErrArithmeticOverflow)
	})

	t.Run("Int128 字面量越界", func(t *testing.T) {
		_, err := arena.Int128(new(big.Int).Lsh(big.NewInt(1), 127))
		assert.ErrorIs(t, err, types.ErrInt128OutOfRange)
	})
}

// TestArithmetizeRoundTrip 测试表达式约束的证明与验证
func TestArithmetizeRoundTrip(t *testing.T) {
	build := func(arena *Arena, which string) Handle {
		a, _ := arena.Column("a")
		b, _ := arena.Column("b")
		s, _ := arena.Column("s")
		var h Handle
		switch which {
		case "eq":
			h, _ = arena.Equal(a, b)
		case "varchar":
			h, _ = arena.Equal(s, arena.VarChar("x"))
		case "lt":
			h, _ = arena.LessThan(a, b)
		case "ge":
			h, _ = arena.GreaterThanOrEqual(a, arena.BigInt(0))
		case "compound":
			lt, _ := arena.LessThan(a, arena.BigInt(5))
			eq, _ := arena.Equal(s, arena.VarChar("y"))
			or, _ := arena.Or(lt, eq)
			h, _ = arena.Not(or)
		case "arith":
			sum, _ := arena.Add(a, b)
			h, _ = arena.Mul(sum, arena.BigInt(3))
		}
		return h
	}
	tables := map[string]*types.Table{
		"空表":   sampleTable(nil, nil, nil),
		"单行":   sampleTable([]int64{4}, []int64{4}, []string{"x"}),
		"多行负数": sampleTable([]int64{-3, 5, 7, -9223372036854775808, 9}, []int64{-3, 6, 2, 9223372036854775807, 9}, []string{"x", "y", "z", "x", "y"}),
	}
	for tableName, table := range tables {
		for _, which := range []string{"eq", "varchar", "lt", "ge", "compound", "arith"} {
			t.Run(tableName+"/"+which, func(t *testing.T) {
				acc, setup := newTestAccessor(t, table)
				arena, err := NewArena(testRef, acc)
				require.NoError(t, err)
				plan := exprPlan{arena: arena, root: build(arena, which)}

				res, err := proof.New(plan, acc, setup)
				require.NoError(t, err)
				data, err := res.Verify(plan, acc, setup)
				require.NoError(t, err)
				assert.True(t, data.Table.Equal(res.Table))
			})
		}
	}
}

// TestArithmetizeTamper 测试篡改结果被拒绝
func TestArithmetizeTamper(t *testing.T) {
	table := sampleTable([]int64{1, 2, 3}, []int64{1, 5, 0}, []string{"x", "y", "z"})
	acc, setup := newTestAccessor(t, table)
	arena, err := NewArena(testRef, acc)
	require.NoError(t, err)
	a, _ := arena.Column("a")
	b, _ := arena.Column("b")
	lt, _ := arena.LessThan(a, b)
	plan := exprPlan{arena: arena, root: lt}

	res, err := proof.New(plan, acc, setup)
	require.NoError(t, err)
	out, _ := res.Table.Column("out")
	require.Equal(t, []bool{false, true, false}, out.Booleans)

	tampered := &proof.VerifiableQueryResult{
		Table: types.MustNewTable(types.NewField("out", types.NewBooleanColumn(true, false, false))),
		Proof: res.Proof,
	}
	_, err = tampered.Verify(plan, acc, setup)
	assert.ErrorIs(t, err, proof.ErrVerificationFailed)
}
