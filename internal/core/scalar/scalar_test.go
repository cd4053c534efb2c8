package scalar

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/proofsql/pkg/types"
)

func randomPoint(t *testing.T, n int) []fr.Element {
	t.Helper()
	r := make([]fr.Element, n)
	for i := range r {
		_, err := r[i].SetRandom()
		require.NoError(t, err)
	}
	return r
}

// TestSignedEmbedding 测试有符号嵌入与还原
func TestSignedEmbedding(t *testing.T) {
	tests := []struct {
		name  string
		value int64
	}{
		{"零", 0},
		{"正数", 42},
		{"负数", -7},
		{"最小值", -1 << 63},
		{"最大值", 1<<63 - 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToInt64(FromInt64(tt.value))
			require.NoError(t, err)
			assert.Equal(t, tt.value, got)
		})
	}

	big128 := new(big.Int).Lsh(big.NewInt(1), 100)
	_, err := ToInt64(FromBigInt(big128))
	require.ErrorIs(t, err, ErrOutOfRange)

	v, err := ToInt128(FromBigInt(new(big.Int).Neg(big128)))
	require.NoError(t, err)
	assert.Equal(t, 0, v.Cmp(new(big.Int).Neg(big128)))
}

// TestFromColumn 测试列编码
func TestFromColumn(t *testing.T) {
	col := types.NewVarCharColumn("f1", "f2", "f1")
	enc := FromColumn(col)
	require.Len(t, enc, 3)
	assert.True(t, enc[0].Equal(&enc[2]))
	assert.False(t, enc[0].Equal(&enc[1]))

	boolEnc := FromColumn(types.NewBooleanColumn(true, false))
	assert.True(t, boolEnc[0].IsOne())
	assert.True(t, boolEnc[1].IsZero())

	neg := FromColumn(types.NewBigIntColumn(-1))
	var minusOne fr.Element
	minusOne.SetOne()
	minusOne.Neg(&minusOne)
	assert.True(t, neg[0].Equal(&minusOne))
}

// TestToColumn 测试列还原
func TestToColumn(t *testing.T) {
	values := []fr.Element{FromInt64(3), FromInt64(-4)}
	col, err := ToColumn(types.ColumnTypeBigInt, values)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, -4}, col.BigInts)

	_, err = ToColumn(types.ColumnTypeBoolean, values)
	require.ErrorIs(t, err, ErrOutOfRange)

	_, err = ToColumn(types.ColumnTypeVarChar, values)
	require.ErrorIs(t, err, ErrUnsupportedValue)
}

// TestFromValue 测试字面量编码
func TestFromValue(t *testing.T) {
	e, err := FromValue(types.ColumnTypeInt128, int64(1020))
	require.NoError(t, err)
	want := FromInt64(1020)
	assert.True(t, e.Equal(&want))

	_, err = FromValue(types.ColumnTypeBigInt, "x")
	require.ErrorIs(t, err, ErrUnsupportedValue)

	s, err := FromValue(types.ColumnTypeVarChar, "f2")
	require.NoError(t, err)
	want = FromString("f2")
	assert.True(t, s.Equal(&want))
}

// TestEqTable 测试 eq 表与多线性求值一致
func TestEqTable(t *testing.T) {
	r := randomPoint(t, 4)
	table := EqTable(r)
	require.Len(t, table, 16)

	total := Sum(table)
	assert.True(t, total.IsOne(), "eq 表之和应为 1")

	values := make([]fr.Element, 11)
	for i := range values {
		values[i].SetUint64(uint64(i*i + 3))
	}
	direct := InnerProduct(values, table)
	folded := EvalMLE(values, r)
	assert.True(t, direct.Equal(&folded))

	s := randomPoint(t, 4)
	closed := EqEval(r, s)
	viaTable := EvalMLE(table, s)
	assert.True(t, closed.Equal(&viaTable))
}

// TestRowIndicatorEval 测试 ρ 的快速求值
func TestRowIndicatorEval(t *testing.T) {
	r := randomPoint(t, 3)
	for n := 0; n <= 9; n++ {
		fast := RowIndicatorEval(n, r)
		slow := EvalMLE(RowIndicator(n, 8), r)
		assert.True(t, fast.Equal(&slow), "n=%d", n)
	}

	idx := RowIndexEval(r)
	slowIdx := EvalMLE(RowIndex(8), r)
	assert.True(t, idx.Equal(&slowIdx))
}

// TestSizes 测试尺寸辅助函数
func TestSizes(t *testing.T) {
	assert.Equal(t, 1, NextPowerOfTwo(0))
	assert.Equal(t, 1, NextPowerOfTwo(1))
	assert.Equal(t, 8, NextPowerOfTwo(5))
	assert.Equal(t, 0, NumVars(1))
	assert.Equal(t, 3, NumVars(5))
	assert.Equal(t, 3, NumVars(8))

	p := Powers(FromInt64(2), 4)
	assert.Equal(t, int64(8), mustInt64(t, p[3]))
}

func mustInt64(t *testing.T, e fr.Element) int64 {
	t.Helper()
	v, err := ToInt64(e)
	require.NoError(t, err)
	return v
}
