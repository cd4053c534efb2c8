package types

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseTableRef 测试表引用解析
func TestParseTableRef(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    TableRef
		wantErr error
	}{
		{"带 schema", "SXT.Table_1", TableRef{Schema: "sxt", Table: "table_1"}, nil},
		{"默认 schema", "orders", TableRef{Schema: DefaultSchema, Table: "orders"}, nil},
		{"空串", "  ", TableRef{}, ErrEmptyTableRef},
		{"缺表名", "sxt.", TableRef{}, ErrEmptyTableRef},
		{"缺 schema", ".t", TableRef{}, ErrEmptyTableRef},
		{"非法字符", "sxt.t-1", TableRef{}, ErrInvalidIdentifier},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTableRef(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.False(t, got.IsZero())
		})
	}
	assert.Equal(t, "sxt.t", MustParseTableRef("sxt.t").String())
}

// TestNewTable 测试表构造的校验
func TestNewTable(t *testing.T) {
	t.Run("列名统一小写", func(t *testing.T) {
		tbl, err := NewTable(NewField("A", NewBigIntColumn(1, 2)), NewField("b", NewVarCharColumn("x", "y")))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, tbl.Names())
		assert.Equal(t, 2, tbl.Len())
		col, ok := tbl.Column("A")
		require.True(t, ok)
		assert.Equal(t, ColumnTypeBigInt, col.Type)
		assert.Equal(t, []string{"2", "y"}, tbl.Row(1))
	})

	t.Run("长度不一致", func(t *testing.T) {
		_, err := NewTable(NewField("a", NewBigIntColumn(1, 2)), NewField("b", NewBigIntColumn(1)))
		assert.ErrorIs(t, err, ErrColumnLengthMismatch)
	})

	t.Run("列名重复", func(t *testing.T) {
		_, err := NewTable(NewField("a", NewBigIntColumn(1)), NewField("A", NewBigIntColumn(2)))
		assert.ErrorIs(t, err, ErrDuplicateColumn)
	})

	t.Run("类型标签与数据不符", func(t *testing.T) {
		bad := Column{Type: ColumnTypeBigInt, VarChars: []string{"x"}}
		_, err := NewTable(NewField("a", bad))
		assert.ErrorIs(t, err, ErrInvalidColumn)
	})

	t.Run("无列时保留行数", func(t *testing.T) {
		tbl, err := NewTableWithRows(3)
		require.NoError(t, err)
		assert.Equal(t, 3, tbl.Len())
		assert.Equal(t, 0, tbl.NumColumns())
	})

	t.Run("相等比较", func(t *testing.T) {
		a := MustNewTable(NewField("a", NewBigIntColumn(1, 2)))
		b := MustNewTable(NewField("a", NewBigIntColumn(1, 2)))
		c := MustNewTable(NewField("a", Int128ColumnFromInt64(1, 2)))
		assert.True(t, a.Equal(b))
		assert.False(t, a.Equal(c))
		assert.False(t, a.Equal(nil))
	})
}

// TestColumn 测试列操作
func TestColumn(t *testing.T) {
	t.Run("Int128 越界", func(t *testing.T) {
		_, err := NewInt128Column(new(big.Int).Add(Int128Max, big.NewInt(1)))
		assert.ErrorIs(t, err, ErrInt128OutOfRange)
		_, err = NewInt128Column(Int128Min)
		assert.NoError(t, err)
	})

	t.Run("按掩码保留行", func(t *testing.T) {
		col := NewVarCharColumn("a", "b", "c", "d")
		got := col.Select([]bool{true, false, false, true})
		assert.True(t, got.Equal(NewVarCharColumn("a", "d")))
	})

	t.Run("Gather 深拷贝 Int128", func(t *testing.T) {
		col := Int128ColumnFromInt64(5, 6)
		got := col.Gather([]int{1})
		got.Int128s[0].SetInt64(100)
		assert.Equal(t, int64(6), col.Int128s[1].Int64())
	})

	t.Run("行比较", func(t *testing.T) {
		col := NewBigIntColumn(-3, 7)
		assert.Equal(t, -1, col.CompareRows(0, col, 1))
		assert.Equal(t, 0, col.CompareRows(1, col, 1))
		b := NewBooleanColumn(false, true)
		assert.Equal(t, 1, b.CompareRows(1, b, 0))
	})

	t.Run("空列", func(t *testing.T) {
		for _, typ := range []ColumnType{ColumnTypeBoolean, ColumnTypeBigInt, ColumnTypeInt128, ColumnTypeScalar, ColumnTypeVarChar} {
			col := EmptyColumn(typ)
			assert.Equal(t, typ, col.Type)
			assert.Zero(t, col.Len())
			assert.NoError(t, col.Validate())
		}
	})
}

// TestColumnType 测试类型提升格
func TestColumnType(t *testing.T) {
	got, ok := PromoteNumeric(ColumnTypeBigInt, ColumnTypeInt128)
	assert.True(t, ok)
	assert.Equal(t, ColumnTypeInt128, got)

	_, ok = PromoteNumeric(ColumnTypeVarChar, ColumnTypeBigInt)
	assert.False(t, ok)

	assert.True(t, ColumnTypeBigInt.CanPromoteTo(ColumnTypeScalar))
	assert.False(t, ColumnTypeScalar.CanPromoteTo(ColumnTypeInt128))
	assert.False(t, ColumnTypeBoolean.CanPromoteTo(ColumnTypeBigInt))
	assert.Equal(t, 128, ColumnTypeInt128.BitWidth())
	assert.Zero(t, ColumnTypeScalar.BitWidth())

	var parsed ColumnType
	require.NoError(t, parsed.UnmarshalText([]byte("hugeint")))
	assert.Equal(t, ColumnTypeInt128, parsed)
	assert.Error(t, parsed.UnmarshalText([]byte("float")))

	_, err := ColumnType(0).MarshalText()
	assert.Error(t, err)
}

// TestCommitmentEncoding 测试承诺编码
func TestCommitmentEncoding(t *testing.T) {
	_, _, g1, _ := bls12381.Generators()
	c := Commitment{Point: g1, Length: 42}

	var decoded Commitment
	require.NoError(t, decoded.SetBytes(c.Bytes()))
	assert.True(t, c.Equal(decoded))

	other := Commitment{Point: g1, Length: 43}
	assert.False(t, c.Equal(other))

	assert.ErrorIs(t, decoded.SetBytes(c.Bytes()[:10]), ErrInvalidCommitment)
}

// TestLoadAppConfig 测试配置文件加载
func TestLoadAppConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("合法配置", func(t *testing.T) {
		path := filepath.Join(dir, "ok.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"proof":{"setup_size":256},"storage":{"badger":{"in_memory":true}}}`), 0o600))
		cfg, err := LoadAppConfig(path)
		require.NoError(t, err)
		require.NotNil(t, cfg.Proof)
		assert.Equal(t, 256, *cfg.Proof.SetupSize)
		assert.True(t, *cfg.Storage.Badger.InMemory)
		assert.Nil(t, cfg.Log)
	})

	t.Run("文件不存在", func(t *testing.T) {
		_, err := LoadAppConfig(filepath.Join(dir, "missing.json"))
		assert.Error(t, err)
	})

	t.Run("JSON 非法", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`{`), 0o600))
		_, err := LoadAppConfig(path)
		assert.Error(t, err)
	})
}
