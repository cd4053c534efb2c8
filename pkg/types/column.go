package types

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

var (
	// ErrColumnLengthMismatch 同一张表内列长度不一致
	ErrColumnLengthMismatch = errors.New("column length mismatch")
	// ErrInvalidColumn 列的类型标签与数据不匹配
	ErrInvalidColumn = errors.New("invalid column")
	// ErrInt128OutOfRange Int128 值越界
	ErrInt128OutOfRange = errors.New("int128 value out of range")
)

var (
	// Int128Min = -2^127
	Int128Min = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	// Int128Max = 2^127 - 1
	Int128Max = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
)

// CheckInt128 检查值是否落在 Int128 范围内
func CheckInt128(v *big.Int) error {
	if v == nil {
		return fmt.Errorf("%w: nil", ErrInt128OutOfRange)
	}
	if v.Cmp(Int128Min) < 0 || v.Cmp(Int128Max) > 0 {
		return fmt.Errorf("%w: value=%s", ErrInt128OutOfRange, v.String())
	}
	return nil
}

// Column 定长、带类型的列向量
//
// Type 决定哪一个切片有效，其余切片必须为空。
type Column struct {
	Type     ColumnType
	Booleans []bool
	BigInts  []int64
	Int128s  []*big.Int
	Scalars  []fr.Element
	VarChars []string
}

// NewBooleanColumn 创建布尔列
func NewBooleanColumn(values ...bool) Column {
	return Column{Type: ColumnTypeBoolean, Booleans: append([]bool{}, values...)}
}

// NewBigIntColumn 创建 BigInt 列
func NewBigIntColumn(values ...int64) Column {
	return Column{Type: ColumnTypeBigInt, BigInts: append([]int64{}, values...)}
}

// NewInt128Column 创建 Int128 列（校验范围）
func NewInt128Column(values ...*big.Int) (Column, error) {
	out := make([]*big.Int, len(values))
	for i, v := range values {
		if err := CheckInt128(v); err != nil {
			return Column{}, fmt.Errorf("row=%d: %w", i, err)
		}
		out[i] = new(big.Int).Set(v)
	}
	return Column{Type: ColumnTypeInt128, Int128s: out}, nil
}

// Int128ColumnFromInt64 用 int64 字面量创建 Int128 列
func Int128ColumnFromInt64(values ...int64) Column {
	out := make([]*big.Int, len(values))
	for i, v := range values {
		out[i] = big.NewInt(v)
	}
	return Column{Type: ColumnTypeInt128, Int128s: out}
}

// NewScalarColumn 创建 Scalar 列
func NewScalarColumn(values ...fr.Element) Column {
	return Column{Type: ColumnTypeScalar, Scalars: append([]fr.Element{}, values...)}
}

// ScalarColumnFromInt64 用 int64 字面量创建 Scalar 列
func ScalarColumnFromInt64(values ...int64) Column {
	out := make([]fr.Element, len(values))
	for i, v := range values {
		out[i].SetInt64(v)
	}
	return Column{Type: ColumnTypeScalar, Scalars: out}
}

// NewVarCharColumn 创建 VarChar 列
func NewVarCharColumn(values ...string) Column {
	return Column{Type: ColumnTypeVarChar, VarChars: append([]string{}, values...)}
}

// EmptyColumn 创建指定类型的空列
func EmptyColumn(t ColumnType) Column {
	switch t {
	case ColumnTypeBoolean:
		return NewBooleanColumn()
	case ColumnTypeBigInt:
		return NewBigIntColumn()
	case ColumnTypeInt128:
		return Column{Type: ColumnTypeInt128, Int128s: []*big.Int{}}
	case ColumnTypeScalar:
		return NewScalarColumn()
	default:
		return NewVarCharColumn()
	}
}

// Len 行数
func (c Column) Len() int {
	switch c.Type {
	case ColumnTypeBoolean:
		return len(c.Booleans)
	case ColumnTypeBigInt:
		return len(c.BigInts)
	case ColumnTypeInt128:
		return len(c.Int128s)
	case ColumnTypeScalar:
		return len(c.Scalars)
	case ColumnTypeVarChar:
		return len(c.VarChars)
	default:
		return 0
	}
}

// Validate 校验类型标签与数据一致
func (c Column) Validate() error {
	populated := 0
	for _, n := range []int{len(c.Booleans), len(c.BigInts), len(c.Int128s), len(c.Scalars), len(c.VarChars)} {
		if n > 0 {
			populated++
		}
	}
	if !c.Type.Valid() {
		return fmt.Errorf("%w: type=%d", ErrInvalidColumn, int(c.Type))
	}
	if populated > 1 || (populated == 1 && c.Len() == 0) {
		return fmt.Errorf("%w: type=%s has foreign payload", ErrInvalidColumn, c.Type)
	}
	if c.Type == ColumnTypeInt128 {
		for i, v := range c.Int128s {
			if err := CheckInt128(v); err != nil {
				return fmt.Errorf("row=%d: %w", i, err)
			}
		}
	}
	return nil
}

// Value 返回第 i 行的原始值（bool/int64/*big.Int/fr.Element/string）
func (c Column) Value(i int) interface{} {
	switch c.Type {
	case ColumnTypeBoolean:
		return c.Booleans[i]
	case ColumnTypeBigInt:
		return c.BigInts[i]
	case ColumnTypeInt128:
		return c.Int128s[i]
	case ColumnTypeScalar:
		return c.Scalars[i]
	default:
		return c.VarChars[i]
	}
}

// Format 第 i 行的文本表示
func (c Column) Format(i int) string {
	switch c.Type {
	case ColumnTypeBoolean:
		return strconv.FormatBool(c.Booleans[i])
	case ColumnTypeBigInt:
		return strconv.FormatInt(c.BigInts[i], 10)
	case ColumnTypeInt128:
		return c.Int128s[i].String()
	case ColumnTypeScalar:
		return c.Scalars[i].String()
	default:
		return c.VarChars[i]
	}
}

// Equal 类型与逐行取值都相同
func (c Column) Equal(o Column) bool {
	if c.Type != o.Type || c.Len() != o.Len() {
		return false
	}
	for i := 0; i < c.Len(); i++ {
		if c.compareRow(i, o, i) != 0 {
			return false
		}
	}
	return true
}

// CompareRows 比较本列第 i 行与 o 列第 j 行（要求同类型）
//
// Scalar 按规范表示的大整数比较，仅用于确定性排序。
func (c Column) CompareRows(i int, o Column, j int) int {
	return c.compareRow(i, o, j)
}

func (c Column) compareRow(i int, o Column, j int) int {
	switch c.Type {
	case ColumnTypeBoolean:
		a, b := c.Booleans[i], o.Booleans[j]
		switch {
		case a == b:
			return 0
		case !a:
			return -1
		default:
			return 1
		}
	case ColumnTypeBigInt:
		a, b := c.BigInts[i], o.BigInts[j]
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	case ColumnTypeInt128:
		return c.Int128s[i].Cmp(o.Int128s[j])
	case ColumnTypeScalar:
		return c.Scalars[i].Cmp(&o.Scalars[j])
	default:
		a, b := c.VarChars[i], o.VarChars[j]
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	}
}

// Gather 按行号取子列（行号必须有效）
func (c Column) Gather(rows []int) Column {
	out := Column{Type: c.Type}
	switch c.Type {
	case ColumnTypeBoolean:
		out.Booleans = make([]bool, len(rows))
		for k, r := range rows {
			out.Booleans[k] = c.Booleans[r]
		}
	case ColumnTypeBigInt:
		out.BigInts = make([]int64, len(rows))
		for k, r := range rows {
			out.BigInts[k] = c.BigInts[r]
		}
	case ColumnTypeInt128:
		out.Int128s = make([]*big.Int, len(rows))
		for k, r := range rows {
			out.Int128s[k] = new(big.Int).Set(c.Int128s[r])
		}
	case ColumnTypeScalar:
		out.Scalars = make([]fr.Element, len(rows))
		for k, r := range rows {
			out.Scalars[k] = c.Scalars[r]
		}
	case ColumnTypeVarChar:
		out.VarChars = make([]string, len(rows))
		for k, r := range rows {
			out.VarChars[k] = c.VarChars[r]
		}
	}
	return out
}

// Select 按布尔掩码保留行（保持原始顺序）
func (c Column) Select(mask []bool) Column {
	rows := make([]int, 0, len(mask))
	for i, keep := range mask {
		if keep {
			rows = append(rows, i)
		}
	}
	return c.Gather(rows)
}
