// Package scalar 提供 BLS12-381 标量域上的编码与多线性扩展工具
//
// 🎯 **编码约定**
// - BigInt/Int128：有符号嵌入，负数 x 映射为 p-|x|
// - Boolean：0/1
// - VarChar：fr.Hash(bytes, VarCharDST, 1)
// - Scalar：原样
//
// 🎯 **多线性扩展约定**
// 行号 i 的第 k 位对应点坐标 r[k]，sumcheck 从最低位开始绑定变量。
package scalar

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/weisyn/proofsql/pkg/types"
)

// VarCharDST VarChar 哈希到域的域分隔标签
const VarCharDST = "PROOFSQL_VARCHAR_V1"

var (
	// ErrOutOfRange 域元素无法还原为目标整数类型
	ErrOutOfRange = errors.New("scalar out of range")
	// ErrUnsupportedValue 字面量的 Go 类型与列类型不匹配
	ErrUnsupportedValue = errors.New("unsupported literal value")
)

var (
	halfModulus = new(big.Int).Rsh(fr.Modulus(), 1)
)

// FromInt64 有符号整数嵌入
func FromInt64(v int64) fr.Element {
	var e fr.Element
	e.SetInt64(v)
	return e
}

// FromBigInt 有符号大整数嵌入（对 p 取欧几里得模）
func FromBigInt(v *big.Int) fr.Element {
	var e fr.Element
	e.SetBigInt(v)
	return e
}

// FromBool 布尔值嵌入
func FromBool(b bool) fr.Element {
	var e fr.Element
	if b {
		e.SetOne()
	}
	return e
}

// FromString 字符串哈希到域
func FromString(s string) fr.Element {
	out, err := fr.Hash([]byte(s), []byte(VarCharDST), 1)
	if err != nil {
		// ExpandMsgXmd 只在 DST 超过 255 字节时失败
		panic(fmt.Sprintf("hash to field: %v", err))
	}
	return out[0]
}

// FromColumn 列的逐行域编码
func FromColumn(col types.Column) []fr.Element {
	out := make([]fr.Element, col.Len())
	switch col.Type {
	case types.ColumnTypeBoolean:
		for i, v := range col.Booleans {
			out[i] = FromBool(v)
		}
	case types.ColumnTypeBigInt:
		for i, v := range col.BigInts {
			out[i].SetInt64(v)
		}
	case types.ColumnTypeInt128:
		for i, v := range col.Int128s {
			out[i].SetBigInt(v)
		}
	case types.ColumnTypeScalar:
		copy(out, col.Scalars)
	case types.ColumnTypeVarChar:
		for i, v := range col.VarChars {
			out[i] = FromString(v)
		}
	}
	return out
}

// FromValue 字面量编码（bool/int/int64/*big.Int/fr.Element/string）
func FromValue(t types.ColumnType, v interface{}) (fr.Element, error) {
	switch t {
	case types.ColumnTypeBoolean:
		if b, ok := v.(bool); ok {
			return FromBool(b), nil
		}
	case types.ColumnTypeBigInt:
		switch x := v.(type) {
		case int64:
			return FromInt64(x), nil
		case int:
			return FromInt64(int64(x)), nil
		}
	case types.ColumnTypeInt128:
		switch x := v.(type) {
		case *big.Int:
			if err := types.CheckInt128(x); err != nil {
				return fr.Element{}, err
			}
			return FromBigInt(x), nil
		case int64:
			return FromInt64(x), nil
		case int:
			return FromInt64(int64(x)), nil
		}
	case types.ColumnTypeScalar:
		switch x := v.(type) {
		case fr.Element:
			return x, nil
		case int64:
			return FromInt64(x), nil
		case int:
			return FromInt64(int64(x)), nil
		}
	case types.ColumnTypeVarChar:
		if s, ok := v.(string); ok {
			return FromString(s), nil
		}
	}
	return fr.Element{}, fmt.Errorf("%w: type=%s value=%T", ErrUnsupportedValue, t, v)
}

// ToSignedBigInt 按有符号嵌入还原：大于 (p-1)/2 的元素视为负数
func ToSignedBigInt(e fr.Element) *big.Int {
	var v big.Int
	e.BigInt(&v)
	if v.Cmp(halfModulus) > 0 {
		v.Sub(&v, fr.Modulus())
	}
	return &v
}

// ToInt64 还原为 int64，越界返回 ErrOutOfRange
func ToInt64(e fr.Element) (int64, error) {
	v := ToSignedBigInt(e)
	if !v.IsInt64() {
		return 0, fmt.Errorf("%w: int64 value=%s", ErrOutOfRange, v.String())
	}
	return v.Int64(), nil
}

// ToInt128 还原为 Int128，越界返回 ErrOutOfRange
func ToInt128(e fr.Element) (*big.Int, error) {
	v := ToSignedBigInt(e)
	if err := types.CheckInt128(v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutOfRange, err)
	}
	return v, nil
}

// ToColumn 把域元素还原为指定类型的列（VarChar 不可逆，不支持）
func ToColumn(t types.ColumnType, values []fr.Element) (types.Column, error) {
	switch t {
	case types.ColumnTypeBigInt:
		out := make([]int64, len(values))
		for i, e := range values {
			v, err := ToInt64(e)
			if err != nil {
				return types.Column{}, err
			}
			out[i] = v
		}
		return types.NewBigIntColumn(out...), nil
	case types.ColumnTypeInt128:
		out := make([]*big.Int, len(values))
		for i, e := range values {
			v, err := ToInt128(e)
			if err != nil {
				return types.Column{}, err
			}
			out[i] = v
		}
		return types.Column{Type: types.ColumnTypeInt128, Int128s: out}, nil
	case types.ColumnTypeScalar:
		return types.NewScalarColumn(values...), nil
	case types.ColumnTypeBoolean:
		out := make([]bool, len(values))
		for i, e := range values {
			switch {
			case e.IsZero():
			case e.IsOne():
				out[i] = true
			default:
				return types.Column{}, fmt.Errorf("%w: boolean value=%s", ErrOutOfRange, e.String())
			}
		}
		return types.NewBooleanColumn(out...), nil
	default:
		return types.Column{}, fmt.Errorf("%w: cannot decode %s", ErrUnsupportedValue, t)
	}
}
