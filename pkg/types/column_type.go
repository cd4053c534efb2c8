package types

import (
	"fmt"
	"strings"
)

// ColumnType 列类型（带标签的变体）
//
// 🎯 **数值提升格**：BigInt → Int128 → Scalar
// VarChar 只支持 Equal；Boolean 支持 Equal/And/Or/Not。
type ColumnType int

const (
	ColumnTypeBoolean ColumnType = iota + 1
	ColumnTypeBigInt
	ColumnTypeInt128
	ColumnTypeScalar
	ColumnTypeVarChar
)

// String 返回类型名称
func (t ColumnType) String() string {
	switch t {
	case ColumnTypeBoolean:
		return "BOOLEAN"
	case ColumnTypeBigInt:
		return "BIGINT"
	case ColumnTypeInt128:
		return "INT128"
	case ColumnTypeScalar:
		return "SCALAR"
	case ColumnTypeVarChar:
		return "VARCHAR"
	default:
		return fmt.Sprintf("ColumnType(%d)", int(t))
	}
}

// ParseColumnType 解析类型名称（大小写不敏感）
func ParseColumnType(s string) (ColumnType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BOOLEAN", "BOOL":
		return ColumnTypeBoolean, nil
	case "BIGINT", "INT64":
		return ColumnTypeBigInt, nil
	case "INT128", "HUGEINT":
		return ColumnTypeInt128, nil
	case "SCALAR":
		return ColumnTypeScalar, nil
	case "VARCHAR", "STRING", "TEXT":
		return ColumnTypeVarChar, nil
	default:
		return 0, fmt.Errorf("未知列类型: %q", s)
	}
}

// MarshalText 实现 encoding.TextMarshaler
func (t ColumnType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("无效列类型: %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (t *ColumnType) UnmarshalText(b []byte) error {
	parsed, err := ParseColumnType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Valid 是否为已知类型
func (t ColumnType) Valid() bool {
	return t >= ColumnTypeBoolean && t <= ColumnTypeVarChar
}

// IsNumeric 是否处于数值提升格中
func (t ColumnType) IsNumeric() bool {
	return t == ColumnTypeBigInt || t == ColumnTypeInt128 || t == ColumnTypeScalar
}

// IsOrdered 是否支持大小比较（有界整数）
func (t ColumnType) IsOrdered() bool {
	return t == ColumnTypeBigInt || t == ColumnTypeInt128
}

// BitWidth 有界整数的位宽，Scalar/VarChar/Boolean 返回 0
func (t ColumnType) BitWidth() int {
	switch t {
	case ColumnTypeBigInt:
		return 64
	case ColumnTypeInt128:
		return 128
	default:
		return 0
	}
}

// rank 提升格中的位置
func (t ColumnType) rank() int {
	switch t {
	case ColumnTypeBigInt:
		return 1
	case ColumnTypeInt128:
		return 2
	case ColumnTypeScalar:
		return 3
	default:
		return 0
	}
}

// CanPromoteTo 当前类型能否无损提升为 target
func (t ColumnType) CanPromoteTo(target ColumnType) bool {
	if t == target {
		return true
	}
	if !t.IsNumeric() || !target.IsNumeric() {
		return false
	}
	return t.rank() <= target.rank()
}

// PromoteNumeric 两个数值类型的最小公共上界
func PromoteNumeric(a, b ColumnType) (ColumnType, bool) {
	if !a.IsNumeric() || !b.IsNumeric() {
		return 0, false
	}
	if a.rank() >= b.rank() {
		return a, true
	}
	return b, true
}
