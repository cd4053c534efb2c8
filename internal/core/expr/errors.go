package expr

import (
	"errors"
	"fmt"

	"github.com/weisyn/proofsql/pkg/types"
)

var (
	// ErrUnknownColumn 列不存在于源表
	ErrUnknownColumn = errors.New("unknown column")
	// ErrTypeMismatch 操作数类型不兼容
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrArithmeticOverflow 算术结果超出类型范围
	ErrArithmeticOverflow = errors.New("arithmetic overflow")
	// ErrInvalidHandle 句柄不属于当前 arena
	ErrInvalidHandle = errors.New("invalid expression handle")
)

// WrapUnknownColumnError 包装未知列错误
func WrapUnknownColumnError(table types.TableRef, column string) error {
	return fmt.Errorf("%w: table=%s column=%s", ErrUnknownColumn, table, column)
}

// WrapTypeMismatchError 包装类型不匹配错误
func WrapTypeMismatchError(op Op, left, right types.ColumnType) error {
	return fmt.Errorf("%w: op=%s left=%s right=%s", ErrTypeMismatch, op, left, right)
}
