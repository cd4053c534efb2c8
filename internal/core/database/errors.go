package database

import (
	"errors"
	"fmt"

	"github.com/weisyn/proofsql/pkg/types"
)

var (
	// ErrTableNotFound 表不存在
	ErrTableNotFound = errors.New("table not found")
	// ErrColumnNotFound 列不存在
	ErrColumnNotFound = errors.New("column not found")
	// ErrTableExists 表已存在
	ErrTableExists = errors.New("table already exists")
	// ErrStoreClosed 存储已关闭
	ErrStoreClosed = errors.New("store closed")
)

// WrapTableNotFoundError 包装表不存在错误
func WrapTableNotFoundError(table types.TableRef) error {
	return fmt.Errorf("%w: table=%s", ErrTableNotFound, table)
}

// WrapColumnNotFoundError 包装列不存在错误
func WrapColumnNotFoundError(table types.TableRef, column string) error {
	return fmt.Errorf("%w: table=%s column=%s", ErrColumnNotFound, table, column)
}
