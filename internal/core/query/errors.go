package query

import (
	"errors"
	"fmt"
)

var (
	// ErrReservedAlias 别名与保留的计数列别名冲突
	ErrReservedAlias = errors.New("alias collides with reserved count alias")
	// ErrDuplicateAlias 结果列别名重复
	ErrDuplicateAlias = errors.New("duplicate result alias")
	// ErrUnsupportedAggregate 聚合函数不支持该输入类型
	ErrUnsupportedAggregate = errors.New("unsupported aggregate")
	// ErrInvalidPublic 公开数据与结果表不一致
	ErrInvalidPublic = errors.New("invalid public data")
)

// WrapDuplicateAliasError 包装别名重复错误
func WrapDuplicateAliasError(alias string) error {
	return fmt.Errorf("%w: %s", ErrDuplicateAlias, alias)
}

// WrapUnsupportedAggregateError 包装不支持的聚合错误
func WrapUnsupportedAggregateError(fn AggregateFunc, typ fmt.Stringer) error {
	return fmt.Errorf("%w: %s over %s", ErrUnsupportedAggregate, fn, typ)
}

func invalidPublic(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidPublic, fmt.Sprintf(format, args...))
}
