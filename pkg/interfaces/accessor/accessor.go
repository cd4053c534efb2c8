// Package accessor 定义查询证明使用的存储访问接口
//
// 证明核心从不直接接触物理存储，只通过以下接口按 (表, 列) 读取：
// - 证明方：长度、列数据、列承诺、列类型
// - 验证方：长度、列承诺、列类型
//
// 在一次 New/Verify 生命周期内访问器必须只读。
package accessor

import (
	"github.com/weisyn/proofsql/pkg/types"
)

// MetadataAccessor 表元数据
type MetadataAccessor interface {
	// GetLength 表行数
	GetLength(table types.TableRef) (uint64, error)
}

// SchemaAccessor 列类型查询
type SchemaAccessor interface {
	// LookupColumn 列类型，列不存在时返回 false
	LookupColumn(table types.TableRef, column string) (types.ColumnType, bool)
}

// CommitmentAccessor 验证方所需的全部能力
type CommitmentAccessor interface {
	MetadataAccessor
	SchemaAccessor

	// GetCommitment 列承诺
	GetCommitment(table types.TableRef, column string) (types.Commitment, error)
}

// DataAccessor 证明方读取列数据
type DataAccessor interface {
	MetadataAccessor

	// GetColumn 列数据
	GetColumn(table types.TableRef, column string) (types.Column, error)
}

// Accessor 证明方所需的全部能力
type Accessor interface {
	CommitmentAccessor
	DataAccessor
}
