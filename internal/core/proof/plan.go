package proof

import (
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/weisyn/proofsql/pkg/types"
)

// Plan 可证明的查询计划
//
// 🎯 **双方对称**
// 证明方与验证方执行同一份 Arithmetize 代码，只是 Builder 不同：
// 证明方持有数据并生成见证，验证方只持有承诺。任何依赖数据的分支
// 都必须写在 Builder.Values / Commit 的回调里。
type Plan interface {
	// Table 源表
	Table() types.TableRef

	// Columns 需要读取的输入列（小写、去重、确定顺序）
	Columns() []string

	// ResultSchema 结果表的列名与类型
	ResultSchema() []types.ColumnField

	// Describe 计划的规范文本，写入转录器
	Describe() string

	// Execute 证明方直接执行查询（input 只含 Columns 中的列，行数与源表相同）
	Execute(input *types.Table) (*Execution, error)

	// CheckPublic 对结果表与公开数据做明文检查（双方都执行）
	CheckPublic(rows uint64, result *types.Table, public []uint64) error

	// Arithmetize 生成约束
	Arithmetize(b Builder, result *types.Table, public []uint64) error
}

// Execution 证明方执行结果
type Execution struct {
	Result *types.Table
	Public []uint64
}

// Builder 约束构建器
type Builder interface {
	// NumRows 源表行数 n
	NumRows() int

	// PaddedRows 填充后的行数 2^ν
	PaddedRows() int

	// IsProver 是否为证明方
	IsProver() bool

	// Input 输入列句柄（同名多次调用返回同一句柄）
	Input(column string) (Handle, error)

	// Commit 承诺一列见证并写入转录器
	//
	// witness 只在证明方调用，返回不超过 PaddedRows 的取值，其余补零。
	Commit(label string, witness func() []fr.Element) (Handle, error)

	// Values 证明方逐行计算多项式（长度 PaddedRows），验证方返回 nil
	Values(p Poly) []fr.Element

	// Challenge 从转录器抽取挑战
	Challenge(label string) fr.Element

	// ZeroConstraint p 在每一行（含填充行）都为 0
	ZeroConstraint(p Poly)

	// SumConstraint p 在全部行上的和为 claim
	SumConstraint(p Poly, claim fr.Element)
}

type constraint struct {
	poly  Poly
	claim fr.Element
	zero  bool
}
