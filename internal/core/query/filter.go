package query

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/weisyn/proofsql/internal/core/expr"
	"github.com/weisyn/proofsql/internal/core/proof"
	"github.com/weisyn/proofsql/pkg/types"
)

// AliasedExpr 带别名的结果表达式
type AliasedExpr struct {
	Expr  expr.Handle
	Alias string
}

// FilterExpr SELECT <exprs> FROM t WHERE <predicate>
//
// 🎯 **选择论证**
// 公开数据是被选中行的原始行号（严格递增）。输出绑定到转录器之后抽取 α、β，
// 令 φ_i = i + Σ_j β^{j+1}·c_{j,i}，证明方承诺 h_i = s_i/(α+φ_i)，约束：
//
//	h·(α+φ) − s = 0
//	Σ h = Σ_t 1/(α + idx_t + Σ_j β^{j+1}·out_{j,t})
//
// 右侧只依赖结果表与行号，验证方的工作量与输出行数成正比。
type FilterExpr struct {
	arena   *expr.Arena
	results []AliasedExpr
	where   expr.Handle
}

var _ proof.Plan = (*FilterExpr)(nil)

// NewFilterExpr 创建过滤计划
func NewFilterExpr(arena *expr.Arena, results []AliasedExpr, where expr.Handle) (*FilterExpr, error) {
	if arena == nil || arena.Table().IsZero() {
		return nil, types.ErrEmptyTableRef
	}
	if err := predicate(arena, where); err != nil {
		return nil, err
	}
	aliases := newAliasSet("")
	out := make([]AliasedExpr, len(results))
	for i, r := range results {
		if arena.Type(r.Expr) == 0 {
			return nil, fmt.Errorf("%w: %d", expr.ErrInvalidHandle, r.Expr)
		}
		alias, err := aliases.add(r.Alias)
		if err != nil {
			return nil, err
		}
		out[i] = AliasedExpr{Expr: r.Expr, Alias: alias}
	}
	return &FilterExpr{arena: arena, results: out, where: where}, nil
}

func (f *FilterExpr) roots() []expr.Handle {
	roots := []expr.Handle{f.where}
	for _, r := range f.results {
		roots = append(roots, r.Expr)
	}
	return roots
}

// Table 源表
func (f *FilterExpr) Table() types.TableRef { return f.arena.Table() }

// Columns 引用的输入列
func (f *FilterExpr) Columns() []string { return f.arena.Columns(f.roots()...) }

// ResultSchema 结果列
func (f *FilterExpr) ResultSchema() []types.ColumnField {
	out := make([]types.ColumnField, len(f.results))
	for i, r := range f.results {
		out[i] = types.ColumnField{Name: r.Alias, Type: f.arena.Type(r.Expr)}
	}
	return out
}

// Describe 计划文本
func (f *FilterExpr) Describe() string {
	items := make([]string, len(f.results))
	for i, r := range f.results {
		items[i] = r.Alias + "=" + f.arena.Describe(r.Expr)
	}
	return fmt.Sprintf("filter(table=%s, select=%s, where=%s)", f.Table(), describeList(items), f.arena.Describe(f.where))
}

// Execute 证明方执行
func (f *FilterExpr) Execute(input *types.Table) (*proof.Execution, error) {
	mask, err := f.arena.Evaluate(f.where, input)
	if err != nil {
		return nil, err
	}
	rows := selectedRows(mask)
	fields := make([]types.Field, len(f.results))
	for i, r := range f.results {
		col, err := f.arena.Evaluate(r.Expr, input)
		if err != nil {
			return nil, err
		}
		fields[i] = types.NewField(r.Alias, col.Gather(rows))
	}
	result, err := types.NewTableWithRows(len(rows), fields...)
	if err != nil {
		return nil, err
	}
	public := make([]uint64, len(rows))
	for i, r := range rows {
		public[i] = uint64(r)
	}
	return &proof.Execution{Result: result, Public: public}, nil
}

// CheckPublic 行号严格递增且小于源表行数
func (f *FilterExpr) CheckPublic(rows uint64, result *types.Table, public []uint64) error {
	if len(public) != result.Len() {
		return invalidPublic("%d row indices for %d result rows", len(public), result.Len())
	}
	for i, idx := range public {
		if idx >= rows {
			return invalidPublic("row index %d out of range %d", idx, rows)
		}
		if i > 0 && idx <= public[i-1] {
			return invalidPublic("row indices not strictly increasing at %d", i)
		}
	}
	return nil
}

// Arithmetize 生成约束
func (f *FilterExpr) Arithmetize(b proof.Builder, result *types.Table, public []uint64) error {
	polys, err := f.arena.Arithmetize(b, f.roots()...)
	if err != nil {
		return err
	}
	s, err := commitSelection(b, polys[0])
	if err != nil {
		return err
	}

	alpha := b.Challenge("filter.alpha")
	beta := b.Challenge("filter.beta")
	phi := proof.Var(proof.RowIndex).Add(fold(polys[1:], beta))
	h, err := commitQuotient(b, "filter.quotient", s, proof.Constant(alpha).Add(phi))
	if err != nil {
		return err
	}

	names := make([]string, len(f.results))
	for i, r := range f.results {
		names[i] = r.Alias
	}
	outs := columnValues(result, names)
	var claim, one fr.Element
	one.SetOne()
	for t, idx := range public {
		var den fr.Element
		den.SetUint64(idx)
		den.Add(&den, &alpha)
		row := foldRow(outs, t, beta)
		den.Add(&den, &row)
		term, err := fraction(one, den)
		if err != nil {
			return err
		}
		claim.Add(&claim, &term)
	}
	b.SumConstraint(h, claim)
	return nil
}
