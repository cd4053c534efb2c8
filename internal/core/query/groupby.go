package query

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/weisyn/proofsql/internal/core/expr"
	"github.com/weisyn/proofsql/internal/core/proof"
	"github.com/weisyn/proofsql/internal/core/scalar"
	"github.com/weisyn/proofsql/pkg/types"
)

// SumExpr 分组 SUM：输入表达式、输出别名与声明的结果类型
type SumExpr struct {
	Expr  expr.Handle
	Alias string
	Type  types.ColumnType
}

// GroupByExpr SELECT <keys>, SUM(..) AS .., COUNT(*) AS <count> FROM t WHERE <p> GROUP BY <keys>
//
// 🏗️ **分区论证（logUp）**
// 结果表绑定到转录器之后抽取 β、γ、α：
//
//	κ_i = Σ_j β^{j+1}·G_{j,i}          （分组键折叠）
//	c_i = 1 + Σ_l γ^{l+1}·A_{l,i}      （计数与各 SUM 折叠）
//
// 证明方承诺 h_i = s_i/(α+κ_i)，约束：
//
//	h·(α+κ) − s = 0
//	Σ h·c = Σ_t (count_t + Σ_l γ^{l+1}·sum_{l,t}) / (α+κ'_t)
//
// 验证方另外做明文检查：结果键两两不同、每组计数 ≥ 1、无分组键时至多一行。
// 左侧按键聚合后与右侧逐个极点比较，遗漏、伪造、重复的分组以及
// 跨行错配的聚合值都会破坏等式。
type GroupByExpr struct {
	arena      *expr.Arena
	keys       []expr.Handle
	keyNames   []string
	sums       []SumExpr
	countAlias string
	where      expr.Handle
}

var _ proof.Plan = (*GroupByExpr)(nil)

// NewGroupByExpr 创建分组计划
//
// 分组键是列名；countAlias 为空时使用 DefaultCountAlias。每个 SUM 的输入类型
// 必须能提升为声明的结果类型。
func NewGroupByExpr(arena *expr.Arena, groupBy []string, sums []SumExpr, countAlias string, where expr.Handle) (*GroupByExpr, error) {
	if arena == nil || arena.Table().IsZero() {
		return nil, types.ErrEmptyTableRef
	}
	if countAlias == "" {
		countAlias = DefaultCountAlias
	}
	count, err := types.NormalizeIdentifier(countAlias)
	if err != nil {
		return nil, err
	}
	if err := predicate(arena, where); err != nil {
		return nil, err
	}

	g := &GroupByExpr{arena: arena, countAlias: count, where: where}
	aliases := newAliasSet(count)
	for _, name := range groupBy {
		h, err := arena.Column(name)
		if err != nil {
			return nil, err
		}
		col, _ := arena.ColumnName(h)
		if _, err := aliases.add(col); err != nil {
			return nil, err
		}
		g.keys = append(g.keys, h)
		g.keyNames = append(g.keyNames, col)
	}
	for _, s := range sums {
		t := arena.Type(s.Expr)
		if !t.IsNumeric() || !s.Type.IsNumeric() {
			return nil, WrapUnsupportedAggregateError(AggregateSum, t)
		}
		if !t.CanPromoteTo(s.Type) {
			return nil, expr.WrapTypeMismatchError(expr.OpAdd, t, s.Type)
		}
		alias, err := aliases.add(s.Alias)
		if err != nil {
			return nil, err
		}
		g.sums = append(g.sums, SumExpr{Expr: s.Expr, Alias: alias, Type: s.Type})
	}
	return g, nil
}

// CountAlias 计数列别名
func (g *GroupByExpr) CountAlias() string { return g.countAlias }

func (g *GroupByExpr) roots() []expr.Handle {
	roots := append([]expr.Handle{g.where}, g.keys...)
	for _, s := range g.sums {
		roots = append(roots, s.Expr)
	}
	return roots
}

// Table 源表
func (g *GroupByExpr) Table() types.TableRef { return g.arena.Table() }

// Columns 引用的输入列
func (g *GroupByExpr) Columns() []string { return g.arena.Columns(g.roots()...) }

// ResultSchema 分组键、各 SUM、计数
func (g *GroupByExpr) ResultSchema() []types.ColumnField {
	out := make([]types.ColumnField, 0, len(g.keys)+len(g.sums)+1)
	for i, h := range g.keys {
		out = append(out, types.ColumnField{Name: g.keyNames[i], Type: g.arena.Type(h)})
	}
	for _, s := range g.sums {
		out = append(out, types.ColumnField{Name: s.Alias, Type: s.Type})
	}
	return append(out, types.ColumnField{Name: g.countAlias, Type: types.ColumnTypeBigInt})
}

// Describe 计划文本
func (g *GroupByExpr) Describe() string {
	sums := make([]string, len(g.sums))
	for i, s := range g.sums {
		sums[i] = fmt.Sprintf("%s=SUM(%s):%s", s.Alias, g.arena.Describe(s.Expr), s.Type)
	}
	return fmt.Sprintf("group_by(table=%s, keys=%s, sums=%s, count=%s, where=%s)",
		g.Table(), describeList(g.keyNames), describeList(sums), g.countAlias, g.arena.Describe(g.where))
}

// Execute 证明方执行，分组按键升序输出
func (g *GroupByExpr) Execute(input *types.Table) (*proof.Execution, error) {
	mask, err := g.arena.Evaluate(g.where, input)
	if err != nil {
		return nil, err
	}
	rows := selectedRows(mask)

	keys := make([]types.Column, len(g.keys))
	for i, h := range g.keys {
		if keys[i], err = g.arena.Evaluate(h, input); err != nil {
			return nil, err
		}
	}
	var groups [][]int
	if len(rows) > 0 {
		groups = sortGroups(keys, rows)
	}

	first := make([]int, len(groups))
	counts := make([]int64, len(groups))
	for i, rs := range groups {
		first[i] = rs[0]
		counts[i] = int64(len(rs))
	}
	fields := make([]types.Field, 0, len(g.keys)+len(g.sums)+1)
	for i, k := range keys {
		fields = append(fields, types.NewField(g.keyNames[i], k.Gather(first)))
	}
	for _, s := range g.sums {
		values, err := g.arena.Evaluate(s.Expr, input)
		if err != nil {
			return nil, err
		}
		col, err := sumGroups(expr.Promote(values, s.Type), groups)
		if err != nil {
			return nil, err
		}
		fields = append(fields, types.NewField(s.Alias, col))
	}
	fields = append(fields, types.NewField(g.countAlias, types.NewBigIntColumn(counts...)))

	result, err := types.NewTableWithRows(len(groups), fields...)
	if err != nil {
		return nil, err
	}
	return &proof.Execution{Result: result}, nil
}

// CheckPublic 键两两不同、计数 ≥ 1、无分组键时至多一行
func (g *GroupByExpr) CheckPublic(rows uint64, result *types.Table, public []uint64) error {
	if len(public) != 0 {
		return invalidPublic("group by has no public values, got %d", len(public))
	}
	n := result.Len()
	if len(g.keys) == 0 && n > 1 {
		return invalidPublic("%d rows without group by columns", n)
	}
	counts, _ := result.Column(g.countAlias)
	var total uint64
	for t, c := range counts.BigInts {
		if c < 1 {
			return invalidPublic("group %d has count %d", t, c)
		}
		total += uint64(c)
		if total > rows {
			return invalidPublic("group counts exceed %d rows", rows)
		}
	}

	keys := make([]types.Column, len(g.keyNames))
	for i, name := range g.keyNames {
		keys[i], _ = result.Column(name)
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if groups := sortGroups(keys, order); len(groups) != n {
		return invalidPublic("duplicate group keys")
	}
	return nil
}

// Arithmetize 生成约束
func (g *GroupByExpr) Arithmetize(b proof.Builder, result *types.Table, _ []uint64) error {
	polys, err := g.arena.Arithmetize(b, g.roots()...)
	if err != nil {
		return err
	}
	s, err := commitSelection(b, polys[0])
	if err != nil {
		return err
	}
	keyPolys := polys[1 : 1+len(g.keys)]
	sumPolys := polys[1+len(g.keys):]

	beta := b.Challenge("groupby.beta")
	gamma := b.Challenge("groupby.gamma")
	alpha := b.Challenge("groupby.alpha")

	var one fr.Element
	one.SetOne()
	den := proof.Constant(alpha).Add(fold(keyPolys, beta))
	h, err := commitQuotient(b, "groupby.quotient", s, den)
	if err != nil {
		return err
	}
	c := proof.Constant(one).Add(fold(sumPolys, gamma))

	keyValues := columnValues(result, g.keyNames)
	sumNames := make([]string, len(g.sums))
	for i, se := range g.sums {
		sumNames[i] = se.Alias
	}
	sumValues := columnValues(result, sumNames)
	counts, _ := result.Column(g.countAlias)
	countValues := scalar.FromColumn(counts)

	var claim fr.Element
	for t := 0; t < result.Len(); t++ {
		num := foldRow(sumValues, t, gamma)
		num.Add(&num, &countValues[t])
		d := foldRow(keyValues, t, beta)
		d.Add(&d, &alpha)
		term, err := fraction(num, d)
		if err != nil {
			return err
		}
		claim.Add(&claim, &term)
	}
	b.SumConstraint(h.Mul(c), claim)
	return nil
}
