package query

import (
	"fmt"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/weisyn/proofsql/internal/core/expr"
	"github.com/weisyn/proofsql/internal/core/proof"
	"github.com/weisyn/proofsql/internal/core/scalar"
	"github.com/weisyn/proofsql/pkg/types"
)

// AggregateFunc 聚合函数
type AggregateFunc int

const (
	AggregateSum AggregateFunc = iota + 1
	AggregateCount
	AggregateMin
	AggregateMax
)

// String 函数名
func (f AggregateFunc) String() string {
	switch f {
	case AggregateSum:
		return "SUM"
	case AggregateCount:
		return "COUNT"
	case AggregateMin:
		return "MIN"
	case AggregateMax:
		return "MAX"
	default:
		return fmt.Sprintf("AggregateFunc(%d)", int(f))
	}
}

// ParseAggregateFunc 解析函数名（大小写不敏感）
func ParseAggregateFunc(s string) (AggregateFunc, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SUM":
		return AggregateSum, nil
	case "COUNT":
		return AggregateCount, nil
	case "MIN":
		return AggregateMin, nil
	case "MAX":
		return AggregateMax, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedAggregate, s)
	}
}

// AggregateItem 一个聚合输出列，COUNT 忽略 Expr
type AggregateItem struct {
	Func  AggregateFunc
	Expr  expr.Handle
	Alias string
}

// AggregateExpr 不分组的 SUM/COUNT/MIN/MAX
//
// 公开数据为选中行数 k，约束 Σs = k。k 为 0 时结果为零行，否则为一行。
//   - SUM: Σ s·a = 结果（BigInt 求和结果为 Int128，不会溢出）
//   - COUNT: 结果 = k（明文检查）
//   - MIN(m): 对 s·(a − m) 做符号分解并约束最高位等于 ρ，
//     再用独热见证 t 指出取到 m 的行：t² − t = 0，t − t·s = 0，t·(a − m) = 0，Σt = 1
//   - MAX 与 MIN 对称，使用 s·(m − a)
type AggregateExpr struct {
	arena *expr.Arena
	items []AggregateItem
	where expr.Handle
}

var _ proof.Plan = (*AggregateExpr)(nil)

// NewAggregateExpr 创建聚合计划
func NewAggregateExpr(arena *expr.Arena, items []AggregateItem, where expr.Handle) (*AggregateExpr, error) {
	if arena == nil || arena.Table().IsZero() {
		return nil, types.ErrEmptyTableRef
	}
	if err := predicate(arena, where); err != nil {
		return nil, err
	}
	aliases := newAliasSet("")
	out := make([]AggregateItem, len(items))
	for i, it := range items {
		switch it.Func {
		case AggregateCount:
		case AggregateSum:
			if t := arena.Type(it.Expr); !t.IsNumeric() {
				return nil, WrapUnsupportedAggregateError(it.Func, t)
			}
		case AggregateMin, AggregateMax:
			if t := arena.Type(it.Expr); !t.IsOrdered() {
				return nil, WrapUnsupportedAggregateError(it.Func, t)
			}
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedAggregate, it.Func)
		}
		alias, err := aliases.add(it.Alias)
		if err != nil {
			return nil, err
		}
		out[i] = AggregateItem{Func: it.Func, Expr: it.Expr, Alias: alias}
	}
	return &AggregateExpr{arena: arena, items: out, where: where}, nil
}

// roots 谓词与各聚合输入（COUNT 没有输入，占位为谓词）
func (a *AggregateExpr) roots() []expr.Handle {
	roots := []expr.Handle{a.where}
	for _, it := range a.items {
		if it.Func == AggregateCount {
			roots = append(roots, a.where)
			continue
		}
		roots = append(roots, it.Expr)
	}
	return roots
}

// Table 源表
func (a *AggregateExpr) Table() types.TableRef { return a.arena.Table() }

// Columns 引用的输入列
func (a *AggregateExpr) Columns() []string { return a.arena.Columns(a.roots()...) }

// resultType COUNT 为 BigInt；BigInt 的 SUM 放宽为 Int128，其余保持输入类型
func (a *AggregateExpr) resultType(it AggregateItem) types.ColumnType {
	if it.Func == AggregateCount {
		return types.ColumnTypeBigInt
	}
	t := a.arena.Type(it.Expr)
	if it.Func == AggregateSum && t == types.ColumnTypeBigInt {
		return types.ColumnTypeInt128
	}
	return t
}

// ResultSchema 结果列
func (a *AggregateExpr) ResultSchema() []types.ColumnField {
	out := make([]types.ColumnField, len(a.items))
	for i, it := range a.items {
		out[i] = types.ColumnField{Name: it.Alias, Type: a.resultType(it)}
	}
	return out
}

// Describe 计划文本
func (a *AggregateExpr) Describe() string {
	items := make([]string, len(a.items))
	for i, it := range a.items {
		arg := "*"
		if it.Func != AggregateCount {
			arg = a.arena.Describe(it.Expr)
		}
		items[i] = fmt.Sprintf("%s=%s(%s)", it.Alias, it.Func, arg)
	}
	return fmt.Sprintf("aggregate(table=%s, select=%s, where=%s)", a.Table(), describeList(items), a.arena.Describe(a.where))
}

// Execute 证明方执行
func (a *AggregateExpr) Execute(input *types.Table) (*proof.Execution, error) {
	mask, err := a.arena.Evaluate(a.where, input)
	if err != nil {
		return nil, err
	}
	rows := selectedRows(mask)
	k := len(rows)
	fields := make([]types.Field, len(a.items))
	for i, it := range a.items {
		if k == 0 {
			fields[i] = types.NewField(it.Alias, types.EmptyColumn(a.resultType(it)))
			continue
		}
		var col types.Column
		switch it.Func {
		case AggregateCount:
			col = types.NewBigIntColumn(int64(k))
		case AggregateSum:
			values, err := a.arena.Evaluate(it.Expr, input)
			if err != nil {
				return nil, err
			}
			if col, err = sumGroups(expr.Promote(values, a.resultType(it)), [][]int{rows}); err != nil {
				return nil, err
			}
		default:
			values, err := a.arena.Evaluate(it.Expr, input)
			if err != nil {
				return nil, err
			}
			col = values.Gather([]int{extremeRow(values, rows, it.Func)})
		}
		fields[i] = types.NewField(it.Alias, col)
	}
	result, err := types.NewTableWithRows(min(k, 1), fields...)
	if err != nil {
		return nil, err
	}
	return &proof.Execution{Result: result, Public: []uint64{uint64(k)}}, nil
}

// extremeRow 选中行中取到最小（MIN）或最大（MAX）值的第一行
func extremeRow(values types.Column, rows []int, fn AggregateFunc) int {
	best := rows[0]
	for _, r := range rows[1:] {
		c := values.CompareRows(r, values, best)
		if (fn == AggregateMin && c < 0) || (fn == AggregateMax && c > 0) {
			best = r
		}
	}
	return best
}

// CheckPublic k 不超过源表行数，结果行数与 k 一致，COUNT 等于 k
func (a *AggregateExpr) CheckPublic(rows uint64, result *types.Table, public []uint64) error {
	if len(public) != 1 {
		return invalidPublic("want selected row count, got %d values", len(public))
	}
	k := public[0]
	if k > rows {
		return invalidPublic("selected %d rows of %d", k, rows)
	}
	want := 0
	if k > 0 {
		want = 1
	}
	if result.Len() != want {
		return invalidPublic("aggregate over %d rows has %d result rows", k, result.Len())
	}
	if want == 0 {
		return nil
	}
	for _, it := range a.items {
		if it.Func != AggregateCount {
			continue
		}
		col, _ := result.Column(it.Alias)
		if col.BigInts[0] < 0 || uint64(col.BigInts[0]) != k {
			return invalidPublic("%s=%d, selected %d rows", it.Alias, col.BigInts[0], k)
		}
	}
	return nil
}

// Arithmetize 生成约束
func (a *AggregateExpr) Arithmetize(b proof.Builder, result *types.Table, public []uint64) error {
	polys, err := a.arena.Arithmetize(b, a.roots()...)
	if err != nil {
		return err
	}
	s, err := commitSelection(b, polys[0])
	if err != nil {
		return err
	}
	var k fr.Element
	k.SetUint64(public[0])
	b.SumConstraint(s, k)
	if public[0] == 0 {
		return nil
	}

	rho := proof.Var(proof.RowIndicator)
	for i, it := range a.items {
		col, _ := result.Column(it.Alias)
		claimed := scalar.FromColumn(col)[0]
		v := polys[i+1]
		switch it.Func {
		case AggregateSum:
			b.SumConstraint(s.Mul(v), claimed)
		case AggregateMin, AggregateMax:
			diff := v.Sub(proof.Literal(claimed))
			if it.Func == AggregateMax {
				diff = diff.Neg()
			}
			label := fmt.Sprintf("aggregate.%d.%s", i, strings.ToLower(it.Func.String()))
			top, err := expr.NonNegative(b, s.Mul(diff), a.arena.Type(it.Expr).BitWidth(), label)
			if err != nil {
				return err
			}
			b.ZeroConstraint(top.Sub(rho))
			if err := a.witnessExtreme(b, label, s, diff); err != nil {
				return err
			}
		}
	}
	return nil
}

// witnessExtreme 独热列 t 指出一个取到极值的选中行
func (a *AggregateExpr) witnessExtreme(b proof.Builder, label string, s, diff proof.Poly) error {
	var onehot []fr.Element
	if b.IsProver() {
		sv, dv := b.Values(s), b.Values(diff)
		onehot = make([]fr.Element, len(sv))
		found := false
		for i := 0; i < b.NumRows() && !found; i++ {
			if sv[i].IsOne() && dv[i].IsZero() {
				onehot[i].SetOne()
				found = true
			}
		}
		if !found {
			return proof.WrapProverInvariantError("%s: no selected row attains the claimed value", label)
		}
	}
	h, err := b.Commit(label+".witness", func() []fr.Element { return onehot })
	if err != nil {
		return err
	}
	t := proof.Var(h)
	b.ZeroConstraint(t.Mul(t).Sub(t))
	b.ZeroConstraint(t.Sub(t.Mul(s)))
	b.ZeroConstraint(t.Mul(diff))
	var one fr.Element
	one.SetOne()
	b.SumConstraint(t, one)
	return nil
}
