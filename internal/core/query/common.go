// Package query 可证明的查询计划：过滤、聚合与分组聚合
//
// 每个计划实现 proof.Plan：证明方用 Execute 在明文上求结果，
// 双方用同一份 Arithmetize 生成约束。计划在构造时完成别名与类型检查，
// 构造失败的计划不会进入证明阶段。
package query

import (
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/weisyn/proofsql/internal/core/expr"
	"github.com/weisyn/proofsql/internal/core/proof"
	"github.com/weisyn/proofsql/internal/core/scalar"
	"github.com/weisyn/proofsql/pkg/types"
)

// DefaultCountAlias 分组计数列的默认别名
const DefaultCountAlias = "__count__"

// aliasSet 结果列别名登记
type aliasSet struct {
	reserved string
	seen     map[string]bool
}

func newAliasSet(reserved string) *aliasSet {
	return &aliasSet{reserved: reserved, seen: make(map[string]bool)}
}

func (s *aliasSet) add(alias string) (string, error) {
	id, err := types.NormalizeIdentifier(alias)
	if err != nil {
		return "", err
	}
	if s.reserved != "" && id == s.reserved {
		return "", fmt.Errorf("%w: %s", ErrReservedAlias, id)
	}
	if s.seen[id] {
		return "", WrapDuplicateAliasError(id)
	}
	s.seen[id] = true
	return id, nil
}

func predicate(arena *expr.Arena, where expr.Handle) error {
	if t := arena.Type(where); t != types.ColumnTypeBoolean {
		return fmt.Errorf("%w: filter predicate is %s", expr.ErrTypeMismatch, t)
	}
	return nil
}

// selectedRows 掩码为真的行号
func selectedRows(mask types.Column) []int {
	rows := make([]int, 0, mask.Len())
	for i, keep := range mask.Booleans {
		if keep {
			rows = append(rows, i)
		}
	}
	return rows
}

// commitSelection 承诺选择列 s 并约束 s = 谓词
func commitSelection(b proof.Builder, pred proof.Poly) (proof.Poly, error) {
	var values []fr.Element
	if b.IsProver() {
		values = b.Values(pred)
	}
	h, err := b.Commit("filter.selection", func() []fr.Element { return values })
	if err != nil {
		return proof.Poly{}, err
	}
	s := proof.Var(h)
	b.ZeroConstraint(s.Sub(pred))
	return s, nil
}

// fold Σ_j β^{j+1}·p_j
func fold(polys []proof.Poly, beta fr.Element) proof.Poly {
	var acc proof.Poly
	coef := beta
	for _, p := range polys {
		acc = acc.Add(p.Scale(coef))
		coef.Mul(&coef, &beta)
	}
	return acc
}

// foldRow Σ_j β^{j+1}·cols_j[t]
func foldRow(cols [][]fr.Element, t int, beta fr.Element) fr.Element {
	var acc, term fr.Element
	coef := beta
	for _, col := range cols {
		term.Mul(&coef, &col[t])
		acc.Add(&acc, &term)
		coef.Mul(&coef, &beta)
	}
	return acc
}

// commitQuotient 证明方承诺 h = num/den（num 为 0 的行取 0）并约束 h·den − num = 0
func commitQuotient(b proof.Builder, label string, num, den proof.Poly) (proof.Poly, error) {
	var quotient []fr.Element
	if b.IsProver() {
		nv, dv := b.Values(num), b.Values(den)
		quotient = make([]fr.Element, len(nv))
		for i := range nv {
			if nv[i].IsZero() {
				continue
			}
			if dv[i].IsZero() {
				return proof.Poly{}, proof.WrapProverInvariantError("%s: zero denominator at row %d", label, i)
			}
			quotient[i].Inverse(&dv[i])
			quotient[i].Mul(&quotient[i], &nv[i])
		}
	}
	h, err := b.Commit(label, func() []fr.Element { return quotient })
	if err != nil {
		return proof.Poly{}, err
	}
	q := proof.Var(h)
	b.ZeroConstraint(q.Mul(den).Sub(num))
	return q, nil
}

// fraction num/den，分母为 0 时返回错误（双方都会检查）
func fraction(num, den fr.Element) (fr.Element, error) {
	if den.IsZero() {
		return fr.Element{}, invalidPublic("output row collides with the challenge")
	}
	var out fr.Element
	out.Inverse(&den)
	out.Mul(&out, &num)
	return out, nil
}

// columnValues 结果表各列的域编码
func columnValues(result *types.Table, names []string) [][]fr.Element {
	out := make([][]fr.Element, len(names))
	for i, name := range names {
		col, _ := result.Column(name)
		out[i] = scalar.FromColumn(col)
	}
	return out
}

// sortGroups 按键升序把行划分为组（每组行号保持原始顺序）
func sortGroups(keys []types.Column, rows []int) [][]int {
	sorted := append([]int{}, rows...)
	compare := func(i, j int) int {
		for _, k := range keys {
			if c := k.CompareRows(i, k, j); c != 0 {
				return c
			}
		}
		return 0
	}
	sort.SliceStable(sorted, func(x, y int) bool { return compare(sorted[x], sorted[y]) < 0 })

	var groups [][]int
	for _, r := range sorted {
		if n := len(groups); n > 0 && compare(groups[n-1][0], r) == 0 {
			groups[n-1] = append(groups[n-1], r)
			continue
		}
		groups = append(groups, []int{r})
	}
	return groups
}

// sumGroups 每组求和，保持列类型，BigInt/Int128 检查溢出
func sumGroups(col types.Column, groups [][]int) (types.Column, error) {
	switch col.Type {
	case types.ColumnTypeScalar:
		out := make([]fr.Element, len(groups))
		for g, rows := range groups {
			for _, r := range rows {
				out[g].Add(&out[g], &col.Scalars[r])
			}
		}
		return types.NewScalarColumn(out...), nil
	case types.ColumnTypeBigInt:
		out := make([]int64, len(groups))
		for g, rows := range groups {
			acc := new(big.Int)
			for _, r := range rows {
				acc.Add(acc, big.NewInt(col.BigInts[r]))
			}
			if !acc.IsInt64() {
				return types.Column{}, fmt.Errorf("%w: bigint sum %s", expr.ErrArithmeticOverflow, acc)
			}
			out[g] = acc.Int64()
		}
		return types.NewBigIntColumn(out...), nil
	case types.ColumnTypeInt128:
		out := make([]*big.Int, len(groups))
		for g, rows := range groups {
			acc := new(big.Int)
			for _, r := range rows {
				acc.Add(acc, col.Int128s[r])
			}
			if err := types.CheckInt128(acc); err != nil {
				return types.Column{}, fmt.Errorf("%w: %v", expr.ErrArithmeticOverflow, err)
			}
			out[g] = acc
		}
		return types.Column{Type: types.ColumnTypeInt128, Int128s: out}, nil
	default:
		return types.Column{}, fmt.Errorf("%w: sum over %s", ErrUnsupportedAggregate, col.Type)
	}
}

// describeList 计划描述中的列表
func describeList(items []string) string {
	return "[" + strings.Join(items, ", ") + "]"
}
