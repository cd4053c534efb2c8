package proof

import (
	"sort"
	"strconv"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// Handle 证明中一列（多线性扩展）的句柄
type Handle int

const (
	// RowIndicator ρ：i < n 时为 1，填充行为 0
	RowIndicator Handle = 0
	// RowIndex 第 i 行取 i（填充行也取 i）
	RowIndex Handle = 1
)

// Monomial coef·Π factors
type Monomial struct {
	Coef    fr.Element
	Factors []Handle
}

// Poly 列句柄上的多元多项式，在超立方体上逐行求值
//
// 值类型，所有运算返回新的 Poly。
type Poly struct {
	terms []Monomial
}

// Var 单个句柄
func Var(h Handle) Poly {
	var one fr.Element
	one.SetOne()
	return Poly{terms: []Monomial{{Coef: one, Factors: []Handle{h}}}}
}

// Constant 每一行（包括填充行）都取 c
func Constant(c fr.Element) Poly {
	if c.IsZero() {
		return Poly{}
	}
	return Poly{terms: []Monomial{{Coef: c}}}
}

// Literal 有效行取 c、填充行取 0（c·ρ）
func Literal(c fr.Element) Poly {
	return Var(RowIndicator).Scale(c)
}

// Terms 单项式列表（只读）
func (p Poly) Terms() []Monomial {
	return p.terms
}

// IsZero 是否为零多项式
func (p Poly) IsZero() bool {
	return len(p.terms) == 0
}

// Degree 最大单项式次数
func (p Poly) Degree() int {
	d := 0
	for _, m := range p.terms {
		if len(m.Factors) > d {
			d = len(m.Factors)
		}
	}
	return d
}

// Add p + q
func (p Poly) Add(q Poly) Poly {
	out := make([]Monomial, 0, len(p.terms)+len(q.terms))
	out = append(out, p.terms...)
	out = append(out, q.terms...)
	return normalize(out)
}

// Neg -p
func (p Poly) Neg() Poly {
	var minusOne fr.Element
	minusOne.SetOne()
	minusOne.Neg(&minusOne)
	return p.Scale(minusOne)
}

// Sub p - q
func (p Poly) Sub(q Poly) Poly {
	return p.Add(q.Neg())
}

// Scale c·p
func (p Poly) Scale(c fr.Element) Poly {
	if c.IsZero() {
		return Poly{}
	}
	out := make([]Monomial, len(p.terms))
	for i, m := range p.terms {
		out[i].Coef.Mul(&m.Coef, &c)
		out[i].Factors = m.Factors
	}
	return Poly{terms: out}
}

// Mul p·q
//
// ρ² = ρ，同一单项式中重复的 ρ 只保留一个。
func (p Poly) Mul(q Poly) Poly {
	out := make([]Monomial, 0, len(p.terms)*len(q.terms))
	for _, a := range p.terms {
		for _, b := range q.terms {
			var m Monomial
			m.Coef.Mul(&a.Coef, &b.Coef)
			m.Factors = make([]Handle, 0, len(a.Factors)+len(b.Factors))
			m.Factors = append(m.Factors, a.Factors...)
			m.Factors = append(m.Factors, b.Factors...)
			out = append(out, m)
		}
	}
	return normalize(out)
}

// Eval 按句柄取值计算多项式
func (p Poly) Eval(value func(Handle) fr.Element) fr.Element {
	var acc fr.Element
	for _, m := range p.terms {
		prod := m.Coef
		for _, f := range m.Factors {
			v := value(f)
			prod.Mul(&prod, &v)
		}
		acc.Add(&acc, &prod)
	}
	return acc
}

// String 调试表示，如 "3*h2*h5 + 1"
func (p Poly) String() string {
	if len(p.terms) == 0 {
		return "0"
	}
	parts := make([]string, len(p.terms))
	for i, m := range p.terms {
		var sb strings.Builder
		sb.WriteString(m.Coef.String())
		for _, f := range m.Factors {
			sb.WriteString("*h")
			sb.WriteString(strconv.Itoa(int(f)))
		}
		parts[i] = sb.String()
	}
	return strings.Join(parts, " + ")
}

// normalize 排序因子、去掉重复 ρ、合并同类项并删除零系数
func normalize(terms []Monomial) Poly {
	index := make(map[string]int, len(terms))
	out := make([]Monomial, 0, len(terms))
	for _, m := range terms {
		factors := append([]Handle{}, m.Factors...)
		sort.Slice(factors, func(i, j int) bool { return factors[i] < factors[j] })
		dedup := make([]Handle, 0, len(factors))
		for i, f := range factors {
			if f == RowIndicator && i > 0 && factors[i-1] == RowIndicator {
				continue
			}
			dedup = append(dedup, f)
		}
		key := factorKey(dedup)
		if idx, ok := index[key]; ok {
			out[idx].Coef.Add(&out[idx].Coef, &m.Coef)
			continue
		}
		index[key] = len(out)
		out = append(out, Monomial{Coef: m.Coef, Factors: dedup})
	}
	kept := out[:0]
	for _, m := range out {
		if !m.Coef.IsZero() {
			kept = append(kept, m)
		}
	}
	return Poly{terms: kept}
}

func factorKey(factors []Handle) string {
	var sb strings.Builder
	for _, f := range factors {
		sb.WriteString(strconv.Itoa(int(f)))
		sb.WriteByte(',')
	}
	return sb.String()
}
