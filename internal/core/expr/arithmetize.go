package expr

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/weisyn/proofsql/internal/core/proof"
	"github.com/weisyn/proofsql/internal/core/scalar"
)

// Arithmetize 把表达式翻译为输入列句柄上的多项式
//
// 同一次调用内共享的子表达式只翻译一次，相等与比较运算的见证列只承诺一次。
// 布尔结果在填充行上恒为 0。
func (a *Arena) Arithmetize(b proof.Builder, roots ...Handle) ([]proof.Poly, error) {
	memo := make(map[Handle]proof.Poly)
	out := make([]proof.Poly, len(roots))
	for i, h := range roots {
		p, err := a.arithmetize(b, h, memo)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func (a *Arena) arithmetize(b proof.Builder, h Handle, memo map[Handle]proof.Poly) (proof.Poly, error) {
	if p, ok := memo[h]; ok {
		return p, nil
	}
	n, err := a.get(h)
	if err != nil {
		return proof.Poly{}, err
	}
	var p proof.Poly
	switch n.kind {
	case KindColumn:
		in, err := b.Input(n.column)
		if err != nil {
			return proof.Poly{}, err
		}
		p = proof.Var(in)
	case KindLiteral:
		p = proof.Literal(scalar.FromColumn(n.literal)[0])
	case KindUnary:
		x, err := a.arithmetize(b, n.left, memo)
		if err != nil {
			return proof.Poly{}, err
		}
		p = proof.Var(proof.RowIndicator).Sub(x)
	default:
		l, err := a.arithmetize(b, n.left, memo)
		if err != nil {
			return proof.Poly{}, err
		}
		r, err := a.arithmetize(b, n.right, memo)
		if err != nil {
			return proof.Poly{}, err
		}
		label := fmt.Sprintf("expr.%d.%s", h, n.op)
		width := operandType(a.Type(n.left), a.Type(n.right)).BitWidth()
		switch n.op {
		case OpAnd:
			p = l.Mul(r)
		case OpOr:
			p = l.Add(r).Sub(l.Mul(r))
		case OpAdd:
			p = l.Add(r)
		case OpSub:
			p = l.Sub(r)
		case OpMul:
			p = l.Mul(r)
		case OpEqual:
			p, err = IsZero(b, l.Sub(r), label)
		case OpGreaterThanOrEqual:
			p, err = NonNegative(b, l.Sub(r), width, label)
		case OpLessThanOrEqual:
			p, err = NonNegative(b, r.Sub(l), width, label)
		case OpLessThan:
			p, err = NonNegative(b, l.Sub(r), width, label)
			p = proof.Var(proof.RowIndicator).Sub(p)
		case OpGreaterThan:
			p, err = NonNegative(b, r.Sub(l), width, label)
			p = proof.Var(proof.RowIndicator).Sub(p)
		default:
			return proof.Poly{}, fmt.Errorf("%w: op=%s", ErrInvalidHandle, n.op)
		}
		if err != nil {
			return proof.Poly{}, err
		}
	}
	memo[h] = p
	return p, nil
}

// IsZero 相等性 gadget：返回在真实行上为 [d == 0] 的布尔多项式
//
// 见证 e 为结果，w 为 d 的逆（d 为 0 时取 0）。约束：
//
//	e·d = 0
//	ρ − e − d·w = 0
func IsZero(b proof.Builder, d proof.Poly, label string) (proof.Poly, error) {
	var flags, inverses []fr.Element
	if b.IsProver() {
		values := b.Values(d)
		flags = make([]fr.Element, len(values))
		inverses = make([]fr.Element, len(values))
		for i := 0; i < b.NumRows(); i++ {
			if values[i].IsZero() {
				flags[i].SetOne()
			} else {
				inverses[i].Inverse(&values[i])
			}
		}
	}
	e, err := b.Commit(label+".flag", func() []fr.Element { return flags })
	if err != nil {
		return proof.Poly{}, err
	}
	w, err := b.Commit(label+".inv", func() []fr.Element { return inverses })
	if err != nil {
		return proof.Poly{}, err
	}
	ev, wv := proof.Var(e), proof.Var(w)
	b.ZeroConstraint(ev.Mul(d))
	b.ZeroConstraint(proof.Var(proof.RowIndicator).Sub(ev).Sub(d.Mul(wv)))
	return ev, nil
}

// NonNegative 符号 gadget：返回在真实行上为 [d ≥ 0] 的布尔多项式
//
// d 的真实取值必须落在 [−2^width, 2^width) 内。把 d + 2^width 分解为
// width+1 个比特 b_0..b_width，最高位即结果。约束：
//
//	b_j² − b_j = 0
//	Σ 2^j·b_j − d − 2^width·ρ = 0
//
// 填充行上 d 与 ρ 都为 0，比特和为 0，所以结果在填充行上也为 0。
func NonNegative(b proof.Builder, d proof.Poly, width int, label string) (proof.Poly, error) {
	if width <= 0 {
		return proof.Poly{}, fmt.Errorf("%w: sign decomposition needs a bounded width, got %d", ErrTypeMismatch, width)
	}
	var bits [][]fr.Element
	if b.IsProver() {
		var err error
		if bits, err = decompose(b.Values(d), b.NumRows(), width); err != nil {
			return proof.Poly{}, err
		}
	}

	offset := new(big.Int).Lsh(big.NewInt(1), uint(width))
	var recomposed proof.Poly
	var power fr.Element
	power.SetOne()
	var two fr.Element
	two.SetUint64(2)
	var top proof.Poly
	for j := 0; j <= width; j++ {
		j := j
		h, err := b.Commit(fmt.Sprintf("%s.bit%d", label, j), func() []fr.Element { return bits[j] })
		if err != nil {
			return proof.Poly{}, err
		}
		bit := proof.Var(h)
		b.ZeroConstraint(bit.Mul(bit).Sub(bit))
		recomposed = recomposed.Add(bit.Scale(power))
		power.Mul(&power, &two)
		top = bit
	}
	b.ZeroConstraint(recomposed.Sub(d).Sub(proof.Literal(scalar.FromBigInt(offset))))
	return top, nil
}

// decompose 证明方对每个真实行计算 d + 2^width 的比特
func decompose(values []fr.Element, rows, width int) ([][]fr.Element, error) {
	offset := new(big.Int).Lsh(big.NewInt(1), uint(width))
	limit := new(big.Int).Lsh(offset, 1)
	bits := make([][]fr.Element, width+1)
	for j := range bits {
		bits[j] = make([]fr.Element, len(values))
	}
	for i := 0; i < rows; i++ {
		v := scalar.ToSignedBigInt(values[i])
		v.Add(v, offset)
		if v.Sign() < 0 || v.Cmp(limit) >= 0 {
			return nil, proof.WrapProverInvariantError("row %d: value %s outside signed %d-bit range", i, scalar.ToSignedBigInt(values[i]), width)
		}
		for j := 0; j <= width; j++ {
			if v.Bit(j) == 1 {
				bits[j][i].SetOne()
			}
		}
	}
	return bits, nil
}
