package proof

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/weisyn/proofsql/internal/core/sumcheck"
	"github.com/weisyn/proofsql/internal/core/transcript"
)

type handleKind int

const (
	kindPublic handleKind = iota
	kindInput
	kindCommitted
)

// baseBuilder 证明方与验证方共享的状态
type baseBuilder struct {
	tr          *transcript.Transcript
	rows        int
	size        int
	kinds       []handleKind
	inputs      map[string]Handle
	allowed     map[string]bool
	constraints []constraint
}

func newBaseBuilder(tr *transcript.Transcript, rows, size int, columns []string) baseBuilder {
	allowed := make(map[string]bool, len(columns))
	for _, c := range columns {
		allowed[c] = true
	}
	return baseBuilder{
		tr:      tr,
		rows:    rows,
		size:    size,
		kinds:   []handleKind{kindPublic, kindPublic}, // RowIndicator, RowIndex
		inputs:  make(map[string]Handle),
		allowed: allowed,
	}
}

func (b *baseBuilder) NumRows() int    { return b.rows }
func (b *baseBuilder) PaddedRows() int { return b.size }

func (b *baseBuilder) Challenge(label string) fr.Element {
	return b.tr.Challenge(label)
}

func (b *baseBuilder) ZeroConstraint(p Poly) {
	b.constraints = append(b.constraints, constraint{poly: p, zero: true})
}

func (b *baseBuilder) SumConstraint(p Poly, claim fr.Element) {
	b.constraints = append(b.constraints, constraint{poly: p, claim: claim})
}

// lookupInput 已存在的输入句柄，或校验列名后登记新的句柄
func (b *baseBuilder) lookupInput(column string) (Handle, bool, error) {
	if h, ok := b.inputs[column]; ok {
		return h, true, nil
	}
	if !b.allowed[column] {
		return 0, false, fmt.Errorf("%w: %s", ErrUnknownInput, column)
	}
	h := b.newHandle(kindInput)
	b.inputs[column] = h
	return h, false, nil
}

func (b *baseBuilder) newHandle(kind handleKind) Handle {
	b.kinds = append(b.kinds, kind)
	return Handle(len(b.kinds) - 1)
}

// opened 需要在打开阶段给出取值的句柄（按创建顺序）
func (b *baseBuilder) opened() []Handle {
	out := make([]Handle, 0, len(b.kinds))
	for h, k := range b.kinds {
		if k != kindPublic {
			out = append(out, Handle(h))
		}
	}
	return out
}

// batch 用 λ 的幂合并全部约束：为零约束乘以 eq(r,x)，求和约束直接相加
func (b *baseBuilder) batch(lambda fr.Element) ([]sumcheck.Term, fr.Element) {
	var pow, claim fr.Element
	pow.SetOne()
	terms := make([]sumcheck.Term, 0)
	for _, c := range b.constraints {
		for _, m := range c.poly.Terms() {
			t := sumcheck.Term{Eq: c.zero, Factors: make([]int, len(m.Factors))}
			t.Coef.Mul(&m.Coef, &pow)
			for i, f := range m.Factors {
				t.Factors[i] = int(f)
			}
			terms = append(terms, t)
		}
		if !c.zero {
			var v fr.Element
			v.Mul(&c.claim, &pow)
			claim.Add(&claim, &v)
		}
		pow.Mul(&pow, &lambda)
	}
	return terms, claim
}
