package sumcheck

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/weisyn/proofsql/internal/core/transcript"
)

// Verify 重放 sumcheck，返回绑定点与最终声明值
//
// 调用方随后必须检查最终声明值等于被求和多项式在绑定点处的取值。
func Verify(tr *transcript.Transcript, numVars, degree int, claim fr.Element, rounds [][]fr.Element) ([]fr.Element, fr.Element, error) {
	if len(rounds) != numVars {
		return nil, fr.Element{}, fmt.Errorf("%w: rounds=%d want=%d", ErrMalformedRounds, len(rounds), numVars)
	}
	point := make([]fr.Element, 0, numVars)
	current := claim
	for k, values := range rounds {
		if len(values) != degree+1 {
			return nil, fr.Element{}, fmt.Errorf("%w: round=%d len=%d want=%d", ErrMalformedRounds, k, len(values), degree+1)
		}
		var sum fr.Element
		sum.Add(&values[0], &values[1])
		if !sum.Equal(&current) {
			return nil, fr.Element{}, fmt.Errorf("%w: round=%d", ErrRoundMismatch, k)
		}
		tr.AppendScalars("sumcheck.round", values...)
		r := tr.Challenge("sumcheck.r")
		point = append(point, r)
		current = interpolate(values, r)
	}
	return point, current, nil
}

// Evaluate 计算 Σ_t coef_t·[eqValue]·Π evals[f]
func Evaluate(terms []Term, evals []fr.Element, eqValue fr.Element) (fr.Element, error) {
	if err := validateTerms(terms, len(evals)); err != nil {
		return fr.Element{}, err
	}
	var acc fr.Element
	for _, t := range terms {
		prod := t.Coef
		if t.Eq {
			prod.Mul(&prod, &eqValue)
		}
		for _, f := range t.Factors {
			prod.Mul(&prod, &evals[f])
		}
		acc.Add(&acc, &prod)
	}
	return acc, nil
}
