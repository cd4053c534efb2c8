package commitment

import (
	"fmt"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/weisyn/proofsql/internal/core/scalar"
	"github.com/weisyn/proofsql/internal/core/transcript"
)

// InnerProductProof Bulletproofs 风格的内积论证
//
// 证明 ⟨a, b⟩ = claim，其中 a 只以承诺 Σ a_i·G_i 的形式出现，
// b 是公开向量 eq(point, ·)。每轮按最高位把向量对半折叠，共 log2(N) 轮。
type InnerProductProof struct {
	L []bls12381.G1Affine
	R []bls12381.G1Affine
	A fr.Element
}

// ProveInnerProduct 对长度为 2^len(point) 的向量 a 生成内积论证
//
// 调用方必须已经把 a 对应承诺的组成部分写入 tr。
func (s *PublicSetup) ProveInnerProduct(tr *transcript.Transcript, a []fr.Element, point []fr.Element) (*InnerProductProof, error) {
	n := 1 << len(point)
	if len(a) > n {
		return nil, fmt.Errorf("%w: vector=%d domain=%d", ErrMalformedProof, len(a), n)
	}
	if n > len(s.generators) {
		return nil, WrapSetupTooSmallError(n, len(s.generators))
	}

	aa := make([]fr.Element, n)
	copy(aa, a)
	bb := scalar.EqTable(point)
	gg := append([]bls12381.G1Affine{}, s.generators[:n]...)

	claim := scalar.InnerProduct(aa, bb)
	tr.AppendScalars("ipa.claim", claim)
	uChallenge := tr.Challenge("ipa.u")
	var uPoint bls12381.G1Affine
	uPoint.ScalarMultiplication(&s.u, toBig(uChallenge))

	proof := &InnerProductProof{}
	for len(aa) > 1 {
		half := len(aa) / 2
		aLo, aHi := aa[:half], aa[half:]
		bLo, bHi := bb[:half], bb[half:]
		gLo, gHi := gg[:half], gg[half:]

		cL := scalar.InnerProduct(aLo, bHi)
		cR := scalar.InnerProduct(aHi, bLo)
		l, err := s.msm(append(append([]bls12381.G1Affine{}, gHi...), uPoint), append(append([]fr.Element{}, aLo...), cL))
		if err != nil {
			return nil, err
		}
		r, err := s.msm(append(append([]bls12381.G1Affine{}, gLo...), uPoint), append(append([]fr.Element{}, aHi...), cR))
		if err != nil {
			return nil, err
		}
		proof.L = append(proof.L, l)
		proof.R = append(proof.R, r)

		lb, rb := l.Bytes(), r.Bytes()
		tr.Append("ipa.l", lb[:])
		tr.Append("ipa.r", rb[:])
		x := tr.Challenge("ipa.x")
		var xInv fr.Element
		xInv.Inverse(&x)

		nextA := make([]fr.Element, half)
		nextB := make([]fr.Element, half)
		nextG := make([]bls12381.G1Jac, half)
		xBig, xInvBig := toBig(x), toBig(xInv)
		for i := 0; i < half; i++ {
			var t fr.Element
			nextA[i].Mul(&aLo[i], &x)
			t.Mul(&aHi[i], &xInv)
			nextA[i].Add(&nextA[i], &t)

			nextB[i].Mul(&bLo[i], &xInv)
			t.Mul(&bHi[i], &x)
			nextB[i].Add(&nextB[i], &t)

			var lo, hi bls12381.G1Jac
			lo.FromAffine(&gLo[i])
			lo.ScalarMultiplication(&lo, xInvBig)
			hi.FromAffine(&gHi[i])
			hi.ScalarMultiplication(&hi, xBig)
			lo.AddAssign(&hi)
			nextG[i] = lo
		}
		aa, bb = nextA, nextB
		gg = bls12381.BatchJacobianToAffineG1(nextG)
	}
	proof.A = aa[0]
	return proof, nil
}

// VerifyInnerProduct 验证 ⟨a, eq(point,·)⟩ = claim，其中 a 的承诺为 Σ coeffs_i·commitments_i
//
// 整个检查合并为一次多标量乘法：
// C + u(claim - a·b_final)·U + Σ x_j²·L_j + Σ x_j⁻²·R_j - a·Σ s_i·G_i = O
func (s *PublicSetup) VerifyInnerProduct(tr *transcript.Transcript, commitments []bls12381.G1Affine, coeffs []fr.Element, point []fr.Element, claim fr.Element, proof *InnerProductProof) error {
	nu := len(point)
	n := 1 << nu
	if proof == nil || len(proof.L) != nu || len(proof.R) != nu {
		return fmt.Errorf("%w: rounds want=%d", ErrMalformedProof, nu)
	}
	if len(commitments) != len(coeffs) {
		return fmt.Errorf("%w: %d commitments, %d coefficients", ErrMalformedProof, len(commitments), len(coeffs))
	}
	if n > len(s.generators) {
		return WrapSetupTooSmallError(n, len(s.generators))
	}

	tr.AppendScalars("ipa.claim", claim)
	u := tr.Challenge("ipa.u")

	xs := make([]fr.Element, nu)
	for j := 0; j < nu; j++ {
		lb, rb := proof.L[j].Bytes(), proof.R[j].Bytes()
		tr.Append("ipa.l", lb[:])
		tr.Append("ipa.r", rb[:])
		xs[j] = tr.Challenge("ipa.x")
		if xs[j].IsZero() {
			return fmt.Errorf("%w: zero challenge", ErrInnerProductRejected)
		}
	}
	xInvs := fr.BatchInvert(xs)

	// 第 j 轮折叠的是第 nu-1-j 位
	var one, bFinal fr.Element
	one.SetOne()
	bFinal.SetOne()
	sv := make([]fr.Element, 1, n)
	sv[0].SetOne()
	for k := 0; k < nu; k++ {
		j := nu - 1 - k
		var notR, t fr.Element
		notR.Sub(&one, &point[k])
		notR.Mul(&notR, &xInvs[j])
		t.Mul(&point[k], &xs[j])
		notR.Add(&notR, &t)
		bFinal.Mul(&bFinal, &notR)

		half := len(sv)
		sv = append(sv, make([]fr.Element, half)...)
		for i := 0; i < half; i++ {
			sv[i+half].Mul(&sv[i], &xs[j])
			sv[i].Mul(&sv[i], &xInvs[j])
		}
	}

	points := make([]bls12381.G1Affine, 0, len(commitments)+1+2*nu+n)
	scalars := make([]fr.Element, 0, cap(points))

	points = append(points, commitments...)
	scalars = append(scalars, coeffs...)

	var uCoeff, ab fr.Element
	ab.Mul(&proof.A, &bFinal)
	uCoeff.Sub(&claim, &ab)
	uCoeff.Mul(&uCoeff, &u)
	points = append(points, s.u)
	scalars = append(scalars, uCoeff)

	for j := 0; j < nu; j++ {
		var x2, xInv2 fr.Element
		x2.Square(&xs[j])
		xInv2.Square(&xInvs[j])
		points = append(points, proof.L[j], proof.R[j])
		scalars = append(scalars, x2, xInv2)
	}

	var negA fr.Element
	negA.Neg(&proof.A)
	for i := 0; i < n; i++ {
		var c fr.Element
		c.Mul(&sv[i], &negA)
		points = append(points, s.generators[i])
		scalars = append(scalars, c)
	}

	check, err := s.msm(points, scalars)
	if err != nil {
		return err
	}
	if !check.IsInfinity() {
		return ErrInnerProductRejected
	}
	return nil
}

func toBig(e fr.Element) *big.Int {
	var v big.Int
	e.BigInt(&v)
	return &v
}
