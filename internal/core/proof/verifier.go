package proof

import (
	"errors"
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/weisyn/proofsql/internal/core/commitment"
	"github.com/weisyn/proofsql/internal/core/scalar"
	"github.com/weisyn/proofsql/internal/core/sumcheck"
	"github.com/weisyn/proofsql/internal/core/transcript"
	"github.com/weisyn/proofsql/pkg/interfaces/accessor"
	"github.com/weisyn/proofsql/pkg/types"
)

// verifierBuilder 验证方构建器：句柄只对应承诺
type verifierBuilder struct {
	baseBuilder
	inputCommitments map[string]types.Commitment
	points           []bls12381.G1Affine // 按句柄，公开句柄为零值
	pending          []types.Commitment
	next             int
}

var _ Builder = (*verifierBuilder)(nil)

func (b *verifierBuilder) IsProver() bool { return false }

func (b *verifierBuilder) Input(column string) (Handle, error) {
	h, existed, err := b.lookupInput(column)
	if err != nil || existed {
		return h, err
	}
	b.points = append(b.points, b.inputCommitments[column].Point)
	return h, nil
}

func (b *verifierBuilder) Commit(label string, _ func() []fr.Element) (Handle, error) {
	if b.next >= len(b.pending) {
		return 0, fmt.Errorf("%w: missing commitment %s", ErrMalformedProof, label)
	}
	c := b.pending[b.next]
	b.next++
	if c.Length != uint64(b.size) {
		return 0, fmt.Errorf("%w: commitment %s has length %d, want %d", ErrMalformedProof, label, c.Length, b.size)
	}
	b.tr.AppendCommitments("commit."+label, c)
	b.points = append(b.points, c.Point)
	return b.newHandle(kindCommitted), nil
}

func (b *verifierBuilder) Values(Poly) []fr.Element { return nil }

// Verify 验证方：重放转录器并检查证明，成功时返回结果表
//
// 任何一步失败都返回 *VerificationError（errors.Is(err, ErrVerificationFailed) 为真），
// 不会返回部分结果。Verify 不修改 result。
func (r *VerifiableQueryResult) Verify(plan Plan, acc accessor.CommitmentAccessor, setup *commitment.PublicSetup) (*QueryData, error) {
	if r == nil || r.Table == nil || r.Proof == nil || r.Proof.Opening == nil {
		return nil, reject(StageStatement, ErrMalformedProof)
	}
	ref := plan.Table()
	if ref.IsZero() {
		return nil, types.ErrEmptyTableRef
	}
	rows, err := acc.GetLength(ref)
	if err != nil {
		return nil, err
	}

	columns := plan.Columns()
	inputs := make([]types.Commitment, len(columns))
	byName := make(map[string]types.Commitment, len(columns))
	for i, name := range columns {
		c, err := acc.GetCommitment(ref, name)
		if err != nil {
			return nil, err
		}
		if c.Length != rows {
			return nil, reject(StageStatement, fmt.Errorf("commitment of %s has length %d, table has %d", name, c.Length, rows))
		}
		inputs[i] = c
		byName[name] = c
	}

	result := r.Table
	if !schemaMatches(result, plan.ResultSchema()) {
		return nil, reject(StageResult, errors.New("result schema does not match plan"))
	}
	for _, f := range result.Fields() {
		if err := f.Column.Validate(); err != nil {
			return nil, reject(StageResult, err)
		}
	}
	public := r.Proof.Public
	if err := plan.CheckPublic(rows, result, public); err != nil {
		return nil, reject(StagePublic, err)
	}

	size, numVars := dimensions(rows)
	if size > setup.Size() {
		return nil, commitment.WrapSetupTooSmallError(size, setup.Size())
	}

	tr := transcript.New(ProtocolTag)
	bindStatement(tr, setup, plan, rows, inputs, result, public)

	b := &verifierBuilder{
		baseBuilder:      newBaseBuilder(tr, int(rows), size, columns),
		inputCommitments: byName,
		points:           make([]bls12381.G1Affine, 2),
		pending:          r.Proof.Commitments,
	}
	if err := plan.Arithmetize(b, result, public); err != nil {
		return nil, reject(StageArithmetize, err)
	}
	if b.next != len(b.pending) {
		return nil, reject(StageArithmetize, fmt.Errorf("%w: %d unused commitments", ErrMalformedProof, len(b.pending)-b.next))
	}

	lambda := tr.Challenge("batch.lambda")
	point := tr.Challenges("batch.r", numVars)
	terms, claim := b.batch(lambda)

	bound, final, err := sumcheck.Verify(tr, numVars, sumcheck.Degree(terms), claim, r.Proof.Rounds)
	if err != nil {
		return nil, reject(StageSumcheck, err)
	}

	opened := b.opened()
	if len(r.Proof.Evaluations) != len(opened) {
		return nil, reject(StageEvaluation, fmt.Errorf("%w: %d evaluations, want %d", ErrMalformedProof, len(r.Proof.Evaluations), len(opened)))
	}
	evals := make([]fr.Element, len(b.kinds))
	evals[RowIndicator] = scalar.RowIndicatorEval(int(rows), bound)
	evals[RowIndex] = scalar.RowIndexEval(bound)
	for i, h := range opened {
		evals[h] = r.Proof.Evaluations[i]
	}
	expected, err := sumcheck.Evaluate(terms, evals, scalar.EqEval(point, bound))
	if err != nil {
		return nil, reject(StageEvaluation, err)
	}
	if !expected.Equal(&final) {
		return nil, reject(StageEvaluation, errors.New("batched constraint does not hold at the sumcheck point"))
	}

	tr.AppendScalars("open.evals", r.Proof.Evaluations...)
	zeta := tr.Challenge("open.zeta")
	coeffs := scalar.Powers(zeta, len(opened))
	points := make([]bls12381.G1Affine, len(opened))
	for i, h := range opened {
		points[i] = b.points[h]
	}
	combinedClaim := scalar.InnerProduct(coeffs, r.Proof.Evaluations)
	if err := setup.VerifyInnerProduct(tr, points, coeffs, bound, combinedClaim, r.Proof.Opening); err != nil {
		return nil, reject(StageOpening, err)
	}

	return &QueryData{Table: result, VerificationHash: tr.State()}, nil
}
