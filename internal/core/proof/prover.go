package proof

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/weisyn/proofsql/internal/core/commitment"
	"github.com/weisyn/proofsql/internal/core/scalar"
	"github.com/weisyn/proofsql/internal/core/sumcheck"
	"github.com/weisyn/proofsql/internal/core/transcript"
	"github.com/weisyn/proofsql/pkg/interfaces/accessor"
	"github.com/weisyn/proofsql/pkg/types"
)

// proverBuilder 证明方构建器：每个句柄对应一列长度为 2^ν 的取值
type proverBuilder struct {
	baseBuilder
	setup       *commitment.PublicSetup
	input       *types.Table
	vectors     [][]fr.Element
	commitments []types.Commitment
}

var _ Builder = (*proverBuilder)(nil)

func (b *proverBuilder) IsProver() bool { return true }

func (b *proverBuilder) Input(column string) (Handle, error) {
	h, existed, err := b.lookupInput(column)
	if err != nil || existed {
		return h, err
	}
	col, ok := b.input.Column(column)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownInput, column)
	}
	b.vectors = append(b.vectors, b.pad(scalar.FromColumn(col)))
	return h, nil
}

func (b *proverBuilder) Commit(label string, witness func() []fr.Element) (Handle, error) {
	values := witness()
	if len(values) > b.size {
		return 0, WrapProverInvariantError("witness %s has %d rows, padded size %d", label, len(values), b.size)
	}
	vec := b.pad(values)
	c, err := b.setup.Commit(vec)
	if err != nil {
		return 0, err
	}
	b.tr.AppendCommitments("commit."+label, c)
	b.commitments = append(b.commitments, c)
	b.vectors = append(b.vectors, vec)
	return b.newHandle(kindCommitted), nil
}

func (b *proverBuilder) Values(p Poly) []fr.Element {
	out := make([]fr.Element, b.size)
	for i := range out {
		out[i] = p.Eval(func(h Handle) fr.Element { return b.vectors[h][i] })
	}
	return out
}

func (b *proverBuilder) pad(values []fr.Element) []fr.Element {
	out := make([]fr.Element, b.size)
	copy(out, values)
	return out
}

// New 证明方：执行查询并生成证明
//
// 计划错误（未知列、类型不匹配）在构造计划时已经返回，这里的错误只可能是
// 访问器错误、公共参数过小或证明方不变量被破坏。
func New(plan Plan, acc accessor.Accessor, setup *commitment.PublicSetup, opts ...Option) (*VerifiableQueryResult, error) {
	s := newSettings(opts)
	ref := plan.Table()
	if ref.IsZero() {
		return nil, types.ErrEmptyTableRef
	}
	rows, err := acc.GetLength(ref)
	if err != nil {
		return nil, err
	}

	columns := plan.Columns()
	fields := make([]types.Field, len(columns))
	inputs := make([]types.Commitment, len(columns))
	for i, name := range columns {
		col, err := acc.GetColumn(ref, name)
		if err != nil {
			return nil, err
		}
		if uint64(col.Len()) != rows {
			return nil, WrapProverInvariantError("column %s has %d rows, table has %d", name, col.Len(), rows)
		}
		c, err := acc.GetCommitment(ref, name)
		if err != nil {
			return nil, err
		}
		if c.Length != rows {
			return nil, WrapProverInvariantError("commitment of %s has length %d, table has %d", name, c.Length, rows)
		}
		fields[i] = types.NewField(name, col)
		inputs[i] = c
	}
	input, err := types.NewTableWithRows(int(rows), fields...)
	if err != nil {
		return nil, WrapProverInvariantError("input table: %v", err)
	}

	exec, err := plan.Execute(input)
	if err != nil {
		return nil, err
	}
	if !schemaMatches(exec.Result, plan.ResultSchema()) {
		return nil, WrapProverInvariantError("result schema does not match plan")
	}
	if err := plan.CheckPublic(rows, exec.Result, exec.Public); err != nil {
		return nil, WrapProverInvariantError("public data: %v", err)
	}

	size, numVars := dimensions(rows)
	if size > setup.Size() {
		return nil, commitment.WrapSetupTooSmallError(size, setup.Size())
	}

	tr := transcript.New(ProtocolTag)
	bindStatement(tr, setup, plan, rows, inputs, exec.Result, exec.Public)

	b := &proverBuilder{
		baseBuilder: newBaseBuilder(tr, int(rows), size, columns),
		setup:       setup,
		input:       input,
		vectors:     [][]fr.Element{scalar.RowIndicator(int(rows), size), scalar.RowIndex(size)},
	}
	if err := plan.Arithmetize(b, exec.Result, exec.Public); err != nil {
		return nil, err
	}

	lambda := tr.Challenge("batch.lambda")
	r := tr.Challenges("batch.r", numVars)
	terms, _ := b.batch(lambda)

	tables := make([][]fr.Element, len(b.vectors))
	for i := range b.vectors {
		tables[i] = append([]fr.Element{}, b.vectors[i]...)
	}
	sc, err := sumcheck.Prove(tr, numVars, tables, scalar.EqTable(r), terms, s.sumcheck)
	if err != nil {
		return nil, WrapProverInvariantError("sumcheck: %v", err)
	}

	opened := b.opened()
	evals := make([]fr.Element, len(opened))
	for i, h := range opened {
		evals[i] = sc.Evals[h]
	}
	tr.AppendScalars("open.evals", evals...)
	zeta := tr.Challenge("open.zeta")
	coeffs := scalar.Powers(zeta, len(opened))

	combined := make([]fr.Element, size)
	for i, h := range opened {
		vec := b.vectors[h]
		for row := range combined {
			var t fr.Element
			t.Mul(&vec[row], &coeffs[i])
			combined[row].Add(&combined[row], &t)
		}
	}
	opening, err := setup.ProveInnerProduct(tr, combined, sc.Point)
	if err != nil {
		return nil, err
	}

	return &VerifiableQueryResult{
		Table: exec.Result,
		Proof: &QueryProof{
			Public:      exec.Public,
			Commitments: b.commitments,
			Rounds:      sc.Rounds,
			Evaluations: evals,
			Opening:     opening,
		},
	}, nil
}
