package sumcheck

import (
	"fmt"
	"runtime"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"golang.org/x/sync/errgroup"

	"github.com/weisyn/proofsql/internal/core/transcript"
)

// Result 证明方输出
type Result struct {
	Rounds [][]fr.Element // 每轮 D+1 个取值
	Point  []fr.Element   // 绑定点 r'
	Evals  []fr.Element   // 每个表在 r' 处的取值
}

type prover struct {
	tables [][]fr.Element
	eq     []fr.Element
	terms  []Term
	used   []int
	degree int
	opts   Options
}

// Prove 对 tables 运行 sumcheck
//
// 所有表（及 eq，若有项使用）长度必须都是 2^numVars。tables 会被原地折叠，
// 调用方不应再使用。
func Prove(tr *transcript.Transcript, numVars int, tables [][]fr.Element, eq []fr.Element, terms []Term, opts Options) (*Result, error) {
	size := 1 << numVars
	for i, t := range tables {
		if len(t) != size {
			return nil, fmt.Errorf("%w: table=%d len=%d want=%d", ErrInvalidInput, i, len(t), size)
		}
	}
	needEq := false
	for _, t := range terms {
		needEq = needEq || t.Eq
	}
	if needEq && len(eq) != size {
		return nil, fmt.Errorf("%w: eq len=%d want=%d", ErrInvalidInput, len(eq), size)
	}
	if err := validateTerms(terms, len(tables)); err != nil {
		return nil, err
	}

	p := &prover{
		tables: tables,
		eq:     eq,
		terms:  terms,
		degree: Degree(terms),
		opts:   opts,
	}
	seen := make([]bool, len(tables))
	for _, t := range terms {
		for _, f := range t.Factors {
			if !seen[f] {
				seen[f] = true
				p.used = append(p.used, f)
			}
		}
	}
	if !needEq {
		p.eq = nil
	}

	res := &Result{Rounds: make([][]fr.Element, 0, numVars), Point: make([]fr.Element, 0, numVars)}
	for round := 0; round < numVars; round++ {
		values, err := p.roundPolynomial()
		if err != nil {
			return nil, err
		}
		res.Rounds = append(res.Rounds, values)
		tr.AppendScalars("sumcheck.round", values...)
		r := tr.Challenge("sumcheck.r")
		res.Point = append(res.Point, r)
		if err := p.fold(r); err != nil {
			return nil, err
		}
	}

	res.Evals = make([]fr.Element, len(tables))
	for i := range p.tables {
		res.Evals[i] = p.tables[i][0]
	}
	return res, nil
}

// split 本轮的分段数与每段长度
func (p *prover) split(pairs int) (int, int) {
	workers := p.opts.MaxWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if pairs < p.opts.ParallelThreshold || workers <= 1 || pairs < 2 {
		return 1, pairs
	}
	if workers > pairs {
		workers = pairs
	}
	chunk := (pairs + workers - 1) / workers
	return (pairs + chunk - 1) / chunk, chunk
}

func (p *prover) roundPolynomial() ([]fr.Element, error) {
	pairs := len(p.tables0()) / 2
	workers, chunk := p.split(pairs)
	partial := make([][]fr.Element, workers)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		start, end := w*chunk, (w+1)*chunk
		if end > pairs {
			end = pairs
		}
		g.Go(func() error {
			partial[w] = p.partialSums(start, end)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]fr.Element, p.degree+1)
	for _, sums := range partial {
		for x := range out {
			out[x].Add(&out[x], &sums[x])
		}
	}
	return out, nil
}

// tables0 当前折叠后的表长度参考
func (p *prover) tables0() []fr.Element {
	if len(p.tables) > 0 {
		return p.tables[0]
	}
	return p.eq
}

func (p *prover) partialSums(start, end int) []fr.Element {
	d := p.degree
	sums := make([]fr.Element, d+1)
	evals := make([][]fr.Element, len(p.tables))
	for _, f := range p.used {
		evals[f] = make([]fr.Element, d+1)
	}
	eqEvals := make([]fr.Element, d+1)

	line := func(dst []fr.Element, lo, hi *fr.Element) {
		var diff fr.Element
		diff.Sub(hi, lo)
		dst[0] = *lo
		for x := 1; x <= d; x++ {
			dst[x].Add(&dst[x-1], &diff)
		}
	}

	for i := start; i < end; i++ {
		for _, f := range p.used {
			line(evals[f], &p.tables[f][2*i], &p.tables[f][2*i+1])
		}
		if p.eq != nil {
			line(eqEvals, &p.eq[2*i], &p.eq[2*i+1])
		}
		for _, t := range p.terms {
			for x := 0; x <= d; x++ {
				prod := t.Coef
				if t.Eq {
					prod.Mul(&prod, &eqEvals[x])
				}
				for _, f := range t.Factors {
					prod.Mul(&prod, &evals[f][x])
				}
				sums[x].Add(&sums[x], &prod)
			}
		}
	}
	return sums
}

// fold 用 r 绑定当前最低位
func (p *prover) fold(r fr.Element) error {
	foldOne := func(t []fr.Element) []fr.Element {
		half := len(t) / 2
		for i := 0; i < half; i++ {
			var v fr.Element
			v.Sub(&t[2*i+1], &t[2*i])
			v.Mul(&v, &r)
			t[i].Add(&t[2*i], &v)
		}
		return t[:half]
	}

	var g errgroup.Group
	workers := p.opts.MaxWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if len(p.tables0())/2 < p.opts.ParallelThreshold {
		workers = 1
	}
	g.SetLimit(workers)
	for i := range p.tables {
		g.Go(func() error {
			p.tables[i] = foldOne(p.tables[i])
			return nil
		})
	}
	if p.eq != nil {
		p.eq = foldOne(p.eq)
	}
	return g.Wait()
}
