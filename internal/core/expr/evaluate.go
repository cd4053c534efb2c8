package expr

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/weisyn/proofsql/internal/core/scalar"
	"github.com/weisyn/proofsql/pkg/types"
)

var (
	int64Min = big.NewInt(-1 << 63)
	int64Max = big.NewInt(1<<63 - 1)
)

// Evaluate 在明文表上求值（行数取 table.Len()）
func (a *Arena) Evaluate(h Handle, table *types.Table) (types.Column, error) {
	n, err := a.get(h)
	if err != nil {
		return types.Column{}, err
	}
	rows := table.Len()
	switch n.kind {
	case KindColumn:
		col, ok := table.Column(n.column)
		if !ok {
			return types.Column{}, WrapUnknownColumnError(a.table, n.column)
		}
		if col.Type != n.typ {
			return types.Column{}, fmt.Errorf("%w: column %s is %s, planned as %s", ErrTypeMismatch, n.column, col.Type, n.typ)
		}
		return col, nil
	case KindLiteral:
		idx := make([]int, rows)
		return n.literal.Gather(idx), nil
	case KindUnary:
		x, err := a.Evaluate(n.left, table)
		if err != nil {
			return types.Column{}, err
		}
		out := make([]bool, rows)
		for i, v := range x.Booleans {
			out[i] = !v
		}
		return types.NewBooleanColumn(out...), nil
	default:
		l, err := a.Evaluate(n.left, table)
		if err != nil {
			return types.Column{}, err
		}
		r, err := a.Evaluate(n.right, table)
		if err != nil {
			return types.Column{}, err
		}
		return evalBinary(n.op, n.typ, l, r)
	}
}

func evalBinary(op Op, typ types.ColumnType, l, r types.Column) (types.Column, error) {
	rows := l.Len()
	switch op {
	case OpAnd, OpOr:
		out := make([]bool, rows)
		for i := range out {
			if op == OpAnd {
				out[i] = l.Booleans[i] && r.Booleans[i]
			} else {
				out[i] = l.Booleans[i] || r.Booleans[i]
			}
		}
		return types.NewBooleanColumn(out...), nil
	case OpEqual, OpLessThan, OpLessThanOrEqual, OpGreaterThan, OpGreaterThanOrEqual:
		target := operandType(l.Type, r.Type)
		lp, rp := Promote(l, target), Promote(r, target)
		out := make([]bool, rows)
		for i := range out {
			c := lp.CompareRows(i, rp, i)
			switch op {
			case OpEqual:
				out[i] = c == 0
			case OpLessThan:
				out[i] = c < 0
			case OpLessThanOrEqual:
				out[i] = c <= 0
			case OpGreaterThan:
				out[i] = c > 0
			default:
				out[i] = c >= 0
			}
		}
		return types.NewBooleanColumn(out...), nil
	default:
		return evalArithmetic(op, typ, Promote(l, typ), Promote(r, typ))
	}
}

func evalArithmetic(op Op, typ types.ColumnType, l, r types.Column) (types.Column, error) {
	rows := l.Len()
	switch typ {
	case types.ColumnTypeScalar:
		out := make([]fr.Element, rows)
		for i := range out {
			switch op {
			case OpAdd:
				out[i].Add(&l.Scalars[i], &r.Scalars[i])
			case OpSub:
				out[i].Sub(&l.Scalars[i], &r.Scalars[i])
			default:
				out[i].Mul(&l.Scalars[i], &r.Scalars[i])
			}
		}
		return types.NewScalarColumn(out...), nil
	case types.ColumnTypeBigInt:
		out := make([]int64, rows)
		for i := range out {
			v := applyBig(op, big.NewInt(l.BigInts[i]), big.NewInt(r.BigInts[i]))
			if v.Cmp(int64Min) < 0 || v.Cmp(int64Max) > 0 {
				return types.Column{}, fmt.Errorf("%w: %s(%d, %d) row=%d", ErrArithmeticOverflow, op, l.BigInts[i], r.BigInts[i], i)
			}
			out[i] = v.Int64()
		}
		return types.NewBigIntColumn(out...), nil
	default:
		out := make([]*big.Int, rows)
		for i := range out {
			v := applyBig(op, l.Int128s[i], r.Int128s[i])
			if err := types.CheckInt128(v); err != nil {
				return types.Column{}, fmt.Errorf("%w: %s row=%d: %v", ErrArithmeticOverflow, op, i, err)
			}
			out[i] = v
		}
		return types.Column{Type: types.ColumnTypeInt128, Int128s: out}, nil
	}
}

func applyBig(op Op, l, r *big.Int) *big.Int {
	switch op {
	case OpAdd:
		return new(big.Int).Add(l, r)
	case OpSub:
		return new(big.Int).Sub(l, r)
	default:
		return new(big.Int).Mul(l, r)
	}
}

// Promote 把数值列无损提升为 target 类型，非数值或同类型原样返回
func Promote(col types.Column, target types.ColumnType) types.Column {
	if col.Type == target || !col.Type.CanPromoteTo(target) {
		return col
	}
	switch target {
	case types.ColumnTypeInt128:
		out := make([]*big.Int, len(col.BigInts))
		for i, v := range col.BigInts {
			out[i] = big.NewInt(v)
		}
		return types.Column{Type: types.ColumnTypeInt128, Int128s: out}
	default:
		return types.NewScalarColumn(scalar.FromColumn(col)...)
	}
}
