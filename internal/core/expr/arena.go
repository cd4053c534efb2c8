// Package expr 可证明的表达式层
//
// 🏗️ **结构**
// 表达式以 arena 中的节点表示，通过 Handle 引用；同名列只登记一次，
// 在分组列与聚合列之间共享。节点构造时完成类型检查，构造完成后不可变。
//
// 同一棵表达式既可以由证明方在明文数据上求值（Evaluate），
// 也可以被双方翻译为列句柄上的多项式约束（Arithmetize）。
package expr

import (
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/weisyn/proofsql/pkg/interfaces/accessor"
	"github.com/weisyn/proofsql/pkg/types"
)

// Handle 表达式节点句柄
type Handle int

// Kind 节点种类
type Kind int

const (
	KindColumn Kind = iota + 1
	KindLiteral
	KindUnary
	KindBinary
)

// Op 运算符
type Op int

const (
	OpNot Op = iota + 1
	OpEqual
	OpAnd
	OpOr
	OpAdd
	OpSub
	OpMul
	OpLessThan
	OpLessThanOrEqual
	OpGreaterThan
	OpGreaterThanOrEqual
)

// String 运算符名称
func (o Op) String() string {
	switch o {
	case OpNot:
		return "not"
	case OpEqual:
		return "eq"
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpLessThan:
		return "lt"
	case OpLessThanOrEqual:
		return "le"
	case OpGreaterThan:
		return "gt"
	case OpGreaterThanOrEqual:
		return "ge"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

type node struct {
	kind    Kind
	typ     types.ColumnType
	column  string
	literal types.Column // 单行
	op      Op
	left    Handle
	right   Handle
}

// Arena 单个源表上的表达式集合
type Arena struct {
	table   types.TableRef
	schema  accessor.SchemaAccessor
	nodes   []node
	columns map[string]Handle
}

// NewArena 创建 arena，列类型通过 schema 解析
func NewArena(table types.TableRef, schema accessor.SchemaAccessor) (*Arena, error) {
	if table.IsZero() {
		return nil, types.ErrEmptyTableRef
	}
	return &Arena{
		table:   table,
		schema:  schema,
		columns: make(map[string]Handle),
	}, nil
}

// Table 源表
func (a *Arena) Table() types.TableRef {
	return a.table
}

func (a *Arena) push(n node) Handle {
	a.nodes = append(a.nodes, n)
	return Handle(len(a.nodes) - 1)
}

func (a *Arena) get(h Handle) (node, error) {
	if h < 0 || int(h) >= len(a.nodes) {
		return node{}, fmt.Errorf("%w: %d", ErrInvalidHandle, h)
	}
	return a.nodes[h], nil
}

// Type 节点的结果类型（无效句柄返回 0）
func (a *Arena) Type(h Handle) types.ColumnType {
	n, err := a.get(h)
	if err != nil {
		return 0
	}
	return n.typ
}

// Column 列引用
func (a *Arena) Column(name string) (Handle, error) {
	id, err := types.NormalizeIdentifier(name)
	if err != nil {
		return 0, err
	}
	if h, ok := a.columns[id]; ok {
		return h, nil
	}
	typ, ok := a.schema.LookupColumn(a.table, id)
	if !ok {
		return 0, WrapUnknownColumnError(a.table, id)
	}
	h := a.push(node{kind: KindColumn, typ: typ, column: id})
	a.columns[id] = h
	return h, nil
}

// ColumnName 列节点的列名
func (a *Arena) ColumnName(h Handle) (string, bool) {
	n, err := a.get(h)
	if err != nil || n.kind != KindColumn {
		return "", false
	}
	return n.column, true
}

// Literal 常量（单行列）
func (a *Arena) Literal(value types.Column) (Handle, error) {
	if value.Len() != 1 {
		return 0, fmt.Errorf("%w: literal must have one row, got %d", types.ErrInvalidColumn, value.Len())
	}
	if err := value.Validate(); err != nil {
		return 0, err
	}
	return a.push(node{kind: KindLiteral, typ: value.Type, literal: value}), nil
}

// BigInt BigInt 常量
func (a *Arena) BigInt(v int64) Handle {
	h, _ := a.Literal(types.NewBigIntColumn(v))
	return h
}

// Int128 Int128 常量
func (a *Arena) Int128(v *big.Int) (Handle, error) {
	col, err := types.NewInt128Column(v)
	if err != nil {
		return 0, err
	}
	return a.Literal(col)
}

// Scalar Scalar 常量
func (a *Arena) Scalar(v fr.Element) Handle {
	h, _ := a.Literal(types.NewScalarColumn(v))
	return h
}

// VarChar VarChar 常量
func (a *Arena) VarChar(v string) Handle {
	h, _ := a.Literal(types.NewVarCharColumn(v))
	return h
}

// Bool Boolean 常量
func (a *Arena) Bool(v bool) Handle {
	h, _ := a.Literal(types.NewBooleanColumn(v))
	return h
}

// Not 逻辑非
func (a *Arena) Not(x Handle) (Handle, error) {
	n, err := a.get(x)
	if err != nil {
		return 0, err
	}
	if n.typ != types.ColumnTypeBoolean {
		return 0, fmt.Errorf("%w: op=not operand=%s", ErrTypeMismatch, n.typ)
	}
	return a.push(node{kind: KindUnary, typ: types.ColumnTypeBoolean, op: OpNot, left: x}), nil
}

// Equal 等值比较
func (a *Arena) Equal(l, r Handle) (Handle, error) { return a.binary(OpEqual, l, r) }

// And 逻辑与
func (a *Arena) And(l, r Handle) (Handle, error) { return a.binary(OpAnd, l, r) }

// Or 逻辑或
func (a *Arena) Or(l, r Handle) (Handle, error) { return a.binary(OpOr, l, r) }

// Add 加法
func (a *Arena) Add(l, r Handle) (Handle, error) { return a.binary(OpAdd, l, r) }

// Sub 减法
func (a *Arena) Sub(l, r Handle) (Handle, error) { return a.binary(OpSub, l, r) }

// Mul 乘法
func (a *Arena) Mul(l, r Handle) (Handle, error) { return a.binary(OpMul, l, r) }

// LessThan l < r
func (a *Arena) LessThan(l, r Handle) (Handle, error) { return a.binary(OpLessThan, l, r) }

// LessThanOrEqual l <= r
func (a *Arena) LessThanOrEqual(l, r Handle) (Handle, error) {
	return a.binary(OpLessThanOrEqual, l, r)
}

// GreaterThan l > r
func (a *Arena) GreaterThan(l, r Handle) (Handle, error) { return a.binary(OpGreaterThan, l, r) }

// GreaterThanOrEqual l >= r
func (a *Arena) GreaterThanOrEqual(l, r Handle) (Handle, error) {
	return a.binary(OpGreaterThanOrEqual, l, r)
}

// AndAll 多个谓词的合取，空列表为 true
func (a *Arena) AndAll(preds ...Handle) (Handle, error) {
	if len(preds) == 0 {
		return a.Bool(true), nil
	}
	acc := preds[0]
	if a.Type(acc) != types.ColumnTypeBoolean {
		return 0, fmt.Errorf("%w: op=and operand=%s", ErrTypeMismatch, a.Type(acc))
	}
	for _, p := range preds[1:] {
		next, err := a.And(acc, p)
		if err != nil {
			return 0, err
		}
		acc = next
	}
	return acc, nil
}

// resultType 二元运算的类型规则
func resultType(op Op, l, r types.ColumnType) (types.ColumnType, bool) {
	switch op {
	case OpEqual:
		if l.IsNumeric() && r.IsNumeric() {
			return types.ColumnTypeBoolean, true
		}
		return types.ColumnTypeBoolean, l == r && (l == types.ColumnTypeVarChar || l == types.ColumnTypeBoolean)
	case OpAnd, OpOr:
		return types.ColumnTypeBoolean, l == types.ColumnTypeBoolean && r == types.ColumnTypeBoolean
	case OpAdd, OpSub, OpMul:
		return types.PromoteNumeric(l, r)
	case OpLessThan, OpLessThanOrEqual, OpGreaterThan, OpGreaterThanOrEqual:
		return types.ColumnTypeBoolean, l.IsOrdered() && r.IsOrdered()
	default:
		return 0, false
	}
}

// operandType 运算时两侧提升到的公共类型
func operandType(l, r types.ColumnType) types.ColumnType {
	if t, ok := types.PromoteNumeric(l, r); ok {
		return t
	}
	return l
}

func (a *Arena) binary(op Op, l, r Handle) (Handle, error) {
	ln, err := a.get(l)
	if err != nil {
		return 0, err
	}
	rn, err := a.get(r)
	if err != nil {
		return 0, err
	}
	typ, ok := resultType(op, ln.typ, rn.typ)
	if !ok {
		return 0, WrapTypeMismatchError(op, ln.typ, rn.typ)
	}
	return a.push(node{kind: KindBinary, typ: typ, op: op, left: l, right: r}), nil
}

// Columns 一组表达式引用的列（排序、去重）
func (a *Arena) Columns(roots ...Handle) []string {
	seen := make(map[string]bool)
	var walk func(h Handle)
	walk = func(h Handle) {
		n, err := a.get(h)
		if err != nil {
			return
		}
		switch n.kind {
		case KindColumn:
			seen[n.column] = true
		case KindUnary:
			walk(n.left)
		case KindBinary:
			walk(n.left)
			walk(n.right)
		}
	}
	for _, h := range roots {
		walk(h)
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Describe 规范文本表示，写入转录器
func (a *Arena) Describe(h Handle) string {
	n, err := a.get(h)
	if err != nil {
		return "<invalid>"
	}
	switch n.kind {
	case KindColumn:
		return fmt.Sprintf("%s:%s", n.column, n.typ)
	case KindLiteral:
		return fmt.Sprintf("%s(%q)", n.typ, n.literal.Format(0))
	case KindUnary:
		return fmt.Sprintf("%s(%s)", n.op, a.Describe(n.left))
	default:
		var sb strings.Builder
		sb.WriteString(n.op.String())
		sb.WriteByte('(')
		sb.WriteString(a.Describe(n.left))
		sb.WriteString(", ")
		sb.WriteString(a.Describe(n.right))
		sb.WriteByte(')')
		return sb.String()
	}
}
