package app

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	badgerconfig "github.com/weisyn/proofsql/internal/config/storage/badger"
	memoryconfig "github.com/weisyn/proofsql/internal/config/storage/memory"
	"github.com/weisyn/proofsql/internal/core/database"
	"github.com/weisyn/proofsql/internal/core/expr"
	"github.com/weisyn/proofsql/internal/core/proof"
	"github.com/weisyn/proofsql/internal/core/query"
	"github.com/weisyn/proofsql/pkg/interfaces/accessor"
	"github.com/weisyn/proofsql/pkg/types"
)

// 演示使用的存储
const (
	StoreMemory = "memory"
	StoreBadger = "badger"
)

// ErrUnknownStore 未知的存储类型
var ErrUnknownStore = errors.New("unknown store")

// Scenario 一个演示查询
type Scenario struct {
	Name        string
	Description string
	Table       types.TableRef
	Build       func(arena *expr.Arena, countAlias string) (proof.Plan, error)
}

// DemoResult 演示查询的验证结果
type DemoResult struct {
	Scenario    Scenario
	Table       *types.Table
	Hash        []byte
	ProofBytes  int
	Fingerprint string
	Prove       time.Duration
	Verify      time.Duration
}

var (
	scenarioRef = types.MustParseTableRef("demo.orders")
	mixedRef    = types.MustParseTableRef("demo.ledger")
)

// demoTables 演示数据
func demoTables() map[types.TableRef]*types.Table {
	return map[types.TableRef]*types.Table{
		scenarioRef: types.MustNewTable(
			types.NewField("a", types.NewBigIntColumn(1, 2, 2, 1, 2)),
			types.NewField("b", types.NewBigIntColumn(99, 99, 99, 99, 0)),
			types.NewField("c", types.NewBigIntColumn(101, 102, 103, 104, 105)),
		),
		mixedRef: types.MustNewTable(
			types.NewField("region", types.NewVarCharColumn("east", "west", "east", "north", "west", "east")),
			types.NewField("qty", types.NewBigIntColumn(3, 7, -2, 5, 1, 4)),
			types.NewField("amount", types.Int128ColumnFromInt64(1200, 800, -150, 990, 40, 310)),
			types.NewField("weight", types.ScalarColumnFromInt64(11, 13, 17, 19, 23, 29)),
		),
	}
}

func bEquals(arena *expr.Arena, v int64) (expr.Handle, error) {
	b, err := arena.Column("b")
	if err != nil {
		return 0, err
	}
	lit, err := arena.Int128(big.NewInt(v))
	if err != nil {
		return 0, err
	}
	return arena.Equal(b, lit)
}

func sumC(arena *expr.Arena, groupBy []string, filter int64, countAlias string) (proof.Plan, error) {
	where, err := bEquals(arena, filter)
	if err != nil {
		return nil, err
	}
	c, err := arena.Column("c")
	if err != nil {
		return nil, err
	}
	return query.NewGroupByExpr(arena, groupBy, []query.SumExpr{{Expr: c, Alias: "sum_c", Type: types.ColumnTypeBigInt}}, countAlias, where)
}

// Scenarios 演示查询列表
func Scenarios() []Scenario {
	return []Scenario{
		{
			Name:        "A",
			Description: "SELECT a, SUM(c) AS sum_c, COUNT(*) FROM demo.orders WHERE b = 99 GROUP BY a",
			Table:       scenarioRef,
			Build: func(arena *expr.Arena, countAlias string) (proof.Plan, error) {
				return sumC(arena, []string{"a"}, 99, countAlias)
			},
		},
		{
			Name:        "B",
			Description: "SELECT SUM(c) AS sum_c, COUNT(*) FROM demo.orders WHERE b = 99",
			Table:       scenarioRef,
			Build: func(arena *expr.Arena, countAlias string) (proof.Plan, error) {
				return sumC(arena, nil, 99, countAlias)
			},
		},
		{
			Name:        "C",
			Description: "SELECT a, SUM(c) AS sum_c, COUNT(*) FROM demo.orders WHERE b = 12345 GROUP BY a",
			Table:       scenarioRef,
			Build: func(arena *expr.Arena, countAlias string) (proof.Plan, error) {
				return sumC(arena, []string{"a"}, 12345, countAlias)
			},
		},
		{
			Name:        "D",
			Description: "SELECT region, SUM(qty), SUM(amount), SUM(weight), COUNT(*) FROM demo.ledger GROUP BY region",
			Table:       mixedRef,
			Build: func(arena *expr.Arena, countAlias string) (proof.Plan, error) {
				qty, err := arena.Column("qty")
				if err != nil {
					return nil, err
				}
				amount, err := arena.Column("amount")
				if err != nil {
					return nil, err
				}
				weight, err := arena.Column("weight")
				if err != nil {
					return nil, err
				}
				return query.NewGroupByExpr(arena, []string{"region"}, []query.SumExpr{
					{Expr: qty, Alias: "sum_qty", Type: types.ColumnTypeBigInt},
					{Expr: amount, Alias: "sum_amount", Type: types.ColumnTypeInt128},
					{Expr: weight, Alias: "sum_weight", Type: types.ColumnTypeScalar},
				}, countAlias, arena.Bool(true))
			},
		},
		{
			Name:        "E",
			Description: "SELECT region, amount FROM demo.ledger WHERE qty > 0 AND amount < 1000",
			Table:       mixedRef,
			Build: func(arena *expr.Arena, _ string) (proof.Plan, error) {
				region, _ := arena.Column("region")
				qty, _ := arena.Column("qty")
				amount, err := arena.Column("amount")
				if err != nil {
					return nil, err
				}
				positive, err := arena.GreaterThan(qty, arena.BigInt(0))
				if err != nil {
					return nil, err
				}
				limit, _ := arena.Int128(big.NewInt(1000))
				small, err := arena.LessThan(amount, limit)
				if err != nil {
					return nil, err
				}
				where, err := arena.AndAll(positive, small)
				if err != nil {
					return nil, err
				}
				return query.NewFilterExpr(arena, []query.AliasedExpr{
					{Expr: region, Alias: "region"},
					{Expr: amount, Alias: "amount"},
				}, where)
			},
		},
		{
			Name:        "F",
			Description: "SELECT MIN(amount), MAX(amount), SUM(qty), COUNT(*) FROM demo.ledger WHERE region = 'east'",
			Table:       mixedRef,
			Build: func(arena *expr.Arena, _ string) (proof.Plan, error) {
				region, _ := arena.Column("region")
				qty, _ := arena.Column("qty")
				amount, err := arena.Column("amount")
				if err != nil {
					return nil, err
				}
				where, err := arena.Equal(region, arena.VarChar("east"))
				if err != nil {
					return nil, err
				}
				return query.NewAggregateExpr(arena, []query.AggregateItem{
					{Func: query.AggregateMin, Expr: amount, Alias: "min_amount"},
					{Func: query.AggregateMax, Expr: amount, Alias: "max_amount"},
					{Func: query.AggregateSum, Expr: qty, Alias: "sum_qty"},
					{Func: query.AggregateCount, Alias: "cnt"},
				}, where)
			},
		},
	}
}

// tableStore 可写入表的证明方访问器
type tableStore interface {
	accessor.Accessor
	AddTable(ref types.TableRef, table *types.Table) error
}

// openStore 打开演示存储，返回访问器与关闭函数
func (a *App) openStore(store string) (tableStore, func() error, error) {
	setup := a.Service.Setup()
	switch store {
	case StoreMemory, "":
		return database.NewTableAccessor(setup, a.Logger), func() error { return nil }, nil
	case StoreBadger:
		acc, err := database.OpenBadgerAccessor(badgerconfig.NewFromOptions(a.Provider.GetBadger()), setup, a.Logger)
		if err != nil {
			return nil, nil, err
		}
		return acc, acc.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownStore, store)
	}
}

// RunDemo 写入演示数据，逐个证明、编码、解码并验证演示查询
func (a *App) RunDemo(ctx context.Context, store string) (results []DemoResult, err error) {
	acc, closeStore, err := a.openStore(store)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := closeStore(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for ref, table := range demoTables() {
		if err := acc.AddTable(ref, table); err != nil && !errors.Is(err, database.ErrTableExists) {
			return nil, err
		}
	}
	view, err := database.NewCachedCommitments(acc, memoryconfig.NewFromOptions(a.Provider.GetMemory()), a.Logger)
	if err != nil {
		return nil, err
	}
	defer view.Close()

	for _, sc := range Scenarios() {
		arena, err := expr.NewArena(sc.Table, acc)
		if err != nil {
			return nil, err
		}
		plan, err := sc.Build(arena, a.Service.CountAlias())
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
		}

		start := time.Now()
		res, err := a.Service.Prove(ctx, plan, acc)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
		proveTime := time.Since(start)

		encoded, err := proof.Marshal(res)
		if err != nil {
			return nil, err
		}
		decoded, err := proof.Unmarshal(encoded)
		if err != nil {
			return nil, err
		}

		start = time.Now()
		data, err := a.Service.Verify(ctx, plan, view, decoded)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
		results = append(results, DemoResult{
			Scenario:    sc,
			Table:       data.Table,
			Hash:        data.VerificationHash,
			ProofBytes:  len(encoded),
			Fingerprint: proof.Fingerprint(encoded),
			Prove:       proveTime,
			Verify:      time.Since(start),
		})
	}
	return results, nil
}
