// Package database 提供访问器的实现
//
// 🏗️ **实现**
// - TableAccessor：内存表，证明方使用，添加表时计算全部列承诺
// - CommitmentStore：只保存长度、模式与承诺，验证方使用
// - CachedCommitments：bigcache 承诺缓存装饰器
// - BadgerAccessor：badger 持久化列数据与承诺
package database

import (
	"fmt"
	"strings"
	"sync"

	"github.com/weisyn/proofsql/internal/core/commitment"
	"github.com/weisyn/proofsql/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/proofsql/pkg/types"
)

type tableEntry struct {
	table       *types.Table
	commitments map[string]types.Commitment
}

// TableAccessor 内存表访问器
type TableAccessor struct {
	mu     sync.RWMutex
	setup  *commitment.PublicSetup
	tables map[types.TableRef]*tableEntry
	logger log.Logger
}

// NewTableAccessor 创建内存表访问器
func NewTableAccessor(setup *commitment.PublicSetup, logger log.Logger) *TableAccessor {
	return &TableAccessor{
		setup:  setup,
		tables: make(map[types.TableRef]*tableEntry),
		logger: logger,
	}
}

// AddTable 添加表并计算全部列承诺
func (a *TableAccessor) AddTable(ref types.TableRef, table *types.Table) error {
	if ref.IsZero() {
		return types.ErrEmptyTableRef
	}
	commitments, err := CommitTable(a.setup, table)
	if err != nil {
		return fmt.Errorf("commit table %s: %w", ref, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.tables[ref]; exists {
		return fmt.Errorf("%w: table=%s", ErrTableExists, ref)
	}
	a.tables[ref] = &tableEntry{table: table, commitments: commitments}
	if a.logger != nil {
		a.logger.Debugf("添加表 %s: rows=%d columns=%d", ref, table.Len(), table.NumColumns())
	}
	return nil
}

// CommitTable 并行计算表中每一列的承诺
func CommitTable(setup *commitment.PublicSetup, table *types.Table) (map[string]types.Commitment, error) {
	fields := table.Fields()
	results := make([]types.Commitment, len(fields))
	errs := make([]error, len(fields))

	var wg sync.WaitGroup
	for i := range fields {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = setup.CommitColumn(fields[i].Column)
		}(i)
	}
	wg.Wait()

	out := make(map[string]types.Commitment, len(fields))
	for i, f := range fields {
		if errs[i] != nil {
			return nil, fmt.Errorf("column %s: %w", f.Name, errs[i])
		}
		out[f.Name] = results[i]
	}
	return out, nil
}

func (a *TableAccessor) entry(ref types.TableRef) (*tableEntry, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	e, ok := a.tables[ref]
	if !ok {
		return nil, WrapTableNotFoundError(ref)
	}
	return e, nil
}

// GetLength 表行数
func (a *TableAccessor) GetLength(ref types.TableRef) (uint64, error) {
	e, err := a.entry(ref)
	if err != nil {
		return 0, err
	}
	return uint64(e.table.Len()), nil
}

// GetColumn 列数据
func (a *TableAccessor) GetColumn(ref types.TableRef, column string) (types.Column, error) {
	e, err := a.entry(ref)
	if err != nil {
		return types.Column{}, err
	}
	col, ok := e.table.Column(column)
	if !ok {
		return types.Column{}, WrapColumnNotFoundError(ref, column)
	}
	return col, nil
}

// GetCommitment 列承诺
func (a *TableAccessor) GetCommitment(ref types.TableRef, column string) (types.Commitment, error) {
	e, err := a.entry(ref)
	if err != nil {
		return types.Commitment{}, err
	}
	c, ok := e.commitments[strings.ToLower(column)]
	if !ok {
		return types.Commitment{}, WrapColumnNotFoundError(ref, column)
	}
	return c, nil
}

// LookupColumn 列类型
func (a *TableAccessor) LookupColumn(ref types.TableRef, column string) (types.ColumnType, bool) {
	e, err := a.entry(ref)
	if err != nil {
		return 0, false
	}
	col, ok := e.table.Column(column)
	if !ok {
		return 0, false
	}
	return col.Type, true
}

// CommitmentView 导出只含承诺的验证方视图
func (a *TableAccessor) CommitmentView() *CommitmentStore {
	a.mu.RLock()
	defer a.mu.RUnlock()
	view := NewCommitmentStore()
	for ref, e := range a.tables {
		_ = view.AddTable(ref, uint64(e.table.Len()), e.table.Schema(), e.commitments)
	}
	return view
}
