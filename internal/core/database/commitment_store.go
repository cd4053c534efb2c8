package database

import (
	"fmt"
	"strings"
	"sync"

	"github.com/weisyn/proofsql/pkg/types"
)

type commitmentEntry struct {
	length      uint64
	columnTypes map[string]types.ColumnType
	commitments map[string]types.Commitment
}

// CommitmentStore 验证方访问器：只持有长度、列类型与承诺
type CommitmentStore struct {
	mu     sync.RWMutex
	tables map[types.TableRef]*commitmentEntry
}

// NewCommitmentStore 创建空的承诺存储
func NewCommitmentStore() *CommitmentStore {
	return &CommitmentStore{tables: make(map[types.TableRef]*commitmentEntry)}
}

// AddTable 登记一张表的承诺
func (s *CommitmentStore) AddTable(ref types.TableRef, length uint64, schema []types.ColumnField, commitments map[string]types.Commitment) error {
	if ref.IsZero() {
		return types.ErrEmptyTableRef
	}
	e := &commitmentEntry{
		length:      length,
		columnTypes: make(map[string]types.ColumnType, len(schema)),
		commitments: make(map[string]types.Commitment, len(schema)),
	}
	for _, f := range schema {
		c, ok := commitments[f.Name]
		if !ok {
			return WrapColumnNotFoundError(ref, f.Name)
		}
		e.columnTypes[f.Name] = f.Type
		e.commitments[f.Name] = c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tables[ref]; exists {
		return fmt.Errorf("%w: table=%s", ErrTableExists, ref)
	}
	s.tables[ref] = e
	return nil
}

func (s *CommitmentStore) entry(ref types.TableRef) (*commitmentEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.tables[ref]
	if !ok {
		return nil, WrapTableNotFoundError(ref)
	}
	return e, nil
}

// GetLength 表行数
func (s *CommitmentStore) GetLength(ref types.TableRef) (uint64, error) {
	e, err := s.entry(ref)
	if err != nil {
		return 0, err
	}
	return e.length, nil
}

// GetCommitment 列承诺
func (s *CommitmentStore) GetCommitment(ref types.TableRef, column string) (types.Commitment, error) {
	e, err := s.entry(ref)
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
func (s *CommitmentStore) LookupColumn(ref types.TableRef, column string) (types.ColumnType, bool) {
	e, err := s.entry(ref)
	if err != nil {
		return 0, false
	}
	t, ok := e.columnTypes[strings.ToLower(column)]
	return t, ok
}
