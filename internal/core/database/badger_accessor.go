package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	badgerdb "github.com/dgraph-io/badger/v3"
	"github.com/golang/snappy"

	badgerconfig "github.com/weisyn/proofsql/internal/config/storage/badger"
	"github.com/weisyn/proofsql/internal/core/commitment"
	"github.com/weisyn/proofsql/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/proofsql/pkg/types"
)

// 键空间
//
//	t/<schema>.<table>           → 表元数据（JSON）
//	c/<schema>.<table>/<column>  → 列数据（snappy 压缩的 JSON）
//	k/<schema>.<table>/<column>  → 列承诺（types.Commitment 编码）
const (
	metaPrefix       = "t/"
	columnPrefix     = "c/"
	commitmentPrefix = "k/"
)

type tableMeta struct {
	Length  uint64              `json:"length"`
	Columns []types.ColumnField `json:"columns"`
}

// BadgerAccessor 基于 BadgerDB 的持久化访问器
type BadgerAccessor struct {
	db     *badgerdb.DB
	setup  *commitment.PublicSetup
	logger log.Logger

	mu     sync.RWMutex
	closed bool
}

// OpenBadgerAccessor 打开（或创建）持久化访问器
//
// setup 为 nil 时只能读取，AddTable 会失败。
func OpenBadgerAccessor(config *badgerconfig.Config, setup *commitment.PublicSetup, logger log.Logger) (*BadgerAccessor, error) {
	var opts badgerdb.Options
	if config.IsInMemory() {
		opts = badgerdb.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(config.GetPath(), 0o700); err != nil {
			return nil, fmt.Errorf("无法创建BadgerDB数据目录: %w", err)
		}
		opts = badgerdb.DefaultOptions(config.GetPath())
		opts.SyncWrites = config.IsSyncWrites()
	}
	opts.MemTableSize = config.GetMemTableSize()
	opts.Logger = badgerLogger{logger: logger}

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("打开BadgerDB失败: %w", err)
	}
	if logger != nil {
		logger.Infof("BadgerDB 访问器已打开: in_memory=%v path=%s", config.IsInMemory(), config.GetPath())
	}
	return &BadgerAccessor{db: db, setup: setup, logger: logger}, nil
}

func metaKey(ref types.TableRef) []byte {
	return []byte(metaPrefix + ref.String())
}

func columnKey(prefix string, ref types.TableRef, column string) []byte {
	return []byte(prefix + ref.String() + "/" + strings.ToLower(column))
}

// AddTable 写入表数据与列承诺（单个事务）
func (a *BadgerAccessor) AddTable(ref types.TableRef, table *types.Table) error {
	if ref.IsZero() {
		return types.ErrEmptyTableRef
	}
	if a.setup == nil {
		return fmt.Errorf("%w: accessor opened without setup", commitment.ErrInvalidSetup)
	}
	commitments, err := CommitTable(a.setup, table)
	if err != nil {
		return fmt.Errorf("commit table %s: %w", ref, err)
	}

	meta, err := json.Marshal(tableMeta{Length: uint64(table.Len()), Columns: table.Schema()})
	if err != nil {
		return err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrStoreClosed
	}
	return a.db.Update(func(txn *badgerdb.Txn) error {
		if _, err := txn.Get(metaKey(ref)); err == nil {
			return fmt.Errorf("%w: table=%s", ErrTableExists, ref)
		} else if !errors.Is(err, badgerdb.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set(metaKey(ref), meta); err != nil {
			return err
		}
		for _, f := range table.Fields() {
			payload, err := json.Marshal(f.Column)
			if err != nil {
				return fmt.Errorf("encode column %s: %w", f.Name, err)
			}
			if err := txn.Set(columnKey(columnPrefix, ref, f.Name), snappy.Encode(nil, payload)); err != nil {
				return err
			}
			if err := txn.Set(columnKey(commitmentPrefix, ref, f.Name), commitments[f.Name].Bytes()); err != nil {
				return err
			}
		}
		return nil
	})
}

func (a *BadgerAccessor) read(key []byte) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return nil, ErrStoreClosed
	}
	var out []byte
	err := a.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	return out, err
}

func (a *BadgerAccessor) meta(ref types.TableRef) (*tableMeta, error) {
	data, err := a.read(metaKey(ref))
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, WrapTableNotFoundError(ref)
	}
	if err != nil {
		return nil, err
	}
	var m tableMeta
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode table meta %s: %w", ref, err)
	}
	return &m, nil
}

// GetLength 表行数
func (a *BadgerAccessor) GetLength(ref types.TableRef) (uint64, error) {
	m, err := a.meta(ref)
	if err != nil {
		return 0, err
	}
	return m.Length, nil
}

// LookupColumn 列类型
func (a *BadgerAccessor) LookupColumn(ref types.TableRef, column string) (types.ColumnType, bool) {
	m, err := a.meta(ref)
	if err != nil {
		return 0, false
	}
	name := strings.ToLower(column)
	for _, f := range m.Columns {
		if f.Name == name {
			return f.Type, true
		}
	}
	return 0, false
}

// GetColumn 列数据
func (a *BadgerAccessor) GetColumn(ref types.TableRef, column string) (types.Column, error) {
	data, err := a.read(columnKey(columnPrefix, ref, column))
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return types.Column{}, WrapColumnNotFoundError(ref, column)
	}
	if err != nil {
		return types.Column{}, err
	}
	payload, err := snappy.Decode(nil, data)
	if err != nil {
		return types.Column{}, fmt.Errorf("decompress column %s: %w", column, err)
	}
	var col types.Column
	if err := json.Unmarshal(payload, &col); err != nil {
		return types.Column{}, fmt.Errorf("decode column %s: %w", column, err)
	}
	if err := col.Validate(); err != nil {
		return types.Column{}, err
	}
	return col, nil
}

// GetCommitment 列承诺
func (a *BadgerAccessor) GetCommitment(ref types.TableRef, column string) (types.Commitment, error) {
	data, err := a.read(columnKey(commitmentPrefix, ref, column))
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return types.Commitment{}, WrapColumnNotFoundError(ref, column)
	}
	if err != nil {
		return types.Commitment{}, err
	}
	var c types.Commitment
	if err := c.SetBytes(data); err != nil {
		return types.Commitment{}, err
	}
	return c, nil
}

// Close 关闭数据库
func (a *BadgerAccessor) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	return a.db.Close()
}

// badgerLogger 把 badger 的日志转到 log.Logger，logger 为 nil 时丢弃
type badgerLogger struct {
	logger log.Logger
}

func (b badgerLogger) Errorf(format string, args ...interface{}) {
	if b.logger != nil {
		b.logger.Errorf("[badger] "+format, args...)
	}
}

func (b badgerLogger) Warningf(format string, args ...interface{}) {
	if b.logger != nil {
		b.logger.Warnf("[badger] "+format, args...)
	}
}

func (b badgerLogger) Infof(format string, args ...interface{}) {
	if b.logger != nil {
		b.logger.Debugf("[badger] "+format, args...)
	}
}

func (b badgerLogger) Debugf(format string, args ...interface{}) {
	if b.logger != nil {
		b.logger.Debugf("[badger] "+format, args...)
	}
}
