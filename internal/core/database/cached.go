package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/allegro/bigcache/v3"

	memoryconfig "github.com/weisyn/proofsql/internal/config/storage/memory"
	"github.com/weisyn/proofsql/pkg/interfaces/accessor"
	"github.com/weisyn/proofsql/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/proofsql/pkg/types"
)

// CachedCommitments 承诺缓存装饰器
//
// 验证方反复验证同一张表时，命中缓存就不再访问底层存储（badger 事务读取）。
// bigcache 只保存字节，命中后仍要解码压缩点并做子群检查。长度与列类型直接透传。
type CachedCommitments struct {
	inner  accessor.CommitmentAccessor
	cache  *bigcache.BigCache
	logger log.Logger
}

// NewCachedCommitments 创建承诺缓存
func NewCachedCommitments(inner accessor.CommitmentAccessor, config *memoryconfig.Config, logger log.Logger) (*CachedCommitments, error) {
	cfg := bigcache.DefaultConfig(config.GetLifeWindow())
	cfg.Shards = config.GetShards()
	cfg.MaxEntrySize = config.GetMaxEntrySize()
	cfg.MaxEntriesInWindow = config.GetMaxEntriesInWindow()
	cfg.HardMaxCacheSize = config.GetHardMaxCacheMB()
	cfg.Verbose = false

	cache, err := bigcache.New(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("创建BigCache实例失败: %w", err)
	}
	return &CachedCommitments{inner: inner, cache: cache, logger: logger}, nil
}

func cacheKey(ref types.TableRef, column string) string {
	return ref.String() + "/" + column
}

// GetCommitment 先查缓存，未命中时读取底层访问器并回填
func (c *CachedCommitments) GetCommitment(ref types.TableRef, column string) (types.Commitment, error) {
	key := cacheKey(ref, column)
	if data, err := c.cache.Get(key); err == nil {
		var cm types.Commitment
		if err := cm.SetBytes(data); err == nil {
			return cm, nil
		}
		_ = c.cache.Delete(key)
	} else if !errors.Is(err, bigcache.ErrEntryNotFound) && c.logger != nil {
		c.logger.Warnf("读取承诺缓存[%s]失败: %v", key, err)
	}

	cm, err := c.inner.GetCommitment(ref, column)
	if err != nil {
		return types.Commitment{}, err
	}
	if err := c.cache.Set(key, cm.Bytes()); err != nil && c.logger != nil {
		c.logger.Warnf("写入承诺缓存[%s]失败: %v", key, err)
	}
	return cm, nil
}

// Invalidate 移除一张表的缓存承诺（表被重写时调用）
func (c *CachedCommitments) Invalidate(ref types.TableRef, columns ...string) {
	for _, column := range columns {
		_ = c.cache.Delete(cacheKey(ref, column))
	}
}

// Stats 缓存命中统计
func (c *CachedCommitments) Stats() bigcache.Stats {
	return c.cache.Stats()
}

// GetLength 透传
func (c *CachedCommitments) GetLength(ref types.TableRef) (uint64, error) {
	return c.inner.GetLength(ref)
}

// LookupColumn 透传
func (c *CachedCommitments) LookupColumn(ref types.TableRef, column string) (types.ColumnType, bool) {
	return c.inner.LookupColumn(ref, column)
}

// Close 关闭缓存
func (c *CachedCommitments) Close() error {
	return c.cache.Close()
}
