package cache

import (
	"errors"
	"fmt"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/diillson/cloud-snitch-map/internal/domain/entity"
	"github.com/diillson/cloud-snitch-map/internal/domain/repository"
)

// ErrCacheClosed is returned by operations on a closed cache.
var ErrCacheClosed = errors.New("report cache is closed")

const keyPrefix = "report:"

// LevelDBReportCache stores downloaded reports in LevelDB, msgpack encoded.
type LevelDBReportCache struct {
	db     *leveldb.DB
	mu     sync.RWMutex
	closed bool
}

// Open opens or creates the cache database at path.
func Open(path string) (repository.ReportCache, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{
		Compression: opt.SnappyCompression,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open report cache: %w", err)
	}
	return &LevelDBReportCache{db: db}, nil
}

// Get returns the cached report for id; ok is false when there is none.
func (c *LevelDBReportCache) Get(id string) (*entity.Report, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, false, ErrCacheClosed
	}

	data, err := c.db.Get([]byte(keyPrefix+id), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get failed: %w", err)
	}

	var report entity.Report
	if err := msgpack.Unmarshal(data, &report); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached report %s: %w", id, err)
	}
	return &report, true, nil
}

// Put stores report under id, replacing any previous entry.
func (c *LevelDBReportCache) Put(id string, report *entity.Report) error {
	if report == nil {
		return nil
	}

	data, err := msgpack.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report %s: %w", id, err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrCacheClosed
	}
	return c.db.Put([]byte(keyPrefix+id), data, nil)
}

// Close closes the database
func (c *LevelDBReportCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrCacheClosed
	}
	c.closed = true
	return c.db.Close()
}
