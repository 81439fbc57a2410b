package cache

import (
	"context"
	"sync"

	"github.com/trezcool/releve/core/grade"
)

// MemoryCache keeps encoded period grades in process memory. Entries never expire.
type MemoryCache struct {
	entries map[string][]byte
	mutex   sync.RWMutex
}

var _ grade.Cache = (*MemoryCache)(nil) // interface compliance check

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]byte)}
}

func (c *MemoryCache) GetPeriodGrades(_ context.Context, key string) (grade.PeriodGrades, error) {
	c.mutex.RLock()
	data, ok := c.entries[key]
	c.mutex.RUnlock()

	if !ok {
		return grade.PeriodGrades{}, grade.ErrNotCached
	}
	return decode(data)
}

func (c *MemoryCache) SetPeriodGrades(_ context.Context, key string, pg grade.PeriodGrades) error {
	data, err := encode(pg)
	if err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries[key] = data
	return nil
}
