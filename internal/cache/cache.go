// Package cache keeps parsed datasets in memory so repeated UI
// interactions against the same upload never reparse the file.
package cache

import (
	"sync"

	"submissionmap/internal/model"
)

type DatasetCache interface {
	Get(key string) (*model.Dataset, bool)
	Put(key string, ds *model.Dataset)
	Current() (*model.Dataset, bool)
}

// SingleSlot holds exactly one dataset. Put replaces whatever was there,
// so a new upload evicts the previous one and memory stays bounded by a
// single parsed file.
type SingleSlot struct {
	mu  sync.RWMutex
	key string
	ds  *model.Dataset
}

func NewSingleSlot() *SingleSlot {
	return &SingleSlot{}
}

func (c *SingleSlot) Get(key string) (*model.Dataset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.ds == nil || c.key != key {
		return nil, false
	}
	return c.ds, true
}

func (c *SingleSlot) Put(key string, ds *model.Dataset) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.key = key
	c.ds = ds
}

// Current returns the most recently stored dataset regardless of key.
func (c *SingleSlot) Current() (*model.Dataset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.ds == nil {
		return nil, false
	}
	return c.ds, true
}
