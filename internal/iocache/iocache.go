// Package iocache is for caching I/O calls and tracking detection runs.
package iocache

import (
	"sync"

	"github.com/burstline/burstline/internal/contract"
)

// CacheStoreManager manages the timeline cache and run tracking stores.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	timeline     contract.CacheStore
	runs         contract.RunStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetTimelineStore returns the timeline CacheStore.
func (mgr *CacheStoreManager) GetTimelineStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.timeline
}

// GetRunStore returns the run tracking RunStore.
func (mgr *CacheStoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}
