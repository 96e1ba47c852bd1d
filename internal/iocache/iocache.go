// Package iocache persists provider responses and dashboard snapshots.
package iocache

import (
	"sync"

	"github.com/skillpulse/skillpulse/internal/contract"
)

// CacheStoreManager manages the response cache and snapshot store.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	responses    contract.CacheStore
	snapshots    contract.SnapshotStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetResponseStore returns the response CacheStore, or nil when caching is off.
func (mgr *CacheStoreManager) GetResponseStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.responses
}

// GetSnapshotStore returns the SnapshotStore, or nil when snapshots are off.
func (mgr *CacheStoreManager) GetSnapshotStore() contract.SnapshotStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.snapshots
}
