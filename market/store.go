package market

import (
	"fmt"
	"sync"
)

// SnapshotStore holds the latest snapshot per symbol. Writers replace,
// readers copy; it carries one trading day's worth of data at a time.
type SnapshotStore struct {
	mu    sync.RWMutex
	snaps map[string]Snapshot
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{snaps: make(map[string]Snapshot)}
}

func (ss *SnapshotStore) Set(s Snapshot) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.snaps[s.Symbol] = s
}

func (ss *SnapshotStore) Get(symbol string) (Snapshot, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	s, ok := ss.snaps[symbol]
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: no snapshot for %q", ErrStaleData, symbol)
	}
	return s, nil
}

// All returns a copy of the current snapshot set, keyed by symbol.
func (ss *SnapshotStore) All() map[string]Snapshot {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	out := make(map[string]Snapshot, len(ss.snaps))
	for sym, s := range ss.snaps {
		out[sym] = s
	}
	return out
}

// Reset drops everything, readying the store for the next trading day.
func (ss *SnapshotStore) Reset() {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.snaps = make(map[string]Snapshot)
}
