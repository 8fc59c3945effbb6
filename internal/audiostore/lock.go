package audiostore

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
)

// StoreLock serializes access to the lead store and audio tree. Ingestion,
// worker writes, voice management and export take the shared side; snapshot
// import takes the exclusive side so its wipe-and-reload never interleaves
// with other writers or readers.
//
// Two layers are needed: the RWMutex serializes goroutines within one
// process, while the flock serializes the api and worker processes against
// each other. A flock alone is not enough because its lock belongs to the
// file descriptor, so goroutines sharing one descriptor would never block
// each other. The file lock is held only while at least one goroutine holds
// the in-process lock, with shared holders counted so the descriptor lock is
// released exactly when the last one leaves.
type StoreLock struct {
	mu      sync.RWMutex
	flMu    sync.Mutex
	readers int
	fl      *flock.Flock
}

// NewStoreLock creates the lock file next to the audio tree.
func NewStoreLock(cfg Config) (*StoreLock, error) {
	dir := filepath.Dir(cfg.GetAudioStoragePath())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}
	return &StoreLock{fl: flock.New(filepath.Join(dir, "store.lock"))}, nil
}

// Shared acquires the shared lock, blocking while an import holds the
// exclusive side. The returned release function must always be called.
func (l *StoreLock) Shared() (func(), error) {
	l.mu.RLock()

	l.flMu.Lock()
	if l.readers == 0 {
		if err := l.fl.RLock(); err != nil {
			l.flMu.Unlock()
			l.mu.RUnlock()
			return nil, fmt.Errorf("acquire shared store lock: %w", err)
		}
	}
	l.readers++
	l.flMu.Unlock()

	return func() {
		l.flMu.Lock()
		l.readers--
		if l.readers == 0 {
			_ = l.fl.Unlock()
		}
		l.flMu.Unlock()
		l.mu.RUnlock()
	}, nil
}

// Exclusive acquires the exclusive lock, blocking until every shared holder
// releases. Only snapshot import uses this.
func (l *StoreLock) Exclusive() (func(), error) {
	l.mu.Lock()
	if err := l.fl.Lock(); err != nil {
		l.mu.Unlock()
		return nil, fmt.Errorf("acquire exclusive store lock: %w", err)
	}
	return func() {
		_ = l.fl.Unlock()
		l.mu.Unlock()
	}, nil
}
