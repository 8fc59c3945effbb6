package audiostore

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestLock(t *testing.T) *StoreLock {
	t.Helper()
	root := t.TempDir()
	cfg := storeConfig{
		audioDir: filepath.Join(root, "audio"),
		voiceDir: filepath.Join(root, "voices"),
	}
	lock, err := NewStoreLock(cfg)
	if err != nil {
		t.Fatalf("NewStoreLock: %v", err)
	}
	return lock
}

func TestStoreLock_SharedThenExclusive(t *testing.T) {
	lock := newTestLock(t)

	release, err := lock.Shared()
	if err != nil {
		t.Fatalf("Shared: %v", err)
	}
	release()

	release, err = lock.Exclusive()
	if err != nil {
		t.Fatalf("Exclusive: %v", err)
	}
	release()
}

func TestStoreLock_ExclusiveWaitsForSharedHolder(t *testing.T) {
	lock := newTestLock(t)

	releaseShared, err := lock.Shared()
	if err != nil {
		t.Fatalf("Shared: %v", err)
	}

	acquired := make(chan struct{})
	go func() {
		releaseExclusive, err := lock.Exclusive()
		if err != nil {
			t.Errorf("Exclusive: %v", err)
			return
		}
		close(acquired)
		releaseExclusive()
	}()

	select {
	case <-acquired:
		t.Fatal("exclusive lock acquired while a shared holder was active")
	case <-time.After(100 * time.Millisecond):
	}

	releaseShared()

	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("exclusive lock never acquired after shared release")
	}
}

func TestStoreLock_SharedHoldersCountedIndependently(t *testing.T) {
	lock := newTestLock(t)

	releaseFirst, err := lock.Shared()
	if err != nil {
		t.Fatalf("Shared: %v", err)
	}
	releaseSecond, err := lock.Shared()
	if err != nil {
		t.Fatalf("Shared: %v", err)
	}

	// Releasing one shared holder must not open the door for an import
	// while the other is still active.
	releaseFirst()

	acquired := make(chan struct{})
	go func() {
		releaseExclusive, err := lock.Exclusive()
		if err != nil {
			t.Errorf("Exclusive: %v", err)
			return
		}
		close(acquired)
		releaseExclusive()
	}()

	select {
	case <-acquired:
		t.Fatal("exclusive lock acquired while a shared holder remained")
	case <-time.After(100 * time.Millisecond):
	}

	releaseSecond()

	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("exclusive lock never acquired after last shared release")
	}
}

func TestStoreLock_SharedWaitsForExclusiveHolder(t *testing.T) {
	lock := newTestLock(t)

	releaseExclusive, err := lock.Exclusive()
	if err != nil {
		t.Fatalf("Exclusive: %v", err)
	}

	acquired := make(chan struct{})
	go func() {
		releaseShared, err := lock.Shared()
		if err != nil {
			t.Errorf("Shared: %v", err)
			return
		}
		close(acquired)
		releaseShared()
	}()

	select {
	case <-acquired:
		t.Fatal("shared lock acquired while the exclusive holder was active")
	case <-time.After(100 * time.Millisecond):
	}

	releaseExclusive()

	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("shared lock never acquired after exclusive release")
	}
}
