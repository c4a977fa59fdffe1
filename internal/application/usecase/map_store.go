package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/diillson/cloud-snitch-map/internal/domain/entity"
	"github.com/diillson/cloud-snitch-map/internal/shared/types"
)

// MapStore holds the snapshot served over HTTP. Until the first load finishes it serves the reports
// merged so far; afterwards reloads run in the background and swap the whole snapshot in once done.
type MapStore struct {
	mu       sync.RWMutex
	snapshot Snapshot
	ready    bool
	loadErr  error
	loadedAt time.Time
}

// NewMapStore creates an empty, not yet ready store.
func NewMapStore() *MapStore {
	return &MapStore{}
}

// Snapshot returns the current snapshot and whether a load has completed.
func (s *MapStore) Snapshot() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot, s.ready
}

// Status returns the progress of the current or last load.
func (s *MapStore) Status() entity.LoadStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Status
}

// LastError returns the error of the last failed load, if the last load failed.
func (s *MapStore) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// LoadedAt returns when the served snapshot was swapped in.
func (s *MapStore) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// setProgress publishes the reports merged so far while no load has completed yet. Once ready, the
// previous snapshot keeps being served.
func (s *MapStore) setProgress(p LoadProgress) {
	s.mu.RLock()
	ready := s.ready
	s.mu.RUnlock()
	if ready {
		return
	}

	partial := Snapshot{Report: p.Partial(), Regions: p.Regions, Status: p.Status}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		s.snapshot = partial
	}
}

// Swap replaces the served snapshot.
func (s *MapStore) Swap(snap Snapshot, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snap
	s.ready = true
	s.loadErr = nil
	s.loadedAt = at
}

func (s *MapStore) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadErr = err
}

// Refresh loads a snapshot into store, then reloads every interval until ctx is done. A zero
// interval loads once. Failed loads keep the previous snapshot.
func (uc *MapUseCase) Refresh(ctx context.Context, args *types.CLIArgs, store *MapStore, interval time.Duration) {
	uc.refreshOnce(ctx, args, store)
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			uc.refreshOnce(ctx, args, store)
		}
	}
}

func (uc *MapUseCase) refreshOnce(ctx context.Context, args *types.CLIArgs, store *MapStore) {
	snap, err := uc.LoadSnapshot(ctx, args, store.setProgress)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		store.fail(err)
		uc.console.LogError("Report load failed: %s", err)
		return
	}
	store.Swap(snap, uc.now())
	uc.console.LogSuccess("Serving %d of %d reports (%d principals)", snap.Status.Loaded, snap.Status.Total, len(snap.Report.Principals))
}
