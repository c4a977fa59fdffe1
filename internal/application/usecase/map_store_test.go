package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/cloud-snitch-map/internal/domain/entity"
	"github.com/diillson/cloud-snitch-map/internal/shared/types"
)

func TestMapStore_NotReadyUntilSwapped(t *testing.T) {
	store := NewMapStore()

	_, ready := store.Snapshot()
	assert.False(t, ready)

	store.setProgress(LoadProgress{Status: entity.LoadStatus{Total: 4, Loaded: 1, Progress: 0.25}})
	assert.Equal(t, 0.25, store.Status().Progress)

	at := day0.Add(time.Hour)
	store.Swap(Snapshot{Status: entity.LoadStatus{Total: 4, Loaded: 4, Progress: 1}}, at)
	_, ready = store.Snapshot()
	assert.True(t, ready)
	assert.Equal(t, at, store.LoadedAt())

	// later reloads do not disturb the snapshot being served
	store.setProgress(LoadProgress{Status: entity.LoadStatus{Total: 5, Loaded: 0}})
	assert.Equal(t, 4, store.Status().Total)
}

func TestRefresh_LoadsOnce(t *testing.T) {
	f := newFixture()
	store := NewMapStore()

	f.uc.Refresh(context.Background(), &types.CLIArgs{Reports: "reports.json"}, store, 0)

	snap, ready := store.Snapshot()
	require.True(t, ready)
	assert.NoError(t, store.LastError())
	assert.Len(t, snap.Report.Principals, 2)
	assert.Equal(t, day0.Add(72*time.Hour), store.LoadedAt())
	assert.Contains(t, f.console.infos, "Serving 2 of 2 reports (2 principals)")
}

func TestRefresh_ServesPartialResultsDuringFirstLoad(t *testing.T) {
	f := newFixture()
	release := make(chan struct{})
	f.reports.block["r2"] = release
	store := NewMapStore()

	done := make(chan struct{})
	go func() {
		f.uc.Refresh(context.Background(), &types.CLIArgs{Reports: "reports.json"}, store, 0)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return store.Status().Loaded == 1
	}, time.Second, 5*time.Millisecond)

	snap, ready := store.Snapshot()
	assert.False(t, ready)
	require.NotNil(t, snap.Report)
	assert.Contains(t, snap.Report.Principals, "root")
	assert.NotContains(t, snap.Report.Principals, "AROAFOO:session")
	assert.Equal(t, testRegions, snap.Regions)
	assert.Equal(t, 0.5, snap.Status.Progress)

	view, err := f.uc.BuildMapView(snap, MapViewRequest{Zoom: 20})
	require.NoError(t, err)
	require.Len(t, view.Principals, 1)
	assert.Equal(t, "root", view.Principals[0].ID)

	close(release)
	<-done

	snap, ready = store.Snapshot()
	require.True(t, ready)
	assert.Len(t, snap.Report.Principals, 2)
}

func TestRefresh_ReloadKeepsServingPreviousSnapshot(t *testing.T) {
	f := newFixture()
	store := NewMapStore()
	args := &types.CLIArgs{Reports: "reports.json"}
	f.uc.Refresh(context.Background(), args, store, 0)

	release := make(chan struct{})
	f.reports.block["r2"] = release
	f.cache.entries = map[string]*entity.Report{}
	done := make(chan struct{})
	go func() {
		f.uc.Refresh(context.Background(), args, store, 0)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return f.reports.callCount("r1") == 2
	}, time.Second, 5*time.Millisecond)
	snap, _ := store.Snapshot()
	assert.Len(t, snap.Report.Principals, 2)

	close(release)
	<-done
}

func TestRefresh_FailureKeepsPreviousSnapshot(t *testing.T) {
	f := newFixture()
	store := NewMapStore()
	args := &types.CLIArgs{Reports: "reports.json"}

	f.uc.Refresh(context.Background(), args, store, 0)
	f.reports.listErr = types.ErrNotFound
	f.uc.Refresh(context.Background(), args, store, 0)

	snap, ready := store.Snapshot()
	require.True(t, ready)
	assert.Len(t, snap.Report.Principals, 2)
	assert.ErrorIs(t, store.LastError(), types.ErrNotFound)
	require.Len(t, f.console.errors, 1)
}

func TestRefresh_StopsWithContext(t *testing.T) {
	f := newFixture()
	store := NewMapStore()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		f.uc.Refresh(ctx, &types.CLIArgs{Reports: "reports.json"}, store, time.Hour)
		close(done)
	}()

	require.Eventually(t, func() bool {
		_, ready := store.Snapshot()
		return ready
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Refresh did not return after cancel")
	}
}
