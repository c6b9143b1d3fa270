package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placement_studio/internal/storage"
	"placement_studio/src/model"
)

func newTestStore(t *testing.T) (*Store, *storage.MemoryKV, *clockwork.FakeClock) {
	t.Helper()
	kv := storage.NewMemoryKV(0)
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	return New(kv, clock), kv, clock
}

func cards(n int) []json.RawMessage {
	out := make([]json.RawMessage, n)
	for i := range out {
		out[i] = json.RawMessage(`{"id":"card","image":"aGVsbG8="}`)
	}
	return out
}

func TestStore_SaveSnapshotMintsID(t *testing.T) {
	ctx := context.Background()
	store, _, clock := newTestStore(t)

	snap, err := store.SaveSnapshot(ctx, "", model.Config{Name: "Kitchen"}, model.CanvasState{}, "")
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^snap_\d+_[0-9a-f]{8}$`), snap.ID)
	assert.Equal(t, "Kitchen", snap.Name, "blank name falls back to config name")
	assert.Equal(t, clock.Now().UnixMilli(), snap.Timestamp)
}

func TestStore_ResaveRefreshesTimestamp(t *testing.T) {
	ctx := context.Background()
	store, _, clock := newTestStore(t)

	first, err := store.SaveSnapshot(ctx, "v1", model.Config{Name: "c"}, model.CanvasState{UserComposition: "a"}, "")
	require.NoError(t, err)

	clock.Advance(5 * time.Minute)
	second, err := store.SaveSnapshot(ctx, "v2", model.Config{Name: "c"}, model.CanvasState{UserComposition: "b"}, first.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Greater(t, second.Timestamp, first.Timestamp)

	loaded := store.LoadSnapshot(ctx, first.ID)
	require.NotNil(t, loaded)
	assert.Equal(t, "v2", loaded.Name)
	assert.Equal(t, "b", loaded.State.UserComposition)
	assert.Len(t, store.ListSnapshots(ctx), 1)
}

func TestStore_ListSnapshotsProjection(t *testing.T) {
	ctx := context.Background()
	store, _, clock := newTestStore(t)

	var ids []string
	for i := range 3 {
		snap, err := store.SaveSnapshot(ctx, "", model.Config{Name: "cfg"},
			model.CanvasState{Cards: cards(i + 1), SavedCards: cards(2)}, "")
		require.NoError(t, err)
		ids = append(ids, snap.ID)
		clock.Advance(time.Second)
	}

	list := store.ListSnapshots(ctx)
	require.Len(t, list, 3)
	assert.Equal(t, ids[2], list[0].ID)
	assert.Equal(t, ids[0], list[2].ID)
	assert.Equal(t, 5, list[0].CardCount)
	assert.Equal(t, 3, list[2].CardCount)
	assert.Equal(t, "cfg", list[0].ConfigName)
	for i := 1; i < len(list); i++ {
		assert.Greater(t, list[i-1].Timestamp, list[i].Timestamp)
	}
}

func TestStore_ListCountsNonObjectCards(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newTestStore(t)

	state := model.CanvasState{
		Cards:      []json.RawMessage{json.RawMessage(`"card-1"`), json.RawMessage(`42`)},
		SavedCards: []json.RawMessage{json.RawMessage(`null`)},
	}
	snap, err := store.SaveSnapshot(ctx, "loose", model.Config{Name: "cfg"}, state, "")
	require.NoError(t, err)

	list := store.ListSnapshots(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, snap.ID, list[0].ID)
	assert.Equal(t, 3, list[0].CardCount)
}

func TestStore_BlankNameFallsBackToConfig(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newTestStore(t)

	snap, err := store.SaveSnapshot(ctx, "   ", model.Config{Name: "Kitchen"}, model.CanvasState{}, "")
	require.NoError(t, err)
	assert.Equal(t, "Kitchen", snap.Name)
}

func TestStore_DeleteAndUnknownLookups(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newTestStore(t)

	snap, err := store.SaveSnapshot(ctx, "x", model.Config{}, model.CanvasState{}, "")
	require.NoError(t, err)

	require.NoError(t, store.DeleteSnapshot(ctx, snap.ID))
	require.NoError(t, store.DeleteSnapshot(ctx, "snap_0_missing"))
	assert.Nil(t, store.LoadSnapshot(ctx, snap.ID))
	assert.Empty(t, store.ListSnapshots(ctx))
}

func TestStore_SnapshotStorageFull(t *testing.T) {
	ctx := context.Background()
	store := New(storage.NewMemoryKV(128), clockwork.NewFakeClock())

	_, err := store.SaveSnapshot(ctx, "big", model.Config{Name: "cfg"}, model.CanvasState{Cards: cards(10)}, "")
	assert.ErrorIs(t, err, ErrStorageFull)
}

func TestStore_MalformedSnapshotsReadEmpty(t *testing.T) {
	ctx := context.Background()
	store, kv, _ := newTestStore(t)

	require.NoError(t, kv.SetItem(ctx, SnapshotsKey, `{"snap_1_a":{"id":"snap_1_other"},"snap_2_b":"bad"}`))
	assert.Empty(t, store.ListSnapshots(ctx))
	assert.Nil(t, store.LoadSnapshot(ctx, "snap_1_a"))

	require.NoError(t, kv.SetItem(ctx, SnapshotsKey, "{{{"))
	assert.Empty(t, store.ListSnapshots(ctx))
}

func TestStore_NonQuotaWriteFailureSwallowed(t *testing.T) {
	ctx := context.Background()
	store, kv, _ := newTestStore(t)
	kv.FailWrites = errors.New("disk unavailable")

	_, err := store.SaveSnapshot(ctx, "x", model.Config{}, model.CanvasState{}, "")
	assert.NoError(t, err)
}
