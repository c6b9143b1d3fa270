package snapshot

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placement_studio/src/model"
)

func cost(v float64) *float64 { return &v }

func TestStore_AddSessionCostAccumulates(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newTestStore(t)

	session, err := store.SaveSession(ctx, "run", model.Config{Name: "cfg"}, model.CanvasState{}, "")
	require.NoError(t, err)

	got := store.GetSessionCost(ctx, session.ID)
	require.NotNil(t, got)
	assert.Equal(t, model.SessionCost{}, *got)

	for _, c := range []*float64{cost(0.001), cost(0.002), nil} {
		require.NoError(t, store.AddSessionCost(ctx, session.ID, c))
	}

	got = store.GetSessionCost(ctx, session.ID)
	require.NotNil(t, got)
	assert.InDelta(t, 0.003, got.TotalCostUSD, 1e-12)
	assert.Equal(t, 2, got.GenerationCount)
}

func TestStore_ZeroCostStillCounts(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newTestStore(t)

	session, err := store.SaveSession(ctx, "run", model.Config{}, model.CanvasState{}, "")
	require.NoError(t, err)
	require.NoError(t, store.AddSessionCost(ctx, session.ID, cost(0)))

	got := store.GetSessionCost(ctx, session.ID)
	require.NotNil(t, got)
	assert.Zero(t, got.TotalCostUSD)
	assert.Equal(t, 1, got.GenerationCount)
}

func TestStore_InvalidCostIgnored(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newTestStore(t)

	session, err := store.SaveSession(ctx, "run", model.Config{}, model.CanvasState{}, "")
	require.NoError(t, err)
	require.NoError(t, store.AddSessionCost(ctx, session.ID, cost(0.5)))
	for _, c := range []float64{-1, math.NaN(), math.Inf(1)} {
		require.NoError(t, store.AddSessionCost(ctx, session.ID, cost(c)))
	}

	got := store.GetSessionCost(ctx, session.ID)
	require.NotNil(t, got, "session must survive invalid costs")
	assert.Equal(t, model.SessionCost{TotalCostUSD: 0.5, GenerationCount: 1}, *got)

	_, err = store.SaveSession(ctx, "other", model.Config{}, model.CanvasState{}, "")
	require.NoError(t, err)
	assert.Len(t, store.ListSessions(ctx), 2)
}

func TestStore_ResavePreservesCost(t *testing.T) {
	ctx := context.Background()
	store, _, clock := newTestStore(t)

	session, err := store.SaveSession(ctx, "run", model.Config{Name: "cfg"}, model.CanvasState{UserComposition: "first"}, "")
	require.NoError(t, err)
	require.NoError(t, store.AddSessionCost(ctx, session.ID, cost(0.25)))
	require.NoError(t, store.AddSessionCost(ctx, session.ID, cost(0.5)))

	clock.Advance(1)
	resaved, err := store.SaveSession(ctx, "renamed", model.Config{Name: "cfg"},
		model.CanvasState{UserComposition: "second", Cards: cards(4)}, session.ID)
	require.NoError(t, err)

	assert.Equal(t, 0.75, resaved.TotalCostUSD)
	assert.Equal(t, 2, resaved.GenerationCount)

	loaded := store.LoadSession(ctx, session.ID)
	require.NotNil(t, loaded)
	assert.Equal(t, "second", loaded.State.UserComposition)
	assert.Equal(t, 0.75, loaded.TotalCostUSD)
	assert.Equal(t, 2, loaded.GenerationCount)
}

func TestStore_UnknownSessionIsNoOp(t *testing.T) {
	ctx := context.Background()
	store, kv, _ := newTestStore(t)

	require.NoError(t, store.AddSessionCost(ctx, "snap_0_unknown", cost(1)))
	assert.Nil(t, store.GetSessionCost(ctx, "snap_0_unknown"))
	assert.Nil(t, store.LoadSession(ctx, "snap_0_unknown"))

	_, found, err := kv.GetItem(ctx, SessionsKey)
	require.NoError(t, err)
	assert.False(t, found, "no write for unknown session")
}

func TestStore_SessionsAreSeparateFromSnapshots(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newTestStore(t)

	session, err := store.SaveSession(ctx, "run", model.Config{Name: "cfg"}, model.CanvasState{Cards: cards(1)}, "")
	require.NoError(t, err)

	assert.Empty(t, store.ListSnapshots(ctx))
	list := store.ListSessions(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, session.ID, list[0].ID)
	assert.Equal(t, 1, list[0].CardCount)

	require.NoError(t, store.DeleteSession(ctx, session.ID))
	assert.Empty(t, store.ListSessions(ctx))
}
