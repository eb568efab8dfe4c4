package mem_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasksage/tasksage/pkg/adapters/mem"
	"github.com/tasksage/tasksage/pkg/core"
)

func recvSnapshot(t *testing.T, sub *core.Subscription) core.Snapshot {
	t.Helper()
	select {
	case snap := <-sub.C:
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	return core.Snapshot{}
}

func TestStore_CreateStampsTimestamps(t *testing.T) {
	fixed := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	store := mem.New(mem.WithClock(func() time.Time { return fixed }))
	ctx := context.Background()

	id, err := store.Create(ctx, core.CollectionTasks, core.Fields{core.FieldTitle: "t"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	sub, err := store.Subscribe(ctx, core.Query{Collection: core.CollectionTasks})
	require.NoError(t, err)
	defer sub.Cancel()

	snap := recvSnapshot(t, sub)
	require.Len(t, snap.Records, 1)
	assert.Equal(t, fixed, snap.Records[0].Fields.Time(core.FieldCreatedAt))
	assert.Equal(t, fixed, snap.Records[0].Fields.Time(core.FieldUpdatedAt))
}

func TestStore_UpdatePatchSemantics(t *testing.T) {
	store := mem.New()
	ctx := context.Background()

	id, err := store.Create(ctx, core.CollectionTasks, core.Fields{
		core.FieldTitle:     "keep me",
		core.FieldCompleted: false,
	})
	require.NoError(t, err)

	// Partial patch: untouched fields survive.
	require.NoError(t, store.Update(ctx, core.CollectionTasks, id, core.Fields{
		core.FieldCompleted:   true,
		core.FieldCompletedAt: time.Now(),
	}))

	// A nil value clears the field entirely.
	require.NoError(t, store.Update(ctx, core.CollectionTasks, id, core.Fields{
		core.FieldCompleted:   false,
		core.FieldCompletedAt: nil,
	}))

	sub, err := store.Subscribe(ctx, core.Query{Collection: core.CollectionTasks})
	require.NoError(t, err)
	defer sub.Cancel()

	snap := recvSnapshot(t, sub)
	require.Len(t, snap.Records, 1)
	fields := snap.Records[0].Fields
	assert.Equal(t, "keep me", fields.String(core.FieldTitle))
	assert.False(t, fields.Bool(core.FieldCompleted))
	_, has := fields[core.FieldCompletedAt]
	assert.False(t, has, "nil patch value must delete the field")
}

func TestStore_UpdateMissing(t *testing.T) {
	store := mem.New()
	err := store.Update(context.Background(), core.CollectionTasks, "ghost", core.Fields{})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestStore_Delete(t *testing.T) {
	store := mem.New()
	ctx := context.Background()

	id, err := store.Create(ctx, core.CollectionNotes, core.Fields{core.FieldTitle: "n"})
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, core.CollectionNotes, id))
	assert.ErrorIs(t, store.Delete(ctx, core.CollectionNotes, id), core.ErrNotFound)
}

func TestStore_SubscribeRejectsOrdering(t *testing.T) {
	store := mem.New()
	_, err := store.Subscribe(context.Background(), core.Query{
		Collection: core.CollectionTasks,
		OrderBy:    core.FieldCreatedAt,
	})
	assert.ErrorIs(t, err, core.ErrUnsupportedOrder)
}

func TestStore_SubscribeLiveUpdates(t *testing.T) {
	store := mem.New()
	ctx := context.Background()

	sub, err := store.Subscribe(ctx, core.Query{Collection: core.CollectionTasks, OwnerID: "me"})
	require.NoError(t, err)
	defer sub.Cancel()

	snap := recvSnapshot(t, sub)
	assert.Empty(t, snap.Records, "initial snapshot arrives immediately")

	_, err = store.Create(ctx, core.CollectionTasks, core.Fields{
		core.FieldOwnerID: "me",
		core.FieldTitle:   "mine",
	})
	require.NoError(t, err)
	_, err = store.Create(ctx, core.CollectionTasks, core.Fields{
		core.FieldOwnerID: "someone-else",
		core.FieldTitle:   "theirs",
	})
	require.NoError(t, err)

	// The second write may have superseded the first snapshot; either way the
	// final state has exactly the owner's record.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap = <-sub.C:
			if len(snap.Records) == 1 && snap.Records[0].Fields.String(core.FieldTitle) == "mine" {
				return
			}
		case <-deadline:
			t.Fatalf("never saw the filtered snapshot, last: %+v", snap)
		}
	}
}

func TestStore_LatestWinsDelivery(t *testing.T) {
	store := mem.New()
	ctx := context.Background()

	sub, err := store.Subscribe(ctx, core.Query{Collection: core.CollectionTasks})
	require.NoError(t, err)
	defer sub.Cancel()

	// Don't read; let several writes pile up.
	for i := 0; i < 5; i++ {
		_, err = store.Create(ctx, core.CollectionTasks, core.Fields{core.FieldTitle: "t"})
		require.NoError(t, err)
	}

	snap := recvSnapshot(t, sub)
	assert.Len(t, snap.Records, 5, "a lagging consumer sees only the newest snapshot")
	assert.Greater(t, snap.Seq, uint64(1))
}

func TestStore_ReadOnly(t *testing.T) {
	store := mem.New(mem.WithReadOnly(true))
	ctx := context.Background()

	_, err := store.Create(ctx, core.CollectionTasks, core.Fields{})
	assert.ErrorIs(t, err, core.ErrReadOnly)
	assert.ErrorIs(t, store.Update(ctx, core.CollectionTasks, "x", core.Fields{}), core.ErrReadOnly)
	assert.ErrorIs(t, store.Delete(ctx, core.CollectionTasks, "x"), core.ErrReadOnly)
}

func TestStore_CancelContextCancelsSubscription(t *testing.T) {
	store := mem.New()
	ctx, cancel := context.WithCancel(context.Background())

	sub, err := store.Subscribe(ctx, core.Query{Collection: core.CollectionTasks})
	require.NoError(t, err)
	recvSnapshot(t, sub)

	cancel()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-sub.C:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("subscription channel never closed after context cancel")
		}
	}
}
