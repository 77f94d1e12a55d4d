package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournal_StoreLoadClear(t *testing.T) {
	j := NewJournal(openTestDB(t), "doc")
	ctx := context.Background()

	_, ok, err := j.LoadPending(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, j.StorePending(ctx, "first"))
	require.NoError(t, j.StorePending(ctx, "second"))

	content, ok, err := j.LoadPending(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "second", content)

	require.NoError(t, j.ClearPending(ctx))
	_, ok, err = j.LoadPending(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestJournal_EmptyDraftIsPending(t *testing.T) {
	j := NewJournal(openTestDB(t), "doc")
	ctx := context.Background()

	require.NoError(t, j.StorePending(ctx, ""))

	content, ok, err := j.LoadPending(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, content)
}

func TestJournal_PendingSinceKeepsFirstCapture(t *testing.T) {
	j := NewJournal(openTestDB(t), "doc")
	ctx := context.Background()

	first := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	j.now = func() time.Time { return first }
	require.NoError(t, j.StorePending(ctx, "a"))

	j.now = func() time.Time { return first.Add(time.Hour) }
	require.NoError(t, j.StorePending(ctx, "b"))

	since, ok, err := j.PendingSince(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, since.Equal(first))

	require.NoError(t, j.ClearPending(ctx))
	_, ok, err = j.PendingSince(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestJournal_DocumentsAreIsolated(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, NewJournal(db, "a").StorePending(ctx, "for a"))

	_, ok, err := NewJournal(db, "b").LoadPending(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestJournal_ClosedDB(t *testing.T) {
	db := openTestDB(t)
	j := NewJournal(db, "doc")
	require.NoError(t, db.Close())

	require.Error(t, j.StorePending(context.Background(), "x"))
	_, _, err := j.LoadPending(context.Background())
	require.Error(t, err)
}
