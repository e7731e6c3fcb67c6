package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/scribe/internal/core/domain"
)

func testRun(id string, created time.Time) *domain.MatchRun {
	return &domain.MatchRun{
		ID:        id,
		Lecture:   "lecture-" + id,
		Corpus:    "books/physics",
		Settings:  domain.DefaultMatcherSettings(),
		CreatedAt: created,
		Segments: []domain.LectureSegment{
			{SegmentID: 0, TimestampEnd: 5, NumEmbeddings: 30, ContextSegments: []int{}},
		},
	}
}

func TestRunStore_SaveAndGet(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()
	run := testRun("a", time.Unix(100, 0))

	require.NoError(t, store.Save(ctx, run))
	run.Segments[0].SegmentID = 99

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "lecture-a", got.Lecture)
	require.Len(t, got.Segments, 1)
	assert.Equal(t, 0, got.Segments[0].SegmentID, "stored copy must not alias the caller's slice")
}

func TestRunStore_GetMissing(t *testing.T) {
	_, err := NewRunStore().Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRunStore_ListNewestFirst(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, testRun("old", time.Unix(100, 0))))
	require.NoError(t, store.Save(ctx, testRun("new", time.Unix(300, 0))))
	require.NoError(t, store.Save(ctx, testRun("mid", time.Unix(200, 0))))

	runs, err := store.List(ctx)

	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{runs[0].ID, runs[1].ID, runs[2].ID})
	assert.Nil(t, runs[0].Segments)
}

func TestRunStore_Delete(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, testRun("a", time.Unix(100, 0))))

	require.NoError(t, store.Delete(ctx, "a"))

	_, err := store.Get(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRunStore_DeleteMissing(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, testRun("a", time.Unix(100, 0))))

	assert.ErrorIs(t, store.Delete(ctx, "missing"), domain.ErrNotFound)

	runs, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
