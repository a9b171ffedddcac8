package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shozoko/bookshop/catalog"
)

func waitSnapshot(t *testing.T, ch <-chan []catalog.Item, accept func([]catalog.Item) bool) []catalog.Item {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case items, ok := <-ch:
			require.True(t, ok, "feed closed while waiting")
			if accept(items) {
				return items
			}
		case <-deadline:
			t.Fatal("timed out waiting for snapshot")
		}
	}
}

// TestInsert_MintsIDForBlank verifies blank ids are minted and returned.
func TestInsert_MintsIDForBlank(t *testing.T) {
	t.Parallel()

	s := New()
	id, err := s.Insert(context.Background(), catalog.Item{Title: "Dune", Author: "Herbert"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := s.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Dune", got.Title)
	assert.Equal(t, catalog.DefaultCategory, got.Category)
}

// TestInsert_DuplicateExplicitIDConflicts verifies re-inserting an explicit
// id is a conflict, not a silent overwrite.
func TestInsert_DuplicateExplicitIDConflicts(t *testing.T) {
	t.Parallel()

	s := New()
	_, err := s.Insert(context.Background(), catalog.Item{ID: "fixed", Title: "A", Author: "B"})
	require.NoError(t, err)

	_, err = s.Insert(context.Background(), catalog.Item{ID: "fixed", Title: "C", Author: "D"})
	require.Error(t, err)
	assert.True(t, catalog.IsConflict(err))

	var perr *catalog.PersistenceError
	require.ErrorAs(t, err, &perr)
}

// TestGetByID_MissIsAbsence verifies a miss is (nil, nil).
func TestGetByID_MissIsAbsence(t *testing.T) {
	t.Parallel()

	s := New()
	got, err := s.GetByID(context.Background(), "nope")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

// TestUpdateDelete_ReportMatch verifies the boolean conventions.
func TestUpdateDelete_ReportMatch(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	id, err := s.Insert(ctx, catalog.Item{Title: "A", Author: "B"})
	require.NoError(t, err)

	ok, err := s.Update(ctx, catalog.Item{ID: id, Title: "A2", Author: "B"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Update(ctx, catalog.Item{ID: "ghost", Title: "X", Author: "Y"})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Delete(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestObserve_EmitsOnEveryChange verifies subscribers get the initial
// snapshot and a fresh one after each mutation.
func TestObserve_EmitsOnEveryChange(t *testing.T) {
	t.Parallel()

	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := s.Observe(ctx)
	waitSnapshot(t, ch, func(items []catalog.Item) bool { return len(items) == 0 })

	_, err := s.Insert(ctx, catalog.Item{Title: "A", Author: "B"})
	require.NoError(t, err)
	items := waitSnapshot(t, ch, func(items []catalog.Item) bool { return len(items) == 1 })
	assert.Equal(t, "A", items[0].Title)
}

// TestObserve_SnapshotIsACopy verifies mutating a received snapshot cannot
// corrupt the store.
func TestObserve_SnapshotIsACopy(t *testing.T) {
	t.Parallel()

	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	id, err := s.Insert(ctx, catalog.Item{Title: "A", Author: "B"})
	require.NoError(t, err)

	ch := s.Observe(ctx)
	items := waitSnapshot(t, ch, func(items []catalog.Item) bool { return len(items) == 1 })
	items[0].Title = "tampered"

	got, err := s.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Title)
}
