// Tests for the contacts table accessors and the change feed.
package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/phonebook/pkg/types"
)

// setupBackend creates an attached Backend with the schema in place.
func setupBackend(t *testing.T) *Backend {
	t.Helper()
	if testing.Short() {
		t.Skip("opens a SQLite database")
	}
	b := NewBackend()
	config := types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	}
	require.NoError(t, b.Attach(config))
	t.Cleanup(func() { b.Detach() })
	require.NoError(t, b.EnsureSchema(context.Background()))
	return b
}

// loadAll collects every contact via Load.
func loadAll(t *testing.T, b *Backend) []types.Contact {
	t.Helper()
	var got []types.Contact
	require.NoError(t, b.Load(context.Background(), func(c types.Contact) error {
		got = append(got, c)
		return nil
	}))
	return got
}

func TestInsert(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	first, err := b.Insert(ctx, "Alice", "555-0001")
	require.NoError(t, err)
	second, err := b.Insert(ctx, "Alice", "555-0001")
	require.NoError(t, err)

	assert.Equal(t, "Alice", first.Name)
	assert.Equal(t, "555-0001", first.Number)
	assert.Greater(t, second.ID, first.ID, "identities increase")
	assert.Len(t, loadAll(t, b), 2, "duplicates are distinct rows")
}

func TestInsertIDsNotReused(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	first, err := b.Insert(ctx, "Alice", "555-0001")
	require.NoError(t, err)
	_, err = b.DeleteByName(ctx, "Alice")
	require.NoError(t, err)

	next, err := b.Insert(ctx, "Bob", "555-0002")
	require.NoError(t, err)
	assert.Greater(t, next.ID, first.ID)
}

func TestDeleteByName(t *testing.T) {
	tests := []struct {
		name        string
		seed        [][2]string
		target      string
		wantDeleted []string
		wantLeft    []string
	}{
		{
			name:        "no match deletes nothing",
			seed:        [][2]string{{"Alice", "1"}},
			target:      "Zed",
			wantDeleted: nil,
			wantLeft:    []string{"1"},
		},
		{
			name:        "single match",
			seed:        [][2]string{{"Alice", "1"}, {"Bob", "2"}},
			target:      "Alice",
			wantDeleted: []string{"1"},
			wantLeft:    []string{"2"},
		},
		{
			name:        "all matches removed in id order",
			seed:        [][2]string{{"A", "1"}, {"B", "2"}, {"A", "3"}},
			target:      "A",
			wantDeleted: []string{"1", "3"},
			wantLeft:    []string{"2"},
		},
		{
			name:        "match is case-sensitive",
			seed:        [][2]string{{"alice", "1"}},
			target:      "Alice",
			wantDeleted: nil,
			wantLeft:    []string{"1"},
		},
		{
			name:        "empty table",
			target:      "Alice",
			wantDeleted: nil,
			wantLeft:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := setupBackend(t)
			ctx := context.Background()
			for _, s := range tt.seed {
				_, err := b.Insert(ctx, s[0], s[1])
				require.NoError(t, err)
			}

			deleted, err := b.DeleteByName(ctx, tt.target)
			require.NoError(t, err)

			var gotDeleted []string
			for _, c := range deleted {
				assert.Equal(t, tt.target, c.Name)
				gotDeleted = append(gotDeleted, c.Number)
			}
			assert.Equal(t, tt.wantDeleted, gotDeleted)

			var gotLeft []string
			for _, c := range loadAll(t, b) {
				gotLeft = append(gotLeft, c.Number)
			}
			assert.Equal(t, tt.wantLeft, gotLeft)
		})
	}
}

func TestLoadOrder(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	names := []string{"Carol", "Alice", "Bob"}
	for _, n := range names {
		_, err := b.Insert(ctx, n, n+"-number")
		require.NoError(t, err)
	}

	var got []string
	for _, c := range loadAll(t, b) {
		got = append(got, c.Name)
	}
	assert.Equal(t, names, got, "storage order is insertion order, not alphabetical")
}

func TestLoadStopsOnCallbackError(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()
	for _, n := range []string{"A", "B", "C"} {
		_, err := b.Insert(ctx, n, "1")
		require.NoError(t, err)
	}

	stop := errors.New("stop")
	var seen []string
	err := b.Load(ctx, func(c types.Contact) error {
		seen = append(seen, c.Name)
		if len(seen) == 2 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, []string{"A", "B"}, seen)
}

func TestChangeFeed(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	var changes []types.Change
	unsubscribe := b.Subscribe(func(ch types.Change) { changes = append(changes, ch) })

	alice, err := b.Insert(ctx, "Alice", "555-0001")
	require.NoError(t, err)
	_, err = b.DeleteByName(ctx, "Nobody")
	require.NoError(t, err)
	_, err = b.DeleteByName(ctx, "Alice")
	require.NoError(t, err)

	require.Len(t, changes, 2, "a delete that matched nothing publishes nothing")
	assert.Equal(t, types.Change{Op: types.ChangeInsert, Contacts: []types.Contact{alice}}, changes[0])
	assert.Equal(t, types.Change{Op: types.ChangeDelete, Contacts: []types.Contact{alice}}, changes[1])

	unsubscribe()
	unsubscribe()
	_, err = b.Insert(ctx, "Bob", "555-0002")
	require.NoError(t, err)
	assert.Len(t, changes, 2, "no delivery after unsubscribe")
}

func TestChangeFeedNotPublishedOnFailure(t *testing.T) {
	b := setupBackend(t)

	var changes []types.Change
	b.Subscribe(func(ch types.Change) { changes = append(changes, ch) })

	require.NoError(t, b.Detach())
	_, err := b.Insert(context.Background(), "Alice", "555-0001")
	require.Error(t, err)
	assert.Empty(t, changes)
}

func TestCount(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	n, err := b.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = b.Insert(ctx, "Alice", "555-0001")
	require.NoError(t, err)
	n, err = b.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
