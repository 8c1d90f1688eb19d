package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "progress")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "progress", []byte(`{"totalScore":1}`)))
	got, err := s.Get(ctx, "progress")
	require.NoError(t, err)
	assert.JSONEq(t, `{"totalScore":1}`, string(got))

	// Last writer wins
	require.NoError(t, s.Put(ctx, "progress", []byte(`{"totalScore":2}`)))
	got, err = s.Get(ctx, "progress")
	require.NoError(t, err)
	assert.JSONEq(t, `{"totalScore":2}`, string(got))

	require.NoError(t, s.Put(ctx, "reviews", []byte(`[]`)))

	require.NoError(t, s.Delete(ctx, "progress"))
	_, err = s.Get(ctx, "progress")
	assert.ErrorIs(t, err, ErrNotFound)

	// Other keys untouched
	got, err = s.Get(ctx, "reviews")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))

	require.NoError(t, s.Delete(ctx, "never-written"))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStore_ValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	in := []byte("abc")
	require.NoError(t, s.Put(ctx, "k", in))
	in[0] = 'x'

	out, err := s.Get(ctx, "k")
	require.NoError(t, err)
	out[1] = 'y'

	again, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "arcade.db"))
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "arcade.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "progress", []byte("v1")))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, "progress")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(got))
}

func TestOpenSQLite_RequiresPath(t *testing.T) {
	_, err := OpenSQLite("  ")
	assert.Error(t, err)
}
