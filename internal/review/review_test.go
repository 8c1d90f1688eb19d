package review

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brain-arcade/internal/storage"
)

func TestBook_AddIsHiddenAndPersisted(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	b := NewBook(ctx, store)

	r := b.Add(ctx, 9, "  great fun  ", "ana")
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, MaxRating, r.Rating)
	assert.Equal(t, "great fun", r.Comment)
	assert.True(t, r.Hidden)
	assert.Empty(t, b.Visible())

	reloaded := NewBook(ctx, store)
	require.Len(t, reloaded.All(), 1)
	assert.Equal(t, r, reloaded.All()[0])
}

func TestBook_SetHidden(t *testing.T) {
	ctx := context.Background()
	b := NewBook(ctx, storage.NewMemoryStore())
	first := b.Add(ctx, 4, "one", "a")
	second := b.Add(ctx, 0, "two", "b")
	assert.Equal(t, MinRating, second.Rating)

	require.NoError(t, b.SetHidden(ctx, first.ID, false))
	require.NoError(t, b.SetHidden(ctx, second.ID, false))
	visible := b.Visible()
	require.Len(t, visible, 2)
	assert.Equal(t, second.ID, visible[0].ID, "newest first")

	require.NoError(t, b.SetHidden(ctx, second.ID, true))
	assert.Len(t, b.Visible(), 1)

	assert.ErrorIs(t, b.SetHidden(ctx, "missing", false), ErrNotFound)
}

func TestBook_CorruptStoreStartsEmpty(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Put(ctx, Key, []byte("{not json")))

	b := NewBook(ctx, store)
	assert.Empty(t, b.All())
}

func TestSubmitter_Submit(t *testing.T) {
	var got Submission
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewDecoder(r.Body).Decode(&got) //nolint:errcheck
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewSubmitter(srv.URL, "brain-arcade", time.Second)
	at := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Submit(context.Background(), 7, "nice", at))

	assert.Equal(t, 5, got.Rating)
	assert.Equal(t, "nice", got.Review)
	assert.Equal(t, "2026-03-01T12:00:00Z", got.Timestamp)
	assert.Equal(t, "brain-arcade", got.Game)
}

func TestSubmitter_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]string{"error": "slow down"}) //nolint:errcheck
	}))
	defer srv.Close()

	err := NewSubmitter(srv.URL, "g", time.Second).Submit(context.Background(), 3, "x", time.Now())
	require.Error(t, err)
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusTooManyRequests, httpErr.StatusCode)
	assert.True(t, strings.Contains(err.Error(), "HTTP 429: slow down"))
}

func TestSubmitter_Disabled(t *testing.T) {
	s := NewSubmitter("", "g", 0)
	assert.False(t, s.Enabled())
	assert.ErrorIs(t, s.Submit(context.Background(), 3, "x", time.Now()), ErrDisabled)
}
