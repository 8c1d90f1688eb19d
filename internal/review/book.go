// Package review keeps player reviews locally and forwards them to an external
// collector.
package review

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"brain-arcade/internal/model"
	"brain-arcade/internal/storage"
)

// Key is the store key holding the review array.
const Key = "reviews"

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// Maximum stored lengths.
const (
	maxCommentLen = 1000
	maxNameLen    = 64
)

// ErrNotFound is returned when a review id does not exist.
var ErrNotFound = errors.New("review not found")

// Book is the local review list. New reviews stay hidden until a moderator
// surfaces them.
type Book struct {
	mu      sync.Mutex
	store   storage.Store
	now     func() time.Time
	reviews []model.Review
}

// NewBook loads the persisted reviews from store. A missing or corrupt entry
// starts an empty book.
func NewBook(ctx context.Context, store storage.Store) *Book {
	b := &Book{store: store, now: time.Now}

	data, err := store.Get(ctx, Key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		log.Warn().Err(err).Msg("Failed to read reviews")
	default:
		if err := json.Unmarshal(data, &b.reviews); err != nil {
			log.Warn().Err(err).Msg("Corrupt review list, starting empty")
			b.reviews = nil
		}
	}
	return b
}

// ClampRating bounds r to [MinRating, MaxRating].
func ClampRating(r int) int {
	return min(max(r, MinRating), MaxRating)
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > n {
		return string(r[:n])
	}
	return s
}

// Add stores a new hidden review and returns it.
func (b *Book) Add(ctx context.Context, rating int, comment, name string) model.Review {
	r := model.Review{
		ID:        uuid.NewString(),
		Rating:    ClampRating(rating),
		Comment:   truncate(comment, maxCommentLen),
		Name:      truncate(name, maxNameLen),
		Timestamp: b.now().UnixMilli(),
		Hidden:    true,
	}

	b.mu.Lock()
	b.reviews = append(b.reviews, r)
	b.persist(ctx)
	b.mu.Unlock()

	log.Info().Str("review_id", r.ID).Int("rating", r.Rating).Msg("Review added")
	return r
}

// SetHidden toggles the visibility of review id.
func (b *Book) SetHidden(ctx context.Context, id string, hidden bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := slices.IndexFunc(b.reviews, func(r model.Review) bool { return r.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	if b.reviews[i].Hidden == hidden {
		return nil
	}
	b.reviews[i].Hidden = hidden
	b.persist(ctx)
	return nil
}

// Visible returns the surfaced reviews, newest first.
func (b *Book) Visible() []model.Review {
	all := b.All()
	return slices.DeleteFunc(all, func(r model.Review) bool { return r.Hidden })
}

// All returns every review, newest first.
func (b *Book) All() []model.Review {
	b.mu.Lock()
	out := slices.Clone(b.reviews)
	b.mu.Unlock()

	slices.Reverse(out)
	return out
}

// persist writes the list. Callers hold b.mu. Failures are logged only.
func (b *Book) persist(ctx context.Context) {
	data, err := json.Marshal(b.reviews)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode reviews")
		return
	}
	if err := b.store.Put(ctx, Key, data); err != nil {
		log.Warn().Err(err).Msg("Failed to persist reviews")
	}
}
