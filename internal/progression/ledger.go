// Package progression owns a player's cumulative progress: score, XP, level,
// streak, achievements and purchased cosmetics.
//
// A Ledger is the single source of truth for one player. Every mutation runs
// to completion under the ledger's mutex and ends with a synchronous write to
// the backing store. Store failures never surface to callers: a failed read
// yields default progress and a failed write leaves the in-memory state
// authoritative until the next successful write.
package progression

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"brain-arcade/internal/model"
	"brain-arcade/internal/pkg/notify"
	"brain-arcade/internal/storage"
)

// DefaultKey is the store key holding the progress snapshot.
const DefaultKey = "progress"

// EventType distinguishes ledger notifications.
type EventType string

const (
	EventAchievementUnlocked EventType = "achievement_unlocked"
	EventLevelUp             EventType = "level_up"
)

// Event is delivered to subscribers after a mutation has been persisted.
type Event struct {
	Type        EventType
	Achievement Achievement // set for EventAchievementUnlocked
	Level       int         // new level, set for EventLevelUp
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the time source used for streak days.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithLocation sets the timezone that defines calendar days.
func WithLocation(loc *time.Location) Option {
	return func(l *Ledger) {
		if loc != nil {
			l.loc = loc
		}
	}
}

// WithKey sets the store key, e.g. one key per player.
func WithKey(key string) Option {
	return func(l *Ledger) { l.key = key }
}

// WithAchievements replaces the achievement catalog.
func WithAchievements(catalog []Achievement) Option {
	return func(l *Ledger) { l.catalog = catalog }
}

// Ledger tracks one player's progress.
type Ledger struct {
	mu       sync.Mutex
	store    storage.Store
	key      string
	now      func() time.Time
	loc      *time.Location
	catalog  []Achievement
	progress model.UserProgress
	events   *notify.Broadcaster[Event]
}

// New constructs a Ledger and loads the persisted snapshot from store.
func New(ctx context.Context, store storage.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:   store,
		key:     DefaultKey,
		now:     time.Now,
		loc:     time.Local,
		catalog: DefaultAchievements,
		events:  notify.New[Event]("progression"),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.progress = l.load(ctx)
	return l
}

// load reads the snapshot, falling back to defaults on any failure.
func (l *Ledger) load(ctx context.Context) model.UserProgress {
	data, err := l.store.Get(ctx, l.key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Warn().Err(err).Str("key", l.key).Msg("Failed to read progress, starting fresh")
		}
		return model.NewUserProgress()
	}

	p := model.NewUserProgress()
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("key", l.key).Msg("Corrupt progress snapshot, starting fresh")
		return model.NewUserProgress()
	}
	return normalize(p)
}

// normalize repairs a decoded snapshot so the ledger invariants hold.
func normalize(p model.UserProgress) model.UserProgress {
	p = p.Clone()
	if p.TotalScore < 0 {
		p.TotalScore = 0
	}
	if p.TotalXP < 0 {
		p.TotalXP = 0
	}
	if p.SpentCurrency < 0 {
		p.SpentCurrency = 0
	}
	if p.Streak < 0 {
		p.Streak = 0
	}
	p.Level = LevelFor(p.TotalXP)
	if p.ActiveTheme != model.DefaultTheme && !p.Owns(p.ActiveTheme) {
		p.ActiveTheme = model.DefaultTheme
	}
	return p
}

// persist writes the current snapshot. Callers hold l.mu.
func (l *Ledger) persist(ctx context.Context) error {
	data, err := json.Marshal(l.progress)
	if err != nil {
		log.Error().Err(err).Str("key", l.key).Msg("Failed to encode progress")
		return err
	}
	if err := l.store.Put(ctx, l.key, data); err != nil {
		log.Warn().Err(err).Str("key", l.key).Msg("Failed to persist progress")
		return err
	}
	return nil
}

// RecordResult folds a completed session into the ledger and returns the
// updated snapshot. Malformed input is clamped, never rejected.
func (l *Ledger) RecordResult(ctx context.Context, result model.GameResult) model.UserProgress {
	r := result.Clamp()

	l.mu.Lock()
	p := &l.progress
	prevLevel := p.Level

	p.TotalScore = model.AddCapped(p.TotalScore, r.Score)
	p.TotalXP = model.AddCapped(p.TotalXP, r.XPEarned)
	if r.GameID != "" && !p.HasPlayed(r.GameID) {
		p.GamesPlayed = append(p.GamesPlayed, r.GameID)
	}
	p.Level = LevelFor(p.TotalXP)

	today := dayKey(l.now(), l.loc)
	p.Streak = nextStreak(p.Streak, p.LastPlayedDate, today)
	p.LastPlayedDate = today

	unlocked := unlockNew(l.catalog, p, r)

	_ = l.persist(ctx)
	snap := p.Clone()
	l.mu.Unlock()

	log.Debug().
		Str("game", r.GameID).
		Int64("score", r.Score).
		Int64("xp", r.XPEarned).
		Int64("total_xp", snap.TotalXP).
		Int("level", snap.Level).
		Int("streak", snap.Streak).
		Msg("Result recorded")

	if snap.Level > prevLevel {
		l.events.Publish(Event{Type: EventLevelUp, Level: snap.Level})
	}
	for _, a := range unlocked {
		l.events.Publish(Event{Type: EventAchievementUnlocked, Achievement: a})
	}

	return snap
}

// PurchaseItem buys itemID for cost. Owning the item already is a success
// without charge; insufficient currency is a failure without mutation.
func (l *Ledger) PurchaseItem(ctx context.Context, itemID string, cost int64) bool {
	if itemID == "" {
		return false
	}
	if cost < 0 {
		cost = 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	p := &l.progress
	if itemID == model.DefaultTheme || p.Owns(itemID) {
		return true
	}
	if p.AvailableCurrency() < cost {
		return false
	}

	p.SpentCurrency = model.AddCapped(p.SpentCurrency, cost)
	p.PurchasedItems = append(p.PurchasedItems, itemID)
	_ = l.persist(ctx)

	log.Info().Str("item", itemID).Int64("cost", cost).Msg("Item purchased")
	return true
}

// SetActiveTheme selects an owned theme or the default.
func (l *Ledger) SetActiveTheme(ctx context.Context, themeID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	p := &l.progress
	if themeID != model.DefaultTheme && !p.Owns(themeID) {
		return false
	}
	if p.ActiveTheme == themeID {
		return true
	}
	p.ActiveTheme = themeID
	_ = l.persist(ctx)
	return true
}

// Snapshot returns a copy of the current progress that shares no memory with
// the ledger.
func (l *Ledger) Snapshot() model.UserProgress {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.progress.Clone()
}

// Stats derives display stats from the current progress.
func (l *Ledger) Stats() Stats {
	return StatsFor(l.Snapshot())
}

// Achievements returns the catalog entries the player has unlocked, in
// catalog order.
func (l *Ledger) Achievements() []Achievement {
	snap := l.Snapshot()
	var out []Achievement
	for _, a := range l.catalog {
		if snap.HasAchievement(a.ID) {
			out = append(out, a)
		}
	}
	return out
}

// Reset wipes all progress back to defaults. The stored snapshot is
// removed; a later load of the missing key yields the same defaults.
func (l *Ledger) Reset(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.progress = model.NewUserProgress()
	if err := l.store.Delete(ctx, l.key); err != nil {
		log.Warn().Err(err).Str("key", l.key).Msg("Failed to delete progress")
	}
	log.Info().Str("key", l.key).Msg("Progress reset")
}

// Flush writes the current snapshot, reporting any store error. Call it at
// teardown.
func (l *Ledger) Flush(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.persist(ctx)
}

// Subscribe registers an observer for level-up and achievement events.
func (l *Ledger) Subscribe(fn func(Event)) (unsubscribe func()) {
	return l.events.Subscribe(fn)
}
