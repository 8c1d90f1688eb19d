// Package service provides the arcade's business logic on top of the
// progression ledger and the power-up registry.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"brain-arcade/internal/game"
	"brain-arcade/internal/model"
	"brain-arcade/internal/pkg/lock"
	"brain-arcade/internal/powerup"
	"brain-arcade/internal/progression"
	"brain-arcade/internal/review"
	"brain-arcade/internal/shop"
	"brain-arcade/internal/storage"
)

// Arcade service errors
var (
	ErrUnknownGame        = errors.New("unknown game")
	ErrInvalidPlay        = errors.New("invalid play report")
	ErrUnknownTheme       = errors.New("unknown theme")
	ErrInsufficientFunds  = errors.New("not enough currency")
	ErrThemeNotOwned      = errors.New("theme not owned")
	ErrPowerUpUnavailable = errors.New("power-up not available")
	ErrBoostAlreadyArmed  = errors.New("a power-up is already armed")
	ErrClosed             = errors.New("arcade service closed")
)

// DefaultLockTimeout bounds how long a command waits for the player's
// previous command.
const DefaultLockTimeout = 5 * time.Second

// Effect sizes of the scoring boosts.
const (
	accuracyBoostPoints = 10
	timeFreezeSeconds   = 5
)

// ReviewSubmitter forwards reviews to an external collector.
type ReviewSubmitter interface {
	Enabled() bool
	Submit(ctx context.Context, rating int, text string, at time.Time) error
}

// Options tunes an ArcadeService.
type Options struct {
	Location         *time.Location
	Clock            func() time.Time
	LevelUpGrant     bool // grant doubleXP on level-up
	AchievementGrant bool // grant a shield per unlocked achievement
	LockTimeout      time.Duration
}

// PlayOutcome reports what a finished game changed.
type PlayOutcome struct {
	Result   model.GameResult
	Progress model.UserProgress
	LevelUp  bool
	Unlocked []progression.Achievement
	Boost    *powerup.PowerUp // boost applied to this game, if any
	Rewards  []powerup.Type   // power-ups granted by this game
}

// session is one player's live state.
type session struct {
	ledger *progression.Ledger
	boosts *powerup.Manager
	armed  *powerup.PowerUp
	unsubs []func()
}

// ArcadeService routes player commands to per-player sessions. Sessions are
// created on first use; commands for the same player run one at a time.
type ArcadeService struct {
	store     storage.Store
	games     *game.Registry
	reviews   *review.Book
	submitter ReviewSubmitter
	locks     *lock.Keyed[int64]
	opts      Options

	mu       sync.Mutex
	sessions map[int64]*session
	closed   bool
}

// NewArcadeService creates a new ArcadeService instance
func NewArcadeService(
	store storage.Store,
	games *game.Registry,
	reviews *review.Book,
	submitter ReviewSubmitter,
	locks *lock.Keyed[int64],
	opts Options,
) *ArcadeService {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.LockTimeout <= 0 {
		opts.LockTimeout = DefaultLockTimeout
	}
	if locks == nil {
		locks = lock.NewKeyed[int64]()
	}
	return &ArcadeService{
		store:     store,
		games:     games,
		reviews:   reviews,
		submitter: submitter,
		locks:     locks,
		opts:      opts,
		sessions:  make(map[int64]*session),
	}
}

// ProgressKey is the store key of a player's ledger.
func ProgressKey(playerID int64) string {
	return fmt.Sprintf("%s:%d", progression.DefaultKey, playerID)
}

// session returns the player's session, loading it on first use. The store
// read happens outside s.mu; a concurrent loader for the same player loses
// and its session is discarded.
func (s *ArcadeService) session(ctx context.Context, playerID int64) (*session, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	sess, ok := s.sessions[playerID]
	s.mu.Unlock()
	if ok {
		return sess, nil
	}

	fresh := &session{
		ledger: progression.New(ctx, s.store,
			progression.WithKey(ProgressKey(playerID)),
			progression.WithClock(s.opts.Clock),
			progression.WithLocation(s.opts.Location),
		),
		boosts: powerup.NewManager(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if sess, ok := s.sessions[playerID]; ok {
		return sess, nil
	}
	fresh.unsubs = append(fresh.unsubs, fresh.ledger.Subscribe(s.rewardHook(playerID, fresh)))
	s.sessions[playerID] = fresh

	log.Debug().Int64("player_id", playerID).Msg("Session loaded")
	return fresh, nil
}

// rewardHook grants power-ups for progression events.
func (s *ArcadeService) rewardHook(playerID int64, sess *session) func(progression.Event) {
	return func(e progression.Event) {
		var t powerup.Type
		switch {
		case e.Type == progression.EventLevelUp && s.opts.LevelUpGrant:
			t = powerup.DoubleXP
		case e.Type == progression.EventAchievementUnlocked && s.opts.AchievementGrant:
			t = powerup.Shield
		default:
			return
		}
		if _, err := sess.boosts.Grant(t, "", 1); err != nil {
			log.Error().Err(err).Int64("player_id", playerID).Msg("Failed to grant reward")
		}
	}
}

// withSession runs fn under the player's lock, giving up after the lock
// timeout or when ctx ends.
func (s *ArcadeService) withSession(ctx context.Context, playerID int64, fn func(*session) error) error {
	sess, err := s.session(ctx, playerID)
	if err != nil {
		return err
	}
	return s.locks.WithContext(ctx, playerID, s.opts.LockTimeout, func() error { return fn(sess) })
}

// Games lists the minigame catalog.
func (s *ArcadeService) Games() []game.Minigame {
	return s.games.List()
}

// Stats returns the player's progress and derived stats.
func (s *ArcadeService) Stats(ctx context.Context, playerID int64) (model.UserProgress, progression.Stats, error) {
	var p model.UserProgress
	err := s.withSession(ctx, playerID, func(sess *session) error {
		p = sess.ledger.Snapshot()
		return nil
	})
	return p, progression.StatsFor(p), err
}

// Achievements returns the player's unlocked achievements in catalog order.
func (s *ArcadeService) Achievements(ctx context.Context, playerID int64) ([]progression.Achievement, error) {
	var out []progression.Achievement
	err := s.withSession(ctx, playerID, func(sess *session) error {
		out = sess.ledger.Achievements()
		return nil
	})
	return out, err
}

// Play scores a finished game and records it. A non-empty boostID arms that
// power-up first; an armed power-up is spent on this game.
func (s *ArcadeService) Play(ctx context.Context, playerID int64, gameID string, play game.Play, boostID string) (*PlayOutcome, error) {
	g, ok := s.games.Get(gameID)
	if !ok {
		return nil, ErrUnknownGame
	}
	if err := g.Validate(play); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPlay, err)
	}

	var out *PlayOutcome
	err := s.withSession(ctx, playerID, func(sess *session) error {
		if boostID != "" {
			if err := arm(sess, boostID); err != nil {
				return err
			}
		}

		boost := sess.armed
		result := g.Result(applyBeforeScoring(boost, play))
		result = applyAfterScoring(boost, result)

		before := sess.ledger.Snapshot()
		after := sess.ledger.RecordResult(ctx, result)

		if boost != nil {
			sess.boosts.Deactivate(boost.ID)
			sess.armed = nil
		}

		out = &PlayOutcome{
			Result:   result,
			Progress: after,
			LevelUp:  after.Level > before.Level,
			Unlocked: newlyUnlocked(before, after),
			Boost:    boost,
		}
		if out.LevelUp && s.opts.LevelUpGrant {
			out.Rewards = append(out.Rewards, powerup.DoubleXP)
		}
		if s.opts.AchievementGrant {
			for range out.Unlocked {
				out.Rewards = append(out.Rewards, powerup.Shield)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("player_id", playerID).
		Str("game", gameID).
		Int64("score", out.Result.Score).
		Int64("xp", out.Result.XPEarned).
		Bool("level_up", out.LevelUp).
		Int("unlocked", len(out.Unlocked)).
		Msg("Game recorded")
	return out, nil
}

// arm consumes one use of the power-up and holds it for the next game.
func arm(sess *session, id string) error {
	if sess.armed != nil {
		return ErrBoostAlreadyArmed
	}
	pu, ok := sess.boosts.Get(id)
	if !ok || !sess.boosts.Consume(id) {
		return ErrPowerUpUnavailable
	}
	pu.Active = true
	pu.UsesLeft--
	sess.armed = &pu
	return nil
}

// applyBeforeScoring adjusts the raw report.
func applyBeforeScoring(boost *powerup.PowerUp, p game.Play) game.Play {
	if boost == nil {
		return p
	}
	switch boost.Type {
	case powerup.Shield:
		if p.Correct < p.Total {
			p.Correct++
		}
	case powerup.TimeFreeze:
		p.Elapsed = max(p.Elapsed-timeFreezeSeconds*time.Second, 0)
	}
	return p
}

// applyAfterScoring adjusts the scored result.
func applyAfterScoring(boost *powerup.PowerUp, r model.GameResult) model.GameResult {
	if boost == nil {
		return r
	}
	switch boost.Type {
	case powerup.DoubleXP:
		r.XPEarned = model.MulCapped(r.XPEarned, 2)
	case powerup.AccuracyBoost:
		r.Accuracy = min(r.Accuracy+accuracyBoostPoints, 100)
	}
	return r
}

func newlyUnlocked(before, after model.UserProgress) []progression.Achievement {
	var out []progression.Achievement
	for _, id := range after.Achievements {
		if before.HasAchievement(id) {
			continue
		}
		if a, ok := progression.FindAchievement(progression.DefaultAchievements, id); ok {
			out = append(out, a)
		}
	}
	return out
}

// Themes lists the shop catalog.
func (s *ArcadeService) Themes() []shop.Theme {
	return shop.AllThemes()
}

// Buy purchases a theme. Buying an owned theme succeeds without charge.
func (s *ArcadeService) Buy(ctx context.Context, playerID int64, id shop.ThemeID) (model.UserProgress, error) {
	theme, ok := shop.GetTheme(id)
	if !ok {
		return model.UserProgress{}, ErrUnknownTheme
	}

	var p model.UserProgress
	err := s.withSession(ctx, playerID, func(sess *session) error {
		if !sess.ledger.PurchaseItem(ctx, string(theme.ID), theme.Price) {
			return ErrInsufficientFunds
		}
		p = sess.ledger.Snapshot()
		return nil
	})
	return p, err
}

// SetTheme activates an owned theme.
func (s *ArcadeService) SetTheme(ctx context.Context, playerID int64, id shop.ThemeID) error {
	if _, ok := shop.GetTheme(id); !ok {
		return ErrUnknownTheme
	}
	return s.withSession(ctx, playerID, func(sess *session) error {
		if !sess.ledger.SetActiveTheme(ctx, string(id)) {
			return ErrThemeNotOwned
		}
		return nil
	})
}

// PowerUps lists the player's power-ups and the armed one, if any.
func (s *ArcadeService) PowerUps(ctx context.Context, playerID int64) ([]powerup.PowerUp, *powerup.PowerUp, error) {
	var (
		list  []powerup.PowerUp
		armed *powerup.PowerUp
	)
	err := s.withSession(ctx, playerID, func(sess *session) error {
		list = sess.boosts.List()
		if sess.armed != nil {
			a := *sess.armed
			armed = &a
		}
		return nil
	})
	return list, armed, err
}

// UsePowerUp arms a power-up for the player's next game.
func (s *ArcadeService) UsePowerUp(ctx context.Context, playerID int64, id string) (powerup.PowerUp, error) {
	var armed powerup.PowerUp
	err := s.withSession(ctx, playerID, func(sess *session) error {
		if err := arm(sess, id); err != nil {
			return err
		}
		armed = *sess.armed
		return nil
	})
	return armed, err
}

// SubmitReview stores a review locally and forwards it when a collector is
// configured. A forwarding error is returned alongside the stored review.
func (s *ArcadeService) SubmitReview(ctx context.Context, name string, rating int, text string) (model.Review, error) {
	r := s.reviews.Add(ctx, rating, text, name)
	if s.submitter == nil || !s.submitter.Enabled() {
		return r, nil
	}
	if err := s.submitter.Submit(ctx, r.Rating, r.Comment, time.UnixMilli(r.Timestamp)); err != nil {
		log.Warn().Err(err).Str("review_id", r.ID).Msg("Failed to forward review")
		return r, err
	}
	return r, nil
}

// Reviews lists reviews, newest first. Moderators see hidden ones too.
func (s *ArcadeService) Reviews(includeHidden bool) []model.Review {
	if includeHidden {
		return s.reviews.All()
	}
	return s.reviews.Visible()
}

// ModerateReview shows or hides a review.
func (s *ArcadeService) ModerateReview(ctx context.Context, id string, hidden bool) error {
	return s.reviews.SetHidden(ctx, id, hidden)
}

// Reset wipes the player's progress and power-ups.
func (s *ArcadeService) Reset(ctx context.Context, playerID int64) error {
	return s.withSession(ctx, playerID, func(sess *session) error {
		sess.ledger.Reset(ctx)
		sess.boosts.ClearAll()
		sess.armed = nil
		return nil
	})
}

// Close flushes every loaded ledger and rejects further commands.
func (s *ArcadeService) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	sessions := make(map[int64]*session, len(s.sessions))
	for id, sess := range s.sessions {
		sessions[id] = sess
	}
	s.mu.Unlock()

	var errs []error
	for id, sess := range sessions {
		s.locks.Lock(id)
		if err := sess.ledger.Flush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flush player %d: %w", id, err))
		}
		for _, unsub := range sess.unsubs {
			unsub()
		}
		s.locks.Unlock(id)
	}
	log.Info().Int("sessions", len(sessions)).Msg("Arcade service closed")
	return errors.Join(errs...)
}
