package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brain-arcade/internal/game"
	"brain-arcade/internal/model"
	"brain-arcade/internal/pkg/lock"
	"brain-arcade/internal/powerup"
	"brain-arcade/internal/review"
	"brain-arcade/internal/shop"
	"brain-arcade/internal/storage"
)

type fakeSubmitter struct {
	mu      sync.Mutex
	enabled bool
	err     error
	ratings []int
	texts   []string
}

func (f *fakeSubmitter) Enabled() bool { return f.enabled }

func (f *fakeSubmitter) Submit(_ context.Context, rating int, text string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ratings = append(f.ratings, rating)
	f.texts = append(f.texts, text)
	return f.err
}

var testNow = time.Date(2026, time.March, 10, 15, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, store storage.Store, sub ReviewSubmitter, grants bool) *ArcadeService {
	t.Helper()
	ctx := context.Background()
	return NewArcadeService(
		store,
		game.DefaultCatalog(),
		review.NewBook(ctx, store),
		sub,
		lock.NewKeyed[int64](),
		Options{
			Location:         time.UTC,
			Clock:            func() time.Time { return testNow },
			LevelUpGrant:     grants,
			AchievementGrant: grants,
		},
	)
}

// perfectMath is 1000 points at 100% in 60s: 120 xp plus the 10 xp bonus.
var perfectMath = game.Play{Correct: 10, Total: 10, Points: 1000, Elapsed: time.Minute}

func TestPlay_RecordsAndRewards(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewMemoryStore(), nil, true)

	out, err := svc.Play(ctx, 1, "mental-math", perfectMath, "")
	require.NoError(t, err)

	assert.Equal(t, int64(130), out.Result.XPEarned)
	assert.Equal(t, 100, out.Result.Accuracy)
	assert.True(t, out.LevelUp)
	assert.Equal(t, 2, out.Progress.Level)

	var ids []string
	for _, a := range out.Unlocked {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"first-steps", "score-1k", "perfectionist"}, ids)
	assert.Equal(t, []powerup.Type{powerup.DoubleXP, powerup.Shield, powerup.Shield, powerup.Shield}, out.Rewards)

	list, armed, err := svc.PowerUps(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, armed)
	require.Len(t, list, 2)
	assert.Equal(t, powerup.DoubleXP, list[0].Type)
	assert.Equal(t, 1, list[0].UsesLeft)
	assert.Equal(t, powerup.Shield, list[1].Type)
	assert.Equal(t, 3, list[1].UsesLeft)
}

func TestPlay_RewardsDisabled(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewMemoryStore(), nil, false)

	out, err := svc.Play(ctx, 1, "mental-math", perfectMath, "")
	require.NoError(t, err)
	assert.Empty(t, out.Rewards)

	list, _, err := svc.PowerUps(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPlay_DoubleXPBoost(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewMemoryStore(), nil, true)
	_, err := svc.Play(ctx, 1, "mental-math", perfectMath, "")
	require.NoError(t, err)

	list, _, _ := svc.PowerUps(ctx, 1)
	doubleXP := list[0]

	out, err := svc.Play(ctx, 1, "memory-match", game.Play{Correct: 5, Total: 10, Points: 100, Elapsed: 40 * time.Second}, doubleXP.ID)
	require.NoError(t, err)
	require.NotNil(t, out.Boost)
	assert.Equal(t, powerup.DoubleXP, out.Boost.Type)
	assert.Equal(t, int64(20), out.Result.XPEarned)
	assert.Equal(t, int64(150), out.Progress.TotalXP)

	list, armed, _ := svc.PowerUps(ctx, 1)
	assert.Nil(t, armed, "boost is spent by the game")
	require.Len(t, list, 1)
	assert.Equal(t, powerup.Shield, list[0].Type)

	_, err = svc.Play(ctx, 1, "memory-match", perfectMath, doubleXP.ID)
	assert.ErrorIs(t, err, ErrPowerUpUnavailable)
}

func TestUsePowerUp_ArmsForNextGame(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewMemoryStore(), nil, true)
	_, err := svc.Play(ctx, 1, "mental-math", perfectMath, "")
	require.NoError(t, err)

	list, _, _ := svc.PowerUps(ctx, 1)
	shield := list[1]

	armed, err := svc.UsePowerUp(ctx, 1, shield.ID)
	require.NoError(t, err)
	assert.True(t, armed.Active)
	assert.Equal(t, 2, armed.UsesLeft)

	_, err = svc.UsePowerUp(ctx, 1, list[0].ID)
	assert.ErrorIs(t, err, ErrBoostAlreadyArmed)

	out, err := svc.Play(ctx, 1, "word-scramble", game.Play{Correct: 8, Total: 10, Points: 50, Elapsed: time.Minute}, "")
	require.NoError(t, err)
	assert.Equal(t, 90, out.Result.Accuracy, "shield forgives one mistake")

	list, armed2, _ := svc.PowerUps(ctx, 1)
	assert.Nil(t, armed2)
	for _, p := range list {
		assert.False(t, p.Active)
	}
}

func TestPlay_Rejections(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewMemoryStore(), nil, true)

	_, err := svc.Play(ctx, 1, "chess", perfectMath, "")
	assert.ErrorIs(t, err, ErrUnknownGame)

	_, err = svc.Play(ctx, 1, "mental-math", game.Play{Correct: 3, Total: 2}, "")
	assert.ErrorIs(t, err, ErrInvalidPlay)
	assert.ErrorIs(t, err, game.ErrTooManyCorrect)

	_, err = svc.Play(ctx, 1, "mental-math", perfectMath, "no-such-boost")
	assert.ErrorIs(t, err, ErrPowerUpUnavailable)

	p, _, err := svc.Stats(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, p.TotalScore, "rejected plays change nothing")
}

func TestBuyAndSetTheme(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewMemoryStore(), nil, false)
	_, err := svc.Play(ctx, 7, "mental-math", perfectMath, "")
	require.NoError(t, err)

	p, err := svc.Buy(ctx, 7, shop.ThemeOcean)
	require.NoError(t, err)
	assert.Equal(t, int64(500), p.AvailableCurrency())

	p, err = svc.Buy(ctx, 7, shop.ThemeOcean)
	require.NoError(t, err)
	assert.Equal(t, int64(500), p.AvailableCurrency(), "owned theme is not charged again")

	_, err = svc.Buy(ctx, 7, shop.ThemeNeon)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	_, err = svc.Buy(ctx, 7, "plaid")
	assert.ErrorIs(t, err, ErrUnknownTheme)

	require.NoError(t, svc.SetTheme(ctx, 7, shop.ThemeOcean))
	assert.ErrorIs(t, svc.SetTheme(ctx, 7, shop.ThemeNeon), ErrThemeNotOwned)
	assert.ErrorIs(t, svc.SetTheme(ctx, 7, "plaid"), ErrUnknownTheme)
	require.NoError(t, svc.SetTheme(ctx, 7, shop.ThemeClassic))
}

func TestPlayersAreIsolatedAndPersisted(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	svc := newTestService(t, store, nil, true)

	_, err := svc.Play(ctx, 1, "mental-math", perfectMath, "")
	require.NoError(t, err)

	other, _, err := svc.Stats(ctx, 2)
	require.NoError(t, err)
	assert.Zero(t, other.TotalScore)

	require.NoError(t, svc.Close(ctx))
	_, _, err = svc.Stats(ctx, 1)
	assert.ErrorIs(t, err, ErrClosed)

	reopened := newTestService(t, store, nil, true)
	p, stats, err := reopened.Stats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), p.TotalScore)
	assert.Equal(t, 2, stats.Level)
	assert.Equal(t, int64(70), stats.XPToNextLevel)

	list, _, err := reopened.PowerUps(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, list, "power-ups live in memory only")
}

func TestConcurrentPlaysSamePlayer(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewMemoryStore(), nil, true)

	const n = 20
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.Play(ctx, 3, "reaction-time", game.Play{Correct: 1, Total: 1, Points: 10, Elapsed: time.Second}, "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	p, _, err := svc.Stats(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(n*10), p.TotalScore)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewMemoryStore(), nil, true)
	_, err := svc.Play(ctx, 1, "mental-math", perfectMath, "")
	require.NoError(t, err)

	require.NoError(t, svc.Reset(ctx, 1))

	p, _, err := svc.Stats(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, p.TotalScore)
	assert.Equal(t, 1, p.Level)
	list, _, _ := svc.PowerUps(ctx, 1)
	assert.Empty(t, list)
}

func TestSubmitReview(t *testing.T) {
	ctx := context.Background()
	sub := &fakeSubmitter{enabled: true}
	svc := newTestService(t, storage.NewMemoryStore(), sub, true)

	r, err := svc.SubmitReview(ctx, "ana", 8, "love it")
	require.NoError(t, err)
	assert.Equal(t, 5, r.Rating)
	assert.True(t, r.Hidden)
	assert.Equal(t, []int{5}, sub.ratings)
	assert.Equal(t, []string{"love it"}, sub.texts)

	assert.Empty(t, svc.Reviews(false))
	require.NoError(t, svc.ModerateReview(ctx, r.ID, false))
	assert.Len(t, svc.Reviews(false), 1)

	sub.err = errors.New("collector down")
	r2, err := svc.SubmitReview(ctx, "bo", 3, "ok")
	assert.Error(t, err)
	assert.NotEmpty(t, r2.ID, "review is kept locally even when forwarding fails")
	assert.Len(t, svc.Reviews(true), 2)
}

func TestSubmitReview_NoCollector(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewMemoryStore(), review.NewSubmitter("", "g", 0), true)

	_, err := svc.SubmitReview(ctx, "ana", 4, "fine")
	assert.NoError(t, err)
}

func TestApplyBeforeScoring(t *testing.T) {
	base := game.Play{Correct: 7, Total: 10, Points: 500, Elapsed: 30 * time.Second}

	tests := []struct {
		name  string
		boost *powerup.PowerUp
		in    game.Play
		want  game.Play
	}{
		{"no boost", nil, base, base},
		{"shield adds a correct answer", &powerup.PowerUp{Type: powerup.Shield}, base,
			game.Play{Correct: 8, Total: 10, Points: 500, Elapsed: 30 * time.Second}},
		{"shield capped at total", &powerup.PowerUp{Type: powerup.Shield},
			game.Play{Correct: 10, Total: 10, Points: 500, Elapsed: 30 * time.Second},
			game.Play{Correct: 10, Total: 10, Points: 500, Elapsed: 30 * time.Second}},
		{"time freeze takes five seconds", &powerup.PowerUp{Type: powerup.TimeFreeze}, base,
			game.Play{Correct: 7, Total: 10, Points: 500, Elapsed: 25 * time.Second}},
		{"time freeze floored at zero", &powerup.PowerUp{Type: powerup.TimeFreeze},
			game.Play{Correct: 7, Total: 10, Points: 500, Elapsed: 3 * time.Second},
			game.Play{Correct: 7, Total: 10, Points: 500}},
		{"double xp leaves the play alone", &powerup.PowerUp{Type: powerup.DoubleXP}, base, base},
		{"accuracy boost leaves the play alone", &powerup.PowerUp{Type: powerup.AccuracyBoost}, base, base},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, applyBeforeScoring(tt.boost, tt.in))
		})
	}
}

func TestApplyAfterScoring(t *testing.T) {
	base := model.GameResult{GameID: "mental-math", Score: 500, Accuracy: 70, TimeSpent: 30, XPEarned: 55}
	with := func(f func(*model.GameResult)) model.GameResult {
		r := base
		f(&r)
		return r
	}

	tests := []struct {
		name  string
		boost *powerup.PowerUp
		in    model.GameResult
		want  model.GameResult
	}{
		{"no boost", nil, base, base},
		{"double xp", &powerup.PowerUp{Type: powerup.DoubleXP}, base,
			with(func(r *model.GameResult) { r.XPEarned = 110 })},
		{"double xp saturates", &powerup.PowerUp{Type: powerup.DoubleXP},
			with(func(r *model.GameResult) { r.XPEarned = math.MaxInt64/2 + 1 }),
			with(func(r *model.GameResult) { r.XPEarned = math.MaxInt64 })},
		{"accuracy boost adds ten", &powerup.PowerUp{Type: powerup.AccuracyBoost}, base,
			with(func(r *model.GameResult) { r.Accuracy = 80 })},
		{"accuracy boost capped at 100", &powerup.PowerUp{Type: powerup.AccuracyBoost},
			with(func(r *model.GameResult) { r.Accuracy = 95 }),
			with(func(r *model.GameResult) { r.Accuracy = 100 })},
		{"shield leaves the result alone", &powerup.PowerUp{Type: powerup.Shield}, base, base},
		{"time freeze leaves the result alone", &powerup.PowerUp{Type: powerup.TimeFreeze}, base, base},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, applyAfterScoring(tt.boost, tt.in))
		})
	}
}

func TestWithSession_LockTimeout(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewMemoryStore(), nil, true)
	svc.opts.LockTimeout = 20 * time.Millisecond

	svc.locks.Lock(1)
	_, _, err := svc.Stats(ctx, 1)
	assert.ErrorIs(t, err, lock.ErrLockTimeout)
	svc.locks.Unlock(1)

	_, _, err = svc.Stats(ctx, 1)
	assert.NoError(t, err)
}

func TestPlay_SaturatesNearOverflow(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewMemoryStore(), nil, false)

	huge := game.Play{Correct: 1, Total: 1, Points: game.MaxPoints, Elapsed: time.Second}
	for i := 0; i < 3; i++ {
		_, err := svc.Play(ctx, 9, "mental-math", huge, "")
		require.NoError(t, err)
	}
	p, _, err := svc.Stats(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, 3*game.MaxPoints, p.TotalScore)

	_, err = svc.Play(ctx, 9, "mental-math", game.Play{Correct: 1, Total: 1, Points: math.MaxInt64}, "")
	assert.ErrorIs(t, err, game.ErrOutOfRange)
}

// slowStore blocks reads of one key until released.
type slowStore struct {
	storage.Store
	key     string
	entered chan struct{}
	release chan struct{}
}

func (s *slowStore) Get(ctx context.Context, key string) ([]byte, error) {
	if key == s.key {
		close(s.entered)
		<-s.release
	}
	return s.Store.Get(ctx, key)
}

func TestSessionLoadDoesNotBlockOtherPlayers(t *testing.T) {
	ctx := context.Background()
	store := &slowStore{
		Store:   storage.NewMemoryStore(),
		key:     ProgressKey(1),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc := newTestService(t, store, nil, true)

	slow := make(chan error, 1)
	go func() {
		_, _, err := svc.Stats(ctx, 1)
		slow <- err
	}()
	<-store.entered

	fast := make(chan error, 1)
	go func() {
		_, _, err := svc.Stats(ctx, 2)
		fast <- err
	}()
	select {
	case err := <-fast:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("player 2 waited on player 1's store read")
	}

	close(store.release)
	assert.NoError(t, <-slow)
}
