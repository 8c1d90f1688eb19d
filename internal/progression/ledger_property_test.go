package progression

import (
	"context"
	"math"
	"testing"
	"time"

	"pgregory.net/rapid"

	"brain-arcade/internal/model"
	"brain-arcade/internal/storage"
)

var gameIDs = []string{"memory-match", "mental-math", "word-scramble", "sliding-puzzle", "reaction-time"}

func drawResult(t *rapid.T) model.GameResult {
	return model.GameResult{
		GameID:    rapid.SampledFrom(gameIDs).Draw(t, "gameID"),
		Score:     rapid.Int64Range(-100, 5000).Draw(t, "score"),
		Accuracy:  rapid.IntRange(-20, 120).Draw(t, "accuracy"),
		TimeSpent: rapid.Int64Range(-5, 600).Draw(t, "timeSpent"),
		XPEarned:  rapid.Int64Range(-50, 500).Draw(t, "xpEarned"),
	}
}

// TestMonotonicityAndLevelProperty checks that totals never decrease and the
// stored level always matches its derivation from total XP.
func TestMonotonicityAndLevelProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		clock := &fakeClock{t: time.Date(2026, time.January, 1, 9, 0, 0, 0, time.UTC)}
		l := New(ctx, storage.NewMemoryStore(), WithClock(clock.Now), WithLocation(time.UTC))

		prev := l.Snapshot()
		n := rapid.IntRange(1, 40).Draw(t, "n")
		for i := 0; i < n; i++ {
			clock.advanceDays(rapid.IntRange(0, 3).Draw(t, "days"))
			snap := l.RecordResult(ctx, drawResult(t))

			if snap.TotalScore < prev.TotalScore {
				t.Fatalf("totalScore decreased: %d -> %d", prev.TotalScore, snap.TotalScore)
			}
			if snap.TotalXP < prev.TotalXP {
				t.Fatalf("totalXP decreased: %d -> %d", prev.TotalXP, snap.TotalXP)
			}
			if snap.Level != int(snap.TotalXP/100)+1 {
				t.Fatalf("level %d does not match totalXP %d", snap.Level, snap.TotalXP)
			}
			if snap.Streak < 1 {
				t.Fatalf("streak must be at least 1 after a play, got %d", snap.Streak)
			}
			prev = snap
		}
	})
}

// TestMonotonicityNearOverflowProperty feeds results close to the int64
// limit and checks the totals saturate instead of wrapping.
func TestMonotonicityNearOverflowProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		l := New(ctx, storage.NewMemoryStore(), WithLocation(time.UTC))

		prev := l.Snapshot()
		n := rapid.IntRange(1, 6).Draw(t, "n")
		for i := 0; i < n; i++ {
			snap := l.RecordResult(ctx, model.GameResult{
				GameID:   rapid.SampledFrom(gameIDs).Draw(t, "gameID"),
				Score:    rapid.Int64Range(math.MaxInt64-1000, math.MaxInt64).Draw(t, "score"),
				XPEarned: rapid.Int64Range(math.MaxInt64/2, math.MaxInt64).Draw(t, "xp"),
			})
			if snap.TotalScore < prev.TotalScore || snap.TotalXP < prev.TotalXP {
				t.Fatalf("totals wrapped: %d/%d -> %d/%d", prev.TotalScore, prev.TotalXP, snap.TotalScore, snap.TotalXP)
			}
			if snap.Level != LevelFor(snap.TotalXP) || snap.Level < 1 {
				t.Fatalf("level %d does not match totalXP %d", snap.Level, snap.TotalXP)
			}
			prev = snap
		}
		if n > 1 && prev.TotalScore != math.MaxInt64 {
			t.Fatalf("expected saturated score, got %d", prev.TotalScore)
		}
	})
}

// TestAchievementsUniqueProperty checks that no achievement is ever listed twice.
func TestAchievementsUniqueProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		l := New(ctx, storage.NewMemoryStore())

		n := rapid.IntRange(1, 30).Draw(t, "n")
		for i := 0; i < n; i++ {
			l.RecordResult(ctx, drawResult(t))
		}

		seen := make(map[string]bool)
		for _, id := range l.Snapshot().Achievements {
			if seen[id] {
				t.Fatalf("achievement %q unlocked twice", id)
			}
			seen[id] = true
		}
	})
}

// TestPurchaseIdempotenceProperty checks that repeat purchases never charge
// twice and never duplicate the item.
func TestPurchaseIdempotenceProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		l := New(ctx, storage.NewMemoryStore())

		score := rapid.Int64Range(0, 5000).Draw(t, "score")
		cost := rapid.Int64Range(0, 5000).Draw(t, "cost")
		repeats := rapid.IntRange(1, 5).Draw(t, "repeats")
		l.RecordResult(ctx, model.GameResult{GameID: "g", Score: score})

		first := l.PurchaseItem(ctx, "theme-x", cost)
		if first != (score >= cost) {
			t.Fatalf("purchase with score=%d cost=%d returned %v", score, cost, first)
		}
		for i := 0; i < repeats; i++ {
			if got := l.PurchaseItem(ctx, "theme-x", cost); got != first {
				t.Fatalf("repeat purchase returned %v, first returned %v", got, first)
			}
		}

		snap := l.Snapshot()
		wantSpent := int64(0)
		wantItems := 0
		if first {
			wantSpent = cost
			wantItems = 1
		}
		if snap.SpentCurrency != wantSpent {
			t.Fatalf("spent %d, want %d", snap.SpentCurrency, wantSpent)
		}
		if len(snap.PurchasedItems) != wantItems {
			t.Fatalf("purchased items %v, want %d entries", snap.PurchasedItems, wantItems)
		}
	})
}

// TestStreakRuleProperty checks nextStreak against the day-gap rule.
func TestStreakRuleProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		streak := rapid.IntRange(1, 100).Draw(t, "streak")
		gap := rapid.IntRange(0, 10).Draw(t, "gap")
		last := time.Date(2026, time.February, 27, 0, 0, 0, 0, time.UTC)
		today := last.AddDate(0, 0, gap)

		got := nextStreak(streak, last.Format(dayLayout), today.Format(dayLayout))

		var want int
		switch gap {
		case 0:
			want = streak
		case 1:
			want = streak + 1
		default:
			want = 1
		}
		if got != want {
			t.Fatalf("streak=%d gap=%d: got %d want %d", streak, gap, got, want)
		}
	})
}
