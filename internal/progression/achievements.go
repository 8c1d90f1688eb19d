package progression

import "brain-arcade/internal/model"

// Kind selects the quantity an achievement threshold is compared against.
type Kind int

const (
	KindGamesPlayed Kind = iota + 1 // distinct minigames completed
	KindTotalScore
	KindTotalXP
	KindLevel
	KindStreak
	KindPerfectAccuracy // last result reached 100% accuracy
	KindSpeedRun        // last result scored within Threshold seconds
)

// Achievement is one entry in the closed achievement catalog.
type Achievement struct {
	ID          string
	Name        string
	Emoji       string
	Description string
	Kind        Kind
	Threshold   int64
}

// facts is what achievement predicates are evaluated against: the updated
// progress plus the result that produced it.
type facts struct {
	progress model.UserProgress
	last     model.GameResult
}

// met reports whether the achievement's predicate holds for f.
func (a Achievement) met(f facts) bool {
	switch a.Kind {
	case KindGamesPlayed:
		return int64(len(f.progress.GamesPlayed)) >= a.Threshold
	case KindTotalScore:
		return f.progress.TotalScore >= a.Threshold
	case KindTotalXP:
		return f.progress.TotalXP >= a.Threshold
	case KindLevel:
		return int64(f.progress.Level) >= a.Threshold
	case KindStreak:
		return int64(f.progress.Streak) >= a.Threshold
	case KindPerfectAccuracy:
		return f.last.Accuracy >= 100 && f.last.Score > 0
	case KindSpeedRun:
		return f.last.Score > 0 && f.last.TimeSpent > 0 && f.last.TimeSpent <= a.Threshold
	default:
		return false
	}
}

// DefaultAchievements is the catalog in evaluation order.
var DefaultAchievements = []Achievement{
	{ID: "first-steps", Name: "First Steps", Emoji: "👣", Description: "Complete any minigame", Kind: KindGamesPlayed, Threshold: 1},
	{ID: "explorer", Name: "Explorer", Emoji: "🧭", Description: "Play 5 different minigames", Kind: KindGamesPlayed, Threshold: 5},
	{ID: "well-rounded", Name: "Well Rounded", Emoji: "🎓", Description: "Play 10 different minigames", Kind: KindGamesPlayed, Threshold: 10},
	{ID: "score-1k", Name: "Getting Started", Emoji: "⭐", Description: "Reach 1,000 total score", Kind: KindTotalScore, Threshold: 1000},
	{ID: "score-10k", Name: "High Scorer", Emoji: "🌟", Description: "Reach 10,000 total score", Kind: KindTotalScore, Threshold: 10000},
	{ID: "xp-500", Name: "Quick Learner", Emoji: "📘", Description: "Earn 500 XP", Kind: KindTotalXP, Threshold: 500},
	{ID: "level-5", Name: "Rising Star", Emoji: "🚀", Description: "Reach level 5", Kind: KindLevel, Threshold: 5},
	{ID: "level-10", Name: "Brainiac", Emoji: "🧠", Description: "Reach level 10", Kind: KindLevel, Threshold: 10},
	{ID: "streak-3", Name: "On a Roll", Emoji: "🔥", Description: "Play 3 days in a row", Kind: KindStreak, Threshold: 3},
	{ID: "streak-7", Name: "Dedicated", Emoji: "📅", Description: "Play 7 days in a row", Kind: KindStreak, Threshold: 7},
	{ID: "perfectionist", Name: "Perfectionist", Emoji: "💯", Description: "Finish a game with 100% accuracy", Kind: KindPerfectAccuracy},
	{ID: "speed-demon", Name: "Speed Demon", Emoji: "⚡", Description: "Finish a game in 30 seconds or less", Kind: KindSpeedRun, Threshold: 30},
}

// FindAchievement looks up an achievement by id in catalog.
func FindAchievement(catalog []Achievement, id string) (Achievement, bool) {
	for _, a := range catalog {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

// unlockNew appends every locked achievement whose predicate holds, in
// catalog order, and returns the newly unlocked entries.
func unlockNew(catalog []Achievement, p *model.UserProgress, last model.GameResult) []Achievement {
	var unlocked []Achievement
	for _, a := range catalog {
		if p.HasAchievement(a.ID) {
			continue
		}
		if a.met(facts{progress: *p, last: last}) {
			p.Achievements = append(p.Achievements, a.ID)
			unlocked = append(unlocked, a)
		}
	}
	return unlocked
}
