package handler

import (
	"fmt"
	"strings"

	"brain-arcade/internal/game"
	"brain-arcade/internal/model"
	"brain-arcade/internal/powerup"
	"brain-arcade/internal/progression"
	"brain-arcade/internal/service"
)

const divider = "━━━━━━━━━━━━━━━\n"

// Reply texts shared by several handlers.
const (
	msgFailed   = "❌ Something went wrong, please try again later"
)

// progressBar renders done/total as ten blocks.
func progressBar(done, total int64) string {
	const width = 10
	if total <= 0 {
		return strings.Repeat("░", width)
	}
	filled := int(done * width / total)
	filled = min(max(filled, 0), width)
	return strings.Repeat("▓", filled) + strings.Repeat("░", width-filled)
}

// FormatStats renders the /stats reply.
func FormatStats(p model.UserProgress, s progression.Stats) string {
	var b strings.Builder
	b.WriteString("📊 Your Progress\n")
	b.WriteString(divider)
	fmt.Fprintf(&b, "🏅 Level %d (%s)\n", s.Level, s.Rank)
	fmt.Fprintf(&b, "%s %d/%d XP\n",
		progressBar(s.XPIntoLevel, progression.XPPerLevel), s.XPIntoLevel, int64(progression.XPPerLevel))
	fmt.Fprintf(&b, "⭐ Total score: %d\n", p.TotalScore)
	fmt.Fprintf(&b, "✨ Total XP: %d (%d to next level)\n", p.TotalXP, s.XPToNextLevel)
	fmt.Fprintf(&b, "💰 Currency: %d\n", s.AvailableCurrency)
	fmt.Fprintf(&b, "🔥 Streak: %d day(s)\n", s.Streak)
	fmt.Fprintf(&b, "🎮 Games tried: %d\n", s.GamesPlayed)
	fmt.Fprintf(&b, "🏆 Achievements: %d/%d\n", s.Achievements, len(progression.DefaultAchievements))
	if next, need, ok := progression.NextRank(p.TotalScore); ok {
		fmt.Fprintf(&b, "➡️ %s at %d score", next, need)
	} else {
		b.WriteString("👑 Top rank reached")
	}
	return b.String()
}

// FormatGames renders the minigame catalog.
func FormatGames(games []game.Minigame) string {
	var b strings.Builder
	b.WriteString("🎮 Minigames\n")
	b.WriteString(divider)
	for _, g := range games {
		fmt.Fprintf(&b, "• %s (%s) [%s]\n  %s\n", g.Name(), g.ID(), g.Category(), g.Description())
	}
	b.WriteString(divider)
	b.WriteString("Report a finished game with\n/play <game> <correct> <total> <points> <seconds> [powerUpId]")
	return b.String()
}

// FormatPlayOutcome renders the /play reply.
func FormatPlayOutcome(g game.Minigame, out *service.PlayOutcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎮 %s finished\n", g.Name())
	b.WriteString(divider)
	fmt.Fprintf(&b, "⭐ Score: +%d\n", out.Result.Score)
	fmt.Fprintf(&b, "🎯 Accuracy: %d%%\n", out.Result.Accuracy)
	fmt.Fprintf(&b, "✨ XP: +%d\n", out.Result.XPEarned)
	if out.Boost != nil {
		fmt.Fprintf(&b, "⚡ Power-up used: %s\n", out.Boost.Name)
	}
	if out.LevelUp {
		fmt.Fprintf(&b, "🆙 Level up! You are now level %d\n", out.Progress.Level)
	}
	for _, a := range out.Unlocked {
		fmt.Fprintf(&b, "🏆 Unlocked: %s %s\n", a.Emoji, a.Name)
	}
	for _, t := range out.Rewards {
		if info, ok := powerup.Lookup(t); ok {
			fmt.Fprintf(&b, "🎁 Reward: %s %s\n", info.Emoji, info.Name)
		}
	}
	b.WriteString(divider)
	fmt.Fprintf(&b, "🔥 Streak: %d day(s)", out.Progress.Streak)
	return b.String()
}

// FormatAchievements renders every catalog entry with its lock state.
func FormatAchievements(unlocked []progression.Achievement) string {
	have := make(map[string]bool, len(unlocked))
	for _, a := range unlocked {
		have[a.ID] = true
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🏆 Achievements (%d/%d)\n", len(unlocked), len(progression.DefaultAchievements))
	b.WriteString(divider)
	for _, a := range progression.DefaultAchievements {
		if have[a.ID] {
			fmt.Fprintf(&b, "%s %s: %s\n", a.Emoji, a.Name, a.Description)
		} else {
			fmt.Fprintf(&b, "🔒 %s: %s\n", a.Name, a.Description)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatPowerUps renders the power-up registry.
func FormatPowerUps(list []powerup.PowerUp, armed *powerup.PowerUp) string {
	var b strings.Builder
	b.WriteString("⚡ Power-ups\n")
	b.WriteString(divider)
	if len(list) == 0 && armed == nil {
		b.WriteString("You have no power-ups yet.\nLevel up or unlock achievements to earn some!")
		return b.String()
	}
	for _, p := range list {
		info, _ := powerup.Lookup(p.Type)
		fmt.Fprintf(&b, "%s %s x%d\n  id: %s\n", info.Emoji, p.Name, p.UsesLeft, p.ID)
	}
	if armed != nil {
		fmt.Fprintf(&b, "🟢 Armed for next game: %s\n", armed.Name)
	}
	b.WriteString(divider)
	b.WriteString("Use one with /use <id>")
	return b.String()
}

// FormatReviews renders a review list for moderators.
func FormatReviews(reviews []model.Review) string {
	if len(reviews) == 0 {
		return "📝 No reviews yet"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📝 Reviews (%d)\n", len(reviews))
	b.WriteString(divider)
	for _, r := range reviews {
		state := "👁"
		if r.Hidden {
			state = "🙈"
		}
		fmt.Fprintf(&b, "%s %s %s: %s\n  id: %s\n", state, strings.Repeat("★", r.Rating), r.Name, r.Comment, r.ID)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatPublicReviews renders approved reviews for players.
func FormatPublicReviews(reviews []model.Review) string {
	if len(reviews) == 0 {
		return "📝 No reviews yet. Leave one with /review <1-5> <text>"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📝 What players say (%d)\n", len(reviews))
	b.WriteString(divider)
	for _, r := range reviews {
		fmt.Fprintf(&b, "%s %s: %s\n", strings.Repeat("★", r.Rating), r.Name, r.Comment)
	}
	return strings.TrimRight(b.String(), "\n")
}
