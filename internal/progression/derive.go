package progression

import "brain-arcade/internal/model"

// XPPerLevel is the XP span of every level.
const XPPerLevel = 100

// LevelFor derives the level from total XP. It is the only level formula in
// the codebase; stored levels are always recomputed through it.
func LevelFor(totalXP int64) int {
	if totalXP < 0 {
		totalXP = 0
	}
	return int(totalXP/XPPerLevel) + 1
}

// XPIntoLevel is the XP earned inside the current level.
func XPIntoLevel(totalXP int64) int64 {
	if totalXP < 0 {
		return 0
	}
	return totalXP % XPPerLevel
}

// XPToNextLevel is the XP still missing to reach the next level.
func XPToNextLevel(totalXP int64) int64 {
	return XPPerLevel - XPIntoLevel(totalXP)
}

// Rank is a cosmetic tier label derived from total score.
type Rank string

const (
	RankBronze    Rank = "Bronze"
	RankSilver    Rank = "Silver"
	RankGold      Rank = "Gold"
	RankPlatinum  Rank = "Platinum"
	RankDiamond   Rank = "Diamond"
	RankLegendary Rank = "Legendary"
)

// rankThresholds is ordered from the highest tier down.
var rankThresholds = []struct {
	rank     Rank
	minScore int64
}{
	{RankLegendary, 100000},
	{RankDiamond, 50000},
	{RankPlatinum, 15000},
	{RankGold, 5000},
	{RankSilver, 1000},
	{RankBronze, 0},
}

// RankFor derives the rank for a total score.
func RankFor(totalScore int64) Rank {
	for _, t := range rankThresholds {
		if totalScore >= t.minScore {
			return t.rank
		}
	}
	return RankBronze
}

// NextRank returns the first tier above totalScore and the score it needs.
// ok is false for the top tier.
func NextRank(totalScore int64) (next Rank, minScore int64, ok bool) {
	for i := len(rankThresholds) - 1; i >= 0; i-- {
		if rankThresholds[i].minScore > totalScore {
			return rankThresholds[i].rank, rankThresholds[i].minScore, true
		}
	}
	return "", 0, false
}

// Stats are the display values derived from a snapshot.
type Stats struct {
	Level             int
	XPIntoLevel       int64
	XPToNextLevel     int64
	Rank              Rank
	AvailableCurrency int64
	GamesPlayed       int
	Achievements      int
	Streak            int
}

// StatsFor derives display stats from p.
func StatsFor(p model.UserProgress) Stats {
	return Stats{
		Level:             LevelFor(p.TotalXP),
		XPIntoLevel:       XPIntoLevel(p.TotalXP),
		XPToNextLevel:     XPToNextLevel(p.TotalXP),
		Rank:              RankFor(p.TotalScore),
		AvailableCurrency: p.AvailableCurrency(),
		GamesPlayed:       len(p.GamesPlayed),
		Achievements:      len(p.Achievements),
		Streak:            p.Streak,
	}
}
