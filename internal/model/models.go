// Package model defines the data models shared by the arcade packages.
package model

import (
	"math"
	"slices"
)

// DefaultTheme is the cosmetic every player owns without purchasing it.
const DefaultTheme = "classic"

// GameResult is the record a minigame emits once per completed session.
// It is treated as immutable once produced.
type GameResult struct {
	GameID    string `json:"gameId"`
	Score     int64  `json:"score"`
	Accuracy  int    `json:"accuracy"`  // percentage, 0-100
	TimeSpent int64  `json:"timeSpent"` // seconds
	XPEarned  int64  `json:"xpEarned"`
}

// Clamp returns a copy of r with negative numbers raised to zero and
// accuracy bounded to [0,100].
func (r GameResult) Clamp() GameResult {
	if r.Score < 0 {
		r.Score = 0
	}
	if r.XPEarned < 0 {
		r.XPEarned = 0
	}
	if r.TimeSpent < 0 {
		r.TimeSpent = 0
	}
	if r.Accuracy < 0 {
		r.Accuracy = 0
	}
	if r.Accuracy > 100 {
		r.Accuracy = 100
	}
	return r
}

// AddCapped returns a+b for non-negative operands, saturating at
// math.MaxInt64 instead of wrapping.
func AddCapped(a, b int64) int64 {
	if b > math.MaxInt64-a {
		return math.MaxInt64
	}
	return a + b
}

// MulCapped returns a*b for non-negative operands, saturating at
// math.MaxInt64 instead of wrapping.
func MulCapped(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	if a > math.MaxInt64/b {
		return math.MaxInt64
	}
	return a * b
}

// UserProgress is the persisted snapshot of a player's cumulative progress.
// Sets are stored as slices; membership is what matters, not order.
type UserProgress struct {
	TotalScore     int64    `json:"totalScore"`
	TotalXP        int64    `json:"totalXP"`
	Level          int      `json:"level"`
	GamesPlayed    []string `json:"gamesPlayed"`
	Achievements   []string `json:"achievements"`
	Streak         int      `json:"streak"`
	LastPlayedDate string   `json:"lastPlayedDate,omitempty"` // YYYY-MM-DD
	PurchasedItems []string `json:"purchasedItems"`
	ActiveTheme    string   `json:"activeTheme"`
	SpentCurrency  int64    `json:"spentCurrency"`
}

// NewUserProgress returns the progress of a player who has never played.
func NewUserProgress() UserProgress {
	return UserProgress{
		Level:          1,
		GamesPlayed:    []string{},
		Achievements:   []string{},
		PurchasedItems: []string{},
		ActiveTheme:    DefaultTheme,
	}
}

// Clone returns a deep copy that shares no slices with p.
func (p UserProgress) Clone() UserProgress {
	p.GamesPlayed = cloneSet(p.GamesPlayed)
	p.Achievements = cloneSet(p.Achievements)
	p.PurchasedItems = cloneSet(p.PurchasedItems)
	return p
}

// HasPlayed reports whether gameID was completed at least once.
func (p UserProgress) HasPlayed(gameID string) bool {
	return slices.Contains(p.GamesPlayed, gameID)
}

// HasAchievement reports whether the achievement is unlocked.
func (p UserProgress) HasAchievement(id string) bool {
	return slices.Contains(p.Achievements, id)
}

// Owns reports whether itemID was purchased.
func (p UserProgress) Owns(itemID string) bool {
	return slices.Contains(p.PurchasedItems, itemID)
}

// AvailableCurrency is the score not yet spent in the shop.
func (p UserProgress) AvailableCurrency() int64 {
	c := p.TotalScore - p.SpentCurrency
	if c < 0 {
		return 0
	}
	return c
}

func cloneSet(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}

// Review is a player-submitted rating kept in the local store.
type Review struct {
	ID        string `json:"id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	Name      string `json:"name"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
	Hidden    bool   `json:"hidden"`
}
