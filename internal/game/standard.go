package game

import "brain-arcade/internal/model"

// Accuracy bonus thresholds, in percent.
const (
	bonusHighAccuracy = 90
	bonusMidAccuracy  = 70
	bonusHighXP       = 10
	bonusMidXP        = 5
)

// Standard is a minigame scored by points with an accuracy bonus:
// xp = points*XPPercent/100 plus 10 at >= 90% accuracy or 5 at >= 70%.
type Standard struct {
	GameID    string
	Title     string
	Kind      Category
	Summary   string
	XPPercent int64
}

func (s *Standard) ID() string          { return s.GameID }
func (s *Standard) Name() string        { return s.Title }
func (s *Standard) Category() Category  { return s.Kind }
func (s *Standard) Description() string { return s.Summary }

// Validate checks the report is internally consistent.
func (s *Standard) Validate(p Play) error {
	if p.Correct < 0 || p.Total < 0 || p.Points < 0 || p.Elapsed < 0 {
		return ErrNegativeValue
	}
	if p.Points > MaxPoints || p.Elapsed > MaxElapsed {
		return ErrOutOfRange
	}
	if p.Total == 0 {
		return ErrNoRounds
	}
	if p.Correct > p.Total {
		return ErrTooManyCorrect
	}
	return nil
}

// Result scores p.
func (s *Standard) Result(p Play) model.GameResult {
	accuracy := 0
	if p.Total > 0 {
		accuracy = p.Correct * 100 / p.Total
	}

	rate := s.XPPercent
	if rate <= 0 {
		rate = 10
	}
	xp := model.MulCapped(max(p.Points, 0), rate) / 100
	switch {
	case accuracy >= bonusHighAccuracy:
		xp = model.AddCapped(xp, bonusHighXP)
	case accuracy >= bonusMidAccuracy:
		xp = model.AddCapped(xp, bonusMidXP)
	}

	return model.GameResult{
		GameID:    s.GameID,
		Score:     p.Points,
		Accuracy:  accuracy,
		TimeSpent: int64(p.Elapsed.Seconds()),
		XPEarned:  xp,
	}.Clamp()
}

// DefaultCatalog returns a registry holding the built-in minigames.
func DefaultCatalog() *Registry {
	r := NewRegistry()
	for _, g := range []*Standard{
		{GameID: "memory-match", Title: "Memory Match", Kind: CategoryMemory, Summary: "Flip cards and find the pairs", XPPercent: 10},
		{GameID: "mental-math", Title: "Mental Math", Kind: CategoryMath, Summary: "Solve arithmetic against the clock", XPPercent: 12},
		{GameID: "word-scramble", Title: "Word Scramble", Kind: CategoryWord, Summary: "Unscramble the letters", XPPercent: 10},
		{GameID: "sliding-puzzle", Title: "Sliding Puzzle", Kind: CategoryPuzzle, Summary: "Slide the tiles into order", XPPercent: 15},
		{GameID: "reaction-time", Title: "Reaction Time", Kind: CategoryReaction, Summary: "Tap as soon as the screen turns green", XPPercent: 8},
	} {
		// IDs are unique literals, Register cannot fail here.
		_ = r.Register(g)
	}
	return r
}
