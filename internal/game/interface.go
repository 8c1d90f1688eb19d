// Package game defines the minigame catalog. Minigames run on the client;
// this package turns their raw play reports into ledger results.
package game

import (
	"errors"
	"time"

	"brain-arcade/internal/model"
)

// Category groups minigames by the skill they train.
type Category string

const (
	CategoryMemory   Category = "memory"
	CategoryMath     Category = "math"
	CategoryWord     Category = "word"
	CategoryPuzzle   Category = "puzzle"
	CategoryReaction Category = "reaction"
)

// Play-report validation errors.
var (
	ErrNoRounds       = errors.New("a play needs at least one round")
	ErrTooManyCorrect = errors.New("correct answers exceed total rounds")
	ErrNegativeValue  = errors.New("play values must not be negative")
	ErrOutOfRange     = errors.New("play values are out of range")
)

// Upper bounds of a plausible play report.
const (
	MaxPoints  int64 = 1_000_000_000
	MaxElapsed       = 24 * time.Hour
)

// Play is the raw report a minigame client sends when a session ends.
type Play struct {
	Correct int
	Total   int
	Points  int64
	Elapsed time.Duration
}

// Minigame is a catalog entry able to score a play.
type Minigame interface {
	// ID is the stable identifier recorded in gamesPlayed.
	ID() string
	Name() string
	Category() Category
	Description() string

	// Validate rejects reports that cannot come from a real session.
	Validate(p Play) error

	// Result converts a valid play into the record consumed by the ledger.
	Result(p Play) model.GameResult
}
