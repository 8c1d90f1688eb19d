package handler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"brain-arcade/internal/game"
	"brain-arcade/internal/service"
)

const playUsage = "❌ Usage: /play <game> <correct> <total> <points> <seconds> [powerUpId]"

// GameHandler handles the minigame commands.
type GameHandler struct {
	arcade *service.ArcadeService
	games  *game.Registry
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(arcade *service.ArcadeService, games *game.Registry) *GameHandler {
	return &GameHandler{arcade: arcade, games: games}
}

// HandleGames handles the /games command.
func (h *GameHandler) HandleGames(c tele.Context) error {
	return c.Reply(FormatGames(h.games.List()))
}

// PlayArgs is a parsed /play command.
type PlayArgs struct {
	GameID  string
	Play    game.Play
	BoostID string
}

// ParsePlayArgs parses <game> <correct> <total> <points> <seconds> [boostId].
func ParsePlayArgs(args []string) (PlayArgs, error) {
	if len(args) != 5 && len(args) != 6 {
		return PlayArgs{}, errors.New(playUsage)
	}

	var nums [4]int64
	for i := range nums {
		n, err := strconv.ParseInt(args[i+1], 10, 64)
		if err != nil {
			return PlayArgs{}, fmt.Errorf("❌ %q is not a number", args[i+1])
		}
		nums[i] = n
	}
	if nums[0] > math.MaxInt32 || nums[1] > math.MaxInt32 || nums[2] > game.MaxPoints {
		return PlayArgs{}, errors.New("❌ Numbers are too large")
	}
	if nums[3] < 0 || nums[3] > int64(game.MaxElapsed/time.Second) {
		return PlayArgs{}, fmt.Errorf("❌ Seconds must be between 0 and %d", int64(game.MaxElapsed/time.Second))
	}

	pa := PlayArgs{
		GameID: args[0],
		Play: game.Play{
			Correct: int(nums[0]),
			Total:   int(nums[1]),
			Points:  nums[2],
			Elapsed: time.Duration(nums[3]) * time.Second,
		},
	}
	if len(args) == 6 {
		pa.BoostID = args[5]
	}
	return pa, nil
}

// HandlePlay handles the /play command.
// Format: /play <game> <correct> <total> <points> <seconds> [powerUpId]
func (h *GameHandler) HandlePlay(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	pa, err := ParsePlayArgs(c.Args())
	if err != nil {
		return c.Reply(err.Error())
	}

	out, err := h.arcade.Play(ctx, sender.ID, pa.GameID, pa.Play, pa.BoostID)
	switch {
	case errors.Is(err, service.ErrUnknownGame):
		return c.Reply(fmt.Sprintf("❌ Unknown game %q, see /games", pa.GameID))
	case errors.Is(err, service.ErrInvalidPlay):
		return c.Reply("❌ " + err.Error())
	case errors.Is(err, service.ErrPowerUpUnavailable):
		return c.Reply("❌ That power-up is not available, see /powerups")
	case errors.Is(err, service.ErrBoostAlreadyArmed):
		return c.Reply("❌ You already have a power-up armed, play without one")
	case err != nil:
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("Failed to record game")
		return c.Reply(msgFailed)
	}

	g, _ := h.games.Get(pa.GameID)
	return c.Reply(FormatPlayOutcome(g, out))
}
