// Package handler provides Telegram bot command handlers.
package handler

import (
	"context"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"brain-arcade/internal/service"
)

// ProgressHandler handles the progress commands.
type ProgressHandler struct {
	arcade *service.ArcadeService
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(arcade *service.ArcadeService) *ProgressHandler {
	return &ProgressHandler{arcade: arcade}
}

// HandleStart handles the /start command.
func (h *ProgressHandler) HandleStart(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	name := sender.FirstName
	if name == "" {
		name = sender.Username
	}
	msg := "🧠 Welcome to Brain Arcade, " + name + "!\n" + divider +
		"/games - list the minigames\n" +
		"/play - report a finished game\n" +
		"/stats - your level, XP and streak\n" +
		"/achievements - your trophies\n" +
		"/shop - buy themes with your score\n" +
		"/powerups - your boosts\n" +
		"/review - rate the arcade\n" +
		"/reviews - what other players say\n" +
		"/reset - start over"
	return c.Reply(msg)
}

// HandleStats handles the /stats command.
func (h *ProgressHandler) HandleStats(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	p, stats, err := h.arcade.Stats(ctx, sender.ID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("Failed to load stats")
		return c.Reply(msgFailed)
	}
	return c.Reply(FormatStats(p, stats))
}

// HandleAchievements handles the /achievements command.
func (h *ProgressHandler) HandleAchievements(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	unlocked, err := h.arcade.Achievements(ctx, sender.ID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("Failed to load achievements")
		return c.Reply(msgFailed)
	}
	return c.Reply(FormatAchievements(unlocked))
}

// HandleReset handles the /reset command.
// Format: /reset confirm
func (h *ProgressHandler) HandleReset(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	args := c.Args()
	if len(args) != 1 || args[0] != "confirm" {
		return c.Reply("⚠️ This wipes all your progress.\nSend /reset confirm to continue")
	}

	if err := h.arcade.Reset(ctx, sender.ID); err != nil {
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("Failed to reset progress")
		return c.Reply(msgFailed)
	}
	log.Info().Int64("user_id", sender.ID).Msg("Player reset progress")
	return c.Reply("🧹 Progress reset. Good luck on your fresh start!")
}
