package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"brain-arcade/internal/service"
)

// PowerUpHandler handles the power-up commands.
type PowerUpHandler struct {
	arcade *service.ArcadeService
}

// NewPowerUpHandler creates a new PowerUpHandler.
func NewPowerUpHandler(arcade *service.ArcadeService) *PowerUpHandler {
	return &PowerUpHandler{arcade: arcade}
}

// HandlePowerUps handles the /powerups command.
func (h *PowerUpHandler) HandlePowerUps(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	list, armed, err := h.arcade.PowerUps(context.Background(), sender.ID)
	if err != nil {
		return c.Reply(msgFailed)
	}
	return c.Reply(FormatPowerUps(list, armed))
}

// HandleUse handles the /use command.
// Format: /use <id>
func (h *PowerUpHandler) HandleUse(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	args := c.Args()
	if len(args) != 1 {
		return c.Reply("❌ Usage: /use <id>, see /powerups")
	}

	p, err := h.arcade.UsePowerUp(context.Background(), sender.ID, args[0])
	switch {
	case errors.Is(err, service.ErrPowerUpUnavailable):
		return c.Reply("❌ That power-up is not available, see /powerups")
	case errors.Is(err, service.ErrBoostAlreadyArmed):
		return c.Reply("❌ A power-up is already armed for your next game")
	case err != nil:
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("Failed to use power-up")
		return c.Reply(msgFailed)
	}
	return c.Reply(fmt.Sprintf("⚡ %s armed for your next game (%d left)", p.Name, p.UsesLeft))
}
