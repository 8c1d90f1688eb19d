package handler

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"brain-arcade/internal/review"
	"brain-arcade/internal/service"
)

// AdminHandler handles review moderation.
type AdminHandler struct {
	arcade *service.ArcadeService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(arcade *service.ArcadeService) *AdminHandler {
	return &AdminHandler{arcade: arcade}
}

// HandleApprove handles the /approve command.
// Format: /approve <id>
func (h *AdminHandler) HandleApprove(c tele.Context) error {
	return h.setHidden(c, false)
}

// HandleHide handles the /hide command.
// Format: /hide <id>
func (h *AdminHandler) HandleHide(c tele.Context) error {
	return h.setHidden(c, true)
}

func (h *AdminHandler) setHidden(c tele.Context, hidden bool) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	args := c.Args()
	if len(args) != 1 {
		return c.Reply("❌ Usage: /approve <id> or /hide <id>")
	}

	err := h.arcade.ModerateReview(context.Background(), args[0], hidden)
	switch {
	case errors.Is(err, review.ErrNotFound):
		return c.Reply("❌ No review with that id")
	case err != nil:
		log.Error().Err(err).Msg("Failed to moderate review")
		return c.Reply(msgFailed)
	}

	log.Info().
		Int64("admin_id", sender.ID).
		Str("review_id", args[0]).
		Bool("hidden", hidden).
		Msg("Review moderated")
	if hidden {
		return c.Reply("🙈 Review hidden")
	}
	return c.Reply("👁 Review approved")
}
