package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"brain-arcade/internal/review"
	"brain-arcade/internal/service"
)

const reviewUsage = "❌ Usage: /review <1-5> <text>"

// ReviewHandler handles player reviews.
type ReviewHandler struct {
	arcade  *service.ArcadeService
	isAdmin func(userID int64) bool
}

// NewReviewHandler creates a new ReviewHandler. isAdmin decides who sees
// reviews still waiting for moderation.
func NewReviewHandler(arcade *service.ArcadeService, isAdmin func(userID int64) bool) *ReviewHandler {
	return &ReviewHandler{arcade: arcade, isAdmin: isAdmin}
}

// ParseReviewArgs parses <rating> <text...>.
func ParseReviewArgs(args []string) (int, string, error) {
	if len(args) < 2 {
		return 0, "", errors.New(reviewUsage)
	}
	rating, err := strconv.Atoi(args[0])
	if err != nil || rating < review.MinRating || rating > review.MaxRating {
		return 0, "", fmt.Errorf("❌ Rating must be between %d and %d", review.MinRating, review.MaxRating)
	}
	return rating, strings.Join(args[1:], " "), nil
}

// HandleReview handles the /review command.
// Format: /review <1-5> <text>
func (h *ReviewHandler) HandleReview(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	rating, text, err := ParseReviewArgs(c.Args())
	if err != nil {
		return c.Reply(err.Error())
	}

	name := sender.FirstName
	if name == "" {
		name = sender.Username
	}
	r, err := h.arcade.SubmitReview(context.Background(), name, rating, text)
	if err != nil {
		log.Error().Err(err).Int64("user_id", sender.ID).Str("review_id", r.ID).Msg("Review stored without forwarding")
		return nil
	}
	return c.Reply("🙏 Thanks for the review! It will appear once a moderator approves it.")
}

// HandleReviews handles the /reviews command. Admins see every review with
// its id; everyone else sees approved ones.
func (h *ReviewHandler) HandleReviews(c tele.Context) error {
	if sender := c.Sender(); sender != nil && h.isAdmin != nil && h.isAdmin(sender.ID) {
		return c.Reply(FormatReviews(h.arcade.Reviews(true)))
	}
	return c.Reply(FormatPublicReviews(h.arcade.Reviews(false)))
}
