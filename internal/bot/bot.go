// Package bot wires the arcade handlers into a Telegram bot.
package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"brain-arcade/internal/config"
	"brain-arcade/internal/game"
	"brain-arcade/internal/handler"
	"brain-arcade/internal/service"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot     *tele.Bot
	cfg     *config.Config
	members *memberSet

	progressHandler *handler.ProgressHandler
	gameHandler     *handler.GameHandler
	shopHandler     *handler.ShopHandler
	powerUpHandler  *handler.PowerUpHandler
	reviewHandler   *handler.ReviewHandler
	adminHandler    *handler.AdminHandler
}

// Dependencies holds all the dependencies needed by the bot handlers.
type Dependencies struct {
	Config *config.Config
	Arcade *service.ArcadeService
	Games  *game.Registry
}

// New creates a new Bot instance with the given dependencies.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	teleBot, err := tele.NewBot(tele.Settings{
		Token:  deps.Config.Bot.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			log.Error().Err(err).Msg("Telegram handler error")
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		bot:             teleBot,
		cfg:             deps.Config,
		members:         newMemberSet(),
		progressHandler: handler.NewProgressHandler(deps.Arcade),
		gameHandler:     handler.NewGameHandler(deps.Arcade, deps.Games),
		shopHandler:     handler.NewShopHandler(deps.Arcade),
		powerUpHandler:  handler.NewPowerUpHandler(deps.Arcade),
		reviewHandler:   handler.NewReviewHandler(deps.Arcade, deps.Config.IsAdmin),
		adminHandler:    handler.NewAdminHandler(deps.Arcade),
	}

	b.registerMiddleware()
	b.registerHandlers()
	return b, nil
}

func (b *Bot) registerMiddleware() {
	b.bot.Use(RecoveryMiddleware())
	b.bot.Use(WhitelistMiddleware(b.cfg, b.members))
	b.bot.Use(LoggingMiddleware())
}

func (b *Bot) registerHandlers() {
	b.bot.Handle("/start", b.progressHandler.HandleStart)
	b.bot.Handle("/stats", b.progressHandler.HandleStats)
	b.bot.Handle("/achievements", b.progressHandler.HandleAchievements)
	b.bot.Handle("/reset", b.progressHandler.HandleReset)

	b.bot.Handle("/games", b.gameHandler.HandleGames)
	b.bot.Handle("/play", b.gameHandler.HandlePlay)

	b.bot.Handle("/shop", b.shopHandler.HandleShop)
	b.bot.Handle("/buy", b.shopHandler.HandleBuy)
	b.bot.Handle("/theme", b.shopHandler.HandleTheme)

	b.bot.Handle("/powerups", b.powerUpHandler.HandlePowerUps)
	b.bot.Handle("/use", b.powerUpHandler.HandleUse)

	b.bot.Handle("/review", b.reviewHandler.HandleReview)
	b.bot.Handle("/reviews", b.reviewHandler.HandleReviews)

	adminGroup := b.bot.Group()
	adminGroup.Use(AdminMiddleware(b.cfg))
	adminGroup.Handle("/approve", b.adminHandler.HandleApprove)
	adminGroup.Handle("/hide", b.adminHandler.HandleHide)

	b.bot.Handle(tele.OnCallback, b.handleCallback)
}

// handleCallback routes inline button presses.
func (b *Bot) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		return nil
	}

	// telebot prefixes inline data with \f
	data := strings.TrimPrefix(callback.Data, "\f")
	if strings.HasPrefix(data, "shop_") {
		return b.shopHandler.HandleShopCallback(c)
	}

	log.Debug().Str("data", data).Msg("Unrouted callback")
	return c.Respond()
}

// Start starts polling. It blocks until Stop is called.
func (b *Bot) Start() {
	log.Info().Str("username", b.bot.Me.Username).Msg("Starting bot...")
	b.bot.Start()
}

// Stop stops polling.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
}
