package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"brain-arcade/internal/service"
	"brain-arcade/internal/shop"
)

// ShopHandler handles the theme shop.
type ShopHandler struct {
	arcade *service.ArcadeService
}

// NewShopHandler creates a new ShopHandler.
func NewShopHandler(arcade *service.ArcadeService) *ShopHandler {
	return &ShopHandler{arcade: arcade}
}

// HandleShop handles the /shop command.
func (h *ShopHandler) HandleShop(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	p, _, err := h.arcade.Stats(ctx, sender.ID)
	if err != nil {
		return c.Reply(msgFailed)
	}
	return c.Send(shop.FormatShopMessage(p), shop.BuildShopPanel(p))
}

// HandleBuy handles the /buy command.
// Format: /buy <theme>
func (h *ShopHandler) HandleBuy(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	args := c.Args()
	if len(args) != 1 {
		return c.Reply("❌ Usage: /buy <theme>")
	}
	return c.Reply(h.buy(sender.ID, shop.ThemeID(strings.ToLower(args[0]))))
}

// HandleTheme handles the /theme command.
// Format: /theme <theme>
func (h *ShopHandler) HandleTheme(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	args := c.Args()
	if len(args) != 1 {
		return c.Reply("❌ Usage: /theme <theme>")
	}
	return c.Reply(h.apply(sender.ID, shop.ThemeID(strings.ToLower(args[0]))))
}

func (h *ShopHandler) buy(userID int64, id shop.ThemeID) string {
	p, err := h.arcade.Buy(context.Background(), userID, id)
	switch {
	case errors.Is(err, service.ErrUnknownTheme):
		return fmt.Sprintf("❌ There is no theme called %q", id)
	case errors.Is(err, service.ErrInsufficientFunds):
		return "❌ Not enough currency, play some more games!"
	case err != nil:
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to buy theme")
		return msgFailed
	}
	t, _ := shop.GetTheme(id)
	return fmt.Sprintf("✅ %s %s is yours! %d currency left\nApply it with /theme %s", t.Emoji, t.Name, p.AvailableCurrency(), t.ID)
}

func (h *ShopHandler) apply(userID int64, id shop.ThemeID) string {
	err := h.arcade.SetTheme(context.Background(), userID, id)
	switch {
	case errors.Is(err, service.ErrUnknownTheme):
		return fmt.Sprintf("❌ There is no theme called %q", id)
	case errors.Is(err, service.ErrThemeNotOwned):
		return "❌ Buy that theme first with /buy " + string(id)
	case err != nil:
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to set theme")
		return msgFailed
	}
	t, _ := shop.GetTheme(id)
	return fmt.Sprintf("🎨 Theme set to %s %s", t.Emoji, t.Name)
}

// HandleShopCallback handles shop button callbacks.
func (h *ShopHandler) HandleShopCallback(c tele.Context) error {
	ctx := context.Background()
	callback := c.Callback()
	sender := c.Sender()
	if callback == nil || sender == nil {
		return nil
	}

	data := strings.TrimPrefix(callback.Data, "\f")

	switch {
	case data == shop.CallbackShopRefresh, data == shop.CallbackShopCancel:
		p, _, err := h.arcade.Stats(ctx, sender.ID)
		if err != nil {
			return c.Respond(&tele.CallbackResponse{Text: msgFailed, ShowAlert: true})
		}
		return c.Edit(shop.FormatShopMessage(p), shop.BuildShopPanel(p))

	case strings.HasPrefix(data, shop.CallbackShopItem):
		t, ok := shop.GetTheme(shop.ThemeID(strings.TrimPrefix(data, shop.CallbackShopItem)))
		if !ok {
			return c.Respond(&tele.CallbackResponse{Text: "❌ Unknown theme", ShowAlert: true})
		}
		p, _, err := h.arcade.Stats(ctx, sender.ID)
		if err != nil {
			return c.Respond(&tele.CallbackResponse{Text: msgFailed, ShowAlert: true})
		}
		owned := t.Free() || p.Owns(string(t.ID))
		return c.Edit(shop.FormatThemeDetail(t, p), shop.BuildConfirmPanel(t, owned))

	case strings.HasPrefix(data, shop.CallbackShopBuy):
		msg := h.buy(sender.ID, shop.ThemeID(strings.TrimPrefix(data, shop.CallbackShopBuy)))
		return c.Respond(&tele.CallbackResponse{Text: msg, ShowAlert: true})

	case strings.HasPrefix(data, shop.CallbackShopApply):
		msg := h.apply(sender.ID, shop.ThemeID(strings.TrimPrefix(data, shop.CallbackShopApply)))
		return c.Respond(&tele.CallbackResponse{Text: msg})
	}

	log.Debug().Str("data", data).Msg("Unhandled shop callback")
	return c.Respond()
}
