package shop

import (
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v3"

	"brain-arcade/internal/model"
)

// Callback data prefixes
const (
	CallbackShopItem    = "shop_item:" // shop_item:ocean
	CallbackShopBuy     = "shop_buy:"  // shop_buy:ocean
	CallbackShopApply   = "shop_use:"  // shop_use:ocean
	CallbackShopCancel  = "shop_cancel"
	CallbackShopRefresh = "shop_refresh"
)

// BuildShopPanel creates the main shop panel with one button per theme.
func BuildShopPanel(p model.UserProgress) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}

	themes := AllThemes()
	var rows []tele.Row
	var currentRow []tele.Btn
	for i, t := range themes {
		label := fmt.Sprintf("%s %s (%d)", t.Emoji, t.Name, t.Price)
		if t.Free() || p.Owns(string(t.ID)) {
			label = fmt.Sprintf("%s %s ✅", t.Emoji, t.Name)
		}
		currentRow = append(currentRow, markup.Data(label, CallbackShopItem+string(t.ID)))

		// 2 buttons per row
		if len(currentRow) == 2 || i == len(themes)-1 {
			rows = append(rows, markup.Row(currentRow...))
			currentRow = nil
		}
	}
	rows = append(rows, markup.Row(markup.Data("🔄 Refresh", CallbackShopRefresh)))

	markup.Inline(rows...)
	return markup
}

// BuildConfirmPanel creates the buy (or apply, when owned) panel for a theme.
func BuildConfirmPanel(t Theme, owned bool) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}

	action := markup.Data("✅ Buy", CallbackShopBuy+string(t.ID))
	if owned {
		action = markup.Data("🎨 Apply", CallbackShopApply+string(t.ID))
	}
	cancel := markup.Data("❌ Back", CallbackShopCancel)

	markup.Inline(markup.Row(action, cancel))
	return markup
}

// FormatShopMessage renders the shop header.
func FormatShopMessage(p model.UserProgress) string {
	var b strings.Builder
	b.WriteString("🏪 Theme Shop\n")
	b.WriteString("━━━━━━━━━━━━━━━\n")
	fmt.Fprintf(&b, "💰 Available: %d\n", p.AvailableCurrency())
	fmt.Fprintf(&b, "🎨 Active theme: %s\n", p.ActiveTheme)
	b.WriteString("━━━━━━━━━━━━━━━\n")
	b.WriteString("Tap a theme for details:")
	return b.String()
}

// FormatThemeDetail renders one theme with its palette.
func FormatThemeDetail(t Theme, p model.UserProgress) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", t.Emoji, t.Name)
	b.WriteString("━━━━━━━━━━━━━━━\n")
	fmt.Fprintf(&b, "Primary:   %s\n", t.Palette.Primary)
	fmt.Fprintf(&b, "Secondary: %s\n", t.Palette.Secondary)
	fmt.Fprintf(&b, "Accent:    %s\n", t.Palette.Accent)
	b.WriteString("━━━━━━━━━━━━━━━\n")

	owned := t.Free() || p.Owns(string(t.ID))
	switch {
	case owned:
		b.WriteString("✅ Owned")
	case p.AvailableCurrency() < t.Price:
		fmt.Fprintf(&b, "💰 Price: %d\n❌ Not enough currency (%d available)", t.Price, p.AvailableCurrency())
	default:
		fmt.Fprintf(&b, "💰 Price: %d\nBuy it?", t.Price)
	}
	return b.String()
}
