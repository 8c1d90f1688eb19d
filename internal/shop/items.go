// Package shop provides the cosmetic theme catalog and its Telegram panels.
package shop

import "brain-arcade/internal/model"

// ThemeID identifies a cosmetic theme.
type ThemeID string

const (
	ThemeClassic ThemeID = model.DefaultTheme
	ThemeOcean   ThemeID = "ocean"
	ThemeForest  ThemeID = "forest"
	ThemeNeon    ThemeID = "neon"
	ThemeSunset  ThemeID = "sunset"
	ThemeGalaxy  ThemeID = "galaxy"
)

// Palette holds the styling variables a theme applies.
type Palette struct {
	Primary   string
	Secondary string
	Accent    string
}

// Theme is a shop entry.
type Theme struct {
	ID      ThemeID
	Name    string
	Emoji   string
	Price   int64 // currency, i.e. unspent score
	Palette Palette
}

// Free reports whether the theme costs nothing.
func (t Theme) Free() bool {
	return t.Price == 0
}

// Themes contains every theme in the shop.
var Themes = map[ThemeID]Theme{
	ThemeClassic: {ID: ThemeClassic, Name: "Classic", Emoji: "🎨", Price: 0,
		Palette: Palette{Primary: "#4F46E5", Secondary: "#E0E7FF", Accent: "#F59E0B"}},
	ThemeOcean: {ID: ThemeOcean, Name: "Ocean", Emoji: "🌊", Price: 500,
		Palette: Palette{Primary: "#0369A1", Secondary: "#E0F2FE", Accent: "#14B8A6"}},
	ThemeForest: {ID: ThemeForest, Name: "Forest", Emoji: "🌲", Price: 500,
		Palette: Palette{Primary: "#166534", Secondary: "#DCFCE7", Accent: "#CA8A04"}},
	ThemeNeon: {ID: ThemeNeon, Name: "Neon", Emoji: "💡", Price: 750,
		Palette: Palette{Primary: "#DB2777", Secondary: "#111827", Accent: "#22D3EE"}},
	ThemeSunset: {ID: ThemeSunset, Name: "Sunset", Emoji: "🌅", Price: 1000,
		Palette: Palette{Primary: "#EA580C", Secondary: "#FFF7ED", Accent: "#9333EA"}},
	ThemeGalaxy: {ID: ThemeGalaxy, Name: "Galaxy", Emoji: "🌌", Price: 2500,
		Palette: Palette{Primary: "#312E81", Secondary: "#0F172A", Accent: "#F472B6"}},
}

// displayOrder is the order themes appear in the shop.
var displayOrder = []ThemeID{
	ThemeClassic, ThemeOcean, ThemeForest, ThemeNeon, ThemeSunset, ThemeGalaxy,
}

// AllThemes returns all themes in display order.
func AllThemes() []Theme {
	out := make([]Theme, 0, len(displayOrder))
	for _, id := range displayOrder {
		if t, ok := Themes[id]; ok {
			out = append(out, t)
		}
	}
	return out
}

// GetTheme returns the theme with id.
func GetTheme(id ThemeID) (Theme, bool) {
	t, ok := Themes[id]
	return t, ok
}
