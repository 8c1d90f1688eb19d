package powerup

// Type identifies a kind of boost.
type Type string

const (
	TimeFreeze    Type = "timeFreeze"
	DoubleXP      Type = "doubleXP"
	AccuracyBoost Type = "accuracyBoost"
	Shield        Type = "shield"
)

// Info describes a boost for display.
type Info struct {
	Type        Type
	Name        string
	Emoji       string
	Description string
}

var catalog = map[Type]Info{
	TimeFreeze: {
		Type:        TimeFreeze,
		Name:        "Time Freeze",
		Emoji:       "⏸️",
		Description: "Pauses the session clock for a few seconds",
	},
	DoubleXP: {
		Type:        DoubleXP,
		Name:        "Double XP",
		Emoji:       "✨",
		Description: "Doubles the XP earned by the next game",
	},
	AccuracyBoost: {
		Type:        AccuracyBoost,
		Name:        "Accuracy Boost",
		Emoji:       "🎯",
		Description: "Adds 10 points to the accuracy of the next game",
	},
	Shield: {
		Type:        Shield,
		Name:        "Shield",
		Emoji:       "🛡️",
		Description: "Forgives one mistake",
	},
}

// Types returns every boost type in display order.
func Types() []Type {
	return []Type{DoubleXP, AccuracyBoost, TimeFreeze, Shield}
}

// Lookup returns the display info for t.
func Lookup(t Type) (Info, bool) {
	info, ok := catalog[t]
	return info, ok
}

// Valid reports whether t is a known boost type.
func (t Type) Valid() bool {
	_, ok := catalog[t]
	return ok
}
