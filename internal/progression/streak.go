package progression

import "time"

const dayLayout = "2006-01-02"

// dayKey formats t as a calendar day in loc.
func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dayLayout)
}

// nextStreak applies the day-continuity rule: same day keeps the streak,
// the following day extends it, anything else (including a first play or an
// unparsable last day) restarts it at one.
func nextStreak(streak int, lastPlayed, today string) int {
	if lastPlayed == "" {
		return 1
	}
	last, err := time.Parse(dayLayout, lastPlayed)
	if err != nil {
		return 1
	}
	now, err := time.Parse(dayLayout, today)
	if err != nil {
		return 1
	}

	switch days := int(now.Sub(last).Hours() / 24); days {
	case 0:
		if streak < 1 {
			return 1
		}
		return streak
	case 1:
		return streak + 1
	default:
		return 1
	}
}
