package domain

import "time"

// NightWindow is a daily hour range [StartHour, EndHour) that may wrap past
// midnight (22 -> 5). Equal bounds mean night mode is off.
type NightWindow struct {
	StartHour int
	EndHour   int
}

func (w NightWindow) Contains(t time.Time) bool {
	if w.StartHour == w.EndHour {
		return false
	}
	h := t.Hour()
	if w.StartHour < w.EndHour {
		return h >= w.StartHour && h < w.EndHour
	}
	return h >= w.StartHour || h < w.EndHour
}
