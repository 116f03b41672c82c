package rules

import (
	"slices"
	"time"
)

// DateLayout is the calendar-date format used by rule date bounds.
const DateLayout = "2006-01-02"

// IsEligibleToday decides whether a rule may act at the given moment. The
// checks run in order and short-circuit: the manual active flag, the start
// date (from local midnight), the end date (through end of day), then the
// weekday set. Comparisons use calendar dates only; time of day was already
// matched by the firing timer.
//
// A stored date bound that fails to parse does not constrain the rule; the
// function stays pure and leaves complaining about malformed fields to the
// validation path.
func IsEligibleToday(rule Rule, now time.Time) bool {
	if !rule.Active {
		return false
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if rule.StartDate != nil {
		if start, err := time.ParseInLocation(DateLayout, *rule.StartDate, now.Location()); err == nil {
			if today.Before(start) {
				return false
			}
		}
	}

	if rule.EndDate != nil {
		if end, err := time.ParseInLocation(DateLayout, *rule.EndDate, now.Location()); err == nil {
			if today.After(end) {
				return false
			}
		}
	}

	if len(rule.Days) > 0 && !slices.Contains(rule.Days, now.Weekday().String()) {
		return false
	}

	return true
}
