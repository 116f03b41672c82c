// Package recurrence expands schedule rules into the concrete instants
// they will act, so callers can preview a rule before its alarms fire.
package recurrence

import (
	"errors"
	"time"

	"github.com/example/extension-scheduler/internal/rules"
)

// MaxOccurrences caps a single expansion request.
const MaxOccurrences = 60

// ErrInvalidCount indicates the requested occurrence count is out of range.
var ErrInvalidCount = errors.New("recurrence: count must be between 1 and 60")

// ErrInvalidTime indicates the rule's clock time cannot be parsed.
var ErrInvalidTime = errors.New("recurrence: rule has an unparsable time")

// horizonDays bounds the scan so a rule whose date window has passed
// terminates instead of walking forward indefinitely.
const horizonDays = 366

// Engine expands rules into upcoming occurrences.
type Engine struct {
	now func() time.Time
}

// NewEngine constructs an Engine. now defaults to time.Now.
func NewEngine(now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{now: now}
}

// Upcoming returns up to count future instants at which the rule will
// act, starting from the engine's current time. Weekday selections and
// the date window are applied the same way alarm dispatch applies them;
// the manual active flag is ignored so an inactive rule can still be
// previewed. The scan stops early when the rule's end date has passed
// or a year has been covered.
func (e *Engine) Upcoming(rule rules.Rule, count int) ([]time.Time, error) {
	if count < 1 || count > MaxOccurrences {
		return nil, ErrInvalidCount
	}
	hour, minute, err := rules.ParseClockTime(rule.Time)
	if err != nil {
		return nil, ErrInvalidTime
	}

	// Eligibility is checked as if the flag were set, since the preview
	// answers "when would this rule act if enabled".
	probe := rule.Clone()
	probe.Active = true

	now := e.now()
	fire := rules.NextOccurrence(now, hour, minute)

	occurrences := make([]time.Time, 0, count)
	for day := 0; day < horizonDays && len(occurrences) < count; day++ {
		if rules.IsEligibleToday(probe, fire) {
			occurrences = append(occurrences, fire)
		}
		fire = fire.AddDate(0, 0, 1)
	}
	return occurrences, nil
}
