package alarms

import (
	"log/slog"
	"strings"
	"time"

	"github.com/example/extension-scheduler/internal/rules"
)

// DailyPeriod is the repeat interval of every rule alarm.
const DailyPeriod = 24 * time.Hour

// namePrefix ties an alarm back to the rule that owns it.
const namePrefix = "rule-"

// Name derives the alarm name for a rule identifier.
func Name(ruleID string) string {
	return namePrefix + ruleID
}

// ParseName extracts the rule identifier from an alarm name. It reports
// false for names this scheduler did not produce.
func ParseName(name string) (string, bool) {
	id, ok := strings.CutPrefix(name, namePrefix)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// Sink is the alarm backend the scheduler programs. Create registers a
// repeating alarm and replaces any existing alarm with the same name.
type Sink interface {
	Create(name string, firstFire time.Time, period time.Duration)
	ClearAll()
}

// Scheduler reconciles the alarm set with the rule sequence by full
// rebuild: clear everything, then register one daily alarm per active
// rule. Rebuilding from scratch keeps the sink state a pure function of
// the current sequence, so repeated calls with the same input converge.
type Scheduler struct {
	sink   Sink
	now    func() time.Time
	logger *slog.Logger
}

// NewScheduler builds a Scheduler. now defaults to time.Now.
func NewScheduler(sink Sink, now func() time.Time, logger *slog.Logger) *Scheduler {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{sink: sink, now: now, logger: logger}
}

// Reschedule rebuilds the alarm set from the given snapshot. Rules that
// are inactive get no alarm; a rule with an unparsable time is logged and
// skipped without affecting the others.
func (s *Scheduler) Reschedule(ruleSet []rules.Rule) {
	s.sink.ClearAll()

	now := s.now()
	for _, rule := range ruleSet {
		if !rule.Active {
			continue
		}
		hour, minute, err := rules.ParseClockTime(rule.Time)
		if err != nil {
			s.logger.Warn("skipping rule with malformed time",
				"rule_id", rule.ID, "time", rule.Time, "error", err)
			continue
		}
		firstFire := rules.NextOccurrence(now, hour, minute)
		s.sink.Create(Name(rule.ID), firstFire, DailyPeriod)
	}
}
