package alarms

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/extension-scheduler/internal/metrics"
	"github.com/example/extension-scheduler/internal/rules"
)

// RuleSource resolves a rule identifier to its current definition.
type RuleSource interface {
	Get(ctx context.Context, id string) (rules.Rule, error)
}

// Controller applies a rule's action to the target extension.
type Controller interface {
	SetEnabled(ctx context.Context, extensionID string, enabled bool) error
}

// Dispatcher handles fired alarms. Eligibility is decided here, at fire
// time, not at scheduling time: alarms fire unconditionally every day and
// the dispatcher filters against the current rule state, so date windows
// and the active flag are honored without reprogramming timers at each
// midnight boundary.
type Dispatcher struct {
	source     RuleSource
	controller Controller
	now        func() time.Time
	logger     *slog.Logger
}

// NewDispatcher builds a Dispatcher. now defaults to time.Now.
func NewDispatcher(source RuleSource, controller Controller, now func() time.Time, logger *slog.Logger) *Dispatcher {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{source: source, controller: controller, now: now, logger: logger}
}

// HandleAlarm reacts to a single alarm firing. Unknown names and names
// whose rule no longer exists are treated as stale and discarded; a
// controller failure is logged and counted but never propagated, so one
// unreachable extension cannot break the dispatch loop.
func (d *Dispatcher) HandleAlarm(ctx context.Context, name string) {
	logger := d.logger.With("alarm", name)

	ruleID, ok := ParseName(name)
	if !ok {
		logger.WarnContext(ctx, "ignoring alarm with unrecognized name")
		return
	}
	metrics.AlarmsFired.Inc()

	rule, err := d.source.Get(ctx, ruleID)
	if err != nil {
		logger.WarnContext(ctx, "discarding alarm for unresolvable rule",
			"rule_id", ruleID, "error", err)
		return
	}

	if !rules.IsEligibleToday(rule, d.now()) {
		logger.InfoContext(ctx, "rule not eligible today, skipping",
			"rule_id", rule.ID, "extension_id", rule.ExtensionID)
		metrics.ActionsSkipped.Inc()
		return
	}

	enabled := rule.Action == rules.ActionEnable
	if err := d.controller.SetEnabled(ctx, rule.ExtensionID, enabled); err != nil {
		logger.ErrorContext(ctx, "failed to apply rule action",
			"rule_id", rule.ID, "extension_id", rule.ExtensionID,
			"action", string(rule.Action), "error", err)
		metrics.ActionFailures.Inc()
		return
	}

	logger.InfoContext(ctx, "applied rule action",
		"rule_id", rule.ID, "extension_id", rule.ExtensionID, "action", string(rule.Action))
	metrics.Actions.WithLabelValues(string(rule.Action)).Inc()
}
