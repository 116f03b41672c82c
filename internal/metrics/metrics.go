package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AlarmsFired counts alarms that reached the dispatcher with a
	// recognizable rule name, before any filtering.
	AlarmsFired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "extsched_alarms_fired_total",
		Help: "Alarms received by the dispatcher.",
	})

	// Actions counts successfully applied extension state changes by action.
	Actions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "extsched_actions_total",
		Help: "Extension state changes applied, by action.",
	}, []string{"action"})

	// ActionsSkipped counts fires filtered out by the eligibility check.
	ActionsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "extsched_actions_skipped_total",
		Help: "Alarm fires skipped because the rule was not eligible.",
	})

	// ActionFailures counts controller errors while applying an action.
	ActionFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "extsched_action_failures_total",
		Help: "Failed attempts to change an extension's enabled state.",
	})
)
