// Package testfixtures provides deterministic building blocks shared by
// tests across packages: a controllable clock, a sequential identifier
// generator, and canonical rule records.
package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/extension-scheduler/internal/rules"
)

var ruleCounter uint64

// referenceTime is a Friday, 15:04 local wall clock.
var referenceTime = time.Date(2024, time.January, 5, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// RuleFixture represents a deterministic rule record for tests.
type RuleFixture struct {
	ID          string
	Name        string
	ExtensionID string
	Action      rules.Action
	Time        string
	Days        []string
	StartDate   *string
	EndDate     *string
	Active      bool
}

// NewRuleFixture produces a unique, valid rule fixture. Overrides mutate the
// fixture before it is returned.
func NewRuleFixture(overrides ...func(*RuleFixture)) RuleFixture {
	n := atomic.AddUint64(&ruleCounter, 1)
	fixture := RuleFixture{
		ID:          fmt.Sprintf("rule-fixture-%d", n),
		Name:        fmt.Sprintf("Rule %d", n),
		ExtensionID: fmt.Sprintf("extension-%d", n),
		Action:      rules.ActionEnable,
		Time:        "09:30",
		Active:      true,
	}
	for _, override := range overrides {
		if override != nil {
			override(&fixture)
		}
	}
	return fixture
}

// Rule materialises the fixture as a domain rule.
func (f RuleFixture) Rule() rules.Rule {
	return rules.Rule{
		ID:          f.ID,
		Name:        f.Name,
		ExtensionID: f.ExtensionID,
		Action:      f.Action,
		Time:        f.Time,
		Days:        append([]string(nil), f.Days...),
		StartDate:   f.StartDate,
		EndDate:     f.EndDate,
		Active:      f.Active,
	}
}

// DateString returns a pointer to t formatted as a rule date bound.
func DateString(t time.Time) *string {
	formatted := t.Format(rules.DateLayout)
	return &formatted
}
