package rules

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Action identifies the state a rule forces its target extension into.
type Action string

const (
	// ActionEnable turns the target extension on when the rule fires.
	ActionEnable Action = "enable"
	// ActionDisable turns the target extension off when the rule fires.
	ActionDisable Action = "disable"
)

// Valid reports whether the action is one of the supported values.
func (a Action) Valid() bool {
	return a == ActionEnable || a == ActionDisable
}

// Rule is one scheduling directive: flip one extension's enabled state at a
// time of day, subject to optional weekday and date-range constraints plus a
// user-controlled active flag.
//
// The JSON field names match the persisted layout consumed by the management
// UI; StartDate and EndDate hold inclusive "2006-01-02" calendar dates and
// are nil when unbounded.
type Rule struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	ExtensionID string   `json:"extensionId"`
	Action      Action   `json:"action"`
	Time        string   `json:"time"`
	Days        []string `json:"days"`
	StartDate   *string  `json:"startDate"`
	EndDate     *string  `json:"endDate"`
	Active      bool     `json:"active"`
}

// Clone returns a deep copy so callers can hand out snapshots without
// sharing mutable state.
func (r Rule) Clone() Rule {
	out := r
	if r.Days != nil {
		out.Days = append([]string(nil), r.Days...)
	}
	out.StartDate = cloneString(r.StartDate)
	out.EndDate = cloneString(r.EndDate)
	return out
}

// CloneList deep-copies a rule sequence.
func CloneList(ruleSet []Rule) []Rule {
	if ruleSet == nil {
		return nil
	}
	out := make([]Rule, 0, len(ruleSet))
	for _, rule := range ruleSet {
		out = append(out, rule.Clone())
	}
	return out
}

// storedRule mirrors Rule for decoding, with a nilable active flag so records
// written before the flag existed can be back-filled to true.
type storedRule struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	ExtensionID string   `json:"extensionId"`
	Action      Action   `json:"action"`
	Time        string   `json:"time"`
	Days        []string `json:"days"`
	StartDate   *string  `json:"startDate"`
	EndDate     *string  `json:"endDate"`
	Active      *bool    `json:"active"`
}

// DecodeList parses a persisted rule sequence. Records missing the active
// flag default to active. A payload that is not a JSON array is an error so
// the store can fall back to an empty sequence.
func DecodeList(data []byte) ([]Rule, error) {
	var stored []storedRule
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("rules: decode sequence: %w", err)
	}

	out := make([]Rule, 0, len(stored))
	for _, record := range stored {
		rule := Rule{
			ID:          record.ID,
			Name:        record.Name,
			ExtensionID: record.ExtensionID,
			Action:      record.Action,
			Time:        record.Time,
			Days:        record.Days,
			StartDate:   record.StartDate,
			EndDate:     record.EndDate,
			Active:      true,
		}
		if record.Active != nil {
			rule.Active = *record.Active
		}
		out = append(out, rule)
	}
	return out, nil
}

// EncodeList serializes a rule sequence for persistence.
func EncodeList(ruleSet []Rule) ([]byte, error) {
	if ruleSet == nil {
		ruleSet = []Rule{}
	}
	data, err := json.Marshal(ruleSet)
	if err != nil {
		return nil, fmt.Errorf("rules: encode sequence: %w", err)
	}
	return data, nil
}

// ParseClockTime parses a 24-hour "HH:MM" value.
func ParseClockTime(value string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("rules: time %q is not in HH:MM format", value)
	}

	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("rules: time %q has an invalid hour", value)
	}

	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("rules: time %q has an invalid minute", value)
	}

	return hour, minute, nil
}

// NextOccurrence returns the next moment strictly after now at which a daily
// timer for hour:minute should first fire: today if the time of day has not
// passed yet, otherwise tomorrow.
func NextOccurrence(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

var weekdayNames = map[string]struct{}{
	time.Sunday.String():    {},
	time.Monday.String():    {},
	time.Tuesday.String():   {},
	time.Wednesday.String(): {},
	time.Thursday.String():  {},
	time.Friday.String():    {},
	time.Saturday.String():  {},
}

// ValidWeekday reports whether name is a full English weekday name as stored
// in a rule's day set ("Sunday" through "Saturday").
func ValidWeekday(name string) bool {
	_, ok := weekdayNames[name]
	return ok
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
