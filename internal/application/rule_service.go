package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/example/extension-scheduler/internal/persistence"
	"github.com/example/extension-scheduler/internal/rules"
)

// StorageKey is the fixed key the serialized rule sequence is stored under.
const StorageKey = "extensionScheduleRules_v2"

// Rescheduler rebuilds the live timer set from a rule snapshot. Every
// mutation of the rule sequence is followed by a full reschedule so the
// timer set and the sequence never drift apart.
type Rescheduler interface {
	Reschedule(ruleSet []rules.Rule)
}

// RuleInput captures caller provided rule fields. Active is nil when the
// caller does not want to touch the flag (edits preserve the stored value).
type RuleInput struct {
	Name        string
	ExtensionID string
	Action      string
	Time        string
	Days        []string
	StartDate   *string
	EndDate     *string
	Active      *bool
}

// RuleService owns the authoritative rule sequence: it validates mutations,
// persists the full sequence after each one, and triggers a timer rebuild.
// All other components only ever see snapshot copies.
type RuleService struct {
	mu          sync.Mutex
	store       persistence.KeyValueStore
	scheduler   Rescheduler
	idGenerator func() string
	logger      *slog.Logger
	rules       []rules.Rule
}

// NewRuleService wires dependencies for rule operations.
func NewRuleService(store persistence.KeyValueStore, scheduler Rescheduler, idGenerator func() string, logger *slog.Logger) *RuleService {
	if idGenerator == nil {
		idGenerator = func() string { return fmt.Sprintf("rule-%d", time.Now().UnixNano()) }
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RuleService{
		store:       store,
		scheduler:   scheduler,
		idGenerator: idGenerator,
		logger:      logger,
	}
}

// Load reads the persisted sequence and rebuilds the timer set. A missing
// key yields an empty sequence; malformed data is logged and treated as
// empty rather than failing the caller. Records written before rules
// carried identifiers are assigned one and persisted back.
func (s *RuleService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := serviceLogger(ctx, s.logger, "rules", "load")

	value, ok, err := s.store.Get(ctx, StorageKey)
	if err != nil {
		s.rules = nil
		s.rescheduleLocked()
		return fmt.Errorf("load rules: %w", err)
	}

	var loaded []rules.Rule
	if ok {
		loaded, err = rules.DecodeList([]byte(value))
		if err != nil {
			logger.WarnContext(ctx, "stored rules are malformed, resetting to empty", "error", err)
			loaded = nil
		}
	}

	dirty := false
	for i := range loaded {
		if loaded[i].ID == "" {
			loaded[i].ID = s.idGenerator()
			dirty = true
		}
	}
	s.rules = loaded

	if dirty {
		if err := s.saveLocked(ctx); err != nil {
			logger.WarnContext(ctx, "failed to persist backfilled rule ids", "error", err)
		}
	}

	s.rescheduleLocked()
	return nil
}

// List returns a snapshot copy of the current sequence.
func (s *RuleService) List(ctx context.Context) []rules.Rule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return rules.CloneList(s.rules)
}

// Get returns the rule with the given identifier.
func (s *RuleService) Get(ctx context.Context, id string) (rules.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rule := range s.rules {
		if rule.ID == id {
			return rule.Clone(), nil
		}
	}
	return rules.Rule{}, ErrNotFound
}

// Create validates and appends a new rule, then persists and reschedules.
// On a persistence failure the in-memory sequence keeps the change (it
// remains the working truth for the session) and the error is returned
// alongside the created rule.
func (s *RuleService) Create(ctx context.Context, input RuleInput) (rules.Rule, error) {
	vErr := &ValidationError{}
	validateRuleInput(input, vErr)
	if vErr.HasErrors() {
		return rules.Rule{}, vErr
	}

	rule := buildRule(input)
	rule.ID = s.idGenerator()
	rule.Active = true
	if input.Active != nil {
		rule.Active = *input.Active
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.rules = append(s.rules, rule)
	err := s.saveLocked(ctx)
	s.rescheduleLocked()
	if err != nil {
		serviceLogger(ctx, s.logger, "rules", "create", "rule_id", rule.ID).
			WarnContext(ctx, "rule kept in memory but not persisted", "error", err)
		return rule.Clone(), err
	}
	return rule.Clone(), nil
}

// Update replaces the stored fields of an existing rule. The active flag is
// preserved unless the input sets it explicitly.
func (s *RuleService) Update(ctx context.Context, id string, input RuleInput) (rules.Rule, error) {
	vErr := &ValidationError{}
	validateRuleInput(input, vErr)
	if vErr.HasErrors() {
		return rules.Rule{}, vErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return rules.Rule{}, ErrNotFound
	}

	rule := buildRule(input)
	rule.ID = id
	rule.Active = s.rules[idx].Active
	if input.Active != nil {
		rule.Active = *input.Active
	}
	s.rules[idx] = rule

	err := s.saveLocked(ctx)
	s.rescheduleLocked()
	if err != nil {
		return rule.Clone(), err
	}
	return rule.Clone(), nil
}

// Delete removes a rule from the sequence. The following reschedule clears
// any timer that still references it.
func (s *RuleService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return ErrNotFound
	}

	s.rules = append(s.rules[:idx], s.rules[idx+1:]...)
	err := s.saveLocked(ctx)
	s.rescheduleLocked()
	return err
}

// SetActive flips the manual active flag of one rule without touching its
// other fields.
func (s *RuleService) SetActive(ctx context.Context, id string, active bool) (rules.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return rules.Rule{}, ErrNotFound
	}

	s.rules[idx].Active = active
	err := s.saveLocked(ctx)
	s.rescheduleLocked()
	if err != nil {
		return s.rules[idx].Clone(), err
	}
	return s.rules[idx].Clone(), nil
}

func (s *RuleService) indexLocked(id string) int {
	for i, rule := range s.rules {
		if rule.ID == id {
			return i
		}
	}
	return -1
}

func (s *RuleService) saveLocked(ctx context.Context) error {
	data, err := rules.EncodeList(s.rules)
	if err != nil {
		return fmt.Errorf("save rules: %w", err)
	}
	if err := s.store.Set(ctx, StorageKey, string(data)); err != nil {
		return fmt.Errorf("save rules: %w", err)
	}
	return nil
}

func (s *RuleService) rescheduleLocked() {
	if s.scheduler == nil {
		return
	}
	s.scheduler.Reschedule(rules.CloneList(s.rules))
}

func buildRule(input RuleInput) rules.Rule {
	days := make([]string, 0, len(input.Days))
	for _, day := range input.Days {
		if trimmed := strings.TrimSpace(day); trimmed != "" {
			days = append(days, trimmed)
		}
	}

	return rules.Rule{
		Name:        strings.TrimSpace(input.Name),
		ExtensionID: strings.TrimSpace(input.ExtensionID),
		Action:      rules.Action(strings.TrimSpace(input.Action)),
		Time:        strings.TrimSpace(input.Time),
		Days:        days,
		StartDate:   normalizeDate(input.StartDate),
		EndDate:     normalizeDate(input.EndDate),
	}
}

func normalizeDate(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func validateRuleInput(input RuleInput, vErr *ValidationError) {
	if strings.TrimSpace(input.ExtensionID) == "" {
		vErr.add("extension_id", "extension id is required")
	}

	action := rules.Action(strings.TrimSpace(input.Action))
	if action == "" {
		vErr.add("action", "action is required")
	} else if !action.Valid() {
		vErr.add("action", "action must be enable or disable")
	}

	if strings.TrimSpace(input.Time) == "" {
		vErr.add("time", "time is required")
	} else if _, _, err := rules.ParseClockTime(input.Time); err != nil {
		vErr.add("time", "time must be in 24-hour HH:MM format")
	}

	for _, day := range input.Days {
		if strings.TrimSpace(day) == "" {
			continue
		}
		if !rules.ValidWeekday(strings.TrimSpace(day)) {
			vErr.add("days", fmt.Sprintf("unknown weekday %q", day))
			break
		}
	}

	start, startOK := parseDate(input.StartDate)
	if input.StartDate != nil && strings.TrimSpace(*input.StartDate) != "" && !startOK {
		vErr.add("start_date", "start date must be in YYYY-MM-DD format")
	}
	end, endOK := parseDate(input.EndDate)
	if input.EndDate != nil && strings.TrimSpace(*input.EndDate) != "" && !endOK {
		vErr.add("end_date", "end date must be in YYYY-MM-DD format")
	}
	if startOK && endOK && end.Before(start) {
		vErr.add("date_range", "end date cannot be before start date")
	}
}

func parseDate(value *string) (time.Time, bool) {
	if value == nil {
		return time.Time{}, false
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return time.Time{}, false
	}
	parsed, err := time.Parse(rules.DateLayout, trimmed)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}
