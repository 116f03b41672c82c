package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/extension-scheduler/internal/application"
	"github.com/example/extension-scheduler/internal/rules"
)

type ruleService interface {
	List(ctx context.Context) []rules.Rule
	Get(ctx context.Context, id string) (rules.Rule, error)
	Create(ctx context.Context, input application.RuleInput) (rules.Rule, error)
	Update(ctx context.Context, id string, input application.RuleInput) (rules.Rule, error)
	Delete(ctx context.Context, id string) error
	SetActive(ctx context.Context, id string, active bool) (rules.Rule, error)
}

type occurrenceExpander interface {
	Upcoming(rule rules.Rule, count int) ([]time.Time, error)
}

type RuleHandler struct {
	service   ruleService
	expander  occurrenceExpander
	responder responder
	logger    *slog.Logger
}

func NewRuleHandler(service ruleService, expander occurrenceExpander, logger *slog.Logger) *RuleHandler {
	base := defaultLogger(logger)
	return &RuleHandler{service: service, expander: expander, responder: newResponder(base), logger: base}
}

func (h *RuleHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "RuleHandler", operation, attrs...)
}

func (h *RuleHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	ruleSet := h.service.List(r.Context())
	h.log(r.Context(), "List").With("result_count", len(ruleSet)).InfoContext(r.Context(), "rules listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listRulesResponse{Rules: toRuleDTOs(ruleSet)})
}

func (h *RuleHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	ruleID, ok := RuleIDFromContext(r.Context())
	if !ok || strings.TrimSpace(ruleID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRuleID)
		return
	}

	rule, err := h.service.Get(r.Context(), ruleID)
	if err != nil {
		h.log(r.Context(), "Get", "rule_id", ruleID).ErrorContext(r.Context(), "rule lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, ruleResponse{Rule: toRuleDTO(rule)})
}

func (h *RuleHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req ruleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode rule request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create")

	rule, err := h.service.Create(r.Context(), req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "rule creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("rule_id", rule.ID).InfoContext(r.Context(), "rule created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, ruleResponse{Rule: toRuleDTO(rule)})
}

func (h *RuleHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	ruleID, ok := RuleIDFromContext(r.Context())
	if !ok || strings.TrimSpace(ruleID) == "" {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing rule id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRuleID)
		return
	}

	var req ruleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "rule_id", ruleID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode rule update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "rule_id", ruleID)

	rule, err := h.service.Update(r.Context(), ruleID, req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "rule update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "rule updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, ruleResponse{Rule: toRuleDTO(rule)})
}

func (h *RuleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	ruleID, ok := RuleIDFromContext(r.Context())
	if !ok || strings.TrimSpace(ruleID) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing rule id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRuleID)
		return
	}

	logger := h.log(r.Context(), "Delete", "rule_id", ruleID)
	if err := h.service.Delete(r.Context(), ruleID); err != nil {
		logger.ErrorContext(r.Context(), "rule delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "rule deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *RuleHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	ruleID, ok := RuleIDFromContext(r.Context())
	if !ok || strings.TrimSpace(ruleID) == "" {
		h.log(r.Context(), "SetActive", "error_kind", "bad_request").ErrorContext(r.Context(), "missing rule id for active toggle")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRuleID)
		return
	}

	var req activeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Active == nil {
		h.log(r.Context(), "SetActive", "rule_id", ruleID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode active toggle", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "SetActive", "rule_id", ruleID, "active", *req.Active)

	rule, err := h.service.SetActive(r.Context(), ruleID, *req.Active)
	if err != nil {
		logger.ErrorContext(r.Context(), "active toggle failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "rule active flag updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, ruleResponse{Rule: toRuleDTO(rule)})
}

func (h *RuleHandler) Occurrences(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil || h.expander == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	ruleID, ok := RuleIDFromContext(r.Context())
	if !ok || strings.TrimSpace(ruleID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRuleID)
		return
	}

	count := 7
	if raw := strings.TrimSpace(r.URL.Query().Get("count")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidCount)
			return
		}
		count = parsed
	}

	rule, err := h.service.Get(r.Context(), ruleID)
	if err != nil {
		h.log(r.Context(), "Occurrences", "rule_id", ruleID).ErrorContext(r.Context(), "rule lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	occurrences, err := h.expander.Upcoming(rule, count)
	if err != nil {
		h.log(r.Context(), "Occurrences", "rule_id", ruleID).ErrorContext(r.Context(), "occurrence expansion failed", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	formatted := make([]string, 0, len(occurrences))
	for _, occurrence := range occurrences {
		formatted = append(formatted, occurrence.Format(time.RFC3339))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, occurrencesResponse{RuleID: ruleID, Occurrences: formatted})
}

type occurrencesResponse struct {
	RuleID      string   `json:"ruleId"`
	Occurrences []string `json:"occurrences"`
}

type ruleRequest struct {
	Name        string   `json:"name"`
	ExtensionID string   `json:"extensionId"`
	Action      string   `json:"action"`
	Time        string   `json:"time"`
	Days        []string `json:"days"`
	StartDate   *string  `json:"startDate"`
	EndDate     *string  `json:"endDate"`
	Active      *bool    `json:"active"`
}

func (r ruleRequest) toInput() application.RuleInput {
	return application.RuleInput{
		Name:        r.Name,
		ExtensionID: r.ExtensionID,
		Action:      r.Action,
		Time:        r.Time,
		Days:        r.Days,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		Active:      r.Active,
	}
}

type activeRequest struct {
	Active *bool `json:"active"`
}

type ruleResponse struct {
	Rule ruleDTO `json:"rule"`
}

type listRulesResponse struct {
	Rules []ruleDTO `json:"rules"`
}

type ruleDTO struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	ExtensionID string   `json:"extensionId"`
	Action      string   `json:"action"`
	Time        string   `json:"time"`
	Days        []string `json:"days"`
	StartDate   *string  `json:"startDate,omitempty"`
	EndDate     *string  `json:"endDate,omitempty"`
	Active      bool     `json:"active"`
}

func toRuleDTO(rule rules.Rule) ruleDTO {
	days := rule.Days
	if days == nil {
		days = []string{}
	}
	return ruleDTO{
		ID:          rule.ID,
		Name:        rule.Name,
		ExtensionID: rule.ExtensionID,
		Action:      string(rule.Action),
		Time:        rule.Time,
		Days:        days,
		StartDate:   rule.StartDate,
		EndDate:     rule.EndDate,
		Active:      rule.Active,
	}
}

func toRuleDTOs(ruleSet []rules.Rule) []ruleDTO {
	if len(ruleSet) == 0 {
		return nil
	}
	out := make([]ruleDTO, 0, len(ruleSet))
	for _, rule := range ruleSet {
		out = append(out, toRuleDTO(rule))
	}
	return out
}
