package http

import (
	"context"
	"log/slog"

	"github.com/example/extension-scheduler/internal/logging"
)

type contextKey string

const (
	ruleIDContextKey      contextKey = "rule_id"
	extensionIDContextKey contextKey = "extension_id"
)

// ContextWithLogger attaches a request-scoped logger to the context.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext extracts a logger previously attached to the context.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}

// ContextWithRuleID injects the rule identifier resolved from the request path.
func ContextWithRuleID(ctx context.Context, ruleID string) context.Context {
	return context.WithValue(ctx, ruleIDContextKey, ruleID)
}

// RuleIDFromContext extracts a rule identifier previously associated with the context.
func RuleIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ruleIDContextKey).(string)
	return id, ok
}

// ContextWithExtensionID injects the extension identifier resolved from the request path.
func ContextWithExtensionID(ctx context.Context, extensionID string) context.Context {
	return context.WithValue(ctx, extensionIDContextKey, extensionID)
}

// ExtensionIDFromContext extracts an extension identifier previously associated with the context.
func ExtensionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(extensionIDContextKey).(string)
	return id, ok
}
