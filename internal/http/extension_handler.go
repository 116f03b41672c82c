package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/extension-scheduler/internal/management"
)

type extensionLister interface {
	ListExtensions(ctx context.Context) ([]management.Extension, error)
}

type extensionVerifier interface {
	Verify(ctx context.Context, extensionID string) (bool, error)
}

type ExtensionHandler struct {
	lister    extensionLister
	verifier  extensionVerifier
	responder responder
	logger    *slog.Logger
}

// NewExtensionHandler builds the handler. verifier may be nil when no
// verified-list URL is configured; verification requests then return 503.
func NewExtensionHandler(lister extensionLister, verifier extensionVerifier, logger *slog.Logger) *ExtensionHandler {
	base := defaultLogger(logger)
	return &ExtensionHandler{lister: lister, verifier: verifier, responder: newResponder(base), logger: base}
}

func (h *ExtensionHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ExtensionHandler", operation, attrs...)
}

func (h *ExtensionHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.lister == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "List")
	extensions, err := h.lister.ListExtensions(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "extension listing failed", "error", err)
		h.responder.writeJSON(r.Context(), w, http.StatusBadGateway, errorResponse{Message: "the extension bridge is not reachable"})
		return
	}

	logger.With("result_count", len(extensions)).InfoContext(r.Context(), "extensions listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listExtensionsResponse{Extensions: toExtensionDTOs(extensions)})
}

func (h *ExtensionHandler) Verification(w http.ResponseWriter, r *http.Request) {
	if h == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	extensionID, ok := ExtensionIDFromContext(r.Context())
	if !ok || strings.TrimSpace(extensionID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidExtensions)
		return
	}

	if h.verifier == nil {
		h.responder.writeJSON(r.Context(), w, http.StatusServiceUnavailable, errorResponse{Message: "extension verification is not configured"})
		return
	}

	logger := h.log(r.Context(), "Verification", "extension_id", extensionID)
	verified, err := h.verifier.Verify(r.Context(), extensionID)
	if err != nil {
		logger.ErrorContext(r.Context(), "verification lookup failed", "error", err)
		h.responder.writeJSON(r.Context(), w, http.StatusBadGateway, errorResponse{Message: "the verified extension list is not reachable"})
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, verificationResponse{
		ExtensionID: extensionID,
		Verified:    verified,
	})
}

type listExtensionsResponse struct {
	Extensions []extensionDTO `json:"extensions"`
}

type extensionDTO struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

type verificationResponse struct {
	ExtensionID string `json:"extensionId"`
	Verified    bool   `json:"verified"`
}

func toExtensionDTOs(extensions []management.Extension) []extensionDTO {
	if len(extensions) == 0 {
		return nil
	}
	out := make([]extensionDTO, 0, len(extensions))
	for _, ext := range extensions {
		out = append(out, extensionDTO{ID: ext.ID, Name: ext.Name, Enabled: ext.Enabled})
	}
	return out
}
