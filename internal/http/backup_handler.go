package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/example/extension-scheduler/internal/backup"
)

type backupService interface {
	Export(ctx context.Context) (backup.Document, error)
	Import(ctx context.Context, doc backup.Document) error
}

type BackupHandler struct {
	service   backupService
	responder responder
	logger    *slog.Logger
}

func NewBackupHandler(service backupService, logger *slog.Logger) *BackupHandler {
	base := defaultLogger(logger)
	return &BackupHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *BackupHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "BackupHandler", operation, attrs...)
}

func (h *BackupHandler) Export(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "Export")
	doc, err := h.service.Export(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "backup export failed", "error", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("keys", len(doc.Storage)).InfoContext(r.Context(), "backup exported")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, doc)
}

func (h *BackupHandler) Import(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var doc backup.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		h.log(r.Context(), "Import", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode backup document", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Import")
	if err := h.service.Import(r.Context(), doc); err != nil {
		logger.ErrorContext(r.Context(), "backup import failed", "error", err)
		h.responder.writeJSON(r.Context(), w, http.StatusUnprocessableEntity, errorResponse{Message: err.Error()})
		return
	}

	logger.With("keys", len(doc.Storage)).InfoContext(r.Context(), "backup imported")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}
