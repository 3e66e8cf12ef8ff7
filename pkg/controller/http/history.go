package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/tagpack/pkg/domain/interfaces"
	"github.com/m-mizutani/tagpack/pkg/domain/model"
)

// HistoryHandler serves published descriptors and archives
type HistoryHandler struct {
	historyUC interfaces.HistoryUseCase
}

// NewHistoryHandler creates a new HistoryHandler
func NewHistoryHandler(historyUC interfaces.HistoryUseCase) *HistoryHandler {
	return &HistoryHandler{historyUC: historyUC}
}

// HandleReleaseHistory answers GET /release-history/{project}/{core}, the URL
// update clients are pointed at
func (h *HistoryHandler) HandleReleaseHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	project := chi.URLParam(r, "project")
	core := chi.URLParam(r, "core")

	data, err := h.historyUC.Lookup(ctx, project, core)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", model.DescriptorMediaType+"; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		ctxlog.From(ctx).Warn("Failed to write descriptor", "error", err)
	}
}

// HandleFile answers GET /files/{project}/{file}
func (h *HistoryHandler) HandleFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	project := chi.URLParam(r, "project")
	file := chi.URLParam(r, "file")

	rc, err := h.historyUC.OpenArchive(ctx, project, file)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", model.ArchiveMediaType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+file+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		ctxlog.From(ctx).Warn("Failed to stream archive", "error", err, "file", file)
	}
}

func (h *HistoryHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, model.ErrNotFound) {
		ctxlog.From(r.Context()).Debug("Not found", "error", err)
		writeError(w, r, model.ErrNotFound, http.StatusNotFound)
		return
	}

	ctxlog.From(r.Context()).Error("Failed to serve release data", "error", err)
	writeError(w, r, errors.New("internal server error"), http.StatusInternalServerError)
}
