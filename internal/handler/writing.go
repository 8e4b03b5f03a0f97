package handler

import (
	"log/slog"
	"net/http"

	"storyloom/internal/domain/services"
	"storyloom/internal/httputil"
)

// WritingHandler exposes the completion-backed writing routes
type WritingHandler struct {
	writingService services.WritingService
	logger         *slog.Logger
}

// NewWritingHandler creates a new writing handler
func NewWritingHandler(writingService services.WritingService, logger *slog.Logger) *WritingHandler {
	return &WritingHandler{
		writingService: writingService,
		logger:         logger,
	}
}

// Analyze critiques text and stores the result on the document
// POST /api/analyze
func (h *WritingHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req services.AnalyzeRequest
	if !parseBody(w, r, &req) {
		return
	}

	resp, err := h.writingService.Analyze(r.Context(), userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}

// Autocomplete returns up to three suggestions
// POST /api/autocomplete
func (h *WritingHandler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req services.AutocompleteRequest
	if !parseBody(w, r, &req) {
		return
	}

	resp, err := h.writingService.Autocomplete(r.Context(), userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}

// NonfictionOutline plans chapters for a topic
// POST /api/nonfiction/outline
func (h *WritingHandler) NonfictionOutline(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req services.OutlineRequest
	if !parseBody(w, r, &req) {
		return
	}

	resp, err := h.writingService.NonfictionOutline(r.Context(), userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}

// NonfictionGenerate drafts one chapter
// POST /api/nonfiction/generate
func (h *WritingHandler) NonfictionGenerate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req services.GenerateChapterRequest
	if !parseBody(w, r, &req) {
		return
	}

	resp, err := h.writingService.NonfictionGenerate(r.Context(), userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}
