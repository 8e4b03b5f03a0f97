package handler

import (
	"log/slog"
	"net/http"

	"storyloom/internal/domain/models/style"
	"storyloom/internal/domain/services"
	"storyloom/internal/httputil"
)

// StyleHandler serves one style kind: /api/user/authorstyle or /api/user/bookstyle
type StyleHandler struct {
	styleService services.StyleService
	kind         style.Kind
	logger       *slog.Logger
}

// NewStyleHandler creates a handler bound to one kind
func NewStyleHandler(styleService services.StyleService, kind style.Kind, logger *slog.Logger) *StyleHandler {
	return &StyleHandler{
		styleService: styleService,
		kind:         kind,
		logger:       logger,
	}
}

// ListStyles returns the user's styles of this kind
// GET /api/user/{kind}style
func (h *StyleHandler) ListStyles(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	styles, err := h.styleService.List(r.Context(), userID, h.kind)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, styles)
}

// CreateStyle creates a style; setting isDefault clears the previous default
// POST /api/user/{kind}style
func (h *StyleHandler) CreateStyle(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var fields style.Fields
	if !parseBody(w, r, &fields) {
		return
	}

	created, err := h.styleService.Create(r.Context(), userID, h.kind, &fields)
	if err != nil {
		handleError(w, err)
		return
	}

	h.logger.Debug("style created", "kind", h.kind, "id", created.ID, "user_id", userID)
	httputil.RespondJSON(w, http.StatusCreated, created)
}

// UpdateStyle applies a partial update
// PUT /api/user/{kind}style/{id}
func (h *StyleHandler) UpdateStyle(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var fields style.Fields
	if !parseBody(w, r, &fields) {
		return
	}

	updated, err := h.styleService.Update(r.Context(), userID, h.kind, r.PathValue("id"), &fields)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, updated)
}

// DeleteStyle removes a style. Projects still referencing it fall back to the default.
// DELETE /api/user/{kind}style/{id}
func (h *StyleHandler) DeleteStyle(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.styleService.Delete(r.Context(), userID, h.kind, r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, messageResponse{Message: "style deleted"})
}
