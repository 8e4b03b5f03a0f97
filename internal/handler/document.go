package handler

import (
	"log/slog"
	"net/http"

	models "storyloom/internal/domain/models/docsystem"
	docsysSvc "storyloom/internal/domain/services/docsystem"
	"storyloom/internal/httputil"
)

// DocumentHandler handles requests for the documents embedded in a project
type DocumentHandler struct {
	docService docsysSvc.DocumentService
	logger     *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(docService docsysSvc.DocumentService, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		docService: docService,
		logger:     logger,
	}
}

// reorderRequest is the body of PUT /api/projects/{id}/reorder
type reorderRequest struct {
	Documents []models.Document `json:"documents"`
}

// reorderResponse confirms a reorder
type reorderResponse struct {
	Message string          `json:"message"`
	Project *models.Project `json:"project"`
}

// chaptersRequest is the body of PATCH /api/projects/{id}/chapters
type chaptersRequest struct {
	Outline []models.OutlineSection `json:"outline"`
}

// chaptersResponse returns the project's documents after the outline was appended
type chaptersResponse struct {
	Message   string            `json:"message"`
	Documents []models.Document `json:"documents"`
}

// AddDocument appends a document to a project
// POST /api/projects/{id}/documents
func (h *DocumentHandler) AddDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req docsysSvc.AddDocumentRequest
	if !parseBody(w, r, &req) {
		return
	}

	doc, err := h.docService.AddDocument(r.Context(), r.PathValue("id"), userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// GetDocument returns one document
// GET /api/projects/{id}/documents/{docId}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	doc, err := h.docService.GetDocument(r.Context(), r.PathValue("id"), userID, r.PathValue("docId"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// UpdateDocument applies a partial update and returns the project's document list
// PUT /api/projects/{id}/documents/{docId}
func (h *DocumentHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req docsysSvc.UpdateDocumentRequest
	if !parseBody(w, r, &req) {
		return
	}

	docs, err := h.docService.UpdateDocument(r.Context(), r.PathValue("id"), userID, r.PathValue("docId"), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, docs)
}

// DeleteDocument removes one document
// DELETE /api/projects/{id}/documents/{docId}
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.docService.RemoveDocument(r.Context(), r.PathValue("id"), userID, r.PathValue("docId")); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, messageResponse{Message: "document deleted"})
}

// Reorder stores the submitted document order
// PUT /api/projects/{id}/reorder
func (h *DocumentHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req reorderRequest
	if !parseBody(w, r, &req) {
		return
	}

	project, err := h.docService.Reorder(r.Context(), r.PathValue("id"), userID, req.Documents)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, reorderResponse{Message: "documents reordered", Project: project})
}

// AddChapters appends one empty document per outline section
// PATCH /api/projects/{id}/chapters
func (h *DocumentHandler) AddChapters(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req chaptersRequest
	if !parseBody(w, r, &req) {
		return
	}

	docs, err := h.docService.AddBatch(r.Context(), r.PathValue("id"), userID, req.Outline)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, chaptersResponse{Message: "chapters created", Documents: docs})
}
