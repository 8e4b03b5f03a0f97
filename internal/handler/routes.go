package handler

import "net/http"

// Handlers groups every route handler. Auth is nil when identity is hosted externally.
type Handlers struct {
	Health       *HealthHandler
	Projects     *ProjectHandler
	Documents    *DocumentHandler
	AuthorStyles *StyleHandler
	BookStyles   *StyleHandler
	Writing      *WritingHandler
	Models       *ModelsHandler
	Auth         *AuthHandler
}

// Register mounts all routes on the mux (Go 1.22+ patterns)
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health.Health)

	// Projects
	mux.HandleFunc("GET /api/projects", h.Projects.ListProjects)
	mux.HandleFunc("POST /api/projects", h.Projects.CreateProject)
	mux.HandleFunc("GET /api/projects/{id}", h.Projects.GetProject)
	mux.HandleFunc("PUT /api/projects/{id}", h.Projects.ReplaceProject)
	mux.HandleFunc("DELETE /api/projects/{id}", h.Projects.DeleteProject)
	mux.HandleFunc("PATCH /api/projects/{id}/metadata", h.Projects.PatchMetadata)
	mux.HandleFunc("PATCH /api/projects/{id}/styles", h.Projects.UpdateStyles)

	// Documents
	mux.HandleFunc("POST /api/projects/{id}/documents", h.Documents.AddDocument)
	mux.HandleFunc("GET /api/projects/{id}/documents/{docId}", h.Documents.GetDocument)
	mux.HandleFunc("PUT /api/projects/{id}/documents/{docId}", h.Documents.UpdateDocument)
	mux.HandleFunc("DELETE /api/projects/{id}/documents/{docId}", h.Documents.DeleteDocument)
	mux.HandleFunc("PUT /api/projects/{id}/reorder", h.Documents.Reorder)
	mux.HandleFunc("PATCH /api/projects/{id}/chapters", h.Documents.AddChapters)

	// Styles
	registerStyleRoutes(mux, "/api/user/authorstyle", h.AuthorStyles)
	registerStyleRoutes(mux, "/api/user/bookstyle", h.BookStyles)

	// Writing
	mux.HandleFunc("POST /api/analyze", h.Writing.Analyze)
	mux.HandleFunc("POST /api/autocomplete", h.Writing.Autocomplete)
	mux.HandleFunc("POST /api/nonfiction/outline", h.Writing.NonfictionOutline)
	mux.HandleFunc("POST /api/nonfiction/generate", h.Writing.NonfictionGenerate)

	mux.HandleFunc("GET /api/models", h.Models.GetCapabilities)

	if h.Auth != nil {
		mux.HandleFunc("POST /api/auth/register", h.Auth.Register)
		mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
		mux.HandleFunc("POST /api/auth/refresh", h.Auth.Refresh)
		mux.HandleFunc("POST /api/auth/logout", h.Auth.Logout)
		mux.HandleFunc("GET /api/auth/me", h.Auth.Me)
	}
}

func registerStyleRoutes(mux *http.ServeMux, base string, h *StyleHandler) {
	mux.HandleFunc("GET "+base, h.ListStyles)
	mux.HandleFunc("POST "+base, h.CreateStyle)
	mux.HandleFunc("PUT "+base+"/{id}", h.UpdateStyle)
	mux.HandleFunc("DELETE "+base+"/{id}", h.DeleteStyle)
}
