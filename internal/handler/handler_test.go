package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storyloom/internal/domain"
	"storyloom/internal/domain/models"
	docmodels "storyloom/internal/domain/models/docsystem"
	"storyloom/internal/domain/models/style"
	"storyloom/internal/domain/services"
	docsysSvc "storyloom/internal/domain/services/docsystem"
	"storyloom/internal/middleware"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeProjects counts every call so tests can prove no store access happened
type fakeProjects struct {
	docsysSvc.ProjectService
	calls   int
	project *docmodels.Project
	err     error
}

func (f *fakeProjects) ListProjects(ctx context.Context, userID string) ([]docmodels.Project, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []docmodels.Project{*f.project}, nil
}

func (f *fakeProjects) GetProject(ctx context.Context, id, userID string) (*docmodels.Project, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if id != f.project.ID || userID != f.project.UserID {
		return nil, fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
	}
	return f.project, nil
}

func (f *fakeProjects) CreateProject(ctx context.Context, req *docsysSvc.CreateProjectRequest) (*docmodels.Project, error) {
	f.calls++
	return &docmodels.Project{ID: "new", UserID: req.UserID, Title: req.Title}, nil
}

type fakeDocuments struct {
	docsysSvc.DocumentService
	calls int
	err   error
}

func (f *fakeDocuments) RemoveDocument(ctx context.Context, projectID, userID, docID string) error {
	f.calls++
	return f.err
}

func (f *fakeDocuments) Reorder(ctx context.Context, projectID, userID string, documents []docmodels.Document) (*docmodels.Project, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &docmodels.Project{ID: projectID, UserID: userID, Documents: documents}, nil
}

type fakeStyles struct {
	services.StyleService
	calls int
	kinds []style.Kind
}

func (f *fakeStyles) List(ctx context.Context, userID string, kind style.Kind) ([]style.Style, error) {
	f.calls++
	f.kinds = append(f.kinds, kind)
	return []style.Style{}, nil
}

type fakeWriting struct {
	services.WritingService
	calls int
	err   error
}

func (f *fakeWriting) Autocomplete(ctx context.Context, userID string, req *services.AutocompleteRequest) (*services.AutocompleteResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &services.AutocompleteResponse{Suggestions: []string{"one"}, Status: "ok"}, nil
}

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(ctx context.Context) error { return p.err }

type tokenVerifier struct{}

func (tokenVerifier) VerifyToken(token string) (*models.Identity, error) {
	if token != "token-u1" {
		return nil, domain.ErrUnauthorized
	}
	return &models.Identity{UserID: "u1"}, nil
}

func (tokenVerifier) Close() error { return nil }

type testServer struct {
	projects *fakeProjects
	docs     *fakeDocuments
	styles   *fakeStyles
	writing  *fakeWriting
	handler  http.Handler
}

func newTestServer() *testServer {
	logger := discardLogger()
	ts := &testServer{
		projects: &fakeProjects{project: &docmodels.Project{ID: "p1", UserID: "u1", Title: "Novel"}},
		docs:     &fakeDocuments{},
		styles:   &fakeStyles{},
		writing:  &fakeWriting{},
	}

	h := &Handlers{
		Health:       NewHealthHandler(fakePinger{}, logger),
		Projects:     NewProjectHandler(ts.projects, logger),
		Documents:    NewDocumentHandler(ts.docs, logger),
		AuthorStyles: NewStyleHandler(ts.styles, style.KindAuthor, logger),
		BookStyles:   NewStyleHandler(ts.styles, style.KindBook, logger),
		Writing:      NewWritingHandler(ts.writing, logger),
	}
	mux := http.NewServeMux()
	h.Register(mux)
	ts.handler = middleware.AuthMiddleware(tokenVerifier{}, logger)(mux)
	return ts
}

func (ts *testServer) do(method, path, body, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) totalCalls() int {
	return ts.projects.calls + ts.docs.calls + ts.styles.calls + ts.writing.calls
}

func TestUnauthenticatedRequestsNeverReachServices(t *testing.T) {
	routes := []struct{ method, path, body string }{
		{http.MethodGet, "/api/projects", ""},
		{http.MethodPost, "/api/projects", `{"title":"x"}`},
		{http.MethodGet, "/api/projects/p1", ""},
		{http.MethodDelete, "/api/projects/p1/documents/d1", ""},
		{http.MethodPut, "/api/projects/p1/reorder", `{"documents":[]}`},
		{http.MethodGet, "/api/user/authorstyle", ""},
		{http.MethodPost, "/api/autocomplete", `{"text":"x","mode":"continue"}`},
	}

	for _, tokenCase := range []string{"", "forged"} {
		for _, rt := range routes {
			t.Run(rt.method+" "+rt.path+" token="+tokenCase, func(t *testing.T) {
				ts := newTestServer()
				rec := ts.do(rt.method, rt.path, rt.body, tokenCase)
				if rec.Code != http.StatusUnauthorized {
					t.Fatalf("status = %d, want 401", rec.Code)
				}
				if ts.totalCalls() != 0 {
					t.Fatalf("services called %d times before auth", ts.totalCalls())
				}
			})
		}
	}
}

func TestHealthIsPublic(t *testing.T) {
	ts := newTestServer()
	rec := ts.do(http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestHealthReportsStoreFailure(t *testing.T) {
	h := NewHealthHandler(fakePinger{err: errors.New("connection refused")}, discardLogger())
	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestProjectRoutes(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodGet, "/api/projects/p1", "", "token-u1")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", rec.Code)
	}
	var got docmodels.Project
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Title != "Novel" {
		t.Errorf("title = %q", got.Title)
	}

	rec = ts.do(http.MethodGet, "/api/projects/other", "", "token-u1")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown project status = %d, want 404", rec.Code)
	}

	rec = ts.do(http.MethodPost, "/api/projects", "", "token-u1")
	if rec.Code != http.StatusCreated {
		t.Errorf("create without body status = %d, want 201", rec.Code)
	}

	rec = ts.do(http.MethodPost, "/api/projects", "{not json", "token-u1")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad json status = %d, want 400", rec.Code)
	}
}

func TestDocumentRoutes(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodDelete, "/api/projects/p1/documents/d1", "", "token-u1")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"message"`) {
		t.Errorf("delete body = %s", rec.Body.String())
	}

	rec = ts.do(http.MethodPut, "/api/projects/p1/reorder", `{"documents":[{"id":"d2"},{"id":"d1"}]}`, "token-u1")
	if rec.Code != http.StatusOK {
		t.Fatalf("reorder status = %d, want 200", rec.Code)
	}
	var body struct {
		Message string            `json:"message"`
		Project docmodels.Project `json:"project"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Message == "" || len(body.Project.Documents) != 2 || body.Project.Documents[0].ID != "d2" {
		t.Errorf("reorder body = %+v", body)
	}

	ts.docs.err = fmt.Errorf("document not deleted: %w", domain.ErrNotFound)
	rec = ts.do(http.MethodDelete, "/api/projects/p1/documents/missing", "", "token-u1")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing doc status = %d, want 404", rec.Code)
	}
}

func TestStyleRoutesBindKind(t *testing.T) {
	ts := newTestServer()
	ts.do(http.MethodGet, "/api/user/authorstyle", "", "token-u1")
	ts.do(http.MethodGet, "/api/user/bookstyle", "", "token-u1")

	if len(ts.styles.kinds) != 2 || ts.styles.kinds[0] != style.KindAuthor || ts.styles.kinds[1] != style.KindBook {
		t.Fatalf("kinds = %v", ts.styles.kinds)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", fmt.Errorf("%w: text is required", domain.ErrValidation), http.StatusBadRequest},
		{"not found", fmt.Errorf("project p1: %w", domain.ErrNotFound), http.StatusNotFound},
		{"version conflict", fmt.Errorf("save: %w", domain.ErrVersionConflict), http.StatusConflict},
		{"conflict", &domain.ConflictError{Message: "email taken", ResourceType: "user"}, http.StatusConflict},
		{"upstream", fmt.Errorf("autocomplete: %w", domain.ErrUpstream), http.StatusBadGateway},
		{"timeout", fmt.Errorf("autocomplete: %w", domain.ErrUpstreamTimeout), http.StatusGatewayTimeout},
		{"internal", errors.New("pool exhausted"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer()
			ts.writing.err = tt.err

			rec := ts.do(http.MethodPost, "/api/autocomplete", `{"text":"x","mode":"continue"}`, "token-u1")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body map[string]interface{}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if int(body["status"].(float64)) != tt.wantStatus {
				t.Errorf("body status = %v", body["status"])
			}
			if tt.wantStatus == http.StatusInternalServerError && strings.Contains(rec.Body.String(), "pool exhausted") {
				t.Errorf("internal error leaked: %s", rec.Body.String())
			}
		})
	}
}

func TestMalformedIDReturnsBadRequest(t *testing.T) {
	ts := newTestServer()
	ts.projects.err = fmt.Errorf("%w: id: must be a valid UUID", domain.ErrValidation)

	rec := ts.do(http.MethodGet, "/api/projects/not-a-uuid", "", "token-u1")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
