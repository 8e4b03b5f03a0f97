package docsystem

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"storyloom/internal/domain"
	models "storyloom/internal/domain/models/docsystem"
	"storyloom/internal/service/docsystem/converter"
)

// fakeProjectRepo is an in-memory ProjectRepository with the same
// owner-scoping and version semantics as the real stores.
type fakeProjectRepo struct {
	mu       sync.Mutex
	projects map[string]*models.Project

	// conflicts makes the next n saves fail as if another writer won
	conflicts int
	saves     int
	gets      int
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: make(map[string]*models.Project)}
}

func clone(p *models.Project) *models.Project {
	data, err := json.Marshal(p)
	if err != nil {
		panic(err)
	}
	var out models.Project
	if err := json.Unmarshal(data, &out); err != nil {
		panic(err)
	}
	out.Normalize()
	return &out
}

func (r *fakeProjectRepo) Create(_ context.Context, p *models.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.projects[p.ID]; ok {
		return &domain.ConflictError{Message: "exists", ResourceType: "project", ResourceID: p.ID}
	}
	p.Normalize()
	p.Version = 1
	r.projects[p.ID] = clone(p)
	return nil
}

func (r *fakeProjectRepo) GetByID(_ context.Context, id, userID string) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++

	p, ok := r.projects[id]
	if !ok || p.UserID != userID {
		return nil, fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
	}
	return clone(p), nil
}

func (r *fakeProjectRepo) List(_ context.Context, userID string) ([]models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Project
	for _, p := range r.projects {
		if p.UserID == userID {
			out = append(out, *clone(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *fakeProjectRepo) Save(_ context.Context, p *models.Project, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++

	stored, ok := r.projects[p.ID]
	if !ok || stored.UserID != p.UserID {
		return fmt.Errorf("project %s: %w", p.ID, domain.ErrNotFound)
	}
	if r.conflicts > 0 {
		r.conflicts--
		stored.Version++
		return fmt.Errorf("project %s: %w", p.ID, domain.ErrVersionConflict)
	}
	if stored.Version != expectedVersion {
		return fmt.Errorf("project %s: %w", p.ID, domain.ErrVersionConflict)
	}

	p.Version = expectedVersion + 1
	r.projects[p.ID] = clone(p)
	return nil
}

func (r *fakeProjectRepo) Delete(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.projects[id]
	if !ok || p.UserID != userID {
		return fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
	}
	delete(r.projects, id)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testServices struct {
	repo     *fakeProjectRepo
	projects *projectService
	docs     *documentService
}

func newTestServices() *testServices {
	repo := newFakeProjectRepo()
	html := converter.NewHTMLConverter()
	return &testServices{
		repo:     repo,
		projects: NewProjectService(repo, html, testLogger()).(*projectService),
		docs:     NewDocumentService(repo, html, testLogger()).(*documentService),
	}
}
