package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"storyloom/internal/domain"
	"storyloom/internal/domain/models/style"
	"storyloom/internal/domain/repositories"
	"storyloom/internal/vocabulary"
)

// fakeStyleRepo enforces one default per user and kind the way the partial
// unique index does.
type fakeStyleRepo struct {
	mu     sync.Mutex
	styles map[string]style.Style
}

func newFakeStyleRepo() *fakeStyleRepo {
	return &fakeStyleRepo{styles: make(map[string]style.Style)}
}

func copyStyle(s style.Style) style.Style {
	attrs := make(map[string]string, len(s.Attributes))
	for k, v := range s.Attributes {
		attrs[k] = v
	}
	s.Attributes = attrs
	return s
}

func (r *fakeStyleRepo) checkDefault(s *style.Style) error {
	if !s.DefaultStyle {
		return nil
	}
	for id, other := range r.styles {
		if id != s.ID && other.UserID == s.UserID && other.Kind == s.Kind && other.DefaultStyle {
			return fmt.Errorf("duplicate default: %w", domain.ErrVersionConflict)
		}
	}
	return nil
}

func (r *fakeStyleRepo) Create(_ context.Context, s *style.Style) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkDefault(s); err != nil {
		return err
	}
	r.styles[s.ID] = copyStyle(*s)
	return nil
}

func (r *fakeStyleRepo) GetByID(_ context.Context, kind style.Kind, id, userID string) (*style.Style, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.styles[id]
	if !ok || s.UserID != userID || s.Kind != kind {
		return nil, fmt.Errorf("style %s: %w", id, domain.ErrNotFound)
	}
	c := copyStyle(s)
	return &c, nil
}

func (r *fakeStyleRepo) List(_ context.Context, kind style.Kind, userID string) ([]style.Style, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []style.Style
	for _, s := range r.styles {
		if s.UserID == userID && s.Kind == kind {
			out = append(out, copyStyle(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *fakeStyleRepo) Update(_ context.Context, s *style.Style) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.styles[s.ID]
	if !ok || existing.UserID != s.UserID {
		return fmt.Errorf("style %s: %w", s.ID, domain.ErrNotFound)
	}
	if err := r.checkDefault(s); err != nil {
		return err
	}
	r.styles[s.ID] = copyStyle(*s)
	return nil
}

func (r *fakeStyleRepo) Delete(_ context.Context, kind style.Kind, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.styles[id]
	if !ok || s.UserID != userID || s.Kind != kind {
		return fmt.Errorf("style %s: %w", id, domain.ErrNotFound)
	}
	delete(r.styles, id)
	return nil
}

func (r *fakeStyleRepo) ClearDefault(_ context.Context, kind style.Kind, userID, exceptID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.styles {
		if id != exceptID && s.UserID == userID && s.Kind == kind && s.DefaultStyle {
			s.DefaultStyle = false
			r.styles[id] = s
		}
	}
	return nil
}

// put stores a record directly, bypassing the default check
func (r *fakeStyleRepo) put(s style.Style) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.styles[s.ID] = s
}

type passthroughTx struct{ calls int }

func (tx *passthroughTx) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	tx.calls++
	return fn(ctx)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStyleService() (*StyleService, *fakeStyleRepo, *passthroughTx) {
	repo := newFakeStyleRepo()
	tx := &passthroughTx{}
	svc := NewStyleService(repo, tx, vocabulary.Default(), discardLogger()).(*StyleService)
	return svc, repo, tx
}

func boolPtr(b bool) *bool       { return &b }
func stringPtr(s string) *string { return &s }

// fullFields returns a valid create payload using the vocabulary defaults
func fullFields(kind style.Kind, name string, def bool) *style.Fields {
	return &style.Fields{
		Name:         stringPtr(name),
		DefaultStyle: boolPtr(def),
		Attributes:   vocabulary.Default().Defaults(kind),
	}
}

func TestCreateStyleValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestStyleService()

	missing := fullFields(style.KindAuthor, "Partial", false)
	for k := range missing.Attributes {
		delete(missing.Attributes, k)
		break
	}

	badValue := fullFields(style.KindAuthor, "Odd", false)
	badValue.Attributes["tone"] = "Sarcastic-ish"

	unknown := fullFields(style.KindAuthor, "Extra", false)
	unknown.Attributes["font"] = "Serif"

	tests := []struct {
		name   string
		kind   style.Kind
		fields *style.Fields
	}{
		{"missing name", style.KindAuthor, &style.Fields{Attributes: vocabulary.Default().Defaults(style.KindAuthor)}},
		{"blank name", style.KindAuthor, fullFields(style.KindAuthor, "   ", false)},
		{"missing category", style.KindAuthor, missing},
		{"value outside vocabulary", style.KindAuthor, badValue},
		{"unknown field", style.KindAuthor, unknown},
		{"unknown kind", style.Kind("poem"), fullFields(style.KindAuthor, "x", false)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, "u1", tt.kind, tt.fields); !errors.Is(err, domain.ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestCreateStyleSingleDefault(t *testing.T) {
	ctx := context.Background()
	svc, _, tx := newTestStyleService()

	if _, err := svc.Create(ctx, "u1", style.KindBook, fullFields(style.KindBook, "First", true)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	time.Sleep(time.Millisecond)
	second, err := svc.Create(ctx, "u1", style.KindBook, fullFields(style.KindBook, "Second", true))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if tx.calls != 2 {
		t.Errorf("default switch should run in a transaction, calls = %d", tx.calls)
	}

	// Another user's default is untouched
	if _, err := svc.Create(ctx, "u2", style.KindBook, fullFields(style.KindBook, "Theirs", true)); err != nil {
		t.Fatal(err)
	}

	styles, err := svc.List(ctx, "u1", style.KindBook)
	if err != nil {
		t.Fatal(err)
	}
	defaults := 0
	for _, s := range styles {
		if s.DefaultStyle {
			defaults++
			if s.ID != second.ID {
				t.Errorf("default is %s, want %s", s.ID, second.ID)
			}
		}
	}
	if defaults != 1 {
		t.Errorf("defaults = %d, want 1", defaults)
	}
}

func TestUpdateStyleMakesDefault(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestStyleService()

	a, _ := svc.Create(ctx, "u1", style.KindAuthor, fullFields(style.KindAuthor, "A", true))
	b, _ := svc.Create(ctx, "u1", style.KindAuthor, fullFields(style.KindAuthor, "B", false))

	got, err := svc.Update(ctx, "u1", style.KindAuthor, b.ID, &style.Fields{DefaultStyle: boolPtr(true)})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !got.DefaultStyle || got.Name != "B" {
		t.Errorf("unexpected style %+v", got)
	}

	old, err := svc.Resolve(ctx, "u1", style.KindAuthor, &a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if old.DefaultStyle {
		t.Error("previous default should be cleared")
	}

	if _, err := svc.Update(ctx, "u2", style.KindAuthor, b.ID, &style.Fields{Name: stringPtr("mine")}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("non-owner update: error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Update(ctx, "u1", style.KindAuthor, b.ID, &style.Fields{Attributes: map[string]string{"tone": "Shouty"}}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("bad value: error = %v, want ErrValidation", err)
	}
}

func TestListReconcilesDefaults(t *testing.T) {
	svc, repo, _ := newTestStyleService()
	now := time.Now()

	repo.put(style.Style{ID: "old", UserID: "u1", Kind: style.KindAuthor, Name: "Old", DefaultStyle: true, UpdatedAt: now.Add(-time.Hour)})
	repo.put(style.Style{ID: "new", UserID: "u1", Kind: style.KindAuthor, Name: "New", DefaultStyle: true, UpdatedAt: now})
	repo.put(style.Style{ID: "plain", UserID: "u1", Kind: style.KindAuthor, Name: "Plain", UpdatedAt: now.Add(-2 * time.Hour)})

	styles, err := svc.List(context.Background(), "u1", style.KindAuthor)
	if err != nil {
		t.Fatal(err)
	}

	for _, s := range styles {
		if s.DefaultStyle != (s.ID == "new") {
			t.Errorf("style %s DefaultStyle = %v", s.ID, s.DefaultStyle)
		}
		// Sparse records come back with every category filled
		for _, cat := range vocabulary.Default().Categories(style.KindAuthor) {
			if s.Get(cat.Key) == "" {
				t.Errorf("style %s missing %s after normalization", s.ID, cat.Key)
			}
		}
	}
}

func TestResolveStyle(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestStyleService()
	vocab := vocabulary.Default()

	fallback, err := svc.Resolve(ctx, "u1", style.KindBook, nil)
	if err != nil {
		t.Fatal(err)
	}
	for k, v := range vocab.Defaults(style.KindBook) {
		if fallback.Get(k) != v {
			t.Errorf("fallback %s = %q, want %q", k, fallback.Get(k), v)
		}
	}

	def, _ := svc.Create(ctx, "u1", style.KindBook, fullFields(style.KindBook, "House", true))
	other, _ := svc.Create(ctx, "u1", style.KindBook, fullFields(style.KindBook, "Other", false))

	tests := []struct {
		name string
		ref  *string
		want string
	}{
		{"explicit reference", &other.ID, other.ID},
		{"dangling reference uses default", stringPtr("deleted-id"), def.ID},
		{"no reference uses default", nil, def.ID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Resolve(ctx, "u1", style.KindBook, tt.ref)
			if err != nil {
				t.Fatal(err)
			}
			if got.ID != tt.want {
				t.Errorf("resolved %q, want %q", got.ID, tt.want)
			}
		})
	}
}

func TestDeleteStyle(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestStyleService()
	st, _ := svc.Create(ctx, "u1", style.KindAuthor, fullFields(style.KindAuthor, "Gone", false))

	if err := svc.Delete(ctx, "u2", style.KindAuthor, st.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("non-owner delete: error = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, "u1", style.KindAuthor, st.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, "u1", style.KindAuthor, st.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second delete: error = %v, want ErrNotFound", err)
	}
}

func TestMalformedStyleID(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestStyleService()

	for _, id := range []string{"abc", "", "old"} {
		if _, err := svc.Update(ctx, "u1", style.KindBook, id, &style.Fields{Name: stringPtr("x")}); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("Update(%q): error = %v, want ErrValidation", id, err)
		}
		if err := svc.Delete(ctx, "u1", style.KindBook, id); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("Delete(%q): error = %v, want ErrValidation", id, err)
		}
	}
}
