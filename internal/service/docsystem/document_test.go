package docsystem

import (
	"context"
	"errors"
	"strings"
	"testing"

	"storyloom/internal/config"
	"storyloom/internal/domain"
	models "storyloom/internal/domain/models/docsystem"
	docsysSvc "storyloom/internal/domain/services/docsystem"
	"storyloom/internal/httputil"
)

// unknownDocID is well formed but never assigned
const unknownDocID = "6b1f3c2e-4d5a-4e6f-8a7b-9c0d1e2f3a4b"

func titles(docs []models.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Title
	}
	return out
}

func TestAddDocument(t *testing.T) {
	ctx := context.Background()
	s := newTestServices()
	p := createProject(t, s, "u1", "Book")

	doc, err := s.docs.AddDocument(ctx, p.ID, "u1", &docsysSvc.AddDocumentRequest{Title: "Chapter 2", Content: "<p>Go</p>"})
	if err != nil {
		t.Fatalf("AddDocument() error = %v", err)
	}
	if doc.ID == "" || doc.Title != "Chapter 2" {
		t.Errorf("unexpected document %+v", doc)
	}

	got, _ := s.projects.GetProject(ctx, p.ID, "u1")
	if len(got.Documents) != 2 || got.Documents[1].ID != doc.ID {
		t.Errorf("document not appended: %v", titles(got.Documents))
	}

	if _, err := s.docs.AddDocument(ctx, p.ID, "u1", &docsysSvc.AddDocumentRequest{Title: "   "}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("blank title: error = %v, want ErrValidation", err)
	}
	if _, err := s.docs.AddDocument(ctx, p.ID, "u2", &docsysSvc.AddDocumentRequest{Title: "x"}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("non-owner: error = %v, want ErrNotFound", err)
	}
}

func TestAddBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("appends one document per section in order", func(t *testing.T) {
		s := newTestServices()
		p := createProject(t, s, "u1", "Guide")

		sections := []models.OutlineSection{
			{Title: "Intro", Notes: "Why bees matter"},
			{Title: "Hives"},
			{Title: "Honey", Notes: "  harvest  "},
		}
		docs, err := s.docs.AddBatch(ctx, p.ID, "u1", sections)
		if err != nil {
			t.Fatalf("AddBatch() error = %v", err)
		}
		if len(docs) != 1+len(sections) {
			t.Fatalf("len = %d, want %d", len(docs), 1+len(sections))
		}

		added := docs[1:]
		for i, d := range added {
			if d.Title != sections[i].Title {
				t.Errorf("docs[%d].Title = %q, want %q", i, d.Title, sections[i].Title)
			}
			if d.Content != "" {
				t.Errorf("docs[%d].Content = %q, want empty", i, d.Content)
			}
			if d.AnalysisScore != (models.AnalysisScore{}) {
				t.Errorf("docs[%d] scores not zeroed: %+v", i, d.AnalysisScore)
			}
		}
		if added[0].OutlineNotes == nil || *added[0].OutlineNotes != "Why bees matter" {
			t.Errorf("notes not copied: %v", added[0].OutlineNotes)
		}
		if added[1].OutlineNotes != nil {
			t.Errorf("empty notes should stay nil")
		}
		if *added[2].OutlineNotes != "harvest" {
			t.Errorf("notes not trimmed: %q", *added[2].OutlineNotes)
		}
	})

	t.Run("rejects empty and oversized input", func(t *testing.T) {
		s := newTestServices()
		p := createProject(t, s, "u1", "Guide")

		if _, err := s.docs.AddBatch(ctx, p.ID, "u1", nil); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("empty: error = %v, want ErrValidation", err)
		}

		big := make([]models.OutlineSection, config.MaxBatchDocuments+1)
		for i := range big {
			big[i].Title = "S"
		}
		if _, err := s.docs.AddBatch(ctx, p.ID, "u1", big); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("oversized: error = %v, want ErrValidation", err)
		}
		if s.repo.saves != 0 {
			t.Errorf("rejected batch should not save, saves = %d", s.repo.saves)
		}
	})
}

func TestUpdateDocument(t *testing.T) {
	ctx := context.Background()
	s := newTestServices()
	p := createProject(t, s, "u1", "Book")
	docID := p.Documents[0].ID
	notes := "remember the storm"

	docs, err := s.docs.UpdateDocument(ctx, p.ID, "u1", docID, &docsysSvc.UpdateDocumentRequest{
		Content:      strPtr("<p>It was a dark night.</p>"),
		OutlineNotes: httputil.OptionalString{Present: true, Value: &notes},
	})
	if err != nil {
		t.Fatalf("UpdateDocument() error = %v", err)
	}
	if docs[0].Title != SeedDocumentTitle {
		t.Errorf("absent title changed to %q", docs[0].Title)
	}
	if docs[0].Content != "<p>It was a dark night.</p>" {
		t.Errorf("Content = %q", docs[0].Content)
	}

	// Same update again leaves the document as it was
	again, err := s.docs.UpdateDocument(ctx, p.ID, "u1", docID, &docsysSvc.UpdateDocumentRequest{
		Content: strPtr("<p>It was a dark night.</p>"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if again[0].Content != docs[0].Content || *again[0].OutlineNotes != notes {
		t.Errorf("update not idempotent: %+v", again[0])
	}

	// Explicit null clears notes
	docs, err = s.docs.UpdateDocument(ctx, p.ID, "u1", docID, &docsysSvc.UpdateDocumentRequest{
		OutlineNotes: httputil.OptionalString{Present: true},
	})
	if err != nil {
		t.Fatal(err)
	}
	if docs[0].OutlineNotes != nil {
		t.Errorf("OutlineNotes = %q, want nil", *docs[0].OutlineNotes)
	}

	if _, err := s.docs.UpdateDocument(ctx, p.ID, "u1", unknownDocID, &docsysSvc.UpdateDocumentRequest{Title: strPtr("x")}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown doc: error = %v, want ErrNotFound", err)
	}
	if _, err := s.docs.UpdateDocument(ctx, p.ID, "u1", unknownDocID, &docsysSvc.UpdateDocumentRequest{}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown doc with empty update: error = %v, want ErrNotFound", err)
	}
	if _, err := s.docs.UpdateDocument(ctx, p.ID, "u1", docID, &docsysSvc.UpdateDocumentRequest{Title: strPtr(strings.Repeat("a", config.MaxDocumentTitleLength+1))}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("long title: error = %v, want ErrValidation", err)
	}
}

func TestRemoveDocument(t *testing.T) {
	ctx := context.Background()
	s := newTestServices()
	p := createProject(t, s, "u1", "Book")
	docID := p.Documents[0].ID

	if err := s.docs.RemoveDocument(ctx, p.ID, "u1", unknownDocID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown doc: error = %v, want ErrNotFound", err)
	}

	if err := s.docs.RemoveDocument(ctx, p.ID, "u1", docID); err != nil {
		t.Fatalf("RemoveDocument() error = %v", err)
	}
	got, _ := s.projects.GetProject(ctx, p.ID, "u1")
	if len(got.Documents) != 0 {
		t.Errorf("document still present: %v", titles(got.Documents))
	}

	if _, err := s.docs.GetDocument(ctx, p.ID, "u1", docID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("get removed doc: error = %v, want ErrNotFound", err)
	}
}

func TestReorder(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*testServices, *models.Project) {
		s := newTestServices()
		p := createProject(t, s, "u1", "Book")
		docs := []models.Document{}
		if _, err := s.projects.ReplaceProject(ctx, p.ID, "u1", &docsysSvc.ReplaceProjectRequest{Title: strPtr("Book"), Documents: &docs}); err != nil {
			t.Fatal(err)
		}
		if _, err := s.docs.AddBatch(ctx, p.ID, "u1", []models.OutlineSection{{Title: "A"}, {Title: "B"}, {Title: "C"}}); err != nil {
			t.Fatal(err)
		}
		p, _ = s.projects.GetProject(ctx, p.ID, "u1")
		return s, p
	}

	t.Run("stores submitted order", func(t *testing.T) {
		s, p := setup(t)
		d := p.Documents
		got, err := s.docs.Reorder(ctx, p.ID, "u1", []models.Document{d[2], d[0], d[1]})
		if err != nil {
			t.Fatalf("Reorder() error = %v", err)
		}
		if want := "C,A,B"; strings.Join(titles(got.Documents), ",") != want {
			t.Errorf("order = %v, want %s", titles(got.Documents), want)
		}
	})

	t.Run("keeps stored bodies", func(t *testing.T) {
		s, p := setup(t)
		stale := append([]models.Document(nil), p.Documents...)

		if _, err := s.docs.UpdateDocument(ctx, p.ID, "u1", stale[0].ID, &docsysSvc.UpdateDocumentRequest{Content: strPtr("<p>autosaved paragraph</p>")}); err != nil {
			t.Fatal(err)
		}

		stale[1].Title = ""
		stale[2].Content = "<p>old text</p>"
		got, err := s.docs.Reorder(ctx, p.ID, "u1", []models.Document{stale[1], stale[2], stale[0]})
		if err != nil {
			t.Fatalf("Reorder() error = %v", err)
		}
		if want := "B,C,A"; strings.Join(titles(got.Documents), ",") != want {
			t.Errorf("order = %v, want %s", titles(got.Documents), want)
		}

		doc, err := s.docs.GetDocument(ctx, p.ID, "u1", stale[0].ID)
		if err != nil {
			t.Fatal(err)
		}
		if doc.Content != "<p>autosaved paragraph</p>" {
			t.Errorf("content = %q, edit made after the client read was lost", doc.Content)
		}
		if got.Documents[1].Content != "" {
			t.Errorf("submitted body stored: %q", got.Documents[1].Content)
		}
	})

	invalid := []struct {
		name  string
		build func(d []models.Document) []models.Document
	}{
		{"empty", func(d []models.Document) []models.Document { return nil }},
		{"dropped document", func(d []models.Document) []models.Document { return d[:2] }},
		{"duplicate", func(d []models.Document) []models.Document { return []models.Document{d[0], d[0], d[1]} }},
		{"unknown id", func(d []models.Document) []models.Document {
			return []models.Document{d[0], d[1], {ID: "stranger", Title: "X"}}
		}},
	}

	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			s, p := setup(t)
			_, err := s.docs.Reorder(ctx, p.ID, "u1", tt.build(p.Documents))
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
			after, _ := s.projects.GetProject(ctx, p.ID, "u1")
			if strings.Join(titles(after.Documents), ",") != "A,B,C" {
				t.Errorf("order changed on rejected reorder: %v", titles(after.Documents))
			}
		})
	}
}

func TestSetAnalysis(t *testing.T) {
	ctx := context.Background()
	s := newTestServices()
	p := createProject(t, s, "u1", "Book")
	docID := p.Documents[0].ID
	html := `<p>Solid</p><script>x()</script>`

	doc, err := s.docs.SetAnalysis(ctx, p.ID, "u1", docID, &docsysSvc.DocumentAnalysis{
		AnalysisData:  models.AnalysisData{Summary: "Good start", Pacing: "Brisk"},
		AnalysisScore: models.AnalysisScore{Overall: 7, Depth: models.DepthScores{Pacing: 8}},
		AnalysisHTML:  &html,
	})
	if err != nil {
		t.Fatalf("SetAnalysis() error = %v", err)
	}
	if doc.AnalysisScore.Overall != 7 || doc.AnalysisData.Pacing != "Brisk" {
		t.Errorf("analysis not applied: %+v", doc)
	}
	if doc.AnalysisHTML == nil || strings.Contains(*doc.AnalysisHTML, "script") {
		t.Errorf("analysis html not sanitized: %v", doc.AnalysisHTML)
	}

	stored, err := s.docs.GetDocument(ctx, p.ID, "u1", docID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.AnalysisScore.Depth.Pacing != 8 {
		t.Errorf("analysis not persisted: %+v", stored.AnalysisScore)
	}
}

// Create "Novel A", add three chapters from an outline, reorder them and read back.
func TestNovelScenario(t *testing.T) {
	ctx := context.Background()
	s := newTestServices()

	p := createProject(t, s, "author", "Novel A")
	empty := []models.Document{}
	if _, err := s.projects.ReplaceProject(ctx, p.ID, "author", &docsysSvc.ReplaceProjectRequest{Title: strPtr("Novel A"), Documents: &empty}); err != nil {
		t.Fatal(err)
	}

	docs, err := s.docs.AddBatch(ctx, p.ID, "author", []models.OutlineSection{{Title: "Ch1"}, {Title: "Ch2"}, {Title: "Ch3"}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.docs.Reorder(ctx, p.ID, "author", []models.Document{docs[2], docs[0], docs[1]}); err != nil {
		t.Fatal(err)
	}

	got, err := s.projects.GetProject(ctx, p.ID, "author")
	if err != nil {
		t.Fatal(err)
	}
	if want := "Ch3,Ch1,Ch2"; strings.Join(titles(got.Documents), ",") != want {
		t.Errorf("titles = %v, want %s", titles(got.Documents), want)
	}
}

func TestMalformedDocumentIDs(t *testing.T) {
	ctx := context.Background()
	s := newTestServices()
	p := createProject(t, s, "u1", "Book")
	docID := p.Documents[0].ID

	tests := []struct {
		name string
		call func(projectID, docID string) error
	}{
		{"add", func(pid, _ string) error {
			_, err := s.docs.AddDocument(ctx, pid, "u1", &docsysSvc.AddDocumentRequest{Title: "Ch"})
			return err
		}},
		{"batch", func(pid, _ string) error {
			_, err := s.docs.AddBatch(ctx, pid, "u1", []models.OutlineSection{{Title: "Ch"}})
			return err
		}},
		{"get", func(pid, did string) error {
			_, err := s.docs.GetDocument(ctx, pid, "u1", did)
			return err
		}},
		{"update", func(pid, did string) error {
			_, err := s.docs.UpdateDocument(ctx, pid, "u1", did, &docsysSvc.UpdateDocumentRequest{Title: strPtr("T")})
			return err
		}},
		{"remove", func(pid, did string) error {
			return s.docs.RemoveDocument(ctx, pid, "u1", did)
		}},
		{"reorder", func(pid, _ string) error {
			_, err := s.docs.Reorder(ctx, pid, "u1", p.Documents)
			return err
		}},
		{"analysis", func(pid, did string) error {
			_, err := s.docs.SetAnalysis(ctx, pid, "u1", did, &docsysSvc.DocumentAnalysis{})
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name+" bad project id", func(t *testing.T) {
			before := s.repo.gets
			if err := tt.call("not-a-uuid", docID); !errors.Is(err, domain.ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
			if s.repo.gets != before {
				t.Errorf("store read %d times for a malformed id", s.repo.gets-before)
			}
		})
	}

	for _, tt := range tests {
		if tt.name == "add" || tt.name == "batch" || tt.name == "reorder" {
			continue
		}
		t.Run(tt.name+" bad document id", func(t *testing.T) {
			if err := tt.call(p.ID, "abc"); !errors.Is(err, domain.ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
		})
	}
}
