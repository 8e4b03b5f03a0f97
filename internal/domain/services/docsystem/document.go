package docsystem

import (
	"context"

	"storyloom/internal/domain/models/docsystem"
	"storyloom/internal/httputil"
)

// AddDocumentRequest appends one document to a project
type AddDocumentRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// UpdateDocumentRequest is a typed partial update. Nil or absent fields are untouched.
type UpdateDocumentRequest struct {
	Title        *string                          `json:"title,omitempty"`
	Content      *string                          `json:"content,omitempty"`
	OutlineNotes httputil.OptionalString          `json:"outlineNotes"`
	AnalysisHTML httputil.OptionalString          `json:"analysisHtml"`
	Highlights   *map[string]docsystem.Highlight `json:"highlights,omitempty"`
}

// IsEmpty reports whether the request changes nothing
func (r *UpdateDocumentRequest) IsEmpty() bool {
	return r.Title == nil && r.Content == nil && !r.OutlineNotes.Present &&
		!r.AnalysisHTML.Present && r.Highlights == nil
}

// DocumentAnalysis is the result of one analysis call, written onto a document
type DocumentAnalysis struct {
	AnalysisData  docsystem.AnalysisData  `json:"analysisData"`
	AnalysisScore docsystem.AnalysisScore `json:"analysisScore"`
	AnalysisHTML  *string                 `json:"analysisHtml,omitempty"`
}

// DocumentService manages the documents embedded in a project.
// Every operation checks project ownership first.
type DocumentService interface {
	AddDocument(ctx context.Context, projectID, userID string, req *AddDocumentRequest) (*docsystem.Document, error)

	// AddBatch appends one empty document per outline section, in order, and
	// returns the project's full document list
	AddBatch(ctx context.Context, projectID, userID string, sections []docsystem.OutlineSection) ([]docsystem.Document, error)

	GetDocument(ctx context.Context, projectID, userID, docID string) (*docsystem.Document, error)

	// UpdateDocument returns the project's full document list after the change
	UpdateDocument(ctx context.Context, projectID, userID, docID string, req *UpdateDocumentRequest) ([]docsystem.Document, error)

	RemoveDocument(ctx context.Context, projectID, userID, docID string) error

	// Reorder replaces the document order. The submission must be a permutation
	// of the existing document ids.
	Reorder(ctx context.Context, projectID, userID string, documents []docsystem.Document) (*docsystem.Project, error)

	// SetAnalysis overwrites the analysis fields of one document
	SetAnalysis(ctx context.Context, projectID, userID, docID string, analysis *DocumentAnalysis) (*docsystem.Document, error)
}
