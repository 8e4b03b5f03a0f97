package services

import (
	"context"

	"storyloom/internal/domain/models/docsystem"
	"storyloom/internal/domain/services/llm"
)

// Autocomplete modes
const (
	ModeEnhance  = "enhance"
	ModeContinue = "continue"

	ModifierAction   = "action"
	ModifierDialogue = "dialogue"
)

// AnalyzeRequest asks for an analysis of text belonging to one document
type AnalyzeRequest struct {
	ProjectID string `json:"projectId"`
	DocID     string `json:"docId"`
	Text      string `json:"text"`
}

// AnalyzeResponse echoes what was written onto the document
type AnalyzeResponse struct {
	AnalysisData  docsystem.AnalysisData  `json:"analysisData"`
	AnalysisScore docsystem.AnalysisScore `json:"analysisScore"`
	AnalysisHTML  *string                 `json:"analysisHtml,omitempty"`
	Status        llm.CompletionStatus    `json:"status"`
}

// AutocompleteRequest asks for up to three suggestions
type AutocompleteRequest struct {
	Text      string  `json:"text"`
	Mode      string  `json:"mode"`
	Modifier  *string `json:"modifier,omitempty"`
	ProjectID *string `json:"projectId,omitempty"`
}

// AutocompleteResponse carries the split suggestions
type AutocompleteResponse struct {
	Suggestions []string             `json:"suggestions"`
	Status      llm.CompletionStatus `json:"status"`
}

// OutlineRequest asks for a nonfiction outline. When ProjectID is set the
// book setup and resulting outline are saved into the project's metadata.
type OutlineRequest struct {
	Topic     string              `json:"topic"`
	BookSetup docsystem.BookSetup `json:"bookSetup"`
	ProjectID *string             `json:"projectId,omitempty"`
}

// OutlineResponse is the parsed outline
type OutlineResponse struct {
	Topic    string                     `json:"topic"`
	Sections []docsystem.OutlineSection `json:"sections"`
	Status   llm.CompletionStatus       `json:"status"`
}

// GenerateChapterRequest drafts content for one document of a nonfiction project
type GenerateChapterRequest struct {
	ProjectID  string `json:"projectId"`
	DocumentID string `json:"documentId"`
}

// GenerateChapterResponse carries sanitized HTML
type GenerateChapterResponse struct {
	Suggestion string               `json:"suggestion"`
	Status     llm.CompletionStatus `json:"status"`
}

// WritingService composes prompts from styles and project state and calls the completion service.
// Empty completions succeed with Status "empty"; failures map to domain.ErrUpstream or
// domain.ErrUpstreamTimeout.
type WritingService interface {
	Analyze(ctx context.Context, userID string, req *AnalyzeRequest) (*AnalyzeResponse, error)
	Autocomplete(ctx context.Context, userID string, req *AutocompleteRequest) (*AutocompleteResponse, error)
	NonfictionOutline(ctx context.Context, userID string, req *OutlineRequest) (*OutlineResponse, error)
	NonfictionGenerate(ctx context.Context, userID string, req *GenerateChapterRequest) (*GenerateChapterResponse, error)
}
