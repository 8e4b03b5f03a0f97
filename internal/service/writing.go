package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"storyloom/internal/config"
	"storyloom/internal/domain"
	"storyloom/internal/domain/models/docsystem"
	"storyloom/internal/domain/models/style"
	"storyloom/internal/domain/services"
	docsysSvc "storyloom/internal/domain/services/docsystem"
	"storyloom/internal/domain/services/llm"
	"storyloom/internal/service/docsystem/converter"
	"storyloom/internal/service/prompt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// WritingService implements the WritingService interface
type WritingService struct {
	projects   docsysSvc.ProjectService
	documents  docsysSvc.DocumentService
	styles     services.StyleService
	completion llm.CompletionService
	composer   *prompt.Composer
	html       *converter.HTMLConverter
	logger     *slog.Logger
}

// NewWritingService creates a new writing service
func NewWritingService(
	projects docsysSvc.ProjectService,
	documents docsysSvc.DocumentService,
	styles services.StyleService,
	completion llm.CompletionService,
	composer *prompt.Composer,
	html *converter.HTMLConverter,
	logger *slog.Logger,
) services.WritingService {
	return &WritingService{
		projects:   projects,
		documents:  documents,
		styles:     styles,
		completion: completion,
		composer:   composer,
		html:       html,
		logger:     logger,
	}
}

var promptText = []validation.Rule{
	validation.Required,
	validation.RuneLength(1, config.MaxPromptTextLength),
}

// Analyze critiques text and stores the result on the document
func (s *WritingService) Analyze(ctx context.Context, userID string, req *services.AnalyzeRequest) (*services.AnalyzeResponse, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.ProjectID, validation.Required),
		validation.Field(&req.DocID, validation.Required),
		validation.Field(&req.Text, promptText...),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	project, err := s.projects.GetProject(ctx, req.ProjectID, userID)
	if err != nil {
		return nil, err
	}
	if project.DocumentIndex(req.DocID) < 0 {
		return nil, fmt.Errorf("document %s in project %s: %w", req.DocID, req.ProjectID, domain.ErrNotFound)
	}

	author, book, err := s.resolveStyles(ctx, userID, project)
	if err != nil {
		return nil, err
	}

	text, err := s.html.ToPromptText(req.Text)
	if err != nil {
		return nil, fmt.Errorf("%w: text: %v", domain.ErrValidation, err)
	}

	p := s.composer.BuildAnalysisPrompt(author, book, text)
	result := s.completion.Complete(ctx, &llm.CompletionRequest{System: p.System, Prompt: p.User})
	if err := completionError("analyze", result); err != nil {
		return nil, err
	}

	resp := &services.AnalyzeResponse{Status: result.Status}
	if result.Status == llm.StatusEmpty {
		return resp, nil
	}

	data, score, err := parseAnalysis(result.Text)
	if err != nil {
		s.logger.Warn("unusable analysis response",
			"project_id", req.ProjectID,
			"doc_id", req.DocID,
			"model", result.Model,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	rendered := renderAnalysisHTML(data, score)

	doc, err := s.documents.SetAnalysis(ctx, req.ProjectID, userID, req.DocID, &docsysSvc.DocumentAnalysis{
		AnalysisData:  data,
		AnalysisScore: score,
		AnalysisHTML:  &rendered,
	})
	if err != nil {
		return nil, err
	}

	resp.AnalysisData = doc.AnalysisData
	resp.AnalysisScore = doc.AnalysisScore
	resp.AnalysisHTML = doc.AnalysisHTML
	return resp, nil
}

// Autocomplete returns up to three rewrites or continuations of text
func (s *WritingService) Autocomplete(ctx context.Context, userID string, req *services.AutocompleteRequest) (*services.AutocompleteResponse, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Text, promptText...),
		validation.Field(&req.Mode, validation.Required, validation.In(services.ModeEnhance, services.ModeContinue)),
		validation.Field(&req.Modifier, validation.NilOrNotEmpty, validation.In(services.ModifierAction, services.ModifierDialogue)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var project *docsystem.Project
	if req.ProjectID != nil && *req.ProjectID != "" {
		p, err := s.projects.GetProject(ctx, *req.ProjectID, userID)
		if err != nil {
			return nil, err
		}
		project = p
	}

	author, book, err := s.resolveStyles(ctx, userID, project)
	if err != nil {
		return nil, err
	}

	text, err := s.html.ToPromptText(req.Text)
	if err != nil {
		return nil, fmt.Errorf("%w: text: %v", domain.ErrValidation, err)
	}

	modifier := ""
	if req.Modifier != nil {
		modifier = *req.Modifier
	}

	p := s.composer.BuildAutocompletePrompt(author, book, req.Mode, modifier, text)
	result := s.completion.Complete(ctx, &llm.CompletionRequest{System: p.System, Prompt: p.User})
	if err := completionError("autocomplete", result); err != nil {
		return nil, err
	}

	suggestions := prompt.SplitSuggestions(result.Text)
	status := result.Status
	if len(suggestions) == 0 {
		status = llm.StatusEmpty
	}

	return &services.AutocompleteResponse{Suggestions: suggestions, Status: status}, nil
}

// NonfictionOutline drafts a chapter outline for a topic. With a project id the
// book setup and outline are saved into the project's nonfiction metadata.
func (s *WritingService) NonfictionOutline(ctx context.Context, userID string, req *services.OutlineRequest) (*services.OutlineResponse, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Topic, validation.Required, validation.RuneLength(1, config.MaxTopicLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	topic := strings.TrimSpace(req.Topic)

	var project *docsystem.Project
	if req.ProjectID != nil && *req.ProjectID != "" {
		p, err := s.projects.GetProject(ctx, *req.ProjectID, userID)
		if err != nil {
			return nil, err
		}
		project = p
	}

	p := s.composer.BuildOutlinePrompt(topic, req.BookSetup)
	result := s.completion.Complete(ctx, &llm.CompletionRequest{System: p.System, Prompt: p.User})
	if err := completionError("outline", result); err != nil {
		return nil, err
	}

	sections := prompt.ParseOutline(result.Text)
	status := result.Status
	if len(sections) == 0 {
		status = llm.StatusEmpty
	}

	resp := &services.OutlineResponse{Topic: topic, Sections: sections, Status: status}

	if project != nil && len(sections) > 0 {
		if err := s.saveOutline(ctx, userID, project, req.BookSetup, resp); err != nil {
			return nil, err
		}
	}

	return resp, nil
}

func (s *WritingService) saveOutline(ctx context.Context, userID string, project *docsystem.Project, setup docsystem.BookSetup, outline *services.OutlineResponse) error {
	nf, err := project.Metadata.Nonfiction()
	if err != nil {
		return fmt.Errorf("read nonfiction metadata: %w", err)
	}
	nf.BookSetup = &setup
	nf.Outline = &docsystem.Outline{Topic: outline.Topic, Sections: outline.Sections}

	patch := docsystem.JSONMap{}
	if err := patch.SetNonfiction(nf); err != nil {
		return fmt.Errorf("encode nonfiction metadata: %w", err)
	}

	_, err = s.projects.PatchMetadata(ctx, project.ID, userID, patch)
	return err
}

// NonfictionGenerate drafts HTML for one document of a nonfiction project
func (s *WritingService) NonfictionGenerate(ctx context.Context, userID string, req *services.GenerateChapterRequest) (*services.GenerateChapterResponse, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.ProjectID, validation.Required),
		validation.Field(&req.DocumentID, validation.Required),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	project, err := s.projects.GetProject(ctx, req.ProjectID, userID)
	if err != nil {
		return nil, err
	}
	idx := project.DocumentIndex(req.DocumentID)
	if idx < 0 {
		return nil, fmt.Errorf("document %s in project %s: %w", req.DocumentID, req.ProjectID, domain.ErrNotFound)
	}
	doc := project.Documents[idx]

	nf, err := project.Metadata.Nonfiction()
	if err != nil {
		s.logger.Warn("ignoring unreadable nonfiction metadata",
			"project_id", project.ID,
			"error", err,
		)
		nf = &docsystem.NonfictionMetadata{}
	}

	author, book, err := s.resolveStyles(ctx, userID, project)
	if err != nil {
		return nil, err
	}

	chapter := prompt.ChapterContext{
		BookTitle: project.Title,
		Setup:     nf.BookSetup,
		Title:     doc.Title,
	}
	if doc.OutlineNotes != nil {
		chapter.Notes = *doc.OutlineNotes
	}
	if nf.Outline != nil {
		chapter.Topic = nf.Outline.Topic
		chapter.Outline = nf.Outline.Sections
	}

	p := s.composer.BuildChapterPrompt(author, book, chapter)
	result := s.completion.Complete(ctx, &llm.CompletionRequest{System: p.System, Prompt: p.User})
	if err := completionError("generate", result); err != nil {
		return nil, err
	}

	suggestion := s.html.ToHTML(result.Text)
	status := result.Status
	if suggestion == "" {
		status = llm.StatusEmpty
	}

	return &services.GenerateChapterResponse{Suggestion: suggestion, Status: status}, nil
}

// resolveStyles picks author and book styles from the project's references,
// falling back to the user's defaults. project may be nil.
func (s *WritingService) resolveStyles(ctx context.Context, userID string, project *docsystem.Project) (*style.Style, *style.Style, error) {
	var authorRef, bookRef *string
	if project != nil {
		authorRef = project.AuthorStyleID
		bookRef = project.BookStyleID
	}

	author, err := s.styles.Resolve(ctx, userID, style.KindAuthor, authorRef)
	if err != nil {
		return nil, nil, err
	}
	book, err := s.styles.Resolve(ctx, userID, style.KindBook, bookRef)
	if err != nil {
		return nil, nil, err
	}
	return author, book, nil
}

// completionError maps failed completions onto domain errors. Success and
// empty results return nil.
func completionError(op string, result *llm.CompletionResult) error {
	switch result.Status {
	case llm.StatusSuccess, llm.StatusEmpty:
		return nil
	case llm.StatusTimeout:
		return fmt.Errorf("%s: %w", op, domain.ErrUpstreamTimeout)
	default:
		return fmt.Errorf("%s: %w: %v", op, domain.ErrUpstream, result.Err)
	}
}
