package docsystem

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"storyloom/internal/config"
	"storyloom/internal/domain"
	models "storyloom/internal/domain/models/docsystem"
	docsysRepo "storyloom/internal/domain/repositories/docsystem"
	docsysSvc "storyloom/internal/domain/services/docsystem"
	"storyloom/internal/service/docsystem/converter"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// documentService implements the DocumentService interface.
// Every write goes through mutateProject, so documents are only ever changed
// as part of a versioned project save.
type documentService struct {
	projectRepo docsysRepo.ProjectRepository
	html        *converter.HTMLConverter
	logger      *slog.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	projectRepo docsysRepo.ProjectRepository,
	html *converter.HTMLConverter,
	logger *slog.Logger,
) docsysSvc.DocumentService {
	return &documentService{
		projectRepo: projectRepo,
		html:        html,
		logger:      logger,
	}
}

// documentNotFound is returned when docID is not in the project's document list
func documentNotFound(projectID, docID string) error {
	return fmt.Errorf("document %s in project %s: %w", docID, projectID, domain.ErrNotFound)
}

// AddDocument appends one document to the end of the project
func (s *documentService) AddDocument(ctx context.Context, projectID, userID string, req *docsysSvc.AddDocumentRequest) (*models.Document, error) {
	if err := validateProjectID(projectID); err != nil {
		return nil, err
	}
	if err := validateDocumentTitle(req.Title); err != nil {
		return nil, validationError(validation.Errors{"title": err})
	}

	doc := models.NewDocument(uuid.NewString(), strings.TrimSpace(req.Title), s.html.Sanitize(req.Content), time.Now())
	doc.Normalize()

	_, err := mutateProject(ctx, s.projectRepo, s.logger, projectID, userID, func(p *models.Project) error {
		p.Documents = append(p.Documents, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document added",
		"id", doc.ID,
		"project_id", projectID,
		"user_id", userID,
	)

	return &doc, nil
}

// AddBatch appends one empty document per outline section
func (s *documentService) AddBatch(ctx context.Context, projectID, userID string, sections []models.OutlineSection) ([]models.Document, error) {
	if err := validateProjectID(projectID); err != nil {
		return nil, err
	}
	if len(sections) == 0 {
		return nil, validationError(fmt.Errorf("outline: cannot be blank"))
	}
	if len(sections) > config.MaxBatchDocuments {
		return nil, validationError(fmt.Errorf("outline: at most %d sections allowed, got %d", config.MaxBatchDocuments, len(sections)))
	}

	now := time.Now()
	docs := make([]models.Document, len(sections))
	for i, section := range sections {
		title := s.html.StripTags(section.Title)
		if title == "" {
			title = fmt.Sprintf("Section %d", i+1)
		}
		if err := validateDocumentTitle(title); err != nil {
			return nil, validationError(fmt.Errorf("outline[%d].title: %v", i, err))
		}

		doc := models.NewDocument(uuid.NewString(), title, "", now)
		if notes := strings.TrimSpace(section.Notes); notes != "" {
			doc.OutlineNotes = &notes
		}
		doc.Normalize()
		docs[i] = doc
	}

	project, err := mutateProject(ctx, s.projectRepo, s.logger, projectID, userID, func(p *models.Project) error {
		p.Documents = append(p.Documents, docs...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("documents added from outline",
		"count", len(docs),
		"project_id", projectID,
		"user_id", userID,
	)

	return project.Documents, nil
}

// GetDocument retrieves one document of a project
func (s *documentService) GetDocument(ctx context.Context, projectID, userID, docID string) (*models.Document, error) {
	if err := validateDocumentRef(projectID, docID); err != nil {
		return nil, err
	}

	project, err := s.projectRepo.GetByID(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}

	idx := project.DocumentIndex(docID)
	if idx < 0 {
		return nil, documentNotFound(projectID, docID)
	}
	return &project.Documents[idx], nil
}

// UpdateDocument applies a typed partial update to one document
func (s *documentService) UpdateDocument(ctx context.Context, projectID, userID, docID string, req *docsysSvc.UpdateDocumentRequest) ([]models.Document, error) {
	if err := validateDocumentRef(projectID, docID); err != nil {
		return nil, err
	}
	if req.Title != nil {
		if err := validateDocumentTitle(*req.Title); err != nil {
			return nil, validationError(validation.Errors{"title": err})
		}
	}

	if req.IsEmpty() {
		project, err := s.projectRepo.GetByID(ctx, projectID, userID)
		if err != nil {
			return nil, err
		}
		if project.DocumentIndex(docID) < 0 {
			return nil, documentNotFound(projectID, docID)
		}
		return project.Documents, nil
	}

	project, err := mutateProject(ctx, s.projectRepo, s.logger, projectID, userID, func(p *models.Project) error {
		idx := p.DocumentIndex(docID)
		if idx < 0 {
			return documentNotFound(projectID, docID)
		}
		s.applyUpdate(&p.Documents[idx], req)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("document updated",
		"id", docID,
		"project_id", projectID,
		"user_id", userID,
	)

	return project.Documents, nil
}

// applyUpdate copies the present fields of req onto doc
func (s *documentService) applyUpdate(doc *models.Document, req *docsysSvc.UpdateDocumentRequest) {
	if req.Title != nil {
		doc.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		doc.Content = s.html.Sanitize(*req.Content)
	}
	if req.OutlineNotes.Present {
		doc.OutlineNotes = req.OutlineNotes.Value
	}
	if req.AnalysisHTML.Present {
		doc.AnalysisHTML = nil
		if req.AnalysisHTML.Value != nil {
			clean := s.html.Sanitize(*req.AnalysisHTML.Value)
			doc.AnalysisHTML = &clean
		}
	}
	if req.Highlights != nil {
		doc.Highlights = *req.Highlights
	}
	doc.UpdatedAt = time.Now()
	doc.Normalize()
}

// RemoveDocument drops one document from the project
func (s *documentService) RemoveDocument(ctx context.Context, projectID, userID, docID string) error {
	if err := validateDocumentRef(projectID, docID); err != nil {
		return err
	}

	_, err := mutateProject(ctx, s.projectRepo, s.logger, projectID, userID, func(p *models.Project) error {
		idx := p.DocumentIndex(docID)
		if idx < 0 {
			return fmt.Errorf("document not deleted: %w", domain.ErrNotFound)
		}
		p.Documents = append(p.Documents[:idx], p.Documents[idx+1:]...)
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("document deleted",
		"id", docID,
		"project_id", projectID,
		"user_id", userID,
	)

	return nil
}

// Reorder rearranges the stored documents into the submitted order. Only the
// ids of the submission are used; stored bodies are kept as they are.
func (s *documentService) Reorder(ctx context.Context, projectID, userID string, documents []models.Document) (*models.Project, error) {
	if err := validateProjectID(projectID); err != nil {
		return nil, err
	}
	if len(documents) == 0 {
		return nil, validationError(fmt.Errorf("documents: cannot be blank"))
	}

	project, err := mutateProject(ctx, s.projectRepo, s.logger, projectID, userID, func(p *models.Project) error {
		if err := validatePermutation(p.Documents, documents); err != nil {
			return err
		}

		stored := make(map[string]models.Document, len(p.Documents))
		for _, doc := range p.Documents {
			stored[doc.ID] = doc
		}

		reordered := make([]models.Document, len(documents))
		for i, doc := range documents {
			reordered[i] = stored[doc.ID]
		}
		p.Documents = reordered
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("documents reordered",
		"count", len(documents),
		"project_id", projectID,
		"user_id", userID,
	)

	return project, nil
}

// SetAnalysis overwrites the analysis fields of one document
func (s *documentService) SetAnalysis(ctx context.Context, projectID, userID, docID string, analysis *docsysSvc.DocumentAnalysis) (*models.Document, error) {
	if err := validateDocumentRef(projectID, docID); err != nil {
		return nil, err
	}

	var updated models.Document

	_, err := mutateProject(ctx, s.projectRepo, s.logger, projectID, userID, func(p *models.Project) error {
		idx := p.DocumentIndex(docID)
		if idx < 0 {
			return documentNotFound(projectID, docID)
		}

		doc := &p.Documents[idx]
		doc.AnalysisData = analysis.AnalysisData
		doc.AnalysisScore = analysis.AnalysisScore
		doc.AnalysisHTML = nil
		if analysis.AnalysisHTML != nil {
			clean := s.html.Sanitize(*analysis.AnalysisHTML)
			doc.AnalysisHTML = &clean
		}
		doc.UpdatedAt = time.Now()
		updated = *doc
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document analysis saved",
		"id", docID,
		"project_id", projectID,
		"overall", analysis.AnalysisScore.Overall,
	)

	return &updated, nil
}
