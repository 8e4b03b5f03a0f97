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

const (
	// DefaultProjectTitle is used when a project is created without a title
	DefaultProjectTitle = "Untitled Project"

	// SeedDocumentTitle and SeedDocumentContent make up the document every new project starts with
	SeedDocumentTitle   = "Untitled Document"
	SeedDocumentContent = "<p>Start writing...</p>"
)

// projectService implements the ProjectService interface
type projectService struct {
	projectRepo docsysRepo.ProjectRepository
	html        *converter.HTMLConverter
	logger      *slog.Logger
}

// NewProjectService creates a new project service
func NewProjectService(
	projectRepo docsysRepo.ProjectRepository,
	html *converter.HTMLConverter,
	logger *slog.Logger,
) docsysSvc.ProjectService {
	return &projectService{
		projectRepo: projectRepo,
		html:        html,
		logger:      logger,
	}
}

// CreateProject creates a new project with one seeded document
func (s *projectService) CreateProject(ctx context.Context, req *docsysSvc.CreateProjectRequest) (*models.Project, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, validationError(err)
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = DefaultProjectTitle
	}

	now := time.Now()
	project := &models.Project{
		ID:            uuid.NewString(),
		UserID:        req.UserID,
		Title:         title,
		ProjectType:   models.ParseProjectType(req.ProjectType),
		AuthorStyleID: req.AuthorStyleID,
		BookStyleID:   req.BookStyleID,
		Documents: []models.Document{
			models.NewDocument(uuid.NewString(), SeedDocumentTitle, SeedDocumentContent, now),
		},
		Metadata:  models.JSONMap{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project created",
		"id", project.ID,
		"title", project.Title,
		"project_type", project.ProjectType,
		"user_id", req.UserID,
	)

	return project, nil
}

// GetProject retrieves a project by ID
func (s *projectService) GetProject(ctx context.Context, id, userID string) (*models.Project, error) {
	if err := validateProjectID(id); err != nil {
		return nil, err
	}
	return s.projectRepo.GetByID(ctx, id, userID)
}

// ListProjects retrieves all projects for a user
func (s *projectService) ListProjects(ctx context.Context, userID string) ([]models.Project, error) {
	projects, err := s.projectRepo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []models.Project{}
	}
	return projects, nil
}

// ReplaceProject overwrites title and documents. Without a version the write
// wins over concurrent edits; with one, a stale version is a conflict.
func (s *projectService) ReplaceProject(ctx context.Context, id, userID string, req *docsysSvc.ReplaceProjectRequest) (*models.Project, error) {
	if err := validateProjectID(id); err != nil {
		return nil, err
	}
	if err := s.validateReplaceRequest(req); err != nil {
		return nil, validationError(err)
	}
	if err := validateDocumentSet(*req.Documents); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(*req.Title)

	project, err := mutateProject(ctx, s.projectRepo, s.logger, id, userID, func(p *models.Project) error {
		if req.Version != nil && *req.Version != p.Version {
			return fmt.Errorf("project %s is at version %d, not %d: %w", id, p.Version, *req.Version, domain.ErrVersionConflict)
		}

		p.Title = title
		p.Documents = s.prepareDocuments(p.Documents, *req.Documents)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("project replaced",
		"id", project.ID,
		"documents", len(project.Documents),
		"version", project.Version,
		"user_id", userID,
	)

	return project, nil
}

// prepareDocuments sanitizes incoming documents, assigns missing ids and keeps
// creation timestamps of documents that already existed.
func (s *projectService) prepareDocuments(existing, incoming []models.Document) []models.Document {
	created := make(map[string]time.Time, len(existing))
	for _, doc := range existing {
		created[doc.ID] = doc.CreatedAt
	}

	now := time.Now()
	docs := make([]models.Document, len(incoming))
	for i, doc := range incoming {
		if doc.ID == "" {
			doc.ID = uuid.NewString()
		}
		if t, ok := created[doc.ID]; ok {
			doc.CreatedAt = t
		} else if doc.CreatedAt.IsZero() {
			doc.CreatedAt = now
		}
		doc.Title = strings.TrimSpace(doc.Title)
		if doc.Title == "" {
			doc.Title = SeedDocumentTitle
		}
		doc.Content = s.html.Sanitize(doc.Content)
		if doc.AnalysisHTML != nil {
			clean := s.html.Sanitize(*doc.AnalysisHTML)
			doc.AnalysisHTML = &clean
		}
		doc.UpdatedAt = now
		doc.Normalize()
		docs[i] = doc
	}
	return docs
}

// PatchMetadata shallow-merges top-level metadata keys
func (s *projectService) PatchMetadata(ctx context.Context, id, userID string, partial models.JSONMap) (*models.Project, error) {
	if err := validateProjectID(id); err != nil {
		return nil, err
	}
	if len(partial) == 0 {
		return nil, validationError(fmt.Errorf("metadata: cannot be blank"))
	}

	project, err := mutateProject(ctx, s.projectRepo, s.logger, id, userID, func(p *models.Project) error {
		if p.Metadata == nil {
			p.Metadata = models.JSONMap{}
		}
		p.Metadata.Merge(partial)
		return nil
	})
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(partial))
	for k := range partial {
		keys = append(keys, k)
	}
	s.logger.Info("project metadata patched",
		"id", id,
		"keys", keys,
		"user_id", userID,
	)

	return project, nil
}

// UpdateStyles re-points the project's default style references
func (s *projectService) UpdateStyles(ctx context.Context, id, userID string, req *docsysSvc.UpdateProjectStylesRequest) (*models.Project, error) {
	if err := validateProjectID(id); err != nil {
		return nil, err
	}
	if !req.AuthorStyleID.Present && !req.BookStyleID.Present {
		return nil, validationError(fmt.Errorf("authorStyleId or bookStyleId is required"))
	}
	err := validation.Errors{
		"authorStyleId": validation.Validate(req.AuthorStyleID.Value, uuidRef),
		"bookStyleId":   validation.Validate(req.BookStyleID.Value, uuidRef),
	}.Filter()
	if err != nil {
		return nil, validationError(err)
	}

	project, err := mutateProject(ctx, s.projectRepo, s.logger, id, userID, func(p *models.Project) error {
		if req.AuthorStyleID.Present {
			p.AuthorStyleID = req.AuthorStyleID.Value
		}
		if req.BookStyleID.Present {
			p.BookStyleID = req.BookStyleID.Value
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("project styles updated", "id", id, "user_id", userID)

	return project, nil
}

// DeleteProject deletes a project and its documents
func (s *projectService) DeleteProject(ctx context.Context, id, userID string) (*docsysSvc.DeleteProjectResponse, error) {
	if err := validateProjectID(id); err != nil {
		return nil, err
	}

	// Verify project exists first (provides better error message)
	if _, err := s.projectRepo.GetByID(ctx, id, userID); err != nil {
		return nil, err
	}

	if err := s.projectRepo.Delete(ctx, id, userID); err != nil {
		return nil, err
	}

	s.logger.Info("project deleted",
		"id", id,
		"user_id", userID,
	)

	return &docsysSvc.DeleteProjectResponse{DeletedID: id}, nil
}

// validateCreateRequest validates a create project request
func (s *projectService) validateCreateRequest(req *docsysSvc.CreateProjectRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Title, validation.RuneLength(0, config.MaxProjectTitleLength)),
		validation.Field(&req.AuthorStyleID, uuidRef),
		validation.Field(&req.BookStyleID, uuidRef),
	)
}

// validateReplaceRequest validates a whole-project replace
func (s *projectService) validateReplaceRequest(req *docsysSvc.ReplaceProjectRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.NotNil,
			notBlank,
			validation.By(func(value interface{}) error {
				title, _ := value.(*string)
				if title == nil {
					return nil
				}
				return validation.Validate(strings.TrimSpace(*title), validation.RuneLength(1, config.MaxProjectTitleLength))
			}),
		),
		validation.Field(&req.Documents, validation.NotNil),
	)
}
