package docsystem

import (
	"context"

	"storyloom/internal/domain/models/docsystem"
	"storyloom/internal/httputil"
)

// CreateProjectRequest represents a request to create a project
type CreateProjectRequest struct {
	UserID        string  `json:"-"` // Set by handler from auth context
	Title         string  `json:"title"`
	ProjectType   string  `json:"projectType"`
	AuthorStyleID *string `json:"authorStyleId,omitempty"`
	BookStyleID   *string `json:"bookStyleId,omitempty"`
}

// ReplaceProjectRequest is a whole-project overwrite of title and documents.
// Version is optional; when given, a stale value fails with a conflict.
type ReplaceProjectRequest struct {
	Title     *string               `json:"title"`
	Documents *[]docsystem.Document `json:"documents"`
	Version   *int64                `json:"version,omitempty"`
}

// UpdateProjectStylesRequest re-points the style references. Absent fields are
// left alone; null clears the reference.
type UpdateProjectStylesRequest struct {
	AuthorStyleID httputil.OptionalString `json:"authorStyleId"`
	BookStyleID   httputil.OptionalString `json:"bookStyleId"`
}

// DeleteProjectResponse is returned by a successful delete
type DeleteProjectResponse struct {
	DeletedID string `json:"deletedId"`
}

// ProjectService defines business logic operations for projects
type ProjectService interface {
	// CreateProject creates a project seeded with one placeholder document
	CreateProject(ctx context.Context, req *CreateProjectRequest) (*docsystem.Project, error)

	GetProject(ctx context.Context, id, userID string) (*docsystem.Project, error)

	// ListProjects returns the user's projects, most recently updated first
	ListProjects(ctx context.Context, userID string) ([]docsystem.Project, error)

	ReplaceProject(ctx context.Context, id, userID string, req *ReplaceProjectRequest) (*docsystem.Project, error)

	// PatchMetadata shallow-merges top-level metadata keys; null removes a key
	PatchMetadata(ctx context.Context, id, userID string, partial docsystem.JSONMap) (*docsystem.Project, error)

	UpdateStyles(ctx context.Context, id, userID string, req *UpdateProjectStylesRequest) (*docsystem.Project, error)

	DeleteProject(ctx context.Context, id, userID string) (*DeleteProjectResponse, error)
}
