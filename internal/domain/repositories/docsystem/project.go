package docsystem

import (
	"context"

	"storyloom/internal/domain/models/docsystem"
)

// ProjectRepository defines data access operations for projects.
// Every read is owner-scoped; a project owned by someone else is reported as not found.
type ProjectRepository interface {
	// Create persists a new project with version 1
	Create(ctx context.Context, project *docsystem.Project) error

	// GetByID retrieves a project by ID, normalized
	GetByID(ctx context.Context, id, userID string) (*docsystem.Project, error)

	// List retrieves all projects for a user, ordered by updated_at DESC
	List(ctx context.Context, userID string) ([]docsystem.Project, error)

	// Save overwrites the stored project if its version still equals expectedVersion.
	// On success project.Version is set to the new version.
	// Returns domain.ErrVersionConflict when another writer got there first.
	Save(ctx context.Context, project *docsystem.Project, expectedVersion int64) error

	// Delete removes a project and all embedded documents
	Delete(ctx context.Context, id, userID string) error
}
