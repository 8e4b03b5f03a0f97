package docsystem

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"storyloom/internal/config"
	"storyloom/internal/domain"
	models "storyloom/internal/domain/models/docsystem"
	docsysRepo "storyloom/internal/domain/repositories/docsystem"
)

// mutateFn edits a freshly loaded project in place. Returning an error aborts
// the mutation without saving.
type mutateFn func(project *models.Project) error

// mutateProject loads the project, applies fn and saves it conditioned on the
// loaded version. A lost race reloads and reapplies fn, up to
// config.MaxMutationAttempts times.
func mutateProject(
	ctx context.Context,
	repo docsysRepo.ProjectRepository,
	logger *slog.Logger,
	id, userID string,
	fn mutateFn,
) (*models.Project, error) {
	var lastErr error
	for attempt := 1; attempt <= config.MaxMutationAttempts; attempt++ {
		project, err := repo.GetByID(ctx, id, userID)
		if err != nil {
			return nil, err
		}

		expected := project.Version
		if err := fn(project); err != nil {
			return nil, err
		}
		project.UpdatedAt = time.Now()

		err = repo.Save(ctx, project, expected)
		if err == nil {
			return project, nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) {
			return nil, err
		}

		lastErr = err
		logger.Debug("project write lost race, retrying",
			"project_id", id,
			"attempt", attempt,
		)
	}

	return nil, fmt.Errorf("gave up after %d attempts: %w", config.MaxMutationAttempts, lastErr)
}
