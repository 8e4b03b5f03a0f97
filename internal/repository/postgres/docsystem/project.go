package docsystem

import (
	"context"
	"fmt"

	"storyloom/internal/domain"
	models "storyloom/internal/domain/models/docsystem"
	docsysRepo "storyloom/internal/domain/repositories/docsystem"

	"storyloom/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresProjectRepository implements the ProjectRepository interface.
// Documents and metadata live in JSONB columns of the project row.
type PostgresProjectRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(config *postgres.RepositoryConfig) docsysRepo.ProjectRepository {
	return &PostgresProjectRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const projectColumns = `id, user_id, title, project_type, author_style_id, book_style_id,
		documents, metadata, version, created_at, updated_at`

// Create creates a new project
func (r *PostgresProjectRepository) Create(ctx context.Context, project *models.Project) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, title, project_type, author_style_id, book_style_id,
			documents, metadata, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1, $9, $10)
		RETURNING version
	`, r.tables.Projects)

	project.Normalize()

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		project.ID,
		project.UserID,
		project.Title,
		project.ProjectType,
		project.AuthorStyleID,
		project.BookStyleID,
		project.Documents,
		project.Metadata,
		project.CreatedAt,
		project.UpdatedAt,
	).Scan(&project.Version)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("project '%s' already exists", project.ID),
				ResourceType: "project",
				ResourceID:   project.ID,
			}
		}
		return fmt.Errorf("create project: %w", err)
	}

	return nil
}

// GetByID retrieves a project by ID
func (r *PostgresProjectRepository) GetByID(ctx context.Context, id, userID string) (*models.Project, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, projectColumns, r.tables.Projects)

	executor := postgres.GetExecutor(ctx, r.pool)
	project, err := scanProject(executor.QueryRow(ctx, query, id, userID))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get project: %w", err)
	}

	return project, nil
}

// List retrieves all projects for a user, ordered by updated_at DESC
func (r *PostgresProjectRepository) List(ctx context.Context, userID string) ([]models.Project, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`, projectColumns, r.tables.Projects)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, *project)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}

	return projects, nil
}

// Save writes the whole project row if the stored version matches
func (r *PostgresProjectRepository) Save(ctx context.Context, project *models.Project, expectedVersion int64) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, project_type = $2, author_style_id = $3, book_style_id = $4,
			documents = $5, metadata = $6, updated_at = $7, version = version + 1
		WHERE id = $8 AND user_id = $9 AND version = $10
		RETURNING version
	`, r.tables.Projects)

	project.Normalize()

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		project.Title,
		project.ProjectType,
		project.AuthorStyleID,
		project.BookStyleID,
		project.Documents,
		project.Metadata,
		project.UpdatedAt,
		project.ID,
		project.UserID,
		expectedVersion,
	).Scan(&project.Version)

	if err == nil {
		return nil
	}
	if !postgres.IsPgNoRowsError(err) {
		return fmt.Errorf("save project: %w", err)
	}

	// No row matched: either the project is gone or the version moved on
	exists, err := r.exists(ctx, project.ID, project.UserID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("project %s: %w", project.ID, domain.ErrNotFound)
	}
	return fmt.Errorf("project %s at version %d: %w", project.ID, expectedVersion, domain.ErrVersionConflict)
}

// Delete removes a project row; embedded documents go with it
func (r *PostgresProjectRepository) Delete(ctx context.Context, id, userID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND user_id = $2
	`, r.tables.Projects)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

func (r *PostgresProjectRepository) exists(ctx context.Context, id, userID string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1 AND user_id = $2)`, r.tables.Projects)

	var exists bool
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, id, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check project exists: %w", err)
	}
	return exists, nil
}

// scanProject reads one row in projectColumns order and normalizes it
func scanProject(row pgx.Row) (*models.Project, error) {
	var project models.Project
	err := row.Scan(
		&project.ID,
		&project.UserID,
		&project.Title,
		&project.ProjectType,
		&project.AuthorStyleID,
		&project.BookStyleID,
		&project.Documents,
		&project.Metadata,
		&project.Version,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	project.Normalize()
	return &project, nil
}
