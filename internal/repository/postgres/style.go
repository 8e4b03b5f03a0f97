package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"storyloom/internal/domain"
	"storyloom/internal/domain/models/style"
	"storyloom/internal/domain/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStyleRepository implements the StyleRepository interface.
// A partial unique index guarantees one default per user and kind, so
// ClearDefault and Update must run in the same transaction when switching defaults.
type PostgresStyleRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewStyleRepository creates a new PostgresStyleRepository
func NewStyleRepository(config *RepositoryConfig) repositories.StyleRepository {
	return &PostgresStyleRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

const styleColumns = `id, user_id, kind, name, attributes, default_style, created_at, updated_at`

// Create inserts a new style
func (r *PostgresStyleRepository) Create(ctx context.Context, s *style.Style) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.tables.Styles, styleColumns)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		s.ID,
		s.UserID,
		s.Kind,
		s.Name,
		s.Attributes,
		s.DefaultStyle,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return r.defaultConflict(s, err)
		}
		return fmt.Errorf("create %s style: %w", s.Kind, err)
	}

	return nil
}

// GetByID retrieves a style owned by userID
func (r *PostgresStyleRepository) GetByID(ctx context.Context, kind style.Kind, id, userID string) (*style.Style, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND user_id = $2 AND kind = $3
	`, styleColumns, r.tables.Styles)

	executor := GetExecutor(ctx, r.pool)
	s, err := scanStyle(executor.QueryRow(ctx, query, id, userID, kind))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("%s style %s: %w", kind, id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get %s style: %w", kind, err)
	}

	return s, nil
}

// List retrieves all styles of a kind for a user, ordered by updated_at DESC
func (r *PostgresStyleRepository) List(ctx context.Context, kind style.Kind, userID string) ([]style.Style, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE user_id = $1 AND kind = $2
		ORDER BY updated_at DESC, created_at DESC
	`, styleColumns, r.tables.Styles)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID, kind)
	if err != nil {
		return nil, fmt.Errorf("list %s styles: %w", kind, err)
	}
	defer rows.Close()

	styles := []style.Style{}
	for rows.Next() {
		s, err := scanStyle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s style: %w", kind, err)
		}
		styles = append(styles, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s styles: %w", kind, err)
	}

	return styles, nil
}

// Update overwrites name, attributes and the default flag
func (r *PostgresStyleRepository) Update(ctx context.Context, s *style.Style) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, attributes = $2, default_style = $3, updated_at = $4
		WHERE id = $5 AND user_id = $6 AND kind = $7
	`, r.tables.Styles)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		s.Name,
		s.Attributes,
		s.DefaultStyle,
		s.UpdatedAt,
		s.ID,
		s.UserID,
		s.Kind,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return r.defaultConflict(s, err)
		}
		return fmt.Errorf("update %s style: %w", s.Kind, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%s style %s: %w", s.Kind, s.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a style owned by userID
func (r *PostgresStyleRepository) Delete(ctx context.Context, kind style.Kind, id, userID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND user_id = $2 AND kind = $3
	`, r.tables.Styles)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, userID, kind)
	if err != nil {
		return fmt.Errorf("delete %s style: %w", kind, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%s style %s: %w", kind, id, domain.ErrNotFound)
	}

	return nil
}

// ClearDefault unsets default_style on all of the user's styles of a kind except one
func (r *PostgresStyleRepository) ClearDefault(ctx context.Context, kind style.Kind, userID, exceptID string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET default_style = FALSE
		WHERE user_id = $1 AND kind = $2 AND default_style AND id::text <> $3
	`, r.tables.Styles)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, userID, kind, exceptID)
	if err != nil {
		return fmt.Errorf("clear default %s style: %w", kind, err)
	}

	r.logger.Debug("cleared default styles",
		"kind", kind,
		"user_id", userID,
		"count", result.RowsAffected(),
	)

	return nil
}

// defaultConflict reports a second default that slipped past the service's
// transaction (only reachable under concurrent default switches)
func (r *PostgresStyleRepository) defaultConflict(s *style.Style, err error) error {
	if pgConstraint(err) == r.tables.Styles+"_one_default_idx" {
		return fmt.Errorf("another %s style became default concurrently: %w", s.Kind, domain.ErrVersionConflict)
	}
	return &domain.ConflictError{
		Message:      fmt.Sprintf("%s style '%s' already exists", s.Kind, s.ID),
		ResourceType: string(s.Kind) + "_style",
		ResourceID:   s.ID,
	}
}

func scanStyle(row pgx.Row) (*style.Style, error) {
	var s style.Style
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.Kind,
		&s.Name,
		&s.Attributes,
		&s.DefaultStyle,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if s.Attributes == nil {
		s.Attributes = map[string]string{}
	}
	return &s, nil
}
