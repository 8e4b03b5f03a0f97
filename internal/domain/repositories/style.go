package repositories

import (
	"context"

	"storyloom/internal/domain/models/style"
)

// StyleRepository defines data access for author and book styles.
// Records come back exactly as stored; normalization is the service's job.
type StyleRepository interface {
	Create(ctx context.Context, s *style.Style) error

	// GetByID returns domain.ErrNotFound when the record is missing or owned by someone else
	GetByID(ctx context.Context, kind style.Kind, id, userID string) (*style.Style, error)

	// List returns all styles of a kind for a user, most recently updated first
	List(ctx context.Context, kind style.Kind, userID string) ([]style.Style, error)

	Update(ctx context.Context, s *style.Style) error

	Delete(ctx context.Context, kind style.Kind, id, userID string) error

	// ClearDefault unsets defaultStyle on every record of the kind except exceptID
	ClearDefault(ctx context.Context, kind style.Kind, userID, exceptID string) error
}
