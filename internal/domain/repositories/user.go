package repositories

import (
	"context"

	"storyloom/internal/domain/models"
)

// UserRepository stores locally registered accounts
type UserRepository interface {
	// Create returns a *domain.ConflictError when the email is taken
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
